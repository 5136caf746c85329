/*
	TIA - Quartet (2x2 processing element) tiling

	Copyright (c) 2026, The TIA Authors

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

package topology

import (
	"fmt"

	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/router"
	"github.com/opencgra/tia/internal/system"
)

// Quartet is a 2x2 group of processing elements that, in hardware,
// shares a clock/reset tree and configuration logic. rowBaseIndex and
// columnBaseIndex locate it within a larger array whose row width is
// numColumns, so its four PEs carry globally-consistent
// "processing_element_N" names.
type Quartet struct {
	Name               string
	ProcessingElements []*ProcessingElement
}

// NewQuartet builds and internally wires a quartet at the given base
// offsets within an array of width numColumns.
func NewQuartet(name string, rowBaseIndex, columnBaseIndex, numColumns int, cp *parameters.Core, ip *parameters.Interconnect) (*Quartet, error) {
	q := &Quartet{Name: name}
	q.ProcessingElements = make([]*ProcessingElement, 4)
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			row := rowBaseIndex + di
			col := columnBaseIndex + dj
			index := row*numColumns + col
			p, err := NewProcessingElement(fmt.Sprintf("processing_element_%d", index), cp, ip)
			if err != nil {
				return nil, err
			}
			q.ProcessingElements[di*2+dj] = p
		}
	}
	ConnectProcessingElements(q.ProcessingElements[0], q.ProcessingElements[1], router.East)
	ConnectProcessingElements(q.ProcessingElements[2], q.ProcessingElements[3], router.East)
	ConnectProcessingElements(q.ProcessingElements[0], q.ProcessingElements[2], router.South)
	ConnectProcessingElements(q.ProcessingElements[1], q.ProcessingElements[3], router.South)
	return q, nil
}

// ConnectQuartets wires two quartets' corresponding edge PEs together
// along the axis a->b.
func ConnectQuartets(a, b *Quartet, directionAToB router.Direction) {
	switch directionAToB {
	case router.East:
		ConnectProcessingElements(a.ProcessingElements[1], b.ProcessingElements[0], router.East)
		ConnectProcessingElements(a.ProcessingElements[3], b.ProcessingElements[2], router.East)
	case router.South:
		ConnectProcessingElements(a.ProcessingElements[2], b.ProcessingElements[0], router.South)
		ConnectProcessingElements(a.ProcessingElements[3], b.ProcessingElements[1], router.South)
	case router.West:
		ConnectQuartets(b, a, router.East)
	case router.North:
		ConnectQuartets(b, a, router.South)
	}
}

// Register adds the quartet and every one of its processing elements to sys.
func (q *Quartet) Register(sys *system.System) {
	sys.RegisterTopology(q.Name)
	for _, p := range q.ProcessingElements {
		p.Register(sys)
	}
}
