/*
	TIA - Arbitrary-dimension processing element array

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

// Array is a rows x cols rectangular tiling of processing elements,
// row-major indexed, wired east within a row and south within a column.
type Array struct {
	Name               string
	NumRows, NumColumns int
	ProcessingElements []*ProcessingElement
}

// NewArray builds and wires a rows x cols array.
func NewArray(name string, numRows, numColumns int, cp *parameters.Core, ip *parameters.Interconnect) (*Array, error) {
	a := &Array{Name: name, NumRows: numRows, NumColumns: numColumns}
	a.ProcessingElements = make([]*ProcessingElement, numRows*numColumns)
	for i := range a.ProcessingElements {
		p, err := NewProcessingElement(fmt.Sprintf("processing_element_%d", i), cp, ip)
		if err != nil {
			return nil, err
		}
		a.ProcessingElements[i] = p
	}
	for i := 0; i < numRows; i++ {
		for j := 0; j < numColumns; j++ {
			if j < numColumns-1 {
				ConnectProcessingElements(a.ProcessingElements[i*numColumns+j], a.ProcessingElements[i*numColumns+j+1], router.East)
			}
			if i < numRows-1 {
				ConnectProcessingElements(a.ProcessingElements[i*numColumns+j], a.ProcessingElements[(i+1)*numColumns+j], router.South)
			}
		}
	}
	return a, nil
}

// Register adds the array and every one of its processing elements to sys.
func (a *Array) Register(sys *system.System) {
	sys.RegisterTopology(a.Name)
	for _, p := range a.ProcessingElements {
		p.Register(sys)
	}
}
