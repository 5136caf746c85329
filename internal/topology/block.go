/*
	TIA - Block (2x2 quartet) tiling

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

// Block is a 2x2 group of quartets (sixteen processing elements) that,
// in hardware, shares a clock/reset tree, configuration logic, MMIO
// access port, and eventually a load-store queue.
type Block struct {
	Name     string
	Quartets []*Quartet
}

// NewBlock builds and internally wires a block at the given base
// offsets within an array of width numColumns.
func NewBlock(name string, rowBaseIndex, columnBaseIndex, numColumns int, cp *parameters.Core, ip *parameters.Interconnect) (*Block, error) {
	b := &Block{Name: name}
	b.Quartets = make([]*Quartet, 4)
	quartetNumColumns := numColumns / 2
	quartetRowBase := rowBaseIndex / 2
	quartetColumnBase := columnBaseIndex / 2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			quartetRow := quartetRowBase + i
			quartetColumn := quartetColumnBase + j
			quartetIndex := quartetRow*quartetNumColumns + quartetColumn
			q, err := NewQuartet(fmt.Sprintf("quartet_%d", quartetIndex), quartetRow*2, quartetColumn*2, numColumns, cp, ip)
			if err != nil {
				return nil, err
			}
			b.Quartets[i*2+j] = q
		}
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if j < 1 {
				ConnectQuartets(b.Quartets[i*2+j], b.Quartets[i*2+j+1], router.East)
			}
			if i < 1 {
				ConnectQuartets(b.Quartets[i*2+j], b.Quartets[(i+1)*2+j], router.South)
			}
		}
	}
	return b, nil
}

// ConnectBlocks wires two blocks' corresponding edge quartets together
// along the axis a->b.
func ConnectBlocks(a, b *Block, directionAToB router.Direction) {
	switch directionAToB {
	case router.North:
		for j := 0; j < 2; j++ {
			ConnectQuartets(a.Quartets[0*2+j], b.Quartets[1*2+j], router.North)
		}
	case router.East:
		for i := 0; i < 2; i++ {
			ConnectQuartets(a.Quartets[i*2+1], b.Quartets[i*2+0], router.East)
		}
	case router.South:
		for j := 0; j < 2; j++ {
			ConnectQuartets(a.Quartets[1*2+j], b.Quartets[0*2+j], router.South)
		}
	case router.West:
		for i := 0; i < 2; i++ {
			ConnectQuartets(a.Quartets[i*2+0], b.Quartets[i*2+1], router.West)
		}
	}
}

// Register adds the block and every one of its quartets to sys.
func (b *Block) Register(sys *system.System) {
	sys.RegisterTopology(b.Name)
	for _, q := range b.Quartets {
		q.Register(sys)
	}
}
