/*
	TIA - Named test-system builders

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

	"github.com/opencgra/tia/internal/memory"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/pe"
	"github.com/opencgra/tia/internal/router"
	"github.com/opencgra/tia/internal/system"
)

// peCores collects a name->Core map from a list of topology processing
// elements, the shape a console.Machine needs to service "show"/"load"
// commands by name.
func peCores(elements []*ProcessingElement) map[string]*pe.Core {
	cores := make(map[string]*pe.Core, len(elements))
	for _, p := range elements {
		cores[p.Name] = p.Core
	}
	return cores
}

// registerMemory wires mem's ports into sys as both the memory component
// itself and the buffers that front each port, the same two-step
// registration RegisterPE does for a processing element's channels.
func registerMemory(sys *system.System, mem *memory.Memory) {
	buffers := make([]interface {
		Commit()
		Empty() bool
		Reset()
	}, 0, 2*len(mem.ReadPorts)+2*len(mem.WritePorts))
	for _, p := range mem.ReadPorts {
		buffers = append(buffers, p.AddrIn, p.DataOut)
	}
	for _, p := range mem.WritePorts {
		buffers = append(buffers, p.AddrIn, p.DataIn)
	}
	sys.RegisterMemory(mem, buffers...)
}

// BuildArraySystem builds an array test system: a numRows x numColumns
// array of processing elements with one read port wired to the north
// edge of each column and one write port wired to each adjacent pair of
// columns along the south edge (an address PE and a data PE share a
// write port), primarily used for functional simulation of abstract
// systems too large to hand-assemble a custom topology for.
func BuildArraySystem(numRows, numColumns int, cp *parameters.Core, ip *parameters.Interconnect, sp *parameters.System) (*system.System, map[string]*pe.Core, error) {
	sys := system.New()
	array, err := NewArray("array_0", numRows, numColumns, cp, ip)
	if err != nil {
		return nil, nil, err
	}
	array.Register(sys)

	mem := memory.New("memory", sp.NumTestDataMemoryWords)

	for j := 0; j < numColumns; j++ {
		readPort := memory.NewReadPort(fmt.Sprintf("read_port_%d", j), sp.TestDataMemoryBufferDepth)
		p := array.ProcessingElements[j]
		p.ConnectToReceiverChannelBuffer(router.North, readPort.AddrIn)
		p.ConnectToSenderChannelBuffer(router.North, readPort.DataOut)
		mem.AddReadPort(readPort)
	}

	baseIndex := (numRows - 1) * numColumns
	for j := 0; j < numColumns/2; j++ {
		writePort := memory.NewWritePort(fmt.Sprintf("write_port_%d", j), sp.TestDataMemoryBufferDepth)
		addrPE := array.ProcessingElements[baseIndex+2*j]
		dataPE := array.ProcessingElements[baseIndex+2*j+1]
		addrPE.ConnectToReceiverChannelBuffer(router.South, writePort.AddrIn)
		dataPE.ConnectToReceiverChannelBuffer(router.South, writePort.DataIn)
		mem.AddWritePort(writePort)
	}

	registerMemory(sys, mem)
	sys.Finalize()
	return sys, peCores(array.ProcessingElements), nil
}

// BuildProcessingElementSystem builds the single-processing-element
// hardware test system: one PE named "processing_element_0" with two
// read ports (north and east) and one write port whose address and data
// halves arrive from the south and west respectively.
func BuildProcessingElementSystem(cp *parameters.Core, ip *parameters.Interconnect, sp *parameters.System) (*system.System, map[string]*pe.Core, error) {
	sys := system.New()
	p, err := NewProcessingElement("processing_element_0", cp, ip)
	if err != nil {
		return nil, nil, err
	}
	p.Register(sys)

	mem := memory.New("memory", sp.NumTestDataMemoryWords)

	readPort0 := memory.NewReadPort("read_port_0", sp.TestDataMemoryBufferDepth)
	p.ConnectToReceiverChannelBuffer(router.North, readPort0.AddrIn)
	p.ConnectToSenderChannelBuffer(router.North, readPort0.DataOut)
	mem.AddReadPort(readPort0)

	readPort1 := memory.NewReadPort("read_port_1", sp.TestDataMemoryBufferDepth)
	p.ConnectToReceiverChannelBuffer(router.East, readPort1.AddrIn)
	p.ConnectToSenderChannelBuffer(router.East, readPort1.DataOut)
	mem.AddReadPort(readPort1)

	writePort := memory.NewWritePort("write_port", sp.TestDataMemoryBufferDepth)
	p.ConnectToReceiverChannelBuffer(router.South, writePort.AddrIn)
	p.ConnectToReceiverChannelBuffer(router.West, writePort.DataIn)
	mem.AddWritePort(writePort)

	registerMemory(sys, mem)
	sys.Finalize()
	return sys, peCores([]*ProcessingElement{p}), nil
}

// BuildQuartetSystem builds the hardware quartet test system: a single
// quartet with the top two PEs each fronting a read port on their north
// edge, and the bottom two PEs jointly fronting one write port on their
// south edge.
func BuildQuartetSystem(cp *parameters.Core, ip *parameters.Interconnect, sp *parameters.System) (*system.System, map[string]*pe.Core, error) {
	sys := system.New()
	quartet, err := NewQuartet("quartet_0", 0, 0, 2, cp, ip)
	if err != nil {
		return nil, nil, err
	}
	quartet.Register(sys)

	mem := memory.New("memory", sp.NumTestDataMemoryWords)

	readPort0 := memory.NewReadPort("read_port_0", sp.TestDataMemoryBufferDepth)
	quartet.ProcessingElements[0].ConnectToReceiverChannelBuffer(router.North, readPort0.AddrIn)
	quartet.ProcessingElements[0].ConnectToSenderChannelBuffer(router.North, readPort0.DataOut)
	mem.AddReadPort(readPort0)

	readPort1 := memory.NewReadPort("read_port_1", sp.TestDataMemoryBufferDepth)
	quartet.ProcessingElements[1].ConnectToReceiverChannelBuffer(router.North, readPort1.AddrIn)
	quartet.ProcessingElements[1].ConnectToSenderChannelBuffer(router.North, readPort1.DataOut)
	mem.AddReadPort(readPort1)

	writePort := memory.NewWritePort("write_port", sp.TestDataMemoryBufferDepth)
	quartet.ProcessingElements[2].ConnectToReceiverChannelBuffer(router.South, writePort.AddrIn)
	quartet.ProcessingElements[3].ConnectToReceiverChannelBuffer(router.South, writePort.DataIn)
	mem.AddWritePort(writePort)

	registerMemory(sys, mem)
	sys.Finalize()
	return sys, peCores(quartet.ProcessingElements), nil
}

// BuildBlockSystem builds the hardware block test system: a single
// block whose top two quartets front four read ports, one on the north
// edge of each of their top PEs, and whose bottom-left quartet's bottom
// two PEs jointly front the block's single write port on their south
// edge.
func BuildBlockSystem(cp *parameters.Core, ip *parameters.Interconnect, sp *parameters.System) (*system.System, map[string]*pe.Core, error) {
	sys := system.New()
	block, err := NewBlock("block_0", 0, 0, 4, cp, ip)
	if err != nil {
		return nil, nil, err
	}
	block.Register(sys)

	mem := memory.New("memory", sp.NumTestDataMemoryWords)

	for i, quartetIndex := range []int{0, 0, 1, 1} {
		peIndex := i % 2
		readPort := memory.NewReadPort(fmt.Sprintf("read_port_%d", i), sp.TestDataMemoryBufferDepth)
		p := block.Quartets[quartetIndex].ProcessingElements[peIndex]
		p.ConnectToReceiverChannelBuffer(router.North, readPort.AddrIn)
		p.ConnectToSenderChannelBuffer(router.North, readPort.DataOut)
		mem.AddReadPort(readPort)
	}

	writePort := memory.NewWritePort("write_port", sp.TestDataMemoryBufferDepth)
	block.Quartets[2].ProcessingElements[2].ConnectToReceiverChannelBuffer(router.South, writePort.AddrIn)
	block.Quartets[2].ProcessingElements[3].ConnectToReceiverChannelBuffer(router.South, writePort.DataIn)
	mem.AddWritePort(writePort)

	registerMemory(sys, mem)
	sys.Finalize()

	var elements []*ProcessingElement
	for _, q := range block.Quartets {
		elements = append(elements, q.ProcessingElements...)
	}
	return sys, peCores(elements), nil
}
