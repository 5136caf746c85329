/*
	TIA - Memory and its read/write ports

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

// Package memory models a word-addressed memory with independent read
// and write ports, each fronted by channel buffers so a processing
// element can issue a request and collect a response over ordinary
// packet channels.
package memory

import (
	"github.com/opencgra/tia/internal/buffer"
	"github.com/opencgra/tia/internal/ir"
)

// ReadPort accepts address packets on AddrIn and returns data packets on
// DataOut, one cycle of latency apart: an address popped in cycle n's
// Iterate is staged as a pending read and surfaces on DataOut no earlier
// than cycle n+1.
type ReadPort struct {
	Name   string
	AddrIn  *buffer.Receiver
	DataOut *buffer.Sender

	pendingRead    bool
	pendingPacket  ir.Packet
}

// NewReadPort allocates a ReadPort with the given channel buffer depth.
func NewReadPort(name string, depth int) *ReadPort {
	return &ReadPort{
		Name:    name,
		AddrIn:  buffer.NewReceiver(name+": address in", depth),
		DataOut: buffer.NewSender(name+": data out", depth),
	}
}

// WritePort accepts an address packet on AddrIn and a data packet on
// DataIn; the write commits in the first cycle in which both are present.
type WritePort struct {
	Name   string
	AddrIn *buffer.Receiver
	DataIn *buffer.Receiver
}

// NewWritePort allocates a WritePort with the given channel buffer depth.
func NewWritePort(name string, depth int) *WritePort {
	return &WritePort{
		Name:   name,
		AddrIn: buffer.NewReceiver(name+": address in", depth),
		DataIn: buffer.NewReceiver(name+": data in", depth),
	}
}

// Memory is a flat word array fronted by any number of read and write ports.
type Memory struct {
	Name     string
	Contents []uint32

	ReadPorts  []*ReadPort
	WritePorts []*WritePort
}

// New allocates a zeroed Memory of the given word count.
func New(name string, size int) *Memory {
	return &Memory{Name: name, Contents: make([]uint32, size)}
}

// AddReadPort attaches a read port.
func (m *Memory) AddReadPort(p *ReadPort) { m.ReadPorts = append(m.ReadPorts, p) }

// AddWritePort attaches a write port.
func (m *Memory) AddWritePort(p *WritePort) { m.WritePorts = append(m.WritePorts, p) }

// Iterate performs one cycle over every port: for each read port, a
// pending read is drained to DataOut before a new address is accepted
// (so a port never silently drops a satisfied read while waiting on a
// stalled consumer); each write port commits when both its address and
// data packets are present.
func (m *Memory) Iterate() error {
	for _, p := range m.ReadPorts {
		if p.pendingRead && !p.DataOut.Full() {
			if err := p.DataOut.Enqueue(p.pendingPacket); err != nil {
				return err
			}
			p.pendingRead = false
		}
	}
	for _, p := range m.ReadPorts {
		if !p.pendingRead && !p.AddrIn.Empty() {
			addrPacket, err := p.AddrIn.Dequeue()
			if err != nil {
				return err
			}
			addr := addrPacket.Value
			p.pendingPacket = ir.Packet{Tag: addrPacket.Tag, Value: m.Contents[addr]}
			p.pendingRead = true
		}
	}
	for _, p := range m.WritePorts {
		if !p.AddrIn.Empty() && !p.DataIn.Empty() {
			addrPacket, err := p.AddrIn.Dequeue()
			if err != nil {
				return err
			}
			dataPacket, err := p.DataIn.Dequeue()
			if err != nil {
				return err
			}
			m.Contents[addrPacket.Value] = dataPacket.Value
		}
	}
	return nil
}

// Reset clears any pending read, and every port's buffers, but preserves
// Contents: memory is persistent across a system reset.
func (m *Memory) Reset() {
	for _, p := range m.ReadPorts {
		p.pendingRead = false
		p.AddrIn.Reset()
		p.DataOut.Reset()
	}
	for _, p := range m.WritePorts {
		p.AddrIn.Reset()
		p.DataIn.Reset()
	}
}
