/*
	TIA - Interconnect routers

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

// Package router implements the pluggable interconnect between
// processing elements. Only the software (direct-wire) router is
// implemented; switch and virtual-circuit routing are reserved for a
// future release and exist here only as named placeholders, per
// spec.md's router-extensibility design note.
package router

import (
	"github.com/opencgra/tia/internal/buffer"
	"github.com/opencgra/tia/internal/pe"
	"github.com/opencgra/tia/internal/tiaerr"
)

// Type selects a router implementation.
type Type int

const (
	Software Type = iota
	Switch
	VirtualCircuit
)

// Router is the interconnect interface a processing element's router
// slot satisfies. Every method beyond construction is a no-op for
// router implementations that need no per-cycle behavior.
type Router interface {
	ConnectToProcessingElement(d Direction, other Router)
	ConnectToSenderChannelBuffer(d Direction, b *buffer.Sender)
	ConnectToReceiverChannelBuffer(d Direction, b *buffer.Receiver)
	Iterate() error
	Reset()
}

// SoftwareRouter is a Router implementation that leaves all routing up to the
// hardware mesh: its four input/output channels each have a cardinal
// direction and route to/from the nearest neighbor in that direction.
type SoftwareRouter struct {
	core *pe.Core

	sourceBuffers      []*buffer.Sender   // indexed by direction: neighbor's output channel buffer
	destinationBuffers []*buffer.Receiver // indexed by direction: neighbor's input channel buffer
}

// NewSoftwareRouter allocates a SoftwareRouter wired to core's channel
// buffers, with numSources/numDestinations empty neighbor slots.
func NewSoftwareRouter(core *pe.Core, numSources, numDestinations int) *SoftwareRouter {
	return &SoftwareRouter{
		core:               core,
		sourceBuffers:      make([]*buffer.Sender, numSources),
		destinationBuffers: make([]*buffer.Receiver, numDestinations),
	}
}

func (r *SoftwareRouter) ConnectToProcessingElement(d Direction, other Router) {
	peer, ok := other.(*SoftwareRouter)
	if !ok {
		panic(tiaerr.NewSimulatorError("router", "cannot connect a software router to an incompatible router type"))
	}
	rd := Reverse[d]
	r.destinationBuffers[d] = peer.core.InputChannelBuffers[rd]
	r.sourceBuffers[d] = peer.core.OutputChannelBuffers[rd]
}

func (r *SoftwareRouter) ConnectToSenderChannelBuffer(d Direction, b *buffer.Sender) {
	r.sourceBuffers[d] = b
}

func (r *SoftwareRouter) ConnectToReceiverChannelBuffer(d Direction, b *buffer.Receiver) {
	r.destinationBuffers[d] = b
}

// Iterate pulls one packet from each non-empty, connected source buffer
// into the matching local input channel buffer (if not full), and
// pushes from each non-empty local output channel buffer into its
// matching destination buffer (if not full). Like pe.Core.Iterate, this
// only stages buffer mutations.
func (r *SoftwareRouter) Iterate() error {
	for i, source := range r.sourceBuffers {
		if source == nil {
			continue
		}
		dest := r.core.InputChannelBuffers[i]
		if !dest.Full() && !source.Empty() {
			packet, err := source.Dequeue()
			if err != nil {
				return err
			}
			if err := dest.Enqueue(packet); err != nil {
				return err
			}
		}
	}
	for i, dest := range r.destinationBuffers {
		if dest == nil {
			continue
		}
		source := r.core.OutputChannelBuffers[i]
		if !source.Empty() && !dest.Full() {
			packet, err := source.Dequeue()
			if err != nil {
				return err
			}
			if err := dest.Enqueue(packet); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reset is a no-op: the software router has no internal state beyond
// the buffer pointers fixed at wiring time.
func (r *SoftwareRouter) Reset() {}

// SwitchRouter and VirtualCircuitRouter are reserved placeholders.
type SwitchRouter struct{}

func (SwitchRouter) ConnectToProcessingElement(Direction, Router)        {}
func (SwitchRouter) ConnectToSenderChannelBuffer(Direction, *buffer.Sender)     {}
func (SwitchRouter) ConnectToReceiverChannelBuffer(Direction, *buffer.Receiver) {}
func (SwitchRouter) Iterate() error                                      { return nil }
func (SwitchRouter) Reset()                                               {}

type VirtualCircuitRouter struct{}

func (VirtualCircuitRouter) ConnectToProcessingElement(Direction, Router)        {}
func (VirtualCircuitRouter) ConnectToSenderChannelBuffer(Direction, *buffer.Sender)     {}
func (VirtualCircuitRouter) ConnectToReceiverChannelBuffer(Direction, *buffer.Receiver) {}
func (VirtualCircuitRouter) Iterate() error                                      { return nil }
func (VirtualCircuitRouter) Reset()                                               {}

// New constructs a Router of the requested type wired to core.
func New(t Type, core *pe.Core, numSources, numDestinations int) (Router, error) {
	switch t {
	case Software:
		return NewSoftwareRouter(core, numSources, numDestinations), nil
	case Switch:
		return SwitchRouter{}, nil
	case VirtualCircuit:
		return VirtualCircuitRouter{}, nil
	default:
		return nil, tiaerr.NewSimulatorError("router", "unsupported router type")
	}
}
