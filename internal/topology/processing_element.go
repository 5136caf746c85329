/*
	TIA - Processing element wiring

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

// Package topology assembles processing elements into the hierarchical
// tilings a real array is built from (Quartet: 2x2 PEs; Block: 2x2
// quartets; Array: rows x cols PEs) and wires their cardinal
// interconnect, plus the named test-system builders recovered from the
// Python reference implementation's instance generators.
package topology

import (
	"github.com/opencgra/tia/internal/buffer"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/pe"
	"github.com/opencgra/tia/internal/router"
	"github.com/opencgra/tia/internal/system"
)

// ProcessingElement pairs a core with its router, the unit the rest of
// this package wires together.
type ProcessingElement struct {
	Name   string
	Core   *pe.Core
	Router router.Router
}

// NewProcessingElement allocates a Core sized per cp and a router of the
// type named by ip, wired to that core's channel buffers.
func NewProcessingElement(name string, cp *parameters.Core, ip *parameters.Interconnect) (*ProcessingElement, error) {
	core := pe.NewCore(name, cp)
	rt := routerType(ip.RouterType)
	r, err := router.New(rt, core, ip.NumRouterSources, ip.NumRouterDestinations)
	if err != nil {
		return nil, err
	}
	return &ProcessingElement{Name: name, Core: core, Router: r}, nil
}

func routerType(t parameters.RouterType) router.Type {
	switch t {
	case parameters.RouterSwitch:
		return router.Switch
	case parameters.RouterVirtualCircuit:
		return router.VirtualCircuit
	default:
		return router.Software
	}
}

// ConnectToSenderChannelBuffer wires the PE's router in the given
// direction to a non-local emitting buffer (a memory read port's data-out).
func (p *ProcessingElement) ConnectToSenderChannelBuffer(d router.Direction, b *buffer.Sender) {
	p.Router.ConnectToSenderChannelBuffer(d, b)
}

// ConnectToReceiverChannelBuffer wires the PE's router in the given
// direction to a non-local receiving buffer (a memory port's address-in
// or data-in).
func (p *ProcessingElement) ConnectToReceiverChannelBuffer(d router.Direction, b *buffer.Receiver) {
	p.Router.ConnectToReceiverChannelBuffer(d, b)
}

// ConnectProcessingElements wires a's and b's routers together along the
// axis a->b, in both directions.
func ConnectProcessingElements(a, b *ProcessingElement, directionAToB router.Direction) {
	a.Router.ConnectToProcessingElement(directionAToB, b.Router)
	b.Router.ConnectToProcessingElement(router.Reverse[directionAToB], a.Router)
}

// Register adds the processing element's core and router to sys's event
// loop, including the core's channel buffers.
func (p *ProcessingElement) Register(sys *system.System) {
	buffers := make([]interface {
		Commit()
		Empty() bool
		Reset()
	}, 0, len(p.Core.InputChannelBuffers)+len(p.Core.OutputChannelBuffers))
	for _, b := range p.Core.InputChannelBuffers {
		buffers = append(buffers, b)
	}
	for _, b := range p.Core.OutputChannelBuffers {
		buffers = append(buffers, b)
	}
	sys.RegisterPE(peAdapter{p}, buffers...)
}

// peAdapter satisfies system's peComponent interface by delegating to
// both the core and the router each cycle, matching the reference
// implementation's ProcessingElement.iterate/reset.
type peAdapter struct{ pe *ProcessingElement }

func (a peAdapter) Iterate(keepExecutionTrace bool) error {
	if err := a.pe.Core.Iterate(keepExecutionTrace); err != nil {
		return err
	}
	return a.pe.Router.Iterate()
}

func (a peAdapter) Halted() bool { return a.pe.Core.Halted() }

func (a peAdapter) Reset() {
	a.pe.Core.Reset()
	a.pe.Router.Reset()
}
