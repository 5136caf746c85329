/*
	TIA - System scheduler

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

// Package system drives the three-phase, two-phase-commit cycle that
// every processing element, memory, and buffer in a configured
// topology participates in. It deliberately knows nothing about the
// concrete shape of a topology (Array, Quartet, Block, ...): components
// register themselves through the small interfaces below, which keeps
// this package free of any import-cycle with internal/topology.
package system

// peComponent is anything System can step and halt-check once per cycle.
type peComponent interface {
	Iterate(keepExecutionTrace bool) error
	Halted() bool
	Reset()
}

// memComponent is anything System can step once per cycle that owns no
// halt condition of its own (memory never halts the system).
type memComponent interface {
	Iterate() error
	Reset()
}

// bufComponent is anything System commits once per cycle and checks for
// emptiness as part of the system-wide halt condition.
type bufComponent = interface {
	Commit()
	Empty() bool
	Reset()
}

// System is the collection of processing elements, memories, and
// buffers that make up one configured machine, plus its cycle counter.
type System struct {
	Cycle int

	PEs       []peComponent
	Memories  []memComponent
	Buffers   []bufComponent
	topology  []string
}

// New returns an empty System ready for components to register into.
func New() *System {
	return &System{}
}

// RegisterPE adds a processing element (and the channel buffers it
// owns) to the event loop.
func (s *System) RegisterPE(p peComponent, buffers ...bufComponent) {
	s.PEs = append(s.PEs, p)
	s.Buffers = append(s.Buffers, buffers...)
}

// RegisterMemory adds a memory (and the port buffers it owns) to the event loop.
func (s *System) RegisterMemory(m memComponent, buffers ...bufComponent) {
	s.Memories = append(s.Memories, m)
	s.Buffers = append(s.Buffers, buffers...)
}

// RegisterTopology records a hierarchical element's name purely for
// Finalize's debug summary; it has no effect on scheduling.
func (s *System) RegisterTopology(name string) {
	s.topology = append(s.topology, name)
}

// Finalize sorts the recorded topology names, mirroring the reference
// implementation's alphabetize-for-debug-output step.
func (s *System) Finalize() {
	for i := 1; i < len(s.topology); i++ {
		for j := i; j > 0 && s.topology[j-1] > s.topology[j]; j-- {
			s.topology[j-1], s.topology[j] = s.topology[j], s.topology[j-1]
		}
	}
}

// TopologyNames returns the recorded, alphabetized element names.
func (s *System) TopologyNames() []string { return s.topology }

// Iterate performs one cycle: every PE steps (staging only), every
// memory steps, then every buffer commits its staged dequeue and
// enqueue. The system has halted once every PE's halt flag is set and
// every buffer is empty; the cycle counter advances only when it has not.
func (s *System) Iterate(keepExecutionTrace bool) (bool, error) {
	halted := true
	for _, p := range s.PEs {
		if err := p.Iterate(keepExecutionTrace); err != nil {
			return false, err
		}
		halted = halted && p.Halted()
	}
	for _, m := range s.Memories {
		if err := m.Iterate(); err != nil {
			return false, err
		}
	}
	for _, b := range s.Buffers {
		b.Commit()
		halted = halted && b.Empty()
	}
	if !halted {
		s.Cycle++
	}
	return halted, nil
}

// Reset clears every PE, memory, and buffer's dynamic state (PE
// instructions and memory contents persist) and zeroes the cycle counter.
func (s *System) Reset() {
	for _, p := range s.PEs {
		p.Reset()
	}
	for _, m := range s.Memories {
		m.Reset()
	}
	for _, b := range s.Buffers {
		b.Reset()
	}
	s.Cycle = 0
}

// Run iterates until halted, until interrupted returns true (checked
// before each cycle, so a Ctrl-C/EOF from an interactive console takes
// effect promptly), or until maxCycles is reached (0 means unbounded).
// It returns (halted, interrupted) per spec.md section 6's exit-status
// contract.
func (s *System) Run(maxCycles int, keepExecutionTrace bool, interrupted func() bool) (bool, bool, error) {
	for maxCycles <= 0 || s.Cycle < maxCycles {
		if interrupted != nil && interrupted() {
			return false, true, nil
		}
		halted, err := s.Iterate(keepExecutionTrace)
		if err != nil {
			return false, false, err
		}
		if halted {
			return true, false, nil
		}
	}
	return false, false, nil
}
