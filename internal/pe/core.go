/*
	TIA - Processing element core model

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

// Package pe models a single triggered-instruction processing element:
// predicates, registers, an optional scratchpad, its channel buffers,
// and the per-cycle firing algorithm.
package pe

import (
	"fmt"

	"github.com/opencgra/tia/internal/buffer"
	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/tiaerr"
)

// Core is the per-cycle-stepped state of one processing element.
type Core struct {
	Name string

	Instructions []ir.Instruction

	Predicates []bool
	Registers  []uint32
	Scratchpad []uint32 // nil when the core has no scratchpad

	InputChannelBuffers  []*buffer.Receiver
	OutputChannelBuffers []*buffer.Sender

	HaltRegister       bool
	InstructionsRetired int
	UntriggeredCycles   int

	// ExecutionTrace, when kept, records the ordinal of the instruction
	// fired each cycle, or -1 for a cycle in which nothing fired.
	ExecutionTrace []int
}

// NewCore allocates a Core sized per cp, with empty program and zeroed
// architectural state.
func NewCore(name string, cp *parameters.Core) *Core {
	c := &Core{
		Name:       name,
		Predicates: make([]bool, cp.NumPredicates),
		Registers:  make([]uint32, cp.NumRegisters),
	}
	if cp.NumScratchpadWords != 0 {
		c.Scratchpad = make([]uint32, cp.NumScratchpadWords)
	}
	c.InputChannelBuffers = make([]*buffer.Receiver, cp.NumInputChannels)
	for i := range c.InputChannelBuffers {
		c.InputChannelBuffers[i] = buffer.NewReceiver(fmt.Sprintf("%s: input channel buffer %d", name, i), cp.ChannelBufferDepth)
	}
	c.OutputChannelBuffers = make([]*buffer.Sender, cp.NumOutputChannels)
	for i := range c.OutputChannelBuffers {
		c.OutputChannelBuffers[i] = buffer.NewSender(fmt.Sprintf("%s: output channel buffer %d", name, i), cp.ChannelBufferDepth)
	}
	return c
}

// InitializeRegisters loads the initial register file. The length of
// registerValues must equal the register file's size.
func (c *Core) InitializeRegisters(registerValues []uint32) error {
	if len(registerValues) != len(c.Registers) {
		return tiaerr.NewSimulatorError(c.Name, "register initialization data length and register file size do not match")
	}
	copy(c.Registers, registerValues)
	return nil
}

// Program overwrites the instruction store and initial register values.
func (c *Core) Program(p ir.Program) error {
	if err := c.InitializeRegisters(p.RegisterValues); err != nil {
		return err
	}
	c.Instructions = p.Instructions
	return nil
}

// CheckTrigger reports whether t currently fires against c's architectural state.
func (c *Core) CheckTrigger(t ir.Trigger) bool {
	for _, i := range t.TruePredicates {
		if !c.Predicates[i] {
			return false
		}
	}
	for _, i := range t.FalsePredicates {
		if c.Predicates[i] {
			return false
		}
	}
	for _, i := range t.InputChannels {
		if c.InputChannelBuffers[i].Empty() {
			return false
		}
	}
	for idx, i := range t.InputChannels {
		tag := t.InputChannelTags[idx]
		want := t.InputChannelTagBooleans[idx]
		packet, err := c.InputChannelBuffers[i].Peek()
		if err != nil {
			return false
		}
		if want {
			if packet.Tag != tag {
				return false
			}
		} else {
			if packet.Tag == tag {
				return false
			}
		}
	}
	for _, i := range t.OutputChannelIndices {
		if c.OutputChannelBuffers[i].Full() {
			return false
		}
	}
	return true
}

// findTriggered scans instructions in priority order and returns the
// first whose trigger fires, or nil.
func (c *Core) findTriggered() *ir.Instruction {
	for i := range c.Instructions {
		if c.CheckTrigger(c.Instructions[i].Trigger) {
			return &c.Instructions[i]
		}
	}
	return nil
}

func (c *Core) fetchOperand(s ir.Source, immediate uint32) (uint32, error) {
	switch s.Type {
	case ir.SourceNull:
		return 0, nil
	case ir.SourceImmediate:
		return immediate, nil
	case ir.SourceChannel:
		packet, err := c.InputChannelBuffers[s.Index].Peek()
		if err != nil {
			return 0, err
		}
		return packet.Value, nil
	case ir.SourceRegister:
		return c.Registers[s.Index], nil
	default:
		return 0, tiaerr.NewSimulatorError(c.Name, "unknown source type for operand")
	}
}

// Iterate performs one cycle of execution: if halted, it does nothing
// (optionally padding the trace with -1); otherwise it finds the
// highest-priority firing instruction, executes it, and commits its
// side effects. Buffer enqueue/dequeue calls made here only stage —
// System.Iterate's buffer-commit phase finalizes them.
func (c *Core) Iterate(keepExecutionTrace bool) error {
	var fired *ir.Instruction

	if !c.HaltRegister {
		fired = c.findTriggered()
		if fired != nil {
			if err := c.fire(fired); err != nil {
				return err
			}
		} else {
			c.UntriggeredCycles++
		}
	}

	if keepExecutionTrace {
		if fired != nil {
			c.ExecutionTrace = append(c.ExecutionTrace, fired.Number)
		} else {
			c.ExecutionTrace = append(c.ExecutionTrace, -1)
		}
	}
	return nil
}

func (c *Core) fire(inst *ir.Instruction) error {
	c.InstructionsRetired++
	if inst.Op == ir.OpHalt {
		c.HaltRegister = true
	}

	a, err := c.fetchOperand(inst.Sources[0], inst.Immediate)
	if err != nil {
		return err
	}
	b, err := c.fetchOperand(inst.Sources[1], inst.Immediate)
	if err != nil {
		return err
	}
	cc, err := c.fetchOperand(inst.Sources[2], inst.Immediate)
	if err != nil {
		return err
	}

	var result uint32
	switch inst.Op {
	case ir.OpLsw:
		if c.Scratchpad == nil {
			return tiaerr.NewSimulatorError(c.Name, "attempting to load a word in a core that has no scratchpad")
		}
		result = c.Scratchpad[a]
	case ir.OpSsw:
		if c.Scratchpad == nil {
			return tiaerr.NewSimulatorError(c.Name, "attempting to store a word in a core that has no scratchpad")
		}
		c.Scratchpad[b] = a
		result = 0
	default:
		result = ir.Implementations[inst.Op](a, b, cc)
	}

	switch inst.DestinationType {
	case ir.DestinationChannel:
		packet := ir.Packet{Tag: inst.OutputChannelTag, Value: result}
		for _, i := range inst.OutputChannelIndices {
			if err := c.OutputChannelBuffers[i].Enqueue(packet); err != nil {
				return err
			}
		}
	case ir.DestinationRegister:
		c.Registers[inst.DestinationIndex] = result
	case ir.DestinationPredicate:
		c.Predicates[inst.DestinationIndex] = result != 0
	case ir.DestinationNull:
		// no side effect
	default:
		return tiaerr.NewSimulatorError(c.Name, "unknown destination type")
	}

	for _, i := range inst.InputChannelsToDequeue {
		if _, err := c.InputChannelBuffers[i].Dequeue(); err != nil {
			return err
		}
	}

	for i, idx := range inst.PredicateUpdateIndices {
		c.Predicates[idx] = inst.PredicateUpdateValues[i]
	}

	return nil
}

// Halted reports whether the core's halt register is set.
func (c *Core) Halted() bool { return c.HaltRegister }

// Reset clears predicates, registers, the halt flag, both counters, the
// execution trace, and every channel buffer — but preserves the
// programmed instructions (and, by not touching it, any scratchpad
// content the caller considers persistent memory rather than PE state).
func (c *Core) Reset() {
	for i := range c.Predicates {
		c.Predicates[i] = false
	}
	for i := range c.Registers {
		c.Registers[i] = 0
	}
	c.HaltRegister = false
	c.InstructionsRetired = 0
	c.UntriggeredCycles = 0
	c.ExecutionTrace = nil
	for _, b := range c.InputChannelBuffers {
		b.Reset()
	}
	for _, b := range c.OutputChannelBuffers {
		b.Reset()
	}
}
