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

package router

import (
	"testing"

	"github.com/opencgra/tia/internal/assemble"
	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/pe"
)

// referenceCore builds the reference architecture spec.md's scenarios
// are stated against: 8 predicates, 8 registers, 4 in/out channels
// (one per cardinal direction), buffer depth 4.
func referenceCore(t *testing.T) *parameters.Core {
	t.Helper()
	cp, err := parameters.CoreFromMap(map[string]any{
		"architecture":                    "reference",
		"device_word_width":               32,
		"immediate_width":                 32,
		"mm_instruction_width":            256,
		"num_instructions":                16,
		"num_predicates":                  8,
		"num_registers":                   8,
		"has_multiplier":                  false,
		"has_two_word_product_multiplier": false,
		"has_scratchpad":                  true,
		"num_scratchpad_words":            16,
		"latch_based_instruction_memory":  true,
		"ram_based_immediate_storage":     false,
		"num_input_channels":              4,
		"num_output_channels":             4,
		"channel_buffer_depth":            4,
		"max_num_input_channels_to_check": 3,
		"num_tags":                        16,
		"has_speculative_predicate_unit":  false,
		"has_effective_queue_status":      false,
		"has_debug_monitor":               false,
		"has_performance_counters":        false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := cp.Validate(); err != nil {
		t.Fatalf("reference core does not validate against its own widths: %v", err)
	}
	return cp
}

func mustParse(t *testing.T, number int, statement string) ir.Instruction {
	t.Helper()
	inst, err := assemble.ParseInstruction(number, statement)
	if err != nil {
		t.Fatalf("parsing %q: %v", statement, err)
	}
	return inst
}

// TestSoftwareRouterDeliversEastToWest is spec.md S3: two PEs connected
// east-west exchange a single packet across their routers, and the
// receiving PE's dequeue leaves the channel empty again.
//
// PE0 sends on its east output channel (index 1); ConnectToProcessingElement
// wires a neighbor's east output to this side's west input, so the
// packet must surface on PE1's west input channel (index 3).
func TestSoftwareRouterDeliversEastToWest(t *testing.T) {
	cp := referenceCore(t)

	core0 := pe.NewCore("pe0", cp)
	core0.Instructions = []ir.Instruction{
		mustParse(t, 0, "when %p == XXXXXXXX : mov %o1.0, $42;"),
	}
	r0 := NewSoftwareRouter(core0, int(NumDirections), int(NumDirections))

	core1 := pe.NewCore("pe1", cp)
	core1.Instructions = []ir.Instruction{
		mustParse(t, 0, "when %p == XXXXXXXX with %i3.0 : mov %r0, %i3; deq %i3;"),
	}
	r1 := NewSoftwareRouter(core1, int(NumDirections), int(NumDirections))

	r0.ConnectToProcessingElement(East, r1)
	r1.ConnectToProcessingElement(West, r0)

	// Cycle 1: PE0 fires, staging $42 onto its own east output buffer.
	// PE1's trigger does not yet see the packet (it hasn't crossed the
	// router, which only runs after both cores have iterated).
	if err := core0.Iterate(false); err != nil {
		t.Fatal(err)
	}
	if err := core1.Iterate(false); err != nil {
		t.Fatal(err)
	}
	if err := r0.Iterate(); err != nil {
		t.Fatal(err)
	}
	if err := r1.Iterate(); err != nil {
		t.Fatal(err)
	}
	core0.OutputChannelBuffers[East].Commit()
	core1.InputChannelBuffers[West].Commit()

	if core1.Registers[0] != 0 {
		t.Fatalf("packet must not be visible to pe1 before the router has moved it: got %%r0 = %d", core1.Registers[0])
	}

	// Cycle 2: the packet is now committed into pe1's west input buffer,
	// so pe1's trigger fires and both reads and dequeues it.
	if err := core0.Iterate(false); err != nil {
		t.Fatal(err)
	}
	if err := core1.Iterate(false); err != nil {
		t.Fatal(err)
	}
	if err := r0.Iterate(); err != nil {
		t.Fatal(err)
	}
	if err := r1.Iterate(); err != nil {
		t.Fatal(err)
	}
	core0.OutputChannelBuffers[East].Commit()
	core1.InputChannelBuffers[West].Commit()

	if core1.Registers[0] != 42 {
		t.Fatalf("got %%r0 = %d on pe1, want 42", core1.Registers[0])
	}
	if !core1.InputChannelBuffers[West].Empty() {
		t.Fatal("pe1's west input channel must be empty again after its deq commits")
	}
}

// TestSoftwareRouterDoesNotOverwriteAFullDestination confirms Iterate
// leaves a packet staged at the source rather than dropping it when the
// destination buffer has no room.
func TestSoftwareRouterDoesNotOverwriteAFullDestination(t *testing.T) {
	cp := referenceCore(t)

	core0 := pe.NewCore("pe0", cp)
	core1 := pe.NewCore("pe1", cp)
	r0 := NewSoftwareRouter(core0, int(NumDirections), int(NumDirections))
	r1 := NewSoftwareRouter(core1, int(NumDirections), int(NumDirections))
	r0.ConnectToProcessingElement(East, r1)
	r1.ConnectToProcessingElement(West, r0)

	// Fill pe1's west input channel to capacity (depth 4) directly, one
	// staged packet per Commit.
	for i := 0; i < cp.ChannelBufferDepth; i++ {
		if err := core1.InputChannelBuffers[West].Enqueue(ir.Packet{Tag: 0, Value: uint32(i)}); err != nil {
			t.Fatal(err)
		}
		core1.InputChannelBuffers[West].Commit()
	}
	if !core1.InputChannelBuffers[West].Full() {
		t.Fatal("setup failed: pe1's west input channel should be full")
	}

	if err := core0.OutputChannelBuffers[East].Enqueue(ir.Packet{Tag: 0, Value: 99}); err != nil {
		t.Fatal(err)
	}
	core0.OutputChannelBuffers[East].Commit()

	if err := r0.Iterate(); err != nil {
		t.Fatal(err)
	}
	core0.OutputChannelBuffers[East].Commit()
	core1.InputChannelBuffers[West].Commit()

	if core0.OutputChannelBuffers[East].Empty() {
		t.Fatal("a packet blocked by a full destination must stay queued at the source")
	}
}
