/*
	TIA - Assembler: instruction and datapath parsing

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

package assemble

import (
	"testing"

	"github.com/opencgra/tia/internal/ir"
)

func TestParseInstructionAddImmediate(t *testing.T) {
	inst, err := ParseInstruction(0, "when %p == 00000000 : add %r1, %r0, $7;")
	if err != nil {
		t.Fatal(err)
	}
	if inst.Op != ir.OpAdd {
		t.Fatalf("got op %v, want add", inst.Op)
	}
	if inst.DestinationType != ir.DestinationRegister || inst.DestinationIndex != 1 {
		t.Fatalf("got destination (%v, %d), want (register, 1)", inst.DestinationType, inst.DestinationIndex)
	}
	if inst.Sources[0].Type != ir.SourceRegister || inst.Sources[0].Index != 0 {
		t.Fatalf("got source 0 %+v, want register 0", inst.Sources[0])
	}
	if inst.Sources[1].Type != ir.SourceImmediate || inst.Immediate != 7 {
		t.Fatalf("got source 1 %+v immediate %d, want immediate 7", inst.Sources[1], inst.Immediate)
	}
	if len(inst.Trigger.TruePredicates) != 0 || len(inst.Trigger.FalsePredicates) != 8 {
		t.Fatalf("got trigger %+v, want all 8 predicates false", inst.Trigger)
	}
}

func TestParseInstructionHalt(t *testing.T) {
	inst, err := ParseInstruction(0, "when %p == XXXXXXXX : halt;")
	if err != nil {
		t.Fatal(err)
	}
	if inst.Op != ir.OpHalt {
		t.Fatalf("got op %v, want halt", inst.Op)
	}
	if len(inst.Trigger.TruePredicates) != 0 || len(inst.Trigger.FalsePredicates) != 0 {
		t.Fatalf("got trigger %+v, want an unconstrained (all don't-care) trigger", inst.Trigger)
	}
}

func TestParseInstructionChannelDequeue(t *testing.T) {
	inst, err := ParseInstruction(0, "when %p == XXXXXXXX with %i2.0 : mov %r0, %i2; deq %i2;")
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.Trigger.InputChannels) != 1 || inst.Trigger.InputChannels[0] != 2 {
		t.Fatalf("got trigger input channels %v, want [2]", inst.Trigger.InputChannels)
	}
	if !inst.Trigger.InputChannelTagBooleans[0] || inst.Trigger.InputChannelTags[0] != 0 {
		t.Fatalf("got trigger tag condition %v/%v, want (tag 0, required)", inst.Trigger.InputChannelTags, inst.Trigger.InputChannelTagBooleans)
	}
	if len(inst.InputChannelsToDequeue) != 1 || inst.InputChannelsToDequeue[0] != 2 {
		t.Fatalf("got dequeue list %v, want [2]", inst.InputChannelsToDequeue)
	}
}

func TestParseInstructionPredicateUpdate(t *testing.T) {
	inst, err := ParseInstruction(0, "when %p == 10 : mov %r0, $1; set %p = 01;")
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.PredicateUpdateIndices) != 2 {
		t.Fatalf("got %d predicate updates, want 2 (both bits flip)", len(inst.PredicateUpdateIndices))
	}
}

// TestHighFanoutDuplicateIndicesRejected is spec.md property 6: the
// encoder's input must never carry a high-fanout destination list with
// a repeated channel index.
func TestHighFanoutDuplicateIndicesRejected(t *testing.T) {
	_, err := ParseInstruction(0, "when %p == XX : mov %o{0,0}.1, $1;")
	if err == nil {
		t.Fatal("expected an error for a duplicated high-fanout destination index")
	}
}

func TestHighFanoutDistinctIndicesAccepted(t *testing.T) {
	inst, err := ParseInstruction(0, "when %p == XX : mov %o{0,1}.1, $1;")
	if err != nil {
		t.Fatal(err)
	}
	if len(inst.OutputChannelIndices) != 2 {
		t.Fatalf("got %d output channel indices, want 2", len(inst.OutputChannelIndices))
	}
}

func TestScratchpadStoreThenLoad(t *testing.T) {
	store, err := ParseInstruction(0, "when %p == XX : ssw %r1, $5;")
	if err != nil {
		t.Fatal(err)
	}
	if store.Op != ir.OpSsw || store.Sources[0].Index != 1 || store.Sources[1].Type != ir.SourceImmediate {
		t.Fatalf("got %+v, want ssw %%r1 into scratchpad slot $5", store)
	}

	load, err := ParseInstruction(1, "when %p == XX : lsw %r2, $5;")
	if err != nil {
		t.Fatal(err)
	}
	if load.Op != ir.OpLsw || load.DestinationIndex != 2 {
		t.Fatalf("got %+v, want lsw into %%r2", load)
	}
}
