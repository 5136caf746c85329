/*
	TIA - Assembler: macro substitution, label splitting, and program assembly

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

	"github.com/opencgra/tia/internal/parameters"
)

// referenceCore builds the reference architecture spec.md's scenarios
// are stated against: 8 predicates, 8 registers, 4 in/out channels,
// buffer depth 4.
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

// TestParseProgramSizesRegistersToArchitecture is spec.md scenario S1's
// own failure mode: a program that only initializes %r0 must still
// produce a register file sized to the full architecture (8 registers),
// not to the highest index actually written (1 register) — pe.Core's
// InitializeRegisters hard-rejects any length mismatch.
func TestParseProgramSizesRegistersToArchitecture(t *testing.T) {
	cp := referenceCore(t)
	program, err := ParseProgram(cp, "pe0", "init %r0, $3;\nwhen %p == 00000000 : add %r1, %r0, $7;\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(program.RegisterValues) != cp.NumRegisters {
		t.Fatalf("got %d register values, want %d (cp.NumRegisters)", len(program.RegisterValues), cp.NumRegisters)
	}
	if program.RegisterValues[0] != 3 {
		t.Fatalf("got register 0 = %d, want 3", program.RegisterValues[0])
	}
	for i := 1; i < len(program.RegisterValues); i++ {
		if program.RegisterValues[i] != 0 {
			t.Fatalf("register %d = %d, want 0 (never initialized)", i, program.RegisterValues[i])
		}
	}
}

// TestParseProgramWithNoInitLinesStillSizesRegisters: a program with no
// "init" lines at all must still produce a full-sized, zeroed register
// file rather than an empty slice.
func TestParseProgramWithNoInitLinesStillSizesRegisters(t *testing.T) {
	cp := referenceCore(t)
	program, err := ParseProgram(cp, "pe0", "when %p == XXXXXXXX : halt;\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(program.RegisterValues) != cp.NumRegisters {
		t.Fatalf("got %d register values, want %d (cp.NumRegisters)", len(program.RegisterValues), cp.NumRegisters)
	}
}

// TestParseProgramRegisterIndexOutOfRangeRejected: an "init" line
// naming a register index the architecture does not have must be
// rejected at parse time, not silently grown into.
func TestParseProgramRegisterIndexOutOfRangeRejected(t *testing.T) {
	cp := referenceCore(t)
	if _, err := ParseProgram(cp, "pe0", "init %r8, $1;\n"); err == nil {
		t.Fatal("expected an error initializing register 8 on an 8-register architecture")
	}
}

// TestParseAssemblyEndToEndSizesRegisters exercises the full pipeline
// (macro substitution, label splitting, per-section parse+validate)
// that cmd/tia and internal/console both call directly into
// pe.Core.Program, confirming the register file pe.Core actually
// receives is correctly sized.
func TestParseAssemblyEndToEndSizesRegisters(t *testing.T) {
	cp := referenceCore(t)
	source := "<pe0>\ninit %r0, $3;\nwhen %p == 00000000 : add %r1, %r0, $7;\n"
	programs, err := ParseAssembly(cp, map[string]string{}, source)
	if err != nil {
		t.Fatal(err)
	}
	if len(programs) != 1 {
		t.Fatalf("got %d programs, want 1", len(programs))
	}
	if len(programs[0].RegisterValues) != cp.NumRegisters {
		t.Fatalf("got %d register values, want %d (cp.NumRegisters)", len(programs[0].RegisterValues), cp.NumRegisters)
	}
}
