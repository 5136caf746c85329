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

package system

import "testing"

// fakePE is a minimal peComponent stub that records the global step
// order it was called at, so tests can check phase ordering without
// depending on internal/pe.
type fakePE struct {
	halted   bool
	steps    *[]string
	iterated int
	reset    int
}

func (p *fakePE) Iterate(bool) error {
	*p.steps = append(*p.steps, "pe")
	p.iterated++
	return nil
}
func (p *fakePE) Halted() bool { return p.halted }
func (p *fakePE) Reset()       { p.reset++ }

type fakeMem struct {
	steps   *[]string
	reset   int
}

func (m *fakeMem) Iterate() error {
	*m.steps = append(*m.steps, "mem")
	return nil
}
func (m *fakeMem) Reset() { m.reset++ }

type fakeBuf struct {
	empty     bool
	steps     *[]string
	committed int
	reset     int
}

func (b *fakeBuf) Commit() {
	*b.steps = append(*b.steps, "buf")
	b.committed++
}
func (b *fakeBuf) Empty() bool { return b.empty }
func (b *fakeBuf) Reset()      { b.reset++ }

// TestIteratePhaseOrdering is spec.md's three-phase cycle structure: all
// PEs iterate, then all memories iterate, then all buffers commit — in
// that order, regardless of registration order between kinds.
func TestIteratePhaseOrdering(t *testing.T) {
	var steps []string
	s := New()
	pe1 := &fakePE{halted: true, steps: &steps}
	pe2 := &fakePE{halted: true, steps: &steps}
	mem1 := &fakeMem{steps: &steps}
	buf1 := &fakeBuf{empty: true, steps: &steps}

	s.RegisterPE(pe1, buf1)
	s.RegisterMemory(mem1)
	s.RegisterPE(pe2)

	if _, err := s.Iterate(false); err != nil {
		t.Fatal(err)
	}

	want := []string{"pe", "pe", "mem", "buf"}
	if len(steps) != len(want) {
		t.Fatalf("got steps %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("got steps %v, want %v", steps, want)
		}
	}
}

// TestHaltRequiresAllPEsAndAllBuffersEmpty exercises spec.md's halt
// condition directly: AND of every PE's halt flag AND every buffer's
// emptiness.
func TestHaltRequiresAllPEsAndAllBuffersEmpty(t *testing.T) {
	cases := []struct {
		name       string
		pe1Halted  bool
		pe2Halted  bool
		bufEmpty   bool
		wantHalted bool
	}{
		{"all halted, buffer empty", true, true, true, true},
		{"one pe still running", false, true, true, false},
		{"both halted but buffer not empty", true, true, false, false},
	}
	for _, c := range cases {
		var steps []string
		s := New()
		s.RegisterPE(&fakePE{halted: c.pe1Halted, steps: &steps})
		s.RegisterPE(&fakePE{halted: c.pe2Halted, steps: &steps}, &fakeBuf{empty: c.bufEmpty, steps: &steps})

		halted, err := s.Iterate(false)
		if err != nil {
			t.Fatal(err)
		}
		if halted != c.wantHalted {
			t.Fatalf("%s: got halted %v, want %v", c.name, halted, c.wantHalted)
		}
	}
}

// TestCycleCounterOnlyAdvancesWhileRunning: the cycle counter increments
// on every non-halting iteration and freezes once halted.
func TestCycleCounterOnlyAdvancesWhileRunning(t *testing.T) {
	var steps []string
	s := New()
	pe := &fakePE{halted: false, steps: &steps}
	s.RegisterPE(pe)

	for i := 0; i < 3; i++ {
		if _, err := s.Iterate(false); err != nil {
			t.Fatal(err)
		}
	}
	if s.Cycle != 3 {
		t.Fatalf("got cycle %d, want 3", s.Cycle)
	}

	pe.halted = true
	halted, err := s.Iterate(false)
	if err != nil {
		t.Fatal(err)
	}
	if !halted {
		t.Fatal("expected the system to report halted")
	}
	if s.Cycle != 3 {
		t.Fatalf("got cycle %d after halting iteration, want 3 (must not advance)", s.Cycle)
	}
}

// TestResetIsIdempotent is spec.md property 5 at the System level:
// resetting twice must not double-apply any reset side effect, and
// must zero the cycle counter.
func TestResetIsIdempotent(t *testing.T) {
	var steps []string
	s := New()
	pe := &fakePE{halted: false, steps: &steps}
	mem := &fakeMem{steps: &steps}
	buf := &fakeBuf{steps: &steps}
	s.RegisterPE(pe, buf)
	s.RegisterMemory(mem)

	if _, err := s.Iterate(false); err != nil {
		t.Fatal(err)
	}

	s.Reset()
	s.Reset()

	if s.Cycle != 0 {
		t.Fatalf("got cycle %d after reset, want 0", s.Cycle)
	}
	if pe.reset != 2 || mem.reset != 2 || buf.reset != 2 {
		t.Fatalf("got reset calls pe=%d mem=%d buf=%d, want exactly 2 each", pe.reset, mem.reset, buf.reset)
	}
}
