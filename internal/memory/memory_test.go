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

package memory

import (
	"testing"

	"github.com/opencgra/tia/internal/ir"
)

func TestWritePortCommitsOnlyWhenBothArrive(t *testing.T) {
	m := New("m", 16)
	wp := NewWritePort("w", 4)
	m.AddWritePort(wp)

	if err := wp.AddrIn.Enqueue(ir.Packet{Value: 3}); err != nil {
		t.Fatal(err)
	}
	wp.AddrIn.Commit()

	if err := m.Iterate(); err != nil {
		t.Fatal(err)
	}
	if m.Contents[3] != 0 {
		t.Fatalf("write committed with only an address present: got %d, want 0", m.Contents[3])
	}

	if err := wp.DataIn.Enqueue(ir.Packet{Value: 77}); err != nil {
		t.Fatal(err)
	}
	wp.DataIn.Commit()

	if err := m.Iterate(); err != nil {
		t.Fatal(err)
	}
	wp.AddrIn.Commit()
	wp.DataIn.Commit()

	if m.Contents[3] != 77 {
		t.Fatalf("got contents[3] = %d, want 77", m.Contents[3])
	}
	if !wp.AddrIn.Empty() || !wp.DataIn.Empty() {
		t.Fatal("write port buffers should be drained once the write commits")
	}
}

// TestReadPortHasOneCycleLatency: a read's data surfaces no earlier
// than the cycle after its address was accepted.
func TestReadPortHasOneCycleLatency(t *testing.T) {
	m := New("m", 16)
	m.Contents[5] = 123
	rp := NewReadPort("r", 4)
	m.AddReadPort(rp)

	if err := rp.AddrIn.Enqueue(ir.Packet{Tag: 9, Value: 5}); err != nil {
		t.Fatal(err)
	}
	rp.AddrIn.Commit()

	if err := m.Iterate(); err != nil {
		t.Fatal(err)
	}
	rp.AddrIn.Commit()
	if !rp.DataOut.Empty() {
		t.Fatal("data must not surface in the same cycle the address was accepted")
	}

	if err := m.Iterate(); err != nil {
		t.Fatal(err)
	}
	rp.DataOut.Commit()

	if rp.DataOut.Empty() {
		t.Fatal("data must surface the cycle after the address was accepted")
	}
	packet, err := rp.DataOut.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if packet.Tag != 9 || packet.Value != 123 {
		t.Fatalf("got %+v, want {Tag: 9, Value: 123}", packet)
	}
}

func TestMemoryResetPreservesContents(t *testing.T) {
	m := New("m", 4)
	m.Contents[0] = 55
	rp := NewReadPort("r", 4)
	m.AddReadPort(rp)
	if err := rp.AddrIn.Enqueue(ir.Packet{Value: 0}); err != nil {
		t.Fatal(err)
	}
	rp.AddrIn.Commit()

	m.Reset()

	if m.Contents[0] != 55 {
		t.Fatalf("reset must preserve memory contents: got %d, want 55", m.Contents[0])
	}
	if !rp.AddrIn.Empty() {
		t.Fatal("reset must clear port buffers")
	}
}
