/*
	TIA - Staged FIFO channel buffers

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

package buffer

import (
	"testing"

	"github.com/opencgra/tia/internal/ir"
)

func TestPeekDoesNotRemove(t *testing.T) {
	b := New("test", 4)
	if err := b.Enqueue(ir.Packet{Value: 1}); err != nil {
		t.Fatal(err)
	}
	b.Commit()

	before, err := b.Peek()
	if err != nil {
		t.Fatal(err)
	}
	after, err := b.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if before != after {
		t.Fatalf("peek changed head: %v != %v", before, after)
	}
	if b.Count() != 1 {
		t.Fatalf("peek changed count: got %d, want 1", b.Count())
	}
}

func TestPeekEmptyErrors(t *testing.T) {
	b := New("test", 4)
	if _, err := b.Peek(); err == nil {
		t.Fatal("expected an error peeking an empty buffer")
	}
}

func TestEnqueueStagesUntilCommit(t *testing.T) {
	b := New("test", 4)
	if err := b.Enqueue(ir.Packet{Value: 7}); err != nil {
		t.Fatal(err)
	}
	if !b.Empty() {
		t.Fatal("enqueue must not take effect before Commit")
	}
	b.Commit()
	if b.Empty() {
		t.Fatal("enqueue must take effect after Commit")
	}
}

func TestDequeueStagesUntilCommit(t *testing.T) {
	b := New("test", 4)
	if err := b.Enqueue(ir.Packet{Value: 9}); err != nil {
		t.Fatal(err)
	}
	b.Commit()

	p, err := b.Dequeue()
	if err != nil {
		t.Fatal(err)
	}
	if p.Value != 9 {
		t.Fatalf("dequeue returned %v, want Value 9", p)
	}
	if b.Empty() {
		t.Fatal("dequeue must not remove the packet before Commit")
	}
	b.Commit()
	if !b.Empty() {
		t.Fatal("dequeue must remove the packet after Commit")
	}
}

func TestCommitDequeuesBeforeEnqueueing(t *testing.T) {
	b := New("test", 1)
	if err := b.Enqueue(ir.Packet{Value: 1}); err != nil {
		t.Fatal(err)
	}
	b.Commit()

	if _, err := b.Dequeue(); err != nil {
		t.Fatal(err)
	}
	if err := b.Enqueue(ir.Packet{Value: 2}); err != nil {
		t.Fatalf("a full buffer drained this same cycle must accept a refill: %v", err)
	}
	b.Commit()

	got, err := b.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 2 {
		t.Fatalf("got head %v, want Value 2", got)
	}
}

func TestEnqueueFullErrors(t *testing.T) {
	b := New("test", 1)
	if err := b.Enqueue(ir.Packet{Value: 1}); err != nil {
		t.Fatal(err)
	}
	b.Commit()
	if err := b.Enqueue(ir.Packet{Value: 2}); err == nil {
		t.Fatal("expected an error enqueueing a full buffer")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	b := New("test", 4)
	if err := b.Enqueue(ir.Packet{Value: 1}); err != nil {
		t.Fatal(err)
	}
	b.Commit()
	if err := b.Enqueue(ir.Packet{Value: 2}); err != nil {
		t.Fatal(err)
	}

	b.Reset()
	b.Reset()

	if !b.Empty() {
		t.Fatal("reset (even applied twice) must leave the buffer empty")
	}
	if err := b.Enqueue(ir.Packet{Value: 3}); err != nil {
		t.Fatalf("buffer should accept fresh work after reset: %v", err)
	}
}
