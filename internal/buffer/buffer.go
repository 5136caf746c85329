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

// Package buffer implements the two-phase-commit FIFO that every channel,
// router link, and memory port in the system is built from: peek and
// emptiness queries observe only committed state, enqueue/dequeue only
// stage a change, and Commit applies the staged dequeue before the
// staged enqueue. This is what lets System.Iterate run PEs in any order
// within a cycle and still see a consistent prior-cycle snapshot.
package buffer

import (
	"container/list"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/tiaerr"
)

// Buffer is a bounded FIFO of packets with two-phase commit semantics.
type Buffer struct {
	Name  string
	depth int
	deque *list.List

	stagedEnqueue bool
	stagedPacket  ir.Packet
	stagedDequeue bool
	pending       bool

	// PeripheralDestination, when non-empty, names the buffer this one
	// forwards to. It is a label only: nothing in this module sets or
	// reads it.
	PeripheralDestination string
}

// New constructs an empty Buffer with the given FIFO depth.
func New(name string, depth int) *Buffer {
	return &Buffer{Name: name, depth: depth, deque: list.New()}
}

// Count is the number of committed packets currently held.
func (b *Buffer) Count() int { return b.deque.Len() }

// Remaining is the free capacity for additional committed packets.
func (b *Buffer) Remaining() int { return b.depth - b.deque.Len() }

// Full reports whether the committed FIFO is at capacity.
func (b *Buffer) Full() bool { return b.deque.Len() >= b.depth }

// Empty reports whether the committed FIFO holds no packets.
func (b *Buffer) Empty() bool { return b.deque.Len() == 0 }

// Peek returns the head packet without removing it. It is an error to
// peek an empty buffer.
func (b *Buffer) Peek() (ir.Packet, error) {
	if b.Empty() {
		return ir.Packet{}, tiaerr.NewSimulatorError(b.Name, "peek from an empty buffer")
	}
	return b.deque.Front().Value.(ir.Packet), nil
}

// Enqueue stages a packet for addition on the next Commit. It is an
// error to stage an enqueue against a full buffer, unless a dequeue is
// already staged for the same Commit to free a slot first.
func (b *Buffer) Enqueue(p ir.Packet) error {
	if b.Full() && !b.stagedDequeue {
		return tiaerr.NewSimulatorError(b.Name, "enqueue to a full buffer")
	}
	b.stagedEnqueue = true
	b.stagedPacket = p
	b.pending = true
	return nil
}

// Dequeue stages the head packet's removal on the next Commit and
// returns it immediately (matching the original's "peek-then-stage"
// return value). It is an error to stage a dequeue against an empty buffer.
func (b *Buffer) Dequeue() (ir.Packet, error) {
	p, err := b.Peek()
	if err != nil {
		return ir.Packet{}, err
	}
	b.stagedDequeue = true
	b.pending = true
	return p, nil
}

// Commit applies any staged dequeue, then any staged enqueue, clearing
// the staging state. Dequeue-then-enqueue ordering lets a buffer at
// capacity be drained and refilled within the same cycle.
func (b *Buffer) Commit() {
	if !b.pending {
		return
	}
	if b.stagedDequeue {
		b.deque.Remove(b.deque.Front())
	}
	if b.stagedEnqueue {
		b.deque.PushBack(b.stagedPacket)
	}
	b.stagedDequeue = false
	b.stagedEnqueue = false
	b.pending = false
}

// Reset clears both committed contents and any staged operation.
func (b *Buffer) Reset() {
	b.deque.Init()
	b.stagedDequeue = false
	b.stagedEnqueue = false
	b.pending = false
}

// Sender, Receiver, and Routing are nominal subtypes of Buffer. Their
// semantics are identical to the base Buffer; distinguishing them as
// types (rather than a runtime discriminator, as the reference
// implementation does) lets connection-correctness be a compile-time
// property: a function that wants "something packets can be dequeued
// from for routing" simply takes a *Sender, not a *Buffer.
type (
	Sender   struct{ *Buffer }
	Receiver struct{ *Buffer }
	Routing  struct{ *Buffer }
)

// NewSender constructs a Buffer wrapped as a channel-output endpoint.
func NewSender(name string, depth int) *Sender { return &Sender{New(name, depth)} }

// NewReceiver constructs a Buffer wrapped as a channel-input endpoint.
func NewReceiver(name string, depth int) *Receiver { return &Receiver{New(name, depth)} }

// NewRouting constructs a Buffer wrapped as a physical router link.
func NewRouting(name string, depth int) *Routing { return &Routing{New(name, depth)} }
