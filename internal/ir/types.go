/*
	TIA - Triggered-instruction intermediate representation

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

package ir

// SourceType discriminates where a datapath operand comes from. Null is
// the zero encoding.
type SourceType int

const (
	SourceNull SourceType = iota
	SourceImmediate
	SourceChannel
	SourceRegister

	numSourceTypes
)

// NumSourceTypes is the cardinality of SourceType, used to size the ST field.
const NumSourceTypes = int(numSourceTypes)

func (t SourceType) String() string {
	switch t {
	case SourceNull:
		return "null"
	case SourceImmediate:
		return "immediate"
	case SourceChannel:
		return "channel"
	case SourceRegister:
		return "register"
	default:
		return "?"
	}
}

// DestinationType discriminates where a datapath result is committed.
// Null is the zero encoding.
type DestinationType int

const (
	DestinationNull DestinationType = iota
	DestinationChannel
	DestinationRegister
	DestinationPredicate

	numDestinationTypes
)

// NumDestinationTypes is the cardinality of DestinationType, used to size the DT field.
const NumDestinationTypes = int(numDestinationTypes)

func (t DestinationType) String() string {
	switch t {
	case DestinationNull:
		return "null"
	case DestinationChannel:
		return "channel"
	case DestinationRegister:
		return "register"
	case DestinationPredicate:
		return "predicate"
	default:
		return "?"
	}
}

// Source pairs a SourceType with the slot's operand index (ignored when
// Type is SourceNull or SourceImmediate).
type Source struct {
	Type  SourceType
	Index int
}

// Trigger is the declarative predicate over processing-element state that
// gates whether an Instruction is eligible to fire in a given cycle.
type Trigger struct {
	TruePredicates  []int
	FalsePredicates []int

	// InputChannels, InputChannelTags, and InputChannelTagBooleans are
	// parallel slices: InputChannels[i] must be non-empty, and its head
	// packet's tag must (TagBooleans[i]==true) or must not
	// (TagBooleans[i]==false) equal InputChannelTags[i].
	InputChannels          []int
	InputChannelTags       []int
	InputChannelTagBooleans []bool

	// OutputChannelIndices lists output channels required to be non-full.
	OutputChannelIndices []int
}

// Packet is the unit of data carried by a channel buffer: an unsigned
// word tagged with a small integer used as a secondary trigger condition.
type Packet struct {
	Tag   int
	Value uint32
}

// Instruction is a Trigger plus the datapath, side-effect, and
// bookkeeping fields needed to fire it. Constructed at parse time and
// immutable thereafter.
type Instruction struct {
	Number int // assembler-assigned ordinal, for diagnostics

	Trigger Trigger
	Op      Op

	// Sources holds up to three (SourceType, index) operand slots.
	// Unused slots are SourceNull.
	Sources [3]Source

	// Immediate is the single value shared across any immediate-typed
	// source slots in this instruction.
	Immediate uint32

	DestinationType  DestinationType
	DestinationIndex int

	// OutputChannelTag and OutputChannelIndices are meaningful only when
	// DestinationType is DestinationChannel; OutputChannelIndices may list
	// more than one channel for high-fanout broadcast.
	OutputChannelTag     int
	OutputChannelIndices []int

	// InputChannelsToDequeue lists input channels to pop (not merely peek)
	// once the instruction fires.
	InputChannelsToDequeue []int

	// PredicateUpdateIndices and PredicateUpdateValues are parallel
	// slices applied, in order, after the destination commit.
	PredicateUpdateIndices []int
	PredicateUpdateValues  []bool
}

// Program is a single processing element's compiled configuration: an
// initial register-value vector and its priority-ordered instruction list.
type Program struct {
	Label          string
	RegisterValues []uint32
	Instructions   []Instruction
}
