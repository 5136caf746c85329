/*
	TIA - Machine code disassembler

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

// Package disassemble reconstructs an ir.Instruction from its physical
// instruction word, the mirror image of internal/encode, and renders it
// back to the assembly surface syntax internal/assemble accepts. There
// is no disassembler in the reference toolchain to ground this package
// on; it is grounded on internal/encode's field layout (itself grounded
// on machine_code.py) and on the teacher's disassembler package shape
// (a flat opcode table plus a formatting pass over decoded fields).
package disassemble

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/tiaerr"
)

// field pulls the low `width` bits off the bottom of word and returns
// them, leaving word shifted right past them (so repeated calls walk a
// word from its least-significant field to its most-significant).
func field(word *big.Int, width int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(width))
	mask.Sub(mask, big.NewInt(1))
	v := new(big.Int).And(word, mask)
	word.Rsh(word, uint(width))
	return v
}

// DecodeInstruction reconstructs an ir.Instruction from its physical
// instruction word (the same big.Int shape internal/encode.
// MachineCodeInstruction produces, validity bit included).
func DecodeInstruction(cp *parameters.Core, number int, word *big.Int) (ir.Instruction, error) {
	remaining := new(big.Int).Set(word)

	field(remaining, cp.PaddingWidth())

	immediate := field(remaining, cp.ImmediateWidth)

	pum := field(remaining, cp.PUMWidth())
	falsePUM := new(big.Int).And(pum, lowMask(cp.FalsePUMWidth()))
	truePUM := new(big.Int).Rsh(pum, uint(cp.FalsePUMWidth()))

	icd := field(remaining, cp.ICDWidth())
	oct := field(remaining, cp.OCTWidth())
	oci := field(remaining, cp.OCIWidth())

	di := field(remaining, cp.DIWidth())
	dt := field(remaining, cp.DTWidth())

	si := field(remaining, cp.SIWidth())
	st := field(remaining, cp.STWidth())

	opField := field(remaining, cp.OpWidth())

	ictv := field(remaining, cp.ICTVWidth())
	ictb := field(remaining, cp.ICTBWidth())
	ici := field(remaining, cp.ICIWidth())

	ptm := field(remaining, cp.PTMWidth())
	falsePTM := new(big.Int).And(ptm, lowMask(cp.FalsePTMWidth()))
	truePTM := new(big.Int).Rsh(ptm, uint(cp.FalsePTMWidth()))

	validity := field(remaining, 1)
	if validity.Sign() == 0 {
		return ir.Instruction{}, tiaerr.NewSimulatorError("disassemble", "instruction word is not marked valid")
	}

	inst := ir.Instruction{Number: number}

	for i := 0; i < cp.NumPredicates; i++ {
		if truePTM.Bit(i) == 1 {
			inst.Trigger.TruePredicates = append(inst.Trigger.TruePredicates, i)
		}
		if falsePTM.Bit(i) == 1 {
			inst.Trigger.FalsePredicates = append(inst.Trigger.FalsePredicates, i)
		}
	}

	// ici/ictv/ictb are laid out, high to low, as [channel k-1 ... channel
	// 0, null-padding]; peeling from the low (null) end first and
	// appending each non-null slot as it's found reconstructs the
	// original channel-0-first order.
	singleICIWidth := uint(cp.SingleICIWidth())
	tagWidth := uint(cp.TagWidth())
	iciMask := lowMask(int(singleICIWidth))
	ictvMask := lowMask(int(tagWidth))
	for slot := cp.MaxNumInputChannelsToCheck - 1; slot >= 0; slot-- {
		slotICI := new(big.Int).And(ici, iciMask)
		ici.Rsh(ici, singleICIWidth)
		slotTag := new(big.Int).And(ictv, ictvMask)
		ictv.Rsh(ictv, tagWidth)
		slotBoolean := ictb.Bit(0) == 1
		ictb.Rsh(ictb, 1)
		if slotICI.Sign() == 0 {
			continue
		}
		inst.Trigger.InputChannels = append(inst.Trigger.InputChannels, int(slotICI.Int64())-1)
		inst.Trigger.InputChannelTags = append(inst.Trigger.InputChannelTags, int(slotTag.Int64()))
		inst.Trigger.InputChannelTagBooleans = append(inst.Trigger.InputChannelTagBooleans, slotBoolean)
	}

	inst.Op = ir.Op(opField.Int64())

	singleSTWidth := uint(cp.SingleSTWidth())
	singleSIWidth := uint(cp.SingleSIWidth())
	stMask := lowMask(int(singleSTWidth))
	siMask := lowMask(int(singleSIWidth))
	for slot := 0; slot < 3; slot++ {
		inst.Sources[slot].Type = ir.SourceType(new(big.Int).And(st, stMask).Int64())
		st.Rsh(st, singleSTWidth)
		inst.Sources[slot].Index = int(new(big.Int).And(si, siMask).Int64())
		si.Rsh(si, singleSIWidth)
	}

	inst.DestinationType = ir.DestinationType(dt.Int64())
	inst.DestinationIndex = int(di.Int64())
	inst.OutputChannelTag = int(oct.Int64())
	inst.Immediate = uint32(immediate.Int64())

	for channel := 0; channel < cp.NumOutputChannels; channel++ {
		if oci.Bit(channel) == 1 {
			inst.OutputChannelIndices = append(inst.OutputChannelIndices, channel)
		}
	}
	for channel := 0; channel < cp.NumInputChannels; channel++ {
		if icd.Bit(channel) == 1 {
			inst.InputChannelsToDequeue = append(inst.InputChannelsToDequeue, channel)
		}
	}

	for i := 0; i < cp.NumPredicates; i++ {
		if truePUM.Bit(i) == 1 {
			inst.PredicateUpdateIndices = append(inst.PredicateUpdateIndices, i)
			inst.PredicateUpdateValues = append(inst.PredicateUpdateValues, true)
		}
		if falsePUM.Bit(i) == 1 {
			inst.PredicateUpdateIndices = append(inst.PredicateUpdateIndices, i)
			inst.PredicateUpdateValues = append(inst.PredicateUpdateValues, false)
		}
	}

	return inst, nil
}

func lowMask(width int) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), uint(width))
	return m.Sub(m, big.NewInt(1))
}

// FormatInstruction renders inst back to the "when ... : ...;" surface
// syntax internal/assemble accepts, right-indexed predicate bit strings
// included.
func FormatInstruction(cp *parameters.Core, inst ir.Instruction) string {
	var b strings.Builder

	b.WriteString("when %p == ")
	b.WriteString(predicateBinString(cp.NumPredicates, inst.Trigger.TruePredicates, inst.Trigger.FalsePredicates))

	if len(inst.Trigger.InputChannels) > 0 {
		b.WriteString(" with ")
		conds := make([]string, len(inst.Trigger.InputChannels))
		for i, ch := range inst.Trigger.InputChannels {
			bang := ""
			if !inst.Trigger.InputChannelTagBooleans[i] {
				bang = "!"
			}
			conds[i] = fmt.Sprintf("%s%%i%d.%d", bang, ch, inst.Trigger.InputChannelTags[i])
		}
		b.WriteString(strings.Join(conds, ", "))
	}

	b.WriteString(": ")
	b.WriteString(inst.Op.String())

	hasDestination := inst.DestinationType != ir.DestinationNull || len(inst.OutputChannelIndices) > 0
	if hasDestination {
		b.WriteString(" ")
		b.WriteString(formatDestination(inst))
	}

	// With no destination (ssw), the first source takes the space-separated
	// slot after the opcode, as the assembler's tokenizer requires.
	separator := ", "
	if !hasDestination {
		separator = " "
	}
	for _, src := range inst.Sources {
		if src.Type == ir.SourceNull {
			continue
		}
		b.WriteString(separator)
		separator = ", "
		switch src.Type {
		case ir.SourceImmediate:
			fmt.Fprintf(&b, "$%d", int32(inst.Immediate))
		case ir.SourceChannel:
			fmt.Fprintf(&b, "%%i%d", src.Index)
		case ir.SourceRegister:
			fmt.Fprintf(&b, "%%r%d", src.Index)
		}
	}
	b.WriteString(";")

	if len(inst.InputChannelsToDequeue) > 0 {
		channels := make([]string, len(inst.InputChannelsToDequeue))
		for i, c := range inst.InputChannelsToDequeue {
			channels[i] = fmt.Sprintf("%%i%d", c)
		}
		fmt.Fprintf(&b, " deq %s;", strings.Join(channels, ", "))
	}

	if len(inst.PredicateUpdateIndices) > 0 {
		var trueIndices, falseIndices []int
		for i, idx := range inst.PredicateUpdateIndices {
			if inst.PredicateUpdateValues[i] {
				trueIndices = append(trueIndices, idx)
			} else {
				falseIndices = append(falseIndices, idx)
			}
		}
		fmt.Fprintf(&b, " set %%p = %s;", predicateBinString(cp.NumPredicates, trueIndices, falseIndices))
	}

	return b.String()
}

// predicateBinString renders a right-indexed bit string, 'X' for any
// predicate absent from both the true and false index lists.
func predicateBinString(numPredicates int, truePredicates, falsePredicates []int) string {
	isTrue := make(map[int]bool, len(truePredicates))
	for _, p := range truePredicates {
		isTrue[p] = true
	}
	isFalse := make(map[int]bool, len(falsePredicates))
	for _, p := range falsePredicates {
		isFalse[p] = true
	}
	runes := make([]byte, numPredicates)
	for i := 0; i < numPredicates; i++ {
		switch {
		case isTrue[i]:
			runes[numPredicates-1-i] = '1'
		case isFalse[i]:
			runes[numPredicates-1-i] = '0'
		default:
			runes[numPredicates-1-i] = 'X'
		}
	}
	return string(runes)
}

func formatDestination(inst ir.Instruction) string {
	switch inst.DestinationType {
	case ir.DestinationChannel:
		if len(inst.OutputChannelIndices) > 1 {
			indices := make([]string, len(inst.OutputChannelIndices))
			for i, idx := range inst.OutputChannelIndices {
				indices[i] = fmt.Sprintf("%d", idx)
			}
			return fmt.Sprintf("%%o{%s}.%d", strings.Join(indices, ","), inst.OutputChannelTag)
		}
		return fmt.Sprintf("%%o%d.%d", inst.DestinationIndex, inst.OutputChannelTag)
	case ir.DestinationRegister:
		return fmt.Sprintf("%%r%d", inst.DestinationIndex)
	case ir.DestinationPredicate:
		return fmt.Sprintf("%%p%d", inst.DestinationIndex)
	default:
		return ""
	}
}

// DecodeProgram decodes every instruction word in words (one big.Int
// per physical instruction, already reassembled from memory-width
// slices) and renders the result as assembly text, one instruction per
// line; a zero word (an unprogrammed instruction slot) is skipped.
func DecodeProgram(cp *parameters.Core, words []*big.Int) (string, error) {
	var b strings.Builder
	for i, word := range words {
		if word.Sign() == 0 {
			continue
		}
		inst, err := DecodeInstruction(cp, i, word)
		if err != nil {
			return "", err
		}
		b.WriteString(FormatInstruction(cp, inst))
		b.WriteString("\n")
	}
	return b.String(), nil
}
