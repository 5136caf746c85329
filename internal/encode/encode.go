/*
	TIA - Machine code encoder

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

// Package encode packs a parsed instruction into the physical
// instruction word a processing element's instruction memory actually
// holds: a validity bit followed by the predicate trigger mask, input
// channel fields, opcode, source/destination fields, output channel
// fields, the predicate update mask, the immediate, and trailing
// padding out to the memory-mapped instruction width. Field widths
// routinely exceed 64 bits on a richly-configured architecture, so
// every step here works in math/big rather than a machine word.
package encode

import (
	"math/big"
	"math/bits"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/tiaerr"
)

func bitLen(v *big.Int) int { return v.BitLen() }

// signedImmediateBitLen returns the bit width needed to represent value
// as a signed two's-complement quantity, mirroring the ^value trick
// ValidateProgram uses for register initializers. Immediate is already
// canonicalized to its full 32-bit two's-complement form at parse time
// (see immediateFromToken), so checking the post-canonicalization
// big.Int's BitLen would always see 32 bits for any negative immediate;
// this recovers the width the original signed literal actually needed.
func signedImmediateBitLen(value uint32) int {
	if int32(value) < 0 {
		return bits.Len32(^value) + 1
	}
	return bits.Len32(value)
}

func checkWidth(field string, v *big.Int, width int) error {
	if bitLen(v) > width {
		return tiaerr.NewParameterError(field, field+" exceeds its allotted bit width")
	}
	return nil
}

// TruePTM builds the true half of the predicate trigger mask.
func TruePTM(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	truePTM := new(big.Int)
	for i := len(inst.Trigger.TruePredicates) - 1; i >= 0; i-- {
		predicate := inst.Trigger.TruePredicates[i]
		if predicate > cp.NumPredicates {
			return nil, tiaerr.NewParameterError("true_ptm", "predicate index out of range for this architecture")
		}
		truePTM.SetBit(truePTM, predicate, 1)
	}
	if err := checkWidth("true_ptm", truePTM, cp.TruePTMWidth()); err != nil {
		return nil, err
	}
	return truePTM, nil
}

// FalsePTM builds the false half of the predicate trigger mask.
func FalsePTM(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	falsePTM := new(big.Int)
	for i := len(inst.Trigger.FalsePredicates) - 1; i >= 0; i-- {
		predicate := inst.Trigger.FalsePredicates[i]
		if predicate > cp.NumPredicates {
			return nil, tiaerr.NewParameterError("false_ptm", "predicate index out of range for this architecture")
		}
		falsePTM.SetBit(falsePTM, predicate, 1)
	}
	if err := checkWidth("false_ptm", falsePTM, cp.FalsePTMWidth()); err != nil {
		return nil, err
	}
	return falsePTM, nil
}

// PTM concatenates the true and false predicate trigger masks.
func PTM(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	truePTM, err := TruePTM(cp, inst)
	if err != nil {
		return nil, err
	}
	falsePTM, err := FalsePTM(cp, inst)
	if err != nil {
		return nil, err
	}
	ptm := new(big.Int).Lsh(truePTM, uint(cp.FalsePTMWidth()))
	ptm.Or(ptm, falsePTM)
	if err := checkWidth("ptm", ptm, cp.PTMWidth()); err != nil {
		return nil, err
	}
	return ptm, nil
}

// ICI builds the input channel indices field: each checked channel's
// index plus one (so a zero-filled slot unambiguously means "no
// channel"), with the first checked channel in the lowest used slot,
// then shifted left so the null slots for unchecked channels (out to
// the architecture's maximum checked-channel count) sit at the
// low-order end of the field.
func ICI(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	channels := inst.Trigger.InputChannels
	if len(channels) > cp.MaxNumInputChannelsToCheck {
		return nil, tiaerr.NewParameterError("ici", "too many input channels to check for this architecture")
	}
	ici := new(big.Int)
	slotWidth := uint(cp.SingleICIWidth())
	for i := len(channels) - 1; i >= 0; i-- {
		ici.Or(ici, big.NewInt(int64(channels[i]+1)))
		if i != 0 {
			ici.Lsh(ici, slotWidth)
		}
	}
	numNullSlots := cp.MaxNumInputChannelsToCheck - len(channels)
	ici.Lsh(ici, uint(numNullSlots)*slotWidth)
	if err := checkWidth("ici", ici, cp.ICIWidth()); err != nil {
		return nil, err
	}
	return ici, nil
}

// ICTB builds the input channel tag-boolean field (one bit per checked
// channel: does this channel's tag need to match a value).
func ICTB(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	booleans := inst.Trigger.InputChannelTagBooleans
	channels := inst.Trigger.InputChannels
	if len(booleans) > cp.MaxNumInputChannelsToCheck {
		return nil, tiaerr.NewParameterError("ictb", "too many input channel tags to check for this architecture")
	}
	ictb := new(big.Int)
	for i := len(booleans) - 1; i >= 0; i-- {
		if booleans[i] {
			ictb.Or(ictb, big.NewInt(1))
		}
		if i != 0 {
			ictb.Lsh(ictb, 1)
		}
	}
	numNullSlots := cp.MaxNumInputChannelsToCheck - len(channels)
	ictb.Lsh(ictb, uint(numNullSlots))
	if err := checkWidth("ictb", ictb, cp.ICTBWidth()); err != nil {
		return nil, err
	}
	return ictb, nil
}

// ICTV builds the input channel tag-value field.
func ICTV(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	tags := inst.Trigger.InputChannelTags
	if len(tags) > cp.MaxNumInputChannelsToCheck {
		return nil, tiaerr.NewParameterError("ictv", "too many input channel tags to check for this architecture")
	}
	ictv := new(big.Int)
	tagWidth := uint(cp.TagWidth())
	for i := len(tags) - 1; i >= 0; i-- {
		ictv.Or(ictv, big.NewInt(int64(tags[i])))
		if i != 0 {
			ictv.Lsh(ictv, tagWidth)
		}
	}
	numNullSlots := cp.MaxNumInputChannelsToCheck - len(tags)
	ictv.Lsh(ictv, uint(numNullSlots)*tagWidth)
	if err := checkWidth("ictv", ictv, cp.ICTVWidth()); err != nil {
		return nil, err
	}
	return ictv, nil
}

// OpField builds the opcode field.
func OpField(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	op := big.NewInt(int64(inst.Op))
	if err := checkWidth("op", op, cp.OpWidth()); err != nil {
		return nil, err
	}
	return op, nil
}

// ST builds the source-type field: three fixed slots, slot 0 in the
// low-order bits.
func ST(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	st := new(big.Int)
	slotWidth := uint(cp.SingleSTWidth())
	st.Or(st, big.NewInt(int64(inst.Sources[2].Type)))
	st.Lsh(st, slotWidth)
	st.Or(st, big.NewInt(int64(inst.Sources[1].Type)))
	st.Lsh(st, slotWidth)
	st.Or(st, big.NewInt(int64(inst.Sources[0].Type)))
	if err := checkWidth("st", st, cp.STWidth()); err != nil {
		return nil, err
	}
	return st, nil
}

// SI builds the source-index field: three fixed slots, slot 0 in the
// low-order bits. A null source's index is forced to zero regardless
// of what was parsed, matching the reference encoder.
func SI(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	si := new(big.Int)
	slotWidth := uint(cp.SingleSIWidth())
	for slot := 2; slot >= 0; slot-- {
		if inst.Sources[slot].Type != ir.SourceNull {
			si.Or(si, big.NewInt(int64(inst.Sources[slot].Index)))
		}
		if slot != 0 {
			si.Lsh(si, slotWidth)
		}
	}
	if err := checkWidth("si", si, cp.SIWidth()); err != nil {
		return nil, err
	}
	return si, nil
}

// DT builds the destination-type field.
func DT(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	dt := big.NewInt(int64(inst.DestinationType))
	if err := checkWidth("dt", dt, cp.DTWidth()); err != nil {
		return nil, err
	}
	return dt, nil
}

// DI builds the destination-index field.
func DI(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	di := big.NewInt(int64(inst.DestinationIndex))
	if err := checkWidth("di", di, cp.DIWidth()); err != nil {
		return nil, err
	}
	return di, nil
}

// OCI builds the output channel indices field: one bit per architected
// output channel, set if that channel is one of this instruction's fanout
// destinations.
func OCI(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	oci := new(big.Int)
	marked := make(map[int]bool, len(inst.OutputChannelIndices))
	for _, idx := range inst.OutputChannelIndices {
		marked[idx] = true
	}
	for channel := cp.NumOutputChannels - 1; channel >= 0; channel-- {
		if marked[channel] {
			oci.Or(oci, big.NewInt(1))
		}
		if channel != 0 {
			oci.Lsh(oci, 1)
		}
	}
	if err := checkWidth("oci", oci, cp.OCIWidth()); err != nil {
		return nil, err
	}
	return oci, nil
}

// OCT builds the output channel tag field.
func OCT(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	oct := big.NewInt(int64(inst.OutputChannelTag))
	if err := checkWidth("oct", oct, cp.OCTWidth()); err != nil {
		return nil, err
	}
	return oct, nil
}

// ICD builds the input-channels-to-dequeue field: one bit per
// architected input channel.
func ICD(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	icd := new(big.Int)
	marked := make(map[int]bool, len(inst.InputChannelsToDequeue))
	for _, idx := range inst.InputChannelsToDequeue {
		marked[idx] = true
	}
	for channel := cp.NumInputChannels - 1; channel >= 0; channel-- {
		if marked[channel] {
			icd.Or(icd, big.NewInt(1))
		}
		if channel != 0 {
			icd.Lsh(icd, 1)
		}
	}
	if err := checkWidth("icd", icd, cp.ICDWidth()); err != nil {
		return nil, err
	}
	return icd, nil
}

// TruePUM builds the true half of the predicate update mask.
func TruePUM(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	truePUM := new(big.Int)
	for i, predicate := range inst.PredicateUpdateIndices {
		if predicate > cp.NumPredicates {
			return nil, tiaerr.NewParameterError("true_pum", "predicate index out of range for this architecture")
		}
		if inst.PredicateUpdateValues[i] {
			truePUM.SetBit(truePUM, predicate, 1)
		}
	}
	if err := checkWidth("true_pum", truePUM, cp.TruePUMWidth()); err != nil {
		return nil, err
	}
	return truePUM, nil
}

// FalsePUM builds the false half of the predicate update mask.
func FalsePUM(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	falsePUM := new(big.Int)
	for i, predicate := range inst.PredicateUpdateIndices {
		if predicate > cp.NumPredicates {
			return nil, tiaerr.NewParameterError("false_pum", "predicate index out of range for this architecture")
		}
		if !inst.PredicateUpdateValues[i] {
			falsePUM.SetBit(falsePUM, predicate, 1)
		}
	}
	if err := checkWidth("false_pum", falsePUM, cp.FalsePUMWidth()); err != nil {
		return nil, err
	}
	return falsePUM, nil
}

// PUM concatenates the true and false predicate update masks.
func PUM(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	truePUM, err := TruePUM(cp, inst)
	if err != nil {
		return nil, err
	}
	falsePUM, err := FalsePUM(cp, inst)
	if err != nil {
		return nil, err
	}
	pum := new(big.Int).Lsh(truePUM, uint(cp.FalsePTMWidth()))
	pum.Or(pum, falsePUM)
	if err := checkWidth("pum", pum, cp.PTMWidth()); err != nil {
		return nil, err
	}
	return pum, nil
}

// Immediate masks the instruction's immediate (if any) to its
// architected width. The width check runs against the original signed
// literal's bit length, not the post-canonicalization big.Int's
// BitLen() (which would always read 32 bits for a negative immediate).
func Immediate(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	if signedImmediateBitLen(inst.Immediate) > cp.ImmediateWidth {
		return nil, tiaerr.NewParameterError("immediate", "the immediate exceeds its allotted bit width")
	}
	value := big.NewInt(int64(inst.Immediate))
	mask := new(big.Int).Lsh(big.NewInt(1), uint(cp.ImmediateWidth))
	mask.Sub(mask, big.NewInt(1))
	return value.And(value, mask), nil
}

// MachineCodeInstruction assembles the full physical instruction word:
// validity bit, ptm, ici, ictb, ictv, op, st, si, dt, di, oci, oct, icd,
// pum, immediate, then padding.
func MachineCodeInstruction(cp *parameters.Core, inst *ir.Instruction) (*big.Int, error) {
	code := big.NewInt(1) // the validity bit.

	shiftOr := func(width int, field *big.Int, err error) error {
		if err != nil {
			return err
		}
		code.Lsh(code, uint(width))
		code.Or(code, field)
		return nil
	}

	steps := []struct {
		width int
		build func() (*big.Int, error)
	}{
		{cp.PTMWidth(), func() (*big.Int, error) { return PTM(cp, inst) }},
		{cp.ICIWidth(), func() (*big.Int, error) { return ICI(cp, inst) }},
		{cp.ICTBWidth(), func() (*big.Int, error) { return ICTB(cp, inst) }},
		{cp.ICTVWidth(), func() (*big.Int, error) { return ICTV(cp, inst) }},
		{cp.OpWidth(), func() (*big.Int, error) { return OpField(cp, inst) }},
		{cp.STWidth(), func() (*big.Int, error) { return ST(cp, inst) }},
		{cp.SIWidth(), func() (*big.Int, error) { return SI(cp, inst) }},
		{cp.DTWidth(), func() (*big.Int, error) { return DT(cp, inst) }},
		{cp.DIWidth(), func() (*big.Int, error) { return DI(cp, inst) }},
		{cp.OCIWidth(), func() (*big.Int, error) { return OCI(cp, inst) }},
		{cp.OCTWidth(), func() (*big.Int, error) { return OCT(cp, inst) }},
		{cp.ICDWidth(), func() (*big.Int, error) { return ICD(cp, inst) }},
		{cp.PUMWidth(), func() (*big.Int, error) { return PUM(cp, inst) }},
		{cp.ImmediateWidth, func() (*big.Int, error) { return Immediate(cp, inst) }},
	}
	for _, step := range steps {
		field, err := step.build()
		if err := shiftOr(step.width, field, err); err != nil {
			return nil, err
		}
	}
	code.Lsh(code, uint(cp.PaddingWidth()))
	return code, nil
}

func maskToWidth(value uint32, width int) uint32 {
	if width >= 32 {
		return value
	}
	return value & ((uint32(1) << uint(width)) - 1)
}

// ProgramBinary converts a parsed program to the two word lists written
// to disk or programmed into hardware: register initialization values
// masked to the device word width, and the instruction memory image,
// little-endian-sliced into 32-bit words and zero-padded to the
// architecture's instruction count.
func ProgramBinary(cp *parameters.Core, program *ir.Program) (registerWords, instructionWords []uint32, err error) {
	registerWords = make([]uint32, len(program.RegisterValues))
	for i, v := range program.RegisterValues {
		registerWords[i] = maskToWidth(v, cp.DeviceWordWidth)
	}

	if cp.MMInstructionWidth%32 != 0 {
		return nil, nil, tiaerr.NewParameterError("mm_instruction_width", "memory-mapped instructions must be in multiples of 32-bit words")
	}
	wordsPerInstruction := cp.MMInstructionWidth / 32

	instructionWords = make([]uint32, 0, wordsPerInstruction*cp.NumInstructions)
	mask32 := new(big.Int).SetUint64(0xffffffff)
	for _, inst := range program.Instructions {
		code, encErr := MachineCodeInstruction(cp, &inst)
		if encErr != nil {
			return nil, nil, encErr
		}
		for i := 0; i < wordsPerInstruction; i++ {
			word := new(big.Int).Rsh(code, uint(i*32))
			word.And(word, mask32)
			instructionWords = append(instructionWords, uint32(word.Uint64()))
		}
	}

	if len(program.Instructions) < cp.NumInstructions {
		numEmpty := cp.NumInstructions - len(program.Instructions)
		for i := 0; i < numEmpty*wordsPerInstruction; i++ {
			instructionWords = append(instructionWords, 0)
		}
	}

	return registerWords, instructionWords, nil
}
