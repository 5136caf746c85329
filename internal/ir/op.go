/*
	TIA - Triggered-instruction opcode enumeration

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

// Op is the closed, ordinal-stable opcode enumeration. Ordinals are part
// of the machine-code ABI: never renumber an existing entry.
type Op int

const (
	OpNop Op = iota // 0
	OpMov
	OpAdd
	OpSub
	OpSl
	OpAsr
	OpLsr
	OpEq
	OpNe
	OpSgt
	OpUgt
	OpSlt
	OpUlt
	OpSge
	OpUge
	OpSle
	OpUle
	OpBand
	OpBnand
	OpBor
	OpBnor
	OpBxor
	OpBxnor
	OpLand
	OpLnand
	OpLor
	OpLnor
	OpLxor
	OpLxnor
	OpGby // reserved: byte-granularity get, not yet implemented
	OpSby // reserved: byte-granularity set, not yet implemented
	OpCby // reserved: byte-granularity clear, not yet implemented
	OpMby // reserved: byte-granularity mask, not yet implemented
	OpGb
	OpSb
	OpCb
	OpMb
	OpClz
	OpCtz
	OpHalt
	OpLsw
	OpSsw
	OpRlw // reserved: not yet implemented
	OpOlw // reserved: not yet implemented
	OpSw  // reserved: not yet implemented
	OpLmul
	OpShmul
	OpUhmul
	OpMac
	OpItf // reserved floating point: not yet implemented
	OpUtf
	OpFti
	OpFtu
	OpFeq
	OpFne
	OpFgt
	OpFlt
	OpFle
	OpFge
	OpFadd
	OpFsub
	OpFmul
	OpFmac

	numOps // sentinel: count of defined opcodes, not a valid opcode
)

// NumOps is the cardinality of the Op enumeration, used by the
// architectural-parameter object to size the OP field.
const NumOps = int(numOps)

var opNames = map[Op]string{
	OpNop: "nop", OpMov: "mov", OpAdd: "add", OpSub: "sub", OpSl: "sl",
	OpAsr: "asr", OpLsr: "lsr", OpEq: "eq", OpNe: "ne", OpSgt: "sgt",
	OpUgt: "ugt", OpSlt: "slt", OpUlt: "ult", OpSge: "sge", OpUge: "uge",
	OpSle: "sle", OpUle: "ule", OpBand: "band", OpBnand: "bnand", OpBor: "bor",
	OpBnor: "bnor", OpBxor: "bxor", OpBxnor: "bxnor", OpLand: "land",
	OpLnand: "lnand", OpLor: "lor", OpLnor: "lnor", OpLxor: "lxor",
	OpLxnor: "lxnor", OpGby: "gby", OpSby: "sby", OpCby: "cby", OpMby: "mby",
	OpGb: "gb", OpSb: "sb", OpCb: "cb", OpMb: "mb", OpClz: "clz", OpCtz: "ctz",
	OpHalt: "halt", OpLsw: "lsw", OpSsw: "ssw", OpRlw: "rlw", OpOlw: "olw",
	OpSw: "sw", OpLmul: "lmul", OpShmul: "shmul", OpUhmul: "uhmul", OpMac: "mac",
	OpItf: "itf", OpUtf: "utf", OpFti: "fti", OpFtu: "ftu", OpFeq: "feq",
	OpFne: "fne", OpFgt: "fgt", OpFlt: "flt", OpFle: "fle", OpFge: "fge",
	OpFadd: "fadd", OpFsub: "fsub", OpFmul: "fmul", OpFmac: "fmac",
}

// String returns the assembly mnemonic for op, or "?" if op is out of range.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "?"
}

var opByName map[string]Op

func init() {
	opByName = make(map[string]Op, len(opNames))
	for op, name := range opNames {
		opByName[name] = op
	}
}

// LookupOp resolves a mnemonic to its Op, case-sensitive (mnemonics are
// lower-case by convention). ok is false for an unrecognized mnemonic.
func LookupOp(name string) (Op, bool) {
	op, ok := opByName[name]
	return op, ok
}

// word32 is the simulator's native datum: modular arithmetic throughout,
// signed variants reinterpret the bit pattern as two's complement.
type word32 = uint32

// OpFunc is the pure, three-operand datapath function backing an Op.
// lsw and ssw are never invoked through this table: the core model
// special-cases them because they touch the scratchpad directly.
type OpFunc func(a, b, c word32) word32

func bit(b bool) word32 {
	if b {
		return 1
	}
	return 0
}

func opNop(a, b, c word32) word32 { return 0 }
func opMov(a, b, c word32) word32 { return a }
func opAdd(a, b, c word32) word32 { return a + b }
func opSub(a, b, c word32) word32 { return a - b }
func opSl(a, b, c word32) word32  { return a << (b & 31) }
func opAsr(a, b, c word32) word32 { return word32(int32(a) >> (b & 31)) }
func opLsr(a, b, c word32) word32 { return a >> (b & 31) }

func opEq(a, b, c word32) word32  { return bit(a == b) }
func opNe(a, b, c word32) word32  { return bit(a != b) }
func opSgt(a, b, c word32) word32 { return bit(int32(a) > int32(b)) }
func opUgt(a, b, c word32) word32 { return bit(a > b) }
func opSlt(a, b, c word32) word32 { return bit(int32(a) < int32(b)) }
func opUlt(a, b, c word32) word32 { return bit(a < b) }
func opSge(a, b, c word32) word32 { return bit(int32(a) >= int32(b)) }
func opUge(a, b, c word32) word32 { return bit(a >= b) }
func opSle(a, b, c word32) word32 { return bit(int32(a) <= int32(b)) }
func opUle(a, b, c word32) word32 { return bit(a <= b) }

func opBand(a, b, c word32) word32  { return a & b }
func opBnand(a, b, c word32) word32 { return ^(a & b) }
func opBor(a, b, c word32) word32   { return a | b }
func opBnor(a, b, c word32) word32  { return ^(a | b) }
func opBxor(a, b, c word32) word32  { return a ^ b }
func opBxnor(a, b, c word32) word32 { return ^(a ^ b) }

func opLand(a, b, c word32) word32  { return bit(a != 0 && b != 0) }
func opLnand(a, b, c word32) word32 { return bit(!(a != 0 && b != 0)) }
func opLor(a, b, c word32) word32   { return bit(a != 0 || b != 0) }
func opLnor(a, b, c word32) word32  { return bit(!(a != 0 || b != 0)) }
func opLxor(a, b, c word32) word32  { return bit((a != 0) != (b != 0)) }
func opLxnor(a, b, c word32) word32 { return bit((a != 0) == (b != 0)) }

func opGb(a, b, c word32) word32 { return (a >> (b & 31)) & 1 }
func opSb(a, b, c word32) word32 {
	if c == 0 {
		return a &^ (1 << (b & 31))
	}
	return a | (1 << (b & 31))
}
func opCb(a, b, c word32) word32 { return a &^ (1 << (b & 31)) }
func opMb(a, b, c word32) word32 { return a | (1 << (b & 31)) }

// opClz scans from bit 31 downward for the first set bit. b selects the
// reading: non-zero returns the index of the highest set bit (32 if a is
// zero), zero returns the conventional leading-zero count (32 if a is zero).
func opClz(a, b, c word32) word32 {
	i := 32
	for bitIndex := 31; bitIndex >= 0; bitIndex-- {
		if (a>>uint(bitIndex))&1 == 1 {
			i = bitIndex
			break
		}
	}
	if b != 0 {
		return word32(i)
	}
	if i == 32 {
		return 32
	}
	return word32(31 - i)
}

// opCtz scans from bit 0 upward for the first set bit, returning 32 when a is zero.
func opCtz(a, b, c word32) word32 {
	for bitIndex := 0; bitIndex < 32; bitIndex++ {
		if (a>>uint(bitIndex))&1 == 1 {
			return word32(bitIndex)
		}
	}
	return 32
}

// opHalt computes 0, like a nop: the core model sets the halt flag
// itself and then runs halt through this table like any other op.
func opHalt(a, b, c word32) word32 { return 0 }

func opLmul(a, b, c word32) word32 { return a * b }

func opShmul(a, b, c word32) word32 {
	product := int64(int32(a)) * int64(int32(b))
	return word32(uint64(product) >> 32)
}

func opUhmul(a, b, c word32) word32 {
	product := uint64(a) * uint64(b)
	return word32(product >> 32)
}

func opMac(a, b, c word32) word32 {
	return a + word32(int32(b)*int32(c))
}

func opFloatStub(a, b, c word32) word32 { return 0 }

// Implementations maps every non-scratchpad Op to its pure datapath
// function. The table's length equals NumOps; reserved and
// not-yet-implemented opcodes (byte-granularity variants, rlw/olw/sw, and
// the floating-point family) resolve to a stub returning 0. lsw and ssw
// are present for completeness but are never consulted: the core model
// intercepts them before reaching this table.
var Implementations = buildImplementations()

func buildImplementations() [numOps]OpFunc {
	var table [numOps]OpFunc
	for i := range table {
		table[i] = opFloatStub
	}
	table[OpNop] = opNop
	table[OpMov] = opMov
	table[OpAdd] = opAdd
	table[OpSub] = opSub
	table[OpSl] = opSl
	table[OpAsr] = opAsr
	table[OpLsr] = opLsr
	table[OpEq] = opEq
	table[OpNe] = opNe
	table[OpSgt] = opSgt
	table[OpUgt] = opUgt
	table[OpSlt] = opSlt
	table[OpUlt] = opUlt
	table[OpSge] = opSge
	table[OpUge] = opUge
	table[OpSle] = opSle
	table[OpUle] = opUle
	table[OpBand] = opBand
	table[OpBnand] = opBnand
	table[OpBor] = opBor
	table[OpBnor] = opBnor
	table[OpBxor] = opBxor
	table[OpBxnor] = opBxnor
	table[OpLand] = opLand
	table[OpLnand] = opLnand
	table[OpLor] = opLor
	table[OpLnor] = opLnor
	table[OpLxor] = opLxor
	table[OpLxnor] = opLxnor
	table[OpGb] = opGb
	table[OpSb] = opSb
	table[OpCb] = opCb
	table[OpMb] = opMb
	table[OpClz] = opClz
	table[OpCtz] = opCtz
	table[OpHalt] = opHalt
	table[OpLmul] = opLmul
	table[OpShmul] = opShmul
	table[OpUhmul] = opUhmul
	table[OpMac] = opMac
	return table
}
