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
	"math/bits"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/tiaerr"
)

// ApplyMacros replaces every occurrence of each macro name with its
// substitution, longest macro name first so that a short name never
// matches as a substring of a longer one that also appears in macros.
func ApplyMacros(macros map[string]string, source string) string {
	names := make([]string, 0, len(macros))
	for name := range macros {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		source = strings.ReplaceAll(source, name, macros[name])
	}
	return source
}

// LabeledSource is one processing element's raw program text, tagged
// with the "<label>" it appeared under in the assembly source.
type LabeledSource struct {
	Label  string
	Source string
}

var labelPattern = regexp.MustCompile(`<(.*?)>`)

// SplitProgramByLabel splits a full assembly source file into one
// LabeledSource per "<label> ... " section; a bare "<>" sigil replaces
// every label marker before splitting so the label name itself never
// leaks into the following source text.
func SplitProgramByLabel(source string) ([]LabeledSource, error) {
	matches := labelPattern.FindAllStringSubmatch(source, -1)
	if len(matches) == 0 {
		return nil, tiaerr.NewAssemblyError(0, 0, source, "no processing element labels found")
	}
	labels := make([]string, 0, len(matches))
	for _, m := range matches {
		labels = append(labels, strings.TrimSpace(m[1]))
	}

	collapsed := labelPattern.ReplaceAllString(source, "<>")
	sections := strings.Split(collapsed, "<>")
	// sections[0] is whatever preceded the first label marker (normally
	// blank or whitespace) and is discarded.
	sections = sections[1:]
	if len(sections) != len(labels) {
		return nil, tiaerr.NewAssemblyError(0, 0, source, "mismatched processing element label count")
	}

	result := make([]LabeledSource, len(labels))
	for i, label := range labels {
		result[i] = LabeledSource{Label: label, Source: sections[i]}
	}
	return result, nil
}

var (
	registerIndexPattern = regexp.MustCompile(`init\s*%r(\d+)\s*,.*`)
	registerValuePattern = regexp.MustCompile(`init\s*%r\d+\s*,\s*\$(-*\d*|-*0x\d*);`)
)

// stripComment removes a trailing "#..." MIPS-style comment.
func stripComment(line string) string {
	if i := strings.Index(line, "#"); i >= 0 {
		return line[:i]
	}
	return line
}

// splitRegisterAndInstructionLines separates "init %rN, $value;" lines
// from instruction lines, leaving a blank placeholder behind in the
// instruction-line accumulator so line numbers stay stable.
func splitRegisterAndInstructionLines(source string) (registerLines, instructionLines []string) {
	for _, line := range strings.Split(source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "init") {
			registerLines = append(registerLines, line)
			instructionLines = append(instructionLines, "")
		} else {
			instructionLines = append(instructionLines, line)
		}
	}
	return registerLines, instructionLines
}

// extractRegisterInitialization parses one "init %rN, $value;" line
// into a (register index, value) pair; value is parsed as hexadecimal
// when the literal contains "0x", decimal otherwise.
func extractRegisterInitialization(ordinal int, line string) (index int, value uint32, err error) {
	stripped := stripComment(line)

	indexMatch := registerIndexPattern.FindStringSubmatch(stripped)
	if indexMatch == nil {
		return 0, 0, tiaerr.NewAssemblyError(0, ordinal, line, `expected "init %r(index), $(value);"`)
	}
	index, err = strconv.Atoi(indexMatch[1])
	if err != nil {
		return 0, 0, tiaerr.NewAssemblyError(0, ordinal, line, "not a valid register index")
	}

	valueMatch := registerValuePattern.FindStringSubmatch(stripped)
	if valueMatch == nil {
		return 0, 0, tiaerr.NewAssemblyError(0, ordinal, line, `expected "init %r(index), $(value);"`)
	}
	literal := valueMatch[1]
	base := 10
	if strings.Contains(literal, "0x") {
		base = 16
		literal = strings.Replace(literal, "0x", "", 1)
	}
	parsed, perr := strconv.ParseInt(literal, base, 64)
	if perr != nil {
		return 0, 0, tiaerr.NewAssemblyError(0, ordinal, line, "not a valid register value")
	}
	return index, uint32(int32(parsed)), nil
}

// convertRegisterLines parses every "init" line into a register file
// sized to numRegisters, matching the Python reference's unconditional
// `[0] * cp.num_registers` pre-sizing rather than sizing to the highest
// index actually written (pe.Core.InitializeRegisters hard-rejects any
// length mismatch against the architecture's register file).
func convertRegisterLines(lines []string, numRegisters int) ([]uint32, error) {
	registers := make([]uint32, numRegisters)
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		index, value, err := extractRegisterInitialization(i, line)
		if err != nil {
			return nil, err
		}
		if index < 0 || index >= numRegisters {
			return nil, tiaerr.NewAssemblyError(0, i, line, "register index is out of range for the architecture's register file")
		}
		registers[index] = value
	}
	return registers, nil
}

// convertInstructionLines walks the instruction-line accumulator,
// pairing a line ending in ':' with the following line (the two-line
// "when ...:\n  op ...;" form), treating a line containing ':' anywhere
// else as a complete single-line statement, and erroring on anything
// that is neither blank nor recognizable.
func convertInstructionLines(lines []string) ([]ir.Instruction, error) {
	var instructions []ir.Instruction
	i := 0
	number := 0
	for i < len(lines) {
		line := stripComment(lines[i])
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			i++
		case strings.HasSuffix(trimmed, ":"):
			if i+1 >= len(lines) {
				return nil, tiaerr.NewAssemblyError(0, number, trimmed, "trigger line has no following operation line")
			}
			next := strings.TrimSpace(stripComment(lines[i+1]))
			statement := trimmed + " " + next
			inst, err := ParseInstruction(number, statement)
			if err != nil {
				return nil, err
			}
			instructions = append(instructions, inst)
			number++
			i += 2
		case strings.Contains(trimmed, ":"):
			inst, err := ParseInstruction(number, trimmed)
			if err != nil {
				return nil, err
			}
			instructions = append(instructions, inst)
			number++
			i++
		default:
			return nil, tiaerr.NewAssemblyError(0, number, trimmed, "unexpected statement")
		}
	}
	return instructions, nil
}

// ParseProgram assembles one processing element's labeled source
// section into an ir.Program: register initializations are split out
// first, then the remaining lines are parsed into instructions. The
// register file is sized to cp.NumRegisters regardless of how many
// "init" lines the source actually contains.
func ParseProgram(cp *parameters.Core, label, source string) (*ir.Program, error) {
	registerLines, instructionLines := splitRegisterAndInstructionLines(source)

	registers, err := convertRegisterLines(registerLines, cp.NumRegisters)
	if err != nil {
		return nil, err
	}

	instructions, err := convertInstructionLines(instructionLines)
	if err != nil {
		return nil, err
	}

	return &ir.Program{
		Label:          label,
		RegisterValues: registers,
		Instructions:   instructions,
	}, nil
}

// ParseAssembly applies macro substitution to the full source file,
// splits it by processing element label, and parses and validates each
// resulting section into an ir.Program.
func ParseAssembly(cp *parameters.Core, macros map[string]string, source string) ([]*ir.Program, error) {
	expanded := ApplyMacros(macros, source)

	sections, err := SplitProgramByLabel(expanded)
	if err != nil {
		return nil, err
	}

	programs := make([]*ir.Program, 0, len(sections))
	for _, section := range sections {
		program, err := ParseProgram(cp, section.Label, section.Source)
		if err != nil {
			return nil, err
		}
		if err := ValidateProgram(cp, program); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, nil
}

// ValidateProgram checks that every register value fits within the
// architecture's device word width.
//
// The reference assembler's own per-instruction validation is an
// unimplemented stub, and its encoder enforces predicate indices
// strictly greater than cp.NumPredicates (not greater-or-equal) as an
// encoding-time bounds check; that behavior is matched rather than
// corrected here, in internal/encode, since there is no documented
// alternative to correct it to.
func ValidateProgram(cp *parameters.Core, program *ir.Program) error {
	for i, value := range program.RegisterValues {
		bitLen := bits.Len32(value)
		if int32(value) < 0 {
			bitLen = bits.Len32(^value) + 1
		}
		if bitLen > cp.DeviceWordWidth {
			return tiaerr.NewAssemblyError(0, i, strconv.Itoa(int(value)), "register initialization value exceeds the device word width")
		}
	}
	return nil
}
