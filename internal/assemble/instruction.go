/*
	TIA - Assembler: instruction and datapath parsing

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
	"strconv"
	"strings"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/tiaerr"
)

// instructionFields are the up-to-five ';'-delimited segments of one
// "when ... : ...;" statement, after the leading "when" and trailing
// ':' have been stripped.
type instructionFields struct {
	predicateConditionString     string
	inputChannelConditionString  string
	hasInputChannelConditions    bool
	datapathString               string
	dequeueString                string
	hasDequeue                   bool
	predicateUpdateString        string
	hasPredicateUpdate           bool
}

// splitInstructionStatement parses a full "when <predicate> [with
// <channels>] : <datapath>[; deq <channels>][; set <predicate>];"
// statement into its component strings.
func splitInstructionStatement(ordinal int, statement string) (instructionFields, error) {
	var fields instructionFields

	parts := strings.SplitN(statement, ":", 2)
	if len(parts) != 2 {
		return fields, tiaerr.NewAssemblyError(0, ordinal, statement, `expected "when (trigger) [with (channels)]: (operations)"`)
	}
	triggerSegment := strings.TrimSpace(parts[0])
	operationSegment := strings.TrimSpace(parts[1])

	if !strings.HasPrefix(triggerSegment, "when") {
		return fields, tiaerr.NewAssemblyError(0, ordinal, triggerSegment, `trigger expressions must start with "when"`)
	}
	triggerSegment = strings.TrimSpace(triggerSegment[4:])

	if strings.Contains(triggerSegment, "with") {
		split := strings.SplitN(triggerSegment, "with", 2)
		fields.predicateConditionString = strings.TrimSpace(split[0])
		fields.inputChannelConditionString = strings.TrimSpace(split[1])
		fields.hasInputChannelConditions = true
	} else {
		fields.predicateConditionString = triggerSegment
	}

	if !strings.HasSuffix(operationSegment, ";") {
		return fields, tiaerr.NewAssemblyError(0, ordinal, operationSegment, "statements must be terminated with ';'")
	}
	operationSegment = operationSegment[:len(operationSegment)-1]
	operationFields := splitTopLevelSemicolons(operationSegment)
	for i := range operationFields {
		operationFields[i] = strings.TrimSpace(operationFields[i])
	}

	switch len(operationFields) {
	case 0:
		return fields, tiaerr.NewAssemblyError(0, ordinal, statement, "no operation statements present")
	case 1:
		fields.datapathString = operationFields[0]
	default:
		fields.datapathString = operationFields[0]
		for _, segment := range operationFields[1:] {
			switch {
			case strings.HasPrefix(segment, "deq"):
				if fields.hasDequeue {
					return fields, tiaerr.NewAssemblyError(0, ordinal, segment, "group dequeue operations into a single deq statement")
				}
				fields.dequeueString = segment
				fields.hasDequeue = true
			case strings.HasPrefix(segment, "set"):
				if fields.hasPredicateUpdate {
					return fields, tiaerr.NewAssemblyError(0, ordinal, segment, "cannot set the predicates to multiple values in a single instruction")
				}
				fields.predicateUpdateString = segment
				fields.hasPredicateUpdate = true
			default:
				return fields, tiaerr.NewAssemblyError(0, ordinal, segment, "unrecognized secondary operation")
			}
		}
	}

	return fields, nil
}

// splitTopLevelSemicolons splits on every ';'. Braces are not tracked:
// the grammar never places a ';' inside a '{...}' group (only ','
// appears there), so every ';' in a statement is a top-level one.
func splitTopLevelSemicolons(s string) []string {
	return strings.Split(s, ";")
}

// tokenizeDatapathString splits "op dest, src0, src1" into
// [op, dest, src0, src1], reassembling a "%o{x,y,z}.tag" high-fanout
// destination (which itself contains commas) back into one token.
func tokenizeDatapathString(ordinal int, s string) ([]string, error) {
	hasOpenBrace := strings.Contains(s, "{")
	hasCloseBrace := strings.Contains(s, "}")
	if hasOpenBrace && !hasCloseBrace {
		return nil, tiaerr.NewAssemblyError(0, ordinal, s, "unexpected character '{'")
	}
	multipleOutputChannels := hasOpenBrace && hasCloseBrace

	rawTokens := strings.Split(s, ",")
	for i := range rawTokens {
		rawTokens[i] = strings.TrimSpace(rawTokens[i])
	}

	if multipleOutputChannels {
		var reassembled []string
		var acc string
		accumulating := false
		done := false
		for i, raw := range rawTokens {
			switch {
			case done:
				reassembled = append(reassembled, raw)
			case !accumulating:
				if strings.Contains(raw, "{") {
					if i != 0 {
						return nil, tiaerr.NewAssemblyError(0, ordinal, raw, "'{...}' syntax is reserved for the destination")
					}
					acc = raw
					accumulating = true
				} else {
					reassembled = append(reassembled, raw)
				}
			default:
				acc += "," + raw
				if strings.Contains(acc, "{") && strings.Contains(acc, "}") {
					if strings.Index(acc, "{") < strings.Index(acc, "}") {
						reassembled = append(reassembled, acc)
						accumulating = false
						done = true
					} else {
						return nil, tiaerr.NewAssemblyError(0, ordinal, acc, "the multiple output channel index field must be '%o{x, y, z}.tag'")
					}
				}
			}
		}
		rawTokens = reassembled
	}

	// A lone opcode with no destination and no operands (e.g. "halt",
	// "nop") is a single comma-free token with no internal space; only
	// demand an "op dest" space when a destination is actually present.
	if len(rawTokens) > 1 && !strings.Contains(rawTokens[0], " ") {
		return nil, tiaerr.NewAssemblyError(0, ordinal, s, "the operation and destination must be space separated")
	}

	opAndMaybeDest := strings.Fields(rawTokens[0])
	if len(opAndMaybeDest) > 2 {
		return nil, tiaerr.NewAssemblyError(0, ordinal, s, "missing comma in datapath instruction")
	}
	tokens := append(opAndMaybeDest, rawTokens[1:]...)
	for _, token := range tokens {
		if strings.Contains(token, " ") {
			return nil, tiaerr.NewAssemblyError(0, ordinal, token, "expected a comma between datapath tokens")
		}
	}

	opToken := tokens[0]
	rest := tokens[1:]
	for _, token := range rest {
		if !strings.HasPrefix(token, "%") && !strings.HasPrefix(token, "$") {
			return nil, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid datapath token")
		}
	}

	return append([]string{opToken}, rest...), nil
}

func parseOp(ordinal int, token string) (ir.Op, error) {
	op, ok := ir.LookupOp(token)
	if !ok {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "unrecognized instruction")
	}
	return op, nil
}

func sourceTypeFromToken(ordinal int, token string) (ir.SourceType, error) {
	switch {
	case strings.HasPrefix(token, "$"):
		return ir.SourceImmediate, nil
	case strings.HasPrefix(token, "%i"):
		return ir.SourceChannel, nil
	case strings.HasPrefix(token, "%r"):
		return ir.SourceRegister, nil
	default:
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "unrecognized source token")
	}
}

func indexFromToken(ordinal int, token string) (int, error) {
	if len(token) < 3 || !strings.HasPrefix(token, "%") {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "unrecognized source token")
	}
	index, err := strconv.Atoi(token[2:])
	if err != nil {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "unrecognized source token")
	}
	return index, nil
}

func immediateFromToken(ordinal int, token string) (uint32, error) {
	if len(token) < 2 || !strings.HasPrefix(token, "$") {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid source")
	}
	digits := token[1:]
	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	value, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		uvalue, uerr := strconv.ParseUint(digits, base, 64)
		if uerr != nil {
			return 0, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid source")
		}
		return uint32(uvalue), nil
	}
	return uint32(int32(value)), nil
}

func destinationTagFromToken(ordinal int, token string) (int, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "the channel destination must have a tag")
	}
	tag, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid destination tag")
	}
	return tag, nil
}

func destinationIndicesFromToken(ordinal int, token string) ([]int, error) {
	open := strings.Index(token, "{")
	close := strings.Index(token, "}")
	if open < 0 || close < 0 || close < open {
		return nil, tiaerr.NewAssemblyError(0, ordinal, token, "'{...}' index syntax is malformed")
	}
	inner := token[open+1 : close]
	var indices []int
	seen := make(map[int]bool)
	for _, field := range strings.Split(inner, ",") {
		index, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, tiaerr.NewAssemblyError(0, ordinal, field, "not a valid index")
		}
		if seen[index] {
			return nil, tiaerr.NewAssemblyError(0, ordinal, token, "the indices in a high-fan-out instruction must be unique")
		}
		seen[index] = true
		indices = append(indices, index)
	}
	return indices, nil
}

// parseDatapath fills in op, sources, immediate, and destination
// fields from a tokenized datapath instruction, wiring output-channel
// destinations back into trigger (the caller passes a pointer so the
// trigger's OutputChannelIndices can be set the same way the Python
// original mutates it from within datapath parsing).
func parseDatapath(ordinal int, trigger *ir.Trigger, datapathString string) (ir.Op, [3]ir.Source, uint32, ir.DestinationType, int, int, []int, error) {
	tokens, err := tokenizeDatapathString(ordinal, datapathString)
	if err != nil {
		return 0, [3]ir.Source{}, 0, 0, 0, 0, nil, err
	}

	op, err := parseOp(ordinal, tokens[0])
	if err != nil {
		return 0, [3]ir.Source{}, 0, 0, 0, 0, nil, err
	}

	var sources [3]ir.Source
	var immediate uint32
	numTokens := len(tokens)

	fillSource := func(slot int, token string) error {
		st, err := sourceTypeFromToken(ordinal, token)
		if err != nil {
			return err
		}
		sources[slot].Type = st
		if st == ir.SourceImmediate {
			immediate, err = immediateFromToken(ordinal, token)
			return err
		}
		sources[slot].Index, err = indexFromToken(ordinal, token)
		return err
	}

	switch {
	case numTokens <= 2:
		// no sources.
	case numTokens == 3:
		if op == ir.OpSsw {
			if err := fillSource(0, tokens[1]); err != nil {
				return 0, sources, 0, 0, 0, 0, nil, err
			}
			if err := fillSource(1, tokens[2]); err != nil {
				return 0, sources, 0, 0, 0, 0, nil, err
			}
		} else {
			if err := fillSource(0, tokens[2]); err != nil {
				return 0, sources, 0, 0, 0, 0, nil, err
			}
		}
	case numTokens == 4:
		if err := fillSource(0, tokens[2]); err != nil {
			return 0, sources, 0, 0, 0, 0, nil, err
		}
		if err := fillSource(1, tokens[3]); err != nil {
			return 0, sources, 0, 0, 0, 0, nil, err
		}
	case numTokens == 5:
		if err := fillSource(0, tokens[2]); err != nil {
			return 0, sources, 0, 0, 0, 0, nil, err
		}
		if err := fillSource(1, tokens[3]); err != nil {
			return 0, sources, 0, 0, 0, 0, nil, err
		}
		if err := fillSource(2, tokens[4]); err != nil {
			return 0, sources, 0, 0, 0, 0, nil, err
		}
	default:
		return 0, sources, 0, 0, 0, 0, nil, tiaerr.NewAssemblyError(0, ordinal, datapathString, "illegal number of datapath tokens")
	}

	var destinationType ir.DestinationType
	var destinationIndex int
	var outputChannelTag int
	var outputChannelIndices []int

	if numTokens > 1 && op != ir.OpSsw {
		destinationToken := tokens[1]
		destinationField := strings.SplitN(destinationToken, ".", 2)[0]
		switch {
		case strings.HasPrefix(destinationField, "%o"):
			destinationType = ir.DestinationChannel
			if strings.Contains(destinationToken, "{") && strings.Contains(destinationToken, "}") {
				indices, err := destinationIndicesFromToken(ordinal, destinationToken)
				if err != nil {
					return 0, sources, 0, 0, 0, 0, nil, err
				}
				outputChannelIndices = indices
				destinationIndex = 0
			} else {
				index, err := indexFromToken(ordinal, destinationField)
				if err != nil {
					return 0, sources, 0, 0, 0, 0, nil, err
				}
				destinationIndex = index
				outputChannelIndices = []int{index}
			}
			trigger.OutputChannelIndices = outputChannelIndices
			tag, err := destinationTagFromToken(ordinal, destinationToken)
			if err != nil {
				return 0, sources, 0, 0, 0, 0, nil, err
			}
			outputChannelTag = tag
		case strings.HasPrefix(destinationField, "%r"):
			destinationType = ir.DestinationRegister
			index, err := indexFromToken(ordinal, destinationField)
			if err != nil {
				return 0, sources, 0, 0, 0, 0, nil, err
			}
			destinationIndex = index
		case strings.HasPrefix(destinationField, "%p"):
			destinationType = ir.DestinationPredicate
			index, err := indexFromToken(ordinal, destinationField)
			if err != nil {
				return 0, sources, 0, 0, 0, 0, nil, err
			}
			destinationIndex = index
		default:
			return 0, sources, 0, 0, 0, 0, nil, tiaerr.NewAssemblyError(0, ordinal, destinationToken, "unrecognized destination token")
		}
	} else {
		destinationType = ir.DestinationNull
	}

	return op, sources, immediate, destinationType, destinationIndex, outputChannelTag, outputChannelIndices, nil
}

func parseDequeueChannels(ordinal int, s string) ([]int, error) {
	trimmed := strings.TrimSpace(s)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 || fields[0] != "deq" {
		return nil, tiaerr.NewAssemblyError(0, ordinal, s, `expected a "deq" statement`)
	}
	rest := strings.Join(fields[1:], " ")
	var channels []int
	for _, raw := range strings.Split(rest, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if !strings.HasPrefix(token, "%i") {
			return nil, tiaerr.NewAssemblyError(0, ordinal, token, "invalid argument in dequeue statement")
		}
		index, err := strconv.Atoi(token[2:])
		if err != nil {
			return nil, tiaerr.NewAssemblyError(0, ordinal, token, "invalid argument in dequeue statement")
		}
		channels = append(channels, index)
	}
	return channels, nil
}

// ParseInstruction parses one full "when ... : ...;" statement into an
// ir.Instruction, assigning it the given ordinal for diagnostics.
func ParseInstruction(ordinal int, statement string) (ir.Instruction, error) {
	fields, err := splitInstructionStatement(ordinal, statement)
	if err != nil {
		return ir.Instruction{}, err
	}

	trigger, err := parseTrigger(ordinal, fields.predicateConditionString, fields.inputChannelConditionString, fields.hasInputChannelConditions)
	if err != nil {
		return ir.Instruction{}, err
	}

	op, sources, immediate, destinationType, destinationIndex, outputChannelTag, outputChannelIndices, err :=
		parseDatapath(ordinal, &trigger, fields.datapathString)
	if err != nil {
		return ir.Instruction{}, err
	}

	inst := ir.Instruction{
		Number:               ordinal,
		Trigger:              trigger,
		Op:                   op,
		Sources:              sources,
		Immediate:            immediate,
		DestinationType:      destinationType,
		DestinationIndex:     destinationIndex,
		OutputChannelTag:     outputChannelTag,
		OutputChannelIndices: outputChannelIndices,
	}

	if fields.hasDequeue {
		channels, err := parseDequeueChannels(ordinal, fields.dequeueString)
		if err != nil {
			return ir.Instruction{}, err
		}
		inst.InputChannelsToDequeue = channels
	}

	if fields.hasPredicateUpdate {
		triggerBinString, err := extractPredicateConditionBinString(ordinal, fields.predicateConditionString)
		if err != nil {
			return ir.Instruction{}, err
		}
		updateBinString, err := extractPredicateUpdateBinString(ordinal, fields.predicateUpdateString)
		if err != nil {
			return ir.Instruction{}, err
		}
		indices, values, err := determinePredicatesToUpdate(ordinal, triggerBinString, updateBinString)
		if err != nil {
			return ir.Instruction{}, err
		}
		inst.PredicateUpdateIndices = indices
		inst.PredicateUpdateValues = values
	}

	return inst, nil
}
