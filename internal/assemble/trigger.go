/*
	TIA - Assembler: trigger parsing

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

// Package assemble turns CGRA assembly source into ir.Program values:
// a trigger-predicate/datapath statement parser, a small label-based
// per-processing-element splitter, and a longest-match-first macro
// substitution pass, all grounded on the Python reference assembler's
// own string-splitting approach (never a parser-generator grammar).
package assemble

import (
	"strconv"
	"strings"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/tiaerr"
)

// parsePredicateBinString walks a right-indexed (LSB-first) bit string
// such as "10XX01", where 'X'/'x' (and, in a predicate-update context,
// 'Z'/'z') are don't-cares, and returns the true- and false-predicate
// index lists.
func parsePredicateBinString(ordinal int, allowZ bool, s string) (truePredicates, falsePredicates []int, err error) {
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[len(runes)-1-i]
		switch {
		case c == 'X' || c == 'x':
			continue
		case allowZ && (c == 'Z' || c == 'z'):
			continue
		case c == '0':
			falsePredicates = append(falsePredicates, i)
		case c == '1':
			truePredicates = append(truePredicates, i)
		default:
			return nil, nil, tiaerr.NewAssemblyError(0, ordinal, string(c), "predicate binary strings may only contain 0, 1, X, or Z")
		}
	}
	return truePredicates, falsePredicates, nil
}

// extractPredicateConditionBinString pulls the bit string out of a
// "%p == 10XX01"-shaped trigger condition.
func extractPredicateConditionBinString(ordinal int, s string) (string, error) {
	parts := strings.SplitN(s, "==", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) != "%p" {
		return "", tiaerr.NewAssemblyError(0, ordinal, s, `expected predicate condition of the form "%p == [binary string]"`)
	}
	return strings.TrimSpace(parts[1]), nil
}

// extractPredicateUpdateBinString pulls the bit string out of a
// "set %p = 10XX01"-shaped update statement.
func extractPredicateUpdateBinString(ordinal int, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "set") {
		return "", tiaerr.NewAssemblyError(0, ordinal, s, `expected predicate update of the form "set %p = [binary string]"`)
	}
	rest := trimmed[3:]
	if strings.Contains(rest, "==") {
		return "", tiaerr.NewAssemblyError(0, ordinal, s, `expected predicate update of the form "set %p = [binary string]"`)
	}
	parts := strings.SplitN(rest, "=", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) != "%p" {
		return "", tiaerr.NewAssemblyError(0, ordinal, s, `expected predicate update of the form "set %p = [binary string]"`)
	}
	return strings.TrimSpace(parts[1]), nil
}

// tokenizeInputChannelString splits a "!%i1.4, %i6.1" with-clause into
// its comma-separated, whitespace-trimmed tokens, validating each one
// starts with "%i" or "!%i".
func tokenizeInputChannelString(ordinal int, s string) ([]string, error) {
	var tokens []string
	for _, raw := range strings.Split(s, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if !strings.HasPrefix(token, "%i") && !strings.HasPrefix(token, "!%i") {
			return nil, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid input channel condition")
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func inputChannelIndex(ordinal int, token string) (int, error) {
	stripped := strings.TrimPrefix(token, "!")
	field := strings.SplitN(stripped, ".", 2)[0]
	if !strings.HasPrefix(field, "%i") {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid input channel token")
	}
	index, err := strconv.Atoi(field[2:])
	if err != nil {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid input channel index")
	}
	return index, nil
}

func inputChannelTag(ordinal int, token string) (int, error) {
	parts := strings.SplitN(strings.TrimPrefix(token, "!"), ".", 2)
	if len(parts) != 2 {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "input channel condition must carry a tag")
	}
	tag, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, tiaerr.NewAssemblyError(0, ordinal, token, "not a valid input channel tag")
	}
	return tag, nil
}

// parseInputChannelConditions parses a full with-clause into the three
// parallel slices a Trigger needs.
func parseInputChannelConditions(ordinal int, s string) (channels, tags []int, booleans []bool, err error) {
	tokens, err := tokenizeInputChannelString(ordinal, s)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, token := range tokens {
		index, err := inputChannelIndex(ordinal, token)
		if err != nil {
			return nil, nil, nil, err
		}
		tag, err := inputChannelTag(ordinal, token)
		if err != nil {
			return nil, nil, nil, err
		}
		channels = append(channels, index)
		tags = append(tags, tag)
		booleans = append(booleans, !strings.HasPrefix(token, "!"))
	}
	return channels, tags, booleans, nil
}

// parseTrigger builds a Trigger from the predicate-condition segment
// and, if present, the with-clause segment of a "when ... :" statement.
func parseTrigger(ordinal int, predicateConditionString string, inputChannelConditionString string, hasInputChannelConditions bool) (ir.Trigger, error) {
	var trigger ir.Trigger

	binString, err := extractPredicateConditionBinString(ordinal, predicateConditionString)
	if err != nil {
		return trigger, err
	}
	truePredicates, falsePredicates, err := parsePredicateBinString(ordinal, false, binString)
	if err != nil {
		return trigger, err
	}
	trigger.TruePredicates = truePredicates
	trigger.FalsePredicates = falsePredicates

	if hasInputChannelConditions {
		channels, tags, booleans, err := parseInputChannelConditions(ordinal, inputChannelConditionString)
		if err != nil {
			return trigger, err
		}
		trigger.InputChannels = channels
		trigger.InputChannelTags = tags
		trigger.InputChannelTagBooleans = booleans
	}

	return trigger, nil
}

// determinePredicatesToUpdate diffs the trigger-condition bit string
// against the desired bit string (both right-indexed, 'Z'/'z' or
// 'X'/'x' as don't-care in the desired string) and returns the sorted
// list of predicates that must actually change, with their new values.
func determinePredicatesToUpdate(ordinal int, originalBinString, desiredBinString string) (indices []int, values []bool, err error) {
	originalTrue, originalFalse, err := parsePredicateBinString(ordinal, true, originalBinString)
	if err != nil {
		return nil, nil, err
	}
	desiredTrue, desiredFalse, err := parsePredicateBinString(ordinal, true, desiredBinString)
	if err != nil {
		return nil, nil, err
	}

	originalTrueSet := toSet(originalTrue)
	originalFalseSet := toSet(originalFalse)

	type update struct {
		index int
		value bool
	}
	var updates []update
	for _, p := range desiredTrue {
		if !originalTrueSet[p] {
			updates = append(updates, update{p, true})
		}
	}
	for _, p := range desiredFalse {
		if !originalFalseSet[p] {
			updates = append(updates, update{p, false})
		}
	}
	for i := 1; i < len(updates); i++ {
		for j := i; j > 0 && updates[j-1].index > updates[j].index; j-- {
			updates[j-1], updates[j] = updates[j], updates[j-1]
		}
	}
	for _, u := range updates {
		indices = append(indices, u.index)
		values = append(values, u.value)
	}
	return indices, values, nil
}

func toSet(xs []int) map[int]bool {
	set := make(map[int]bool, len(xs))
	for _, x := range xs {
		set[x] = true
	}
	return set
}
