/*
	TIA - Architectural parameters

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

// Package parameters is the single source of truth for every width,
// count, and feature flag that the assembler, encoder, and simulator
// share. Instances are constructed once from a name->value mapping and
// never mutated afterward.
package parameters

import (
	"math/bits"
	"sort"

	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/tiaerr"
)

// coreKeys is the exact recognized key set for Core.FromMap. Any key
// outside this set is an error; any key missing from it leaves the
// corresponding field at its zero value, to be caught by Validate.
var coreKeys = map[string]bool{
	"architecture":                    true,
	"device_word_width":               true,
	"immediate_width":                 true,
	"mm_instruction_width":            true,
	"num_instructions":                true,
	"num_predicates":                  true,
	"num_registers":                   true,
	"has_multiplier":                  true,
	"has_two_word_product_multiplier": true,
	"has_scratchpad":                  true,
	"num_scratchpad_words":            true,
	"latch_based_instruction_memory":  true,
	"ram_based_immediate_storage":     true,
	"num_input_channels":              true,
	"num_output_channels":             true,
	"channel_buffer_depth":            true,
	"max_num_input_channels_to_check": true,
	"num_tags":                        true,
	"has_speculative_predicate_unit":  true,
	"has_effective_queue_status":      true,
	"has_debug_monitor":               true,
	"has_performance_counters":        true,
}

// Core is the immutable record of word widths, counts, and feature
// flags that the rest of the toolchain treats as ground truth.
type Core struct {
	Architecture                 string
	DeviceWordWidth               int
	ImmediateWidth                int
	MMInstructionWidth             int
	NumInstructions               int
	NumPredicates                 int
	NumRegisters                  int
	HasMultiplier                 bool
	HasTwoWordProductMultiplier   bool
	HasScratchpad                 bool
	NumScratchpadWords            int
	LatchBasedInstructionMemory   bool
	RAMBasedImmediateStorage      bool
	NumInputChannels              int
	NumOutputChannels             int
	ChannelBufferDepth            int
	MaxNumInputChannelsToCheck    int
	NumTags                       int
	HasSpeculativePredicateUnit   bool
	HasEffectiveQueueStatus       bool
	HasDebugMonitor               bool
	HasPerformanceCounters        bool

	set map[string]bool
}

// CoreFromMap constructs a Core from a name->value mapping using the
// exact recognized key set. An unknown key is a hard error. A missing
// key leaves the field at its zero value; Validate reports the first
// missing key it finds.
func CoreFromMap(values map[string]any) (*Core, error) {
	cp := &Core{set: make(map[string]bool, len(values))}
	for key, value := range values {
		if !coreKeys[key] {
			return nil, tiaerr.NewParameterError(key, "unrecognized core parameter key")
		}
		var err error
		switch key {
		case "architecture":
			cp.Architecture, err = asString(key, value)
		case "device_word_width":
			cp.DeviceWordWidth, err = asInt(key, value)
		case "immediate_width":
			cp.ImmediateWidth, err = asInt(key, value)
		case "mm_instruction_width":
			cp.MMInstructionWidth, err = asInt(key, value)
		case "num_instructions":
			cp.NumInstructions, err = asInt(key, value)
		case "num_predicates":
			cp.NumPredicates, err = asInt(key, value)
		case "num_registers":
			cp.NumRegisters, err = asInt(key, value)
		case "has_multiplier":
			cp.HasMultiplier, err = asBool(key, value)
		case "has_two_word_product_multiplier":
			cp.HasTwoWordProductMultiplier, err = asBool(key, value)
		case "has_scratchpad":
			cp.HasScratchpad, err = asBool(key, value)
		case "num_scratchpad_words":
			cp.NumScratchpadWords, err = asInt(key, value)
		case "latch_based_instruction_memory":
			cp.LatchBasedInstructionMemory, err = asBool(key, value)
		case "ram_based_immediate_storage":
			cp.RAMBasedImmediateStorage, err = asBool(key, value)
		case "num_input_channels":
			cp.NumInputChannels, err = asInt(key, value)
		case "num_output_channels":
			cp.NumOutputChannels, err = asInt(key, value)
		case "channel_buffer_depth":
			cp.ChannelBufferDepth, err = asInt(key, value)
		case "max_num_input_channels_to_check":
			cp.MaxNumInputChannelsToCheck, err = asInt(key, value)
		case "num_tags":
			cp.NumTags, err = asInt(key, value)
		case "has_speculative_predicate_unit":
			cp.HasSpeculativePredicateUnit, err = asBool(key, value)
		case "has_effective_queue_status":
			cp.HasEffectiveQueueStatus, err = asBool(key, value)
		case "has_debug_monitor":
			cp.HasDebugMonitor, err = asBool(key, value)
		case "has_performance_counters":
			cp.HasPerformanceCounters, err = asBool(key, value)
		}
		if err != nil {
			return nil, err
		}
		cp.set[key] = true
	}
	return cp, nil
}

func asInt(key string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, tiaerr.NewParameterError(key, "expected an integer value")
	}
}

func asBool(key string, value any) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, tiaerr.NewParameterError(key, "expected a boolean value")
	}
	return v, nil
}

func asString(key string, value any) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", tiaerr.NewParameterError(key, "expected a string value")
	}
	return v, nil
}

// Validate reports the first recognized key never supplied to
// CoreFromMap, then recomputes the physical instruction width and fails
// if it exceeds the declared mm_instruction_width.
func (cp *Core) Validate() error {
	missing := make([]string, 0, len(coreKeys))
	for key := range coreKeys {
		if !cp.set[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return tiaerr.NewParameterError(missing[0], "missing required core parameter")
	}
	if cp.PhyInstructionWidth() > cp.MMInstructionWidth {
		return tiaerr.NewParameterError("mm_instruction_width",
			"physical instruction width exceeds the memory-mapped instruction slot width")
	}
	return nil
}

func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// --- Derived bit-field widths (spec.md section 3) ---

func (cp *Core) SingleICIWidth() int { return ceilLog2(cp.NumInputChannels + 1) }
func (cp *Core) ICIWidth() int       { return cp.MaxNumInputChannelsToCheck * cp.SingleICIWidth() }

func (cp *Core) TagWidth() int  { return ceilLog2(cp.NumTags) }
func (cp *Core) ICTBWidth() int { return cp.MaxNumInputChannelsToCheck }
func (cp *Core) ICTVWidth() int { return cp.MaxNumInputChannelsToCheck * cp.TagWidth() }

func (cp *Core) OpWidth() int       { return ceilLog2(ir.NumOps) }
func (cp *Core) SingleSTWidth() int { return ceilLog2(ir.NumSourceTypes) }
func (cp *Core) STWidth() int       { return 3 * cp.SingleSTWidth() }

func (cp *Core) SingleSIWidth() int {
	return ceilLog2(max(cp.NumRegisters, cp.NumInputChannels))
}
func (cp *Core) SIWidth() int { return 3 * cp.SingleSIWidth() }

func (cp *Core) DTWidth() int { return ceilLog2(ir.NumDestinationTypes) }
func (cp *Core) DIWidth() int {
	return ceilLog2(max(cp.NumRegisters, cp.NumOutputChannels, cp.NumPredicates))
}

func (cp *Core) OCIWidth() int { return cp.NumOutputChannels }
func (cp *Core) OCTWidth() int { return cp.TagWidth() }
func (cp *Core) ICDWidth() int { return cp.NumInputChannels }

func (cp *Core) TruePTMWidth() int  { return cp.NumPredicates }
func (cp *Core) FalsePTMWidth() int { return cp.NumPredicates }
func (cp *Core) PTMWidth() int      { return 2 * cp.NumPredicates }

func (cp *Core) TruePUMWidth() int  { return cp.NumPredicates }
func (cp *Core) FalsePUMWidth() int { return cp.NumPredicates }
func (cp *Core) PUMWidth() int      { return 2 * cp.NumPredicates }

// NonImmediateWidth sums the width of every field except the immediate
// (the leading validity bit IS counted, per spec.md section 3).
func (cp *Core) NonImmediateWidth() int {
	return 1 + cp.PTMWidth() + cp.ICIWidth() + cp.ICTBWidth() + cp.ICTVWidth() +
		cp.OpWidth() + cp.STWidth() + cp.SIWidth() + cp.DTWidth() + cp.DIWidth() +
		cp.OCIWidth() + cp.OCTWidth() + cp.ICDWidth() + cp.PUMWidth()
}

// PhyInstructionWidth is the exact bit width of one encoded instruction,
// before any mm_instruction_width padding.
func (cp *Core) PhyInstructionWidth() int {
	return cp.NonImmediateWidth() + cp.ImmediateWidth
}

// PaddingWidth is the number of zero bits appended to reach MMInstructionWidth.
func (cp *Core) PaddingWidth() int {
	return cp.MMInstructionWidth - cp.PhyInstructionWidth()
}
