/*
	TIA - System-level parameters

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

package parameters

import (
	"sort"

	"github.com/opencgra/tia/internal/tiaerr"
)

var systemKeys = map[string]bool{
	"host_word_width":                 true,
	"num_test_data_memory_words":      true,
	"test_data_memory_buffer_depth":   true,
}

// System holds the handful of parameters governing the test-memory
// harness: host MMIO bus width and the size/buffering of scratch data
// memory attached to a test topology.
type System struct {
	HostWordWidth               int
	NumTestDataMemoryWords      int
	TestDataMemoryBufferDepth   int

	set map[string]bool
}

// SystemFromMap constructs a System from a name->value mapping using
// the exact recognized key set.
func SystemFromMap(values map[string]any) (*System, error) {
	sp := &System{set: make(map[string]bool, len(values))}
	for key, value := range values {
		if !systemKeys[key] {
			return nil, tiaerr.NewParameterError(key, "unrecognized system parameter key")
		}
		var err error
		switch key {
		case "host_word_width":
			sp.HostWordWidth, err = asInt(key, value)
		case "num_test_data_memory_words":
			sp.NumTestDataMemoryWords, err = asInt(key, value)
		case "test_data_memory_buffer_depth":
			sp.TestDataMemoryBufferDepth, err = asInt(key, value)
		}
		if err != nil {
			return nil, err
		}
		sp.set[key] = true
	}
	return sp, nil
}

// Validate reports the first recognized key never supplied to SystemFromMap.
func (sp *System) Validate() error {
	missing := make([]string, 0, len(systemKeys))
	for key := range systemKeys {
		if !sp.set[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return tiaerr.NewParameterError(missing[0], "missing required system parameter")
	}
	return nil
}
