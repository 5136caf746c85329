/*
	TIA - Parameter and macro file loader

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

// Package config loads the architectural parameter maps and assembler
// macro table from a single hand-rolled text format: '#' comments,
// blank lines ignored, and "[section]" headers dividing the file into
// the four name=value blocks that feed parameters.CoreFromMap,
// parameters.InterconnectFromMap, parameters.SystemFromMap, and
// assemble.ParseAssembly's macro substitution. The line-scanning shape
// (bufio.Scanner, a cursor over the current line, '#' strips the rest
// of the line) follows config/configparser's idiom; the section-model
// logic that package exists for is S/370-specific and is not carried
// over.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Document holds the four name=value blocks recognized in a parameter
// file. Core, Interconnect, and System are ready to pass directly to
// their matching parameters.*FromMap constructor; Macros is ready to
// pass directly to assemble.ParseAssembly.
type Document struct {
	Core         map[string]any
	Interconnect map[string]any
	System       map[string]any
	Macros       map[string]string
}

// section names recognized in a "[name]" header.
const (
	sectionCore         = "core"
	sectionInterconnect = "interconnect"
	sectionSystem       = "system"
	sectionMacros       = "macros"
)

// Parse reads a parameter/macro document from source.
func Parse(source string) (*Document, error) {
	doc := &Document{
		Core:         make(map[string]any),
		Interconnect: make(map[string]any),
		System:       make(map[string]any),
		Macros:       make(map[string]string),
	}

	// A file with no section headers at all is a bare macro table (the
	// common case for a -m/--macros file handed to ParseAssembly), so
	// key=value lines preceding the first header default to [macros]
	// rather than erroring.
	section := sectionMacros
	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "[") {
			name, err := parseSectionHeader(lineNumber, line)
			if err != nil {
				return nil, err
			}
			section = name
			continue
		}

		key, value, err := parseAssignment(lineNumber, line)
		if err != nil {
			return nil, err
		}

		switch section {
		case sectionCore:
			doc.Core[key] = parseScalar(value)
		case sectionInterconnect:
			doc.Interconnect[key] = parseScalar(value)
		case sectionSystem:
			doc.System[key] = parseScalar(value)
		case sectionMacros:
			doc.Macros[key] = value
		default:
			return nil, fmt.Errorf("line %d: unknown section %q", lineNumber, section)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

// stripComment discards everything from the first unquoted '#' onward.
func stripComment(line string) string {
	inQuote := false
	for i, r := range line {
		switch r {
		case '"':
			inQuote = !inQuote
		case '#':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

func parseSectionHeader(lineNumber int, line string) (string, error) {
	if !strings.HasSuffix(line, "]") {
		return "", fmt.Errorf("line %d: unterminated section header %q", lineNumber, line)
	}
	name := strings.TrimSpace(line[1 : len(line)-1])
	switch name {
	case sectionCore, sectionInterconnect, sectionSystem, sectionMacros:
		return name, nil
	default:
		return "", fmt.Errorf("line %d: unknown section %q", lineNumber, name)
	}
}

func parseAssignment(lineNumber int, line string) (key, value string, err error) {
	i := strings.IndexByte(line, '=')
	if i < 0 {
		return "", "", fmt.Errorf("line %d: expected key=value, got %q", lineNumber, line)
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if key == "" {
		return "", "", fmt.Errorf("line %d: empty key", lineNumber)
	}
	return key, value, nil
}

// parseScalar infers a bool, int, or string from a raw value token: a
// quoted value is always a string, "true"/"false" is a bool, anything
// parseable by strconv.ParseInt (decimal or "0x"-prefixed hex, either
// sign) is an int, and everything else passes through as a string.
func parseScalar(value string) any {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(value, 0, 64); err == nil {
		return int(n)
	}
	return value
}

// LoadFile reads and parses the parameter/macro document at path.
func LoadFile(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(source))
}

// LoadMacros is a convenience entry point for callers that only need
// the [macros] section, e.g. when assembling a single program outside
// of a full parameter document.
func LoadMacros(source string) (map[string]string, error) {
	doc, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return doc.Macros, nil
}
