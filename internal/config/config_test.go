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

package config

import "testing"

func TestParseSectionedDocument(t *testing.T) {
	source := `
# a parameter file
[core]
architecture = "reference"
num_registers = 8
has_scratchpad = true

[interconnect]
topology = "mesh"  # trailing comment

[system]
max_cycles = 0x100

[macros]
ZERO = $0
`
	doc, err := Parse(source)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Core["architecture"] != "reference" {
		t.Fatalf("got architecture %v, want \"reference\"", doc.Core["architecture"])
	}
	if doc.Core["num_registers"] != 8 {
		t.Fatalf("got num_registers %v (%T), want int 8", doc.Core["num_registers"], doc.Core["num_registers"])
	}
	if doc.Core["has_scratchpad"] != true {
		t.Fatalf("got has_scratchpad %v, want true", doc.Core["has_scratchpad"])
	}
	if doc.Interconnect["topology"] != "mesh" {
		t.Fatalf("got topology %v, want \"mesh\" (comment must be stripped)", doc.Interconnect["topology"])
	}
	if doc.System["max_cycles"] != 256 {
		t.Fatalf("got max_cycles %v, want 256 (hex 0x100)", doc.System["max_cycles"])
	}
	if doc.Macros["ZERO"] != "$0" {
		t.Fatalf("got macro ZERO %q, want \"$0\"", doc.Macros["ZERO"])
	}
}

// TestParseHeaderlessDocumentIsMacros exercises the -m/--macros use
// case: a bare key=value file with no section header at all.
func TestParseHeaderlessDocumentIsMacros(t *testing.T) {
	doc, err := Parse("ADD1 = add %r1, %r0, $1\nZERO = $0\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Macros) != 2 {
		t.Fatalf("got %d macros, want 2", len(doc.Macros))
	}
	if doc.Macros["ZERO"] != "$0" {
		t.Fatalf("got macro ZERO %q, want \"$0\"", doc.Macros["ZERO"])
	}
}

func TestParseUnknownSectionRejected(t *testing.T) {
	if _, err := Parse("[bogus]\nfoo = 1\n"); err == nil {
		t.Fatal("expected an error for an unrecognized section header")
	}
}

func TestParseMalformedAssignmentRejected(t *testing.T) {
	if _, err := Parse("[core]\nnum_registers 8\n"); err == nil {
		t.Fatal("expected an error for a line with no '='")
	}
}

func TestParseScalarQuotedStringWinsOverNumericLook(t *testing.T) {
	doc, err := Parse(`[core]
architecture = "0x10"
`)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Core["architecture"] != "0x10" {
		t.Fatalf("got %v (%T), want the literal string \"0x10\"", doc.Core["architecture"], doc.Core["architecture"])
	}
}
