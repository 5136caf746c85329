/*
	TIA - Error taxonomy

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

// Package tiaerr defines the three fatal error taxonomies shared by the
// assembler, the parameter object, and the simulator.
package tiaerr

import "fmt"

// AssemblyError reports a lexical, syntactic, or semantic fault in
// assembly source. Ordinal is the 0-based instruction ordinal within its
// processing-element section, or -1 if the fault was found before an
// instruction could be numbered. Line is the 1-based source line, or 0
// if unknown.
type AssemblyError struct {
	Line    int
	Ordinal int
	Token   string
	Msg     string
}

func (e *AssemblyError) Error() string {
	switch {
	case e.Line > 0 && e.Token != "":
		return fmt.Sprintf("assembly error: line %d: instruction %d: %s (near %q)", e.Line, e.Ordinal, e.Msg, e.Token)
	case e.Line > 0:
		return fmt.Sprintf("assembly error: line %d: instruction %d: %s", e.Line, e.Ordinal, e.Msg)
	case e.Token != "":
		return fmt.Sprintf("assembly error: instruction %d: %s (near %q)", e.Ordinal, e.Msg, e.Token)
	default:
		return fmt.Sprintf("assembly error: instruction %d: %s", e.Ordinal, e.Msg)
	}
}

// NewAssemblyError builds an AssemblyError naming the offending token.
func NewAssemblyError(line, ordinal int, token, msg string) *AssemblyError {
	return &AssemblyError{Line: line, Ordinal: ordinal, Token: token, Msg: msg}
}

// ParameterError reports a missing, inconsistent, or over-budget
// architectural parameter.
type ParameterError struct {
	Field string
	Msg   string
}

func (e *ParameterError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parameter error: %s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("parameter error: %s", e.Msg)
}

// NewParameterError builds a ParameterError naming the offending field.
func NewParameterError(field, msg string) *ParameterError {
	return &ParameterError{Field: field, Msg: msg}
}

// SimulatorError reports a runtime fault in the functional simulator:
// a full/empty buffer access, a scratchpad access on a core without one,
// an unrecognized source/destination type, or an incompatible router
// connection.
type SimulatorError struct {
	Component string
	Msg       string
}

func (e *SimulatorError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("simulator error: %s: %s", e.Component, e.Msg)
	}
	return fmt.Sprintf("simulator error: %s", e.Msg)
}

// NewSimulatorError builds a SimulatorError naming the offending component.
func NewSimulatorError(component, msg string) *SimulatorError {
	return &SimulatorError{Component: component, Msg: msg}
}
