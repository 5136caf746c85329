/*
	TIA - Interactive console

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

// Package console is the interactive front end to a running Machine: a
// liner-backed read loop over a small abbreviation-matched command
// table (run, step, reset, load, show, quit), in the same shape as the
// donor's command/reader and command/parser packages, cut down to this
// domain's much smaller surface.
package console

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/opencgra/tia/internal/assemble"
	"github.com/opencgra/tia/internal/hex"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/pe"
	"github.com/opencgra/tia/internal/system"
)

// Machine bundles a running System with the architectural parameters
// and per-processing-element cores needed to service "show" and "load"
// commands, which operate below the System's opaque component
// interfaces.
type Machine struct {
	System *system.System
	Core   *parameters.Core
	PEs    map[string]*pe.Core

	KeepExecutionTrace bool
}

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *Machine) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "run", min: 1, process: runCmd},
	{name: "step", min: 2, process: stepCmd},
	{name: "reset", min: 3, process: resetCmd},
	{name: "load", min: 1, process: loadCmd},
	{name: "show", min: 2, process: showCmd},
	{name: "quit", min: 1, process: quitCmd},
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && l.line[l.pos] == ' ' {
		l.pos++
	}
}

// getWord returns the next whitespace-delimited token, advancing past it.
func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && l.line[l.pos] != ' ' {
		l.pos++
	}
	return l.line[start:l.pos]
}

// rest returns everything left unconsumed on the line, trimmed.
func (l *cmdLine) rest() string {
	l.skipSpace()
	return strings.TrimSpace(l.line[l.pos:])
}

func matchCommand(c cmd, name string) bool {
	if len(name) > len(c.name) || len(name) < c.min {
		return false
	}
	return c.name[:len(name)] == name
}

func matchList(name string) []cmd {
	if name == "" {
		return nil
	}
	var match []cmd
	for _, c := range cmdList {
		if matchCommand(c, name) {
			match = append(match, c)
		}
	}
	return match
}

// ProcessCommand executes one command line against machine, returning
// true when the console should exit.
func ProcessCommand(commandLine string, machine *Machine) (bool, error) {
	line := &cmdLine{line: commandLine}
	name := line.getWord()
	if name == "" {
		return false, nil
	}

	matches := matchList(name)
	switch len(matches) {
	case 0:
		return false, fmt.Errorf("command not found: %s", name)
	case 1:
		return matches[0].process(line, machine)
	default:
		return false, fmt.Errorf("ambiguous command: %s", name)
	}
}

func runCmd(line *cmdLine, machine *Machine) (bool, error) {
	maxCycles := 0
	if arg := line.rest(); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("not a valid cycle count: %s", arg)
		}
		maxCycles = n
	}
	halted, _, err := machine.System.Run(maxCycles, machine.KeepExecutionTrace, nil)
	if err != nil {
		return false, err
	}
	if halted {
		fmt.Printf("halted at cycle %d\n", machine.System.Cycle)
	} else {
		fmt.Printf("stopped at cycle %d (cycle limit reached)\n", machine.System.Cycle)
	}
	return false, nil
}

func stepCmd(line *cmdLine, machine *Machine) (bool, error) {
	n := 1
	if arg := line.rest(); arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("not a valid step count: %s", arg)
		}
		n = parsed
	}
	for i := 0; i < n; i++ {
		halted, err := machine.System.Iterate(machine.KeepExecutionTrace)
		if err != nil {
			return false, err
		}
		if halted {
			fmt.Printf("halted at cycle %d\n", machine.System.Cycle)
			break
		}
	}
	return false, nil
}

func resetCmd(_ *cmdLine, machine *Machine) (bool, error) {
	machine.System.Reset()
	fmt.Println("reset")
	return false, nil
}

func loadCmd(line *cmdLine, machine *Machine) (bool, error) {
	path := line.rest()
	if path == "" {
		return false, errors.New("usage: load <assembly-file>")
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	programs, err := assemble.ParseAssembly(machine.Core, nil, string(source))
	if err != nil {
		return false, err
	}
	loaded := 0
	for _, program := range programs {
		core, ok := machine.PEs[program.Label]
		if !ok {
			fmt.Printf("warning: no processing element named %q in this machine, skipping\n", program.Label)
			continue
		}
		if err := core.Program(*program); err != nil {
			return false, err
		}
		loaded++
	}
	fmt.Printf("loaded %d processing element program(s) from %s\n", loaded, path)
	return false, nil
}

func showCmd(line *cmdLine, machine *Machine) (bool, error) {
	what := line.getWord()
	switch what {
	case "topology":
		fmt.Println(strings.Join(machine.System.TopologyNames(), "\n"))
		return false, nil
	case "regs":
		core, err := findPE(line, machine)
		if err != nil {
			return false, err
		}
		var str strings.Builder
		for i, v := range core.Registers {
			fmt.Fprintf(&str, "%%r%-3d ", i)
			hex.FormatWord(&str, []uint32{v})
			str.WriteByte('\n')
		}
		fmt.Print(str.String())
		return false, nil
	case "pred":
		core, err := findPE(line, machine)
		if err != nil {
			return false, err
		}
		bits := make([]byte, len(core.Predicates))
		for i, p := range core.Predicates {
			c := byte('0')
			if p {
				c = '1'
			}
			bits[len(bits)-1-i] = c
		}
		fmt.Println(string(bits))
		return false, nil
	case "trace":
		core, err := findPE(line, machine)
		if err != nil {
			return false, err
		}
		for cycle, fired := range core.ExecutionTrace {
			fmt.Printf("cycle %d: %d\n", cycle, fired)
		}
		return false, nil
	default:
		return false, fmt.Errorf("usage: show topology|regs <pe>|pred <pe>|trace <pe>")
	}
}

func findPE(line *cmdLine, machine *Machine) (*pe.Core, error) {
	name := line.rest()
	if name == "" {
		return nil, errors.New("missing processing element name")
	}
	core, ok := machine.PEs[name]
	if !ok {
		return nil, fmt.Errorf("no processing element named %q in this machine", name)
	}
	return core, nil
}

func quitCmd(_ *cmdLine, _ *Machine) (bool, error) {
	return true, nil
}

// CompleteCmd offers liner tab-completion over the command table.
func CompleteCmd(commandLine string) []string {
	line := &cmdLine{line: commandLine}
	name := line.getWord()
	matches := matchList(name)
	if name == commandLine {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.name
		}
		return names
	}
	return nil
}

// Run drives the liner-backed interactive read loop against machine
// until the "quit" command, Ctrl-C, or EOF.
func Run(machine *Machine) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(s string) []string { return CompleteCmd(s) })

	for {
		command, err := line.Prompt("tia> ")
		if err == nil {
			line.AppendHistory(command)
			quit, cmdErr := ProcessCommand(command, machine)
			if cmdErr != nil {
				fmt.Println("error: " + cmdErr.Error())
			}
			if quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) {
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}
