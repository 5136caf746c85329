/*
	TIA - Main process.

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

package main

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/opencgra/tia/internal/assemble"
	"github.com/opencgra/tia/internal/config"
	"github.com/opencgra/tia/internal/console"
	"github.com/opencgra/tia/internal/encode"
	"github.com/opencgra/tia/internal/ir"
	"github.com/opencgra/tia/internal/parameters"
	"github.com/opencgra/tia/internal/pe"
	"github.com/opencgra/tia/internal/system"
	"github.com/opencgra/tia/internal/tialog"
	"github.com/opencgra/tia/internal/topology"
)

func main() {
	optParams := getopt.StringLong("params", 'p', "", "Parameter map file ([core]/[interconnect]/[system])")
	optMacros := getopt.StringLong("macros", 'm', "", "Macro substitution file")
	optAssembly := getopt.StringLong("assembly", 'a', "", "Assembly source file")
	optTopology := getopt.StringLong("topology", 't', "pe", "Test topology: pe|quartet|block|array")
	optRows := getopt.IntLong("rows", 'r', 2, "Array topology row count")
	optColumns := getopt.IntLong("columns", 'c', 2, "Array topology column count")
	optCycles := getopt.IntLong("cycles", 'n', 0, "Cycle limit for batch mode, 0 = unbounded")
	optInteractive := getopt.BoolLong("interactive", 'i', "Drop into the interactive console")
	optOut := getopt.StringLong("out", 'o', "", "Binary image output path prefix")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	logger := tialog.New(file, *optInteractive)

	if *optParams == "" {
		logger.Error("please specify a parameter file with -p/--params")
		os.Exit(1)
	}

	cp, ip, sp, err := loadParameters(*optParams)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	sys, pes, err := buildTopology(*optTopology, *optRows, *optColumns, cp, ip, sp)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	var programs []*ir.Program
	if *optAssembly != "" {
		programs, err = loadAssembly(*optAssembly, *optMacros, cp, pes)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if *optOut != "" {
		if err := writeImages(*optOut, cp, programs); err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
	}

	if *optInteractive {
		console.Run(&console.Machine{System: sys, Core: cp, PEs: pes})
		return
	}

	halted, _, err := sys.Run(*optCycles, false, nil)
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
	if halted {
		logger.Info(fmt.Sprintf("halted at cycle %d", sys.Cycle))
	} else {
		logger.Info(fmt.Sprintf("stopped at cycle %d (cycle limit reached)", sys.Cycle))
	}
}

// loadParameters reads the -p/--params document and constructs the
// three architectural parameter objects it describes.
func loadParameters(path string) (*parameters.Core, *parameters.Interconnect, *parameters.System, error) {
	doc, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, nil, err
	}
	cp, err := parameters.CoreFromMap(doc.Core)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cp.Validate(); err != nil {
		return nil, nil, nil, err
	}
	ip, err := parameters.InterconnectFromMap(doc.Interconnect)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := ip.Validate(); err != nil {
		return nil, nil, nil, err
	}
	sp, err := parameters.SystemFromMap(doc.System)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := sp.Validate(); err != nil {
		return nil, nil, nil, err
	}
	return cp, ip, sp, nil
}

// buildTopology constructs one of the named test topologies, per
// SPEC_FULL.md section 3's recovered instances.py builders.
func buildTopology(name string, rows, columns int, cp *parameters.Core, ip *parameters.Interconnect, sp *parameters.System) (*system.System, map[string]*pe.Core, error) {
	switch name {
	case "pe":
		return topology.BuildProcessingElementSystem(cp, ip, sp)
	case "quartet":
		return topology.BuildQuartetSystem(cp, ip, sp)
	case "block":
		return topology.BuildBlockSystem(cp, ip, sp)
	case "array":
		return topology.BuildArraySystem(rows, columns, cp, ip, sp)
	default:
		return nil, nil, fmt.Errorf("unknown topology %q, want pe|quartet|block|array", name)
	}
}

// loadAssembly reads the assembly and optional macro file, programs
// every matching processing element, and returns the full parsed
// program list (including labels with no matching processing element,
// so -o/--out can still encode them).
func loadAssembly(assemblyPath, macrosPath string, cp *parameters.Core, pes map[string]*pe.Core) ([]*ir.Program, error) {
	source, err := os.ReadFile(assemblyPath)
	if err != nil {
		return nil, err
	}

	var macros map[string]string
	if macrosPath != "" {
		doc, err := config.LoadFile(macrosPath)
		if err != nil {
			return nil, err
		}
		macros = doc.Macros
	}

	programs, err := assemble.ParseAssembly(cp, macros, string(source))
	if err != nil {
		return nil, err
	}

	for _, program := range programs {
		core, ok := pes[program.Label]
		if !ok {
			fmt.Fprintf(os.Stderr, "warning: no processing element named %q in this topology, skipping\n", program.Label)
			continue
		}
		if err := core.Program(*program); err != nil {
			return nil, err
		}
	}
	return programs, nil
}

// writeImages encodes every loaded program's register/instruction word
// lists and writes each to "<base>.<label>.hex", one hex word per line,
// registers first, then a blank line, then instructions.
func writeImages(base string, cp *parameters.Core, programs []*ir.Program) error {
	for _, program := range programs {
		registerWords, instructionWords, err := encode.ProgramBinary(cp, program)
		if err != nil {
			return fmt.Errorf("encoding program %q: %w", program.Label, err)
		}

		path := fmt.Sprintf("%s.%s.hex", base, program.Label)
		f, err := os.Create(path)
		if err != nil {
			return err
		}

		for _, word := range registerWords {
			fmt.Fprintf(f, "%08x\n", word)
		}
		fmt.Fprintln(f)
		for _, word := range instructionWords {
			fmt.Fprintf(f, "%08x\n", word)
		}

		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
