// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/lassandro/gocpu16/pkg/assembler"
	"github.com/lassandro/gocpu16/pkg/debugger"
	"github.com/lassandro/gocpu16/pkg/encoding"
	"github.com/lassandro/gocpu16/pkg/machine"
)

var args []string

var helpvar bool
var debugvar bool
var tracevar bool
var memdumpvar bool
var limitvar uint64
var basevar string

// Program image as read from disk, kept for the debugger's reset command.
var image []byte
var base uint16

const usage = "cpu16 filename [-debug] [-trace] [-memdump] [-limit #] [-base 0x####]"

func init() {
	exe, _ := os.Executable()
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(exe)))
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(&debugvar, "debug", false, "Runs the machine in a debug CLI")
	flag.BoolVar(
		&tracevar, "trace", false,
		"Prints every executed instruction followed by the registers and "+
			"flags it left behind",
	)
	flag.BoolVar(
		&memdumpvar, "memdump", false,
		"Dumps memory 0x0000-0x00FF once the machine halts",
	)
	flag.Uint64Var(
		&limitvar, "limit", 0,
		"Stops the machine after this many instructions, 0 for no limit",
	)
	flag.StringVar(
		&basevar, "base", "0x0000",
		"Address the binary is loaded at and execution starts from",
	)
}

// parseArgs parses flags and returns the positional arguments. Flags may
// come before or after the file names.
func parseArgs(fs *flag.FlagSet, arguments []string) ([]string, error) {
	var positional []string

	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}

	for fs.NArg() > 0 {
		positional = append(positional, fs.Arg(0))

		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return nil, err
		}
	}

	return positional, nil
}

// Loads the symbol table written by cpu16-asm -debug alongside the binary,
// then the source file it points at.
func loadSymbols(dbg *debugger.Debugger, binary string) (source *os.File) {
	filename := filepath.Join(
		filepath.Dir(binary),
		strings.TrimSuffix(filepath.Base(binary), filepath.Ext(binary))+".dbg",
	)

	file, err := os.Open(filename)

	if err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return nil
	}

	defer file.Close()

	var symtable assembler.SymTable

	if err := gob.NewDecoder(file).Decode(&symtable); err != nil {
		log.Println("Error loading symbol file")
		log.Println(err)
		return nil
	}

	dbg.SymTable = &symtable

	if symtable.Source == "" {
		return nil
	}

	if source, err = os.Open(symtable.Source); err != nil {
		log.Println("Error loading source file")
		log.Println(err)
		return nil
	}

	dbg.Source = source
	return source
}

func cpu16() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	if len(args) != 1 {
		log.Println(usage)
		return 1
	}

	var err error

	if base, err = encoding.DecodeAddr(basevar); err != nil {
		log.Printf("invalid base address '%s'", basevar)
		return 1
	}

	if image, err = os.ReadFile(args[0]); err != nil {
		log.Println(err)
		return 1
	}

	var dh machine.DeviceHandler
	dh.Keyboard = bufio.NewReader(os.Stdin)
	dh.Display = bufio.NewWriter(os.Stdout)

	mc := machine.NewMachine(nil)
	mc.Memory.Devices = &dh

	var dbg debugger.Debugger

	if tracevar {
		dbg.Trace = os.Stdout
	}

	if debugvar {
		dbg.HandleBreak = handleBreak
		dbg.HandleRead = handleRead
		dbg.HandleWrite = handleWrite

		if source := loadSymbols(&dbg, args[0]); source != nil {
			defer source.Close()
		}

		c := make(chan os.Signal, 1)
		defer close(c)

		signal.Notify(c, os.Interrupt)
		defer signal.Stop(c)

		go func() {
			for range c {
				dbg.Interrupt()
			}
		}()
	}

	if debugvar || tracevar {
		mc.Debugger = &dbg
	}

	if err := reset(mc); err != nil {
		log.Println(err)
		return 1
	}

	enterRawTerm()
	defer exitRawTerm()

	if debugvar {
		fmt.Println("\n=== Debug Mode Enabled ===")
		debugREPL(&dbg, mc)
	}

	fmt.Println("\n=== Starting Execution ===")

	for !mc.State.Halted {
		if limitvar != 0 && mc.State.Count >= limitvar {
			dbg.Finish(mc)
			exitRawTerm()
			log.Printf("step limit of %d instructions reached", limitvar)
			return 1
		}

		if err := mc.Step(); err != nil {
			dbg.Finish(mc)
			exitRawTerm()
			log.Println(err)
			return 1
		}
	}

	dbg.Finish(mc)

	fmt.Println("\n=== Execution Complete ===")
	fmt.Printf("Instructions executed: %d\n", mc.State.Count)
	dbg.PrintRegisters(mc)

	if memdumpvar {
		fmt.Println("\n=== Memory Dump ===")
		dbg.PrintMem(mc.Memory, 0x0000, 0x100)
	}

	return 0
}

// Reloads the program image into cleared memory and points the machine at it.
func reset(mc *machine.Machine) error {
	if _, err := mc.LoadBin(bytes.NewReader(image), base); err != nil {
		return err
	}

	mc.State.Program = base
	return nil
}

func main() {
	var err error

	if args, err = parseArgs(flag.CommandLine, os.Args[1:]); err != nil {
		os.Exit(1)
	}

	os.Exit(cpu16())
}
