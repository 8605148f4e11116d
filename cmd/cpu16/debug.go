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
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lassandro/gocpu16/pkg/alu"
	"github.com/lassandro/gocpu16/pkg/debugger"
	"github.com/lassandro/gocpu16/pkg/encoding"
	"github.com/lassandro/gocpu16/pkg/machine"
)

var lastcmd []string

// Resolves a label name or a hex address.
func lookupAddr(dbg *debugger.Debugger, arg string) (uint16, bool) {
	if dbg.SymTable != nil {
		for addr, label := range dbg.SymTable.Labels {
			if label == arg {
				return addr, true
			}
		}
	}

	addr, err := encoding.DecodeAddr(arg)
	return addr, err == nil
}

func indexFormat(count int) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: 0x%%04x", int64(digits)+1)
}

func debugBreak(dbg *debugger.Debugger, args []string) {
	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x####|label]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		addr, ok := lookupAddr(dbg, args[0])

		if !ok {
			log.Printf("Unable to find '%s'", args[0])
			return
		}

		for _, breakpoint := range dbg.Breakpoints {
			if breakpoint.Addr == addr {
				return
			}
		}

		dbg.Breakpoints = append(dbg.Breakpoints, debugger.Breakpoint{Addr: addr})
		fmt.Printf("Breakpoint added [0x%04x]\n", addr)

	case "l", "ls", "list":
		if len(args) != 0 {
			log.Println("break list")
			return
		}

		format := indexFormat(len(dbg.Breakpoints)) + "\n"

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(format, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= len(dbg.Breakpoints) {
			log.Println("Invalid breakpoint number")
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = nil
		fmt.Println("Breakpoints reset")

	default:
		log.Printf("break: '%s' is not a valid command\n", cmd)
	}
}

var watchNames = map[debugger.WatchpointType]string{
	debugger.ReadWatch:      "read",
	debugger.WriteWatch:     "write",
	debugger.ReadWriteWatch: "readwrite",
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm]"

	if len(args) == 0 {
		log.Println(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x####|label] [read|write|readwrite]"

		if len(args) != 2 {
			log.Println(usage)
			return
		}

		addr, ok := lookupAddr(dbg, args[0])

		if !ok {
			log.Printf("Unable to find '%s'", args[0])
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			log.Println(usage)
			return
		}

		for _, watchpoint := range dbg.Watchpoints {
			if watchpoint.Addr == addr && watchpoint.Type == wtype {
				return
			}
		}

		dbg.Watchpoints = append(
			dbg.Watchpoints,
			debugger.Watchpoint{Addr: addr, Type: wtype},
		)

		fmt.Printf("Watchpoint added [0x%04x] (%s)\n", addr, watchNames[wtype])

	case "l", "ls", "list":
		if len(args) != 0 {
			log.Println("watch list")
			return
		}

		format := indexFormat(len(dbg.Watchpoints)) + " %s\n"

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(format, i, watchpoint.Addr, watchNames[watchpoint.Type])
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		if len(args) != 1 {
			log.Println(usage)
			return
		}

		i, err := strconv.Atoi(args[0])

		if err != nil {
			log.Println(err)
			return
		}

		if i < 0 || i >= len(dbg.Watchpoints) {
			log.Println("Invalid watchpoint number")
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = nil
		fmt.Println("Watchpoints reset")

	default:
		log.Printf("watch: '%s' is not a valid command\n", cmd)
	}
}

func debugReg(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "register [R#|PC|SP|FL] [0x####]"

	if len(args) == 0 {
		dbg.PrintRegisters(mc)
		return
	}

	if len(args) != 2 {
		log.Println(usage)
		return
	}

	value, err := encoding.DecodeAddr(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	name := strings.ToUpper(args[0])
	state := &mc.State

	switch {
	case len(name) == 2 && name[0] == 'R' && name[1] >= '0' && name[1] <= '7':
		state.Registers[name[1]-'0'] = value
	case name == "PC":
		state.Program = value
	case name == "SP":
		state.Stack = value
	case name == "FL":
		state.Flags = alu.Flags(value) & (alu.FLAG_ZERO | alu.FLAG_CARRY |
			alu.FLAG_NEGATIVE | alu.FLAG_OVERFLOW)
	default:
		log.Println("Invalid register")
		return
	}

	fmt.Printf("\033[1m%s:\033[0m 0x%04x\n", name, value)
}

// Parses the optional "[0x####|label|#] [#]" arguments shared by the
// source, disassemble, and memory commands. A lone decimal is a count.
func addrCount(
	dbg *debugger.Debugger, mc *machine.Machine, args []string, count int,
) (uint16, int, bool) {
	addr := mc.State.Program

	if len(args) > 0 {
		if strings.HasPrefix(args[0], "0x") || strings.HasPrefix(args[0], "0X") {
			value, err := encoding.DecodeAddr(args[0])

			if err != nil {
				log.Println(err)
				return 0, 0, false
			}

			addr = value
		} else if value, err := strconv.Atoi(args[0]); err == nil {
			count = value
		} else if value, ok := lookupAddr(dbg, args[0]); ok {
			addr = value
		} else {
			log.Printf("Unable to find '%s'", args[0])
			return 0, 0, false
		}
	}

	if len(args) > 1 {
		value, err := strconv.Atoi(args[1])

		if err != nil {
			log.Println(err)
			return 0, 0, false
		}

		count = value
	}

	return addr, count, true
}

func debugSource(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	if len(args) > 2 {
		log.Println("source [0x####|label] [#]")
		return
	}

	if addr, count, ok := addrCount(dbg, mc, args, 3); ok {
		dbg.PrintSource(addr, count)
	}
}

func debugDisassemble(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	if len(args) > 2 {
		log.Println("disassemble [0x####|label] [#]")
		return
	}

	if addr, count, ok := addrCount(dbg, mc, args, 8); ok {
		dbg.PrintInstructions(mc.Memory, addr, count)
	}
}

func debugMemory(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	if len(args) > 2 {
		log.Println("memory [0x####|label|#] [#]")
		return
	}

	if addr, count, ok := addrCount(dbg, mc, args, 16); ok {
		dbg.PrintMem(mc.Memory, addr, count)
	}
}

func debugLabels(dbg *debugger.Debugger, args []string) {
	if len(args) > 0 {
		log.Println("labels")
		return
	}

	if dbg.SymTable == nil {
		fmt.Println("No symbol table loaded")
		return
	}

	keys := make([]uint16, 0, len(dbg.SymTable.Labels))
	for addr := range dbg.SymTable.Labels {
		keys = append(keys, addr)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, addr := range keys {
		fmt.Printf(
			"\033[1m[0x%04x]\033[0m %s\n", addr, dbg.SymTable.Labels[addr],
		)
	}
}

func debugJump(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	if len(args) != 1 {
		log.Println("jump [0x####|label]")
		return
	}

	addr, ok := lookupAddr(dbg, args[0])

	if !ok {
		fmt.Printf("Unable to find '%s'\n", args[0])
		return
	}

	mc.State.Program = addr
	fmt.Printf("\033[1mPC:\033[0m 0x%04x\n", addr)
}

// Writes a word without going through the console ports.
func debugSet(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	if len(args) != 2 {
		log.Println("set [0x####] [0x####]")
		return
	}

	addr, err := encoding.DecodeAddr(args[0])

	if err != nil {
		log.Println(err)
		return
	}

	value, err := encoding.DecodeAddr(args[1])

	if err != nil {
		log.Println(err)
		return
	}

	mc.Memory.Data[addr] = byte(value)
	mc.Memory.Data[addr+1] = byte(value >> 8)
	dbg.PrintMem(mc.Memory, addr, 2)
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) {
	exitRawTerm()
	defer enterRawTerm()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\033[1;30m(dbg)\033[0m ")

		if !scanner.Scan() {
			fmt.Println()
			mc.Halt()
			return
		}

		args := strings.Fields(scanner.Text())

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = args
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, mc, args)

		case "s", "src", "source":
			debugSource(dbg, mc, args)

		case "d", "dis", "disassemble":
			debugDisassemble(dbg, mc, args)

		case "l", "label", "labels":
			debugLabels(dbg, args)

		case "j", "jmp", "jump":
			debugJump(dbg, mc, args)

		case "m", "mem", "memory":
			debugMemory(dbg, mc, args)

		case "set":
			debugSet(dbg, mc, args)

		case "c", "continue":
			dbg.Break = false
			return

		case "n", "next":
			dbg.Break = true
			return

		case "q", "quit", "exit":
			mc.Halt()
			return

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			if err := reset(mc); err != nil {
				log.Println(err)
			} else {
				fmt.Println("Machine reset")
			}

		default:
			fmt.Printf("error: '%s' is not a valid command\n", cmd)
		}
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break {
		fmt.Println()
		fmt.Println("Program stopped")
		dbg.PrintSource(mc.State.Program, 8)
	} else {
		dbg.PrintInstructions(mc.Memory, mc.State.Program, 1)
	}

	debugREPL(dbg, mc)
}

func handleRead(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Printf("Program stopped: read [0x%04x]\n", addr)
	dbg.PrintMem(mc.Memory, addr, 2)
	debugREPL(dbg, mc)
}

func handleWrite(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Printf("Program stopped: write [0x%04x]\n", addr)
	dbg.PrintMem(mc.Memory, addr, 2)
	debugREPL(dbg, mc)
}
