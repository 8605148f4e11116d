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

package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lassandro/gocpu16/pkg/isa"
	"github.com/lassandro/gocpu16/pkg/machine"
)

// Interrupt asks for a break before the next instruction. Unlike setting
// Break it is safe to call from another goroutine, such as a signal handler.
func (dbg *Debugger) Interrupt() {
	dbg.interrupt.Store(true)
}

func (dbg *Debugger) Step(mc *machine.Machine) {
	dbg.Finish(mc)

	if dbg.interrupt.Swap(false) {
		dbg.Break = true
	}

	if dbg.Break {
		dbg.handleBreak(mc)
	} else {
		for _, breakpoint := range dbg.Breakpoints {
			if mc.State.Program == breakpoint.Addr {
				dbg.handleBreak(mc)
				break
			}
		}
	}

	if dbg.Trace == nil || mc.State.Halted {
		return
	}

	fmt.Fprintf(dbg.Trace, "\n[%d] ", mc.State.Count)
	dbg.disassemble(dbg.Trace, mc.Memory, mc.State.Program)
	fmt.Fprintln(dbg.Trace)

	dbg.pending = true
}

// Finish writes the register trace of the last instruction stepped, if any.
// Step calls it on the following instruction; callers invoke it once more
// after the machine stops.
func (dbg *Debugger) Finish(mc *machine.Machine) {
	if !dbg.pending || dbg.Trace == nil {
		return
	}

	dbg.pending = false
	writeRegisters(dbg.Trace, &mc.State)
}

func (dbg *Debugger) handleBreak(mc *machine.Machine) {
	if dbg.HandleBreak != nil {
		dbg.HandleBreak(dbg, mc)
	}
}

func (dbg *Debugger) Read(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			if dbg.HandleRead != nil {
				dbg.HandleRead(addr, dbg, mc)
			}
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint16, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			if dbg.HandleWrite != nil {
				dbg.HandleWrite(addr, dbg, mc)
			}
			break
		}
	}
}

func (dbg *Debugger) output() io.Writer {
	if dbg.Output == nil {
		return os.Stdout
	}

	return dbg.Output
}

func (dbg *Debugger) labels() map[uint16]string {
	if dbg.SymTable == nil {
		return nil
	}

	return dbg.SymTable.Labels
}

// Writes "0xADDR: WORD  MNEMONIC operands" for the instruction at addr.
// Memory is read directly so watchpoints and console input are untouched.
func (dbg *Debugger) disassemble(w io.Writer, mem *machine.Memory, addr uint16) {
	word := uint16(mem.Data[addr]) | uint16(mem.Data[addr+1])<<8

	var ext uint16
	if isa.Extended(isa.Decode(word).Opcode) {
		ext = uint16(mem.Data[addr+2]) | uint16(mem.Data[addr+3])<<8
	}

	fmt.Fprintf(
		w, "0x%04x: %04x  %s", addr, word, isa.Disassemble(word, ext, dbg.labels()),
	)
}

func writeRegisters(w io.Writer, state *machine.MachineState) {
	fmt.Fprint(w, "Registers: ")

	for i, value := range state.Registers {
		fmt.Fprintf(w, "R%d=0x%04x ", i, value)
	}

	fmt.Fprintf(w, "PC=0x%04x SP=0x%04x\n", state.Program, state.Stack)
	fmt.Fprintf(w, "Flags: %s\n", state.Flags)
}

func (dbg *Debugger) PrintRegisters(mc *machine.Machine) {
	writeRegisters(dbg.output(), &mc.State)
}

// Prints count instructions starting at addr, one per line.
func (dbg *Debugger) PrintInstructions(mem *machine.Memory, addr uint16, count int) {
	w := dbg.output()

	for i := 0; i < count; i++ {
		dbg.disassemble(w, mem, addr)
		fmt.Fprintln(w)

		word := uint16(mem.Data[addr]) | uint16(mem.Data[addr+1])<<8
		addr += isa.Size(isa.Decode(word).Opcode)
	}
}

// Prints count bytes starting at addr as rows of sixteen hex bytes followed
// by their printable ASCII rendering.
func (dbg *Debugger) PrintMem(mem *machine.Memory, addr uint16, count int) {
	w := dbg.output()

	if count <= 0 {
		return
	}

	end := int(addr) + count - 1
	if end >= machine.MEMORY_SIZE {
		end = machine.MEMORY_SIZE - 1
	}

	fmt.Fprintf(w, "\nMemory Dump [0x%04x - 0x%04x]:\n", addr, end)

	for row := int(addr); row <= end; row += 16 {
		fmt.Fprintf(w, "0x%04x: ", row)

		last := row + 15
		if last > end {
			last = end
		}

		for i := row; i <= last; i++ {
			fmt.Fprintf(w, "%02x ", mem.Data[i])
		}

		fmt.Fprint(w, " | ")

		for i := row; i <= last; i++ {
			if b := mem.Data[i]; b >= 32 && b < 127 {
				fmt.Fprintf(w, "%c", b)
			} else {
				fmt.Fprint(w, ".")
			}
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
}

func (dbg *Debugger) PrintSource(addr uint16, count int) {
	w := dbg.output()

	if dbg.Source == nil {
		fmt.Fprintln(w, "No source file loaded")
		return
	}

	if dbg.SymTable == nil {
		fmt.Fprintln(w, "No symbol table loaded")
		return
	}

	offset, exists := dbg.SymTable.Symbols[addr]
	if !exists {
		fmt.Fprintf(w, "No instruction found at 0x%04x\n", addr)
		return
	}

	if _, err := dbg.Source.Seek(offset, io.SeekStart); err != nil {
		fmt.Fprintln(w, err)
		return
	}

	lines := make(map[int64]uint16, len(dbg.SymTable.Symbols))
	for lineaddr, linebyte := range dbg.SymTable.Symbols {
		lines[linebyte] = lineaddr
	}

	reader := bufio.NewReader(dbg.Source)

	for i := 0; i < count; i++ {
		raw, err := reader.ReadString('\n')

		if len(raw) == 0 {
			if err != nil && err != io.EOF {
				fmt.Fprintln(w, err)
			}
			break
		}

		if lineaddr, ok := lines[offset]; ok {
			fmt.Fprintf(w, "\033[1m[0x%04x]\033[0m ", lineaddr)
		} else {
			fmt.Fprint(w, "\033[1;30m~~~~~~~~\033[0m ")
		}

		fmt.Fprintln(w, strings.TrimRight(raw, "\r\n"))

		offset += int64(len(raw))
	}
}
