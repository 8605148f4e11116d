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

package machine

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/lassandro/gocpu16/pkg/alu"
	"github.com/lassandro/gocpu16/pkg/isa"
	"github.com/lassandro/gocpu16/pkg/translate"
)

var f = translate.From

type DeviceHandler struct {
	Keyboard *bufio.Reader
	Display  *bufio.Writer
}

type Memory struct {
	Data    [MEMORY_SIZE]byte
	Devices *DeviceHandler
}

type MachineState struct {
	Registers [isa.NUM_REGISTERS]uint16
	Program   uint16
	Stack     uint16
	Flags     alu.Flags
	Halted    bool
	Count     uint64
}

// MachineDebugger observes execution. Step runs before each instruction is
// fetched; Read and Write run after every data access an instruction makes.
type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	Memory   *Memory
	State    MachineState
	Debugger MachineDebugger
}

type IllegalOpcodeError struct {
	Addr uint16
	Word uint16
}

func (err *IllegalOpcodeError) Error() string {
	return f(
		"Illegal opcode %s at %s (word %s)",
		fmt.Sprintf("0x%02x", isa.Decode(err.Word).Opcode),
		fmt.Sprintf("0x%04x", err.Addr),
		fmt.Sprintf("0x%04x", err.Word),
	)
}

type OversizedProgramError struct {
	Base uint16
	Size int
}

func (err *OversizedProgramError) Error() string {
	return f(
		"Program of %s bytes at %s exceeds memory size",
		strconv.Itoa(err.Size),
		fmt.Sprintf("0x%04x", err.Base),
	)
}
