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
	"io"
	"os"
)

func NewMemory() *Memory {
	return &Memory{}
}

func (mem *Memory) Clear() {
	for i := range mem.Data {
		mem.Data[i] = 0x00
	}
}

func (mem *Memory) ReadU8(addr uint16) byte {
	if addr == IO_CONSOLE_IN &&
		mem.Devices != nil && mem.Devices.Keyboard != nil {
		key, err := mem.Devices.Keyboard.ReadByte()

		if err == io.EOF {
			return 0
		} else if err != nil {
			panic(err)
		}

		return key
	}

	return mem.Data[addr]
}

// WriteU8 stores a byte. Bytes written to the console output port go to the
// display and are not kept: a later read of that address returns whatever
// was stored there before.
func (mem *Memory) WriteU8(addr uint16, value byte) {
	if addr == IO_CONSOLE_OUT {
		mem.emit(value)
		return
	}

	mem.Data[addr] = value
}

func (mem *Memory) emit(value byte) {
	var display *bufio.Writer

	if mem.Devices != nil && mem.Devices.Display != nil {
		display = mem.Devices.Display
	}

	if display == nil {
		if _, err := os.Stdout.Write([]byte{value}); err != nil {
			panic(err)
		}

		return
	}

	if err := display.WriteByte(value); err != nil {
		panic(err)
	}

	if err := display.Flush(); err != nil {
		panic(err)
	}
}

// ReadU16 reads a little-endian word. addr+1 wraps around to 0x0000.
func (mem *Memory) ReadU16(addr uint16) uint16 {
	low := mem.ReadU8(addr)
	high := mem.ReadU8(addr + 1)

	return uint16(high)<<8 | uint16(low)
}

func (mem *Memory) WriteU16(addr uint16, value uint16) {
	mem.WriteU8(addr, byte(value&0xFF))
	mem.WriteU8(addr+1, byte(value>>8))
}

// Load copies a program image into memory starting at base.
func (mem *Memory) Load(program []byte, base uint16) error {
	if int(base)+len(program) > MEMORY_SIZE {
		return &OversizedProgramError{base, len(program)}
	}

	copy(mem.Data[base:], program)

	return nil
}

// LoadFrom reads a whole image from reader and loads it at base.
func (mem *Memory) LoadFrom(reader io.Reader, base uint16) (int, error) {
	limit := int64(MEMORY_SIZE-int(base)) + 1
	program, err := io.ReadAll(io.LimitReader(reader, limit))

	if err != nil {
		return 0, err
	}

	if err := mem.Load(program, base); err != nil {
		return 0, err
	}

	return len(program), nil
}
