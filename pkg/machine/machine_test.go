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

package machine_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/lassandro/gocpu16/pkg/alu"
	"github.com/lassandro/gocpu16/pkg/machine"
)

type testMachineState struct {
	Registers [8]uint16
	Program   uint16
	Stack     uint16
	Flags     alu.Flags
	Halted    bool
	Memory    map[uint16]uint16
}

type testCase struct {
	Name     string
	Steps    uint
	Keyboard string
	Display  string
	Input    testMachineState
	Output   testMachineState
}

func putWord(data *[machine.MEMORY_SIZE]byte, addr uint16, value uint16) {
	data[addr] = byte(value & 0xFF)
	data[addr+1] = byte(value >> 8)
}

func testMachineSuccess(t *testing.T, test *testCase) {
	if test.Input.Memory == nil {
		panic("No memory map provided")
	}

	mem := machine.NewMemory()
	mc := machine.NewMachine(mem)

	var devices machine.DeviceHandler
	var displayBuf bytes.Buffer

	if len(test.Keyboard) > 0 {
		devices.Keyboard = bufio.NewReader(
			bytes.NewReader([]byte(test.Keyboard)),
		)
	}

	if len(test.Display) > 0 {
		devices.Display = bufio.NewWriter(&displayBuf)
	}

	if devices.Keyboard != nil || devices.Display != nil {
		mem.Devices = &devices
	}

	mc.State.Registers = test.Input.Registers
	mc.State.Program = test.Input.Program
	mc.State.Flags = test.Input.Flags

	if test.Input.Stack != 0 {
		mc.State.Stack = test.Input.Stack
	}

	if test.Output.Stack == 0 {
		test.Output.Stack = mc.State.Stack
	}

	var expected [machine.MEMORY_SIZE]byte

	for addr, value := range test.Input.Memory {
		putWord(&mem.Data, addr, value)
		putWord(&expected, addr, value)
	}

	for addr, value := range test.Output.Memory {
		putWord(&expected, addr, value)
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	for i := uint(0); i < test.Steps; i++ {
		if err := mc.Step(); err != nil {
			t.Fatalf("Unexpected error at step %d: %v", i, err)
		}
	}

	for i := 0; i < 8; i++ {
		want := test.Output.Registers[i]
		have := mc.State.Registers[i]
		if have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#04x (test.Output.Registers[%d])\nhave:%#04x",
				want,
				i,
				have,
			)
		}
	}

	if mc.State.Program != test.Output.Program {
		t.Errorf(
			"Program counter mismatch"+
				"\nwant:%#04x (test.Output.Program)\nhave:%#04x",
			test.Output.Program,
			mc.State.Program,
		)
	}

	if mc.State.Stack != test.Output.Stack {
		t.Errorf(
			"Stack pointer mismatch"+
				"\nwant:%#04x (test.Output.Stack)\nhave:%#04x",
			test.Output.Stack,
			mc.State.Stack,
		)
	}

	if mc.State.Flags != test.Output.Flags {
		t.Errorf(
			"Flags mismatch"+
				"\nwant:%s (test.Output.Flags)\nhave:%s",
			test.Output.Flags,
			mc.State.Flags,
		)
	}

	if mc.State.Halted != test.Output.Halted {
		t.Errorf(
			"Halted mismatch"+
				"\nwant:%t (test.Output.Halted)\nhave:%t",
			test.Output.Halted,
			mc.State.Halted,
		)
	}

	for i, value := range mem.Data {
		if value != expected[i] {
			t.Fatalf(
				"Memory value mismatch"+
					"\nwant:%#02x (memory[%#04x])\nhave:%#02x",
				expected[i],
				i,
				value,
			)
		}
	}

	if len(test.Display) > 0 {
		if have := displayBuf.String(); have != test.Display {
			t.Errorf(
				"Display output mismatch"+
					"\nwant:%s (test.Display)\nhave:%s",
				test.Display,
				have,
			)
		}
	}
}

func testSuccess(t *testing.T, tests []testCase) {
	t.Run("Success", func(t *testing.T) {
		for _, test := range tests {
			t.Run(test.Name, func(t *testing.T) {
				testMachineSuccess(t, &test)
			})
		}
	})
}

// MOV  |000000      |rd   |rs   |       | Move (NOP when rd == rs)
// MOVI |000001      |rd   |imm7         | Move immediate
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestMove(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "MOV",
			Input: testMachineState{
				Registers: [8]uint16{0: 0xCAFE, 1: 0xBEEF},
				Memory: map[uint16]uint16{
					0x0000: 0b000000_000_001_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0xBEEF, 1: 0xBEEF},
			},
		},
		{
			Name: "NOP",
			Input: testMachineState{
				Registers: [8]uint16{3: 0x1234},
				Flags:     alu.FLAG_CARRY,
				Memory: map[uint16]uint16{
					0x0000: 0b000000_011_011_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{3: 0x1234},
				Flags:     alu.FLAG_CARRY,
			},
		},
		{
			Name: "MOVI Positive",
			Input: testMachineState{
				Registers: [8]uint16{0: 0xCAFE},
				Memory: map[uint16]uint16{
					0x0000: 0b000001_000_0111111,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 63},
			},
		},
		{
			Name: "MOVI Negative",
			Input: testMachineState{
				Program: 0x0100,
				Flags:   alu.FLAG_ZERO,
				Memory: map[uint16]uint16{
					0x0100: 0b000001_101_1000000,
				},
			},
			Output: testMachineState{
				Program:   0x0102,
				Registers: [8]uint16{5: 0xFFC0},
				Flags:     alu.FLAG_ZERO,
			},
		},
	})
}

// LOAD |000010      |rd   |rs   |       | Load indirect
// LOAD |000011      |rd   |     |       | Load direct
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestLoad(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "LOAD Indirect",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x8000},
				Memory: map[uint16]uint16{
					0x0000: 0b000010_000_001_0000,
					0x8000: 0xCAFE,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0xCAFE, 1: 0x8000},
			},
		},
		{
			Name: "LOAD Direct",
			Input: testMachineState{
				Memory: map[uint16]uint16{
					0x0000: 0b000011_010_000_0000,
					0x0002: 0x8000,
					0x8000: 0x1234,
				},
			},
			Output: testMachineState{
				Program:   0x0004,
				Registers: [8]uint16{2: 0x1234},
			},
		},
		{
			Name: "LOAD Wraps",
			Input: testMachineState{
				Registers: [8]uint16{1: 0xFFFF},
				Memory: map[uint16]uint16{
					0x0000: 0b000010_000_001_0000,
					0xFFFE: 0xAB00,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x10AB, 1: 0xFFFF},
			},
		},
	})
}

// STORE|000100      |rd   |rs   |       | Store indirect, [rd] <- rs
// STORE|000101      |     |rs   |       | Store direct
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestStore(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "STORE Indirect",
			Input: testMachineState{
				Registers: [8]uint16{0: 0x8000, 1: 0xABCD},
				Memory: map[uint16]uint16{
					0x0000: 0b000100_000_001_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x8000, 1: 0xABCD},
				Memory: map[uint16]uint16{
					0x8000: 0xABCD,
				},
			},
		},
		{
			Name: "STORE Direct",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x00FF},
				Memory: map[uint16]uint16{
					0x0000: 0b000101_000_001_0000,
					0x0002: 0x8002,
				},
			},
			Output: testMachineState{
				Program:   0x0004,
				Registers: [8]uint16{1: 0x00FF},
				Memory: map[uint16]uint16{
					0x8002: 0x00FF,
				},
			},
		},
		{
			Name:    "STORE Console",
			Display: "A",
			Input: testMachineState{
				Registers: [8]uint16{1: 'A'},
				Memory: map[uint16]uint16{
					0x0000: 0b000101_000_001_0000,
					0x0002: machine.IO_CONSOLE_OUT,
					0xF000: 0x007A,
				},
			},
			Output: testMachineState{
				Program:   0x0004,
				Registers: [8]uint16{1: 'A'},
				Memory: map[uint16]uint16{
					0xF000: 0x007A,
				},
			},
		},
	})
}

// ADD  |001000      |rd   |rs   |rt     | Register addition
// ADDI |001001      |rd   |rs   |imm4   | Immediate addition
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestAdd(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "ADD Overflow",
			Input: testMachineState{
				Registers: [8]uint16{0: 0xCAFE, 1: 0x7FFF, 2: 0x0001},
				Memory: map[uint16]uint16{
					0x0000: 0b001000_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x8000, 1: 0x7FFF, 2: 0x0001},
				Flags:     alu.FLAG_NEGATIVE | alu.FLAG_OVERFLOW,
			},
		},
		{
			Name: "ADD Carry Zero",
			Input: testMachineState{
				Registers: [8]uint16{0: 0xCAFE, 1: 0xFFFF, 2: 0x0001},
				Memory: map[uint16]uint16{
					0x0000: 0b001000_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0000, 1: 0xFFFF, 2: 0x0001},
				Flags:     alu.FLAG_ZERO | alu.FLAG_CARRY,
			},
		},
		{
			Name: "ADD Clears Flags",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0001, 2: 0x0001},
				Flags:     alu.FLAG_CARRY | alu.FLAG_OVERFLOW,
				Memory: map[uint16]uint16{
					0x0000: 0b001000_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0002, 1: 0x0001, 2: 0x0001},
			},
		},
		{
			Name: "ADDI Negative imm4",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0005},
				Memory: map[uint16]uint16{
					0x0000: 0b001001_000_001_1111,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0004, 1: 0x0005},
				Flags:     alu.FLAG_CARRY,
			},
		},
		{
			Name: "ADDI Positive imm4",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0005},
				Memory: map[uint16]uint16{
					0x0000: 0b001001_001_001_0111,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{1: 0x000C},
			},
		},
	})
}

// SUB  |001010      |rd   |rs   |rt     | Register subtraction
// SUBI |001011      |rd   |rs   |imm4   | Immediate subtraction
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestSub(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "SUB Borrow",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0000, 2: 0x0001},
				Memory: map[uint16]uint16{
					0x0000: 0b001010_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0xFFFF, 1: 0x0000, 2: 0x0001},
				Flags:     alu.FLAG_CARRY | alu.FLAG_NEGATIVE,
			},
		},
		{
			Name: "SUBI Zero",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0003},
				Memory: map[uint16]uint16{
					0x0000: 0b001011_000_001_0011,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0000, 1: 0x0003},
				Flags:     alu.FLAG_ZERO,
			},
		},
	})
}

// MUL  |001100      |rd   |rs   |rt     | Multiply (low word)
// DIV  |001101      |rd   |rs   |rt     | Unsigned divide
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestMulDiv(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "MUL",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0010, 2: 0x0011},
				Memory: map[uint16]uint16{
					0x0000: 0b001100_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0110, 1: 0x0010, 2: 0x0011},
			},
		},
		{
			Name: "MUL Truncated",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0100, 2: 0x0100},
				Memory: map[uint16]uint16{
					0x0000: 0b001100_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0000, 1: 0x0100, 2: 0x0100},
				Flags:     alu.FLAG_ZERO | alu.FLAG_CARRY,
			},
		},
		{
			Name: "DIV",
			Input: testMachineState{
				Registers: [8]uint16{1: 100, 2: 7},
				Memory: map[uint16]uint16{
					0x0000: 0b001101_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 14, 1: 100, 2: 7},
			},
		},
		{
			Name: "DIV By Zero",
			Input: testMachineState{
				Registers: [8]uint16{1: 1234},
				Memory: map[uint16]uint16{
					0x0000: 0b001101_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0xFFFF, 1: 1234},
				Flags:     alu.FLAG_OVERFLOW,
			},
		},
	})
}

// INC  |001110      |rd   |     |       | Increment
// DEC  |001111      |rd   |     |       | Decrement
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestIncDec(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "INC",
			Input: testMachineState{
				Registers: [8]uint16{3: 0x0041},
				Memory: map[uint16]uint16{
					0x0000: 0b001110_011_000_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{3: 0x0042},
			},
		},
		{
			Name: "INC Wraps",
			Input: testMachineState{
				Registers: [8]uint16{3: 0xFFFF},
				Memory: map[uint16]uint16{
					0x0000: 0b001110_011_000_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{3: 0x0000},
				Flags:     alu.FLAG_ZERO | alu.FLAG_CARRY,
			},
		},
		{
			Name: "DEC Wraps",
			Input: testMachineState{
				Memory: map[uint16]uint16{
					0x0000: 0b001111_011_000_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{3: 0xFFFF},
				Flags:     alu.FLAG_CARRY | alu.FLAG_NEGATIVE,
			},
		},
	})
}

// AND  |010000      |rd   |rs   |rt     | Register bitwise
// ANDI |010001      |rd   |rs   |imm4   | Immediate bitwise
// OR   |010010      |rd   |rs   |rt     | Register bitwise
// ORI  |010011      |rd   |rs   |imm4   | Immediate bitwise
// XOR  |010100      |rd   |rs   |rt     | Exclusive or
// NOT  |010101      |rd   |rs   |       | Bitwise complement
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestLogic(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "AND",
			Input: testMachineState{
				Registers: [8]uint16{1: 0xF0F0, 2: 0x8F00},
				Memory: map[uint16]uint16{
					0x0000: 0b010000_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x8000, 1: 0xF0F0, 2: 0x8F00},
				Flags:     alu.FLAG_NEGATIVE,
			},
		},
		{
			Name: "ANDI Not Sign Extended",
			Input: testMachineState{
				Registers: [8]uint16{1: 0xFFFF},
				Memory: map[uint16]uint16{
					0x0000: 0b010001_000_001_1111,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x000F, 1: 0xFFFF},
			},
		},
		{
			Name: "OR",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0F00, 2: 0x00F0},
				Memory: map[uint16]uint16{
					0x0000: 0b010010_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0FF0, 1: 0x0F00, 2: 0x00F0},
			},
		},
		{
			Name: "ORI",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0100},
				Memory: map[uint16]uint16{
					0x0000: 0b010011_001_001_1000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{1: 0x0108},
			},
		},
		{
			Name: "XOR Zero",
			Input: testMachineState{
				Registers: [8]uint16{0: 0xCAFE, 1: 0x5555, 2: 0x5555},
				Memory: map[uint16]uint16{
					0x0000: 0b010100_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0000, 1: 0x5555, 2: 0x5555},
				Flags:     alu.FLAG_ZERO,
			},
		},
		{
			Name: "NOT",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x00FF},
				Memory: map[uint16]uint16{
					0x0000: 0b010101_000_001_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0xFF00, 1: 0x00FF},
				Flags:     alu.FLAG_NEGATIVE,
			},
		},
	})
}

// SHL  |011000      |rd   |rs   |rt     | Shift left by register
// SHLI |011001      |rd   |rs   |imm4   | Shift left by immediate
// SHR  |011010      |rd   |rs   |rt     | Shift right by register
// SHRI |011011      |rd   |rs   |imm4   | Shift right by immediate
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestShift(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "SHLI Carry",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x8001},
				Memory: map[uint16]uint16{
					0x0000: 0b011001_000_001_0001,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0002, 1: 0x8001},
				Flags:     alu.FLAG_CARRY,
			},
		},
		{
			Name: "SHL By 16",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0001, 2: 16},
				Memory: map[uint16]uint16{
					0x0000: 0b011000_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0000, 1: 0x0001, 2: 16},
				Flags:     alu.FLAG_ZERO | alu.FLAG_CARRY,
			},
		},
		{
			Name: "SHRI Carry",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x0003},
				Memory: map[uint16]uint16{
					0x0000: 0b011011_000_001_0001,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0001, 1: 0x0003},
				Flags:     alu.FLAG_CARRY,
			},
		},
		{
			Name: "SHR",
			Input: testMachineState{
				Registers: [8]uint16{1: 0x8000, 2: 15},
				Memory: map[uint16]uint16{
					0x0000: 0b011010_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0x0001, 1: 0x8000, 2: 15},
			},
		},
	})
}

// CMP  |011100      |     |rs   |rt     | Compare registers
// CMPI |011101      |     |rs   |imm4   | Compare immediate
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestCompare(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "CMP Equal",
			Input: testMachineState{
				Registers: [8]uint16{0: 0xCAFE, 1: 5, 2: 5},
				Memory: map[uint16]uint16{
					0x0000: 0b011100_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{0: 0xCAFE, 1: 5, 2: 5},
				Flags:     alu.FLAG_ZERO,
			},
		},
		{
			Name: "CMP Less",
			Input: testMachineState{
				Registers: [8]uint16{1: 4, 2: 5},
				Memory: map[uint16]uint16{
					0x0000: 0b011100_000_001_0010,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{1: 4, 2: 5},
				Flags:     alu.FLAG_CARRY | alu.FLAG_NEGATIVE,
			},
		},
		{
			Name: "CMPI Negative imm4",
			Input: testMachineState{
				Registers: [8]uint16{1: 2},
				Memory: map[uint16]uint16{
					0x0000: 0b011101_000_001_1111,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Registers: [8]uint16{1: 2},
				Flags:     alu.FLAG_CARRY,
			},
		},
	})
}

// JMP  |100000      |                   | Jump
// Jcc  |100001-100101|                  | Conditional jump
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestJump(t *testing.T) {
	branch := func(name string, op uint16, flags alu.Flags, taken bool) testCase {
		output := uint16(0x0104)
		if taken {
			output = 0x0400
		}

		return testCase{
			Name: name,
			Input: testMachineState{
				Program: 0x0100,
				Flags:   flags,
				Memory: map[uint16]uint16{
					0x0100: op << 10,
					0x0102: 0x0400,
				},
			},
			Output: testMachineState{
				Program: output,
				Flags:   flags,
			},
		}
	}

	testSuccess(t, []testCase{
		branch("JMP", 0b100000, 0, true),
		branch("JZ Taken", 0b100001, alu.FLAG_ZERO, true),
		branch("JZ Not Taken", 0b100001, alu.FLAG_CARRY, false),
		branch("JNZ Taken", 0b100010, 0, true),
		branch("JNZ Not Taken", 0b100010, alu.FLAG_ZERO, false),
		branch("JC Taken", 0b100011, alu.FLAG_CARRY, true),
		branch("JC Not Taken", 0b100011, 0, false),
		branch("JNC Taken", 0b100100, alu.FLAG_NEGATIVE, true),
		branch("JNC Not Taken", 0b100100, alu.FLAG_CARRY, false),
		branch("JN Taken", 0b100101, alu.FLAG_NEGATIVE, true),
		branch("JN Not Taken", 0b100101, alu.FLAG_OVERFLOW, false),
	})
}

// CALL |100110      |                   | Call subroutine
// RET  |100111      |                   | Return from subroutine
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestCall(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "CALL",
			Input: testMachineState{
				Program: 0x0100,
				Memory: map[uint16]uint16{
					0x0100: 0b100110_000_000_0000,
					0x0102: 0x0200,
				},
			},
			Output: testMachineState{
				Program: 0x0200,
				Stack:   0xFFFD,
				Memory: map[uint16]uint16{
					0xFFFD: 0x0104,
				},
			},
		},
		{
			Name: "RET",
			Input: testMachineState{
				Program: 0x0200,
				Stack:   0xFFFD,
				Memory: map[uint16]uint16{
					0x0200: 0b100111_000_000_0000,
					0xFFFD: 0x0104,
				},
			},
			Output: testMachineState{
				Program: 0x0104,
				Stack:   0xFFFF,
			},
		},
		{
			Name:  "CALL RET",
			Steps: 2,
			Input: testMachineState{
				Program: 0x0100,
				Memory: map[uint16]uint16{
					0x0100: 0b100110_000_000_0000,
					0x0102: 0x0200,
					0x0200: 0b100111_000_000_0000,
				},
			},
			Output: testMachineState{
				Program: 0x0104,
				Stack:   0xFFFF,
				Memory: map[uint16]uint16{
					0xFFFD: 0x0104,
				},
			},
		},
	})
}

// PUSH |101000      |rd   |             | Push register
// POP  |101001      |rd   |             | Pop register
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestStack(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name: "PUSH",
			Input: testMachineState{
				Registers: [8]uint16{2: 0x5555},
				Memory: map[uint16]uint16{
					0x0000: 0b101000_010_000_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0002,
				Stack:     0xFFFD,
				Registers: [8]uint16{2: 0x5555},
				Memory: map[uint16]uint16{
					0xFFFD: 0x5555,
				},
			},
		},
		{
			Name:  "PUSH POP",
			Steps: 2,
			Input: testMachineState{
				Registers: [8]uint16{2: 0x5555},
				Memory: map[uint16]uint16{
					0x0000: 0b101000_010_000_0000,
					0x0002: 0b101001_011_000_0000,
				},
			},
			Output: testMachineState{
				Program:   0x0004,
				Stack:     0xFFFF,
				Registers: [8]uint16{2: 0x5555, 3: 0x5555},
				Memory: map[uint16]uint16{
					0xFFFD: 0x5555,
				},
			},
		},
		{
			Name: "PUSH Wraps",
			Input: testMachineState{
				Stack:     0x0001,
				Registers: [8]uint16{0: 0xBEEF},
				Memory: map[uint16]uint16{
					0x0010: 0b101000_000_000_0000,
				},
				Program: 0x0010,
			},
			Output: testMachineState{
				Program:   0x0012,
				Stack:     0xFFFF,
				Registers: [8]uint16{0: 0xBEEF},
				Memory: map[uint16]uint16{
					0xFFFF: 0xBEEF,
				},
			},
		},
	})
}

// HALT |111111      |                   | Stop the machine
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
func TestHalt(t *testing.T) {
	testSuccess(t, []testCase{
		{
			Name:  "HALT",
			Steps: 3,
			Input: testMachineState{
				Memory: map[uint16]uint16{
					0x0000: 0b111111_000_000_0000,
					0x0002: 0b000001_000_0000001,
				},
			},
			Output: testMachineState{
				Program: 0x0002,
				Halted:  true,
			},
		},
	})
}
