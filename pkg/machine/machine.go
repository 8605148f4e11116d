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
	"io"

	"github.com/lassandro/gocpu16/pkg/alu"
	"github.com/lassandro/gocpu16/pkg/isa"
)

func NewMachine(mem *Memory) *Machine {
	if mem == nil {
		mem = NewMemory()
	}

	mc := &Machine{Memory: mem}
	mc.Reset()

	return mc
}

// Reset clears the register file and counters. Memory is left untouched so a
// loaded image survives.
func (mc *Machine) Reset() {
	mc.State = MachineState{
		Program: MEMSPACE_PROGRAM,
		Stack:   STACK_TOP,
	}
}

// LoadBin clears memory, loads an image at base and resets the processor.
func (mc *Machine) LoadBin(reader io.Reader, base uint16) (int, error) {
	mc.Memory.Clear()
	mc.Reset()

	return mc.Memory.LoadFrom(reader, base)
}

func (mc *Machine) Halt() {
	mc.State.Halted = true
}

func (mc *Machine) push(value uint16) {
	mc.State.Stack -= 2
	mc.write(mc.State.Stack, value)
}

func (mc *Machine) pop() uint16 {
	result := mc.read(mc.State.Stack)
	mc.State.Stack += 2
	return result
}

func (mc *Machine) read(addr uint16) uint16 {
	value := mc.Memory.ReadU16(addr)

	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return value
}

func (mc *Machine) write(addr uint16, value uint16) {
	mc.Memory.WriteU16(addr, value)

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

// fetch consumes the extension word of an extended instruction.
func (mc *Machine) fetch() uint16 {
	value := mc.Memory.ReadU16(mc.State.Program)
	mc.State.Program += 2
	return value
}

// branch skips the target word, then takes the jump when cond holds.
func (mc *Machine) branch(cond bool) {
	target := mc.fetch()

	if cond {
		mc.State.Program = target
	}
}

// Run steps until the machine halts.
func (mc *Machine) Run() error {
	for !mc.State.Halted {
		if err := mc.Step(); err != nil {
			return err
		}
	}

	return nil
}

// Step executes a single instruction. A halted machine does nothing.
func (mc *Machine) Step() error {
	if mc.State.Halted {
		return nil
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)

		// The hook may have halted the machine
		if mc.State.Halted {
			return nil
		}
	}

	addr := mc.State.Program
	word := mc.Memory.ReadU16(addr)

	mc.State.Program += 2

	err := mc.execute(addr, word)
	mc.State.Count++

	return err
}

func (mc *Machine) execute(addr uint16, word uint16) error {
	in := isa.Decode(word)
	regs := &mc.State.Registers
	flags := &mc.State.Flags

	rs := regs[in.Rs]
	rt := regs[in.RtReg()]

	switch in.Opcode {
	// MOV  |000000      |rd   |rs   |       | Move (NOP when rd == rs)
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_MOV:
		if in.Move() {
			regs[in.Rd] = regs[in.Rs]
		}

	// MOVI |000001      |rd   |imm7         | Move immediate
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_MOVI:
		regs[in.Rd] = in.SImm7()

	// LOAD |000010      |rd   |rs   |       | Load indirect
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_LOAD_IND:
		regs[in.Rd] = mc.read(regs[in.Rs])

	// LOAD |000011      |rd   |     |       | Load direct
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_LOAD_DIR:
		regs[in.Rd] = mc.read(mc.fetch())

	// STORE|000100      |rd   |rs   |       | Store indirect, [rd] <- rs
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_STORE_IND:
		mc.write(regs[in.Rd], regs[in.Rs])

	// STORE|000101      |     |rs   |       | Store direct
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_STORE_DIR:
		mc.write(mc.fetch(), regs[in.Rs])

	// ADD  |001000      |rd   |rs   |rt     | Register addition
	// ADDI |001001      |rd   |rs   |imm4   | Immediate addition
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_ADD:
		regs[in.Rd], *flags = alu.Add(rs, rt)

	case isa.OP_ADDI:
		regs[in.Rd], *flags = alu.Add(rs, in.SImm4())

	// SUB  |001010      |rd   |rs   |rt     | Register subtraction
	// SUBI |001011      |rd   |rs   |imm4   | Immediate subtraction
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_SUB:
		regs[in.Rd], *flags = alu.Sub(rs, rt)

	case isa.OP_SUBI:
		regs[in.Rd], *flags = alu.Sub(rs, in.SImm4())

	// MUL  |001100      |rd   |rs   |rt     | Multiply (low word)
	// DIV  |001101      |rd   |rs   |rt     | Unsigned divide
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_MUL:
		regs[in.Rd], *flags = alu.Mul(rs, rt)

	case isa.OP_DIV:
		regs[in.Rd], *flags = alu.Div(rs, rt)

	// INC  |001110      |rd   |     |       | Increment
	// DEC  |001111      |rd   |     |       | Decrement
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_INC:
		regs[in.Rd], *flags = alu.Add(regs[in.Rd], 1)

	case isa.OP_DEC:
		regs[in.Rd], *flags = alu.Sub(regs[in.Rd], 1)

	// AND  |010000      |rd   |rs   |rt     | Register bitwise
	// ANDI |010001      |rd   |rs   |imm4   | Immediate bitwise
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_AND:
		regs[in.Rd], *flags = alu.And(rs, rt)

	case isa.OP_ANDI:
		regs[in.Rd], *flags = alu.And(rs, in.Imm4())

	// OR   |010010      |rd   |rs   |rt     | Register bitwise
	// ORI  |010011      |rd   |rs   |imm4   | Immediate bitwise
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_OR:
		regs[in.Rd], *flags = alu.Or(rs, rt)

	case isa.OP_ORI:
		regs[in.Rd], *flags = alu.Or(rs, in.Imm4())

	// XOR  |010100      |rd   |rs   |rt     | Exclusive or
	// NOT  |010101      |rd   |rs   |       | Bitwise complement
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_XOR:
		regs[in.Rd], *flags = alu.Xor(rs, rt)

	case isa.OP_NOT:
		regs[in.Rd], *flags = alu.Not(rs)

	// SHL  |011000      |rd   |rs   |rt     | Shift left by register
	// SHLI |011001      |rd   |rs   |imm4   | Shift left by immediate
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_SHL:
		regs[in.Rd], *flags = alu.Shl(rs, rt)

	case isa.OP_SHLI:
		regs[in.Rd], *flags = alu.Shl(rs, in.Imm4())

	// SHR  |011010      |rd   |rs   |rt     | Shift right by register
	// SHRI |011011      |rd   |rs   |imm4   | Shift right by immediate
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_SHR:
		regs[in.Rd], *flags = alu.Shr(rs, rt)

	case isa.OP_SHRI:
		regs[in.Rd], *flags = alu.Shr(rs, in.Imm4())

	// CMP  |011100      |     |rs   |rt     | Compare registers
	// CMPI |011101      |     |rs   |imm4   | Compare immediate
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_CMP:
		_, *flags = alu.Compare(rs, rt)

	case isa.OP_CMPI:
		_, *flags = alu.Compare(rs, in.SImm4())

	// JMP  |100000      |                   | Jump
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_JMP:
		mc.State.Program = mc.Memory.ReadU16(mc.State.Program)

	// Jcc  |100001-100101|                  | Conditional jump
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_JZ:
		mc.branch(mc.State.Flags.Zero())

	case isa.OP_JNZ:
		mc.branch(!mc.State.Flags.Zero())

	case isa.OP_JC:
		mc.branch(mc.State.Flags.Carry())

	case isa.OP_JNC:
		mc.branch(!mc.State.Flags.Carry())

	case isa.OP_JN:
		mc.branch(mc.State.Flags.Negative())

	// CALL |100110      |                   | Call subroutine
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_CALL:
		target := mc.fetch()

		mc.push(mc.State.Program)
		mc.State.Program = target

	// RET  |100111      |                   | Return from subroutine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_RET:
		mc.State.Program = mc.pop()

	// PUSH |101000      |rd   |             | Push register
	// POP  |101001      |rd   |             | Pop register
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_PUSH:
		mc.push(regs[in.Rd])

	case isa.OP_POP:
		regs[in.Rd] = mc.pop()

	// HALT |111111      |                   | Stop the machine
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.OP_HALT:
		mc.Halt()

	default:
		mc.Halt()
		return &IllegalOpcodeError{addr, word}
	}

	return nil
}
