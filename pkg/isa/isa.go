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

// Package isa is the instruction format shared by the assembler and the
// machine. Opcode values, field packing, sign extension and instruction
// length are defined here and nowhere else.
package isa

import (
	"fmt"
	"strings"

	"github.com/lassandro/gocpu16/pkg/encoding"
)

type Instruction struct {
	Opcode uint16
	Rd     uint16
	Rs     uint16
	Rt     uint16
}

// Imm4 is the rt field read as an unsigned 4-bit immediate.
func (in Instruction) Imm4() uint16 {
	return in.Rt & MASK_IMM4
}

// SImm4 is the rt field sign extended from 4 bits.
func (in Instruction) SImm4() uint16 {
	return encoding.SignExtend(in.Rt, BITS_IMM4)
}

// SImm7 is the low seven bits of the word sign extended, valid for OP_MOVI.
func (in Instruction) SImm7() uint16 {
	return encoding.SignExtend(in.Rs<<4|in.Rt, BITS_IMM7)
}

// RtReg is the rt field narrowed to a register index.
func (in Instruction) RtReg() uint16 {
	return in.Rt & MASK_REG
}

// Move reports whether an opcode 0 instruction has any effect.
func (in Instruction) Move() bool {
	return in.Opcode == OP_MOV && in.Rd != in.Rs
}

func Encode(op, rd, rs, rt uint16) uint16 {
	return (op&MASK_OP)<<SHIFT_OP |
		(rd&MASK_REG)<<SHIFT_RD |
		(rs&MASK_REG)<<SHIFT_RS |
		(rt & MASK_IMM4)
}

func EncodeImm7(op, rd, imm uint16) uint16 {
	return (op&MASK_OP)<<SHIFT_OP |
		(rd&MASK_REG)<<SHIFT_RD |
		(imm & MASK_IMM7)
}

func Decode(word uint16) Instruction {
	return Instruction{
		Opcode: (word >> SHIFT_OP) & MASK_OP,
		Rd:     (word >> SHIFT_RD) & MASK_REG,
		Rs:     (word >> SHIFT_RS) & MASK_REG,
		Rt:     word & MASK_IMM4,
	}
}

// Extended reports whether the opcode is followed in memory by a word
// holding an absolute address.
func Extended(op uint16) bool {
	switch op {
	case OP_LOAD_DIR, OP_STORE_DIR,
		OP_JMP, OP_JZ, OP_JNZ, OP_JC, OP_JNC, OP_JN, OP_CALL:
		return true
	}

	return false
}

// Size is the number of bytes an instruction occupies in memory.
func Size(op uint16) uint16 {
	if Extended(op) {
		return EXTENDED_SIZE
	}

	return WORD_SIZE
}

var opcodeNames = [64]string{
	0x00: "NOP", 0x01: "MOVI", 0x02: "LOAD", 0x03: "LOAD",
	0x04: "STORE", 0x05: "STORE",
	0x08: "ADD", 0x09: "ADDI", 0x0A: "SUB", 0x0B: "SUBI",
	0x0C: "MUL", 0x0D: "DIV", 0x0E: "INC", 0x0F: "DEC",
	0x10: "AND", 0x11: "ANDI", 0x12: "OR", 0x13: "ORI",
	0x14: "XOR", 0x15: "NOT",
	0x18: "SHL", 0x19: "SHLI", 0x1A: "SHR", 0x1B: "SHRI",
	0x1C: "CMP", 0x1D: "CMPI",
	0x20: "JMP", 0x21: "JZ", 0x22: "JNZ", 0x23: "JC",
	0x24: "JNC", 0x25: "JN", 0x26: "CALL", 0x27: "RET",
	0x28: "PUSH", 0x29: "POP",
	0x3F: "HALT",
}

func Valid(op uint16) bool {
	return op < 64 && opcodeNames[op] != ""
}

func Name(op uint16) string {
	if !Valid(op) {
		return "???"
	}

	return opcodeNames[op]
}

// Disassemble renders a single instruction. ext is the word following the
// instruction and is only consulted for extended opcodes. When labels holds
// a name for an extended operand the name is printed instead of the address.
func Disassemble(word uint16, ext uint16, labels map[uint16]string) string {
	in := Decode(word)

	var builder strings.Builder

	target := fmt.Sprintf("0x%04x", ext)
	if label, ok := labels[ext]; ok {
		target = label
	}

	if in.Opcode == OP_MOV {
		if in.Move() {
			fmt.Fprintf(&builder, "MOV R%d, R%d", in.Rd, in.Rs)
		} else {
			builder.WriteString("NOP")
		}

		return builder.String()
	}

	builder.WriteString(Name(in.Opcode))

	switch in.Opcode {
	case OP_MOVI:
		fmt.Fprintf(&builder, " R%d, %d", in.Rd, int16(in.SImm7()))
	case OP_LOAD_IND:
		fmt.Fprintf(&builder, " R%d, [R%d]", in.Rd, in.Rs)
	case OP_STORE_IND:
		fmt.Fprintf(&builder, " R%d, [R%d]", in.Rs, in.Rd)
	case OP_LOAD_DIR:
		fmt.Fprintf(&builder, " R%d, %s", in.Rd, target)
	case OP_STORE_DIR:
		fmt.Fprintf(&builder, " R%d, %s", in.Rs, target)
	case OP_JMP, OP_JZ, OP_JNZ, OP_JC, OP_JNC, OP_JN, OP_CALL:
		fmt.Fprintf(&builder, " %s", target)
	case OP_ADDI, OP_SUBI:
		fmt.Fprintf(&builder, " R%d, R%d, %d", in.Rd, in.Rs, int16(in.SImm4()))
	case OP_ANDI, OP_ORI, OP_SHLI, OP_SHRI:
		fmt.Fprintf(&builder, " R%d, R%d, %d", in.Rd, in.Rs, in.Imm4())
	case OP_CMPI:
		fmt.Fprintf(&builder, " R%d, %d", in.Rs, int16(in.SImm4()))
	case OP_CMP:
		fmt.Fprintf(&builder, " R%d, R%d", in.Rs, in.RtReg())
	case OP_NOT:
		fmt.Fprintf(&builder, " R%d, R%d", in.Rd, in.Rs)
	case OP_INC, OP_DEC, OP_PUSH, OP_POP:
		fmt.Fprintf(&builder, " R%d", in.Rd)
	case OP_RET, OP_HALT:
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR, OP_SHL, OP_SHR:
		fmt.Fprintf(&builder, " R%d, R%d, R%d", in.Rd, in.Rs, in.RtReg())
	default:
		fmt.Fprintf(&builder, " 0x%04x", word)
	}

	return builder.String()
}
