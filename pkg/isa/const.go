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

package isa

const (
	// Data movement. OP_MOV and OP_NOP are the same instruction: a register
	// move whose effect vanishes when Rd == Rs.
	OP_NOP       uint16 = 0x00
	OP_MOV       uint16 = 0x00
	OP_MOVI      uint16 = 0x01
	OP_LOAD_IND  uint16 = 0x02
	OP_LOAD_DIR  uint16 = 0x03
	OP_STORE_IND uint16 = 0x04
	OP_STORE_DIR uint16 = 0x05

	// Arithmetic
	OP_ADD  uint16 = 0x08
	OP_ADDI uint16 = 0x09
	OP_SUB  uint16 = 0x0A
	OP_SUBI uint16 = 0x0B
	OP_MUL  uint16 = 0x0C
	OP_DIV  uint16 = 0x0D
	OP_INC  uint16 = 0x0E
	OP_DEC  uint16 = 0x0F

	// Logical
	OP_AND  uint16 = 0x10
	OP_ANDI uint16 = 0x11
	OP_OR   uint16 = 0x12
	OP_ORI  uint16 = 0x13
	OP_XOR  uint16 = 0x14
	OP_NOT  uint16 = 0x15

	// Shift and compare
	OP_SHL  uint16 = 0x18
	OP_SHLI uint16 = 0x19
	OP_SHR  uint16 = 0x1A
	OP_SHRI uint16 = 0x1B
	OP_CMP  uint16 = 0x1C
	OP_CMPI uint16 = 0x1D

	// Control transfer
	OP_JMP  uint16 = 0x20
	OP_JZ   uint16 = 0x21
	OP_JNZ  uint16 = 0x22
	OP_JC   uint16 = 0x23
	OP_JNC  uint16 = 0x24
	OP_JN   uint16 = 0x25
	OP_CALL uint16 = 0x26
	OP_RET  uint16 = 0x27

	// Stack
	OP_PUSH uint16 = 0x28
	OP_POP  uint16 = 0x29

	// System
	OP_HALT uint16 = 0x3F
)

const (
	NUM_REGISTERS = 8

	WORD_SIZE     uint16 = 2
	EXTENDED_SIZE uint16 = 4
)

// Field widths and positions of the instruction word.
//
// OP   |op          |rd   |rs   |rt     | Register form
// MOVI |op          |rd   |imm7         | Short-immediate form
// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
const (
	SHIFT_OP uint16 = 10
	SHIFT_RD uint16 = 7
	SHIFT_RS uint16 = 4

	MASK_OP   uint16 = 0x3F
	MASK_REG  uint16 = 0x07
	MASK_IMM4 uint16 = 0x0F
	MASK_IMM7 uint16 = 0x7F

	BITS_IMM4 uint16 = 4
	BITS_IMM7 uint16 = 7
)

// Representable operand ranges for immediate fields.
const (
	IMM4_SIGNED_MIN   = -8
	IMM4_SIGNED_MAX   = 7
	IMM4_UNSIGNED_MIN = 0
	IMM4_UNSIGNED_MAX = 15
	IMM7_SIGNED_MIN   = -64
	IMM7_SIGNED_MAX   = 63
	ADDR_MIN          = -(1 << 15)
	ADDR_MAX          = (1 << 16) - 1
)
