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

import (
	"strings"
)

// Form describes the operand syntax a mnemonic accepts.
type Form uint

const (
	FORM_NONE       Form = iota // NOP, RET, HALT
	FORM_RD_RS                  // MOV Rd, Rs
	FORM_RD_IMM7                // MOVI Rd, imm7
	FORM_LOAD                   // LOAD Rd, [Rs] | LOAD Rd, addr
	FORM_STORE                  // STORE Rs, [Rd] | STORE Rs, addr
	FORM_RD_RS_RT               // ADD Rd, Rs, Rt
	FORM_RD_RS_IMM4             // ADDI Rd, Rs, imm4
	FORM_RD                     // INC Rd
	FORM_RS_RT                  // CMP Rs, Rt
	FORM_RS_IMM4                // CMPI Rs, imm4
	FORM_ADDR                   // JMP addr
)

type Mnemonic struct {
	Name   string
	Opcode uint16
	// Direct is the opcode chosen when a FORM_LOAD/FORM_STORE operand is not
	// register-indirect.
	Direct uint16
	Form   Form
	// Signed is set when the immediate field is sign extended on execution.
	Signed bool
}

var mnemonics = map[string]Mnemonic{
	"NOP":   {"NOP", OP_NOP, 0, FORM_NONE, false},
	"MOV":   {"MOV", OP_MOV, 0, FORM_RD_RS, false},
	"MOVI":  {"MOVI", OP_MOVI, 0, FORM_RD_IMM7, true},
	"LOAD":  {"LOAD", OP_LOAD_IND, OP_LOAD_DIR, FORM_LOAD, false},
	"STORE": {"STORE", OP_STORE_IND, OP_STORE_DIR, FORM_STORE, false},
	"ADD":   {"ADD", OP_ADD, 0, FORM_RD_RS_RT, false},
	"ADDI":  {"ADDI", OP_ADDI, 0, FORM_RD_RS_IMM4, true},
	"SUB":   {"SUB", OP_SUB, 0, FORM_RD_RS_RT, false},
	"SUBI":  {"SUBI", OP_SUBI, 0, FORM_RD_RS_IMM4, true},
	"MUL":   {"MUL", OP_MUL, 0, FORM_RD_RS_RT, false},
	"DIV":   {"DIV", OP_DIV, 0, FORM_RD_RS_RT, false},
	"INC":   {"INC", OP_INC, 0, FORM_RD, false},
	"DEC":   {"DEC", OP_DEC, 0, FORM_RD, false},
	"AND":   {"AND", OP_AND, 0, FORM_RD_RS_RT, false},
	"ANDI":  {"ANDI", OP_ANDI, 0, FORM_RD_RS_IMM4, false},
	"OR":    {"OR", OP_OR, 0, FORM_RD_RS_RT, false},
	"ORI":   {"ORI", OP_ORI, 0, FORM_RD_RS_IMM4, false},
	"XOR":   {"XOR", OP_XOR, 0, FORM_RD_RS_RT, false},
	"NOT":   {"NOT", OP_NOT, 0, FORM_RD_RS, false},
	"SHL":   {"SHL", OP_SHL, 0, FORM_RD_RS_RT, false},
	"SHLI":  {"SHLI", OP_SHLI, 0, FORM_RD_RS_IMM4, false},
	"SHR":   {"SHR", OP_SHR, 0, FORM_RD_RS_RT, false},
	"SHRI":  {"SHRI", OP_SHRI, 0, FORM_RD_RS_IMM4, false},
	"CMP":   {"CMP", OP_CMP, 0, FORM_RS_RT, false},
	"CMPI":  {"CMPI", OP_CMPI, 0, FORM_RS_IMM4, true},
	"JMP":   {"JMP", OP_JMP, 0, FORM_ADDR, false},
	"JZ":    {"JZ", OP_JZ, 0, FORM_ADDR, false},
	"JNZ":   {"JNZ", OP_JNZ, 0, FORM_ADDR, false},
	"JC":    {"JC", OP_JC, 0, FORM_ADDR, false},
	"JNC":   {"JNC", OP_JNC, 0, FORM_ADDR, false},
	"JN":    {"JN", OP_JN, 0, FORM_ADDR, false},
	"CALL":  {"CALL", OP_CALL, 0, FORM_ADDR, false},
	"RET":   {"RET", OP_RET, 0, FORM_NONE, false},
	"PUSH":  {"PUSH", OP_PUSH, 0, FORM_RD, false},
	"POP":   {"POP", OP_POP, 0, FORM_RD, false},
	"HALT":  {"HALT", OP_HALT, 0, FORM_NONE, false},
}

// Lookup finds a mnemonic, ignoring case.
func Lookup(name string) (Mnemonic, bool) {
	m, ok := mnemonics[strings.ToUpper(name)]
	return m, ok
}

// Resolve picks the opcode for an occurrence of the mnemonic. indirect
// reports whether the address operand was written as [Rn]; it only matters
// for LOAD and STORE.
func (m Mnemonic) Resolve(indirect bool) uint16 {
	if (m.Form == FORM_LOAD || m.Form == FORM_STORE) && !indirect {
		return m.Direct
	}

	return m.Opcode
}

// Operands is the number of operands the mnemonic takes.
func (m Mnemonic) Operands() int {
	switch m.Form {
	case FORM_NONE:
		return 0
	case FORM_RD, FORM_ADDR:
		return 1
	case FORM_RD_RS_RT, FORM_RD_RS_IMM4:
		return 3
	}

	return 2
}

// ImmRange is the inclusive range accepted for the mnemonic's immediate.
func (m Mnemonic) ImmRange() (int32, int32) {
	switch m.Form {
	case FORM_RD_IMM7:
		return IMM7_SIGNED_MIN, IMM7_SIGNED_MAX
	case FORM_RD_RS_IMM4, FORM_RS_IMM4:
		if m.Signed {
			return IMM4_SIGNED_MIN, IMM4_SIGNED_MAX
		}

		return IMM4_UNSIGNED_MIN, IMM4_UNSIGNED_MAX
	}

	return ADDR_MIN, ADDR_MAX
}
