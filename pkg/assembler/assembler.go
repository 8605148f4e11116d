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

package assembler

import (
	"encoding/binary"
	"errors"
	"io"
	"strconv"

	"github.com/lassandro/gocpu16/pkg/encoding"
	"github.com/lassandro/gocpu16/pkg/isa"
)

// Assemble parses input and runs both passes. Output is only returned when
// every stage succeeds; otherwise every error found by the failing stage is.
func Assemble(input io.Reader, symtable *SymTable) ([]byte, []error) {
	var asm Assembler

	if symtable != nil {
		if symtable.Symbols == nil {
			symtable.Symbols = make(map[uint16]int64)
		}

		if symtable.Labels == nil {
			symtable.Labels = make(map[uint16]string)
		}

		asm.SymTable = symtable
	}

	if errs := asm.Parse(input); len(errs) > 0 {
		return nil, errs
	}

	if errs := asm.FirstPass(); len(errs) > 0 {
		return nil, errs
	}

	if errs := asm.SecondPass(); len(errs) > 0 {
		return nil, errs
	}

	return asm.Output, nil
}

// FirstPass assigns an address to every line and records each label.
func (asm *Assembler) FirstPass() (errs []error) {
	var program = uint32(ORIGIN)

	asm.Labels = make(map[string]uint16)
	asm.end = len(asm.Lines)

	for i := range asm.Lines {
		line := &asm.Lines[i]
		line.Addr = uint16(program)

		if line.Label != nil {
			if _, isRegister := parseRegister(line.Label.Value); isRegister {
				errs = append(errs, &InvalidRegisterError{
					line.Label.Position, line.Label.Value,
				})
			} else if _, exists := asm.Labels[line.Label.Value]; exists {
				errs = append(errs, &RedeclaredLabelError{
					line.Label.Position, line.Label.Value,
				})
			} else {
				asm.Labels[line.Label.Value] = line.Addr
			}
		}

		if line.Mnemonic == nil {
			continue
		}

		if parseDirective(line.Mnemonic.Value) == DIRECTIVE_END {
			asm.end = i
			break
		}

		size, err := statementSize(line)

		if err != nil {
			errs = append(errs, err)
			continue
		}

		program += size

		if program > MAX_BINARY_SIZE {
			errs = append(errs, &OversizedBinaryError{line.Mnemonic.Position})
			break
		}
	}

	return
}

// statementSize is the number of bytes a line assembles to. Both passes
// size lines through here.
func statementSize(line *Line) (uint32, error) {
	if line.Mnemonic == nil {
		return 0, nil
	}

	keyword := line.Mnemonic
	operands := line.Operands

	if line.Mnemonic.Type == TOKEN_DIRECTIVE {
		switch parseDirective(keyword.Value) {
		case DIRECTIVE_FILL, DIRECTIVE_WORD:
			return uint32(isa.WORD_SIZE), nil

		case DIRECTIVE_BLKW:
			if count := len(operands); count != 1 {
				return 0, &InvalidNumArgumentsError{keyword.Position, 1, count}
			}

			count, err := blockCount(&operands[0])

			if err != nil {
				return 0, err
			}

			return count * uint32(isa.WORD_SIZE), nil

		case DIRECTIVE_STRINGZ:
			if count := len(operands); count != 1 {
				return 0, &InvalidNumArgumentsError{keyword.Position, 1, count}
			}

			s, err := stringOperand(&operands[0])

			if err != nil {
				return 0, err
			}

			return stringSize(s), nil

		case DIRECTIVE_END:
			return 0, nil
		}

		return 0, &UnknownIdentifierError{keyword.Position, keyword.Value}
	}

	mnemonic, ok := isa.Lookup(keyword.Value)

	if !ok {
		return 0, &UnknownIdentifierError{keyword.Position, keyword.Value}
	}

	return uint32(isa.Size(mnemonic.Resolve(indirect(line)))), nil
}

// indirect reports whether a LOAD or STORE addresses memory through [Rn].
// It is the only test deciding between the indirect and direct opcodes.
func indirect(line *Line) bool {
	return len(line.Operands) > 1 && line.Operands[1].Type == TOKEN_INDIRECT
}

func blockCount(token *Token) (uint32, error) {
	if token.Type != TOKEN_LITERAL {
		return 0, &InvalidOperandError{
			token.Position, []TokenType{TOKEN_LITERAL}, token.Type,
		}
	}

	value, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, literalError(token, err, 0, MAX_BINARY_SIZE/2)
	}

	if value < 0 || value > MAX_BINARY_SIZE/2 {
		return 0, &OversizedLiteralError{
			token.Position, 0, MAX_BINARY_SIZE / 2, token.Value,
		}
	}

	return uint32(value), nil
}

func stringOperand(token *Token) (string, error) {
	if token.Type != TOKEN_STRING {
		return "", &InvalidOperandError{
			token.Position, []TokenType{TOKEN_STRING}, token.Type,
		}
	}

	s, err := strconv.Unquote(token.Value)

	if err != nil {
		return "", &InvalidStringError{token.Position}
	}

	return s, nil
}

// stringSize counts the bytes of s plus its terminator, rounded up so the
// next statement stays word aligned.
func stringSize(s string) uint32 {
	size := uint32(len(s) + 1)
	return size + size%2
}

func literalError(token *Token, err error, min, max int64) error {
	if errors.Is(err, encoding.ErrLiteralRange) {
		return &OversizedLiteralError{token.Position, min, max, token.Value}
	}

	return &InvalidLiteralError{token.Position}
}

// SecondPass validates operands and emits the binary image.
func (asm *Assembler) SecondPass() (errs []error) {
	asm.Output = make([]byte, 0, 256)

	for i := 0; i < asm.end; i++ {
		line := &asm.Lines[i]

		if line.Mnemonic == nil {
			continue
		}

		if asm.SymTable != nil {
			asm.SymTable.Symbols[line.Addr] = line.Position.LineByte
		}

		size, err := statementSize(line)

		if err != nil {
			errs = append(errs, err)
			continue
		}

		var code []byte
		var lineErrs []error

		if line.Mnemonic.Type == TOKEN_DIRECTIVE {
			code, lineErrs = asm.directive(line)
		} else {
			code, lineErrs = asm.instruction(line)
		}

		errs = append(errs, lineErrs...)

		// Keep later addresses in step with the first pass
		for uint32(len(code)) < size {
			code = append(code, 0)
		}

		asm.Output = append(asm.Output, code[:size]...)
	}

	if asm.SymTable != nil {
		for label, addr := range asm.Labels {
			asm.SymTable.Labels[addr] = label
		}
	}

	if len(errs) > 0 {
		asm.Output = nil
	}

	return
}

func (asm *Assembler) directive(line *Line) ([]byte, []error) {
	keyword := line.Mnemonic
	operands := line.Operands

	switch parseDirective(keyword.Value) {
	// .FILL value
	// .WORD value
	case DIRECTIVE_FILL, DIRECTIVE_WORD:
		if count := len(operands); count != 1 {
			return nil, []error{
				&InvalidNumArgumentsError{keyword.Position, 1, count},
			}
		}

		value, err := asm.address(&operands[0])

		if err != nil {
			return nil, []error{err}
		}

		return binary.LittleEndian.AppendUint16(nil, value), nil

	// .BLKW count
	case DIRECTIVE_BLKW:
		count, _ := blockCount(&operands[0])

		return make([]byte, count*uint32(isa.WORD_SIZE)), nil

	// .STRINGZ "..."
	case DIRECTIVE_STRINGZ:
		s, _ := stringOperand(&operands[0])

		code := make([]byte, stringSize(s))
		copy(code, s)

		return code, nil
	}

	return nil, nil
}

func (asm *Assembler) instruction(line *Line) (code []byte, errs []error) {
	keyword := line.Mnemonic
	operands := line.Operands

	mnemonic, _ := isa.Lookup(keyword.Value)

	if count := len(operands); count != mnemonic.Operands() {
		errs = append(errs, &InvalidNumArgumentsError{
			keyword.Position, mnemonic.Operands(), count,
		})

		return
	}

	register := func(i int) uint16 {
		reg, err := asm.register(&operands[i])

		if err != nil {
			errs = append(errs, err)
		}

		return reg
	}

	immediate := func(i int) uint16 {
		min, max := mnemonic.ImmRange()
		value, err := asm.immediate(&operands[i], int64(min), int64(max))

		if err != nil {
			errs = append(errs, err)
		}

		return uint16(value)
	}

	indirectRegister := func(i int) uint16 {
		reg, ok := parseRegister(operands[i].Value)

		if !ok {
			errs = append(errs, &InvalidRegisterError{
				operands[i].Position, operands[i].Value,
			})
		}

		return reg
	}

	address := func(i int) uint16 {
		addr, err := asm.address(&operands[i])

		if err != nil {
			errs = append(errs, err)
		}

		return addr
	}

	op := mnemonic.Resolve(indirect(line))

	var word uint16
	var ext []uint16

	switch mnemonic.Form {
	// NOP  |000000      |000  |000  |0000   |
	// RET  |100111      |000  |000  |0000   |
	// HALT |111111      |000  |000  |0000   |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_NONE:
		word = isa.Encode(op, 0, 0, 0)

	// MOV  |000000      |rd   |rs   |0000   |
	// NOT  |010101      |rd   |rs   |0000   |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RD_RS:
		word = isa.Encode(op, register(0), register(1), 0)

	// MOVI |000001      |rd   |imm7         |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RD_IMM7:
		word = isa.EncodeImm7(op, register(0), immediate(1))

	// LOAD |000010      |rd   |rs   |0000   | LOAD Rd, [Rs]
	// LOAD |000011      |rd   |000  |0000   | LOAD Rd, addr
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_LOAD:
		rd := register(0)

		if op == isa.OP_LOAD_IND {
			word = isa.Encode(op, rd, indirectRegister(1), 0)
		} else {
			word = isa.Encode(op, rd, 0, 0)
			ext = append(ext, address(1))
		}

	// STORE|000100      |rd   |rs   |0000   | STORE Rs, [Rd]
	// STORE|000101      |000  |rs   |0000   | STORE Rs, addr
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_STORE:
		rs := register(0)

		if op == isa.OP_STORE_IND {
			word = isa.Encode(op, indirectRegister(1), rs, 0)
		} else {
			word = isa.Encode(op, 0, rs, 0)
			ext = append(ext, address(1))
		}

	// ADD  |001000      |rd   |rs   |rt     |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RD_RS_RT:
		word = isa.Encode(op, register(0), register(1), register(2))

	// ADDI |001001      |rd   |rs   |imm4   |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RD_RS_IMM4:
		word = isa.Encode(op, register(0), register(1), immediate(2))

	// INC  |001110      |rd   |000  |0000   |
	// PUSH |101000      |rd   |000  |0000   |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RD:
		word = isa.Encode(op, register(0), 0, 0)

	// CMP  |011100      |000  |rs   |rt     |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RS_RT:
		word = isa.Encode(op, 0, register(0), register(1))

	// CMPI |011101      |000  |rs   |imm4   |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_RS_IMM4:
		word = isa.Encode(op, 0, register(0), immediate(1))

	// JMP  |100000      |000  |000  |0000   |
	//      |addr16                          |
	// ---- [ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ ]
	case isa.FORM_ADDR:
		word = isa.Encode(op, 0, 0, 0)
		ext = append(ext, address(0))
	}

	code = binary.LittleEndian.AppendUint16(code, word)

	for _, value := range ext {
		code = binary.LittleEndian.AppendUint16(code, value)
	}

	return
}

func (asm *Assembler) register(token *Token) (uint16, error) {
	if token.Type != TOKEN_IDENT {
		return 0, &InvalidOperandError{
			token.Position, []TokenType{TOKEN_IDENT}, token.Type,
		}
	}

	reg, ok := parseRegister(token.Value)

	if !ok {
		return 0, &InvalidRegisterError{token.Position, token.Value}
	}

	return reg, nil
}

// immediate resolves a literal or expression operand bounded to [min, max].
func (asm *Assembler) immediate(token *Token, min, max int64) (int64, error) {
	var value int64

	switch token.Type {
	case TOKEN_LITERAL:
		literal, err := encoding.DecodeLiteral(token.Value)

		if err != nil {
			return 0, literalError(token, err, min, max)
		}

		value = int64(literal)

	case TOKEN_EXPR:
		result, err := asm.evaluate(token)

		if err != nil {
			return 0, err
		}

		value = result

	default:
		return 0, &InvalidOperandError{
			token.Position,
			[]TokenType{TOKEN_LITERAL, TOKEN_EXPR},
			token.Type,
		}
	}

	if value < min || value > max {
		return 0, &OversizedLiteralError{
			token.Position, min, max, strconv.FormatInt(value, 10),
		}
	}

	return value, nil
}

// address resolves an absolute address operand: a literal, a label, or an
// expression. Negative values wrap into the top of the address space.
func (asm *Assembler) address(token *Token) (uint16, error) {
	switch token.Type {
	case TOKEN_IDENT:
		if _, isRegister := parseRegister(token.Value); isRegister {
			return 0, &InvalidOperandError{
				token.Position,
				[]TokenType{TOKEN_LITERAL, TOKEN_IDENT, TOKEN_EXPR},
				TOKEN_REGISTER,
			}
		}

		addr, exists := asm.Labels[token.Value]

		if !exists {
			return 0, &UnknownLabelError{token.Position, token.Value}
		}

		return addr, nil

	case TOKEN_LITERAL, TOKEN_EXPR:
		value, err := asm.immediate(token, isa.ADDR_MIN, isa.ADDR_MAX)

		if err != nil {
			return 0, err
		}

		return uint16(value), nil
	}

	return 0, &InvalidOperandError{
		token.Position,
		[]TokenType{TOKEN_LITERAL, TOKEN_IDENT, TOKEN_EXPR},
		token.Type,
	}
}
