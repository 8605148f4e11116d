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
	"fmt"
	"strconv"
	"strings"

	"github.com/lassandro/gocpu16/pkg/translate"
)

var f = translate.From

type TokenType uint
type DirectiveType uint

type Cursor struct {
	Line     int
	Column   int
	Byte     int64
	Size     int64
	LineByte int64
}

type Token struct {
	Type     TokenType
	Position Cursor
	Value    string
}

// Line is one parsed source line. Label, Mnemonic and Operands are all
// optional; a blank or comment-only line has none of them.
type Line struct {
	Number   int
	Position Cursor
	Label    *Token
	Mnemonic *Token
	Operands []Token
	Comment  string

	// Address assigned by the first pass
	Addr uint16
}

type Assembler struct {
	Lines    []Line
	Labels   map[string]uint16
	Output   []byte
	SymTable *SymTable

	// Index of the .END line, or len(Lines)
	end int
}

// SymTable maps assembled addresses back to the source for the debugger.
type SymTable struct {
	Source  string
	Symbols map[uint16]int64
	Labels  map[uint16]string
}

func (t TokenType) String() string {
	switch t {
	case TOKEN_IDENT:
		return f("Identifier")
	case TOKEN_DIRECTIVE:
		return f("Directive")
	case TOKEN_STRING:
		return f("String")
	case TOKEN_LITERAL:
		return f("Literal")
	case TOKEN_INDIRECT:
		return f("Indirect")
	case TOKEN_EXPR:
		return f("Expression")
	case TOKEN_REGISTER:
		return f("Register")
	}

	return "<invalid>"
}

type TokenError interface {
	GetPosition() Cursor
}

// Positions and numbers go through fmt rather than the translator so the
// locale never groups their digits.
func position(c Cursor) string {
	return fmt.Sprintf("%02d:%02d: ", c.Line, c.Column)
}

func number(n int64) string {
	return strconv.FormatInt(n, 10)
}

type InvalidOperandError struct {
	Position Cursor
	Required []TokenType
	Received TokenType
}

func (err *InvalidOperandError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidOperandError) Error() string {
	var requiredString string

	requiredStrings := make([]string, 0, len(err.Required))

	for _, tokenType := range err.Required {
		requiredStrings = append(requiredStrings, tokenType.String())
	}

	if count := len(requiredStrings); count == 1 {
		requiredString = requiredStrings[0]
	} else if count == 2 {
		requiredString = requiredStrings[0] + f(" or ") + requiredStrings[1]
	} else if count > 2 {
		requiredString = strings.Join(
			requiredStrings[:len(requiredStrings)-1], ", ",
		) + f(", or ") + requiredStrings[len(requiredStrings)-1]
	}

	return position(err.Position) + f(
		"Invalid operands\n\twant:%s\n\thave:%s",
		requiredString,
		err.Received.String(),
	)
}

type InvalidNumArgumentsError struct {
	Position Cursor
	Required int
	Received int
}

func (err *InvalidNumArgumentsError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidNumArgumentsError) Error() string {
	return position(err.Position) + f(
		"Invalid number of arguments\n\twant:%s\n\thave:%s",
		number(int64(err.Required)),
		number(int64(err.Received)),
	)
}

type InvalidLiteralError struct {
	Position Cursor
}

func (err *InvalidLiteralError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidLiteralError) Error() string {
	return position(err.Position) + f("Invalid numeric literal")
}

type InvalidStringError struct {
	Position Cursor
}

func (err *InvalidStringError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidStringError) Error() string {
	return position(err.Position) + f("Invalid string literal")
}

// Received holds the literal as written in the source.
type OversizedLiteralError struct {
	Position Cursor
	Min      int64
	Max      int64
	Received string
}

func (err *OversizedLiteralError) GetPosition() Cursor {
	return err.Position
}

func (err *OversizedLiteralError) Error() string {
	return position(err.Position) + f(
		"Literal exceeds allowed range\n\twant:[%s, %s]\n\thave:%s",
		number(err.Min),
		number(err.Max),
		err.Received,
	)
}

type InvalidRegisterError struct {
	Position Cursor
	Received string
}

func (err *InvalidRegisterError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidRegisterError) Error() string {
	return position(err.Position) + f(
		"Invalid register identifier '%s'", err.Received,
	)
}

type UnexpectedCharacterError struct {
	Position Cursor
	Received rune
}

func (err *UnexpectedCharacterError) GetPosition() Cursor {
	return err.Position
}

func (err *UnexpectedCharacterError) Error() string {
	return position(err.Position) + f(
		"Unexpected character %s", strconv.QuoteRune(err.Received),
	)
}

type RedeclaredLabelError struct {
	Position Cursor
	Received string
}

func (err *RedeclaredLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *RedeclaredLabelError) Error() string {
	return position(err.Position) + f(
		"Redeclaration of label '%s'", err.Received,
	)
}

type UnknownLabelError struct {
	Position Cursor
	Received string
}

func (err *UnknownLabelError) GetPosition() Cursor {
	return err.Position
}

func (err *UnknownLabelError) Error() string {
	return position(err.Position) + f("Unknown label '%s'", err.Received)
}

type UnknownIdentifierError struct {
	Position Cursor
	Received string
}

func (err *UnknownIdentifierError) GetPosition() Cursor {
	return err.Position
}

func (err *UnknownIdentifierError) Error() string {
	return position(err.Position) + f(
		"Unknown identifier '%s'", err.Received,
	)
}

type InvalidExpressionError struct {
	Position Cursor
	Received string
	Reason   error
}

func (err *InvalidExpressionError) GetPosition() Cursor {
	return err.Position
}

func (err *InvalidExpressionError) Error() string {
	if err.Reason == nil {
		return position(err.Position) + f(
			"Invalid expression '%s'", err.Received,
		)
	}

	return position(err.Position) + f(
		"Invalid expression '%s': %s", err.Received, err.Reason.Error(),
	)
}

func (err *InvalidExpressionError) Unwrap() error {
	return err.Reason
}

type OversizedBinaryError struct {
	Position Cursor
}

func (err *OversizedBinaryError) GetPosition() Cursor {
	return err.Position
}

func (err *OversizedBinaryError) Error() string {
	return position(err.Position) + f(
		"Binary exceeds %s bytes", number(MAX_BINARY_SIZE),
	)
}
