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
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

type rawToken struct {
	Token
	commas int
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".FILL") {
		return DIRECTIVE_FILL
	} else if strings.EqualFold(ident, ".WORD") {
		return DIRECTIVE_WORD
	} else if strings.EqualFold(ident, ".BLKW") {
		return DIRECTIVE_BLKW
	} else if strings.EqualFold(ident, ".STRINGZ") {
		return DIRECTIVE_STRINGZ
	} else if strings.EqualFold(ident, ".END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

// parseRegister accepts exactly R0 through R7, in either case.
func parseRegister(ident string) (uint16, bool) {
	if len(ident) != 2 || (ident[0] != 'R' && ident[0] != 'r') {
		return 0, false
	}

	if ident[1] < '0' || ident[1] > '7' {
		return 0, false
	}

	return uint16(ident[1] - '0'), true
}

// scanRawLines splits like bufio.ScanLines but keeps the terminator, so
// byte offsets stay exact for CRLF sources.
func scanRawLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i+1], nil
	}

	if atEOF {
		return len(data), data, nil
	}

	return 0, nil, nil
}

// Parse reads every line of input into asm.Lines. Lines with syntax errors
// are kept so later errors still carry the right line numbers.
func (asm *Assembler) Parse(input io.Reader) (errs []error) {
	var scanner = bufio.NewScanner(input)
	var cursor = Cursor{Line: 1}

	scanner.Split(scanRawLines)

	asm.Lines = asm.Lines[:0]

	for scanner.Scan() {
		raw := scanner.Text()
		text := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")

		cursor.Column = 1
		cursor.Size = int64(len(text))
		cursor.LineByte = cursor.Byte

		line, lineErrs := parseLine(text, cursor)

		asm.Lines = append(asm.Lines, line)
		errs = append(errs, lineErrs...)

		cursor.Line++
		cursor.Byte += int64(len(raw))
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	asm.end = len(asm.Lines)

	return
}

func parseLine(text string, cursor Cursor) (line Line, errs []error) {
	var builder strings.Builder
	var tokens []rawToken

	var tokenType TokenType = TOKEN_NONE
	var tokenStart int
	var commas int
	var lastComma int
	var depth int
	var escaped bool

	line.Number = cursor.Line
	line.Position = cursor

	at := func(index int) Cursor {
		pos := cursor
		pos.Column = index + 1
		pos.Byte = cursor.LineByte + int64(index)
		return pos
	}

	unexpected := func(index int, char rune) {
		errs = append(errs, &UnexpectedCharacterError{at(index), char})
	}

	flush := func(end int) {
		if tokenType == TOKEN_NONE {
			return
		}

		pos := at(tokenStart)
		pos.Size = int64(end - tokenStart)

		tokens = append(tokens, rawToken{
			Token{tokenType, pos, builder.String()},
			commas,
		})

		builder.Reset()
		tokenType = TOKEN_NONE
		commas = 0
	}

	start := func(index int, kind TokenType) {
		tokenType = kind
		tokenStart = index
	}

scan:
	for index, char := range text {
		switch tokenType {
		case TOKEN_STRING:
			builder.WriteRune(char)

			if escaped {
				escaped = false
			} else if char == '\\' {
				escaped = true
			} else if char == '"' {
				flush(index + 1)
			}

			continue

		case TOKEN_EXPR:
			if depth == 0 {
				if char != '(' {
					errs = append(errs, &InvalidExpressionError{
						at(tokenStart), text[tokenStart:index], nil,
					})
					builder.Reset()
					tokenType = TOKEN_NONE
					commas = 0
					break scan
				}

				depth++
				continue
			}

			if char == '(' {
				depth++
			} else if char == ')' {
				depth--

				if depth == 0 {
					flush(index + 1)
					continue
				}
			}

			builder.WriteRune(char)
			continue

		case TOKEN_INDIRECT:
			switch {
			case char == ']':
				flush(index + 1)
			case unicode.IsSpace(char):
			case char < unicode.MaxASCII &&
				(unicode.IsLetter(char) || unicode.IsDigit(char)):
				builder.WriteRune(char)
			default:
				unexpected(index, char)
			}

			continue
		}

		switch {
		// Whitespace
		case unicode.IsSpace(char):
			flush(index)

		// Comments
		case char == ';':
			flush(index)
			line.Comment = strings.TrimSpace(text[index+1:])
			break scan

		// Operand Separator
		case char == ',':
			flush(index)

			if len(tokens) < 2 || commas > 0 {
				unexpected(index, char)
			}

			commas++
			lastComma = index

		// Label terminator
		case char == ':':
			if tokenType != TOKEN_IDENT || len(tokens) > 0 || line.Label != nil {
				unexpected(index, char)
				continue
			}

			flush(index)
			label := tokens[0].Token
			line.Label = &label
			tokens = tokens[:0]

		// Assembler Directives
		case char == '.':
			if tokenType != TOKEN_NONE {
				unexpected(index, char)
				continue
			}

			start(index, TOKEN_DIRECTIVE)
			builder.WriteRune(char)

		// String Literal
		case char == '"':
			if tokenType != TOKEN_NONE {
				unexpected(index, char)
				continue
			}

			start(index, TOKEN_STRING)
			builder.WriteRune(char)

		// Register Indirect (i.e. [R2])
		case char == '[':
			if tokenType != TOKEN_NONE {
				unexpected(index, char)
				continue
			}

			start(index, TOKEN_INDIRECT)

		// Expression (i.e. $(label + 2))
		case char == '$':
			if tokenType != TOKEN_NONE {
				unexpected(index, char)
				continue
			}

			start(index, TOKEN_EXPR)
			depth = 0

		// Numeric Literal
		case unicode.IsDigit(char) && char < unicode.MaxASCII:
			if tokenType == TOKEN_NONE {
				start(index, TOKEN_LITERAL)
			}

			builder.WriteRune(char)

		// Numeric Sign
		case char == '-' || char == '+':
			if tokenType == TOKEN_NONE {
				start(index, TOKEN_LITERAL)
			} else if tokenType != TOKEN_LITERAL {
				unexpected(index, char)
				continue
			}

			builder.WriteRune(char)

		// Identifier
		case char == '_' ||
			(unicode.IsLetter(char) && char < unicode.MaxASCII):
			if tokenType == TOKEN_NONE {
				start(index, TOKEN_IDENT)
			}

			builder.WriteRune(char)

		default:
			unexpected(index, char)
		}
	}

	// Unterminated tokens are dropped along with their separator
	switch tokenType {
	case TOKEN_STRING:
		errs = append(errs, &InvalidStringError{at(tokenStart)})
		tokenType, commas = TOKEN_NONE, 0
	case TOKEN_EXPR:
		errs = append(errs, &InvalidExpressionError{
			at(tokenStart), text[tokenStart:], nil,
		})
		tokenType, commas = TOKEN_NONE, 0
	case TOKEN_INDIRECT:
		unexpected(tokenStart, '[')
		tokenType, commas = TOKEN_NONE, 0
	}

	flush(len(text))

	if commas > 0 {
		unexpected(lastComma, ',')
	}

	if len(tokens) == 0 {
		return
	}

	switch tokens[0].Type {
	case TOKEN_IDENT, TOKEN_DIRECTIVE:
		line.Mnemonic = &tokens[0].Token
	default:
		errs = append(errs, &InvalidOperandError{
			tokens[0].Position,
			[]TokenType{TOKEN_IDENT, TOKEN_DIRECTIVE},
			tokens[0].Type,
		})

		return
	}

	for i, token := range tokens[1:] {
		// Operands after the first must be comma separated
		if i > 0 && token.commas == 0 {
			char, _ := utf8.DecodeRuneInString(text[token.Position.Column-1:])
			unexpected(token.Position.Column-1, char)
		}

		line.Operands = append(line.Operands, token.Token)
	}

	return
}
