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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

const (
	LITERAL_MIN = -(1 << 15)
	LITERAL_MAX = (1 << 16) - 1
)

var ErrLiteralRange = errors.New("literal exceeds 16 bits")

// Decodes a hexadecimal string in the formats: 0xFFFF, 0XFF, -0x10
func DecodeHex(s string) (int32, error) {
	return decodePrefixed(s, "0x", 16)
}

// Decodes a binary string in the formats: 0b1010, 0B1, -0b1
func DecodeBin(s string) (int32, error) {
	return decodePrefixed(s, "0b", 2)
}

// Decodes a base-10 string in the formats: 123, -123, +123
func DecodeInt(s string) (int32, error) {
	result, err := strconv.ParseInt(s, 10, 32)

	if err != nil {
		return 0, err
	}

	return checkRange(result)
}

// Decodes any numeric literal accepted by the assembler. The result is the
// literal's integer value, bounded to what fits in a 16-bit word either as a
// signed or an unsigned quantity.
func DecodeLiteral(s string) (int32, error) {
	body := strings.TrimLeft(s, "+-")

	switch {
	case len(body) > 1 && (body[:2] == "0x" || body[:2] == "0X"):
		return DecodeHex(s)
	case len(body) > 1 && (body[:2] == "0b" || body[:2] == "0B"):
		return DecodeBin(s)
	}

	return DecodeInt(s)
}

// Decodes an unsigned 16-bit address in hex (0x prefix optional) form.
func DecodeAddr(s string) (uint16, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}

	result, err := strconv.ParseUint(s, 0, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

func decodePrefixed(s string, prefix string, base int) (int32, error) {
	negative := false

	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	if len(s) <= len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) ||
		strings.ContainsAny(s[len(prefix):], "+-") {
		return 0, errors.New("Invalid " + prefix + " literal")
	}

	result, err := strconv.ParseInt(s[len(prefix):], base, 32)

	if err != nil {
		return 0, err
	}

	if negative {
		result = -result
	}

	return checkRange(result)
}

func checkRange(value int64) (int32, error) {
	if value < LITERAL_MIN || value > LITERAL_MAX {
		return 0, ErrLiteralRange
	}

	return int32(value), nil
}

func SignExtend(value uint16, bitcount uint16) uint16 {
	value &= (1 << bitcount) - 1

	if (value>>(bitcount-1))&0x1 == 1 {
		value |= (0xFFFF << bitcount)
	}

	return value
}

func ZeroExtend(value uint16, bitcount uint16) uint16 {
	return value & ((1 << bitcount) - 1)
}

// Reinterprets the low bitcount bits of value as a two's complement number.
func SignedField(value uint16, bitcount uint16) int16 {
	return int16(SignExtend(value, bitcount))
}
