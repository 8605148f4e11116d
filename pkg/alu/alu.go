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

// Package alu computes results and status flags. Every operation returns a
// complete flag set; flags from earlier operations never carry over.
package alu

import (
	"fmt"
)

type Flags uint16

const (
	FLAG_ZERO     Flags = 1 << 0
	FLAG_CARRY    Flags = 1 << 1
	FLAG_NEGATIVE Flags = 1 << 2
	FLAG_OVERFLOW Flags = 1 << 3
)

const signBit uint16 = 0x8000

func (f Flags) Zero() bool     { return f&FLAG_ZERO != 0 }
func (f Flags) Carry() bool    { return f&FLAG_CARRY != 0 }
func (f Flags) Negative() bool { return f&FLAG_NEGATIVE != 0 }
func (f Flags) Overflow() bool { return f&FLAG_OVERFLOW != 0 }

func (f Flags) String() string {
	return fmt.Sprintf(
		"Z=%d C=%d N=%d O=%d",
		bit(f.Zero()), bit(f.Carry()), bit(f.Negative()), bit(f.Overflow()),
	)
}

func bit(b bool) int {
	if b {
		return 1
	}

	return 0
}

// resultFlags derives Zero and Negative from a result.
func resultFlags(result uint16) (flags Flags) {
	if result == 0 {
		flags |= FLAG_ZERO
	}

	if result&signBit != 0 {
		flags |= FLAG_NEGATIVE
	}

	return
}

func Add(a, b uint16) (uint16, Flags) {
	sum := uint32(a) + uint32(b)
	result := uint16(sum)
	flags := resultFlags(result)

	if sum > 0xFFFF {
		flags |= FLAG_CARRY
	}

	// (+) + (+) = (-) or (-) + (-) = (+)
	if (a&signBit) == (b&signBit) && (a&signBit) != (result&signBit) {
		flags |= FLAG_OVERFLOW
	}

	return result, flags
}

func Sub(a, b uint16) (uint16, Flags) {
	result := a - b
	flags := resultFlags(result)

	// Borrow
	if a < b {
		flags |= FLAG_CARRY
	}

	// (+) - (-) = (-) or (-) - (+) = (+)
	if (a&signBit) != (b&signBit) && (a&signBit) != (result&signBit) {
		flags |= FLAG_OVERFLOW
	}

	return result, flags
}

// Mul keeps the low 16 bits of the product. Carry reports lost high bits.
func Mul(a, b uint16) (uint16, Flags) {
	product := uint32(a) * uint32(b)
	result := uint16(product)
	flags := resultFlags(result)

	if product > 0xFFFF {
		flags |= FLAG_CARRY
	}

	return result, flags
}

// Div is unsigned integer division. A zero divisor yields 0xFFFF with only
// the Overflow flag set.
func Div(a, b uint16) (uint16, Flags) {
	if b == 0 {
		return 0xFFFF, FLAG_OVERFLOW
	}

	result := a / b
	return result, resultFlags(result)
}

func And(a, b uint16) (uint16, Flags) {
	result := a & b
	return result, resultFlags(result)
}

func Or(a, b uint16) (uint16, Flags) {
	result := a | b
	return result, resultFlags(result)
}

func Xor(a, b uint16) (uint16, Flags) {
	result := a ^ b
	return result, resultFlags(result)
}

func Not(a uint16) (uint16, Flags) {
	result := ^a
	return result, resultFlags(result)
}

// Shl is a logical left shift. Carry holds the last bit shifted out.
func Shl(a, shift uint16) (uint16, Flags) {
	if shift >= 16 {
		flags := FLAG_ZERO

		if shift == 16 && a&0x0001 != 0 {
			flags |= FLAG_CARRY
		}

		return 0, flags
	}

	result := a << shift
	flags := resultFlags(result)

	if shift > 0 && a&(1<<(16-shift)) != 0 {
		flags |= FLAG_CARRY
	}

	return result, flags
}

// Shr is a logical right shift. Carry holds the last bit shifted out.
func Shr(a, shift uint16) (uint16, Flags) {
	if shift >= 16 {
		flags := FLAG_ZERO

		if shift == 16 && a&signBit != 0 {
			flags |= FLAG_CARRY
		}

		return 0, flags
	}

	result := a >> shift
	flags := resultFlags(result)

	if shift > 0 && a&(1<<(shift-1)) != 0 {
		flags |= FLAG_CARRY
	}

	return result, flags
}

// Compare sets flags as Sub would and discards the difference.
func Compare(a, b uint16) (uint16, Flags) {
	_, flags := Sub(a, b)
	return 0, flags
}
