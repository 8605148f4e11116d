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

const MEMORY_SIZE = 1 << 16

// Memory regions. The partitioning is a convention only; nothing stops a
// program from reading or writing any address.
const (
	MEMSPACE_PROGRAM uint16 = 0x0000
	MEMSPACE_DATA    uint16 = 0x8000
	MEMSPACE_IO      uint16 = 0xF000
	MEMSPACE_STACK   uint16 = 0xF100
	STACK_TOP        uint16 = 0xFFFF
)

const (
	IO_CONSOLE_OUT uint16 = 0xF000
	IO_CONSOLE_IN  uint16 = 0xF001
)
