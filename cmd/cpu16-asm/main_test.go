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

package main

import (
	"encoding/gob"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lassandro/gocpu16/pkg/assembler"
)

const program = "start: MOVI R0, 5\nHALT\n"

var image = []byte{0x05, 0x04, 0x00, 0xFC}

func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		helpvar, debugvar, outvar, args = false, false, "", nil
	})
}

func TestParseArgs(t *testing.T) {
	type testCase struct {
		Name       string
		Arguments  []string
		Positional []string
		Debug      bool
		Out        string
	}

	testCases := []testCase{
		{
			Name:       "Input Only",
			Arguments:  []string{"p.asm"},
			Positional: []string{"p.asm"},
		},
		{
			Name:       "Input And Output",
			Arguments:  []string{"p.asm", "p_out.bin"},
			Positional: []string{"p.asm", "p_out.bin"},
		},
		{
			Name:       "Flags First",
			Arguments:  []string{"-debug", "-out", "x.bin", "p.asm"},
			Positional: []string{"p.asm"},
			Debug:      true,
			Out:        "x.bin",
		},
		{
			Name:       "Flags Between And After",
			Arguments:  []string{"p.asm", "-debug", "p_out.bin", "-out", "x.bin"},
			Positional: []string{"p.asm", "p_out.bin"},
			Debug:      true,
			Out:        "x.bin",
		},
	}

	for _, test := range testCases {
		t.Run(test.Name, func(t *testing.T) {
			resetFlags(t)
			debugvar, outvar = false, ""

			positional, err := parseArgs(flag.CommandLine, test.Arguments)
			require.NoError(t, err)
			assert.Equal(t, test.Positional, positional)
			assert.Equal(t, test.Debug, debugvar)
			assert.Equal(t, test.Out, outvar)
		})
	}
}

func TestAssembleToOutputArgument(t *testing.T) {
	resetFlags(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "p.asm")
	output := filepath.Join(dir, "p_out.bin")
	require.NoError(t, os.WriteFile(input, []byte(program), 0666))

	var err error
	args, err = parseArgs(flag.CommandLine, []string{input, output, "-debug"})
	require.NoError(t, err)
	require.Equal(t, 0, cpu16_asm())

	result, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, image, result)

	file, err := os.Open(filepath.Join(dir, "p_out.dbg"))
	require.NoError(t, err)
	defer file.Close()

	var symtable assembler.SymTable
	require.NoError(t, gob.NewDecoder(file).Decode(&symtable))
	assert.Equal(t, map[uint16]string{0x0000: "start"}, symtable.Labels)
	assert.Equal(t, input, symtable.Source)
}

func TestOutFlagOverridesArgument(t *testing.T) {
	resetFlags(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "p.asm")
	ignored := filepath.Join(dir, "ignored.bin")
	output := filepath.Join(dir, "chosen.bin")
	require.NoError(t, os.WriteFile(input, []byte(program), 0666))

	var err error
	args, err = parseArgs(flag.CommandLine, []string{input, ignored, "-out", output})
	require.NoError(t, err)
	require.Equal(t, 0, cpu16_asm())

	result, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, image, result)

	_, err = os.Stat(ignored)
	assert.True(t, os.IsNotExist(err))
}

func TestTooManyArguments(t *testing.T) {
	resetFlags(t)

	args = []string{"a.asm", "b.bin", "c.bin"}
	assert.Equal(t, 1, cpu16_asm())
}
