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
	"bufio"
	"bytes"
	"encoding/gob"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/lassandro/gocpu16/pkg/assembler"
)

var args []string

var helpvar bool
var debugvar bool
var outvar string

const usage = "cpu16-asm [-debug] [-out outfile] input.asm [output.bin]"

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	flag.BoolVar(&helpvar, "help", false, "Displays command usage")
	flag.BoolVar(
		&debugvar, "debug", false,
		"Specifies whether to generate debugging information as a symbol "+
			"table. The table will use the output filename with extension "+
			"'.dbg'",
	)
	flag.StringVar(
		&outvar, "out", "",
		"Specifies a precise name for the output file, "+
			"overriding the default means of determining it",
	)
}

// parseArgs parses flags and returns the positional arguments. Flags may
// come before or after the file names.
func parseArgs(fs *flag.FlagSet, arguments []string) ([]string, error) {
	var positional []string

	if err := fs.Parse(arguments); err != nil {
		return nil, err
	}

	for fs.NArg() > 0 {
		positional = append(positional, fs.Arg(0))

		if err := fs.Parse(fs.Args()[1:]); err != nil {
			return nil, err
		}
	}

	return positional, nil
}

// Prints err, followed by the offending source line with the token
// underlined when the error carries a position.
func report(err error, source []byte) {
	tokenErr, ok := err.(assembler.TokenError)

	if !ok || source == nil {
		log.Println(err)
		return
	}

	cursor := tokenErr.GetPosition()

	if cursor.LineByte < 0 || cursor.LineByte > int64(len(source)) {
		log.Println(err)
		return
	}

	line, _ := bufio.NewReader(
		bytes.NewReader(source[cursor.LineByte:]),
	).ReadString('\n')

	size := int(cursor.Size)
	if size < 1 {
		size = 1
	}

	underline := fmt.Sprintf(
		"%*s%s", int(cursor.Byte-cursor.LineByte)+1, "^",
		strings.Repeat("~", size-1),
	)

	log.Printf(
		"%s\n%s\n\033[31m%s\033[0m",
		err, strings.TrimRight(line, "\r\n"), underline,
	)
}

func writeSymbols(symtable *assembler.SymTable) error {
	filename := filepath.Join(
		filepath.Dir(outvar),
		strings.TrimSuffix(filepath.Base(outvar), filepath.Ext(outvar))+".dbg",
	)

	file, err := os.Create(filename)

	if err != nil {
		return err
	}

	if err := gob.NewEncoder(file).Encode(symtable); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func cpu16_asm() int {
	if helpvar {
		fmt.Println(usage)
		flag.PrintDefaults()
		return 0
	}

	var infile string
	var input io.Reader

	if len(args) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		input = os.Stdin
		log.SetPrefix("\033[1m<stdin>:\033[0m")

		if outvar == "" {
			outvar = "out.bin"
		}
	} else {
		if len(args) < 1 || len(args) > 2 {
			log.Println(usage)
			return 1
		}

		if outvar == "" && len(args) == 2 {
			outvar = args[1]
		}

		file, err := os.Open(args[0])

		if err != nil {
			log.Println(err)
			return 1
		}

		defer file.Close()

		filename := filepath.Base(file.Name())

		if stat, err := file.Stat(); err != nil {
			log.Println(err)
			return 1
		} else if stat.IsDir() {
			log.Printf("%s is not a valid assembly file", filename)
			return 1
		}

		input = file
		infile = file.Name()
		log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m ", filename))

		if outvar == "" {
			outvar = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".bin"
		}
	}

	// Kept in memory so errors can quote the line they occurred on
	source, err := io.ReadAll(input)

	if err != nil {
		log.Println(err)
		return 1
	}

	var symtable assembler.SymTable
	var symtarget *assembler.SymTable

	if debugvar {
		if infile != "" {
			if symtable.Source, err = filepath.Abs(infile); err != nil {
				log.Println(err)
				symtable.Source = ""
			}
		}

		symtarget = &symtable
	}

	result, errs := assembler.Assemble(bytes.NewReader(source), symtarget)

	if len(errs) > 0 {
		for _, err := range errs {
			report(err, source)
		}

		return 1
	}

	if err := os.WriteFile(outvar, result, 0666); err != nil {
		log.Println("Error writing output file")
		log.Println(err)
		return 1
	}

	if debugvar {
		if err := writeSymbols(&symtable); err != nil {
			log.Println("Error writing symbol table")
			log.Println(err)
			return 1
		}
	}

	return 0
}

func main() {
	var err error

	if args, err = parseArgs(flag.CommandLine, os.Args[1:]); err != nil {
		os.Exit(1)
	}

	os.Exit(cpu16_asm())
}
