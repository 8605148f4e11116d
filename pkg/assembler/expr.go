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
	"errors"

	"github.com/lassandro/gocpu16/pkg/encoding"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var errNotInteger = errors.New("result is not an integer")

// evaluate runs a $(...) operand through Starlark with every label bound to
// its address.
func (asm *Assembler) evaluate(token *Token) (int64, error) {
	thread := starlark.Thread{Name: "expr"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}

	for label, addr := range asm.Labels {
		pred[label] = starlark.MakeInt(int(addr))
	}

	prog := "rc = " + token.Value + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)

	if err != nil {
		return 0, &InvalidExpressionError{token.Position, token.Value, err}
	}

	rc, ok := dict["rc"].(starlark.Int)

	if !ok {
		return 0, &InvalidExpressionError{
			token.Position, token.Value, errNotInteger,
		}
	}

	value, ok := rc.Int64()

	if !ok {
		return 0, &OversizedLiteralError{
			token.Position,
			encoding.LITERAL_MIN,
			encoding.LITERAL_MAX,
			rc.String(),
		}
	}

	return value, nil
}
