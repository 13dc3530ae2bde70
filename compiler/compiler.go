package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/blamlang/blam/src/compiler/defs"
	"github.com/blamlang/blam/src/compiler/front"
	"github.com/blamlang/blam/src/compiler/ir"
)

type (
	// Compiler accumulates source files into a pending unit and compiles
	// them against one target. An instance is not safe for concurrent
	// use; the builtin tables it resolves against are.
	Compiler struct {
		target defs.Target
		enc    defs.Encoding
		tbl    *defs.Table

		files   []string
		forests [][]front.Token
	}
)

// New creates a compiler for the given target and source encoding using
// the engine definitions shipped with the package.
func New(target defs.Target, enc defs.Encoding) *Compiler {
	return &Compiler{
		target: target,
		enc:    enc,
		tbl:    defs.TableForTarget(target),
	}
}

// NewWithTable creates a compiler resolving against a caller-supplied
// builtin table, for callers shipping their own engine definitions.
func NewWithTable(tbl *defs.Table, enc defs.Encoding) *Compiler {
	return &Compiler{
		target: tbl.Target(),
		enc:    enc,
		tbl:    tbl,
	}
}

// Target returns the target the compiler was created for.
func (c *Compiler) Target() defs.Target {
	return c.target
}

// ReadSource lexes one source buffer and adds it to the pending unit. On
// error the unit is left as it was, without the file.
func (c *Compiler) ReadSource(ctx context.Context, name string, data []byte) error {
	forest, err := front.Tokenize(ctx, c.enc, name, data)
	if err != nil {
		return err
	}

	c.files = append(c.files, name)
	c.forests = append(c.forests, forest)

	return nil
}

// Compile consumes the pending unit and produces the flattened result.
// The unit is reset whether compilation succeeds or fails, so the next
// ReadSource starts a fresh one.
func (c *Compiler) Compile(ctx context.Context) (*ir.Data, error) {
	files, forests := c.files, c.forests
	c.files, c.forests = nil, nil

	return front.CompileUnit(ctx, c.tbl, files, forests)
}

// Compile compiles a single in-memory source file for the target.
func Compile(ctx context.Context, target defs.Target, enc defs.Encoding, name string, text []byte) (*ir.Data, error) {
	c := New(target, enc)

	err := c.ReadSource(ctx, name, text)
	if err != nil {
		return nil, errors.Wrap(err, "read source")
	}

	data, err := c.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	return data, nil
}

// CompileFile reads and compiles a single source file for the target.
func CompileFile(ctx context.Context, target defs.Target, enc defs.Encoding, name string) (*ir.Data, error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, target, enc, name, text)
}
