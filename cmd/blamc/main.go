package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/blamlang/blam/src/compiler"
	"github.com/blamlang/blam/src/compiler/defs"
	"github.com/blamlang/blam/src/compiler/diag"
	"github.com/blamlang/blam/src/compiler/front"
	"github.com/blamlang/blam/src/compiler/ir"
)

func main() {
	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile <target> [encoding] <file>... into a script node dump",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "tokens <file> dumps the token forest of a source file",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	targetsCmd := &cli.Command{
		Name:        "targets",
		Description: "list supported engine targets",
		Action:      targetsAct,
	}

	replCmd := &cli.Command{
		Name:        "repl",
		Description: "repl <target> starts an interactive session",
		Action:      replAct,
		Args:        cli.Args{},
	}

	app := &cli.Command{
		Name:        "blamc",
		Description: "blamc is a scenario script compiler for Halo engine variants",
		Commands: []*cli.Command{
			compileCmd,
			tokensCmd,
			targetsCmd,
			replCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	target, enc, files, err := splitArgs(c.Args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return errors.New("no input files")
	}

	cc := compiler.New(target, enc)

	for _, a := range files {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		err = cc.ReadSource(ctx, a, text)
		if err != nil {
			return errors.Wrap(err, "load %v", a)
		}
	}

	data, err := cc.Compile(ctx)
	if err != nil {
		printWarnings(err)
		return errors.Wrap(err, "compile")
	}

	warns := make([]diag.Warning, data.Warnings(nil))
	data.Warnings(warns)

	for _, w := range warns {
		fmt.Fprintf(os.Stderr, "%v\n", w)
	}

	fmt.Printf("; target %v: %d script(s), %d global(s), %d node(s)\n", target, data.Scripts(nil), data.Globals(nil), data.Nodes(nil))
	fmt.Printf("%s", front.Unparse(data))

	return nil
}

func tokensAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		forest, err := front.Tokenize(ctx, defs.UTF8, a, text)
		if err != nil {
			return errors.Wrap(err, "tokenize %v", a)
		}

		for i := range forest {
			dumpToken(&forest[i], 0)
		}
	}

	return nil
}

func targetsAct(c *cli.Command) error {
	for _, t := range defs.Targets() {
		fmt.Printf("%v\n", t)
	}

	return nil
}

func replAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	target, _, rest, err := splitArgs(c.Args)
	if err != nil {
		return err
	}

	if len(rest) != 0 {
		return errors.New("unexpected argument: %v", rest[0])
	}

	ln := liner.NewLiner()
	defer ln.Close()

	ln.SetCtrlCAborts(true)

	var decls []string

	for {
		form, err := readForm(ln)
		if err == io.EOF || err == liner.ErrPromptAborted {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read")
		}

		if form == "" {
			continue
		}

		ln.AppendHistory(form)

		isDecl := strings.HasPrefix(form, "(global") || strings.HasPrefix(form, "(script")

		candidate := append(decls[:len(decls):len(decls)], form)
		if !isDecl {
			// wrap a bare expression into a throwaway script
			candidate = append(decls[:len(decls):len(decls)], "(script static void repl "+form+")")
		}

		data, err := eval(ctx, target, candidate)
		if err != nil {
			printWarnings(err)
			fmt.Fprintf(os.Stderr, "%v\n", err)

			continue
		}

		if isDecl {
			decls = candidate
		}

		warns := make([]diag.Warning, data.Warnings(nil))
		data.Warnings(warns)

		for _, w := range warns {
			fmt.Fprintf(os.Stderr, "%v\n", w)
		}

		fmt.Printf("%s", front.Unparse(data))
	}
}

func eval(ctx context.Context, target defs.Target, decls []string) (*ir.Data, error) {
	cc := compiler.New(target, defs.UTF8)

	err := cc.ReadSource(ctx, "repl", []byte(strings.Join(decls, "\n")))
	if err != nil {
		return nil, err
	}

	return cc.Compile(ctx)
}

// readForm reads lines until the parentheses balance.
func readForm(ln *liner.State) (string, error) {
	form := ""
	prompt := "> "

	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", err
		}

		if form == "" {
			form = line
		} else {
			form += "\n" + line
		}

		if balanced(form) {
			return strings.TrimSpace(form), nil
		}

		prompt = ". "
	}
}

// balanced reports whether every parenthesis outside quotes and comments
// is closed.
func balanced(s string) bool {
	depth := 0
	quoted := false
	comment := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case comment:
			if c == '\n' {
				comment = false
			}
		case quoted:
			if c == '"' {
				quoted = false
			}
		case c == '"':
			quoted = true
		case c == ';':
			comment = true
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
	}

	return depth <= 0 && !quoted
}

// splitArgs picks the target and an optional encoding off the front of the
// argument list.
func splitArgs(args cli.Args) (defs.Target, defs.Encoding, []string, error) {
	if len(args) == 0 {
		return 0, 0, nil, errors.New("target expected (one of: %v)", strings.Join(targetList(), ", "))
	}

	target, ok := defs.TargetFromString(args[0])
	if !ok {
		return 0, 0, nil, errors.New("unknown target '%v' (expected one of: %v)", args[0], strings.Join(targetList(), ", "))
	}

	enc := defs.UTF8
	rest := []string(args[1:])

	if len(rest) != 0 {
		if e, ok := defs.EncodingFromString(rest[0]); ok {
			enc = e
			rest = rest[1:]
		}
	}

	return target, enc, rest, nil
}

func targetList() []string {
	ts := defs.Targets()
	names := make([]string, len(ts))

	for i, t := range ts {
		names[i] = t.String()
	}

	return names
}

func dumpToken(tok *front.Token, depth int) {
	indent := strings.Repeat("  ", depth)

	if !tok.Block() {
		fmt.Printf("%s%q\t%v\n", indent, tok.Text, tok.Loc)
		return
	}

	fmt.Printf("%s(\t%v\n", indent, tok.Loc)

	for i := range tok.Children {
		dumpToken(&tok.Children[i], depth+1)
	}

	fmt.Printf("%s)\n", indent)
}

func printWarnings(err error) {
	var e *diag.Error
	if !errors.As(err, &e) {
		return
	}

	for _, w := range e.Warnings {
		fmt.Fprintf(os.Stderr, "%v\n", w)
	}
}
