package front

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blamlang/blam/src/compiler/defs"
	"github.com/blamlang/blam/src/compiler/diag"
	"github.com/blamlang/blam/src/compiler/ir"
	"github.com/blamlang/blam/src/compiler/tp"
)

func compileSrc(tb testing.TB, target defs.Target, src string) (*ir.Data, error) {
	tb.Helper()

	forest, err := Tokenize(context.Background(), defs.UTF8, "test.hsc", []byte(src))
	require.NoError(tb, err)

	return CompileUnit(context.Background(), defs.TableForTarget(target), []string{"test.hsc"}, [][]Token{forest})
}

func nodesOf(tb testing.TB, d *ir.Data) []ir.Node {
	tb.Helper()

	nodes := make([]ir.Node, d.Nodes(nil))
	d.Nodes(nodes)

	return nodes
}

// stripLocs zeroes source locations so node graphs from different source
// layouts compare equal.
func stripLocs(nodes []ir.Node) []ir.Node {
	out := make([]ir.Node, len(nodes))

	for i, n := range nodes {
		n.Loc = diag.Location{}
		out[i] = n
	}

	return out
}

func TestCompileFlatten(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, "(script startup main (sleep 30))")
	require.NoError(t, err)

	require.Equal(t, 1, d.Scripts(nil))
	require.Equal(t, 3, d.Nodes(nil))
	assert.Equal(t, 0, d.Warnings(nil))

	s := d.ScriptAt(0)
	assert.Equal(t, "main", s.Name)
	assert.Equal(t, tp.Startup, s.Type)
	assert.Equal(t, tp.Void, s.Return)
	require.Equal(t, int32(0), s.First)

	// the implicit begin wrapping the body
	root := d.NodeAt(0)
	assert.Equal(t, ir.FunctionCall, root.Kind)
	assert.Equal(t, tp.Void, root.Type)
	assert.Equal(t, "begin", root.Text)
	assert.Equal(t, int32(0), root.Ident)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadNode, Node: 1}, root.Data)
	assert.Equal(t, ir.NoNode, root.Next)

	call := d.NodeAt(1)
	assert.Equal(t, ir.FunctionCall, call.Kind)
	assert.Equal(t, "sleep", call.Text)
	assert.Equal(t, int32(21), call.Ident)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadNode, Node: 2}, call.Data)
	assert.Equal(t, ir.NoNode, call.Next)

	arg := d.NodeAt(2)
	assert.Equal(t, ir.Primitive, arg.Kind)
	assert.Equal(t, tp.Short, arg.Type)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadShort, Short: 30}, arg.Data)
	assert.Equal(t, ir.NoIdent, arg.Ident)
	assert.Equal(t, ir.NoNode, arg.Next)
}

func TestCompileSet(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, `
(global short counter 0)
(script startup main (set counter 5))
`)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Warnings(nil))

	// scripts flatten before globals
	set := d.NodeAt(1)
	assert.Equal(t, ir.FunctionCall, set.Kind)
	assert.Equal(t, "set", set.Text)
	assert.Equal(t, int32(4), set.Ident)

	v := d.NodeAt(set.Data.Node)
	assert.Equal(t, ir.GlobalRef, v.Kind)
	assert.Equal(t, tp.Short, v.Type)
	assert.Equal(t, "counter", v.Text)
	assert.Equal(t, int32(0xFFFF), v.Ident)

	val := d.NodeAt(v.Next)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadShort, Short: 5}, val.Data)

	g := d.GlobalAt(0)
	assert.Equal(t, "counter", g.Name)
	assert.Equal(t, tp.Short, g.Type)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadShort, Short: 0}, d.NodeAt(g.First).Data)
}

func TestCompileGlobalRef(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, `
(global boolean flag on)
(script static boolean probe flag)
(script startup main (sleep_until (probe)))
`)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Warnings(nil))

	// probe's body: begin at 0, the flag reference at 1
	ref := d.NodeAt(1)
	assert.Equal(t, ir.GlobalRef, ref.Kind)
	assert.Equal(t, tp.Boolean, ref.Type)
	assert.Equal(t, "flag", ref.Text)
	assert.Equal(t, int32(0), ref.Ident)

	g := d.GlobalAt(0)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadBool, Bool: true}, d.NodeAt(g.First).Data)
}

func TestCompileEngineGlobal(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, "(script static short devmode developer_mode)")
	require.NoError(t, err)

	ref := d.NodeAt(1)
	assert.Equal(t, ir.GlobalRef, ref.Kind)
	assert.Equal(t, "developer_mode", ref.Text)
	assert.Equal(t, ir.NoIdent, ref.Ident)

	// the script itself is static and uncalled
	assert.Equal(t, 1, d.Warnings(nil))
}

func TestCompileStub(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, `
(script stub long price)
(script startup main (sleep (price)))
`)
	require.Error(t, err)
	assert.Nil(t, d)

	requireKind(t, err, diag.TypeMismatch, "function 'price' returns 'long' which cannot convert to 'short'")

	d, err = compileSrc(t, defs.HaloCustomEdition, `
(script stub long price)
(script static long cost (price))
`)
	require.NoError(t, err)

	s := d.ScriptAt(0)
	assert.Equal(t, tp.Stub, s.Type)
	assert.Equal(t, ir.NoNode, s.First)

	call := d.NodeAt(d.ScriptAt(1).First)
	arg := d.NodeAt(call.Data.Node)
	assert.Equal(t, ir.ScriptCall, arg.Kind)
	assert.Equal(t, "price", arg.Text)
	assert.Equal(t, int32(0), arg.Ident)
}

func TestCompileWarnings(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, `
(global short a b)
(global short b 1)
`)
	require.NoError(t, err)

	warns := make([]diag.Warning, d.Warnings(nil))
	d.Warnings(warns)
	require.Len(t, warns, 2)

	assert.Contains(t, warns[0].Message, "use of uninitialized global 'b'")
	assert.Equal(t, 2, warns[0].Loc.Line)
	assert.Contains(t, warns[1].Message, "global 'a' is defined but never used")

	d, err = compileSrc(t, defs.HaloCustomEdition, "(script static void helper (game_save))")
	require.NoError(t, err)

	warns = make([]diag.Warning, d.Warnings(nil))
	d.Warnings(warns)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0].Message, "script 'helper' is defined but never used")
}

func TestCompileReturnMismatch(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, `
(script static string greet "hello")
(script static long num (greet))
`)
	requireKind(t, err, diag.TypeMismatch, "function 'greet' returns 'string' which cannot convert to 'long'")
}

func TestCompileArity(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, "(script startup main (sleep))")
	requireKind(t, err, diag.Arity, "function 'sleep' takes at least 1 parameter(s), got 0 instead")

	_, err = compileSrc(t, defs.HaloCustomEdition, `
(script dormant helper (game_save))
(script startup main (sleep 1 helper extra))
`)
	requireKind(t, err, diag.Arity, "function 'sleep' takes at most 2 parameter(s) but extraneous parameter(s) were given")
}

func TestCompileUnknownFunction(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, "(script startup main\n  (warble 1))")
	requireKind(t, err, diag.UnknownIdentifier, "function 'warble' is not defined")

	var e *diag.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Loc.Line)
}

func TestCompileNumberPassthrough(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, "(script static real math (* (game_difficulty_get) (game_difficulty_get)))")
	requireKind(t, err, diag.TypeMismatch, "passthrough parameters resolve to 'game difficulty', but function '*' takes only numeric parameters")
}

func TestCompileInequality(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, "(script startup main (sleep_until (< (game_difficulty_get) hard)))")
	require.NoError(t, err)

	nodes := nodesOf(t, d)

	var lit *ir.Node

	for i := range nodes {
		if nodes[i].Text == "hard" {
			lit = &nodes[i]
		}
	}

	require.NotNil(t, lit)
	assert.Equal(t, ir.Primitive, lit.Kind)
	assert.Equal(t, tp.GameDifficulty, lit.Type)
	assert.Equal(t, ir.Payload{Kind: ir.PayloadShort, Short: 2}, lit.Data)
}

func TestCompileLiteralErrors(t *testing.T) {
	for _, tc := range []struct {
		src  string
		kind diag.Kind
		msg  string
	}{
		{"(global boolean flag maybe)", diag.LiteralFormat, "cannot parse token 'maybe' as boolean and no global of this name defined (expected 0/1/false/true/off/on)"},
		{"(global short counter 40000)", diag.LiteralFormat, "integer between [-32768,32767]"},
		{"(global long counter 3000000000)", diag.LiteralFormat, "integer between [-2147483648,2147483647]"},
		{"(global real ratio abc)", diag.LiteralFormat, "numeric value"},
		{"(script startup main foo (sleep 1))", diag.LiteralFormat, "cannot parse token 'foo' as void and no global of this name defined (expected function call or global)"},
		{"(script startup main sleep (sleep 1))", diag.LiteralFormat, "did you mean to call '(sleep)' as a function?"},
		{"(script startup main (wake sleep))", diag.UnknownIdentifier, "no script 'sleep' defined (a function is defined by this name, but it cannot be used here)"},
	} {
		_, err := compileSrc(t, defs.HaloCustomEdition, tc.src)
		requireKind(t, err, tc.kind, tc.msg)
	}
}

func TestCompileSetErrors(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, "(script startup main (set (game_difficulty_get) 1))")
	requireKind(t, err, diag.Syntax, "function 'set' cannot take a block as the variable name")

	_, err = compileSrc(t, defs.HaloCustomEdition, "(script startup main (set unknown 1))")
	requireKind(t, err, diag.UnknownIdentifier, "parameter 'unknown' is not a global variable name")
}

func TestCompileCond(t *testing.T) {
	cond, err := compileSrc(t, defs.HaloCustomEdition, `
(global short counter 0)
(script startup main
  (cond
    ((= counter 0) (game_save))
    ((= counter 1) (sleep 30) (game_revert))))
`)
	require.NoError(t, err)

	ifs, err := compileSrc(t, defs.HaloCustomEdition, `
(global short counter 0)
(script startup main
  (if (= counter 0)
    (begin (game_save))
    (if (= counter 1)
      (begin (sleep 30) (game_revert)))))
`)
	require.NoError(t, err)

	assert.Equal(t, stripLocs(nodesOf(t, ifs)), stripLocs(nodesOf(t, cond)))
}

func TestCompileCondErrors(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, "(script startup main (cond))")
	requireKind(t, err, diag.Syntax, "cond requires at least one set of expressions")

	_, err = compileSrc(t, defs.HaloCustomEdition, "(script startup main (cond (1)))")
	requireKind(t, err, diag.Syntax, "cond requires each parameter to be (<condition> <expression(s)>)")
}

func TestCompileTargets(t *testing.T) {
	src := "(script startup main (game_save))"

	mcc, err := compileSrc(t, defs.HaloCEA, src)
	require.NoError(t, err)

	gbx, err := compileSrc(t, defs.HaloCustomEdition, src)
	require.NoError(t, err)

	assert.Equal(t, int32(577), mcc.NodeAt(0).Ident)
	assert.Equal(t, int32(604), mcc.NodeAt(1).Ident)

	assert.Equal(t, int32(0), gbx.NodeAt(0).Ident)
	assert.Equal(t, int32(30), gbx.NodeAt(1).Ident)
}

func TestCompileDeterministic(t *testing.T) {
	src := `
(global short counter 0)
(script static boolean check (= counter 1))
(script startup main
  (if (check) (print "All good") (sleep 30 main))
  (set counter 5))
`

	a, err := compileSrc(t, defs.HaloCustomEdition, src)
	require.NoError(t, err)

	b, err := compileSrc(t, defs.HaloCustomEdition, src)
	require.NoError(t, err)

	assert.Equal(t, nodesOf(t, a), nodesOf(t, b))
}

func TestCompileUnparseRoundTrip(t *testing.T) {
	d, err := compileSrc(t, defs.HaloCustomEdition, `
(global short counter 0)
(script static boolean check (= counter 1))
(script startup main
  (if (check) (print "All good") (sleep 30 main))
  (set counter 5))
`)
	require.NoError(t, err)

	text := Unparse(d)

	again, err := compileSrc(t, defs.HaloCustomEdition, string(text))
	require.NoError(t, err, "%s", text)

	assert.Equal(t, stripLocs(nodesOf(t, d)), stripLocs(nodesOf(t, again)), "%s", text)
}

func TestCompileGlobalLimit(t *testing.T) {
	var b strings.Builder

	for i := 0; i <= defs.MaxIndex; i++ {
		fmt.Fprintf(&b, "(global short g%d 0)\n", i)
	}

	_, err := compileSrc(t, defs.HaloCustomEdition, b.String())
	requireKind(t, err, diag.IdentifierSpaceExhausted, "maximum global limit of 65536 exceeded (65537 / 65536)")
}

func TestCompileBuiltinIndexLimit(t *testing.T) {
	tbl := defs.NewTable(defs.HaloCustomEdition, []*defs.Function{
		{Name: "begin", Return: tp.Passthrough, Params: []defs.Param{{Type: tp.Passthrough, Many: true, Optional: true}}, PassthroughLast: true},
		{Name: "blip", Return: tp.Void, Availability: defs.Availability{GBXCustom: 70000}},
	}, nil)

	forest, err := Tokenize(context.Background(), defs.UTF8, "test.hsc", []byte("(script startup main (blip))"))
	require.NoError(t, err)

	_, err = CompileUnit(context.Background(), tbl, []string{"test.hsc"}, [][]Token{forest})
	requireKind(t, err, diag.IdentifierSpaceExhausted, "maximum builtin index limit of 65536 exceeded by function 'blip' (70000)")
}

func TestCompileScriptIndexPayloadWraps(t *testing.T) {
	var b strings.Builder

	for i := 0; i < 40000; i++ {
		fmt.Fprintf(&b, "(script stub s%d)\n", i)
	}

	b.WriteString("(script startup main (wake s39999))")

	d, err := compileSrc(t, defs.HaloCustomEdition, b.String())
	require.NoError(t, err)

	wake := d.NodeAt(d.NodeAt(d.ScriptAt(40000).First).Data.Node)
	require.Equal(t, "wake", wake.Text)

	arg := d.NodeAt(wake.Data.Node)
	assert.Equal(t, tp.Script, arg.Type)
	assert.Equal(t, "s39999", arg.Text)

	// negative as a signed short, the exact index read unsigned
	assert.EqualValues(t, -25537, arg.Data.Short)
	assert.EqualValues(t, 39999, uint16(arg.Data.Short))
}

func TestCompileWarningsOnFatal(t *testing.T) {
	_, err := compileSrc(t, defs.HaloCustomEdition, `
(global short a a)
(global short b (warble))
`)
	requireKind(t, err, diag.UnknownIdentifier, "function 'warble' is not defined")

	var e *diag.Error
	require.ErrorAs(t, err, &e)
	require.Len(t, e.Warnings, 1)
	assert.Contains(t, e.Warnings[0].Message, "use of uninitialized global 'a'")
}
