package front

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blamlang/blam/src/compiler/diag"
	"github.com/blamlang/blam/src/compiler/tp"
)

func parseSrc(tb testing.TB, src string) ([]*scriptDecl, []*globalDecl, error) {
	tb.Helper()

	forest, err := tokenize(tb, src)
	require.NoError(tb, err)

	return parseDecls(forest)
}

func TestParseDecls(t *testing.T) {
	scripts, globals, err := parseSrc(t, `
(Global Short Counter 5)
(script startup Main (sleep 30) (wake helper))
(script static boolean check (= counter 5))
(script stub long price)
(script stub fallback)
`)
	require.NoError(t, err)
	require.Len(t, scripts, 4)
	require.Len(t, globals, 1)

	g := globals[0]
	assert.Equal(t, "counter", g.name)
	assert.Equal(t, tp.Short, g.typ)
	assert.Equal(t, "5", g.init.Text)

	s := scripts[0]
	assert.Equal(t, "main", s.name)
	assert.Equal(t, tp.Startup, s.typ)
	assert.Equal(t, tp.Void, s.ret)
	require.Len(t, s.body, 2)
	assert.True(t, s.body[0].Block())

	s = scripts[1]
	assert.Equal(t, "check", s.name)
	assert.Equal(t, tp.Static, s.typ)
	assert.Equal(t, tp.Boolean, s.ret)
	require.Len(t, s.body, 1)

	s = scripts[2]
	assert.Equal(t, "price", s.name)
	assert.Equal(t, tp.Stub, s.typ)
	assert.Equal(t, tp.Long, s.ret)
	assert.Nil(t, s.body)

	s = scripts[3]
	assert.Equal(t, "fallback", s.name)
	assert.Equal(t, tp.Stub, s.typ)
	assert.Equal(t, tp.Void, s.ret)
}

func TestParseDeclErrors(t *testing.T) {
	longName := strings.Repeat("x", 32)

	for _, tc := range []struct {
		src  string
		kind diag.Kind
		msg  string
	}{
		{"(sleep 30)", diag.Syntax, "expected 'global' or 'script', got 'sleep' instead"},
		{"(global short counter)", diag.Syntax, "incomplete global definition"},
		{"(global short counter 5 6)", diag.Syntax, "extraneous token in global definition (note: globals do not have implicit begin blocks)"},
		{"(global slot counter 5)", diag.Syntax, "expected global value type, got 'slot' instead"},
		{"(global passthrough counter 5)", diag.Syntax, "cannot define 'passthrough' globals"},
		{"(global short (counter) 5)", diag.Syntax, "expected global name, got a block instead"},
		{"(global short " + longName + " 5)", diag.Syntax, "exceeds 31 characters in length"},
		{"(script startup)", diag.Syntax, "incomplete script definition"},
		{"(script turbo main (sleep 1))", diag.Syntax, "expected script type, got 'turbo' instead"},
		{"(script static main (sleep 1))", diag.Syntax, "expected script return value type, got 'main' instead"},
		{"(script static passthrough main 5)", diag.Syntax, "cannot define 'passthrough' scripts"},
		{"(script startup main)", diag.Syntax, "incomplete script definition"},
		{"(script startup (main a) (sleep 1))", diag.Syntax, "script parameters are not supported"},
		{"(script static boolean if 1)", diag.Syntax, "function 'if' cannot be overridden by a script"},
		{"(script startup begin_random (sleep 1))", diag.Syntax, "function 'begin_random' cannot be overridden by a script"},
		{"(script stub)", diag.Syntax, "incomplete script definition"},
		{"(script stub long price (sleep 1))", diag.Syntax, "extraneous token in stub definition (note: stub scripts have no body)"},
	} {
		_, _, err := parseSrc(t, tc.src)
		require.Error(t, err, "%q", tc.src)

		var e *diag.Error
		require.ErrorAs(t, err, &e, "%q", tc.src)
		assert.Equal(t, tc.kind, e.Kind, "%q", tc.src)
		assert.Contains(t, e.Message, tc.msg, "%q", tc.src)
	}
}

func TestReplaceStubs(t *testing.T) {
	scripts, _, err := parseSrc(t, `
(script stub long price)
(script static long price 600)
(script stub boolean lonely)
`)
	require.NoError(t, err)

	kept, err := replaceStubs(scripts)
	require.NoError(t, err)
	require.Len(t, kept, 2)

	assert.Equal(t, tp.Static, kept[0].typ)
	assert.Equal(t, "price", kept[0].name)
	assert.Equal(t, "lonely", kept[1].name)
	assert.Equal(t, tp.Stub, kept[1].typ)
}

func TestReplaceStubErrors(t *testing.T) {
	scripts, _, err := parseSrc(t, `
(script stub long price)
(script startup price (sleep 1))
`)
	require.NoError(t, err)

	_, err = replaceStubs(scripts)
	requireKind(t, err, diag.DuplicateDefinition, "cannot replace stub script 'price' with non-static script")

	scripts, _, err = parseSrc(t, `
(script stub long price)
(script static short price 600)
`)
	require.NoError(t, err)

	_, err = replaceStubs(scripts)
	requireKind(t, err, diag.DuplicateDefinition, "cannot replace stub script 'price' that returns 'long' with static script which returns 'short'")
}

func TestCheckDuplicates(t *testing.T) {
	scripts, globals, err := parseSrc(t, `
(script startup main (sleep 1))
(script startup main (sleep 2))
`)
	require.NoError(t, err)

	err = checkDuplicates(scripts, globals)
	requireKind(t, err, diag.DuplicateDefinition, "multiple scripts 'main' defined")

	scripts, globals, err = parseSrc(t, `
(script startup main (sleep 1))
(global short main 5)
`)
	require.NoError(t, err)

	err = checkDuplicates(scripts, globals)
	requireKind(t, err, diag.DuplicateDefinition, "global 'main' conflicts with an earlier definition of the same name")
}

func requireKind(tb testing.TB, err error, k diag.Kind, msg string) {
	tb.Helper()

	require.Error(tb, err)

	var e *diag.Error
	require.ErrorAs(tb, err, &e)
	assert.Equal(tb, k, e.Kind)
	assert.Contains(tb, e.Message, msg)
}
