package front

import (
	"context"
	"strconv"

	"tlog.app/go/tlog"

	"github.com/blamlang/blam/src/compiler/bitmap"
	"github.com/blamlang/blam/src/compiler/defs"
	"github.com/blamlang/blam/src/compiler/diag"
	"github.com/blamlang/blam/src/compiler/ir"
	"github.com/blamlang/blam/src/compiler/tp"
)

type (
	// astNode is the resolved tree form of one expression. Flattening
	// turns the tree into the indexed node array.
	astNode struct {
		loc   diag.Location
		typ   tp.ValueType
		kind  ir.NodeKind
		data  ir.Payload
		text  string
		ident int32

		args []*astNode
	}

	// callable is a resolved call target: an engine function or a user
	// script posing as a zero-parameter function.
	callable struct {
		fn     *defs.Function
		script int32 // ir.NoIdent for engine functions
	}

	// globalVar is a resolved variable reference target.
	globalVar struct {
		typ  tp.ValueType
		slot int32 // ir.NoIdent for engine globals
	}

	resolver struct {
		tbl *defs.Table
		col *diag.Collector

		scripts []*scriptDecl
		globals []*globalDecl

		scriptByName map[string]callable
		globalByName map[string]globalVar

		scriptUsed bitmap.Big
		globalUsed bitmap.Big

		// curGlobal is the slot of the global whose initializer is being
		// resolved, ir.NoIdent inside script bodies. Referencing a slot at
		// or past it reads a value that is not set yet.
		curGlobal int32

		nodes []ir.Node
	}
)

// setVariableIdent is the identifier the engine expects on the variable
// name argument of a set call.
const setVariableIdent = 0xFFFF

// CompileUnit resolves, type-checks and flattens a parsed unit against the
// builtin table. forests holds one token forest per loaded file, in load
// order.
func CompileUnit(ctx context.Context, tbl *defs.Table, files []string, forests [][]Token) (_ *ir.Data, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile_unit", "target", tbl.Target(), "files", len(files))
	defer tr.Finish("err", &err)

	var scripts []*scriptDecl
	var globals []*globalDecl

	for _, forest := range forests {
		ss, gg, err := parseDecls(forest)
		if err != nil {
			return nil, err
		}

		scripts = append(scripts, ss...)
		globals = append(globals, gg...)
	}

	scripts, err = replaceStubs(scripts)
	if err != nil {
		return nil, err
	}

	err = checkDuplicates(scripts, globals)
	if err != nil {
		return nil, err
	}

	if len(scripts) > defs.MaxIndex {
		s := scripts[defs.MaxIndex]
		return nil, diag.Errorf(diag.IdentifierSpaceExhausted, s.loc, "maximum script limit of %d exceeded (%d / %d)", defs.MaxIndex, len(scripts), defs.MaxIndex)
	}

	if len(globals) > defs.MaxIndex {
		g := globals[defs.MaxIndex]
		return nil, diag.Errorf(diag.IdentifierSpaceExhausted, g.loc, "maximum global limit of %d exceeded (%d / %d)", defs.MaxIndex, len(globals), defs.MaxIndex)
	}

	r := newResolver(tbl, scripts, globals)

	globalAST := make([]*astNode, len(globals))

	for i, g := range globals {
		r.curGlobal = int32(i)

		globalAST[i], err = r.resolveInitializer(g)
		if err != nil {
			return nil, r.col.Attach(err)
		}
	}

	r.curGlobal = ir.NoIdent

	scriptAST := make([]*astNode, len(scripts))

	for i, s := range scripts {
		scriptAST[i], err = r.resolveBody(s)
		if err != nil {
			return nil, r.col.Attach(err)
		}
	}

	r.warnUnused()

	scriptsOut := make([]ir.Script, len(scripts))

	for i, s := range scripts {
		first := ir.NoNode
		if scriptAST[i] != nil {
			first = r.flatten(scriptAST[i])
		}

		scriptsOut[i] = ir.Script{Name: s.name, Loc: s.loc, Type: s.typ, Return: s.ret, First: first}
	}

	globalsOut := make([]ir.Global, len(globals))

	for i, g := range globals {
		globalsOut[i] = ir.Global{Name: g.name, Loc: g.loc, Type: g.typ, First: r.flatten(globalAST[i])}
	}

	if tr.If("usage") {
		tr.Printw("identifier usage", "scripts", &r.scriptUsed, "globals", &r.globalUsed)
	}

	tr.Printw("compiled unit", "scripts", len(scriptsOut), "scripts_used", r.scriptUsed.Size(), "globals", len(globalsOut), "globals_used", r.globalUsed.Size(), "nodes", len(r.nodes), "warnings", len(r.col.Warnings()))

	return ir.NewData(r.nodes, scriptsOut, globalsOut, files, r.col.Warnings()), nil
}

func newResolver(tbl *defs.Table, scripts []*scriptDecl, globals []*globalDecl) *resolver {
	r := &resolver{
		tbl:          tbl,
		col:          &diag.Collector{},
		scripts:      scripts,
		globals:      globals,
		scriptByName: make(map[string]callable, len(scripts)),
		globalByName: make(map[string]globalVar, len(globals)),
		scriptUsed:   bitmap.Make(),
		globalUsed:   bitmap.Make(),
		curGlobal:    ir.NoIdent,
	}

	for i, s := range scripts {
		r.scriptByName[s.name] = callable{
			fn:     &defs.Function{Name: s.name, Return: s.ret},
			script: int32(i),
		}
	}

	for i, g := range globals {
		r.globalByName[g.name] = globalVar{typ: g.typ, slot: int32(i)}
	}

	return r
}

// function resolves a call target. User scripts shadow engine functions.
func (r *resolver) function(name string) (callable, bool) {
	if c, ok := r.scriptByName[name]; ok {
		return c, true
	}

	if f, ok := r.tbl.Function(name); ok {
		return callable{fn: f, script: ir.NoIdent}, true
	}

	return callable{}, false
}

// variable resolves a global reference. User globals shadow engine globals.
func (r *resolver) variable(name string) (globalVar, bool) {
	if g, ok := r.globalByName[name]; ok {
		return g, true
	}

	if g, ok := r.tbl.Global(name); ok {
		return globalVar{typ: g.Type, slot: ir.NoIdent}, true
	}

	return globalVar{}, false
}

// resolveBody resolves a script body as an implicit begin form with the
// declared return type expected of the last expression. Stubs have no
// body and produce no nodes.
func (r *resolver) resolveBody(s *scriptDecl) (*astNode, error) {
	if s.typ == tp.Stub {
		return nil, nil
	}

	blk := Token{
		Loc:      s.loc,
		Children: append([]Token{{Loc: s.loc, Text: "begin"}}, s.body...),
	}

	return r.resolveCall(&blk, s.ret)
}

// resolveInitializer resolves a global initializer expression directly
// against the declared type, with no implicit begin wrapper.
func (r *resolver) resolveInitializer(g *globalDecl) (*astNode, error) {
	if g.init.Block() {
		return r.resolveCall(&g.init, g.typ)
	}

	return r.resolveAtom(&g.init, g.typ, false)
}

func (r *resolver) resolveExpr(tok *Token, expected tp.ValueType) (*astNode, error) {
	if tok.Block() {
		return r.resolveCall(tok, expected)
	}

	return r.resolveAtom(tok, expected, false)
}

// resolveAtom resolves a bare word: a global reference if the name is
// declared, a literal of the expected type otherwise. Under Passthrough
// the literal is left unparsed until the call resolves its passthrough
// type.
func (r *resolver) resolveAtom(tok *Token, expected tp.ValueType, keepCase bool) (*astNode, error) {
	name := lower(tok.Text)

	if g, ok := r.variable(name); ok {
		typ := g.typ

		if expected != tp.Passthrough {
			if !g.typ.ConvertibleTo(expected) {
				return nil, diag.Errorf(diag.TypeMismatch, tok.Loc, "global '%s' is '%v' which cannot convert to '%v'", name, g.typ, expected)
			}

			typ = expected
		}

		if g.slot != ir.NoIdent {
			r.globalUsed.Set(int(g.slot))

			if r.curGlobal != ir.NoIdent && g.slot >= r.curGlobal {
				r.col.Warnf(tok.Loc, "use of uninitialized global '%s'", name)
			}
		}

		return &astNode{loc: tok.Loc, typ: typ, kind: ir.GlobalRef, text: name, ident: g.slot}, nil
	}

	if expected == tp.Passthrough {
		return &astNode{loc: tok.Loc, typ: tp.Unparsed, kind: ir.Primitive, text: tok.Text, ident: ir.NoIdent}, nil
	}

	return r.parseLiteral(tok, expected, keepCase)
}

func (r *resolver) resolveCall(tok *Token, expected tp.ValueType) (*astNode, error) {
	head := &tok.Children[0]
	if head.Block() {
		return nil, diag.Errorf(diag.Syntax, head.Loc, "expected function name, got a block instead")
	}

	name := lower(head.Text)
	args := tok.Children[1:]

	if name == "cond" {
		return r.resolveCond(tok, args, expected)
	}

	c, ok := r.function(name)
	if !ok {
		return nil, diag.Errorf(diag.UnknownIdentifier, tok.Loc, "function '%s' is not defined", name)
	}

	fn := c.fn

	if min := fn.MinParams(); len(args) < min {
		return nil, diag.Errorf(diag.Arity, tok.Loc, "function '%s' takes at least %d parameter(s), got %d instead", name, min, len(args))
	}

	// User scripts may shadow the engine set function, so the special
	// handling applies to the engine builtin only.
	isSet := name == "set" && c.script == ir.NoIdent

	// The passthrough type is pinned up front when the variable of a set
	// call or the caller's expectation determines it, and inferred from
	// the arguments otherwise.
	passthrough := tp.Unparsed
	havePassthrough := false

	switch {
	case isSet:
		if args[0].Block() {
			return nil, diag.Errorf(diag.Syntax, tok.Loc, "function 'set' cannot take a block as the variable name")
		}

		gname := lower(args[0].Text)

		g, ok := r.variable(gname)
		if !ok {
			return nil, diag.Errorf(diag.UnknownIdentifier, tok.Loc, "parameter '%s' is not a global variable name", gname)
		}

		passthrough, havePassthrough = g.typ, true
	case fn.Return == tp.Passthrough && expected != tp.Passthrough:
		passthrough, havePassthrough = expected, true
	}

	nodes := make([]*astNode, 0, len(args))

	var deferred []int

	for i := range args {
		arg := &args[i]

		ptype, ok := fn.ParamType(i)
		if !ok {
			return nil, diag.Errorf(diag.Arity, arg.Loc, "function '%s' takes at most %d parameter(s) but extraneous parameter(s) were given", name, len(fn.Params))
		}

		isPassthrough := false

		if ptype == tp.Passthrough {
			switch {
			case fn.PassthroughLast && i+1 != len(args):
				// evaluated for effect only
				ptype = tp.Void
			case havePassthrough:
				ptype = passthrough
			default:
				isPassthrough = true
			}
		}

		var n *astNode
		var err error

		if arg.Block() {
			if isPassthrough {
				n, err = r.resolveCall(arg, tp.Passthrough)
			} else {
				n, err = r.resolveCall(arg, ptype)
			}
		} else {
			if isPassthrough {
				n, err = r.resolveAtom(arg, tp.Passthrough, false)
			} else {
				n, err = r.resolveAtom(arg, ptype, fn.UppercaseAllowed(i))
			}
		}
		if err != nil {
			return nil, err
		}

		if isPassthrough {
			if n.typ != tp.Unparsed && n.typ != tp.Passthrough {
				passthrough, havePassthrough = n.typ, true
			}

			deferred = append(deferred, i)
		}

		nodes = append(nodes, n)
	}

	if !havePassthrough {
		passthrough = tp.Real
	}

	numeric := passthrough.ConvertibleTo(tp.Real)

	if fn.NumberPassthrough && !numeric {
		return nil, diag.Errorf(diag.TypeMismatch, tok.Loc, "passthrough parameters resolve to '%v', but function '%s' takes only numeric parameters", passthrough, name)
	}

	if fn.Inequality && !numeric && passthrough != tp.GameDifficulty && passthrough != tp.Team {
		return nil, diag.Errorf(diag.TypeMismatch, tok.Loc, "passthrough parameters resolve to '%v', but function '%s' is an inequality operator", passthrough, name)
	}

	// Arguments that were waiting on the passthrough type get parsed or
	// retyped now.
	for _, i := range deferred {
		n := nodes[i]

		switch {
		case n.kind == ir.Primitive && n.typ == tp.Unparsed:
			nn, err := r.parseLiteral(&args[i], passthrough, fn.UppercaseAllowed(i))
			if err != nil {
				return nil, err
			}

			nodes[i] = nn
		case n.typ == tp.Passthrough:
			n.typ = passthrough
		}
	}

	if isSet {
		nodes[0].ident = setVariableIdent
	}

	// A call adopts the type the context expects, but only if what the
	// function actually produces can convert to it.
	natural := fn.Return
	if natural == tp.Passthrough {
		natural = passthrough
	}

	if expected != tp.Passthrough && !natural.ConvertibleTo(expected) {
		return nil, diag.Errorf(diag.TypeMismatch, tok.Loc, "function '%s' returns '%v' which cannot convert to '%v'", name, natural, expected)
	}

	typ := expected
	if expected == tp.Passthrough {
		typ = natural
	}

	kind, ident := ir.FunctionCall, fn.Availability.IndexFor(r.tbl.Target())

	if ident >= defs.MaxIndex {
		return nil, diag.Errorf(diag.IdentifierSpaceExhausted, tok.Loc, "maximum builtin index limit of %d exceeded by function '%s' (%d)", defs.MaxIndex, name, ident)
	}

	if c.script != ir.NoIdent {
		kind, ident = ir.ScriptCall, c.script
		r.scriptUsed.Set(int(c.script))
	}

	return &astNode{loc: tok.Loc, typ: typ, kind: kind, text: name, ident: ident, args: nodes}, nil
}

// resolveCond desugars (cond (c1 e1...) (c2 e2...) ...) into nested
// (if c1 (begin e1...) (if c2 (begin e2...) ...)) token forms and resolves
// the result.
func (r *resolver) resolveCond(tok *Token, args []Token, expected tp.ValueType) (*astNode, error) {
	if len(args) == 0 {
		return nil, diag.Errorf(diag.Syntax, tok.Loc, "cond requires at least one set of expressions")
	}

	branches := make([]Token, 0, len(args))

	for i := range args {
		arg := &args[i]
		if !arg.Block() || len(arg.Children) < 2 {
			return nil, diag.Errorf(diag.Syntax, arg.Loc, "cond requires each parameter to be (<condition> <expression(s)>)")
		}

		exprs := arg.Children[1:]

		begin := Token{
			Loc:      exprs[0].Loc,
			Children: append([]Token{{Loc: exprs[0].Loc, Text: "begin"}}, exprs...),
		}

		branches = append(branches, Token{
			Loc:      arg.Loc,
			Children: []Token{{Loc: arg.Loc, Text: "if"}, arg.Children[0], begin},
		})
	}

	for i := len(branches) - 1; i > 0; i-- {
		branches[i-1].Children = append(branches[i-1].Children, branches[i])
	}

	return r.resolveCall(&branches[0], expected)
}

// parseLiteral parses a bare word as a value of the given concrete type.
func (r *resolver) parseLiteral(tok *Token, typ tp.ValueType, keepCase bool) (*astNode, error) {
	text := lower(tok.Text)
	if keepCase {
		text = tok.Text
	}

	n := &astNode{loc: tok.Loc, typ: typ, kind: ir.Primitive, ident: ir.NoIdent}

	switch typ {
	case tp.Boolean:
		switch text {
		case "0", "false", "off":
			n.data = ir.Payload{Kind: ir.PayloadBool, Bool: false}
		case "1", "true", "on":
			n.data = ir.Payload{Kind: ir.PayloadBool, Bool: true}
		default:
			return nil, r.complain(tok, text, typ, "0/1/false/true/off/on")
		}
	case tp.Short:
		v, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return nil, r.complain(tok, text, typ, "integer between [-32768,32767]")
		}

		n.data = ir.Payload{Kind: ir.PayloadShort, Short: int16(v)}
	case tp.Long:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, r.complain(tok, text, typ, "integer between [-2147483648,2147483647]")
		}

		n.data = ir.Payload{Kind: ir.PayloadLong, Long: int32(v)}
	case tp.Real:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, r.complain(tok, text, typ, "numeric value")
		}

		n.data = ir.Payload{Kind: ir.PayloadReal, Real: float32(v)}
	case tp.GameDifficulty:
		v, ok := gameDifficulties[text]
		if !ok {
			return nil, r.complain(tok, text, typ, "easy/normal/hard/impossible")
		}

		n.data = ir.Payload{Kind: ir.PayloadShort, Short: v}
		n.text = text
	case tp.Team:
		v, ok := teams[text]
		if !ok {
			return nil, r.complain(tok, text, typ, "default/player/human/covenant/flood/sentinel/unused6/unused7/unused8/unused9")
		}

		n.data = ir.Payload{Kind: ir.PayloadShort, Short: v}
		n.text = text
	case tp.Script:
		c, ok := r.function(text)
		if !ok {
			return nil, r.complain(tok, text, typ, "script name")
		}

		if c.script == ir.NoIdent {
			return nil, diag.Errorf(diag.UnknownIdentifier, tok.Loc, "no script '%s' defined (a function is defined by this name, but it cannot be used here)", text)
		}

		r.scriptUsed.Set(int(c.script))

		// the wire field is 16 bits read unsigned, so indices past 32767
		// reinterpret as negative here
		n.data = ir.Payload{Kind: ir.PayloadShort, Short: int16(c.script)}
		n.text = text
	case tp.Void:
		return nil, r.complain(tok, text, typ, "function call or global")
	default:
		// engine object names, strings and the like stay textual
		n.text = text
	}

	return n, nil
}

func (r *resolver) complain(tok *Token, text string, typ tp.ValueType, allowed string) error {
	if _, ok := r.function(text); ok {
		return diag.Errorf(diag.LiteralFormat, tok.Loc, "cannot parse token '%s' as %v and no global of this name defined; did you mean to call '(%s)' as a function?", text, typ, text)
	}

	return diag.Errorf(diag.LiteralFormat, tok.Loc, "cannot parse token '%s' as %v and no global of this name defined (expected %s)", text, typ, allowed)
}

// warnUnused reports declarations nothing in the unit refers to. Scripts
// the engine invokes on its own are always considered used.
func (r *resolver) warnUnused() {
	for i, g := range r.globals {
		if !r.globalUsed.IsSet(i) {
			r.col.Warnf(g.loc, "global '%s' is defined but never used", g.name)
		}
	}

	for i, s := range r.scripts {
		if r.scriptUsed.IsSet(i) || s.typ == tp.Startup || s.typ == tp.Dormant || s.typ == tp.Continuous {
			continue
		}

		r.col.Warnf(s.loc, "script '%s' is defined but never used", s.name)
	}
}

// flatten appends the tree to the node array in document order. A call
// node's payload becomes the index of its first argument and arguments are
// chained through their sibling links.
func (r *resolver) flatten(n *astNode) int32 {
	at := int32(len(r.nodes))

	r.nodes = append(r.nodes, ir.Node{
		Loc:   n.loc,
		Type:  n.typ,
		Kind:  n.kind,
		Data:  n.data,
		Text:  n.text,
		Ident: n.ident,
		Next:  ir.NoNode,
	})

	if !n.kind.IsCall() {
		return at
	}

	first := ir.NoNode
	prev := ir.NoNode

	for _, a := range n.args {
		i := r.flatten(a)

		if prev == ir.NoNode {
			first = i
		} else {
			r.nodes[prev].Next = i
		}

		prev = i
	}

	r.nodes[at].Data = ir.Payload{Kind: ir.PayloadNode, Node: first}

	return at
}

var gameDifficulties = map[string]int16{
	"easy":       0,
	"normal":     1,
	"hard":       2,
	"impossible": 3,
}

var teams = map[string]int16{
	"default":  0,
	"player":   1,
	"human":    2,
	"covenant": 3,
	"flood":    4,
	"sentinel": 5,
	"unused6":  6,
	"unused7":  7,
	"unused8":  8,
	"unused9":  9,
}
