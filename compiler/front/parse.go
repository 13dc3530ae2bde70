package front

import (
	"strings"

	"github.com/blamlang/blam/src/compiler/defs"
	"github.com/blamlang/blam/src/compiler/diag"
	"github.com/blamlang/blam/src/compiler/tp"
)

type (
	scriptDecl struct {
		name string
		typ  tp.ScriptType
		ret  tp.ValueType
		loc  diag.Location

		body []Token
	}

	globalDecl struct {
		name string
		typ  tp.ValueType
		loc  diag.Location

		init Token
	}
)

// parseDecls validates the surface grammar of every top-level form and
// splits one file's forest into script and global declarations.
// Identifiers are not resolved here, and stub replacement and duplicate
// checks happen later over the whole unit.
func parseDecls(forest []Token) (scripts []*scriptDecl, globals []*globalDecl, err error) {
	for i := range forest {
		tok := &forest[i]

		switch kind := lower(tok.Children[0].Text); kind {
		case "global":
			var g *globalDecl

			g, err = parseGlobal(tok)
			if err != nil {
				return nil, nil, err
			}

			globals = append(globals, g)
		case "script":
			var s *scriptDecl

			s, err = parseScript(tok)
			if err != nil {
				return nil, nil, err
			}

			scripts = append(scripts, s)
		default:
			return nil, nil, diag.Errorf(diag.Syntax, tok.Children[0].Loc, "expected 'global' or 'script', got '%s' instead", kind)
		}
	}

	return scripts, globals, nil
}

func parseGlobal(tok *Token) (*globalDecl, error) {
	children := tok.Children

	switch {
	case len(children) < 4:
		return nil, diag.Errorf(diag.Syntax, tok.Loc, "incomplete global definition, expected (global <type> <name> <expression>)")
	case len(children) > 4:
		return nil, diag.Errorf(diag.Syntax, children[4].Loc, "extraneous token in global definition (note: globals do not have implicit begin blocks)")
	}

	typeName := lower(children[1].Text)

	typ, ok := tp.FromSpelling(typeName)
	if !ok {
		return nil, diag.Errorf(diag.Syntax, children[1].Loc, "expected global value type, got '%s' instead", typeName)
	}

	if typ == tp.Passthrough {
		return nil, diag.Errorf(diag.Syntax, children[1].Loc, "cannot define '%s' globals", typeName)
	}

	if children[2].Block() {
		return nil, diag.Errorf(diag.Syntax, children[2].Loc, "expected global name, got a block instead")
	}

	name := lower(children[2].Text)

	err := checkName(name, children[2].Loc)
	if err != nil {
		return nil, err
	}

	return &globalDecl{
		name: name,
		typ:  typ,
		loc:  tok.Loc,
		init: children[3],
	}, nil
}

func parseScript(tok *Token) (*scriptDecl, error) {
	children := tok.Children
	if len(children) < 2 {
		return nil, diag.Errorf(diag.Syntax, tok.Loc, "incomplete script definition, expected script type after 'script'")
	}

	typeName := lower(children[1].Text)

	styp, ok := tp.ScriptTypeFromSpelling(typeName)
	if !ok {
		return nil, diag.Errorf(diag.Syntax, children[1].Loc, "expected script type, got '%s' instead", typeName)
	}

	if styp == tp.Stub {
		return parseStub(tok, children)
	}

	// startup, dormant and continuous scripts have no return type in
	// source; static scripts declare one.
	ret := tp.Void
	nameAt := 2

	if !styp.AlwaysReturnsVoid() {
		if len(children) < 4 {
			return nil, diag.Errorf(diag.Syntax, tok.Loc, "incomplete script definition, expected (script %s <return type> <name> <expression(s)>)", typeName)
		}

		retName := lower(children[2].Text)

		ret, ok = tp.FromSpelling(retName)
		if !ok {
			return nil, diag.Errorf(diag.Syntax, children[2].Loc, "expected script return value type, got '%s' instead", retName)
		}

		if ret == tp.Passthrough {
			return nil, diag.Errorf(diag.Syntax, children[2].Loc, "cannot define '%s' scripts", retName)
		}

		nameAt = 3
	}

	if len(children) < nameAt+2 {
		return nil, diag.Errorf(diag.Syntax, tok.Loc, "incomplete script definition, expected (script %s <name> <expression(s)>)", typeName)
	}

	name, err := scriptName(&children[nameAt])
	if err != nil {
		return nil, err
	}

	return &scriptDecl{
		name: name,
		typ:  styp,
		ret:  ret,
		loc:  tok.Loc,
		body: children[nameAt+1:],
	}, nil
}

// parseStub handles stub declarations, which have no body and may omit the
// return type: (script stub [<return type>] <name>).
func parseStub(tok *Token, children []Token) (*scriptDecl, error) {
	ret := tp.Void
	nameAt := 2

	switch {
	case len(children) < 3:
		return nil, diag.Errorf(diag.Syntax, tok.Loc, "incomplete script definition, expected (script stub [<return type>] <name>)")
	case len(children) == 4:
		retName := lower(children[2].Text)

		var ok bool

		ret, ok = tp.FromSpelling(retName)
		if !ok {
			return nil, diag.Errorf(diag.Syntax, children[2].Loc, "expected script return value type, got '%s' instead", retName)
		}

		if ret == tp.Passthrough {
			return nil, diag.Errorf(diag.Syntax, children[2].Loc, "cannot define '%s' scripts", retName)
		}

		nameAt = 3
	case len(children) > 4:
		return nil, diag.Errorf(diag.Syntax, children[4].Loc, "extraneous token in stub definition (note: stub scripts have no body)")
	}

	name, err := scriptName(&children[nameAt])
	if err != nil {
		return nil, err
	}

	return &scriptDecl{
		name: name,
		typ:  tp.Stub,
		ret:  ret,
		loc:  tok.Loc,
	}, nil
}

func scriptName(tok *Token) (string, error) {
	if tok.Block() {
		return "", diag.Errorf(diag.Syntax, tok.Loc, "script parameters are not supported")
	}

	name := lower(tok.Text)

	switch name {
	case "begin", "begin_random", "if", "cond":
		return "", diag.Errorf(diag.Syntax, tok.Loc, "function '%s' cannot be overridden by a script", name)
	}

	err := checkName(name, tok.Loc)
	if err != nil {
		return "", err
	}

	return name, nil
}

func checkName(name string, loc diag.Location) error {
	if len(name) > defs.MaxNameLength {
		return diag.Errorf(diag.Syntax, loc, "name '%s' exceeds %d characters in length", name, defs.MaxNameLength)
	}

	return nil
}

// replaceStubs drops every stub declaration that a static script of the
// same name and return type replaces.
func replaceStubs(scripts []*scriptDecl) ([]*scriptDecl, error) {
	byName := make(map[string][]*scriptDecl, len(scripts))

	for _, s := range scripts {
		byName[s.name] = append(byName[s.name], s)
	}

	kept := scripts[:0]

	for _, s := range scripts {
		if s.typ != tp.Stub {
			kept = append(kept, s)
			continue
		}

		replaced := false

		for _, r := range byName[s.name] {
			if r == s {
				continue
			}

			if r.typ != tp.Static {
				return nil, diag.Errorf(diag.DuplicateDefinition, s.loc, "cannot replace stub script '%s' with non-static script", s.name)
			}

			if r.ret != s.ret {
				return nil, diag.Errorf(diag.DuplicateDefinition, s.loc, "cannot replace stub script '%s' that returns '%v' with static script which returns '%v'", s.name, s.ret, r.ret)
			}

			replaced = true

			break
		}

		if !replaced {
			kept = append(kept, s)
		}
	}

	return kept, nil
}

func checkDuplicates(scripts []*scriptDecl, globals []*globalDecl) error {
	names := make(map[string]struct{}, len(scripts)+len(globals))

	for _, s := range scripts {
		if _, ok := names[s.name]; ok {
			return diag.Errorf(diag.DuplicateDefinition, s.loc, "multiple scripts '%s' defined", s.name)
		}

		names[s.name] = struct{}{}
	}

	for _, g := range globals {
		if _, ok := names[g.name]; ok {
			return diag.Errorf(diag.DuplicateDefinition, g.loc, "global '%s' conflicts with an earlier definition of the same name", g.name)
		}

		names[g.name] = struct{}{}
	}

	return nil
}

func lower(s string) string {
	return strings.ToLower(s)
}
