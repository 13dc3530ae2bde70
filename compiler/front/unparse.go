package front

import (
	"strconv"
	"strings"

	"github.com/nikandfor/hacked/hfmt"

	"github.com/blamlang/blam/src/compiler/ir"
	"github.com/blamlang/blam/src/compiler/tp"
)

// Unparse renders a compiled unit back into source text. Recompiling the
// output produces an isomorphic node graph, so it doubles as a dump format
// and as the round-trip check in tests.
func Unparse(d *ir.Data) []byte {
	var b []byte

	for i, n := 0, d.Scripts(nil); i < n; i++ {
		s := d.ScriptAt(i)

		b = hfmt.Appendf(b, "(script %v", s.Type)

		if !s.Type.AlwaysReturnsVoid() {
			b = hfmt.Appendf(b, " %s", s.Return.Spelling())
		}

		b = hfmt.Appendf(b, " %s", s.Name)

		if s.First != ir.NoNode {
			// the root is the implicit begin block, emit its expressions
			root := d.NodeAt(s.First)

			for arg := root.Data.Node; arg != ir.NoNode; arg = d.NodeAt(arg).Next {
				b = append(b, ' ')
				b = unparseNode(b, d, arg)
			}
		}

		b = append(b, ')', '\n')
	}

	for i, n := 0, d.Globals(nil); i < n; i++ {
		g := d.GlobalAt(i)

		b = hfmt.Appendf(b, "(global %s %s ", g.Type.Spelling(), g.Name)
		b = unparseNode(b, d, g.First)
		b = append(b, ')', '\n')
	}

	return b
}

func unparseNode(b []byte, d *ir.Data, at int32) []byte {
	n := d.NodeAt(at)

	if n.Kind.IsCall() {
		b = append(b, '(')
		b = append(b, n.Text...)

		for arg := n.Data.Node; arg != ir.NoNode; arg = d.NodeAt(arg).Next {
			b = append(b, ' ')
			b = unparseNode(b, d, arg)
		}

		return append(b, ')')
	}

	if n.Type == tp.String || strings.ContainsAny(n.Text, " \t\r\n();\"") {
		b = append(b, '"')
		b = append(b, n.Text...)

		return append(b, '"')
	}

	if n.Text != "" {
		return append(b, n.Text...)
	}

	switch n.Data.Kind {
	case ir.PayloadBool:
		if n.Data.Bool {
			return append(b, "true"...)
		}

		return append(b, "false"...)
	case ir.PayloadShort:
		return strconv.AppendInt(b, int64(n.Data.Short), 10)
	case ir.PayloadLong:
		return strconv.AppendInt(b, int64(n.Data.Long), 10)
	case ir.PayloadReal:
		return strconv.AppendFloat(b, float64(n.Data.Real), 'g', -1, 32)
	}

	return b
}
