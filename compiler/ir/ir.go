package ir

import (
	"github.com/blamlang/blam/src/compiler/diag"
	"github.com/blamlang/blam/src/compiler/tp"
)

type (
	// NodeKind tags how a node's payload is interpreted.
	NodeKind uint8

	// PayloadKind tags which Payload field carries the value.
	PayloadKind uint8

	// Payload is the value slot of a flattened node. For primitives it
	// holds the parsed literal; for calls it holds the index of the first
	// argument node.
	Payload struct {
		Kind  PayloadKind
		Bool  bool
		Short int16
		Long  int32
		Real  float32
		Node  int32
	}

	// Node is one flattened expression tree element. Argument lists are
	// expressed as sibling chains: each argument's Next points at the next
	// argument of the same call, terminated by NoNode.
	Node struct {
		Loc  diag.Location
		Type tp.ValueType
		Kind NodeKind
		Data Payload

		// Text is the identifier or literal spelling the node retains for
		// serialization; empty when the literal was fully parsed into Data.
		Text string

		// Ident is the 16-bit target-local identifier: the builtin
		// function index, global slot or script index. NoIdent for plain
		// primitives.
		Ident int32

		Next int32
	}

	// Script is one compiled script declaration.
	Script struct {
		Name   string
		Loc    diag.Location
		Type   tp.ScriptType
		Return tp.ValueType

		// First is the index of the body's root node, NoNode for stubs.
		First int32
	}

	// Global is one compiled global declaration.
	Global struct {
		Name string
		Loc  diag.Location
		Type tp.ValueType

		// First is the index of the initializer's root node.
		First int32
	}

	// Data is the immutable result of one successful compile. Contents are
	// retrieved with the count-then-fill convention: call an accessor with
	// a nil slice for the count, then again with a buffer of that size.
	Data struct {
		nodes    []Node
		scripts  []Script
		globals  []Global
		files    []string
		warnings []diag.Warning
	}
)

const (
	// NoNode is the reserved index meaning "no sibling" / "no children".
	NoNode int32 = -1

	// NoIdent marks a node without a target-local identifier.
	NoIdent int32 = -1
)

const (
	PayloadNone PayloadKind = iota
	PayloadBool
	PayloadShort
	PayloadLong
	PayloadReal
	PayloadNode
)

const (
	Primitive NodeKind = iota
	GlobalRef
	FunctionCall
	ScriptCall
)

var nodeKindNames = [...]string{
	Primitive:    "primitive",
	GlobalRef:    "global ref",
	FunctionCall: "function call",
	ScriptCall:   "script call",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}

	return "primitive"
}

// IsCall reports whether the node kind carries an argument chain.
func (k NodeKind) IsCall() bool {
	return k == FunctionCall || k == ScriptCall
}

// NewData assembles a compile result. The slices are owned by the result
// afterwards.
func NewData(nodes []Node, scripts []Script, globals []Global, files []string, warnings []diag.Warning) *Data {
	return &Data{
		nodes:    nodes,
		scripts:  scripts,
		globals:  globals,
		files:    files,
		warnings: warnings,
	}
}

// Nodes fills dst with the flattened nodes and returns how many there are.
// A nil dst only queries the count.
func (d *Data) Nodes(dst []Node) int {
	copy(dst, d.nodes)
	return len(d.nodes)
}

// Scripts fills dst with the compiled scripts and returns how many there
// are. A nil dst only queries the count.
func (d *Data) Scripts(dst []Script) int {
	copy(dst, d.scripts)
	return len(d.scripts)
}

// Globals fills dst with the compiled globals and returns how many there
// are. A nil dst only queries the count.
func (d *Data) Globals(dst []Global) int {
	copy(dst, d.globals)
	return len(d.globals)
}

// NodeAt returns the node at the given index. Indices come from call
// payloads, sibling links and Script/Global First fields.
func (d *Data) NodeAt(i int32) Node {
	return d.nodes[i]
}

// ScriptAt returns the i-th compiled script.
func (d *Data) ScriptAt(i int) Script {
	return d.scripts[i]
}

// GlobalAt returns the i-th compiled global.
func (d *Data) GlobalAt(i int) Global {
	return d.globals[i]
}

// Files fills dst with the names of the compiled source files in load
// order and returns how many there are. A nil dst only queries the count.
func (d *Data) Files(dst []string) int {
	copy(dst, d.files)
	return len(d.files)
}

// Warnings fills dst with the warnings of the compile and returns how many
// there are. A nil dst only queries the count.
func (d *Data) Warnings(dst []diag.Warning) int {
	copy(dst, d.warnings)
	return len(d.warnings)
}
