package defs

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/blamlang/blam/src/compiler/tp"
)

type (
	// Target selects the engine variant to compile for, which determines
	// the builtin table and identifier space in effect.
	Target uint8

	// Encoding selects how loaded source bytes are decoded.
	Encoding uint8

	// Availability holds the per-target builtin identifier of a function
	// or global. NoIndex means the builtin does not exist on that target.
	Availability struct {
		MCC       int32
		Xbox      int32
		GBXRetail int32
		GBXDemo   int32
		GBXCustom int32
	}

	// Param describes one parameter of a builtin function signature.
	Param struct {
		Type tp.ValueType

		// Many repeats the parameter for any number of trailing
		// arguments.
		Many bool

		// Optional marks this and all following parameters as omittable.
		Optional bool

		// AllowUppercase keeps the argument text as written instead of
		// lowercasing it.
		AllowUppercase bool
	}

	// Function is the signature of one builtin function.
	Function struct {
		Name   string
		Return tp.ValueType
		Params []Param

		// NumberPassthrough requires the resolved passthrough type to be
		// numeric.
		NumberPassthrough bool

		// Inequality additionally admits game_difficulty and team as the
		// passthrough type.
		Inequality bool

		// PassthroughLast infers the passthrough type from the last
		// argument only; earlier passthrough parameters are evaluated for
		// effect.
		PassthroughLast bool

		Availability Availability
	}

	// Global is the signature of one builtin engine global.
	Global struct {
		Name         string
		Type         tp.ValueType
		Availability Availability
	}

	// Table is the read-only builtin lookup for one target. It is safe to
	// share across concurrently running compiler instances.
	Table struct {
		target  Target
		funcs   map[string]*Function
		globals map[string]*Global
	}
)

const (
	// HaloCEA is Halo: Combat Evolved Anniversary (MCC) on Windows.
	HaloCEA Target = iota

	// HaloCEXboxNTSC is the NTSC Xbox release.
	HaloCEXboxNTSC

	// HaloCEGBX is the Gearbox/MacSoft PC release.
	HaloCEGBX

	// HaloCEGBXDemo is the Gearbox PC demo.
	HaloCEGBXDemo

	// HaloCustomEdition is Halo Custom Edition.
	HaloCustomEdition
)

const (
	UTF8 Encoding = iota
	Windows1252
)

const (
	// NoIndex marks a builtin as unavailable on a target.
	NoIndex int32 = -1

	// MaxIndex bounds each identifier category (function ids, global
	// slots, script ids); the wire field is 16 bits.
	MaxIndex = 65536

	// MaxNameLength bounds script and global names; the on-disk format
	// stores them in a fixed 32-byte field.
	MaxNameLength = 31
)

var targetNames = [...]string{
	HaloCEA:           "mcc-cea",
	HaloCEXboxNTSC:    "xbox",
	HaloCEGBX:         "gbx-retail",
	HaloCEGBXDemo:     "gbx-demo",
	HaloCustomEdition: "gbx-custom",
}

func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}

	return "gbx-custom"
}

// TargetFromString resolves a target spelling as used on the command line.
func TargetFromString(s string) (Target, bool) {
	for i, n := range targetNames {
		if n == s {
			return Target(i), true
		}
	}

	return 0, false
}

// Targets lists all supported targets.
func Targets() []Target {
	return []Target{HaloCEA, HaloCEXboxNTSC, HaloCEGBX, HaloCEGBXDemo, HaloCustomEdition}
}

func (e Encoding) String() string {
	if e == Windows1252 {
		return "windows-1252"
	}

	return "utf-8"
}

// EncodingFromString resolves an encoding spelling as used on the command
// line.
func EncodingFromString(s string) (Encoding, bool) {
	switch s {
	case "utf-8", "utf8":
		return UTF8, true
	case "windows-1252", "latin1":
		return Windows1252, true
	}

	return 0, false
}

// Decode decodes a byte slice in this encoding. On failure it returns the
// offset of the first undecodable byte.
func (e Encoding) Decode(b []byte) (s string, bad int, ok bool) {
	switch e {
	case Windows1252:
		r := make([]rune, 0, len(b))

		for i, c := range b {
			d := charmap.Windows1252.DecodeByte(c)
			if d == utf8.RuneError {
				return "", i, false
			}

			r = append(r, d)
		}

		return string(r), 0, true
	default:
		if !utf8.Valid(b) {
			bad = 0

			for len(b) != 0 {
				r, size := utf8.DecodeRune(b)
				if r == utf8.RuneError && size <= 1 {
					break
				}

				b = b[size:]
				bad += size
			}

			return "", bad, false
		}

		return string(b), 0, true
	}
}

// IndexFor returns the identifier of the builtin on the given target, or
// NoIndex.
func (a Availability) IndexFor(t Target) int32 {
	switch t {
	case HaloCEA:
		return a.MCC
	case HaloCEXboxNTSC:
		return a.Xbox
	case HaloCEGBX:
		return a.GBXRetail
	case HaloCEGBXDemo:
		return a.GBXDemo
	default:
		return a.GBXCustom
	}
}

// SupportedBy reports whether the builtin exists on the given target.
func (a Availability) SupportedBy(t Target) bool {
	return a.IndexFor(t) != NoIndex
}

// MinParams is the number of arguments a call must supply.
func (f *Function) MinParams() int {
	for i, p := range f.Params {
		if p.Optional {
			return i
		}
	}

	return len(f.Params)
}

// ParamType returns the declared type of the i-th argument, repeating a
// trailing Many parameter. ok is false past the end of a non-variadic
// signature.
func (f *Function) ParamType(i int) (_ tp.ValueType, ok bool) {
	n := len(f.Params)

	switch {
	case n == 0:
		return 0, false
	case i < n:
		return f.Params[i].Type, true
	case f.Params[n-1].Many:
		return f.Params[n-1].Type, true
	default:
		return 0, false
	}
}

// UppercaseAllowed reports whether the i-th argument keeps its case.
func (f *Function) UppercaseAllowed(i int) bool {
	return i < len(f.Params) && f.Params[i].AllowUppercase
}

// NewTable builds a builtin lookup for one target from signature lists,
// keeping only the builtins the target supports. Supplying a new pair of
// lists is how a new target is added.
func NewTable(t Target, funcs []*Function, globals []*Global) *Table {
	tbl := &Table{
		target:  t,
		funcs:   make(map[string]*Function, len(funcs)),
		globals: make(map[string]*Global, len(globals)),
	}

	for _, f := range funcs {
		if f.Availability.SupportedBy(t) {
			tbl.funcs[f.Name] = f
		}
	}

	for _, g := range globals {
		if g.Availability.SupportedBy(t) {
			tbl.globals[g.Name] = g
		}
	}

	return tbl
}

// TableForTarget returns the builtin table of the engine definitions
// shipped with the compiler.
func TableForTarget(t Target) *Table {
	return builtinTables[t]
}

// Target returns the target the table was built for.
func (t *Table) Target() Target {
	return t.target
}

// Function looks up a builtin function by name.
func (t *Table) Function(name string) (*Function, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Global looks up a builtin global by name.
func (t *Table) Global(name string) (*Global, bool) {
	g, ok := t.globals[name]
	return g, ok
}

var builtinTables = func() map[Target]*Table {
	m := make(map[Target]*Table, len(Targets()))

	for _, t := range Targets() {
		m[t] = NewTable(t, engineFunctions, engineGlobals)
	}

	return m
}()
