package diag

import (
	"fmt"

	"tlog.app/go/errors"
)

type (
	// Location is a position in loaded source text. Lines and columns are
	// 1-based.
	Location struct {
		File   string
		Line   int
		Column int
	}

	// Kind classifies fatal compile errors.
	Kind uint8

	// Error is a fatal compile diagnostic. Compilation stops at the first
	// one; warnings collected before that point ride along for visibility.
	Error struct {
		Kind    Kind
		Loc     Location
		Message string

		Warnings []Warning
	}

	// Warning is a non-fatal diagnostic. It never alters compiled output.
	Warning struct {
		Loc     Location
		Message string
	}

	// Collector accumulates warnings during a compile pass and builds the
	// single fatal error that aborts it.
	Collector struct {
		warnings []Warning
	}
)

const (
	Syntax Kind = iota
	Encoding
	DuplicateDefinition
	UnknownIdentifier
	IdentifierSpaceExhausted
	Arity
	TypeMismatch
	LiteralFormat
)

var kindNames = [...]string{
	Syntax:                   "syntax error",
	Encoding:                 "encoding error",
	DuplicateDefinition:      "duplicate definition",
	UnknownIdentifier:        "unknown identifier",
	IdentifierSpaceExhausted: "identifier space exhausted",
	Arity:                    "arity error",
	TypeMismatch:             "type mismatch",
	LiteralFormat:            "literal format error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "error"
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: error: %s", e.Loc, e.Message)
}

func (w Warning) String() string {
	return fmt.Sprintf("%v: warning: %s", w.Loc, w.Message)
}

// Errorf builds a fatal Error at the given location.
func Errorf(k Kind, loc Location, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    k,
		Loc:     loc,
		Message: fmt.Sprintf(format, args...),
	}
}

// Warnf records a non-fatal warning. It never fails and never halts
// compilation.
func (c *Collector) Warnf(loc Location, format string, args ...interface{}) {
	c.warnings = append(c.warnings, Warning{
		Loc:     loc,
		Message: fmt.Sprintf(format, args...),
	})
}

// Fatal builds the terminating error for the current compile, attaching
// the warnings collected so far.
func (c *Collector) Fatal(k Kind, loc Location, format string, args ...interface{}) *Error {
	err := Errorf(k, loc, format, args...)
	err.Warnings = c.warnings

	return err
}

// Attach adds the collected warnings to a fatal error on its way out, so
// they stay visible even though the compile produced no result.
func (c *Collector) Attach(err error) error {
	var e *Error
	if errors.As(err, &e) {
		e.Warnings = c.warnings
	}

	return err
}

// Warnings returns the warnings collected so far.
func (c *Collector) Warnings() []Warning {
	return c.warnings
}
