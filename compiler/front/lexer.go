package front

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/blamlang/blam/src/compiler/defs"
	"github.com/blamlang/blam/src/compiler/diag"
)

type (
	// Token is one lexed element of a source file. An atom has nil
	// Children; a parenthesized form holds its elements in Children and
	// has empty Text.
	Token struct {
		Loc  diag.Location
		Text string

		Children []Token
	}

	lexer struct {
		enc  defs.Encoding
		file string
		b    []byte

		line, col int

		toks []Token
	}

	lexState uint8
)

const (
	inWhitespace lexState = iota
	inToken
	inQuoted
	inLineComment
	inBlockComment
)

// Block reports whether the token is a parenthesized form.
func (t *Token) Block() bool {
	return t.Children != nil
}

// Tokenize lexes one source file into a forest of token trees. Every
// top-level token must be a parenthesized form.
func Tokenize(ctx context.Context, enc defs.Encoding, file string, data []byte) (_ []Token, err error) {
	tr := tlog.SpanFromContext(ctx)
	if tr.If("tokenize") {
		defer func() {
			tr.Printw("tokenize", "file", file, "size", len(data), "err", err)
		}()
	}

	lx := &lexer{
		enc:  enc,
		file: file,
		b:    data,
		line: 1,
	}

	err = lx.scan()
	if err != nil {
		return nil, err
	}

	return lx.tree()
}

func (lx *lexer) loc() diag.Location {
	return diag.Location{File: lx.file, Line: lx.line, Column: lx.col}
}

func (lx *lexer) emit(loc diag.Location, raw []byte) error {
	text, bad, ok := lx.enc.Decode(raw)
	if !ok {
		return diag.Errorf(diag.Encoding, loc, "cannot decode byte 0x%02x as %v", raw[bad], lx.enc)
	}

	lx.toks = append(lx.toks, Token{Loc: loc, Text: text})

	return nil
}

func (lx *lexer) scan() error {
	st := inWhitespace

	var tokLoc diag.Location
	tokSt := 0

	for i := 0; i < len(lx.b); i++ {
		c := lx.b[i]
		lx.col++

		if c == 0 {
			if i+1 == len(lx.b) {
				break // legacy tools pad the buffer with a trailing NUL
			}

			return diag.Errorf(diag.Syntax, lx.loc(), "unexpected null terminator")
		}

		switch st {
		case inQuoted:
			if c == '"' {
				if err := lx.emit(tokLoc, lx.b[tokSt:i]); err != nil {
					return err
				}

				st = inWhitespace
			}
		case inLineComment:
			// ends on newline, handled below
		case inBlockComment:
			if c == ';' && i > 0 && lx.b[i-1] == '*' {
				st = inWhitespace
			}
		case inToken:
			switch {
			case c == '(' || c == ')':
				if err := lx.emit(tokLoc, lx.b[tokSt:i]); err != nil {
					return err
				}

				lx.toks = append(lx.toks, Token{Loc: lx.loc(), Text: string(c)})
				st = inWhitespace
			case isSpace(c):
				if err := lx.emit(tokLoc, lx.b[tokSt:i]); err != nil {
					return err
				}

				st = inWhitespace
			case c == ';':
				if err := lx.emit(tokLoc, lx.b[tokSt:i]); err != nil {
					return err
				}

				st = lx.commentState(i)
			}
		case inWhitespace:
			switch {
			case c == '(' || c == ')':
				lx.toks = append(lx.toks, Token{Loc: lx.loc(), Text: string(c)})
			case isSpace(c):
			case c == ';':
				st = lx.commentState(i)
			case c == '"':
				st = inQuoted
				tokLoc = lx.loc()
				tokSt = i + 1
			default:
				st = inToken
				tokLoc = lx.loc()
				tokSt = i
			}
		}

		if c == '\n' {
			lx.line++
			lx.col = 0

			if st == inLineComment {
				st = inWhitespace
			}
		}
	}

	if st == inToken {
		return lx.emit(tokLoc, lx.b[tokSt:])
	}

	if st == inQuoted {
		return diag.Errorf(diag.Syntax, lx.loc(), "unterminated token")
	}

	return nil
}

// commentState picks the comment flavor at the ';' byte at offset i.
func (lx *lexer) commentState(i int) lexState {
	if i+1 < len(lx.b) && lx.b[i+1] == '*' {
		return inBlockComment
	}

	return inLineComment
}

// tree folds the flat token stream into a forest of parenthesized forms.
func (lx *lexer) tree() ([]Token, error) {
	forest := []Token{}
	i := 0

	for i < len(lx.toks) {
		t := lx.toks[i]
		if t.Text != "(" {
			return nil, diag.Errorf(diag.Syntax, t.Loc, "expected left parenthesis, got '%s' instead", t.Text)
		}

		blk, next, err := lx.block(t, i+1)
		if err != nil {
			return nil, err
		}

		forest = append(forest, blk)
		i = next
	}

	return forest, nil
}

func (lx *lexer) block(open Token, st int) (blk Token, i int, err error) {
	blk = Token{Loc: open.Loc, Children: []Token{}}

	for i = st; i < len(lx.toks); {
		t := lx.toks[i]

		switch t.Text {
		case "(":
			var sub Token

			sub, i, err = lx.block(t, i+1)
			if err != nil {
				return blk, i, err
			}

			blk.Children = append(blk.Children, sub)
		case ")":
			if len(blk.Children) == 0 {
				return blk, i, diag.Errorf(diag.Syntax, open.Loc, "empty block")
			}

			return blk, i + 1, nil
		default:
			blk.Children = append(blk.Children, t)
			i++
		}
	}

	return blk, i, diag.Errorf(diag.Syntax, open.Loc, "unterminated block")
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}

	return false
}
