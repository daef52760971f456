package surface

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/z2-2z/chameleon/diag"
	"github.com/z2-2z/chameleon/loc"
)

// item is one lexed token together with its decoded literal value.
type item struct {
	kind token
	text string // raw source text, for identifiers and error messages
	ival int64  // decoded value for tokInt
	bval []byte // decoded bytes for tokChar / tokString
	rng  loc.Range
}

// lexer tokenizes a single .chm source file. Offsets are relative to
// the start of a concatenated, multi-file loc.Files set, so that
// Parser.Parse can merge several grammar files into one Grammar, as if
// the input grammar paths were concatenated.
type lexer struct {
	path string
	src  string
	base int // global offset of src[0]
	off  int // byte offset within src
}

func newLexer(path, src string, base int) *lexer {
	return &lexer{path: path, src: src, base: base}
}

func (l *lexer) errorf(start int, kind string, f string, vs ...interface{}) *diag.Error {
	return &diag.Error{
		Kind: diag.LexError,
		Msg:  fmt.Sprintf("%s: %s", kind, fmt.Sprintf(f, vs...)),
	}
}

func (l *lexer) rangeFrom(start int) loc.Range {
	return loc.Range{l.base + start, l.base + l.off}
}

func (l *lexer) peek() byte {
	if l.off >= len(l.src) {
		return 0
	}
	return l.src[l.off]
}

func (l *lexer) at(i int) byte {
	if l.off+i >= len(l.src) {
		return 0
	}
	return l.src[l.off+i]
}

func (l *lexer) skipSpace() {
	for l.off < len(l.src) {
		switch c := l.src[l.off]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.off++
		default:
			return
		}
	}
}

// next returns the next token in the stream.
func (l *lexer) next() (item, error) {
	l.skipSpace()
	start := l.off
	if l.off >= len(l.src) {
		return item{kind: tokEOF, rng: l.rangeFrom(start)}, nil
	}

	c := l.src[l.off]
	switch {
	case c == '#' || (c == '/' && l.at(1) == '/'):
		return item{}, l.errorf(start, "UnexpectedToken", "comments are not supported in .chm files")
	case c == '.' && l.at(1) == '.':
		l.off += 2
		return item{kind: tokDotDot, rng: l.rangeFrom(start)}, nil
	case isIdentStart(c):
		for l.off < len(l.src) && isIdentPart(l.src[l.off]) {
			l.off++
		}
		text := l.src[start:l.off]
		if tok, ok := keywords[text]; ok {
			return item{kind: tok, text: text, rng: l.rangeFrom(start)}, nil
		}
		return item{kind: tokIdent, text: text, rng: l.rangeFrom(start)}, nil
	case c >= '0' && c <= '9':
		return l.lexInt(start)
	case c == '\'':
		return l.lexQuoted(start, '\'', tokChar)
	case c == '"':
		return l.lexQuoted(start, '"', tokString)
	default:
		if tok, ok := punctuation[c]; ok {
			l.off++
			return item{kind: tok, rng: l.rangeFrom(start)}, nil
		}
		l.off++
		return item{}, l.errorf(start, "UnexpectedToken", "unexpected character %q", c)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (l *lexer) lexInt(start int) (item, error) {
	if l.peek() == '0' && (l.at(1) == 'x' || l.at(1) == 'X') {
		l.off += 2
		digStart := l.off
		for l.off < len(l.src) && isHexDigit(l.src[l.off]) {
			l.off++
		}
		if l.off == digStart {
			return item{}, l.errorf(start, "BadRange", "malformed hex literal")
		}
		v, err := strconv.ParseUint(l.src[digStart:l.off], 16, 64)
		if err != nil {
			return item{}, l.errorf(start, "BadRange", "malformed hex literal: %v", err)
		}
		return item{kind: tokInt, ival: int64(v), rng: l.rangeFrom(start)}, nil
	}
	for l.off < len(l.src) && l.src[l.off] >= '0' && l.src[l.off] <= '9' {
		l.off++
	}
	v, err := strconv.ParseInt(l.src[start:l.off], 10, 64)
	if err != nil {
		return item{}, l.errorf(start, "BadRange", "malformed integer literal: %v", err)
	}
	return item{kind: tokInt, ival: v, rng: l.rangeFrom(start)}, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *lexer) lexQuoted(start int, quote byte, kind token) (item, error) {
	l.off++ // opening quote
	var out strings.Builder
	for {
		if l.off >= len(l.src) {
			return item{}, l.errorf(start, "BadEscape", "unterminated literal")
		}
		c := l.src[l.off]
		if c == quote {
			l.off++
			break
		}
		if c == '\n' {
			return item{}, l.errorf(start, "BadEscape", "newline in literal")
		}
		if c != '\\' {
			out.WriteByte(c)
			l.off++
			continue
		}
		b, err := l.decodeEscape(start)
		if err != nil {
			return item{}, err
		}
		out.Write(b)
	}
	return item{kind: kind, bval: []byte(out.String()), rng: l.rangeFrom(start)}, nil
}

func (l *lexer) decodeEscape(start int) ([]byte, error) {
	l.off++ // backslash
	if l.off >= len(l.src) {
		return nil, l.errorf(start, "BadEscape", "unterminated escape sequence")
	}
	c := l.src[l.off]
	l.off++
	switch c {
	case '\\':
		return []byte{'\\'}, nil
	case '"':
		return []byte{'"'}, nil
	case '\'':
		return []byte{'\''}, nil
	case '/':
		return []byte{'/'}, nil
	case 'n':
		return []byte{'\n'}, nil
	case 'r':
		return []byte{'\r'}, nil
	case 't':
		return []byte{'\t'}, nil
	case 'b':
		return []byte{'\b'}, nil
	case 'f':
		return []byte{'\f'}, nil
	case 'u':
		if l.off+4 > len(l.src) {
			return nil, l.errorf(start, "BadEscape", "truncated \\u escape")
		}
		digits := l.src[l.off : l.off+4]
		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return nil, l.errorf(start, "BadEscape", "malformed \\u escape: %v", err)
		}
		l.off += 4
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], rune(v))
		return buf[:n], nil
	default:
		return nil, l.errorf(start, "BadEscape", "unknown escape sequence '\\%c'", c)
	}
}
