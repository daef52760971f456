// Package surface lexes and parses the .chm grammar surface syntax
// into a surface AST, ready for desugaring into the grammar IR.
package surface

import (
	"fmt"
	"os"

	"github.com/z2-2z/chameleon/diag"
	"github.com/z2-2z/chameleon/loc"
)

// A Parser accumulates source files into a single loc.Files set and
// parses each one's top-level struct declarations into one merged
// Grammar, so that `translate a.chm b.chm` behaves as if a.chm and
// b.chm were concatenated.
type Parser struct {
	Files loc.Files
	gram  Grammar
}

// NewParser returns a Parser with no files loaded yet.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a single .chm file, appending its struct
// declarations to the accumulated Grammar.
func (p *Parser) ParseFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return diag.New(diag.IoError, fmt.Sprintf("reading %s: %v", path, err))
	}
	return p.Parse(path, string(data))
}

// Parse parses src as if it were read from path and appends its
// struct declarations to the accumulated Grammar.
func (p *Parser) Parse(path, src string) error {
	base := p.Files.Len()
	p.Files.Add(path, src)
	ps := &parserState{p: parser{lx: newLexer(path, src, base), files: &p.Files}}
	if err := ps.init(); err != nil {
		return err
	}
	for ps.cur.kind != tokEOF {
		decl, err := ps.parseStructDecl()
		if err != nil {
			return err
		}
		p.gram.Structs = append(p.gram.Structs, decl)
	}
	return nil
}

// Grammar returns the merged surface AST parsed so far.
func (p *Parser) Grammar() *Grammar { return &p.gram }

// parser holds the low-level lexer plumbing; parserState adds
// one-token lookahead on top.
type parser struct {
	lx    *lexer
	files *loc.Files
}

type parserState struct {
	p   parser
	cur item
}

func (ps *parserState) init() error {
	return ps.advance()
}

func (ps *parserState) advance() error {
	it, err := ps.p.lx.next()
	if err != nil {
		return err
	}
	ps.cur = it
	return nil
}

func (ps *parserState) errorf(kind string, f string, vs ...interface{}) *diag.Error {
	l := ps.p.files.Loc(ps.cur.rng)
	return diag.At(diag.ParseError, l, fmt.Sprintf("%s: %s", kind, fmt.Sprintf(f, vs...)))
}

func (ps *parserState) expect(k token) (item, error) {
	if ps.cur.kind != k {
		return item{}, ps.errorf("UnexpectedToken", "expected %s, found %s", k, ps.cur.kind)
	}
	it := ps.cur
	if err := ps.advance(); err != nil {
		return item{}, err
	}
	return it, nil
}

func (ps *parserState) accept(k token) (bool, error) {
	if ps.cur.kind != k {
		return false, nil
	}
	if err := ps.advance(); err != nil {
		return false, err
	}
	return true, nil
}

func (ps *parserState) parseStructDecl() (*StructDecl, error) {
	start := ps.cur.rng
	if _, err := ps.expect(tokKwStruct); err != nil {
		return nil, err
	}
	name, err := ps.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := ps.expect(tokLBrace); err != nil {
		return nil, err
	}
	fields, end, err := ps.parseFields()
	if err != nil {
		return nil, err
	}
	return &StructDecl{
		Rng:    loc.Range{start[0], end[1]},
		Name:   name.text,
		Fields: fields,
	}, nil
}

// parseFields parses fields up to and including the closing '}'.
func (ps *parserState) parseFields() ([]*Field, loc.Range, error) {
	var fields []*Field
	for ps.cur.kind != tokRBrace {
		if ps.cur.kind == tokEOF {
			return nil, loc.Range{}, ps.errorf("UnexpectedToken", "unexpected end of file, expected '}'")
		}
		f, err := ps.parseField()
		if err != nil {
			return nil, loc.Range{}, err
		}
		fields = append(fields, f)
	}
	end := ps.cur.rng
	if _, err := ps.expect(tokRBrace); err != nil {
		return nil, loc.Range{}, err
	}
	return fields, end, nil
}

// parseField parses one top-level "name: body [;]" entry and consumes
// exactly the terminator the body requires: a nested optional/repeats
// field never owns its own terminator, so only the
// outermost call here consumes it.
func (ps *parserState) parseField() (*Field, error) {
	f, err := ps.parseNestedField()
	if err != nil {
		return nil, err
	}
	if selfTerminating(f.Body) {
		if _, err := ps.accept(tokSemi); err != nil {
			return nil, err
		}
	} else if _, err := ps.expect(tokSemi); err != nil {
		return nil, err
	}
	return f, nil
}

// parseNestedField parses "name: body" without any terminator
// handling, for use inside optional/repeats/oneof constructs.
func (ps *parserState) parseNestedField() (*Field, error) {
	start := ps.cur.rng
	name, err := ps.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if _, err := ps.expect(tokColon); err != nil {
		return nil, err
	}
	body, err := ps.parseFieldBody()
	if err != nil {
		return nil, err
	}
	return &Field{
		Rng:  loc.Range{start[0], body.Range()[1]},
		Name: name.text,
		Body: body,
	}, nil
}

func selfTerminating(b FieldBody) bool {
	switch b := b.(type) {
	case *StructBody, *OneofBody:
		return true
	case *OptionalBody:
		return selfTerminating(b.Inner.Body)
	case *RepeatsBody:
		return selfTerminating(b.Inner.Body)
	default:
		return false
	}
}

func (ps *parserState) parseFieldBody() (FieldBody, error) {
	start := ps.cur.rng
	switch ps.cur.kind {
	case tokIdent:
		name, err := ps.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		return &RefBody{base: base{Rng: loc.Range{start[0], name.rng[1]}}, Name: name.text}, nil

	case tokKwChar:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		if _, err := ps.expect(tokEq); err != nil {
			return nil, err
		}
		items, end, err := ps.parseCharList()
		if err != nil {
			return nil, err
		}
		return &CharBody{base: base{Rng: loc.Range{start[0], end[1]}}, Items: items}, nil

	case tokKwString:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		if _, err := ps.expect(tokEq); err != nil {
			return nil, err
		}
		str, err := ps.expect(tokString)
		if err != nil {
			return nil, err
		}
		return &StringBody{base: base{Rng: loc.Range{start[0], str.rng[1]}}, Value: str.bval}, nil

	case tokKwOptional:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		inner, err := ps.parseNestedField()
		if err != nil {
			return nil, err
		}
		return &OptionalBody{base: base{Rng: loc.Range{start[0], inner.Rng[1]}}, Inner: inner}, nil

	case tokKwRepeats:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		lo, hi, err := ps.parseRepeatBounds()
		if err != nil {
			return nil, err
		}
		inner, err := ps.parseNestedField()
		if err != nil {
			return nil, err
		}
		return &RepeatsBody{base: base{Rng: loc.Range{start[0], inner.Rng[1]}}, Lo: lo, Hi: hi, Inner: inner}, nil

	case tokKwStruct:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		if _, err := ps.expect(tokLBrace); err != nil {
			return nil, err
		}
		fields, end, err := ps.parseFields()
		if err != nil {
			return nil, err
		}
		return &StructBody{base: base{Rng: loc.Range{start[0], end[1]}}, Fields: fields}, nil

	case tokKwOneof:
		if err := ps.advance(); err != nil {
			return nil, err
		}
		if _, err := ps.expect(tokLBrace); err != nil {
			return nil, err
		}
		branches, end, err := ps.parseFields()
		if err != nil {
			return nil, err
		}
		return &OneofBody{base: base{Rng: loc.Range{start[0], end[1]}}, Branches: branches}, nil

	default:
		return nil, ps.errorf("UnexpectedToken", "expected a field body, found %s", ps.cur.kind)
	}
}

// parseRepeatBounds parses "N..M" or the degenerate "K", returning the
// equivalent half-open [lo, hi) length range.
func (ps *parserState) parseRepeatBounds() (int, int, error) {
	lo, err := ps.expect(tokInt)
	if err != nil {
		return 0, 0, err
	}
	if ok, err := ps.accept(tokDotDot); err != nil {
		return 0, 0, err
	} else if ok {
		hi, err := ps.expect(tokInt)
		if err != nil {
			return 0, 0, err
		}
		if hi.ival <= lo.ival {
			return 0, 0, ps.errorf("BadRange", "repeats bounds must satisfy lo < hi, got %d..%d", lo.ival, hi.ival)
		}
		return int(lo.ival), int(hi.ival), nil
	}
	return int(lo.ival), int(lo.ival) + 1, nil
}

// parseCharList parses a comma-separated char-list, widening quoted
// strings into one range per byte.
func (ps *parserState) parseCharList() ([]CharItem, loc.Range, error) {
	var items []CharItem
	for {
		switch ps.cur.kind {
		case tokChar:
			it := ps.cur
			if err := ps.advance(); err != nil {
				return nil, loc.Range{}, err
			}
			if len(it.bval) != 1 {
				return nil, loc.Range{}, ps.errorf("BadRange", "char literal must be exactly one byte")
			}
			b := int(it.bval[0])
			items = append(items, CharItem{Rng: it.rng, Lo: b, Hi: b + 1})

		case tokString:
			it := ps.cur
			if err := ps.advance(); err != nil {
				return nil, loc.Range{}, err
			}
			for _, b := range it.bval {
				items = append(items, CharItem{Rng: it.rng, Lo: int(b), Hi: int(b) + 1})
			}

		case tokInt:
			lo, err := ps.expect(tokInt)
			if err != nil {
				return nil, loc.Range{}, err
			}
			if _, err := ps.expect(tokDotDot); err != nil {
				return nil, loc.Range{}, err
			}
			hi, err := ps.expect(tokInt)
			if err != nil {
				return nil, loc.Range{}, err
			}
			if hi.ival <= lo.ival {
				return nil, loc.Range{}, ps.errorf("BadRange", "char range must satisfy lo < hi, got %d..%d", lo.ival, hi.ival)
			}
			items = append(items, CharItem{Rng: loc.Range{lo.rng[0], hi.rng[1]}, Lo: int(lo.ival), Hi: int(hi.ival)})

		default:
			return nil, loc.Range{}, ps.errorf("UnexpectedToken", "expected a char-list entry, found %s", ps.cur.kind)
		}

		if ok, err := ps.accept(tokComma); err != nil {
			return nil, loc.Range{}, err
		} else if !ok {
			break
		}
	}
	end := items[len(items)-1].Rng
	return items, end, nil
}
