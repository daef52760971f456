package surface

import "github.com/z2-2z/chameleon/loc"

// A Grammar is the parsed contents of one or more .chm files, merged
// in the order their paths were given on the command line.
type Grammar struct {
	Structs []*StructDecl
}

// A StructDecl is a top-level `struct Name { ... }` declaration. Each
// one becomes exactly one named nonterminal once desugared.
type StructDecl struct {
	Rng    loc.Range
	Name   string
	Fields []*Field
}

// A Field is one `name: body;` entry inside a struct or oneof body.
// Fields named "_" are kept (they still contribute to the rule) but
// carry no identity of their own.
type Field struct {
	Rng  loc.Range
	Name string
	Body FieldBody
}

// FieldBody is the tagged union of every surface field shape described
// below.
type FieldBody interface {
	Range() loc.Range
	fieldBody()
}

type base struct {
	Rng loc.Range
}

func (b base) Range() loc.Range { return b.Rng }

// RefBody is a bare reference to another struct: `name: Other;`.
type RefBody struct {
	base
	Name string
}

func (RefBody) fieldBody() {}

// CharBody is `name: char = <literal-list>;`. Each Items entry is one
// half-open byte range; the parser has already widened a quoted string
// into one entry per byte.
type CharBody struct {
	base
	Items []CharItem
}

func (CharBody) fieldBody() {}

// StringBody is `name: string = "literal";`.
type StringBody struct {
	base
	Value []byte
}

func (StringBody) fieldBody() {}

// OptionalBody is `name: optional inner;` where inner is itself a
// full field declaration (so it can recursively be any FieldBody).
type OptionalBody struct {
	base
	Inner *Field
}

func (OptionalBody) fieldBody() {}

// RepeatsBody is `name: repeats N..M inner;` or the degenerate
// `name: repeats K inner;`.
type RepeatsBody struct {
	base
	Lo, Hi int // half-open: lengths Lo, Lo+1, ..., Hi-1
	Inner  *Field
}

func (RepeatsBody) fieldBody() {}

// StructBody is an anonymous nested `struct { ... }`.
type StructBody struct {
	base
	Fields []*Field
}

func (StructBody) fieldBody() {}

// OneofBody is a `oneof { a: ...; b: ...; }` alternation. Each branch
// is itself a Field, so a branch may carry its own composite body.
type OneofBody struct {
	base
	Branches []*Field
}

func (OneofBody) fieldBody() {}

// CharItem is one range of a char-list: taken from a single character
// literal, from one byte of a quoted string, or from an explicit
// half-open numeric range.
type CharItem struct {
	Rng    loc.Range
	Lo, Hi int // half-open byte range [Lo, Hi)
}
