// Package diag defines the diagnostic error shape produced by every
// compiler stage: lexing, parsing, desugaring, IR validation, and
// emission.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/z2-2z/chameleon/loc"
)

// Kind identifies the category of a compile error.
type Kind string

const (
	IoError                Kind = "IoError"
	LexError                Kind = "LexError"
	ParseError              Kind = "ParseError"
	UnknownReference        Kind = "UnknownReference"
	DuplicateNonterminal    Kind = "DuplicateNonterminal"
	EntrypointNotFound      Kind = "EntrypointNotFound"
	UnreachableNonterminal  Kind = "UnreachableNonterminal"
	BadNumberset            Kind = "BadNumberset"
	TemplateError           Kind = "TemplateError"
	WriteError              Kind = "WriteError"
)

// An Error is a single compiler diagnostic.
//
// Errors form a tree: a top-level Error may carry Cause errors that
// explain it in more detail, each printed at one more level of
// indentation, so a single reported failure can nest the chain of
// causes that led to it.
type Error struct {
	Kind  Kind
	Loc   *loc.Loc
	Msg   string
	Notes []string
	Cause []*Error
}

// New builds an Error with no location, for stages that run before any
// source text exists (e.g. a missing input file).
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// At builds an Error anchored to a source location.
func At(kind Kind, l *loc.Loc, msg string) *Error {
	return &Error{Kind: kind, Loc: l, Msg: msg}
}

// Note appends an explanatory note to the error and returns it, so
// construction can be chained: diag.At(...).Note("...")
func (e *Error) Note(f string, vs ...interface{}) *Error {
	e.Notes = append(e.Notes, fmt.Sprintf(f, vs...))
	return e
}

func (e *Error) Error() string {
	var s strings.Builder
	writeError(&s, "", e)
	return s.String()
}

func writeError(s *strings.Builder, indent string, e *Error) {
	s.WriteString(indent)
	s.WriteString("[")
	s.WriteString(string(e.Kind))
	s.WriteString("] ")
	if e.Loc != nil {
		s.WriteString(e.Loc.String())
		s.WriteString(": ")
	}
	s.WriteString(e.Msg)
	inner := indent + "\t"
	for _, n := range e.Notes {
		s.WriteRune('\n')
		s.WriteString(inner)
		s.WriteString(n)
	}
	for _, c := range e.Cause {
		s.WriteRune('\n')
		writeError(s, inner, c)
	}
}

// Sort orders errors by location (path, then line, then column) and
// drops exact duplicates before they're reported.
func Sort(errs []*Error) []*Error {
	if len(errs) == 0 {
		return errs
	}
	sorted := append([]*Error(nil), errs...)
	sort.Slice(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	dedup := []*Error{sorted[0]}
	for _, e := range sorted[1:] {
		d := dedup[len(dedup)-1]
		if !same(d, e) {
			dedup = append(dedup, e)
		}
	}
	return dedup
}

func less(a, b *Error) bool {
	al, bl := a.Loc, b.Loc
	switch {
	case al == nil && bl == nil:
		return a.Msg < b.Msg
	case al == nil:
		return true
	case bl == nil:
		return false
	case al.Path != bl.Path:
		return al.Path < bl.Path
	case al.Line[0] != bl.Line[0]:
		return al.Line[0] < bl.Line[0]
	default:
		return al.Col[0] < bl.Col[0]
	}
}

func same(a, b *Error) bool {
	if a.Kind != b.Kind || a.Msg != b.Msg {
		return false
	}
	switch {
	case a.Loc == nil && b.Loc == nil:
		return true
	case a.Loc == nil || b.Loc == nil:
		return false
	default:
		return *a.Loc == *b.Loc
	}
}
