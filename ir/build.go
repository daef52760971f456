package ir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/z2-2z/chameleon/diag"
)

// A Store interns terminals and numbersets and assigns dense ids to
// nonterminals while the desugarer lowers the surface AST. It is the
// single mutable object in the pipeline; once Freeze succeeds, the
// returned Grammar is immutable.
type Store struct {
	names    map[string]NonterminalID
	nonterms []*Nonterminal
	defined  []bool

	terminals map[string]TerminalID
	termList  []*Terminal

	numbersets map[string]NumbersetID
	nsList     []*Numberset
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		names:      map[string]NonterminalID{},
		terminals:  map[string]TerminalID{},
		numbersets: map[string]NumbersetID{},
	}
}

// Nonterminal returns the dense id for name, creating a fresh,
// not-yet-defined placeholder on first reference. This lets the
// desugarer resolve forward references to structs declared later in
// the source.
func (s *Store) Nonterminal(name string) NonterminalID {
	if id, ok := s.names[name]; ok {
		return id
	}
	id := NonterminalID(len(s.nonterms))
	s.names[name] = id
	s.nonterms = append(s.nonterms, &Nonterminal{ID: id, Name: name})
	s.defined = append(s.defined, false)
	return id
}

// Fresh allocates a nonterminal with an auto-generated name for a
// desugared anonymous construct (an anonymous struct, a oneof, an
// optional, or a repetition fan-out), using a "(kind N)" name that
// can never collide with a surface-syntax identifier.
func (s *Store) Fresh(kind string) NonterminalID {
	name := fmt.Sprintf("(%s %d)", kind, len(s.nonterms))
	id := NonterminalID(len(s.nonterms))
	s.names[name] = id
	s.nonterms = append(s.nonterms, &Nonterminal{ID: id, Name: name})
	s.defined = append(s.defined, false)
	return id
}

// Define sets the final rule set for a nonterminal id and computes
// its flags. It is an error to Define the same source-named
// nonterminal twice.
func (s *Store) Define(id NonterminalID, rules []Rule) *diag.Error {
	if s.defined[id] {
		return diag.New(diag.DuplicateNonterminal, fmt.Sprintf("nonterminal %q is defined more than once", s.nonterms[id].Name))
	}
	nt := s.nonterms[id]
	nt.Rules = rules
	nt.computeFlags()
	s.defined[id] = true
	return nil
}

// InternTerminal interns a byte string, returning the existing id if
// an equal Terminal was already interned. Zero-length terminals must
// be filtered out by the caller before interning.
func (s *Store) InternTerminal(b []byte) TerminalID {
	key := string(b)
	if id, ok := s.terminals[key]; ok {
		return id
	}
	id := TerminalID(len(s.termList))
	t := &Terminal{ID: id, Bytes: append([]byte(nil), b...)}
	s.termList = append(s.termList, t)
	s.terminals[key] = id
	return id
}

// TerminalBytes returns the interned bytes for id, for callers (such
// as the desugarer's adjacent-terminal merge) that need to rebuild a
// terminal's payload before re-interning it.
func (s *Store) TerminalBytes(id TerminalID) []byte {
	return s.termList[id].Bytes
}

// InternNumberset canonicalizes a set of ranges (sorted, merged,
// checked for overlap and emptiness) and interns it, returning the
// existing id if an equal canonical Numberset was already interned.
func (s *Store) InternNumberset(ranges []NumRange) (NumbersetID, *diag.Error) {
	canon, err := canonicalize(ranges)
	if err != nil {
		return 0, err
	}
	key := canonKey(canon)
	if id, ok := s.numbersets[key]; ok {
		return id, nil
	}
	id := NumbersetID(len(s.nsList))
	ns := &Numberset{ID: id, Ranges: canon}
	ns.Width = Width(ns.Max())
	s.nsList = append(s.nsList, ns)
	s.numbersets[key] = id
	return id, nil
}

func canonicalize(ranges []NumRange) ([]NumRange, *diag.Error) {
	if len(ranges) == 0 {
		return nil, diag.New(diag.BadNumberset, "numberset has no ranges")
	}
	sorted := append([]NumRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })
	for _, r := range sorted {
		if r.Hi <= r.Lo {
			return nil, diag.New(diag.BadNumberset, fmt.Sprintf("empty range [%d, %d)", r.Lo, r.Hi))
		}
	}
	var merged []NumRange
	for _, r := range sorted {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if r.Lo < last.Hi {
				return nil, diag.New(diag.BadNumberset, fmt.Sprintf("overlapping ranges [%d, %d) and [%d, %d)", last.Lo, last.Hi, r.Lo, r.Hi))
			}
			if r.Lo == last.Hi {
				last.Hi = r.Hi
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged, nil
}

func canonKey(ranges []NumRange) string {
	var s strings.Builder
	for _, r := range ranges {
		fmt.Fprintf(&s, "%d:%d,", r.Lo, r.Hi)
	}
	return s.String()
}

// Freeze validates the accumulated nonterminals against the entrypoint
// name and returns the frozen Grammar, or the set of diagnostics that
// make the grammar invalid: dangling references,
// an unresolved entrypoint, and nonterminals unreachable from it.
func (s *Store) Freeze(entrypointName string) (*Grammar, []*diag.Error) {
	var errs []*diag.Error

	for i, nt := range s.nonterms {
		if !s.defined[i] {
			errs = append(errs, diag.New(diag.UnknownReference, fmt.Sprintf("nonterminal %q is referenced but never defined", nt.Name)))
		}
	}

	entry, ok := s.names[entrypointName]
	if !ok {
		errs = append(errs, diag.New(diag.EntrypointNotFound, fmt.Sprintf("entrypoint %q not found", entrypointName)))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	reachable := s.reachableFrom(entry)
	for i, nt := range s.nonterms {
		if !reachable[NonterminalID(i)] {
			errs = append(errs, diag.New(diag.UnreachableNonterminal, fmt.Sprintf("nonterminal %q is unreachable from the entrypoint", nt.Name)))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	g := &Grammar{
		Terminals:    s.termList,
		Numbersets:   s.nsList,
		Nonterminals: s.nonterms,
		Entrypoint:   entry,
	}
	g.LeftRecursive = leftRecursionRisk(g)
	return g, nil
}

func (s *Store) reachableFrom(entry NonterminalID) map[NonterminalID]bool {
	seen := map[NonterminalID]bool{entry: true}
	stack := []NonterminalID{entry}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, r := range s.nonterms[id].Rules {
			for _, sym := range r {
				if sym.Kind == SymNonTerminal && !seen[sym.NonTerm] {
					seen[sym.NonTerm] = true
					stack = append(stack, sym.NonTerm)
				}
			}
		}
	}
	return seen
}

// leftRecursionRisk flags nonterminals where every rule's first
// symbol is a nonterminal reference, so no rule is guaranteed to make
// progress toward a terminal before recursing. This is allowed, but
// flagged, since emission cannot bound such recursion by a terminal.
func leftRecursionRisk(g *Grammar) []NonterminalID {
	var flagged []NonterminalID
	for _, nt := range g.Nonterminals {
		if len(nt.Rules) == 0 {
			continue
		}
		every := true
		for _, r := range nt.Rules {
			if len(r) == 0 || r[0].Kind != SymNonTerminal {
				every = false
				break
			}
		}
		if every {
			flagged = append(flagged, nt.ID)
		}
	}
	return flagged
}
