package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/z2-2z/chameleon/diag"
)

func TestInternTerminalDedupes(t *testing.T) {
	s := NewStore()
	a := s.InternTerminal([]byte("abc"))
	b := s.InternTerminal([]byte("abc"))
	c := s.InternTerminal([]byte("abd"))
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestInternNumbersetCanonicalizesAndMerges(t *testing.T) {
	s := NewStore()
	id1, err := s.InternNumberset([]NumRange{{Lo: 5, Hi: 10}, {Lo: 0, Hi: 5}})
	require.Nil(t, err)
	id2, err := s.InternNumberset([]NumRange{{Lo: 0, Hi: 10}})
	require.Nil(t, err)
	require.Equal(t, id1, id2, "adjacent ranges must merge to the same canonical set")
}

func TestInternNumbersetRejectsOverlap(t *testing.T) {
	s := NewStore()
	_, err := s.InternNumberset([]NumRange{{Lo: 0, Hi: 10}, {Lo: 5, Hi: 15}})
	require.NotNil(t, err)
	require.Equal(t, diag.BadNumberset, err.Kind)
}

func TestInternNumbersetRejectsEmptyRange(t *testing.T) {
	s := NewStore()
	_, err := s.InternNumberset([]NumRange{{Lo: 10, Hi: 10}})
	require.NotNil(t, err)
}

func TestDefineTwiceIsDuplicateError(t *testing.T) {
	s := NewStore()
	id := s.Nonterminal("Root")
	require.Nil(t, s.Define(id, []Rule{{}}))
	err := s.Define(id, []Rule{{}})
	require.NotNil(t, err)
	require.Equal(t, diag.DuplicateNonterminal, err.Kind)
}

func TestFreezeReportsUndefinedReference(t *testing.T) {
	s := NewStore()
	root := s.Nonterminal("Root")
	other := s.Nonterminal("Other") // referenced, never defined
	_ = other
	require.Nil(t, s.Define(root, []Rule{{NonTermSymbol(other)}}))
	_, errs := s.Freeze("Root")
	require.NotEmpty(t, errs)
	require.Equal(t, diag.UnknownReference, errs[0].Kind)
}

func TestFreezeReportsMissingEntrypoint(t *testing.T) {
	s := NewStore()
	id := s.Nonterminal("Root")
	require.Nil(t, s.Define(id, []Rule{{}}))
	_, errs := s.Freeze("DoesNotExist")
	require.NotEmpty(t, errs)
	require.Equal(t, diag.EntrypointNotFound, errs[0].Kind)
}

func TestFreezeReportsUnreachableNonterminal(t *testing.T) {
	s := NewStore()
	root := s.Nonterminal("Root")
	require.Nil(t, s.Define(root, []Rule{{}}))
	orphan := s.Nonterminal("Orphan")
	require.Nil(t, s.Define(orphan, []Rule{{}}))
	_, errs := s.Freeze("Root")
	require.NotEmpty(t, errs)
	require.Equal(t, diag.UnreachableNonterminal, errs[0].Kind)
}

func TestFreezeFlagsLeftRecursion(t *testing.T) {
	s := NewStore()
	root := s.Nonterminal("Root")
	require.Nil(t, s.Define(root, []Rule{{NonTermSymbol(root)}}))
	g, errs := s.Freeze("Root")
	require.Empty(t, errs)
	require.Equal(t, []NonterminalID{root}, g.LeftRecursive)
}

func TestFreezeSucceedsOnSimpleGrammar(t *testing.T) {
	s := NewStore()
	root := s.Nonterminal("Root")
	hello := s.InternTerminal([]byte("hello"))
	require.Nil(t, s.Define(root, []Rule{{TerminalSymbol(hello)}}))
	g, errs := s.Freeze("Root")
	require.Empty(t, errs)
	require.Len(t, g.Nonterminals, 1)
	require.Len(t, g.Terminals, 1)
	require.Empty(t, g.LeftRecursive)
}

func TestNonterminalFlags(t *testing.T) {
	s := NewStore()
	a := s.Nonterminal("A")
	hello := s.InternTerminal([]byte("x"))
	require.Nil(t, s.Define(a, []Rule{
		{TerminalSymbol(hello)},
		{NonTermSymbol(a)},
	}))
	g, errs := s.Freeze("A")
	require.Empty(t, errs)
	nt := g.Nonterminals[0]
	require.True(t, nt.HasTerms)
	require.True(t, nt.HasNonTerms)
	require.False(t, nt.HasNoSymbols)
	require.True(t, nt.IsTriangular)
}

func TestWidthPicksNarrowestType(t *testing.T) {
	require.Equal(t, 1, Width(255))
	require.Equal(t, 2, Width(256))
	require.Equal(t, 2, Width(65535))
	require.Equal(t, 4, Width(65536))
	require.Equal(t, 8, Width(1<<32))
}
