package emit

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/z2-2z/chameleon/ir"
)

func simpleGrammar(t *testing.T) *ir.Grammar {
	t.Helper()
	s := ir.NewStore()
	root := s.Nonterminal("Root")
	hello := s.InternTerminal([]byte("hello"))
	ns, err := s.InternNumberset([]ir.NumRange{{Lo: 0, Hi: 10}})
	require.Nil(t, err)
	require.Nil(t, s.Define(root, []ir.Rule{{
		ir.TerminalSymbol(hello),
		ir.NumbersetSymbol(ns),
	}}))
	g, errs := s.Freeze("Root")
	require.Empty(t, errs)
	return g
}

func TestHeaderFullGolden(t *testing.T) {
	g := simpleGrammar(t)
	h := Header(g, Options{})
	gd := goldie.New(t)
	gd.Assert(t, "header_full", []byte(h))
}

func TestHeaderBaby(t *testing.T) {
	g := simpleGrammar(t)
	h := Header(g, Options{Baby: true, Prefix: "fuzz"})
	require.Contains(t, h, "_BABY_CHAMELEON_FUZZ_H")
	require.Contains(t, h, "void fuzz_seed (size_t new_seed);")
	require.Contains(t, h, "size_t fuzz_generate (unsigned char* output, size_t output_capacity);")
	require.NotContains(t, h, "fuzz_mutate")
}

func TestSourceFullContainsCoreSymbols(t *testing.T) {
	g := simpleGrammar(t)
	src, err := Source(g, Options{})
	require.Nil(t, err)
	require.Contains(t, src, "TERMINAL_0")
	require.Contains(t, src, "_numberset_0")
	require.Contains(t, src, "_mutate_nonterm_0")
	require.Contains(t, src, "chameleon_generate")
	require.Contains(t, src, "chameleon_mutate")
	require.Contains(t, src, "ChameleonWalkImpl")
}

func TestSourceBabyUsesMutateNumbersetNaming(t *testing.T) {
	g := simpleGrammar(t)
	src, err := Source(g, Options{Baby: true})
	require.Nil(t, err)
	require.Contains(t, src, "_mutate_numberset_0")
	require.Contains(t, src, "_generate_nonterm_0")
	require.NotContains(t, src, "TRIANGULAR_LOOKUP_TABLE")
	require.NotContains(t, src, "ChameleonWalkImpl")
}

func TestSourceRejectsEmptyGrammar(t *testing.T) {
	_, err := Source(&ir.Grammar{}, Options{})
	require.NotNil(t, err)
}
