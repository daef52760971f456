package desugar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/z2-2z/chameleon/ir"
	"github.com/z2-2z/chameleon/surface"
)

func parse(t *testing.T, src string) *surface.Grammar {
	t.Helper()
	p := surface.NewParser()
	require.NoError(t, p.Parse("test.chm", src))
	return p.Grammar()
}

func TestBuildDefaultsEntrypointToRoot(t *testing.T) {
	g := parse(t, `struct Root { greeting: string = "hi"; }`)
	gram, errs := Build(g, "")
	require.Empty(t, errs)
	require.Equal(t, "Root", gram.Nonterminals[gram.Entrypoint].Name)
}

func TestBuildStringLiteralInternsTerminal(t *testing.T) {
	g := parse(t, `struct Root { greeting: string = "hi"; }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)
	require.Len(t, gram.Terminals, 1)
	require.Equal(t, []byte("hi"), gram.Terminals[0].Bytes)
}

func TestBuildDropsEmptyStringLiteral(t *testing.T) {
	g := parse(t, `struct Root { nothing: string = ""; }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)
	require.Empty(t, gram.Terminals)
	require.Empty(t, gram.Nonterminals[gram.Entrypoint].Rules[0])
}

func TestBuildMergesAdjacentTerminals(t *testing.T) {
	g := parse(t, `struct Root { a: string = "foo"; b: string = "bar"; }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)
	require.Len(t, gram.Terminals, 1, "adjacent terminals should merge into one")
	require.Equal(t, []byte("foobar"), gram.Terminals[0].Bytes)
	require.Len(t, gram.Nonterminals[gram.Entrypoint].Rules[0], 1)
}

func TestBuildCharListInternsNumberset(t *testing.T) {
	g := parse(t, `struct Root { c: char = 97..122; }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)
	require.Len(t, gram.Numbersets, 1)
	require.Equal(t, uint64(97), gram.Numbersets[0].Ranges[0].Lo)
	require.Equal(t, uint64(122), gram.Numbersets[0].Ranges[0].Hi)
}

func TestBuildOptionalYieldsEmptyAndInnerRule(t *testing.T) {
	g := parse(t, `struct Root { maybe: optional inner: string = "x"; }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)

	rootSym := gram.Nonterminals[gram.Entrypoint].Rules[0][0]
	require.Equal(t, ir.SymNonTerminal, rootSym.Kind)
	opt := gram.Nonterminals[rootSym.NonTerm]
	require.Len(t, opt.Rules, 2)
	require.Empty(t, opt.Rules[0])
	require.Len(t, opt.Rules[1], 1)
}

func TestBuildRepeatsEnumeratesLengths(t *testing.T) {
	g := parse(t, `struct Root { xs: repeats 0..3 x: char = 'x'; }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)

	rootSym := gram.Nonterminals[gram.Entrypoint].Rules[0][0]
	rep := gram.Nonterminals[rootSym.NonTerm]
	require.Len(t, rep.Rules, 3)
	require.Len(t, rep.Rules[0], 0)
	require.Len(t, rep.Rules[1], 1)
	require.Len(t, rep.Rules[2], 2)
}

func TestBuildOneofOneRulePerBranch(t *testing.T) {
	g := parse(t, `struct Root { choice: oneof { a: char = 'a'; b: char = 'b'; c: char = 'c'; } }`)
	gram, errs := Build(g, "Root")
	require.Empty(t, errs)

	rootSym := gram.Nonterminals[gram.Entrypoint].Rules[0][0]
	oneof := gram.Nonterminals[rootSym.NonTerm]
	require.Len(t, oneof.Rules, 3)
	for _, r := range oneof.Rules {
		require.Len(t, r, 1)
		require.Equal(t, ir.SymNumberset, r[0].Kind)
	}
}

func TestBuildUnknownReferenceIsReported(t *testing.T) {
	g := parse(t, `struct Root { x: DoesNotExist; }`)
	_, errs := Build(g, "Root")
	require.NotEmpty(t, errs)
}

func TestBuildDuplicateStructIsReported(t *testing.T) {
	g := parse(t, `struct Root { a: char = 'a'; } struct Root { b: char = 'b'; }`)
	_, errs := Build(g, "Root")
	require.NotEmpty(t, errs)
}
