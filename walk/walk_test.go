package walk

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/z2-2z/chameleon/ir"
)

// recursiveGrammar builds Root -> "end" | "a" Root, a two-rule
// nonterminal whose second rule recurses, so a walk may take more than
// one step before it reaches the terminal rule.
func recursiveGrammar(t *testing.T) *ir.Grammar {
	t.Helper()
	s := ir.NewStore()
	root := s.Nonterminal("Root")
	end := s.InternTerminal([]byte("end"))
	a := s.InternTerminal([]byte("a"))
	require.Nil(t, s.Define(root, []ir.Rule{
		{ir.TerminalSymbol(end)},
		{ir.TerminalSymbol(a), ir.NonTermSymbol(root)},
	}))
	g, errs := s.Freeze("Root")
	require.Empty(t, errs)
	return g
}

func TestGenerateRespectsCapacity(t *testing.T) {
	g := recursiveGrammar(t)
	w, _ := Generate(g, 3, 100, rand.New(rand.NewSource(1)))
	require.LessOrEqual(t, len(w.Steps), 3)
}

func TestGenerateRespectsMaxOutput(t *testing.T) {
	g := recursiveGrammar(t)
	_, out := Generate(g, 20, 2, rand.New(rand.NewSource(1)))
	require.LessOrEqual(t, len(out), 2)
}

func TestReplayReproducesGenerateOutput(t *testing.T) {
	g := recursiveGrammar(t)
	w, out := Generate(g, 10, 100, rand.New(rand.NewSource(42)))
	replayed := Replay(g, w, 100)
	require.Equal(t, out, replayed)
}

func TestReplayReproducesMutateOutput(t *testing.T) {
	g := recursiveGrammar(t)
	w, _ := Generate(g, 10, 100, rand.New(rand.NewSource(7)))
	mutated, out := Mutate(g, w, 100, rand.New(rand.NewSource(99)))
	replayed := Replay(g, mutated, 100)
	require.Equal(t, out, replayed)
}

func TestMutateOnEmptyWalkBehavesLikeGenerate(t *testing.T) {
	g := recursiveGrammar(t)
	empty := NewWalk(10)
	mutated, out := Mutate(g, empty, 100, rand.New(rand.NewSource(3)))
	require.NotEmpty(t, out)
	require.Equal(t, out, Replay(g, mutated, 100))
}
