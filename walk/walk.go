// Package walk models ChameleonWalk's generate/replay/mutate semantics
// in pure Go, so those properties can be checked without compiling any
// emitted C. It is not used by the emitter; it exists purely as an
// executable cross-check of the semantics emit/ encodes as C, playing
// the same role a type checker plays for a later codegen pass: it
// verifies invariants that codegen relies on but cannot itself verify.
package walk

import (
	"math/rand"

	"github.com/z2-2z/chameleon/ir"
)

// A Walk is a replayable tape of rule-index choices, one per step, plus
// the capacity it was allocated with.
type Walk struct {
	Steps    []int
	Capacity int
}

// NewWalk allocates an empty walk with room for capacity steps.
func NewWalk(capacity int) *Walk {
	return &Walk{Capacity: capacity}
}

// Generate produces a brand new walk from scratch, choosing every rule
// freshly, and returns the bytes it expands to (truncated to maxOutput).
func Generate(g *ir.Grammar, capacity, maxOutput int, rng *rand.Rand) (*Walk, []byte) {
	w := NewWalk(capacity)
	e := &engine{g: g, w: w, length: 0, maxOutput: maxOutput, rng: rng}
	out := e.run()
	return w, out
}

// Mutate replays a random prefix of an existing walk verbatim and
// makes fresh choices for the remainder, truncating the walk itself to
// however many steps the expansion actually used.
func Mutate(g *ir.Grammar, w *Walk, maxOutput int, rng *rand.Rand) (*Walk, []byte) {
	prefix := 0
	if len(w.Steps) > 0 {
		prefix = rng.Intn(len(w.Steps))
	}
	replay := &Walk{Steps: append([]int(nil), w.Steps[:prefix]...), Capacity: w.Capacity}
	e := &engine{g: g, w: replay, length: prefix, maxOutput: maxOutput, rng: rng}
	out := e.run()
	return replay, out
}

// Replay re-expands a walk deterministically using only its recorded
// steps; it must reproduce byte-for-byte the same output that produced
// those steps, and must never consult rng: replay is deterministic. If
// the expansion would need a choice beyond what w.Steps recorded, that
// is a caller bug: w was not a complete walk for this grammar.
func Replay(g *ir.Grammar, w *Walk, maxOutput int) []byte {
	e := &engine{g: g, w: &Walk{Steps: w.Steps, Capacity: w.Capacity}, length: len(w.Steps), maxOutput: maxOutput}
	return e.run()
}

// engine holds the mutable state threaded through one expansion: the
// step cursor, the output buffer, and the replay/fresh-choice boundary.
type engine struct {
	g         *ir.Grammar
	w         *Walk
	step      int
	length    int
	maxOutput int
	rng       *rand.Rand
	out       []byte
}

func (e *engine) run() []byte {
	e.expand(e.g.Entrypoint)
	return e.out
}

// expand walks id, consulting w.Steps[0:length) as already-decided
// choices and extending w.Steps with fresh choices for anything beyond
// that prefix. It returns immediately once w.Capacity steps have been
// taken, mirroring the C step-tape-exhaustion rule, and never
// writes past maxOutput bytes, mirroring the truncation rule.
func (e *engine) expand(id ir.NonterminalID) {
	if e.step >= e.w.Capacity || len(e.out) >= e.maxOutput {
		return
	}
	nt := findNonterm(e.g, id)
	s := e.step
	e.step = s + 1
	mutate := s >= e.length
	if mutate && len(nt.Rules) <= 1 && s >= len(e.w.Steps) {
		// Steps is indexed by step, so a step with no choice to make
		// still takes a slot; its value is never read.
		e.w.Steps = append(e.w.Steps, 0)
	}

	var rule ir.Rule
	switch {
	case len(nt.Rules) == 0:
		return
	case len(nt.Rules) == 1:
		rule = nt.Rules[0]
	default:
		var choice int
		if mutate {
			choice = e.chooseRule(nt)
			if s < len(e.w.Steps) {
				e.w.Steps[s] = choice
			} else {
				e.w.Steps = append(e.w.Steps, choice)
			}
		} else {
			choice = e.w.Steps[s]
		}
		rule = nt.Rules[choice]
	}

	for _, sym := range rule {
		if len(e.out) >= e.maxOutput {
			return
		}
		switch sym.Kind {
		case ir.SymTerminal:
			e.appendTruncated(findTerminal(e.g, sym.Terminal).Bytes)
		case ir.SymNumberset:
			e.appendTruncated(make([]byte, findNumberset(e.g, sym.Numberset).Width))
		case ir.SymNonTerminal:
			e.expand(sym.NonTerm)
		}
	}
}

func (e *engine) chooseRule(nt *ir.Nonterminal) int {
	n := len(nt.Rules)
	if !nt.IsTriangular {
		return e.rng.Intn(n)
	}
	total := n * (n + 1) / 2
	k := e.rng.Intn(total)
	for i := 1; i <= n; i++ {
		if t := i * (i + 1) / 2; k < t {
			return k - (t - i)
		}
	}
	return n - 1
}

func (e *engine) appendTruncated(b []byte) {
	room := e.maxOutput - len(e.out)
	if room <= 0 {
		return
	}
	if room < len(b) {
		b = b[:room]
	}
	e.out = append(e.out, b...)
}

func findNonterm(g *ir.Grammar, id ir.NonterminalID) *ir.Nonterminal {
	for _, nt := range g.Nonterminals {
		if nt.ID == id {
			return nt
		}
	}
	return nil
}

func findTerminal(g *ir.Grammar, id ir.TerminalID) *ir.Terminal {
	for _, t := range g.Terminals {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func findNumberset(g *ir.Grammar, id ir.NumbersetID) *ir.Numberset {
	for _, n := range g.Numbersets {
		if n.ID == id {
			return n
		}
	}
	return nil
}
