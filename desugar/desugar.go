// Package desugar lowers the .chm surface AST into the grammar IR:
// nested anonymous structs, optional fields, bounded
// repetition, oneof alternation, inline char-lists, and inline string
// literals are all rewritten into the IR's normal form of plain
// nonterminals, each with one or more rules of plain symbols.
//
// Definitions are lowered one at a time while accumulating every
// diagnostic gathered along the way, rather than stopping at the
// first one.
package desugar

import (
	"github.com/z2-2z/chameleon/diag"
	"github.com/z2-2z/chameleon/ir"
	"github.com/z2-2z/chameleon/surface"
)

// Build lowers a parsed surface.Grammar into a frozen ir.Grammar,
// resolving entrypoint by name (defaulting to "Root" if empty). It
// returns every diagnostic gathered, not just the first.
func Build(g *surface.Grammar, entrypoint string) (*ir.Grammar, []*diag.Error) {
	if entrypoint == "" {
		entrypoint = "Root"
	}

	b := &builder{store: ir.NewStore()}
	for _, decl := range g.Structs {
		id := b.store.Nonterminal(decl.Name)
		syms := b.desugarFields(decl.Fields)
		if err := b.store.Define(id, []ir.Rule{ir.Rule(syms)}); err != nil {
			b.errs = append(b.errs, err)
		}
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	gram, errs := b.store.Freeze(entrypoint)
	if len(errs) > 0 {
		return nil, errs
	}
	return gram, nil
}

type builder struct {
	store *ir.Store
	errs  []*diag.Error
}

// desugarFields lowers an ordered field list into the flat symbol
// sequence of one IR rule, merging adjacent terminal symbols. The bytes
// of consecutive string fields are joined before they are interned, so
// the separate parts of a merged terminal never enter the terminal table.
func (b *builder) desugarFields(fields []*surface.Field) []ir.Symbol {
	var syms []ir.Symbol
	var pending []byte
	flush := func() {
		if len(pending) > 0 {
			syms = append(syms, ir.TerminalSymbol(b.store.InternTerminal(pending)))
			pending = nil
		}
	}
	for _, f := range fields {
		if sb, ok := f.Body.(*surface.StringBody); ok {
			pending = append(pending, sb.Value...)
			continue
		}
		flush()
		syms = append(syms, b.desugarField(f)...)
	}
	flush()
	return mergeAdjacentTerminals(b.store, syms)
}

// desugarField lowers a single field to zero or one IR symbols: zero
// for an empty string literal, whose terminal is dropped, and for a
// char-list whose numberset fails to intern (the error is recorded).
func (b *builder) desugarField(f *surface.Field) []ir.Symbol {
	switch body := f.Body.(type) {
	case *surface.RefBody:
		return []ir.Symbol{ir.NonTermSymbol(b.store.Nonterminal(body.Name))}

	case *surface.CharBody:
		ranges := make([]ir.NumRange, len(body.Items))
		for i, it := range body.Items {
			ranges[i] = ir.NumRange{Lo: uint64(it.Lo), Hi: uint64(it.Hi)}
		}
		id, err := b.store.InternNumberset(ranges)
		if err != nil {
			b.errs = append(b.errs, err)
			return nil
		}
		return []ir.Symbol{ir.NumbersetSymbol(id)}

	case *surface.StringBody:
		if len(body.Value) == 0 {
			return nil
		}
		return []ir.Symbol{ir.TerminalSymbol(b.store.InternTerminal(body.Value))}

	case *surface.OptionalBody:
		id := b.store.Fresh("optional")
		inner := b.desugarField(body.Inner)
		if err := b.store.Define(id, []ir.Rule{{}, ir.Rule(inner)}); err != nil {
			b.errs = append(b.errs, err)
		}
		return []ir.Symbol{ir.NonTermSymbol(id)}

	case *surface.RepeatsBody:
		id := b.store.Fresh("repeats")
		inner := b.desugarField(body.Inner)
		var rules []ir.Rule
		for n := body.Lo; n < body.Hi; n++ {
			rules = append(rules, ir.Rule(repeatSymbols(inner, n)))
		}
		if err := b.store.Define(id, rules); err != nil {
			b.errs = append(b.errs, err)
		}
		return []ir.Symbol{ir.NonTermSymbol(id)}

	case *surface.StructBody:
		id := b.store.Fresh("struct")
		syms := b.desugarFields(body.Fields)
		if err := b.store.Define(id, []ir.Rule{ir.Rule(syms)}); err != nil {
			b.errs = append(b.errs, err)
		}
		return []ir.Symbol{ir.NonTermSymbol(id)}

	case *surface.OneofBody:
		id := b.store.Fresh("oneof")
		rules := make([]ir.Rule, len(body.Branches))
		for i, branch := range body.Branches {
			rules[i] = ir.Rule(b.desugarField(branch))
		}
		if err := b.store.Define(id, rules); err != nil {
			b.errs = append(b.errs, err)
		}
		return []ir.Symbol{ir.NonTermSymbol(id)}

	default:
		panic("desugar: unhandled surface.FieldBody")
	}
}

func repeatSymbols(syms []ir.Symbol, n int) []ir.Symbol {
	out := make([]ir.Symbol, 0, len(syms)*n)
	for i := 0; i < n; i++ {
		out = append(out, syms...)
	}
	return out
}

// mergeAdjacentTerminals concatenates consecutive literal-byte
// terminals within one rule into a single interned Terminal. Adjacent
// numbersets are deliberately left unmerged.
func mergeAdjacentTerminals(store *ir.Store, syms []ir.Symbol) []ir.Symbol {
	var out []ir.Symbol
	for _, s := range syms {
		if s.Kind == ir.SymTerminal && len(out) > 0 {
			last := &out[len(out)-1]
			if last.Kind == ir.SymTerminal {
				merged := append(append([]byte(nil), store.TerminalBytes(last.Terminal)...), store.TerminalBytes(s.Terminal)...)
				*last = ir.TerminalSymbol(store.InternTerminal(merged))
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
