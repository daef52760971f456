package emit

import (
	"fmt"
	"strings"

	"github.com/z2-2z/chameleon/ir"
)

// writeFullProcedures emits one _mutate_nonterm_N per nonterminal, in
// the style of a generated full/mutations.c translation unit.
func writeFullProcedures(w *strings.Builder, g *ir.Grammar) {
	leftRec := map[ir.NonterminalID]bool{}
	for _, id := range g.LeftRecursive {
		leftRec[id] = true
	}

	for _, nt := range g.Nonterminals {
		fmt.Fprintf(w, "// mutation procedure for nonterminal %q\n", nt.Name)
		if leftRec[nt.ID] {
			w.WriteString("// left-recursive: every rule starts with a nonterminal reference\n")
		}
		name := fmt.Sprintf("_mutate_nonterm_%d", nt.ID)

		if len(nt.Rules) <= 1 {
			writeFullSingleRule(w, g, name, nt)
		} else {
			writeFullMultiRule(w, g, name, nt)
		}
		w.WriteString("\n")
	}
}

func writeFullSingleRule(w *strings.Builder, g *ir.Grammar, name string, nt *ir.Nonterminal) {
	fmt.Fprintf(w, "static size_t %s (step_t* steps, const size_t length, const size_t capacity, size_t* step, unsigned char* output, size_t output_length) {\n", name)
	if nt.HasNoSymbols {
		w.WriteString("    (void) steps; (void) length; (void) output; (void) output_length;\n")
		w.WriteString("    size_t s = *step;\n")
		w.WriteString("    if (LIKELY(s < capacity)) {\n        *step = s + 1;\n    }\n")
		w.WriteString("    return 0;\n}\n")
		return
	}

	w.WriteString("    (void) steps;\n")
	if nt.HasNonTerms {
		w.WriteString("    size_t r;\n")
	}
	if nt.HasTerms {
		w.WriteString("    unsigned int mutate;\n")
	}
	w.WriteString("    unsigned char* original_output = output;\n")
	w.WriteString("    size_t s = *step;\n\n")
	w.WriteString("    if (UNLIKELY(s >= capacity)) {\n        return 0;\n    }\n")
	w.WriteString("    *step = s + 1;\n")
	if nt.HasTerms {
		w.WriteString("    mutate = (s >= length);\n")
	}
	w.WriteString("\n")

	writeRuleSymbols(w, g, nt.Rules[0], ruleMode{gated: true, mutatePrefix: "_mutate_nonterm_", recurArgs: "steps, length, capacity, step, output, output_length", nsPrefix: "_numberset_"})

	w.WriteString("\n    return (size_t) (output - original_output);\n}\n")
}

func writeFullMultiRule(w *strings.Builder, g *ir.Grammar, name string, nt *ir.Nonterminal) {
	fmt.Fprintf(w, "static size_t %s (step_t* steps, const size_t length, const size_t capacity, size_t* step, unsigned char* output, size_t output_length) {\n", name)
	if nt.HasNoSymbols {
		w.WriteString("    (void) output_length;\n")
	}
	if nt.HasNonTerms {
		w.WriteString("    size_t r;\n")
	}
	w.WriteString("    unsigned int mutate, rule;\n")
	w.WriteString("    unsigned char* original_output = output;\n")
	w.WriteString("    size_t s = *step;\n\n")
	w.WriteString("    if (UNLIKELY(s >= capacity)) {\n        return 0;\n    }\n")
	w.WriteString("    *step = s + 1;\n\n")
	w.WriteString("    mutate = (s >= length);\n")
	w.WriteString("    if (mutate) {\n")
	if nt.IsTriangular {
		fmt.Fprintf(w, "        rule = TRIANGULAR_RANDOM(%d);\n", len(nt.Rules))
	} else {
		fmt.Fprintf(w, "        rule = internal_random() %% %d;\n", len(nt.Rules))
	}
	w.WriteString("        steps[s] = rule;\n    } else {\n        rule = steps[s];\n    }\n\n")

	w.WriteString("    switch (rule) {\n")
	mode := ruleMode{gated: true, mutatePrefix: "_mutate_nonterm_", recurArgs: "steps, length, capacity, step, output, output_length", nsPrefix: "_numberset_"}
	for i, rule := range nt.Rules {
		fmt.Fprintf(w, "        case %d: {\n", i)
		writeRuleSymbols(w, g, rule, mode)
		w.WriteString("            break;\n        }\n")
	}
	w.WriteString("        default: __builtin_unreachable();\n    }\n")
	w.WriteString("\n    return (size_t) (output - original_output);\n}\n")
}

// writeBabyProcedures emits one _generate_nonterm_N per nonterminal,
// mirroring baby/mutations.c: no walk, no step tape, a fresh choice
// made on every call.
func writeBabyProcedures(w *strings.Builder, g *ir.Grammar) {
	mode := ruleMode{gated: false, mutatePrefix: "_generate_nonterm_", recurArgs: "output, output_length", nsPrefix: "_mutate_numberset_"}

	for _, nt := range g.Nonterminals {
		fmt.Fprintf(w, "// generator procedure for nonterminal %q\n", nt.Name)
		name := fmt.Sprintf("_generate_nonterm_%d", nt.ID)
		fmt.Fprintf(w, "static size_t %s (unsigned char* output, size_t output_length) {\n", name)

		if nt.HasNoSymbols {
			w.WriteString("    (void) output; (void) output_length;\n    return 0;\n}\n\n")
			continue
		}
		if nt.HasNonTerms {
			w.WriteString("    size_t r;\n")
		}
		w.WriteString("    unsigned char* original_output = output;\n\n")

		if len(nt.Rules) <= 1 {
			writeRuleSymbols(w, g, nt.Rules[0], mode)
		} else {
			fmt.Fprintf(w, "    switch (internal_random() %% %d) {\n", len(nt.Rules))
			for i, rule := range nt.Rules {
				fmt.Fprintf(w, "        case %d: {\n", i)
				writeRuleSymbols(w, g, rule, mode)
				w.WriteString("            break;\n        }\n")
			}
			w.WriteString("        default: __builtin_unreachable();\n    }\n")
		}
		w.WriteString("\n    return (size_t) (output - original_output);\n}\n\n")
	}
}

// ruleMode parameterizes the shared symbol-walking code between the
// full mutate procedures (gated writes, step-tape replay) and the
// baby generate procedures (unconditional writes, no tape).
type ruleMode struct {
	gated        bool
	mutatePrefix string
	recurArgs    string
	nsPrefix     string
}

func numbersetByID(g *ir.Grammar, id ir.NumbersetID) *ir.Numberset {
	for _, ns := range g.Numbersets {
		if ns.ID == id {
			return ns
		}
	}
	return nil
}

func writeRuleSymbols(w *strings.Builder, g *ir.Grammar, rule ir.Rule, mode ruleMode) {
	for i, sym := range rule {
		last := i == len(rule)-1
		switch sym.Kind {
		case ir.SymTerminal:
			size := fmt.Sprintf("sizeof(TERMINAL_%d)", sym.Terminal)
			copyStmt := fmt.Sprintf("__builtin_memcpy(output, TERMINAL_%d, %s);", sym.Terminal, size)
			writeGatedStep(w, size, copyStmt, mode.gated, last)

		case ir.SymNumberset:
			ns := numbersetByID(g, sym.Numberset)
			size := fmt.Sprintf("sizeof(%s)", numbersetCType(ns.Width))
			copyStmt := fmt.Sprintf("%s%d(output);", mode.nsPrefix, sym.Numberset)
			writeGatedStep(w, size, copyStmt, mode.gated, last)

		case ir.SymNonTerminal:
			fmt.Fprintf(w, "    r = %s%d(%s);\n    output += r;\n", mode.mutatePrefix, sym.NonTerm, mode.recurArgs)
			if !last {
				w.WriteString("    output_length -= r;\n")
			}
		}
	}
}

// writeGatedStep emits one terminal/numberset write. In full mode the
// write itself only runs when replaying would overwrite a step not yet
// taken (mutate == true); in baby mode every write is unconditional.
func writeGatedStep(w *strings.Builder, sizeExpr, stmt string, gated, last bool) {
	if gated {
		fmt.Fprintf(w, "    if (mutate) {\n        if (UNLIKELY(%s > output_length)) {\n            return output_length;\n        }\n        %s\n    }\n", sizeExpr, stmt)
	} else {
		fmt.Fprintf(w, "    if (UNLIKELY(%s > output_length)) {\n        return output_length;\n    }\n    %s\n", sizeExpr, stmt)
	}
	fmt.Fprintf(w, "    output += %s;\n", sizeExpr)
	if !last {
		fmt.Fprintf(w, "    output_length -= %s;\n", sizeExpr)
	}
}
