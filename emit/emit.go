// Package emit renders a frozen grammar IR as a self-contained C
// translation unit exposing a generate/mutate runtime API.
//
// There is no template engine here: every helper below assembles C
// source directly with strings.Builder and fmt.Fprintf, the same way
// a Go source generator would render Go source, rather than through a
// templating library. Each helper corresponds to one section of a
// generated translation unit: prelude, terminal table, numberset
// samplers, per-nonterminal procedures, and the public API.
package emit

import (
	"fmt"
	"strings"

	"github.com/z2-2z/chameleon/diag"
	"github.com/z2-2z/chameleon/ir"
)

// DefaultPrefix is used for public symbol names when Options.Prefix is
// empty.
const DefaultPrefix = "chameleon"

// DefaultSeed seeds the PRNG when chameleon_seed(0) is called.
const DefaultSeed uint64 = 1739639165216539016

// Options configures one emission pass.
type Options struct {
	Prefix     string // public symbol prefix; defaults to DefaultPrefix
	Baby       bool   // emit the walk-less seed+generate-only variant
	ThreadSafe bool   // make the PRNG state thread-local
	Visible    bool   // mark public functions default-visibility
	BuildID    string // stamped into a "Compiled-By" header comment
}

func (o Options) prefix() string {
	if o.Prefix == "" {
		return DefaultPrefix
	}
	return o.Prefix
}

// Source renders the full .c translation unit for g.
func Source(g *ir.Grammar, opts Options) (string, *diag.Error) {
	if len(g.Nonterminals) == 0 {
		return "", diag.New(diag.TemplateError, "cannot emit a grammar with no nonterminals")
	}

	var w strings.Builder
	writeBanner(&w, opts)

	writePrelude(&w, g, opts)
	writeTerminals(&w, g)
	writeNumbersets(&w, g, opts)
	if opts.Baby {
		writeBabyProcedures(&w, g)
		writeBabyPublicAPI(&w, g, opts)
	} else {
		writeFullProcedures(&w, g)
		writeFullPublicAPI(&w, g, opts)
	}

	return w.String(), nil
}

// Header renders the public .h file declaring g's runtime API.
func Header(g *ir.Grammar, opts Options) string {
	var w strings.Builder
	prefix := opts.prefix()
	guard := fmt.Sprintf("_CHAMELEON_%s_H", strings.ToUpper(prefix))
	if opts.Baby {
		guard = fmt.Sprintf("_BABY_CHAMELEON_%s_H", strings.ToUpper(prefix))
	}

	fmt.Fprintf(&w, "#ifndef %s\n#define %s\n\n#include <stddef.h>\n\n", guard, guard)
	if opts.Baby {
		fmt.Fprintf(&w, "void %s_seed (size_t new_seed);\n", prefix)
		fmt.Fprintf(&w, "size_t %s_generate (unsigned char* output, size_t output_capacity);\n", prefix)
	} else {
		fmt.Fprintf(&w, "// Details of ChameleonWalk are private to the generated code\ntypedef unsigned char ChameleonWalk[32];\n\n")
		fmt.Fprintf(&w, "void %s_seed (size_t new_seed);\n", prefix)
		fmt.Fprintf(&w, "void %s_init (ChameleonWalk walk, size_t capacity);\n", prefix)
		fmt.Fprintf(&w, "void %s_destroy (ChameleonWalk walk);\n", prefix)
		fmt.Fprintf(&w, "size_t %s_mutate (ChameleonWalk walk, unsigned char* output, size_t output_capacity);\n", prefix)
		fmt.Fprintf(&w, "size_t %s_generate (ChameleonWalk walk, unsigned char* output, size_t output_capacity);\n", prefix)
	}
	fmt.Fprintf(&w, "\n#endif /* %s */\n", guard)
	return w.String()
}

func writeBanner(w *strings.Builder, opts Options) {
	w.WriteString("/* Generated by chameleon. Do not edit by hand. */\n")
	if opts.BuildID != "" {
		fmt.Fprintf(w, "/* Compiled-By: %s */\n", opts.BuildID)
	}
	w.WriteString("\n")
}

// stepCType returns the narrowest unsigned C integer type that can
// hold every rule index in g, matching Grammar.StepBits.
func stepCType(g *ir.Grammar) string {
	switch g.StepBits() {
	case 8:
		return "unsigned char"
	case 16:
		return "unsigned short"
	default:
		return "unsigned int"
	}
}

// numbersetCType returns the C integer type matching a Numberset's
// byte width.
func numbersetCType(width int) string {
	switch width {
	case 1:
		return "uint8_t"
	case 2:
		return "uint16_t"
	case 4:
		return "uint32_t"
	default:
		return "uint64_t"
	}
}
