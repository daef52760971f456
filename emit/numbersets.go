package emit

import (
	"fmt"
	"strings"

	"github.com/z2-2z/chameleon/ir"
)

// writeNumbersets emits one sampler function per interned Numberset.
// Full-mode samplers are named _numberset_N; baby mode deliberately
// keeps an asymmetric name, calling the sampler _mutate_numberset_N
// even though baby mode never mutates anything.
func writeNumbersets(w *strings.Builder, g *ir.Grammar, opts Options) {
	for _, ns := range g.Numbersets {
		name := numbersetFuncName(ns.ID, opts)
		ctype := numbersetCType(ns.Width)

		fmt.Fprintf(w, "static void %s (unsigned char* output) {\n", name)
		w.WriteString("    uint64_t value;\n")
		if len(ns.Ranges) <= 1 {
			r := ns.Ranges[0]
			fmt.Fprintf(w, "    value = %dULL + (internal_random() %% (%dULL - %dULL + 1));\n", r.Lo, r.Hi-1, r.Lo)
		} else {
			fmt.Fprintf(w, "    switch (LINEAR_RANDOM(%d)) {\n", len(ns.Ranges))
			for i, r := range ns.Ranges {
				fmt.Fprintf(w, "        case %d: value = %dULL + (internal_random() %% (%dULL - %dULL + 1)); break;\n", i, r.Lo, r.Hi-1, r.Lo)
			}
			w.WriteString("        default: __builtin_unreachable();\n")
			w.WriteString("    }\n")
		}
		fmt.Fprintf(w, "    /* %s, little-endian */\n", ctype)
		fmt.Fprintf(w, "    for (int i = 0; i < %d; i++) {\n", ns.Width)
		w.WriteString("        output[i] = (unsigned char) (value >> (8 * i));\n")
		w.WriteString("    }\n}\n\n")
	}
}

func numbersetFuncName(id ir.NumbersetID, opts Options) string {
	if opts.Baby {
		return fmt.Sprintf("_mutate_numberset_%d", id)
	}
	return fmt.Sprintf("_numberset_%d", id)
}
