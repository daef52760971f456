package emit

import (
	"fmt"
	"strings"

	"github.com/z2-2z/chameleon/ir"
)

// writePrelude emits the macros, PRNG, step_t typedef, and triangular
// lookup table shared by every generated nonterminal procedure. The
// EXPORT_FUNCTION macro is left empty unless CHAMELEON_VISIBLE is
// defined, either by Options.Visible or by the including build (e.g.
// -DCHAMELEON_VISIBLE), so the public API can opt into default
// symbol visibility without forcing it on every build.
func writePrelude(w *strings.Builder, g *ir.Grammar, opts Options) {
	w.WriteString("#include <stddef.h>\n#include <stdint.h>\n#include <stdlib.h>\n\n")

	w.WriteString("#undef UNLIKELY\n#define UNLIKELY(x) __builtin_expect(!!(x), 0)\n")
	w.WriteString("#undef LIKELY\n#define LIKELY(x) __builtin_expect(!!(x), 1)\n\n")

	if opts.Visible {
		w.WriteString("#define CHAMELEON_VISIBLE\n")
	}
	w.WriteString("#ifdef CHAMELEON_VISIBLE\n#define EXPORT_FUNCTION __attribute__((visibility(\"default\")))\n#else\n#define EXPORT_FUNCTION\n#endif\n\n")

	threadLocal := ""
	if opts.ThreadSafe {
		threadLocal = "__thread "
	}

	if !opts.Baby {
		fmt.Fprintf(w, "#define TRIANGULAR_RANDOM(n) (TRIANGULAR_LOOKUP_TABLE[internal_random() %% ((n * (n + 1)) >> 1)])\n")
	}
	w.WriteString("#define LINEAR_RANDOM(n) (internal_random() % n)\n\n")

	if !opts.Baby {
		fmt.Fprintf(w, "typedef %s step_t;\n\n", stepCType(g))
	}

	fmt.Fprintf(w, "static %ssize_t rand_state = %d;\n\n", threadLocal, DefaultSeed)
	w.WriteString("static inline size_t internal_random (void) {\n")
	w.WriteString("    size_t x = rand_state;\n")
	w.WriteString("    x ^= x << 13;\n")
	w.WriteString("    x ^= x >> 7;\n")
	w.WriteString("    x ^= x << 17;\n")
	w.WriteString("    return rand_state = x;\n")
	w.WriteString("}\n\n")

	// Baby mode never biases rule choice, so it has no use for the
	// triangular table even when a nonterminal's IsTriangular flag is set.
	max := g.MaxRules()
	if !opts.Baby && max > 0 {
		fmt.Fprintf(w, "static const %s TRIANGULAR_LOOKUP_TABLE[] = {\n    ", stepCType(g))
		for i := 1; i <= max; i++ {
			for j := 0; j < i; j++ {
				fmt.Fprintf(w, "%d,", j)
			}
		}
		w.WriteString("\n};\n\n")
	}
}
