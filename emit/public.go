package emit

import (
	"fmt"
	"strings"

	"github.com/z2-2z/chameleon/ir"
)

// writeFullPublicAPI emits chameleon_seed/init/destroy/mutate/generate,
// reconstructing ChameleonWalk's internal layout (steps/length/capacity)
// behind the public opaque byte array. The opaque typedef is emitted
// here too, in the .c itself, so the translation unit stays
// self-contained and does not depend on its own generated header
// (only a consumer linking against it needs that header).
func writeFullPublicAPI(w *strings.Builder, g *ir.Grammar, opts Options) {
	prefix := opts.prefix()

	w.WriteString("typedef unsigned char ChameleonWalk[32];\n\n")
	w.WriteString("typedef struct {\n    step_t* steps;\n    size_t length;\n    size_t capacity;\n} ChameleonWalkImpl;\n\n")
	w.WriteString("_Static_assert(sizeof(ChameleonWalkImpl) <= 32, \"ChameleonWalk is too small for this grammar's step type\");\n\n")

	fmt.Fprintf(w, "EXPORT_FUNCTION void %s_seed (size_t new_seed) {\n    rand_state = new_seed ? new_seed : %d;\n}\n\n", prefix, DefaultSeed)

	fmt.Fprintf(w, "EXPORT_FUNCTION void %s_init (ChameleonWalk walk, size_t capacity) {\n", prefix)
	w.WriteString("    ChameleonWalkImpl* w = (ChameleonWalkImpl*) walk;\n")
	w.WriteString("    w->steps = malloc(capacity * sizeof(step_t));\n")
	w.WriteString("    w->length = 0;\n    w->capacity = capacity;\n}\n\n")

	fmt.Fprintf(w, "EXPORT_FUNCTION void %s_destroy (ChameleonWalk walk) {\n", prefix)
	w.WriteString("    ChameleonWalkImpl* w = (ChameleonWalkImpl*) walk;\n    free(w->steps);\n}\n\n")

	fmt.Fprintf(w, "EXPORT_FUNCTION size_t %s_mutate (ChameleonWalk walk, unsigned char* output, size_t output_capacity) {\n", prefix)
	w.WriteString("    ChameleonWalkImpl* w = (ChameleonWalkImpl*) walk;\n")
	w.WriteString("    size_t step = 0;\n")
	w.WriteString("    size_t trunc = w->length ? (internal_random() % w->length) : 0;\n")
	fmt.Fprintf(w, "    size_t n = _mutate_nonterm_%d(w->steps, trunc, w->capacity, &step, output, output_capacity);\n", g.Entrypoint)
	w.WriteString("    w->length = step;\n    return n;\n}\n\n")

	fmt.Fprintf(w, "EXPORT_FUNCTION size_t %s_generate (ChameleonWalk walk, unsigned char* output, size_t output_capacity) {\n", prefix)
	w.WriteString("    ChameleonWalkImpl* w = (ChameleonWalkImpl*) walk;\n")
	w.WriteString("    size_t step = 0;\n")
	fmt.Fprintf(w, "    size_t n = _mutate_nonterm_%d(w->steps, 0, w->capacity, &step, output, output_capacity);\n", g.Entrypoint)
	w.WriteString("    w->length = step;\n    return n;\n}\n")
}

// writeBabyPublicAPI emits chameleon_seed/generate for baby mode, which
// has no walk and therefore no replay.
func writeBabyPublicAPI(w *strings.Builder, g *ir.Grammar, opts Options) {
	prefix := opts.prefix()
	fmt.Fprintf(w, "EXPORT_FUNCTION void %s_seed (size_t new_seed) {\n    rand_state = new_seed ? new_seed : %d;\n}\n\n", prefix, DefaultSeed)
	fmt.Fprintf(w, "EXPORT_FUNCTION size_t %s_generate (unsigned char* output, size_t output_capacity) {\n", prefix)
	fmt.Fprintf(w, "    return _generate_nonterm_%d(output, output_capacity);\n}\n", g.Entrypoint)
}
