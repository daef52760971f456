package emit

import (
	"fmt"
	"strings"

	"github.com/z2-2z/chameleon/ir"
)

// writeTerminals emits one static byte array per interned Terminal.
func writeTerminals(w *strings.Builder, g *ir.Grammar) {
	if len(g.Terminals) == 0 {
		return
	}
	for _, t := range g.Terminals {
		fmt.Fprintf(w, "static const unsigned char TERMINAL_%d[%d] = {", t.ID, len(t.Bytes))
		for i, b := range t.Bytes {
			if i > 0 {
				w.WriteString(", ")
			}
			fmt.Fprintf(w, "0x%02x", b)
		}
		w.WriteString("};\n")
	}
	w.WriteString("\n")
}
