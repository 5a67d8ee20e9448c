package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print writes a readable textual dump of fn to w: one line per block
// header and one line per instruction, with live-range/debug tooling in
// mind rather than round-tripping. Mirrors the shape of
// lang/ast.Print (one node per line, stable ids first).
func Print(w io.Writer, fn *Function) {
	fmt.Fprintf(w, "func %s(%d params)\n", fn.Name, fn.Params)
	for _, id := range fn.BlockIds() {
		blk := fn.Block(id)
		preds := make([]string, len(blk.Preds))
		for i, p := range blk.Preds {
			preds[i] = fmt.Sprintf("b%d", p)
		}
		fmt.Fprintf(w, "b%d %s (preds: %s)\n", id, blk.Label, strings.Join(preds, ", "))
		for _, instID := range blk.Insts {
			inst := fn.Inst(instID)
			name := inst.Name
			if name == "" {
				name = fmt.Sprintf("%%%d", instID)
			}
			fmt.Fprintf(w, "    %s = %s\n", name, inst.Value.String())
		}
		if blk.Term != nil {
			fmt.Fprintf(w, "    %s\n", blk.Term.String())
		}
	}
}
