// Package difftext turns a pair of old/new texts into the non-overlapping
// replace/insert/delete Op spans the Commit Chain needs (spec design
// note "Diff dependency"): any stable LCS-class diff is acceptable, the
// algebra only requires apply(ops, old) == new.
package difftext

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/shrvim/shrvimd/internal/opalg"
)

var engine = diffmatchpatch.New()

// Ops computes the Op list that transforms oldText into newText.
// Consecutive delete/insert runs are merged into a single replace span so
// the result matches what difflib-style opcode diffs would have produced.
func Ops(oldText, newText string) []opalg.Op {
	diffs := engine.DiffMain(oldText, newText, false)

	var ops []opalg.Op
	oldPos := 0
	pendingBegin := -1
	var pendingNew strings.Builder

	flush := func(end int) {
		if pendingBegin < 0 {
			return
		}
		op := opalg.New(pendingBegin, end, pendingNew.String())
		if !op.IsNoop() {
			ops = append(ops, op)
		}
		pendingBegin = -1
		pendingNew.Reset()
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush(oldPos)
			oldPos += len(d.Text)
		case diffmatchpatch.DiffDelete:
			if pendingBegin < 0 {
				pendingBegin = oldPos
			}
			oldPos += len(d.Text)
		case diffmatchpatch.DiffInsert:
			if pendingBegin < 0 {
				pendingBegin = oldPos
			}
			pendingNew.WriteString(d.Text)
		}
	}
	flush(oldPos)

	return ops
}
