package chain

import (
	"strings"

	"github.com/shrvim/shrvimd/internal/difftext"
	"github.com/shrvim/shrvimd/internal/opalg"
)

// Commit stores the finalized text after a commit and the ops that
// transform its immediate predecessor's text into that text.
type Commit struct {
	Text string
	Ops  []opalg.Op
}

func buildCommit(oldText, newText string) Commit {
	return Commit{Text: newText, Ops: difftext.Ops(oldText, newText)}
}

func (c Commit) copy() Commit {
	ops := make([]opalg.Op, len(c.Ops))
	copy(ops, c.Ops)
	return Commit{Text: c.Text, Ops: ops}
}

// increasedLength is the sum of this commit's ops' increased lengths; it
// must equal len(c.Text) - len(predecessor.Text).
func (c Commit) increasedLength() int {
	sum := 0
	for _, o := range c.Ops {
		sum += o.IncreasedLength()
	}
	return sum
}

// cursorInfo classifies a snapshot-time cursor position against this
// commit's ops: inside an op's span it is pinned to that op (and may
// later split across further rebases); otherwise it rides the original
// text's cursor-shift rule.
func (c Commit) cursorInfo(pos int) cursorInfo {
	for _, op := range c.Ops {
		if op.Begin <= pos && pos <= op.End {
			return &onNewCommit{ops: []opalg.Op{op}, delta: pos - op.Begin}
		}
	}
	return &onOriginal{position_: pos}
}

// applyPriorCommits rebases c's ops across each of commits, in order, and
// recomputes c.Text against the final predecessor text once all of them
// have been folded in (Commit Chain §4.2 step 4).
func (c *Commit) applyPriorCommits(commits []Commit) {
	if len(commits) == 0 {
		return
	}
	for _, prior := range commits {
		c.Ops = opalg.RebaseListAcross(c.Ops, prior.Ops)
	}
	c.Text = rebuildText(commits[len(commits)-1].Text, c.Ops)
}

// rebuildText reconstructs the final text by applying ops (expressed as
// offsets into newOrigText) in order.
func rebuildText(newOrigText string, ops []opalg.Op) string {
	var sb strings.Builder
	endIndex := 0
	for _, op := range ops {
		sb.WriteString(newOrigText[endIndex:op.Begin])
		sb.WriteString(op.NewText)
		endIndex = op.End
	}
	sb.WriteString(newOrigText[endIndex:])
	return sb.String()
}
