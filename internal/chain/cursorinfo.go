package chain

import "github.com/shrvim/shrvimd/internal/opalg"

// cursorInfo is the tagged union spec design notes call for: a cursor is
// either still expressed against the original anchor text (onOriginal)
// or pinned to a specific op produced by the commit it was snapshotted
// against (onNewCommit), which may itself split as later commits rebase
// across it.
type cursorInfo interface {
	applyCommits(commits []Commit)
	position() int
}

type onOriginal struct {
	position_ int
}

func (c *onOriginal) applyCommits(commits []Commit) {
	for _, commit := range commits {
		for _, op := range commit.Ops {
			switch {
			case c.position_ <= op.Begin:
				// op is entirely at or after the cursor: unaffected.
			case op.End-1 <= c.position_:
				// op is entirely at or before the cursor: shift.
				c.position_ += op.IncreasedLength()
			default:
				// cursor lies inside the replaced span: snap to begin.
				c.position_ = op.Begin
			}
		}
	}
}

func (c *onOriginal) position() int { return c.position_ }

type onNewCommit struct {
	ops   []opalg.Op
	delta int
}

func (c *onNewCommit) applyCommits(commits []Commit) {
	for _, commit := range commits {
		c.ops = opalg.RebaseListAcross(c.ops, commit.Ops)
	}
}

func (c *onNewCommit) position() int {
	dt := c.delta
	var last opalg.Op
	found := false
	for _, op := range c.ops {
		last = op
		found = true
		if op.Begin+dt <= op.End {
			return op.Begin + dt
		}
		dt -= len(op.NewText)
	}
	if !found {
		return c.delta
	}
	// delta ran past every surviving fragment: clamp to the end of the
	// replacement text rather than walking off the end of the commit.
	return last.Begin + len(last.NewText)
}
