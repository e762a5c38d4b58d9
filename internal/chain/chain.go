// Package chain implements the Commit Chain: an ordered list of commits
// recording, per entry, the finalized text and the ops that produced it
// from its predecessor, plus the cursor-rebasing machinery that keeps
// per-user cursor positions meaningful as the chain advances.
package chain

import (
	"fmt"

	"github.com/shrvim/shrvimd/internal/logging"
)

// TextSink persists the tail commit's text. Implementations log and
// swallow their own I/O errors or return them for the chain to log;
// Chain treats any returned error as best-effort and never lets it
// affect the in-memory chain.
type TextSink interface {
	Save(text string) error
}

type entry struct {
	id     int
	commit Commit
}

// Chain is not safe for concurrent use; callers (the User/Text Manager)
// are responsible for serializing access under their own lock.
type Chain struct {
	entries []entry
	idIndex map[int]int
	sink    TextSink
	logger  *logging.Logger
}

// New seeds a chain with the two sentinels required by the data model:
// (0, Commit("", "")) and (1, Commit("", initialContent)).
func New(initialContent string, sink TextSink, logger *logging.Logger) *Chain {
	c := &Chain{
		entries: []entry{
			{id: 0, commit: Commit{Text: ""}},
			{id: 1, commit: buildCommit("", initialContent)},
		},
		sink:   sink,
		logger: logger,
	}
	c.reindex()
	return c
}

func (c *Chain) reindex() {
	c.idIndex = make(map[int]int, len(c.entries))
	for i, e := range c.entries {
		c.idIndex[e.id] = i
	}
}

func (c *Chain) indexOf(id int) int {
	idx, ok := c.idIndex[id]
	if !ok {
		panic(fmt.Sprintf("chain: unknown commit id %d", id))
	}
	return idx
}

// NewBaseline prepends an empty commit at the front of the chain with an
// id one less than the current head, and returns that id. Used when a
// user connects or is reset.
func (c *Chain) NewBaseline() int {
	headID := c.entries[0].id
	newID := headID - 1
	c.entries = append([]entry{{id: newID, commit: Commit{Text: ""}}}, c.entries...)
	c.reindex()
	return newID
}

// Commit is the core operation: rebase a new text authored against
// baseID across every commit that followed it, append the result as a
// new head, and drop baseID's now-obsolete entry.
func (c *Chain) Commit(baseID int, newText string, cursors []int) (newID int, rebasedText string, rebasedCursors []int) {
	i := c.indexOf(baseID)
	oldText := c.entries[i].commit.Text

	tentative := buildCommit(oldText, newText)

	infos := make([]cursorInfo, len(cursors))
	for idx, pos := range cursors {
		infos[idx] = tentative.cursorInfo(pos)
	}

	following := make([]Commit, 0, len(c.entries)-i-1)
	for _, e := range c.entries[i+1:] {
		following = append(following, e.commit)
	}

	tentative.applyPriorCommits(following)
	for _, info := range infos {
		info.applyCommits(following)
	}

	rebasedCursors = make([]int, len(infos))
	for idx, info := range infos {
		rebasedCursors[idx] = clamp(info.position(), 0, len(tentative.Text))
	}

	tailID := c.entries[len(c.entries)-1].id
	newID = tailID + 1
	c.entries = append(c.entries, entry{id: newID, commit: tentative})
	c.reindex()

	c.Delete(baseID)
	c.persist()

	return newID, tentative.Text, rebasedCursors
}

// Delete removes the commit with the given id. If a successor exists
// and the deleted entry had a predecessor, the successor is rebuilt so
// its ops still transform its new predecessor's text into its
// unchanged text. When the deleted entry was the front of the chain,
// the successor becomes the new front and has no predecessor to rebase
// against, so it is left untouched.
func (c *Chain) Delete(id int) {
	i := c.indexOf(id)
	if i > 0 && i+1 < len(c.entries) {
		preText := c.entries[i-1].commit.Text
		nextText := c.entries[i+1].commit.Text
		c.entries[i+1] = entry{id: c.entries[i+1].id, commit: buildCommit(preText, nextText)}
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.reindex()
}

// GetText returns the stored text of the commit with the given id.
func (c *Chain) GetText(id int) string {
	return c.entries[c.indexOf(id)].commit.Text
}

// UpdateCursors applies the most recent (tail) commit's ops to a list of
// cursor positions owned by some other user, returning the new
// positions clamped to the tail text's bounds.
func (c *Chain) UpdateCursors(cursors []int) []int {
	tail := c.entries[len(c.entries)-1].commit

	out := make([]int, len(cursors))
	for i, pos := range cursors {
		info := &onOriginal{position_: pos}
		info.applyCommits([]Commit{tail})
		out[i] = clamp(info.position(), 0, len(tail.Text))
	}
	return out
}

func (c *Chain) persist() {
	if c.sink == nil {
		return
	}
	tailText := c.entries[len(c.entries)-1].commit.Text
	if err := c.sink.Save(tailText); err != nil && c.logger != nil {
		c.logger.Error("persist tail text: %v", err)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
