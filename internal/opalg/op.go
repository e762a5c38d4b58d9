// Package opalg implements the primitive edit operation and the rebase
// algebra used to reconcile two concurrent edits against a shared anchor
// text.
package opalg

// Op is an immutable edit primitive: replace the source-text byte range
// [Begin, End) with NewText.
type Op struct {
	Begin   int
	End     int
	NewText string
}

// New constructs an Op, panicking if the range is inverted. Callers that
// build ops from untrusted input should validate begin <= end themselves.
func New(begin, end int, newText string) Op {
	if begin > end {
		panic("opalg: begin > end")
	}
	return Op{Begin: begin, End: end, NewText: newText}
}

// IncreasedLength is the net change in text length this op causes:
// len(NewText) - (End - Begin).
func (o Op) IncreasedLength() int {
	return len(o.NewText) - (o.End - o.Begin)
}

// IsNoop reports whether applying o has no observable effect.
func (o Op) IsNoop() bool {
	return o.Begin == o.End && o.NewText == ""
}

// Apply replaces [o.Begin, o.End) in text with o.NewText. The caller must
// ensure the range is within bounds of text.
func (o Op) Apply(text string) string {
	return text[:o.Begin] + o.NewText + text[o.End:]
}

// ApplyAll applies ops in order to text, returning the final result. Each
// op is interpreted against the text produced by the previous one, so ops
// must already be expressed as a sequence against a single evolving
// anchor. Commit.Ops does not have this form: every op in it is an
// offset into the predecessor commit's text.
func ApplyAll(ops []Op, text string) string {
	for _, o := range ops {
		text = o.Apply(text)
	}
	return text
}
