package opalg

// Rebase reinterprets subject against the text produced by applying
// earlier, which has already landed on their common anchor. It returns
// one or two ops and never fails: the algebra is total.
//
// The ten geometric cases are a partition of how the half-open intervals
// [earlier.Begin, earlier.End) and [subject.Begin, subject.End) relate;
// they are checked in priority order so that boundary ties (e.g. an
// empty subject sitting exactly at earlier's left edge) resolve the same
// way every time.
func Rebase(subject, earlier Op) []Op {
	a, b := earlier.Begin, earlier.End
	delta := earlier.IncreasedLength()
	p, q, s := subject.Begin, subject.End, subject.NewText

	switch {
	case b <= p:
		// earlier strictly left-of (or touching) subject.
		return []Op{New(p+delta, q+delta, s)}

	case a < p:
		switch {
		case b < q:
			// left-overlap: a < p < b < q.
			return []Op{New(b+delta, q+delta, s)}
		default:
			// left-touching cover (b == q) or earlier fully covers
			// subject (b > q): both collapse to an insertion at the
			// rebased end of earlier's span.
			return []Op{New(b+delta, b+delta, s)}
		}

	case a == p:
		switch {
		case b >= q:
			// same-left, earlier longer or equal: collapses to an
			// insertion at the rebased end, except the exact-same-range
			// case keeps q's rebased offset.
			if b == q {
				return []Op{New(b+delta, q+delta, s)}
			}
			return []Op{New(b+delta, b+delta, s)}
		default:
			// same-left, earlier shorter.
			return []Op{New(b+delta, q+delta, s)}
		}

	default: // a > p
		switch {
		case b < q:
			// subject fully covers earlier: splits into a left fragment
			// that keeps the replacement text and a right fragment that
			// deletes the trailing remainder earlier displaced.
			return elideNoops(New(p, a, s), New(b+delta, q+delta, ""))
		case b == q:
			// right-touching / same-right inside.
			return []Op{New(p, a, s)}
		default: // b > q
			if q <= a {
				// subject strictly left-of earlier: unaffected.
				return []Op{New(p, q, s)}
			}
			// right-overlap: p < a < q < b.
			return []Op{New(p, a, s)}
		}
	}
}

// elideNoops drops no-effect fragments from a split rebase result
// without ever returning an empty slice for a non-noop subject.
func elideNoops(first, second Op) []Op {
	out := make([]Op, 0, 2)
	if !first.IsNoop() {
		out = append(out, first)
	}
	if !second.IsNoop() {
		out = append(out, second)
	}
	if len(out) == 0 {
		return []Op{first}
	}
	return out
}

// RebaseAcross folds subject through rebase against each op in applied,
// in order: later ops in applied have already accounted for the
// displacement of earlier ones, so they must be walked in sequence, not
// independently.
func RebaseAcross(subject Op, applied []Op) []Op {
	current := []Op{subject}
	for _, earlier := range applied {
		var next []Op
		for _, op := range current {
			next = append(next, Rebase(op, earlier)...)
		}
		current = next
	}
	return current
}

// RebaseListAcross rebases every op in subjects across applied, in
// order, flattening the result. Used when rebasing an entire commit's
// op list across a later commit's ops (Commit Chain §4.2 step 4).
func RebaseListAcross(subjects []Op, applied []Op) []Op {
	var out []Op
	for _, subj := range subjects {
		out = append(out, RebaseAcross(subj, applied)...)
	}
	return out
}
