package stats

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeKind says what happened to a span of text
type ChangeKind int

const (
	Inserted ChangeKind = iota
	Deleted
	Replaced
)

func (k ChangeKind) String() string {
	switch k {
	case Inserted:
		return "insert"
	case Deleted:
		return "delete"
	case Replaced:
		return "replace"
	default:
		return "unknown"
	}
}

// Change is one edit between original and processed text. For Replaced,
// From is the removed text and To the replacement.
type Change struct {
	Kind ChangeKind
	From string
	To   string
}

// Segment is a run of text in the merged diff, for inline rendering
type Segment struct {
	Op   diffmatchpatch.Operation
	Text string
}

func semanticDiff(original, processed string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, processed, false)
	return dmp.DiffCleanupSemantic(diffs)
}

// Segments returns the merged diff as equal/insert/delete runs
func Segments(original, processed string) []Segment {
	diffs := semanticDiff(original, processed)
	segs := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		segs = append(segs, Segment{Op: d.Type, Text: d.Text})
	}
	return segs
}

// Changes lists the edits, pairing a delete followed by an insert as one replacement
func Changes(original, processed string) []Change {
	diffs := semanticDiff(original, processed)

	changes := make([]Change, 0)
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			continue
		case diffmatchpatch.DiffDelete:
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				changes = append(changes, Change{Kind: Replaced, From: d.Text, To: diffs[i+1].Text})
				i++
				continue
			}
			changes = append(changes, Change{Kind: Deleted, From: d.Text})
		case diffmatchpatch.DiffInsert:
			changes = append(changes, Change{Kind: Inserted, To: d.Text})
		}
	}
	return changes
}
