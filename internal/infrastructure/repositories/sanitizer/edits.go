package sanitizer

import (
	"fmt"
	"slices"

	sitter "github.com/smacker/go-tree-sitter"
)

// edit replaces src[start:end] with text.
type edit struct {
	start uint32
	end   uint32
	text  string
}

func replaceNode(node *sitter.Node, text string) edit {
	return edit{start: node.StartByte(), end: node.EndByte(), text: text}
}

// applyEdits applies non-overlapping edits back to front so earlier offsets
// stay valid. Edits overlapping an earlier one are skipped and reported.
func applyEdits(src []byte, edits []edit) (string, error) {
	slices.SortStableFunc(edits, func(a, b edit) int {
		return int(a.start) - int(b.start)
	})

	var kept []edit
	var err error
	var last uint32
	for _, e := range edits {
		if e.start > e.end || int(e.end) > len(src) {
			err = fmt.Errorf("edit [%d, %d) is outside the source", e.start, e.end)
			continue
		}
		if len(kept) > 0 && e.start < last {
			err = fmt.Errorf("edit [%d, %d) overlaps a previous edit", e.start, e.end)
			continue
		}
		kept = append(kept, e)
		last = e.end
	}

	out := slices.Clone(src)
	for i := len(kept) - 1; i >= 0; i-- {
		e := kept[i]
		out = slices.Concat(out[:e.start], []byte(e.text), out[e.end:])
	}
	return string(out), err
}

// walk visits node and its named descendants depth first, skipping the
// children of any node for which visit returns false.
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for i := range int(node.NamedChildCount()) {
		walk(node.NamedChild(i), visit)
	}
}

// nodeText returns the source text of a node.
func nodeText(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}
