package suggestion

import "github.com/cxwx/fittencode.nvim/internal/editor"

// Annotation is the renderable form of a Suggestion: one styled chunk
// per line, with the first chunk drawn inline at the cursor and the
// rest as virtual lines below it. Annotations are built per render and
// discarded on the next render or clear.
type Annotation struct {
	// Inline is the fragment placed at the exact cursor position.
	Inline editor.Chunk

	// Below holds the remaining lines, in order, one row of chunks
	// per suggestion line.
	Below [][]editor.Chunk
}

// Height returns the number of virtual lines the annotation occupies.
func (a Annotation) Height() int {
	return 1 + len(a.Below)
}

// Annotation converts the suggestion into an annotation styled with
// the given highlight group. ok is false for the empty suggestion, in
// which case nothing should be rendered or cleared.
func (s Suggestion) Annotation(group string) (Annotation, bool) {
	if s.IsEmpty() {
		return Annotation{}, false
	}

	a := Annotation{
		Inline: editor.Chunk{Text: s.lines[0], Highlight: group},
	}
	if len(s.lines) > 1 {
		a.Below = make([][]editor.Chunk, 0, len(s.lines)-1)
		for _, line := range s.lines[1:] {
			a.Below = append(a.Below, []editor.Chunk{{Text: line, Highlight: group}})
		}
	}
	return a, true
}
