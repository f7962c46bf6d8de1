// Package suggestion models completion suggestions and converts them
// into renderable virtual-text annotations.
//
// A suggestion is an ordered sequence of text lines: the first line
// continues the current cursor line, the rest become new lines below
// it. Suggestions are immutable once built; partial acceptance
// produces new Suggestion values rather than mutating in place.
package suggestion

import "strings"

// Suggestion is an ordered, immutable sequence of completion lines.
// The zero value is the empty suggestion.
type Suggestion struct {
	lines []string
}

// New builds a Suggestion from raw lines. Lines carrying embedded
// newlines are split apart so that each stored line is newline-free.
func New(lines []string) Suggestion {
	if len(lines) == 0 {
		return Suggestion{}
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.Split(l, "\n")...)
	}
	return Suggestion{lines: out}
}

// IsEmpty reports whether the suggestion has no lines at all.
func (s Suggestion) IsEmpty() bool {
	return len(s.lines) == 0
}

// LineCount returns the number of lines.
func (s Suggestion) LineCount() int {
	return len(s.lines)
}

// Lines returns a copy of the suggestion lines.
func (s Suggestion) Lines() []string {
	if len(s.lines) == 0 {
		return nil
	}
	return append([]string(nil), s.lines...)
}

// Text returns the suggestion joined with newlines.
func (s Suggestion) Text() string {
	return strings.Join(s.lines, "\n")
}

// SplitWord splits off the next word for partial acceptance. head
// holds the lines to commit: a single word (a whitespace run counts as
// a word of its own), or a bare line break when the first line is
// already exhausted. rest is the suggestion that remains afterwards.
// ok is false when there is nothing left to accept.
func (s Suggestion) SplitWord() (head, rest Suggestion, ok bool) {
	if len(s.lines) == 0 {
		return Suggestion{}, Suggestion{}, false
	}

	first := s.lines[0]
	if first == "" {
		if len(s.lines) == 1 {
			return Suggestion{}, Suggestion{}, false
		}
		// Exhausted first line: accept the line break itself.
		return Suggestion{lines: []string{"", ""}}, Suggestion{lines: s.lines[1:]}, true
	}

	end := wordEnd(first)
	word := first[:end]
	remainder := first[end:]

	if remainder == "" && len(s.lines) == 1 {
		return Suggestion{lines: []string{word}}, Suggestion{}, true
	}

	restLines := make([]string, 0, len(s.lines))
	restLines = append(restLines, remainder)
	restLines = append(restLines, s.lines[1:]...)
	return Suggestion{lines: []string{word}}, Suggestion{lines: restLines}, true
}

// SplitLine splits off the whole first line for partial acceptance.
// When further lines remain, head carries a trailing empty line so
// committing it lands the cursor at the start of the next row.
func (s Suggestion) SplitLine() (head, rest Suggestion, ok bool) {
	if len(s.lines) == 0 {
		return Suggestion{}, Suggestion{}, false
	}
	if len(s.lines) == 1 {
		if s.lines[0] == "" {
			return Suggestion{}, Suggestion{}, false
		}
		return Suggestion{lines: []string{s.lines[0]}}, Suggestion{}, true
	}
	return Suggestion{lines: []string{s.lines[0], ""}}, Suggestion{lines: s.lines[1:]}, true
}

// wordEnd finds the byte length of the next word in s. A leading
// whitespace run is returned as its own word so acceptance consumes
// indentation step by step.
func wordEnd(s string) int {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i > 0 {
		return i
	}
	for i < len(s) && s[i] != ' ' && s[i] != '\t' {
		i++
	}
	return i
}
