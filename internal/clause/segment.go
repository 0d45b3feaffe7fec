// Package clause turns normalized contract text into an ordered list of
// numbered clauses. It is pure bookkeeping over in-memory text: no I/O,
// no error states, an empty result means "could not segment".
package clause

import "strings"

// Clause is one numbered provision: the hierarchical label that introduced
// it ("1.", "2.1.", "3.1.1.") and the text that follows, both trimmed.
type Clause struct {
	Label string `json:"label"`
	Body  string `json:"body"`
}

// boundary marks a detected clause label inside the source text.
type boundary struct {
	lineStart  int // first byte of the line the label sits on
	labelStart int // first byte of the label (leading whitespace skipped)
	labelEnd   int // one past the label's trailing dot
}

// Segment splits normalized contract text into clauses.
//
// A clause boundary is a line that begins (after optional indentation) with
// a dotted numeric label of one to three integer groups and a mandatory
// trailing dot, followed by whitespace: "1.", "2.1.", "3.1.1.". Matching is
// greedy, so "1.1." is never mistaken for a top-level "1.". Text before the
// first boundary (title, preamble) is discarded. Candidates whose trimmed
// label or body is empty are dropped. Document order is preserved; labels
// are opaque and never deduplicated or renumbered.
//
// Empty or whitespace-only input, or input with no boundaries, yields nil.
func Segment(text string) []Clause {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var marks []boundary
	for i := 0; i <= len(text); {
		j := i
		for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
			j++
		}
		if end, ok := matchLabel(text, j); ok && end < len(text) && isSpace(text[end]) {
			marks = append(marks, boundary{lineStart: i, labelStart: j, labelEnd: end})
		}
		// advance to the next line start
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			break
		}
		i += nl + 1
	}

	var out []Clause
	for k, m := range marks {
		bodyEnd := len(text)
		if k+1 < len(marks) {
			bodyEnd = marks[k+1].lineStart
		}
		label := strings.TrimSpace(text[m.labelStart:m.labelEnd])
		body := strings.TrimSpace(text[m.labelEnd:bodyEnd])
		if label == "" || body == "" {
			continue // stray numeral with nothing behind it
		}
		out = append(out, Clause{Label: label, Body: body})
	}
	return out
}

// matchLabel consumes the longest dotted numeric label starting at start:
// one to three integer groups, each terminated by a dot. It returns the
// position one past the final dot. A group without its dot fails the whole
// match; there is no fallback to a shorter prefix.
func matchLabel(s string, start int) (int, bool) {
	i := start
	for group := 0; group < 3; group++ {
		d := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == d {
			return 0, false
		}
		if i >= len(s) || s[i] != '.' {
			return 0, false
		}
		i++
		if i >= len(s) || !isDigit(s[i]) {
			break // no deeper group follows; label ends here
		}
	}
	return i, true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
