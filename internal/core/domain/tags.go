package domain

import "strings"

// DefaultTagDelimiters separate tokens in grammar, vocab and theme fields.
// The last entry is an en dash that was mis-decoded upstream; it shows up
// verbatim in the sheet data.
var DefaultTagDelimiters = []string{",", "–", "â€“"}

// TagSplitter breaks delimiter-separated metadata into tag tokens.
type TagSplitter struct {
	delimiters []string
}

// NewTagSplitter returns a splitter for the given delimiters. Empty
// delimiters are ignored; with none left, DefaultTagDelimiters are used.
func NewTagSplitter(delimiters ...string) TagSplitter {
	kept := make([]string, 0, len(delimiters))
	for _, d := range delimiters {
		if d != "" {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, DefaultTagDelimiters...)
	}
	return TagSplitter{delimiters: kept}
}

// Split returns the trimmed, non-empty tokens of s in order.
func (t TagSplitter) Split(s string) []string {
	if s == "" {
		return []string{}
	}
	delims := t.delimiters
	if len(delims) == 0 {
		delims = DefaultTagDelimiters
	}

	pieces := []string{s}
	for _, d := range delims {
		next := make([]string, 0, len(pieces))
		for _, p := range pieces {
			next = append(next, strings.Split(p, d)...)
		}
		pieces = next
	}

	tags := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
