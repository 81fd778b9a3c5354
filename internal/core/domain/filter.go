package domain

import "strings"

// Criteria is the filter state applied to a collection.
// Empty Level or Artist behave like FilterAll.
type Criteria struct {
	Search string `json:"search"`
	Level  string `json:"level"`
	Artist string `json:"artist"`
}

// DefaultCriteria matches every song.
func DefaultCriteria() Criteria {
	return Criteria{Level: FilterAll, Artist: FilterAll}
}

// ParseSearchTerms splits comma-separated search text into lower-cased,
// trimmed, non-empty terms.
func ParseSearchTerms(search string) []string {
	pieces := strings.Split(search, ",")
	terms := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, strings.ToLower(t))
		}
	}
	return terms
}

// Filter returns the songs that pass the level, artist and search gates,
// in collection order. Every term must appear (case-insensitively) in at
// least one of title, artist, grammar, vocab or theme.
func Filter(songs []Song, c Criteria) []Song {
	terms := ParseSearchTerms(c.Search)
	out := make([]Song, 0, len(songs))
	for _, s := range songs {
		if matchesExact(c.Level, s.Level) && matchesExact(c.Artist, s.Artist) && matchesTerms(s, terms) {
			out = append(out, s)
		}
	}
	return out
}

func matchesExact(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

func matchesTerms(s Song, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	fields := [...]string{
		strings.ToLower(s.Title),
		strings.ToLower(s.Artist),
		strings.ToLower(s.Grammar),
		strings.ToLower(s.Vocab),
		strings.ToLower(s.Theme),
	}
	for _, term := range terms {
		found := false
		for _, f := range fields {
			if f != "" && strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
