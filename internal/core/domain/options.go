package domain

import "sort"

// FilterAll is the filter value meaning "no constraint on this dimension".
const FilterAll = "all"

// Options lists the values a level or artist filter can take, FilterAll first.
type Options struct {
	Artists []string `json:"artists"`
	Levels  []string `json:"levels"`
}

// DeriveOptions computes the distinct artists and non-empty levels present
// in songs, each sorted and prefixed with FilterAll.
func DeriveOptions(songs []Song) Options {
	artists := make(map[string]struct{})
	levels := make(map[string]struct{})
	for _, s := range songs {
		artists[s.Artist] = struct{}{}
		if s.Level != "" {
			levels[s.Level] = struct{}{}
		}
	}

	return Options{
		Artists: withSentinel(artists),
		Levels:  withSentinel(levels),
	}
}

func withSentinel(set map[string]struct{}) []string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return append([]string{FilterAll}, values...)
}
