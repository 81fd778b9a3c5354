package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Display defaults applied by Normalize.
const (
	DefaultTitle  = "No Title"
	DefaultArtist = "Unknown Artist"

	fallbackIDPrefix = "fallback-"
)

// Song is a catalog entry annotated with language-learning metadata.
// Every field is populated after normalization; optional ones are empty strings.
type Song struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Level       string `json:"level"`
	Grammar     string `json:"grammar"`
	Vocab       string `json:"vocab"`
	Theme       string `json:"theme"`
	YouTubeLink string `json:"youtubeLink"`
	Notes       string `json:"notes"`
}

// HasVideo reports whether the song links to an external video.
func (s Song) HasVideo() bool {
	return s.YouTubeLink != ""
}

// Cell is a leniently decoded JSON scalar from a spreadsheet-like feed.
// Strings are kept verbatim and non-zero numbers keep their literal text.
// null, false, 0, objects and arrays decode to the empty string, which
// Normalize treats as absent.
type Cell string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*c = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Cell(s)
	case 't':
		*c = "true"
	case 'f', 'n', '{', '[':
		*c = ""
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		if n == 0 {
			*c = ""
			return nil
		}
		*c = Cell(data)
	}
	return nil
}

// RawSong is a song record as delivered by a source, before normalization.
type RawSong struct {
	ID          Cell `json:"id"`
	Title       Cell `json:"title"`
	Artist      Cell `json:"artist"`
	Level       Cell `json:"level"`
	Grammar     Cell `json:"grammar"`
	Vocab       Cell `json:"vocab"`
	Theme       Cell `json:"theme"`
	YouTubeLink Cell `json:"youtubeLink"`
	Notes       Cell `json:"notes"`
}

// Normalize fills documented defaults and synthesizes ids for records that
// lack one. A record whose id repeats an earlier one is treated as lacking
// an id. Synthesized ids never collide with ids present in the source, so
// ids stay unique within the returned collection.
func Normalize(raws []RawSong) []Song {
	songs := make([]Song, 0, len(raws))

	// First occurrence of each explicit id keeps it.
	owner := make(map[string]int, len(raws))
	for i, r := range raws {
		if id := string(r.ID); id != "" {
			if _, ok := owner[id]; !ok {
				owner[id] = i
			}
		}
	}
	synthesized := make(map[string]struct{})
	taken := func(id string) bool {
		_, explicit := owner[id]
		_, synth := synthesized[id]
		return explicit || synth
	}

	for i, r := range raws {
		id := string(r.ID)
		if first, ok := owner[id]; id == "" || !ok || first != i {
			id = FallbackID(i)
			for n := 1; taken(id); n++ {
				id = FallbackID(i) + "-" + strconv.Itoa(n)
			}
			synthesized[id] = struct{}{}
		}

		songs = append(songs, Song{
			ID:          id,
			Title:       orDefault(string(r.Title), DefaultTitle),
			Artist:      orDefault(string(r.Artist), DefaultArtist),
			Level:       string(r.Level),
			Grammar:     string(r.Grammar),
			Vocab:       string(r.Vocab),
			Theme:       string(r.Theme),
			YouTubeLink: string(r.YouTubeLink),
			Notes:       string(r.Notes),
		})
	}

	return songs
}

// FallbackID is the id given to the record at index when the source has none.
func FallbackID(index int) string {
	return fallbackIDPrefix + strconv.Itoa(index)
}

// FindSong returns the song with the given id.
func FindSong(songs []Song, id string) (Song, bool) {
	for _, s := range songs {
		if s.ID == id {
			return s, true
		}
	}
	return Song{}, false
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
