package domain

// Collection is a loaded song catalog and where it came from.
// Degraded is set when a source other than the first one served it.
type Collection struct {
	Songs    []Song
	Source   string
	Degraded bool
}

// Selection is the song open for detail view and its pending commentary.
// Token identifies the request issued for this selection.
type Selection struct {
	Song    Song
	Token   uint64
	Insight Insight
}

// State is one browsing session. Transitions return a new State and never
// modify the receiver or slices it shares.
type State struct {
	Songs     []Song
	Options   Options
	Criteria  Criteria
	Loading   bool
	Source    string
	Degraded  bool
	Err       string
	Selection *Selection

	generation uint64
}

// NewState returns an empty, unfiltered session.
func NewState() State {
	return State{
		Songs:    []Song{},
		Options:  DeriveOptions(nil),
		Criteria: DefaultCriteria(),
	}
}

// BeginLoad marks a load in flight and clears the previous error.
func (s State) BeginLoad() State {
	s.Loading = true
	s.Err = ""
	return s
}

// CompleteLoad replaces the collection wholesale and rederives options.
// Any open selection is dropped.
func (s State) CompleteLoad(c Collection) State {
	songs := c.Songs
	if songs == nil {
		songs = []Song{}
	}
	s.Songs = songs
	s.Options = DeriveOptions(songs)
	s.Source = c.Source
	s.Degraded = c.Degraded
	s.Loading = false
	s.Err = ""
	s.Selection = nil
	return s
}

// FailLoad leaves the session with an empty collection and a visible error.
func (s State) FailLoad(message string) State {
	s = s.CompleteLoad(Collection{})
	s.Err = message
	return s
}

// WithSearch sets the search text.
func (s State) WithSearch(search string) State {
	s.Criteria.Search = search
	return s
}

// WithLevel sets the level filter. Empty means FilterAll.
func (s State) WithLevel(level string) State {
	if level == "" {
		level = FilterAll
	}
	s.Criteria.Level = level
	return s
}

// WithArtist sets the artist filter. Empty means FilterAll.
func (s State) WithArtist(artist string) State {
	if artist == "" {
		artist = FilterAll
	}
	s.Criteria.Artist = artist
	return s
}

// Visible is the filtered subset of the collection.
func (s State) Visible() []Song {
	return Filter(s.Songs, s.Criteria)
}

// Select opens song for detail view with a pending insight and returns the
// token that a later ResolveInsight must present.
func (s State) Select(song Song) (State, uint64) {
	s.generation++
	s.Selection = &Selection{
		Song:    song,
		Token:   s.generation,
		Insight: Insight{Status: InsightPending},
	}
	return s, s.generation
}

// ResolveInsight applies a generator result for token. Results for a
// selection that has since been closed or replaced are ignored.
func (s State) ResolveInsight(token uint64, text string, err error) State {
	if s.Selection == nil || s.Selection.Token != token || s.Selection.Insight.Status != InsightPending {
		return s
	}

	next := *s.Selection
	if err != nil || text == "" {
		next.Insight = Insight{Status: InsightFailed, Error: InsightFailureMessage}
	} else {
		next.Insight = Insight{Status: InsightReady, Text: text}
	}
	s.Selection = &next
	return s
}

// CloseSelection clears the detail view.
func (s State) CloseSelection() State {
	s.Selection = nil
	return s
}
