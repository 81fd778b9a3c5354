package rest

import "github.com/ewilliams-labs/songbook/internal/core/domain"

type songView struct {
	domain.Song
	GrammarTags []string `json:"grammarTags"`
	VocabTags   []string `json:"vocabTags"`
	ThemeTags   []string `json:"themeTags"`
	HasVideo    bool     `json:"hasVideo"`
}

type selectionView struct {
	Song    songView       `json:"song"`
	Insight domain.Insight `json:"insight"`
}

type stateView struct {
	ID        string          `json:"id"`
	Songs     []songView      `json:"songs"`
	Total     int             `json:"total"`
	Options   domain.Options  `json:"options"`
	Criteria  domain.Criteria `json:"criteria"`
	Loading   bool            `json:"loading"`
	Source    string          `json:"source,omitempty"`
	Degraded  bool            `json:"degraded"`
	Error     string          `json:"error,omitempty"`
	Selection *selectionView  `json:"selection"`
}

func (h *Handler) songView(s domain.Song) songView {
	return songView{
		Song:        s,
		GrammarTags: h.tags.Split(s.Grammar),
		VocabTags:   h.tags.Split(s.Vocab),
		ThemeTags:   h.tags.Split(s.Theme),
		HasVideo:    s.HasVideo(),
	}
}

func (h *Handler) songViews(songs []domain.Song) []songView {
	out := make([]songView, 0, len(songs))
	for _, s := range songs {
		out = append(out, h.songView(s))
	}
	return out
}

// stateView renders the visible subset of a session, not its full collection.
func (h *Handler) stateView(id string, s domain.State) stateView {
	v := stateView{
		ID:       id,
		Songs:    h.songViews(s.Visible()),
		Total:    len(s.Songs),
		Options:  s.Options,
		Criteria: s.Criteria,
		Loading:  s.Loading,
		Source:   s.Source,
		Degraded: s.Degraded,
		Error:    s.Err,
	}
	if s.Selection != nil {
		v.Selection = &selectionView{
			Song:    h.songView(s.Selection.Song),
			Insight: s.Selection.Insight,
		}
	}
	return v
}
