package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/songbook/internal/core/domain"
	"github.com/ewilliams-labs/songbook/internal/core/ports"
)

// CriteriaPatch carries filter changes; nil fields are left unchanged.
type CriteriaPatch struct {
	Search *string
	Level  *string
	Artist *string
}

type session struct {
	mu      sync.Mutex
	state   domain.State
	touched time.Time
}

// Browser coordinates browsing sessions: each one holds its own collection
// snapshot, filter criteria and selection.
type Browser struct {
	catalog  *Catalog
	insights ports.InsightDispatcher
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewBrowser constructs a Browser.
func NewBrowser(catalog *Catalog, insights ports.InsightDispatcher, log zerolog.Logger) *Browser {
	return &Browser{
		catalog:  catalog,
		insights: insights,
		log:      log.With().Str("component", "browser").Logger(),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Open starts a session and loads the catalog into it. A catalog that
// cannot be loaded is not an error here: the session reports it in Err.
func (b *Browser) Open(ctx context.Context) (string, domain.State) {
	id := uuid.NewString()
	sess := &session{state: domain.NewState().BeginLoad(), touched: b.now()}

	b.mu.Lock()
	b.sessions[id] = sess
	b.mu.Unlock()

	coll, err := b.catalog.Snapshot(ctx)
	state := b.apply(sess, func(s domain.State) domain.State {
		return loaded(s, coll, err)
	})
	b.log.Debug().Str("session", id).Int("songs", len(state.Songs)).Msg("session opened")
	return id, state
}

// Reload refreshes the catalog and replaces the session's collection.
func (b *Browser) Reload(ctx context.Context, id string) (domain.State, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return domain.State{}, err
	}

	b.apply(sess, domain.State.BeginLoad)
	coll, loadErr := b.catalog.Refresh(ctx)
	return b.apply(sess, func(s domain.State) domain.State {
		return loaded(s, coll, loadErr)
	}), nil
}

// State returns the session's current state.
func (b *Browser) State(id string) (domain.State, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return domain.State{}, err
	}
	return b.apply(sess, func(s domain.State) domain.State { return s }), nil
}

// UpdateCriteria applies filter changes to the session.
func (b *Browser) UpdateCriteria(id string, patch CriteriaPatch) (domain.State, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return domain.State{}, err
	}
	return b.apply(sess, func(s domain.State) domain.State {
		if patch.Search != nil {
			s = s.WithSearch(*patch.Search)
		}
		if patch.Level != nil {
			s = s.WithLevel(*patch.Level)
		}
		if patch.Artist != nil {
			s = s.WithArtist(*patch.Artist)
		}
		return s
	}), nil
}

// Select opens a song from the session's visible list and requests its
// insight. Songs hidden by the current criteria yield ErrSongNotFound. The returned state has the insight pending, or failed if the
// request could not be queued.
func (b *Browser) Select(id, songID string) (domain.State, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return domain.State{}, err
	}

	var (
		token uint64
		song  domain.Song
		found bool
	)
	state := b.apply(sess, func(s domain.State) domain.State {
		song, found = domain.FindSong(s.Visible(), songID)
		if !found {
			return s
		}
		s, token = s.Select(song)
		return s
	})
	if !found {
		return state, fmt.Errorf("service: select %q: %w", songID, domain.ErrSongNotFound)
	}

	job := ports.InsightJob{
		SessionID: id,
		SongID:    song.ID,
		Token:     token,
		Prompt:    domain.BuildInsightPrompt(song),
		Resolve: func(text string, err error) {
			b.resolveInsight(id, token, text, err)
		},
	}
	if err := b.insights.Submit(job); err != nil {
		b.log.Warn().Err(err).Str("session", id).Str("song", song.ID).Msg("insight not queued")
		return b.apply(sess, func(s domain.State) domain.State {
			return s.ResolveInsight(token, "", err)
		}), nil
	}
	return state, nil
}

// CloseSelection clears the session's detail view. Any insight still in
// flight for it will be ignored when it arrives.
func (b *Browser) CloseSelection(id string) (domain.State, error) {
	sess, err := b.lookup(id)
	if err != nil {
		return domain.State{}, err
	}
	return b.apply(sess, domain.State.CloseSelection), nil
}

// Remove ends a session.
func (b *Browser) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sessions[id]; !ok {
		return fmt.Errorf("service: remove %q: %w", id, domain.ErrSessionNotFound)
	}
	delete(b.sessions, id)
	return nil
}

// EvictIdle removes sessions untouched for longer than ttl and reports how
// many were removed.
func (b *Browser) EvictIdle(ttl time.Duration) int {
	cutoff := b.now().Add(-ttl)

	b.mu.Lock()
	defer b.mu.Unlock()
	evicted := 0
	for id, sess := range b.sessions {
		sess.mu.Lock()
		idle := sess.touched.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(b.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (b *Browser) resolveInsight(id string, token uint64, text string, err error) {
	sess, lookupErr := b.lookup(id)
	if lookupErr != nil {
		return
	}
	if err != nil {
		b.log.Warn().Err(err).Str("session", id).Uint64("token", token).Msg("insight generation failed")
	}
	b.applyQuiet(sess, func(s domain.State) domain.State {
		return s.ResolveInsight(token, text, err)
	})
}

func (b *Browser) lookup(id string) (*session, error) {
	b.mu.RLock()
	sess, ok := b.sessions[id]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("service: session %q: %w", id, domain.ErrSessionNotFound)
	}
	return sess, nil
}

// apply runs a transition under the session lock and marks it active.
func (b *Browser) apply(sess *session, fn func(domain.State) domain.State) domain.State {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = fn(sess.state)
	sess.touched = b.now()
	return sess.state
}

// applyQuiet is apply without touching the idle timer.
func (b *Browser) applyQuiet(sess *session, fn func(domain.State) domain.State) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = fn(sess.state)
}

func loaded(s domain.State, coll domain.Collection, err error) domain.State {
	if err != nil {
		return s.FailLoad(domain.SourceUnavailableMessage)
	}
	return s.CompleteLoad(coll)
}
