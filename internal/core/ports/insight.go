package ports

import (
	"context"
	"errors"
)

var (
	// ErrQueueFull is returned when an insight job cannot be queued.
	ErrQueueFull = errors.New("insight queue full")
	// ErrDispatcherStopped is returned after the dispatcher has shut down.
	ErrDispatcherStopped = errors.New("insight dispatcher stopped")
)

// InsightGenerator turns a prompt into commentary text.
type InsightGenerator interface {
	GenerateInsight(ctx context.Context, prompt string) (string, error)
}

// InsightJob is a queued generation request. Resolve is called exactly once
// with the generator's result.
type InsightJob struct {
	SessionID string
	SongID    string
	Token     uint64
	Prompt    string
	Resolve   func(text string, err error)
}

// InsightDispatcher runs insight jobs off the caller's goroutine.
type InsightDispatcher interface {
	Submit(job InsightJob) error
}
