package static

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSource_FetchSongs(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "songs.json")
	bad := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(good, []byte(`[{"id":"a","title":"Yesterday","theme":"love – loss"}]`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(bad, []byte(`[{`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		wantErr   bool
		wantCount int
	}{
		{name: "reads file", path: good, wantCount: 1},
		{name: "missing file", path: filepath.Join(dir, "nope.json"), wantErr: true},
		{name: "invalid json", path: bad, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			songs, err := NewSource("fallback", tt.path).FetchSongs(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected err=%v, got %v", tt.wantErr, err)
			}
			if len(songs) != tt.wantCount {
				t.Fatalf("expected %d songs, got %d", tt.wantCount, len(songs))
			}
		})
	}
}

func TestSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSource("fallback", "unused.json").FetchSongs(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
