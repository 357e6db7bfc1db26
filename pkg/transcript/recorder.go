// Package transcript implements the teaching-command recorder: an
// append-only, human-readable trace of every computation the console
// performs, kept for session replay.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/ports"
)

// Recorder appends teaching commands to a session transcript.
// Recording can be toggled; a disabled recorder drops writes silently
// but previously captured entries remain readable.
type Recorder struct {
	store     ports.TranscriptStore
	sessionID string

	mu      sync.Mutex
	seq     int
	enabled bool

	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithRecording sets the initial recording state (default on).
func WithRecording(enabled bool) Option {
	return func(r *Recorder) {
		r.enabled = enabled
	}
}

// NewRecorder creates a Recorder for one session.
func NewRecorder(store ports.TranscriptStore, sessionID string, opts ...Option) *Recorder {
	r := &Recorder{
		store:     store,
		sessionID: sessionID,
		enabled:   true,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the session this recorder writes to.
func (r *Recorder) SessionID() string { return r.sessionID }

// SetEnabled toggles recording.
func (r *Recorder) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Enabled reports whether writes are currently captured.
func (r *Recorder) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Comment appends a header line ("## ..." in the rendered script).
func (r *Recorder) Comment(ctx context.Context, format string, args ...any) error {
	return r.append(ctx, fmt.Sprintf(format, args...), true)
}

// Record appends a replayable call line.
func (r *Recorder) Record(ctx context.Context, format string, args ...any) error {
	return r.append(ctx, fmt.Sprintf(format, args...), false)
}

func (r *Recorder) append(ctx context.Context, text string, comment bool) error {
	r.mu.Lock()
	if !r.enabled {
		r.mu.Unlock()
		return nil
	}
	entry := domain.Entry{
		Seq:     r.seq,
		Time:    r.now(),
		Text:    text,
		Comment: comment,
	}
	r.seq++
	r.mu.Unlock()

	if err := r.store.Append(ctx, r.sessionID, []domain.Entry{entry}); err != nil {
		return fmt.Errorf("failed to record teaching command: %w", err)
	}
	r.logger.Debug("teaching command recorded", "session_id", r.sessionID, "seq", entry.Seq)
	return nil
}

// Entries returns the full transcript in order. An unknown session
// yields an empty transcript, not an error: nothing was recorded yet.
func (r *Recorder) Entries(ctx context.Context) ([]domain.Entry, error) {
	entries, err := r.store.Load(ctx, r.sessionID)
	if errors.Is(err, domain.ErrTranscriptNotFound) {
		return nil, nil
	}
	return entries, err
}

// Render produces the transcript as a Markdown script block, the form
// the console's "View Teaching Commands" action displays.
func Render(sessionID string, entries []domain.Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Teaching Commands (%s)\n\n```\n", sessionID)
	for _, e := range entries {
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}
	b.WriteString("```\n")
	return b.String()
}
