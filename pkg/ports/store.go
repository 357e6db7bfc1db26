package ports

import (
	"context"

	"github.com/meridian-tools/meridian/pkg/domain"
)

// VariableStore persists the defined-variable pool.
type VariableStore interface {
	// Save stores or replaces a variable under its ID.
	Save(ctx context.Context, v domain.Variable) error

	// Load retrieves a variable by ID.
	// Returns domain.ErrVariableNotFound if absent.
	Load(ctx context.Context, id string) (domain.Variable, error)

	// Delete removes a variable. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of every stored variable.
	List(ctx context.Context) ([]string, error)
}

// TranscriptStore persists session transcripts. Transcripts are
// append-only; stores never rewrite earlier entries.
type TranscriptStore interface {
	// Append adds entries to the end of a session transcript,
	// creating the transcript if needed.
	Append(ctx context.Context, sessionID string, entries []domain.Entry) error

	// Load returns the full transcript in order.
	// Returns domain.ErrTranscriptNotFound if the session is unknown.
	Load(ctx context.Context, sessionID string) ([]domain.Entry, error)

	// List returns the known session IDs.
	List(ctx context.Context) ([]string, error)
}

// Prompter collects a numeric value from the user, e.g. the X-Daily
// sample frequency. ok is false when the user cancelled; the caller
// must then abort the action without side effects.
type Prompter interface {
	PromptFloat(ctx context.Context, title, label string) (value float64, ok bool, err error)
}
