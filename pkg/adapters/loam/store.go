// Package loam persists session transcripts as Markdown documents in a
// Loam repository. Each session becomes one file whose frontmatter
// holds the structured entries and whose body is the rendered script,
// so a transcript directory doubles as a readable, version-controlled
// teaching log.
package loam

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/meridian-tools/meridian/pkg/domain"
)

// Store implements ports.TranscriptStore on top of a Loam repository.
type Store struct {
	repo  core.Repository
	typed *loam.TypedRepository[TranscriptMetadata]

	// Append is a read-modify-write of the whole document.
	mu sync.Mutex
}

// New creates a Store from an initialized Loam repository.
func New(repo core.Repository) *Store {
	return &Store{
		repo:  repo,
		typed: loam.NewTypedRepository[TranscriptMetadata](repo),
	}
}

// Open initializes a Loam repository at path and returns a Store over
// it. Options are passed through, so callers control versioning and
// strictness the same way they would with loam.Init.
func Open(path string, opts ...loam.Option) (*Store, error) {
	repo, err := loam.Init(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

func docID(sessionID string) string {
	return sessionID + ".md"
}

// Append merges new entries into the session document and commits the
// result, one commit per append so the repository history mirrors the
// session.
func (s *Store) Append(ctx context.Context, sessionID string, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrTranscriptNotFound) {
		return err
	}
	merged := append(existing, entries...)

	svc := core.NewService(s.repo)
	tx, err := svc.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin loam transaction: %w", err)
	}

	if err := tx.Save(ctx, core.Document{
		ID:      docID(sessionID),
		Content: renderScript(merged),
		Metadata: core.Metadata{
			"session": sessionID,
			"entries": encodeEntries(merged),
		},
	}); err != nil {
		return fmt.Errorf("failed to save transcript document: %w", err)
	}

	if err := tx.Commit(ctx, fmt.Sprintf("Record teaching commands (%s)", sessionID)); err != nil {
		return fmt.Errorf("failed to commit transcript: %w", err)
	}
	return nil
}

// Load returns the transcript for a session in append order.
func (s *Store) Load(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	return s.load(ctx, sessionID)
}

func (s *Store) load(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	doc, err := s.typed.Get(ctx, sessionID)
	if err != nil {
		// Loam does not expose a sentinel for missing documents, so a
		// failed lookup is treated as "nothing recorded".
		return nil, domain.ErrTranscriptNotFound
	}
	if len(doc.Data.Entries) == 0 {
		return nil, domain.ErrTranscriptNotFound
	}

	entries := make([]domain.Entry, 0, len(doc.Data.Entries))
	for _, raw := range doc.Data.Entries {
		entry, err := decodeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt transcript %s: %w", sessionID, err)
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

// List returns the session IDs present in the repository, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.typed.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.Session
		if id == "" {
			id = strings.TrimSuffix(doc.ID, ".md")
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func encodeEntries(entries []domain.Entry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		m := map[string]any{
			"seq":  e.Seq,
			"time": e.Time.UTC().Format(time.RFC3339),
			"text": e.Text,
		}
		if e.Comment {
			m["comment"] = true
		}
		out = append(out, m)
	}
	return out
}

func decodeEntry(raw EntryMetadata) (domain.Entry, error) {
	entry := domain.Entry{
		Seq:     raw.Seq,
		Text:    raw.Text,
		Comment: raw.Comment,
	}
	if raw.Time != "" {
		t, err := time.Parse(time.RFC3339, raw.Time)
		if err != nil {
			return domain.Entry{}, fmt.Errorf("bad entry time %q: %w", raw.Time, err)
		}
		entry.Time = t
	}
	return entry, nil
}

// renderScript is the document body: the plain command lines, one per
// entry. The structured truth lives in the frontmatter.
func renderScript(entries []domain.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Line())
		b.WriteByte('\n')
	}
	return b.String()
}
