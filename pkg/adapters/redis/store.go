// Package redis provides Redis-backed implementations of the Meridian
// stores, for sharing a variable pool and its transcripts across
// processes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meridian-tools/meridian/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Far-future index score used when no TTL is set (2100-01-01).
const noExpiryScore = 4102444800

// Option configures a Redis-backed store.
type Option func(*config)

type config struct {
	prefix string
	ttl    time.Duration
}

// WithTTL sets the expiration for stored values. Zero means no
// expiration.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		c.prefix = prefix
	}
}

// VariableStore implements ports.VariableStore using Redis.
type VariableStore struct {
	client *backend.Client
	cfg    config
}

// NewVariableStore creates a Redis variable store with its own client.
func NewVariableStore(address, password string, db int, opts ...Option) *VariableStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewVariableStoreFromClient(rdb, opts...)
}

// NewVariableStoreFromClient creates a Redis variable store from an
// existing client.
func NewVariableStoreFromClient(client *backend.Client, opts ...Option) *VariableStore {
	cfg := config{prefix: "meridian:variable:"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &VariableStore{client: client, cfg: cfg}
}

func (s *VariableStore) key(id string) string {
	return s.cfg.prefix + id
}

func (s *VariableStore) indexKey() string {
	return s.cfg.prefix + "index"
}

// Save persists the variable as JSON and registers it in the index.
func (s *VariableStore) Save(ctx context.Context, v domain.Variable) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal variable: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(v.ID), data, s.cfg.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  indexScore(s.cfg.ttl),
		Member: v.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save variable to redis: %w", err)
	}
	return nil
}

// Load retrieves a variable by ID.
func (s *VariableStore) Load(ctx context.Context, id string) (domain.Variable, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Variable{}, domain.ErrVariableNotFound
		}
		return domain.Variable{}, fmt.Errorf("failed to get variable from redis: %w", err)
	}

	var v domain.Variable
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		return domain.Variable{}, fmt.Errorf("failed to unmarshal variable: %w", err)
	}
	return v, nil
}

// Delete removes a variable and its index entry.
func (s *VariableStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns the stored variable IDs, pruning expired index entries
// lazily.
func (s *VariableStore) List(ctx context.Context) ([]string, error) {
	ids, err := listIndex(ctx, s.client, s.indexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to list variables: %w", err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *VariableStore) Close() error {
	return s.client.Close()
}

// TranscriptStore implements ports.TranscriptStore using Redis lists.
type TranscriptStore struct {
	client *backend.Client
	cfg    config
}

// NewTranscriptStore creates a Redis transcript store with its own
// client.
func NewTranscriptStore(address, password string, db int, opts ...Option) *TranscriptStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewTranscriptStoreFromClient(rdb, opts...)
}

// NewTranscriptStoreFromClient creates a Redis transcript store from an
// existing client.
func NewTranscriptStoreFromClient(client *backend.Client, opts ...Option) *TranscriptStore {
	cfg := config{prefix: "meridian:transcript:"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TranscriptStore{client: client, cfg: cfg}
}

func (s *TranscriptStore) key(sessionID string) string {
	return s.cfg.prefix + sessionID
}

func (s *TranscriptStore) indexKey() string {
	return s.cfg.prefix + "index"
}

// Append pushes entries onto the end of the session's list. RPUSH keeps
// transcript order without a separate sequence key.
func (s *TranscriptStore) Append(ctx context.Context, sessionID string, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		values = append(values, data)
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.key(sessionID), values...)
	if s.cfg.ttl > 0 {
		pipe.Expire(ctx, s.key(sessionID), s.cfg.ttl)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  indexScore(s.cfg.ttl),
		Member: sessionID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append transcript to redis: %w", err)
	}
	return nil
}

// Load returns the full transcript for a session in append order.
func (s *TranscriptStore) Load(ctx context.Context, sessionID string) ([]domain.Entry, error) {
	values, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript from redis: %w", err)
	}
	if len(values) == 0 {
		return nil, domain.ErrTranscriptNotFound
	}

	entries := make([]domain.Entry, 0, len(values))
	for _, val := range values {
		var e domain.Entry
		if err := json.Unmarshal([]byte(val), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// List returns the known session IDs, pruning expired index entries
// lazily.
func (s *TranscriptStore) List(ctx context.Context) ([]string, error) {
	ids, err := listIndex(ctx, s.client, s.indexKey())
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	return ids, nil
}

// Close closes the underlying client.
func (s *TranscriptStore) Close() error {
	return s.client.Close()
}

func indexScore(ttl time.Duration) float64 {
	if ttl == 0 {
		return noExpiryScore
	}
	return float64(time.Now().Add(ttl).Unix())
}

// listIndex lazily prunes expired members, then returns the remainder.
func listIndex(ctx context.Context, client *backend.Client, key string) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := client.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, err
	}
	return client.ZRange(ctx, key, 0, -1).Result()
}
