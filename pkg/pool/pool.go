// Package pool manages the shared defined-variable collection. The
// pool is owned by the application session; the dispatcher borrows it
// per call and returns derived variables to it.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/ports"
)

// lockEntry holds a per-variable mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Pool coordinates access to a VariableStore, serializing writes per
// variable ID. Locks are reference counted and garbage collected when
// unused.
type Pool struct {
	store ports.VariableStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Pool.
type Option func(*Pool)

// WithLogger configures a logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// New creates a Pool over the given store.
func New(store ports.VariableStore, opts ...Option) *Pool {
	p := &Pool{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pool) acquire(id string) *lockEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, exists := p.locks[id]
	if !exists {
		entry = &lockEntry{}
		p.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (p *Pool) release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, exists := p.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(p.locks, id)
	}
}

// withLock executes fn while holding the lock for one variable.
func (p *Pool) withLock(id string, fn func() error) error {
	entry := p.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		p.release(id)
	}()
	return fn()
}

// Add stores a new or derived variable.
func (p *Pool) Add(ctx context.Context, v domain.Variable) error {
	if v.ID == "" {
		return fmt.Errorf("variable has no ID")
	}
	return p.withLock(v.ID, func() error {
		if err := p.store.Save(ctx, v); err != nil {
			return fmt.Errorf("failed to add variable %q: %w", v.ID, err)
		}
		p.logger.Debug("variable added", "id", v.ID, "samples", len(v.Values))
		return nil
	})
}

// Get retrieves one variable.
func (p *Pool) Get(ctx context.Context, id string) (domain.Variable, error) {
	var v domain.Variable
	err := p.withLock(id, func() error {
		var err error
		v, err = p.store.Load(ctx, id)
		return err
	})
	return v, err
}

// Selected resolves a selection into variables, in order. A missing ID
// fails the whole resolution.
func (p *Pool) Selected(ctx context.Context, sel domain.Selection) ([]domain.Variable, error) {
	if len(sel) == 0 {
		return nil, domain.ErrEmptySelection
	}
	out := make([]domain.Variable, 0, len(sel))
	for _, id := range sel {
		v, err := p.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("selection %q: %w", id, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Update applies fn to a variable under its lock and stores the result.
// Used by the bounds setters, which mutate in place.
func (p *Pool) Update(ctx context.Context, id string, fn func(v *domain.Variable) error) error {
	return p.withLock(id, func() error {
		v, err := p.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(&v); err != nil {
			return err
		}
		return p.store.Save(ctx, v)
	})
}

// List returns the IDs of every pooled variable.
func (p *Pool) List(ctx context.Context) ([]string, error) {
	return p.store.List(ctx)
}

// Delete removes a variable from the pool.
func (p *Pool) Delete(ctx context.Context, id string) error {
	return p.withLock(id, func() error {
		return p.store.Delete(ctx, id)
	})
}
