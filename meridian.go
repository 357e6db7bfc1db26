package meridian

import (
	"log/slog"

	"github.com/meridian-tools/meridian/internal/logging"
	"github.com/meridian-tools/meridian/pkg/adapters/memory"
	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/dispatch"
	"github.com/meridian-tools/meridian/pkg/pool"
	"github.com/meridian-tools/meridian/pkg/ports"
	"github.com/meridian-tools/meridian/pkg/transcript"
)

// Version is the released version of Meridian.
const Version = "0.3.0"

// Console is the high-level entry point for the Meridian library. It
// wires the action catalog, the variable pool, the transcript recorder
// and the dispatcher, and provides a simplified API for consumers
// (CLI, HTTP server, MCP agents).
type Console struct {
	Catalog    *catalog.Catalog
	Pool       *pool.Pool
	Recorder   *transcript.Recorder
	Dispatcher *dispatch.Dispatcher

	variables   ports.VariableStore
	transcripts ports.TranscriptStore
	prompter    ports.Prompter
	sessionID   string
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Console.
type Option func(*Console)

// WithVariableStore injects a custom variable store, bypassing the
// default in-memory pool backing.
func WithVariableStore(store ports.VariableStore) Option {
	return func(c *Console) {
		c.variables = store
	}
}

// WithTranscriptStore injects a custom transcript store.
func WithTranscriptStore(store ports.TranscriptStore) Option {
	return func(c *Console) {
		c.transcripts = store
	}
}

// WithSessionID names the session the recorder writes under
// (default: "default").
func WithSessionID(id string) Option {
	return func(c *Console) {
		c.sessionID = id
	}
}

// WithPrompter wires the interactive prompt used by actions that
// collect a value at dispatch time. Without one, those actions fail
// instead of blocking.
func WithPrompter(p ports.Prompter) Option {
	return func(c *Console) {
		c.prompter = p
	}
}

// WithLogger sets a custom structured logger for the console.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New initializes a new Meridian Console. By default the pool and the
// transcript live in memory; inject Redis or Loam stores through
// options to persist them.
func New(opts ...Option) (*Console, error) {
	c := &Console{
		sessionID: "default",
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.variables == nil {
		c.variables = memory.NewVariableStore()
	}
	if c.transcripts == nil {
		c.transcripts = memory.NewTranscriptStore()
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}

	cat, err := catalog.New()
	if err != nil {
		return nil, err
	}

	c.Catalog = cat
	c.Pool = pool.New(c.variables, pool.WithLogger(c.logger))
	c.Recorder = transcript.NewRecorder(c.transcripts, c.sessionID, transcript.WithLogger(c.logger))

	dispatchOpts := []dispatch.Option{
		dispatch.WithLogger(c.logger),
	}
	if c.prompter != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithPrompter(c.prompter))
	}
	c.Dispatcher = dispatch.New(cat, c.Pool, c.Recorder, dispatchOpts...)

	return c, nil
}

// SessionID returns the session the console records under.
func (c *Console) SessionID() string {
	return c.sessionID
}
