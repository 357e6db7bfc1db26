package cli

import (
	"encoding/base64"
	"fmt"
	"os"
	"regexp"
	"strings"

	backend "github.com/redis/go-redis/v9"

	"github.com/meridian-tools/meridian"
	loamstore "github.com/meridian-tools/meridian/pkg/adapters/loam"
	"github.com/meridian-tools/meridian/pkg/adapters/memory"
	"github.com/meridian-tools/meridian/pkg/adapters/redis"
	"github.com/meridian-tools/meridian/pkg/persistence/middleware"
	"github.com/meridian-tools/meridian/pkg/ports"
)

// poolKeyEnv names the environment variable holding the base64-encoded
// 32-byte key that enables encryption at rest for the variable pool.
const poolKeyEnv = "MERIDIAN_POOL_KEY"

// maskEnv names the environment variable holding comma-separated
// regular expressions; attribute keys matching any of them are masked
// before a variable is persisted.
const maskEnv = "MERIDIAN_MASK_ATTRS"

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	SessionID string
	RedisURL  string // Redis pool + transcript persistence
	DataDir   string // Loam transcript repository; empty keeps it in memory
	DataPath  string // variables file loaded into the pool at startup
	Debug     bool
}

// NewConsole builds a Console from command-line options, selecting the
// persistence adapters: Redis when --redis is set, a Loam repository
// for transcripts when --data-dir is set, in-memory otherwise. When
// MERIDIAN_POOL_KEY is set, variables are encrypted at rest; when
// MERIDIAN_MASK_ATTRS is set, matching attributes are masked before
// they are persisted.
func NewConsole(opts RunOptions, extra ...meridian.Option) (*meridian.Console, error) {
	logger := createLogger(opts.Debug)

	conOpts := []meridian.Option{
		meridian.WithLogger(logger),
	}
	if opts.SessionID != "" {
		conOpts = append(conOpts, meridian.WithSessionID(opts.SessionID))
	}

	var variables ports.VariableStore = memory.NewVariableStore()
	if opts.RedisURL != "" {
		redisOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := backend.NewClient(redisOpts)
		variables = redis.NewVariableStoreFromClient(client)
		conOpts = append(conOpts, meridian.WithTranscriptStore(redis.NewTranscriptStoreFromClient(client)))
	}

	variables, err := wrapPoolStore(variables)
	if err != nil {
		return nil, err
	}
	conOpts = append(conOpts, meridian.WithVariableStore(variables))

	if opts.DataDir != "" {
		store, err := loamstore.Open(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript repository: %w", err)
		}
		conOpts = append(conOpts, meridian.WithTranscriptStore(store))
	}

	conOpts = append(conOpts, extra...)
	return meridian.New(conOpts...)
}

// wrapPoolStore applies persistence middleware configured through the
// environment: encryption at rest when a pool key is present, and
// attribute masking when mask patterns are set. Masking wraps
// outermost so attributes are already redacted when they are
// encrypted.
func wrapPoolStore(store ports.VariableStore) (ports.VariableStore, error) {
	var chain []middleware.Middleware

	if raw := os.Getenv(poolKeyEnv); raw != "" {
		key, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", poolKeyEnv, err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", poolKeyEnv, len(key))
		}
		chain = append(chain, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey: key,
		}))
	}

	if raw := os.Getenv(maskEnv); raw != "" {
		var patterns []string
		for _, p := range strings.Split(raw, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid %s pattern %q: %w", maskEnv, p, err)
			}
			patterns = append(patterns, p)
		}
		if len(patterns) > 0 {
			chain = append(chain, middleware.NewMaskingMiddleware(patterns))
		}
	}

	if len(chain) == 0 {
		return store, nil
	}
	return middleware.Chain(store, chain...), nil
}
