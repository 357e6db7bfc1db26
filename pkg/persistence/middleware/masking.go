package middleware

import (
	"context"
	"regexp"

	"github.com/meridian-tools/meridian/pkg/domain"
	"github.com/meridian-tools/meridian/pkg/ports"
)

type maskingMiddleware struct {
	next     ports.VariableStore
	patterns []*regexp.Regexp
}

// NewMaskingMiddleware creates a middleware that masks the values of
// variable attributes whose keys match any of the patterns before they
// are persisted. Dataset attributes often carry contact or provenance
// details that must not land in a shared store.
func NewMaskingMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.VariableStore) ports.VariableStore {
		return &maskingMiddleware{next: next, patterns: patterns}
	}
}

func (m *maskingMiddleware) Save(ctx context.Context, v domain.Variable) error {
	// Clone first so the in-memory variable the pool works with keeps
	// its attributes intact.
	cloned := v.Clone()
	for k := range cloned.Attrs {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				cloned.Attrs[k] = "***"
				break
			}
		}
	}
	return m.next.Save(ctx, cloned)
}

func (m *maskingMiddleware) Load(ctx context.Context, id string) (domain.Variable, error) {
	return m.next.Load(ctx, id)
}

func (m *maskingMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *maskingMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
