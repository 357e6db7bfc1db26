// Package middleware wraps a variable store with cross-cutting
// persistence behavior: encryption at rest and attribute masking.
// Middlewares compose; the pool only ever sees the outermost store.
package middleware

import "github.com/meridian-tools/meridian/pkg/ports"

// Middleware allows wrapping a VariableStore to add behavior.
type Middleware func(ports.VariableStore) ports.VariableStore

// Chain applies middlewares in order, first wrapping closest to the
// backing store.
func Chain(store ports.VariableStore, middlewares ...Middleware) ports.VariableStore {
	for _, m := range middlewares {
		store = m(store)
	}
	return store
}
