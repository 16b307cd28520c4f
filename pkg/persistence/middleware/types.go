// Package middleware decorates a ports.GraphStore with encryption at rest
// and redaction of sensitive node data.
package middleware

import "github.com/aretw0/aoflow/pkg/ports"

// Middleware allows wrapping a GraphStore to add behavior.
type Middleware func(ports.GraphStore) ports.GraphStore

// Chain applies mws to store. The first middleware is the outermost.
func Chain(store ports.GraphStore, mws ...Middleware) ports.GraphStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
