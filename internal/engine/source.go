package engine

import (
	"context"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/restriction"
)

// Source opens sessions on the base-cube metadata store. Implemented by
// store.Store.
type Source interface {
	Open(ctx context.Context) (Session, error)
}

// Session fetches base-cube metadata. A session is owned by one BaseCube
// node between its Init and Close.
type Session interface {
	// Fetch returns the six relations of cube restricted by r.
	Fetch(ctx context.Context, cube ir.Term, r restriction.Restriction) (*ir.Bundle, error)

	// Close releases the session. It must be safe to call more than once.
	Close() error
}
