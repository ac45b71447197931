package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/restriction"
)

// memSource serves bundles from memory and records session lifecycle.
type memSource struct {
	bundles  map[ir.Term]*ir.Bundle
	openErr  error
	fetchErr error
	closeErr map[ir.Term]error

	opened   int
	closed   int
	sessions []*memSession
}

func newMemSource(bundles ...*ir.Bundle) *memSource {
	s := &memSource{bundles: make(map[ir.Term]*ir.Bundle), closeErr: make(map[ir.Term]error)}
	for _, b := range bundles {
		s.bundles[b.Cubes.Get(b.Cubes.Row(0), ir.FieldCubeName)] = b
	}
	return s
}

func (s *memSource) Open(context.Context) (Session, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	sess := &memSession{src: s}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

type memSession struct {
	src    *memSource
	cube   ir.Term
	last   restriction.Restriction
	closes int
}

func (m *memSession) Fetch(_ context.Context, cube ir.Term, r restriction.Restriction) (*ir.Bundle, error) {
	m.cube = cube
	m.last = r
	if m.src.fetchErr != nil {
		return nil, m.src.fetchErr
	}
	b, ok := m.src.bundles[cube]
	if !ok {
		return nil, fmt.Errorf("no cube %s", cube.Value())
	}
	out := &ir.Bundle{}
	for _, k := range ir.Kinds {
		rel := b.Relation(k)
		out.Set(k, rel.Filter(func(row ir.Tuple) bool { return r.Matches(rel, row) }))
	}
	return out, nil
}

func (m *memSession) Close() error {
	m.closes++
	m.src.closed++
	if err, ok := m.src.closeErr[m.cube]; ok {
		return err
	}
	return nil
}

var errBoom = errors.New("boom")
