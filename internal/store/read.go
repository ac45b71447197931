package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/querysql"
	"github.com/roach88/vcube/internal/restriction"
)

// Session reads base-cube metadata. Each Fetch leases one connection from
// the pool for a single read transaction, so open sessions hold none.
type Session struct {
	mu       sync.Mutex
	db       *sql.DB
	compiler *querysql.SQLCompiler
}

// Fetch returns the six relations of cube, narrowed by r. Results are
// ordered deterministically: ORDER BY id COLLATE BINARY ASC.
//
// A cube that was never imported yields header-only relations, not an
// error. So does a CUBE_NAME restriction naming a different cube.
func (s *Session) Fetch(ctx context.Context, cube ir.Term, r restriction.Restriction) (*ir.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("fetch %s: session is closed", cube)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", cube, err)
	}
	if !r.Cube.IsZero() && r.Cube != cube {
		return ir.EmptyBundle(), nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: begin: %w", cube, err)
	}
	defer tx.Rollback()

	r = r.WithCube(cube)
	b := &ir.Bundle{}
	for _, k := range ir.Kinds {
		rel, err := s.readRelation(ctx, tx, k, r)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", cube, err)
		}
		b.Set(k, rel)
	}
	return b, nil
}

func (s *Session) readRelation(ctx context.Context, tx *sql.Tx, k ir.Kind, r restriction.Restriction) (ir.Relation, error) {
	query, params, err := s.compiler.Compile(querysql.ForRestriction(k, r))
	if err != nil {
		return ir.Relation{}, err
	}

	rows, err := tx.QueryContext(ctx, query, params...)
	if err != nil {
		return ir.Relation{}, fmt.Errorf("query %s: %w", k, err)
	}
	defer rows.Close()

	width := len(k.Header())
	cols := make([]string, width)
	dest := make([]any, width)
	for i := range cols {
		dest[i] = &cols[i]
	}

	var tuples []ir.Tuple
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return ir.Relation{}, fmt.Errorf("scan %s: %w", k, err)
		}
		row, err := unmarshalRow(k, cols)
		if err != nil {
			return ir.Relation{}, err
		}
		tuples = append(tuples, row)
	}
	if err := rows.Err(); err != nil {
		return ir.Relation{}, fmt.Errorf("iterate %s: %w", k, err)
	}

	return ir.NewRelation(k.Header(), tuples...)
}

// Close ends the session. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = nil
	return nil
}

// Import describes one imported cube.
type Import struct {
	Cube   ir.Term
	Hash   string
	Source string
}

// Imports lists the imported cubes ordered by name.
func (s *Store) Imports(ctx context.Context) ([]Import, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cube_name, bundle_hash, source
		FROM imports
		ORDER BY cube_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query imports: %w", err)
	}
	defer rows.Close()

	imports := []Import{}
	for rows.Next() {
		var name string
		var imp Import
		if err := rows.Scan(&name, &imp.Hash, &imp.Source); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		if imp.Cube, err = ir.ParseTerm(name); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}
	return imports, nil
}

// Bundle reads the full stored bundle of one cube.
func (s *Store) Bundle(ctx context.Context, cube ir.Term) (*ir.Bundle, error) {
	sess, err := s.OpenSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return sess.Fetch(ctx, cube, restriction.Restriction{})
}
