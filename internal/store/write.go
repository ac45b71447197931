package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/vcube/internal/fixture"
	"github.com/roach88/vcube/internal/ir"
	"github.com/roach88/vcube/internal/querysql"
)

// ImportFile loads a YAML fixture from path and imports every cube in it.
func (s *Store) ImportFile(ctx context.Context, path string) ([]ir.Term, error) {
	f, err := fixture.Load(path)
	if err != nil {
		return nil, err
	}
	return s.importFixture(ctx, f, path)
}

// Import writes every cube of f. Returns the imported cube names in file
// order.
func (s *Store) Import(ctx context.Context, f *fixture.File) ([]ir.Term, error) {
	return s.importFixture(ctx, f, "")
}

func (s *Store) importFixture(ctx context.Context, f *fixture.File, source string) ([]ir.Term, error) {
	bundles, err := f.Bundles()
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	cubes := make([]ir.Term, 0, len(bundles))
	for _, b := range bundles {
		cube, err := s.ImportBundle(ctx, b, source)
		if err != nil {
			return nil, err
		}
		cubes = append(cubes, cube)
	}
	return cubes, nil
}

// ImportBundle writes the base metadata of one cube. The bundle must hold
// exactly one cube row. Rows already stored for that cube are replaced in
// the same transaction, so a re-import never mixes old and new metadata.
func (s *Store) ImportBundle(ctx context.Context, b *ir.Bundle, source string) (ir.Term, error) {
	if err := b.Validate(); err != nil {
		return ir.Term{}, fmt.Errorf("import bundle: %w", err)
	}
	if b.Cubes.Len() != 1 {
		return ir.Term{}, fmt.Errorf("import bundle: expected 1 cube row, got %d", b.Cubes.Len())
	}
	cube := b.Cubes.Get(b.Cubes.Row(0), ir.FieldCubeName)

	hash, err := b.Hash()
	if err != nil {
		return ir.Term{}, fmt.Errorf("import bundle: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ir.Term{}, fmt.Errorf("import bundle: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, k := range ir.Kinds {
		if err := s.deleteCube(ctx, tx, k, cube); err != nil {
			return ir.Term{}, err
		}
		if err := insertRelation(ctx, tx, k, b.Relation(k)); err != nil {
			return ir.Term{}, err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO imports (cube_name, bundle_hash, source)
		VALUES (?, ?, ?)
		ON CONFLICT(cube_name) DO UPDATE SET bundle_hash = excluded.bundle_hash, source = excluded.source
	`, cube.String(), hash, source)
	if err != nil {
		return ir.Term{}, fmt.Errorf("import bundle: record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ir.Term{}, fmt.Errorf("import bundle: commit: %w", err)
	}

	slog.Debug("imported cube",
		"cube", cube.String(),
		"members", b.Members.Len(),
		"hash", hash)
	return cube, nil
}

func (s *Store) deleteCube(ctx context.Context, tx *sql.Tx, k ir.Kind, cube ir.Term) error {
	query, params, err := s.compiler.Compile(querysql.DeleteCube(k, cube))
	if err != nil {
		return fmt.Errorf("import bundle: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return fmt.Errorf("import bundle: clear %s: %w", k, err)
	}
	return nil
}

// insertRelation writes rel in row order. rel is projected onto the
// canonical header first, so relations with reordered columns store the
// same way.
func insertRelation(ctx context.Context, tx *sql.Tx, k ir.Kind, rel ir.Relation) error {
	canonical, err := rel.Project(k.Header())
	if err != nil {
		return fmt.Errorf("import bundle: %s: %w", k, err)
	}

	stmt, err := tx.PrepareContext(ctx, querysql.Insert(k))
	if err != nil {
		return fmt.Errorf("import bundle: prepare %s: %w", k, err)
	}
	defer stmt.Close()

	for i, row := range canonical.Rows() {
		params, err := marshalRow(row)
		if err != nil {
			return fmt.Errorf("import bundle: %s row %d: %w", k, i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, params...); err != nil {
			return fmt.Errorf("import bundle: insert %s row %d: %w", k, i+1, err)
		}
	}
	return nil
}
