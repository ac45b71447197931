package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/vcube/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createSampleStore creates a store holding the sample Sales and Stock cubes.
func createSampleStore(t *testing.T) *Store {
	t.Helper()
	s := createTestStore(t)
	if _, err := s.Import(context.Background(), testutil.SampleFixture(t)); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	return s
}
