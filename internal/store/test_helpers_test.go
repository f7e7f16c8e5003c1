package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestStore creates a new store backed by a temp-dir SQLite file.
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

// rowCounts returns the per-table row counts of one project.
func rowCounts(t *testing.T, s *Store, projectID int64) map[string]int {
	t.Helper()
	counts := make(map[string]int, len(countQueries))
	for table := range countQueries {
		n, err := s.CountRows(context.Background(), table, projectID)
		require.NoError(t, err)
		counts[table] = n
	}
	return counts
}

// totalRows counts every row in a table regardless of project.
func totalRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
