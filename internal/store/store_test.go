package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".cxxd_index.db")
	s := New(path)
	require.NoError(t, s.CreateSchema())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndQueryByUSR(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Insert(Symbol{Filename: "main.cpp", Line: 3, Column: 5, USR: "c:@F@foobar#", Context: "void foobar() {", Kind: 7, IsDefinition: true}))
	require.NoError(t, s.Insert(Symbol{Filename: "main.cpp", Line: 9, Column: 12, USR: "c:@F@foobar#", Context: "foobar();", Kind: 7, IsDefinition: false}))
	require.NoError(t, s.Flush())

	rows, err := s.QueryByUSR("c:@F@foobar#")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestInsertIgnoresEmptyUSR(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(Symbol{Filename: "main.cpp", Line: 1, USR: ""}))

	rows, err := s.QueryByUSR("")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestInsertIgnoresDuplicateKey(t *testing.T) {
	s := newTestStore(t)
	sym := Symbol{Filename: "main.cpp", Line: 3, Column: 5, USR: "u1", Context: "x", Kind: 1}
	require.NoError(t, s.Insert(sym))
	require.NoError(t, s.Insert(sym)) // duplicate primary key, silently ignored

	rows, err := s.QueryByUSR("u1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestQueryDefinitionOnlyReturnsDefinitions(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(Symbol{Filename: "a.cpp", Line: 1, USR: "u", IsDefinition: true}))
	require.NoError(t, s.Insert(Symbol{Filename: "b.cpp", Line: 2, USR: "u", IsDefinition: false}))

	defs, err := s.QueryDefinition("u")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "a.cpp", defs[0].Filename)
}

func TestDeleteByFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(Symbol{Filename: "main.cpp", Line: 1, USR: "u1"}))
	require.NoError(t, s.Insert(Symbol{Filename: "other.cpp", Line: 1, USR: "u2"}))

	require.NoError(t, s.DeleteByFile("main.cpp"))

	rows, err := s.QueryByUSR("u1")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.QueryByUSR("u2")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Insert(Symbol{Filename: "main.cpp", Line: 1, USR: "u1"}))
	require.NoError(t, s.DeleteAll())

	rows, err := s.QueryByUSR("u1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClosedStoreFailsQueries(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())
	assert.False(t, s.IsOpen())

	_, err := s.QueryByUSR("u1")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestBulkMerge(t *testing.T) {
	dir := t.TempDir()

	child1 := New(filepath.Join(dir, "child1.db"))
	require.NoError(t, child1.CreateSchema())
	require.NoError(t, child1.Insert(Symbol{Filename: "a.cpp", Line: 1, USR: "u1"}))
	require.NoError(t, child1.Close())

	child2 := New(filepath.Join(dir, "child2.db"))
	require.NoError(t, child2.CreateSchema())
	require.NoError(t, child2.Insert(Symbol{Filename: "b.cpp", Line: 1, USR: "u2"}))
	require.NoError(t, child2.Close())

	parent := New(filepath.Join(dir, "parent.db"))
	require.NoError(t, parent.CreateSchema())
	require.NoError(t, parent.BulkMerge([]string{child1.Path(), child2.Path()}))
	defer parent.Close()

	rows1, err := parent.QueryByUSR("u1")
	require.NoError(t, err)
	assert.Len(t, rows1, 1)

	rows2, err := parent.QueryByUSR("u2")
	require.NoError(t, err)
	assert.Len(t, rows2, 1)
}

func TestBulkMergeSkipsMissingChild(t *testing.T) {
	dir := t.TempDir()
	parent := New(filepath.Join(dir, "parent.db"))
	require.NoError(t, parent.CreateSchema())
	defer parent.Close()

	// A missing child store must not fail the whole merge (spec §7 WorkerCrash,
	// §8 scenario 6: the rest of the index stays usable).
	require.NoError(t, parent.BulkMerge([]string{filepath.Join(dir, "missing.db")}))
}

func TestSchemaVersion(t *testing.T) {
	s := newTestStore(t)
	major, minor, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersionMajor, major)
	assert.Equal(t, SchemaVersionMinor, minor)
}
