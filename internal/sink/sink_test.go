package sink

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partdev/pcpart-scraper/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func batch(page int, names ...string) *catalog.PageBatch {
	b := &catalog.PageBatch{Page: page}
	for _, n := range names {
		b.Records = append(b.Records, catalog.Record{"name": n, "price": nil})
	}
	return b
}

func readArtifact(t *testing.T, path string) []catalog.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []catalog.Record
	require.NoError(t, json.Unmarshal(data, &records))
	return records
}

func TestCompleteWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, catalog.CategoryCPU, testLogger())

	s.Append(batch(1, "CPU 1", "CPU 2"))
	s.Append(batch(2, "CPU 3"))
	require.Equal(t, 3, s.Len())

	require.NoError(t, s.Complete(context.Background()))

	records := readArtifact(t, filepath.Join(dir, "cpu.json"))
	require.Len(t, records, 3)
	assert.Equal(t, "CPU 1", records[0].Name())
	assert.Equal(t, "CPU 3", records[2].Name())

	// No stray temp file left behind.
	_, err := os.Stat(filepath.Join(dir, "cpu.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompleteEmptyCategoryWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, catalog.CategoryCase, testLogger())

	require.NoError(t, s.Complete(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "case.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestAbortSalvagesPartialRecords(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, catalog.CategoryMemory, testLogger())

	s.Append(batch(1, "RAM 1", "RAM 2"))

	wrote, err := s.Abort(context.Background())
	require.NoError(t, err)
	assert.True(t, wrote)

	records := readArtifact(t, filepath.Join(dir, "memory.incomplete.json"))
	require.Len(t, records, 2)
	assert.Equal(t, "RAM 1", records[0].Name())
	assert.Equal(t, "RAM 2", records[1].Name())

	// No complete-named artifact is produced for an aborted job.
	_, statErr := os.Stat(filepath.Join(dir, "memory.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAbortWithNothingAccumulatedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, catalog.CategoryStorage, testLogger())

	wrote, err := s.Abort(context.Background())
	require.NoError(t, err)
	assert.False(t, wrote)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type fakeStore struct {
	cat      catalog.Category
	count    int
	complete bool
	calls    int
}

func (f *fakeStore) SaveSnapshot(_ context.Context, cat catalog.Category, records []catalog.Record, complete bool) error {
	f.cat = cat
	f.count = len(records)
	f.complete = complete
	f.calls++
	return nil
}

func TestFlushNotifiesStores(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{}
	s := New(dir, catalog.CategoryVideoCard, testLogger(), store)

	s.Append(batch(1, "GPU 1"))
	require.NoError(t, s.Complete(context.Background()))

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, catalog.CategoryVideoCard, store.cat)
	assert.Equal(t, 1, store.count)
	assert.True(t, store.complete)
}

func TestFilename(t *testing.T) {
	s := New(t.TempDir(), catalog.CategoryPowerSupply, testLogger())
	assert.Equal(t, "power-supply.json", s.Filename(true))
	assert.Equal(t, "power-supply.incomplete.json", s.Filename(false))
}
