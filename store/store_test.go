package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/nlsql/index"
	"github.com/viant/nlsql/index/flat"
	"github.com/viant/nlsql/metadata"
)

func sampleRecords() []metadata.TableRecord {
	return []metadata.TableRecord{
		{ID: "users", Name: "users", Summary: "People", Embedding: []float32{1, 0, 0}},
		{ID: "orders", Name: "orders", Summary: "Purchases", Embedding: []float32{0, 1, 0}},
		{ID: "notes", Name: "notes", Raw: "free text"},
		{ID: "products", Name: "products", Embedding: []float32{0, 0, 1}},
		{ID: "legacy", Name: "legacy", Embedding: []float32{1, 1}},
		{ID: "users", Name: "users-dup", Embedding: []float32{9, 9, 9}},
	}
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(t.TempDir(), opts...)
	require.NoError(t, err)
	return s
}

func TestStore_BuildSearchRoundTrip(t *testing.T) {
	for _, kind := range []index.Kind{index.KindFlat, index.KindCover} {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t, WithKind(kind))
			manifest, err := s.Build(ctx, sampleRecords())
			require.NoError(t, err)
			assert.Equal(t, 3, manifest.Indexed)
			assert.Equal(t, 5, manifest.Records, "unembedded and mismatched records are kept")
			assert.Equal(t, 3, manifest.Dimension)
			assert.Equal(t, kind, manifest.Kind)

			for _, rec := range sampleRecords()[:2] {
				result, err := s.Search(ctx, rec.Embedding, 1)
				require.NoError(t, err)
				require.Len(t, result, 1)
				assert.Equal(t, rec.ID, result[0].ID)
				assert.Equal(t, float32(0), result[0].Distance)
			}
		})
	}
}

func TestStore_SearchTopK(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)

	result, err := s.Search(ctx, []float32{1, 0.1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, result, 3, "topK clamped to indexed count")
	assert.Equal(t, []string{"users", "orders", "products"}, result.IDs())
	for i := 1; i < len(result); i++ {
		assert.LessOrEqual(t, result[i-1].Distance, result[i].Distance)
	}

	result, err = s.Search(ctx, []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, result)

	_, err = s.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestStore_SearchWithoutIndex(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Search(context.Background(), []float32{1}, 3)
	assert.ErrorIs(t, err, ErrIndexNotFound)
	_, err = s.Records(context.Background(), []string{"users"})
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestStore_EmptyBuildUnpublishes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)
	_, err = s.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)

	_, err = s.Build(ctx, []metadata.TableRecord{{ID: "notes", Name: "notes"}})
	assert.ErrorIs(t, err, ErrEmptyIndex)
	_, err = s.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrIndexNotFound)

	_, err = s.Build(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestStore_BuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	query := []float32{0.3, 0.2, 0.1}

	_, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)
	first, err := s.Search(ctx, query, 3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = s.Build(ctx, sampleRecords())
		require.NoError(t, err)
	}
	second, err := s.Search(ctx, query, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(filepath.Join(s.Dir(), generationDir))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "current and previous generation are kept")
}

func TestStore_Records(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)

	records, err := s.Records(ctx, []string{"products", "missing", "notes", "users"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "products", records[0].ID)
	assert.Equal(t, "notes", records[1].ID)
	assert.Equal(t, "free text", records[1].Raw)
	assert.Equal(t, "users", records[2].Name, "first of duplicate identifiers wins")
	assert.Equal(t, []float32{1, 0, 0}, records[2].Embedding)
}

func TestStore_ReindexAndStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	built, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)
	query := []float32{0.1, 0.9, 0.2}
	before, err := s.Search(ctx, query, 3)
	require.NoError(t, err)

	manifest, err := s.Reindex(ctx, index.KindCover)
	require.NoError(t, err)
	assert.NotEqual(t, built.Generation, manifest.Generation)

	after, err := s.Search(ctx, query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, index.KindCover, stats.Kind)
	assert.Equal(t, 3, stats.Indexed)
	assert.Equal(t, 3, stats.StoredIndexed)
	assert.Equal(t, 5, stats.Records)
	assert.Equal(t, 3, stats.Dimension)
}

func TestStore_Verify(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	manifest, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)

	report, err := s.Verify(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), "%v", report.Problems)
	assert.Equal(t, 3, report.Indexed)

	// Swap two identifiers on disk; a fresh store must notice.
	mappingPath := s.generationPath(manifest.Generation, mappingFile)
	var mapping []string
	data, err := os.ReadFile(mappingPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &mapping))
	mapping[0], mapping[1] = mapping[1], mapping[0]
	data, err = json.Marshal(mapping)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(mappingPath, data, 0o644))

	reopened, err := New(s.Dir())
	require.NoError(t, err)
	report, err = reopened.Verify(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Len(t, report.Problems, 4)
}

// strayIndex reports positions outside the mapping.
type strayIndex struct {
	*flat.Index
}

func (s *strayIndex) Search(query []float32, k int) ([]index.Neighbor, error) {
	return []index.Neighbor{{Position: -1}, {Position: 1, Distance: 0.5}, {Position: 99}}, nil
}

func TestStore_SearchFiltersOutOfRangePositions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithIndexFactory(func(kind index.Kind) (index.Index, error) {
		return &strayIndex{Index: flat.New()}, nil
	}))
	_, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)

	result, err := s.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, SearchResult{{ID: "orders", Distance: 0.5}}, result)
}

// unwritableIndex builds and searches but cannot be serialized.
type unwritableIndex struct {
	*flat.Index
}

func (u *unwritableIndex) MarshalBinary() ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestStore_FailedBuildKeepsPublishedGeneration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	manifest, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)
	current, err := os.ReadFile(filepath.Join(s.Dir(), currentFile))
	require.NoError(t, err)

	failing, err := New(s.Dir(), WithIndexFactory(func(kind index.Kind) (index.Index, error) {
		return &unwritableIndex{Index: flat.New()}, nil
	}))
	require.NoError(t, err)
	_, err = failing.Build(ctx, []metadata.TableRecord{
		{ID: "invoices", Name: "invoices", Embedding: []float32{0, 0, 1}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	after, err := os.ReadFile(filepath.Join(s.Dir(), currentFile))
	require.NoError(t, err)
	assert.Equal(t, string(current), string(after))

	entries, err := os.ReadDir(filepath.Join(s.Dir(), generationDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, manifest.Generation, entries[0].Name())

	for _, st := range []*Store{s, failing} {
		result, err := st.Search(ctx, []float32{0, 0, 1}, 1)
		require.NoError(t, err)
		assert.Equal(t, SearchResult{{ID: "products", Distance: 0}}, result)
	}
}

func TestStore_RefusesInconsistentGeneration(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	manifest, err := s.Build(ctx, sampleRecords())
	require.NoError(t, err)

	// Drop the last identifier so the mapping is shorter than the index.
	mappingPath := s.generationPath(manifest.Generation, mappingFile)
	var mapping []string
	data, err := os.ReadFile(mappingPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &mapping))
	data, err = json.Marshal(mapping[:len(mapping)-1])
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(mappingPath, data, 0o644))

	reopened, err := New(s.Dir())
	require.NoError(t, err)
	_, err = reopened.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrInconsistentGeneration)

	report, err := reopened.Verify(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Contains(t, report.Problems[0], "index holds 3 vectors but mapping has 2")
}
