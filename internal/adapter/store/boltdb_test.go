package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfqa/internal/domain"
	"pdfqa/internal/port"
)

func newTestBolt(t *testing.T, dim int) *BoltIndex {
	t.Helper()
	idx, err := NewBoltIndex(filepath.Join(t.TempDir(), "index.db"), dim)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func chunk(id string, vec []float32) domain.Chunk {
	return domain.Chunk{
		ID:       id,
		Document: "doc.pdf",
		Page:     1,
		Text:     "text for " + id,
		Vector:   vec,
	}
}

// Both implementations must behave identically; run the shared suite
// against each.
func forEachIndex(t *testing.T, dim int, fn func(t *testing.T, idx port.VectorIndex)) {
	t.Run("bolt", func(t *testing.T) { fn(t, newTestBolt(t, dim)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryIndex(dim)) })
}

func TestUpsertAndSearch(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		err := idx.UpsertBatch([]domain.Chunk{
			chunk("a", []float32{1, 0}),
			chunk("b", []float32{0, 1}),
			chunk("c", []float32{0.7, 0.7}),
		}, "doc.pdf", false)
		require.NoError(t, err)

		results, err := idx.Search([]float32{1, 0}, 2)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "a", results[0].ChunkID)
		assert.Equal(t, "c", results[1].ChunkID)
		assert.Greater(t, results[0].Score, results[1].Score)
		assert.Equal(t, "doc.pdf", results[0].Document)
		assert.Equal(t, 1, results[0].Page)
	})
}

func TestSearchTieBreaksByInsertionOrder(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		// Identical vectors score identically; the earlier insert must win.
		err := idx.UpsertBatch([]domain.Chunk{
			chunk("first", []float32{1, 0}),
			chunk("second", []float32{1, 0}),
			chunk("third", []float32{1, 0}),
		}, "doc.pdf", false)
		require.NoError(t, err)

		results, err := idx.Search([]float32{1, 0}, 3)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, []string{"first", "second", "third"},
			[]string{results[0].ChunkID, results[1].ChunkID, results[2].ChunkID})
	})
}

func TestUpsertOverwrites(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		require.NoError(t, idx.UpsertBatch([]domain.Chunk{chunk("a", []float32{1, 0})}, "doc.pdf", false))
		require.NoError(t, idx.UpsertBatch([]domain.Chunk{chunk("a", []float32{0, 1})}, "doc.pdf", false))

		count, err := idx.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count, "re-ingesting the same chunk must not grow the index")

		results, err := idx.Search([]float32{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	})
}

func TestUpsertClearFirst(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		require.NoError(t, idx.UpsertBatch([]domain.Chunk{chunk("old", []float32{1, 0})}, "old.pdf", false))
		require.NoError(t, idx.UpsertBatch([]domain.Chunk{chunk("new", []float32{0, 1})}, "new.pdf", true))

		count, err := idx.Count()
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		results, err := idx.Search([]float32{1, 0}, 10)
		require.NoError(t, err)
		for _, r := range results {
			assert.NotEqual(t, "old", r.ChunkID)
		}

		status, err := idx.Status()
		require.NoError(t, err)
		assert.Equal(t, "new.pdf", status.DocumentName)
	})
}

func TestUpsertDimensionMismatch(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		err := idx.UpsertBatch([]domain.Chunk{chunk("bad", []float32{1, 0, 0})}, "doc.pdf", false)

		var storeErr *domain.VectorStoreError
		require.ErrorAs(t, err, &storeErr)

		count, cntErr := idx.Count()
		require.NoError(t, cntErr)
		assert.Equal(t, 0, count, "failed batch must not be partially applied")
	})
}

func TestSearchDimensionMismatch(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		require.NoError(t, idx.UpsertBatch([]domain.Chunk{chunk("a", []float32{1, 0})}, "doc.pdf", false))

		_, err := idx.Search([]float32{1, 0, 0}, 1)
		var storeErr *domain.VectorStoreError
		require.ErrorAs(t, err, &storeErr)
	})
}

func TestSearchEmptyIndex(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		results, err := idx.Search([]float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestStatusTransitions(t *testing.T) {
	forEachIndex(t, 2, func(t *testing.T, idx port.VectorIndex) {
		status, err := idx.Status()
		require.NoError(t, err)
		assert.Equal(t, domain.CorpusEmpty, status.State)
		assert.Zero(t, status.ChunkCount)

		require.NoError(t, idx.UpsertBatch([]domain.Chunk{chunk("a", []float32{1, 0})}, "doc.pdf", false))

		status, err = idx.Status()
		require.NoError(t, err)
		assert.Equal(t, domain.CorpusReady, status.State)
		assert.Equal(t, 1, status.ChunkCount)
		assert.Equal(t, "doc.pdf", status.DocumentName)

		require.NoError(t, idx.Clear())

		status, err = idx.Status()
		require.NoError(t, err)
		assert.Equal(t, domain.CorpusEmpty, status.State)
		assert.Zero(t, status.ChunkCount)
		assert.Empty(t, status.DocumentName)
	})
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := NewBoltIndex(path, 2)
	require.NoError(t, err)
	require.NoError(t, idx.UpsertBatch([]domain.Chunk{
		chunk("a", []float32{1, 0}),
		chunk("b", []float32{0, 1}),
	}, "doc.pdf", false))
	require.NoError(t, idx.Close())

	reopened, err := NewBoltIndex(path, 2)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, err := reopened.Search([]float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ChunkID)
	assert.Equal(t, "text for a", results[0].Text)

	status, err := reopened.Status()
	require.NoError(t, err)
	assert.Equal(t, domain.CorpusReady, status.State)
	assert.Equal(t, "doc.pdf", status.DocumentName)
}

func TestRequiresRebuild(t *testing.T) {
	idx := newTestBolt(t, 2)

	// Fresh index never needs a rebuild.
	rebuild, _, err := idx.RequiresRebuild("model-a", 2)
	require.NoError(t, err)
	assert.False(t, rebuild)

	require.NoError(t, idx.RecordMeta("model-a", 2))

	rebuild, _, err = idx.RequiresRebuild("model-a", 2)
	require.NoError(t, err)
	assert.False(t, rebuild)

	rebuild, reason, err := idx.RequiresRebuild("model-b", 2)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Contains(t, reason, "model-a")

	rebuild, _, err = idx.RequiresRebuild("model-a", 4)
	require.NoError(t, err)
	assert.True(t, rebuild)

	// Clearing resets the recorded meta.
	require.NoError(t, idx.Clear())
	rebuild, _, err = idx.RequiresRebuild("model-b", 4)
	require.NoError(t, err)
	assert.False(t, rebuild)
}
