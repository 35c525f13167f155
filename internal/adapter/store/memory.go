package store

import (
	"fmt"
	"sort"
	"sync"

	"pdfqa/internal/domain"
)

// MemoryIndex is an in-memory vector index with the same search and status
// semantics as BoltIndex but no persistence. Used in tests and anywhere a
// throwaway corpus is enough.
type MemoryIndex struct {
	dimension int

	mu      sync.RWMutex
	vectors map[string]cacheEntry
	nextSeq uint64
	status  domain.CorpusStatus
}

func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		vectors:   make(map[string]cacheEntry),
		status:    domain.CorpusStatus{State: domain.CorpusEmpty},
	}
}

func (m *MemoryIndex) UpsertBatch(entries []domain.Chunk, docName string, clearFirst bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, chunk := range entries {
		if len(chunk.Vector) != m.dimension {
			return &domain.VectorStoreError{
				Op:  "upsert",
				Err: fmt.Errorf("vector dimension mismatch: expected %d, got %d", m.dimension, len(chunk.Vector)),
			}
		}
	}

	if clearFirst {
		m.vectors = make(map[string]cacheEntry, len(entries))
		m.nextSeq = 0
	}

	for _, chunk := range entries {
		seq := m.nextSeq
		if prev, ok := m.vectors[chunk.ID]; ok {
			seq = prev.seq
		} else {
			m.nextSeq++
		}
		m.vectors[chunk.ID] = cacheEntry{
			vector:   chunk.Vector,
			text:     chunk.Text,
			document: chunk.Document,
			page:     chunk.Page,
			seq:      seq,
		}
	}

	m.status = domain.CorpusStatus{
		ChunkCount:   len(m.vectors),
		DocumentName: docName,
		State:        domain.CorpusEmpty,
	}
	if len(m.vectors) > 0 {
		m.status.State = domain.CorpusReady
	}
	return nil
}

func (m *MemoryIndex) Search(query []float32, k int) ([]domain.RetrievedResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(query) != m.dimension {
		return nil, &domain.VectorStoreError{
			Op:  "search",
			Err: fmt.Errorf("query dimension mismatch: expected %d, got %d", m.dimension, len(query)),
		}
	}
	if k <= 0 || len(m.vectors) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
		seq   uint64
	}

	scores := make([]scored, 0, len(m.vectors))
	for id, entry := range m.vectors {
		scores = append(scores, scored{id: id, score: cosineSimilarity(query, entry.vector), seq: entry.seq})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]domain.RetrievedResult, k)
	for i := 0; i < k; i++ {
		entry := m.vectors[scores[i].id]
		results[i] = domain.RetrievedResult{
			ChunkID:  scores[i].id,
			Score:    scores[i].score,
			Text:     entry.text,
			Document: entry.document,
			Page:     entry.page,
		}
	}
	return results, nil
}

func (m *MemoryIndex) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = make(map[string]cacheEntry)
	m.nextSeq = 0
	m.status = domain.CorpusStatus{State: domain.CorpusEmpty}
	return nil
}

func (m *MemoryIndex) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors), nil
}

func (m *MemoryIndex) Status() (domain.CorpusStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status, nil
}

func (m *MemoryIndex) Close() error { return nil }
