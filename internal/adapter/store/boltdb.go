package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"pdfqa/internal/domain"
)

var (
	bucketVectors = []byte("vectors")
	bucketCorpus  = []byte("corpus")

	keyChunkCount   = []byte("chunk_count")
	keyDocumentName = []byte("document_name")
	keyNextSeq      = []byte("next_seq")
	keyEmbedModel   = []byte("embed_model")
	keyEmbedDim     = []byte("embed_dim")
)

// BoltIndex is a bbolt-backed vector index with brute-force cosine search.
//
// All vectors are mirrored in memory for search speed; bbolt provides
// durability across restarts. A single RWMutex serializes writes against
// each other and against reads, so a search never observes a partially
// applied batch or an in-progress clear. Vector dimensionality is fixed for
// the lifetime of the index.
type BoltIndex struct {
	db        *bbolt.DB
	dimension int

	mu      sync.RWMutex
	vectors map[string]cacheEntry
	status  domain.CorpusStatus
}

type cacheEntry struct {
	vector   []float32
	text     string
	document string
	page     int
	seq      uint64
}

type storedEntry struct {
	Vector   []float32 `json:"v"`
	Text     string    `json:"t"`
	Document string    `json:"d"`
	Page     int       `json:"p"`
	Start    int       `json:"o"`
	Seq      uint64    `json:"s"`
}

// NewBoltIndex opens (or creates) the index at path. The dimension is set by
// the embedding provider and checked on every write.
func NewBoltIndex(path string, dimension int) (*BoltIndex, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, &domain.VectorStoreError{Op: "open", Err: err}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketVectors, bucketCorpus} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, &domain.VectorStoreError{Op: "open", Err: err}
	}

	idx := &BoltIndex{
		db:        db,
		dimension: dimension,
		vectors:   make(map[string]cacheEntry),
		status:    domain.CorpusStatus{State: domain.CorpusEmpty},
	}
	if err := idx.load(); err != nil {
		db.Close()
		return nil, &domain.VectorStoreError{Op: "load", Err: err}
	}

	return idx, nil
}

// load mirrors all persisted vectors and the corpus status into memory.
func (s *BoltIndex) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		vb := tx.Bucket(bucketVectors)
		err := vb.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				// Corruption on read is fatal, not silently degraded.
				return fmt.Errorf("corrupt entry %q: %w", k, err)
			}
			s.vectors[string(k)] = cacheEntry{
				vector:   stored.Vector,
				text:     stored.Text,
				document: stored.Document,
				page:     stored.Page,
				seq:      stored.Seq,
			}
			return nil
		})
		if err != nil {
			return err
		}

		cb := tx.Bucket(bucketCorpus)
		s.status = readStatus(cb)
		return nil
	})
}

func readStatus(cb *bbolt.Bucket) domain.CorpusStatus {
	status := domain.CorpusStatus{State: domain.CorpusEmpty}
	if v := cb.Get(keyChunkCount); v != nil {
		status.ChunkCount = int(binary.BigEndian.Uint64(v))
	}
	if v := cb.Get(keyDocumentName); v != nil {
		status.DocumentName = string(v)
	}
	if status.ChunkCount > 0 {
		status.State = domain.CorpusReady
	}
	return status
}

func putUint64(b *bbolt.Bucket, key []byte, n uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	return b.Put(key, buf[:])
}

// UpsertBatch commits all entries in one transaction; the corpus status is
// updated inside the same transaction, so ingestion is all-or-nothing per
// document. Overwriting an existing chunk keeps its original insertion
// sequence, which keeps ranking ties stable across re-ingestion.
func (s *BoltIndex) UpsertBatch(entries []domain.Chunk, docName string, clearFirst bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Staged cache mutations, applied only after the transaction commits.
	newCache := make(map[string]cacheEntry, len(entries))
	var newStatus domain.CorpusStatus

	err := s.db.Update(func(tx *bbolt.Tx) error {
		vb := tx.Bucket(bucketVectors)
		cb := tx.Bucket(bucketCorpus)

		if clearFirst {
			if err := clearBuckets(tx); err != nil {
				return err
			}
			vb = tx.Bucket(bucketVectors)
			cb = tx.Bucket(bucketCorpus)
		}

		var nextSeq uint64
		if v := cb.Get(keyNextSeq); v != nil {
			nextSeq = binary.BigEndian.Uint64(v)
		}

		count := 0
		if v := cb.Get(keyChunkCount); v != nil {
			count = int(binary.BigEndian.Uint64(v))
		}

		for _, chunk := range entries {
			if len(chunk.Vector) != s.dimension {
				return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(chunk.Vector))
			}

			seq := nextSeq
			if prev := vb.Get([]byte(chunk.ID)); prev != nil {
				var old storedEntry
				if err := json.Unmarshal(prev, &old); err == nil {
					seq = old.Seq
				}
			} else {
				nextSeq++
				count++
			}

			stored := storedEntry{
				Vector:   chunk.Vector,
				Text:     chunk.Text,
				Document: chunk.Document,
				Page:     chunk.Page,
				Start:    chunk.Start,
				Seq:      seq,
			}
			data, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := vb.Put([]byte(chunk.ID), data); err != nil {
				return err
			}

			newCache[chunk.ID] = cacheEntry{
				vector:   chunk.Vector,
				text:     chunk.Text,
				document: chunk.Document,
				page:     chunk.Page,
				seq:      seq,
			}
		}

		if err := putUint64(cb, keyNextSeq, nextSeq); err != nil {
			return err
		}
		if err := putUint64(cb, keyChunkCount, uint64(count)); err != nil {
			return err
		}
		if err := cb.Put(keyDocumentName, []byte(docName)); err != nil {
			return err
		}

		newStatus = domain.CorpusStatus{
			ChunkCount:   count,
			DocumentName: docName,
			State:        domain.CorpusEmpty,
		}
		if count > 0 {
			newStatus.State = domain.CorpusReady
		}
		return nil
	})
	if err != nil {
		return &domain.VectorStoreError{Op: "upsert", Err: err}
	}

	if clearFirst {
		s.vectors = make(map[string]cacheEntry, len(newCache))
	}
	for id, entry := range newCache {
		s.vectors[id] = entry
	}
	s.status = newStatus

	return nil
}

// Search returns up to k results ranked by cosine similarity (higher is
// better). Ties break by insertion order: the earlier-inserted chunk ranks
// higher, which keeps result order reproducible.
func (s *BoltIndex) Search(query []float32, k int) ([]domain.RetrievedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(query) != s.dimension {
		return nil, &domain.VectorStoreError{
			Op:  "search",
			Err: fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query)),
		}
	}
	if k <= 0 || len(s.vectors) == 0 {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
		seq   uint64
	}

	scores := make([]scored, 0, len(s.vectors))
	for id, entry := range s.vectors {
		scores = append(scores, scored{
			id:    id,
			score: cosineSimilarity(query, entry.vector),
			seq:   entry.seq,
		})
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
		entry := s.vectors[scores[i].id]
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

// Clear removes every entry in one transaction and resets the corpus status.
func (s *BoltIndex) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(clearBuckets)
	if err != nil {
		return &domain.VectorStoreError{Op: "clear", Err: err}
	}

	s.vectors = make(map[string]cacheEntry)
	s.status = domain.CorpusStatus{State: domain.CorpusEmpty}
	return nil
}

func clearBuckets(tx *bbolt.Tx) error {
	if err := tx.DeleteBucket(bucketVectors); err != nil {
		return err
	}
	if _, err := tx.CreateBucket(bucketVectors); err != nil {
		return err
	}

	cb := tx.Bucket(bucketCorpus)
	if err := putUint64(cb, keyChunkCount, 0); err != nil {
		return err
	}
	if err := putUint64(cb, keyNextSeq, 0); err != nil {
		return err
	}
	for _, key := range [][]byte{keyDocumentName, keyEmbedModel, keyEmbedDim} {
		if err := cb.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of stored chunks.
func (s *BoltIndex) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.ChunkCount, nil
}

// Status returns the corpus status tracked alongside the index.
func (s *BoltIndex) Status() (domain.CorpusStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, nil
}

func (s *BoltIndex) Close() error {
	return s.db.Close()
}

// cosineSimilarity is the fixed similarity metric for this index.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
