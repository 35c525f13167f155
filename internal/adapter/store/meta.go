package store

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"pdfqa/internal/domain"
)

// IndexMeta records the embedding provider the index was built with.
// Vectors from different models or dimensions are not comparable, so a
// mismatch means the corpus must be re-ingested from source documents.
type IndexMeta struct {
	EmbeddingModel string
	Dimension      int
}

// Meta reads the recorded embedding metadata. Both fields are zero when the
// index has never been written to.
func (s *BoltIndex) Meta() (IndexMeta, error) {
	var meta IndexMeta
	err := s.db.View(func(tx *bbolt.Tx) error {
		cb := tx.Bucket(bucketCorpus)
		if v := cb.Get(keyEmbedModel); v != nil {
			meta.EmbeddingModel = string(v)
		}
		if v := cb.Get(keyEmbedDim); v != nil {
			meta.Dimension = int(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	if err != nil {
		return IndexMeta{}, &domain.VectorStoreError{Op: "meta", Err: err}
	}
	return meta, nil
}

// RecordMeta persists the embedding model and dimension. Call after the
// first successful ingestion.
func (s *BoltIndex) RecordMeta(model string, dimension int) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		cb := tx.Bucket(bucketCorpus)
		if err := cb.Put(keyEmbedModel, []byte(model)); err != nil {
			return err
		}
		return putUint64(cb, keyEmbedDim, uint64(dimension))
	})
	if err != nil {
		return &domain.VectorStoreError{Op: "meta", Err: err}
	}
	return nil
}

// RequiresRebuild reports whether the index was built with a different
// embedding setup than the one currently configured. A fresh index never
// requires a rebuild.
func (s *BoltIndex) RequiresRebuild(model string, dimension int) (bool, string, error) {
	meta, err := s.Meta()
	if err != nil {
		return false, "", err
	}
	if meta.EmbeddingModel == "" && meta.Dimension == 0 {
		return false, "", nil
	}
	if meta.EmbeddingModel != model {
		return true, fmt.Sprintf("index was built with embedding model %q, configured model is %q", meta.EmbeddingModel, model), nil
	}
	if meta.Dimension != dimension {
		return true, fmt.Sprintf("index was built with dimension %d, configured dimension is %d", meta.Dimension, dimension), nil
	}
	return false, "", nil
}
