package usecase

import (
	"context"
	"log/slog"

	"pdfqa/config"
	"pdfqa/internal/adapter/analyzer"
	"pdfqa/internal/domain"
	"pdfqa/internal/port"
)

// Session owns the long-lived handles of the question-answering pipeline:
// the vector index, the embedding and generation providers, the extractor
// and chunker. One Session serves many requests.
//
// Generation is an exclusive resource. A single request generates at a time;
// up to cfg.Generate.QueueDepth more may wait, and anything beyond that
// fails fast with a CapacityError rather than piling up behind a slow model.
type Session struct {
	extractor port.Extractor
	chunker   port.Chunker
	embedder  port.Embedder
	index     port.VectorIndex
	generator port.Generator
	tokenizer *analyzer.Tokenizer
	cfg       *config.Config

	gate *genGate
}

// NewSession wires the pipeline components together.
func NewSession(
	extractor port.Extractor,
	chunker port.Chunker,
	embedder port.Embedder,
	index port.VectorIndex,
	generator port.Generator,
	cfg *config.Config,
) *Session {
	depth := cfg.Generate.QueueDepth
	if depth < 0 {
		depth = 0
	}
	return &Session{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		generator: generator,
		tokenizer: analyzer.NewTokenizer(),
		cfg:       cfg,
		gate:      newGenGate(depth),
	}
}

// Status reports the aggregate corpus state.
func (s *Session) Status() (domain.CorpusStatus, error) {
	return s.index.Status()
}

// ClearCorpus removes every indexed chunk.
func (s *Session) ClearCorpus() error {
	slog.Info("clearing corpus")
	return s.index.Clear()
}

// genGate serializes access to the generator. Admission (the queue slot) and
// execution (the active slot) are separate so overflow is detected without
// blocking.
type genGate struct {
	depth  int
	slots  chan struct{} // capacity depth+1: one in flight plus the queue
	active chan struct{} // capacity 1: the generation in progress
}

func newGenGate(depth int) *genGate {
	return &genGate{
		depth:  depth,
		slots:  make(chan struct{}, depth+1),
		active: make(chan struct{}, 1),
	}
}

func (g *genGate) acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
	default:
		return &domain.CapacityError{Depth: g.depth}
	}

	select {
	case g.active <- struct{}{}:
		return nil
	case <-ctx.Done():
		<-g.slots
		return ctx.Err()
	}
}

func (g *genGate) release() {
	<-g.active
	<-g.slots
}
