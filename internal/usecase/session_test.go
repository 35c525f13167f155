package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfqa/config"
	"pdfqa/internal/adapter/chunker"
	"pdfqa/internal/adapter/embedding"
	"pdfqa/internal/adapter/llm"
	"pdfqa/internal/adapter/store"
	"pdfqa/internal/domain"
)

const testDimension = 16

// fakeExtractor returns canned pages regardless of input.
type fakeExtractor struct {
	pages []domain.Page
	err   error
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, _ string) ([]domain.Page, error) {
	return f.pages, f.err
}

// blockingGenerator parks inside Generate until released, for exercising the
// generation queue.
type blockingGenerator struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *blockingGenerator) Generate(ctx context.Context, _, _ string) (string, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return "slow answer", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *blockingGenerator) ModelName() string { return "blocking" }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Embedding.Dimension = testDimension
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config, pages []domain.Page, gen *llm.Mock) *Session {
	t.Helper()
	if gen == nil {
		gen = llm.NewMock("generated answer")
	}
	return NewSession(
		&fakeExtractor{pages: pages},
		chunker.NewCharChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
		embedding.NewMock(testDimension),
		store.NewMemoryIndex(testDimension),
		gen,
		cfg,
	)
}

func TestIngest(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: "The company reported strong revenue growth in the first quarter."},
		{Number: 2, Text: "Expenses declined due to reduced operational costs."},
	}
	session := newTestSession(t, testConfig(), pages, nil)

	result, err := session.Ingest(context.Background(), []byte("%PDF"), "report.pdf", false)
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", result.Document)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 0, result.OCRPages)
	assert.Equal(t, 2, result.ChunksAdded)

	status, err := session.Status()
	require.NoError(t, err)
	assert.Equal(t, domain.CorpusReady, status.State)
	assert.Equal(t, "report.pdf", status.DocumentName)
}

func TestIngestIdempotent(t *testing.T) {
	pages := []domain.Page{{Number: 1, Text: "Identical content on every ingestion run."}}
	session := newTestSession(t, testConfig(), pages, nil)

	_, err := session.Ingest(context.Background(), []byte("%PDF"), "doc.pdf", false)
	require.NoError(t, err)
	first, err := session.Status()
	require.NoError(t, err)

	_, err = session.Ingest(context.Background(), []byte("%PDF"), "doc.pdf", false)
	require.NoError(t, err)
	second, err := session.Status()
	require.NoError(t, err)

	assert.Equal(t, first.ChunkCount, second.ChunkCount,
		"re-ingesting identical content must not grow the corpus")
}

func TestIngestClearExisting(t *testing.T) {
	cfg := testConfig()
	first := newTestSession(t, cfg, []domain.Page{
		{Number: 1, Text: "Content of the first document."},
		{Number: 2, Text: "More content of the first document."},
	}, nil)

	_, err := first.Ingest(context.Background(), []byte("%PDF"), "first.pdf", false)
	require.NoError(t, err)

	// Same index, different extractor output for the replacement document.
	second := NewSession(
		&fakeExtractor{pages: []domain.Page{{Number: 1, Text: "Replacement document content."}}},
		chunker.NewCharChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
		embedding.NewMock(testDimension),
		first.index,
		llm.NewMock("generated answer"),
		cfg,
	)

	result, err := second.Ingest(context.Background(), []byte("%PDF"), "second.pdf", true)
	require.NoError(t, err)

	status, err := second.Status()
	require.NoError(t, err)
	assert.Equal(t, "second.pdf", status.DocumentName)
	assert.Equal(t, result.ChunksAdded, status.ChunkCount,
		"after a clearing ingest only the new document's chunks remain")
}

func TestIngestCountsOCRPages(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: "Native text page with enough content to index."},
		{Number: 2, OCRText: "Text recovered from a scanned page by OCR."},
	}
	session := newTestSession(t, testConfig(), pages, nil)

	result, err := session.Ingest(context.Background(), []byte("%PDF"), "scan.pdf", false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OCRPages)
	assert.Equal(t, 2, result.ChunksAdded)
}

func TestIngestEmptyDocument(t *testing.T) {
	// Zero extractable text: commits nothing but still succeeds.
	session := newTestSession(t, testConfig(), []domain.Page{{Number: 1}}, nil)

	result, err := session.Ingest(context.Background(), []byte("%PDF"), "blank.pdf", false)
	require.NoError(t, err)
	assert.Zero(t, result.ChunksAdded)

	status, err := session.Status()
	require.NoError(t, err)
	assert.Equal(t, domain.CorpusEmpty, status.State)
}

func TestIngestValidatesName(t *testing.T) {
	session := newTestSession(t, testConfig(), nil, nil)

	_, err := session.Ingest(context.Background(), []byte("%PDF"), "  ", false)
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestAskValidatesQuestion(t *testing.T) {
	session := newTestSession(t, testConfig(), nil, nil)

	_, err := session.Ask(context.Background(), "   ")
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
}

func TestAskEmptyCorpus(t *testing.T) {
	gen := llm.NewMock("should never appear")
	session := newTestSession(t, testConfig(), nil, gen)

	answer, err := session.Ask(context.Background(), "What is the revenue?")
	require.NoError(t, err)

	assert.Equal(t, noDocumentsAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, gen.Calls(), "generator must not run against an empty corpus")
}

func TestAskSelfRetrieval(t *testing.T) {
	// With a deterministic embedder, asking with a page's exact text must
	// retrieve that page's chunk first.
	pages := []domain.Page{
		{Number: 1, Text: "Acme Limited is headquartered in Gandhinagar."},
		{Number: 2, Text: "Widget Corporation operates from Ahmedabad."},
	}
	session := newTestSession(t, testConfig(), pages, nil)

	_, err := session.Ingest(context.Background(), []byte("%PDF"), "companies.pdf", false)
	require.NoError(t, err)

	answer, err := session.Ask(context.Background(), "Acme Limited is headquartered in Gandhinagar.")
	require.NoError(t, err)

	assert.Equal(t, "generated answer", answer.Text)
	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "companies.pdf", answer.Sources[0].Document)
	assert.Equal(t, 1, answer.Sources[0].Page)
	assert.Contains(t, answer.Sources[0].Excerpt, "Gandhinagar")
}

func TestAskBudgetTruncation(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: "alpha beta gamma delta epsilon zeta eta theta iota kappa"},
		{Number: 2, Text: "lambda mu nu xi omicron pi rho sigma tau upsilon"},
		{Number: 3, Text: "phi chi psi omega one two three four five six"},
	}
	cfg := testConfig()
	// Room for exactly one 10-word chunk (~13 estimated tokens).
	cfg.Generate.ContextBudget = 15
	session := newTestSession(t, cfg, pages, nil)

	_, err := session.Ingest(context.Background(), []byte("%PDF"), "doc.pdf", false)
	require.NoError(t, err)

	answer, err := session.Ask(context.Background(), "alpha beta gamma delta epsilon zeta eta theta iota kappa")
	require.NoError(t, err)

	assert.Len(t, answer.Sources, 1, "budget should keep only the top-ranked chunk")
	assert.Equal(t, 1, answer.Sources[0].Page)
}

func TestAskCapacityError(t *testing.T) {
	pages := []domain.Page{{Number: 1, Text: "Some indexed content for retrieval."}}
	cfg := testConfig()
	cfg.Generate.QueueDepth = 0

	gen := newBlockingGenerator()
	session := NewSession(
		&fakeExtractor{pages: pages},
		chunker.NewCharChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
		embedding.NewMock(testDimension),
		store.NewMemoryIndex(testDimension),
		gen,
		cfg,
	)

	_, err := session.Ingest(context.Background(), []byte("%PDF"), "doc.pdf", false)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := session.Ask(context.Background(), "first question")
		done <- err
	}()

	select {
	case <-gen.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first generation never started")
	}

	_, err = session.Ask(context.Background(), "second question")
	var capErr *domain.CapacityError
	require.ErrorAs(t, err, &capErr)

	close(gen.release)
	require.NoError(t, <-done)
}

func TestAskGenerationTimeout(t *testing.T) {
	pages := []domain.Page{{Number: 1, Text: "Some indexed content for retrieval."}}
	cfg := testConfig()
	cfg.Generate.Timeout = 20 * time.Millisecond

	gen := newBlockingGenerator()
	session := NewSession(
		&fakeExtractor{pages: pages},
		chunker.NewCharChunker(cfg.Chunk.Size, cfg.Chunk.Overlap),
		embedding.NewMock(testDimension),
		store.NewMemoryIndex(testDimension),
		gen,
		cfg,
	)

	_, err := session.Ingest(context.Background(), []byte("%PDF"), "doc.pdf", false)
	require.NoError(t, err)

	_, err = session.Ask(context.Background(), "question")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
