package port

import "context"

// Embedder generates vector embeddings for text.
// Implementations must be pure with respect to input text: the same text
// always maps to the same vector, keeping retrieval deterministic.
type Embedder interface {
	// Embed generates embeddings for the given texts, one vector per input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
