package embedding

import "context"

// Mock is a deterministic in-process embedder for tests. The vector is a
// pure function of the input text, so self-retrieval assertions hold.
type Mock struct {
	dimension int
}

func NewMock(dimension int) *Mock {
	if dimension <= 0 {
		dimension = 64
	}
	return &Mock{dimension: dimension}
}

func (e *Mock) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dimension)
		for j, r := range text {
			v[j%e.dimension] += float32(r) / 1000.0
		}
		vecs[i] = v
	}
	return vecs, nil
}

func (e *Mock) Dimension() int { return e.dimension }

func (e *Mock) ModelName() string { return "mock" }
