package port

import "context"

// Generator is the generative language model behind question answering.
// Treated as a single exclusive resource by the session; implementations do
// not need to be safe for concurrent calls.
type Generator interface {
	// Generate produces a completion for the prompt. The context carries the
	// generation timeout; exceeding it returns an error without side effects.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
