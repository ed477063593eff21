package intelligence

import "context"

// Model is the external language-model contract: structured chat output plus
// order-preserving batch embeddings.
type Model interface {
	GenerateJSON(ctx context.Context, prompt string, out any) error
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
