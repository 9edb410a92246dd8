package embedding

// EmbeddingProvider defines the interface for generating text embeddings.
// GenerateBatch is order-preserving and returns exactly one vector per input.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
	GenerateBatch(texts []string, taskType string) ([][]float32, error)
}
