package embed

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openAIDefaultModel = "text-embedding-3-small"

// OpenAIConfig configures the OpenAI-compatible embedding client.
type OpenAIConfig struct {
	// APIKey authenticates against the provider.
	APIKey string
	// BaseURL overrides the endpoint for OpenAI-compatible providers.
	BaseURL string
	// Model is the embedding model identifier.
	Model string
	// Dimensions requests a specific output size; it must match the vector
	// store's dimension.
	Dimensions int
}

// OpenAI embeds text via an OpenAI-compatible embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	dims   int
}

// NewOpenAI creates the client. APIKey and a positive Dimensions are
// required; Model defaults to text-embedding-3-small.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: api key is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("openai embedder: dimensions must be positive, got %d", cfg.Dimensions)
	}

	model := cfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		dims:   cfg.Dimensions,
	}, nil
}

// Embed requests a single embedding. Provider errors and short responses
// surface as wrapped ErrUnavailable.
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: provider returned no embedding", ErrUnavailable)
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions returns the configured embedding size.
func (e *OpenAI) Dimensions() int { return e.dims }
