package raglabindex

import (
	"context"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultOpenAIEmbeddingModel      = openai.EmbeddingModelTextEmbedding3Small
	DefaultOpenAIEmbeddingDimensions = 1536
)

// OpenAIEmbedder calls the OpenAI embeddings API. Returned vectors are
// normalized, so inner product search over them is cosine similarity.
type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
	// dimensions is sent with each request when it differs from the model's
	// native size, truncating the returned vectors server-side
	dimensions      int
	modelNativeDims int
}

func NewOpenAIEmbedder(apiKey string, model openai.EmbeddingModel, dimensions int) *OpenAIEmbedder {
	if model == "" {
		model = DefaultOpenAIEmbeddingModel
	}

	nativeDims := nativeModelDimensions(model)
	if dimensions <= 0 {
		dimensions = nativeDims
	}

	return &OpenAIEmbedder{
		client:          openai.NewClient(option.WithAPIKey(apiKey)),
		model:           model,
		dimensions:      dimensions,
		modelNativeDims: nativeDims,
	}
}

func nativeModelDimensions(model openai.EmbeddingModel) int {
	switch model {
	case openai.EmbeddingModelTextEmbedding3Large:
		return 3072
	default:
		return DefaultOpenAIEmbeddingDimensions
	}
}

func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedder) newEmbeddingParams(texts []string) openai.EmbeddingNewParams {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: e.model,
	}

	if e.dimensions != e.modelNativeDims {
		params.Dimensions = openai.Int(int64(e.dimensions))
	}

	return params
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, errorsx.Error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, e.newEmbeddingParams(texts))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	if len(resp.Data) != len(texts) {
		return nil, errorsx.Errorf("expected %d embeddings but got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vector := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vector[i] = float32(v)
		}

		NormalizeVector(vector)
		vectors[item.Index] = vector
	}

	return vectors, nil
}
