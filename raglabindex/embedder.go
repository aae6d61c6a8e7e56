package raglabindex

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
)

// Embedder turns texts into fixed-size vectors. Implementations must return
// one vector per input text, each of Dimensions() length.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, errorsx.Error)
	Dimensions() int
}

const DefaultLocalEmbedderDimensions = 64

// LocalEmbedder is a deterministic offline embedder. It hashes word tokens
// into a fixed number of buckets, so similar texts land near each other while
// no network or model is needed. Useful for tests and air-gapped runs.
type LocalEmbedder struct {
	dimensions int
}

func NewLocalEmbedder(dimensions int) *LocalEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultLocalEmbedderDimensions
	}

	return &LocalEmbedder{dimensions: dimensions}
}

func (e *LocalEmbedder) Dimensions() int {
	return e.dimensions
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, errorsx.Error) {
	if err := ctx.Err(); err != nil {
		return nil, errorsx.Wrap(err)
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, e.embedOne(text))
	}

	return vectors, nil
}

func (e *LocalEmbedder) embedOne(text string) []float32 {
	vector := make([]float32, e.dimensions)

	var token []rune
	flushToken := func() {
		if len(token) == 0 {
			return
		}

		h := fnv.New32a()
		h.Write([]byte(string(token)))
		bucket := int(h.Sum32()) % e.dimensions
		if bucket < 0 {
			bucket += e.dimensions
		}
		vector[bucket]++

		token = token[:0]
	}

	for _, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			flushToken()
			continue
		}
		token = append(token, r)
	}
	flushToken()

	NormalizeVector(vector)

	return vector
}

// NormalizeVector scales the vector to unit length in place, so inner
// product search behaves as cosine similarity. The zero vector is left as is.
func NormalizeVector(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares == 0 {
		return
	}

	norm := float32(math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] /= norm
	}
}
