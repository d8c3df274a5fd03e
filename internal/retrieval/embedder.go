package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/sashabaranov/go-openai"
)

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// maxEmbedChars keeps single inputs under the embedding model's token limit.
const maxEmbedChars = 24000

type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	m := openai.EmbeddingModel(model)
	if model == "" {
		m = openai.SmallEmbedding3
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: m}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		if len(t) > maxEmbedChars {
			t = t[:maxEmbedChars]
		}
		inputs[i] = t
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{Input: inputs, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("embedding %d missing from response", i)
		}
	}
	return out, nil
}

// HashEmbedder maps lower-cased word tokens into a fixed number of buckets
// and L2-normalizes the counts. It needs no network and is deterministic.
type HashEmbedder struct {
	Dimensions int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 512
	}
	return &HashEmbedder{Dimensions: dims}
}

func (e *HashEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.Dimensions)
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		v[h.Sum32()%uint32(e.Dimensions)]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range v {
		v[i] *= scale
	}
	return v
}
