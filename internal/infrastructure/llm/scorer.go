package llm

import (
	"context"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
)

// embeddingClient is the slice of the OpenAI client the scorer needs.
type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// EmbeddingScorer computes pairwise similarity as the cosine of embedding
// vectors obtained from an OpenAI-compatible endpoint.  Each Score call
// issues one batched embedding request per text collection.  Negative cosine
// values clamp to 0 so scores stay in [0,1] without shifting the matching
// threshold.
type EmbeddingScorer struct {
	client embeddingClient
	model  string
	log    logging.Logger
}

// NewEmbeddingScorer builds the embedding scorer from platform configuration.
func NewEmbeddingScorer(cfg config.LLMConfig, log logging.Logger) *EmbeddingScorer {
	return newEmbeddingScorerWithClient(NewClient(cfg), cfg, log)
}

func newEmbeddingScorerWithClient(client embeddingClient, cfg config.LLMConfig, log logging.Logger) *EmbeddingScorer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EmbeddingScorer{
		client: client,
		model:  cfg.EmbeddingModel,
		log:    log.Named("llm.scorer"),
	}
}

func (s *EmbeddingScorer) Name() string { return "embedding:" + s.model }

// Score embeds both collections and returns the cosine similarity matrix.
func (s *EmbeddingScorer) Score(ctx context.Context, texts1, texts2 []string) ([][]float64, error) {
	vecs1, err := s.embed(ctx, texts1)
	if err != nil {
		return nil, err
	}
	vecs2, err := s.embed(ctx, texts2)
	if err != nil {
		return nil, err
	}

	matrix := make([][]float64, len(vecs1))
	for i, v1 := range vecs1 {
		matrix[i] = make([]float64, len(vecs2))
		for j, v2 := range vecs2 {
			matrix[i][j] = clampCosine(cosine(v1, v2))
		}
	}
	return matrix, nil
}

func (s *EmbeddingScorer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding request failed")
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeEmbeddingFailed,
			"embedding response has %d vectors, want %d", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, errors.Newf(errors.ErrCodeEmbeddingFailed, "embedding index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}

// cosine returns the cosine similarity of two vectors, 0 for zero vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// clampCosine forces the score into [0,1]: negative cosines carry no signal
// for this matching and float drift can push values just past 1.
func clampCosine(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
