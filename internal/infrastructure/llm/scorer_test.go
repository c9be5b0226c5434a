package llm

import (
	"context"
	"math"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/pkg/errors"
)

// stubEmbed returns vectors keyed by input text.
type stubEmbed struct {
	vectors map[string][]float32
	shuffle bool
	err     error
}

func (s *stubEmbed) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	if s.err != nil {
		return openai.EmbeddingResponse{}, s.err
	}
	req, ok := conv.(openai.EmbeddingRequestStrings)
	if !ok {
		return openai.EmbeddingResponse{}, assert.AnError
	}
	data := make([]openai.Embedding, 0, len(req.Input))
	for i, text := range req.Input {
		data = append(data, openai.Embedding{Index: i, Embedding: s.vectors[text]})
	}
	if s.shuffle && len(data) > 1 {
		data[0], data[len(data)-1] = data[len(data)-1], data[0]
	}
	return openai.EmbeddingResponse{Data: data}, nil
}

func newTestScorer(stub *stubEmbed) *EmbeddingScorer {
	return newEmbeddingScorerWithClient(stub, config.LLMConfig{EmbeddingModel: "nomic-embed-text"}, nil)
}

func TestEmbeddingScorer_CosineMatrix(t *testing.T) {
	stub := &stubEmbed{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
		"c": {1, 1},
	}}
	s := newTestScorer(stub)

	matrix, err := s.Score(context.Background(), []string{"a", "b"}, []string{"a", "c"})
	require.NoError(t, err)
	require.Len(t, matrix, 2)

	assert.InDelta(t, 1.0, matrix[0][0], 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, matrix[0][1], 1e-9)
	assert.InDelta(t, 0.0, matrix[1][0], 1e-9)
	assert.InDelta(t, 1/math.Sqrt2, matrix[1][1], 1e-9)
}

func TestEmbeddingScorer_NegativeCosineClampsToZero(t *testing.T) {
	stub := &stubEmbed{vectors: map[string][]float32{
		"up":   {0, 1},
		"down": {0, -1},
	}}
	s := newTestScorer(stub)

	matrix, err := s.Score(context.Background(), []string{"up"}, []string{"down"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, matrix[0][0])
}

func TestEmbeddingScorer_HonorsResponseIndex(t *testing.T) {
	stub := &stubEmbed{
		vectors: map[string][]float32{
			"a": {1, 0},
			"b": {0, 1},
		},
		shuffle: true,
	}
	s := newTestScorer(stub)

	matrix, err := s.Score(context.Background(), []string{"a", "b"}, []string{"a", "b"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, matrix[0][0], 1e-9)
	assert.InDelta(t, 0.0, matrix[0][1], 1e-9)
	assert.InDelta(t, 1.0, matrix[1][1], 1e-9)
}

func TestEmbeddingScorer_RequestErrorWrapped(t *testing.T) {
	s := newTestScorer(&stubEmbed{err: assert.AnError})

	_, err := s.Score(context.Background(), []string{"a"}, []string{"b"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmbeddingFailed, errors.GetCode(err))
}

func TestEmbeddingScorer_EmptyInputs(t *testing.T) {
	s := newTestScorer(&stubEmbed{vectors: map[string][]float32{"a": {1, 0}}})

	matrix, err := s.Score(context.Background(), nil, []string{"a"})
	require.NoError(t, err)
	assert.Empty(t, matrix)
}

func TestCosine_ZeroAndMismatchedVectors(t *testing.T) {
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosine([]float32{1}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosine(nil, nil))
}

func TestEmbeddingScorer_Name(t *testing.T) {
	assert.Equal(t, "embedding:nomic-embed-text", newTestScorer(&stubEmbed{}).Name())
}
