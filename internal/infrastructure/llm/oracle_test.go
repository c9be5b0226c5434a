package llm

import (
	"context"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
	"github.com/turtacn/policylens/pkg/errors"
)

// stubChat returns a canned response, recording prompts.
type stubChat struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.content}},
		},
	}, nil
}

func testConfig() config.LLMConfig {
	return config.LLMConfig{ChatModel: "llama3.2", MaxInputChars: 2000}
}

func TestOracle_Summarize(t *testing.T) {
	stub := &stubChat{content: "Adds a badge-in requirement for all staff."}
	o := newOracleWithClient(stub, testConfig(), nil)

	out, err := o.Summarize(context.Background(), "All staff must badge in.", oracle.ModeAdded)
	require.NoError(t, err)
	assert.Equal(t, "Adds a badge-in requirement for all staff.", out)
	require.Len(t, stub.lastReq.Messages, 2)
	assert.Contains(t, stub.lastReq.Messages[1].Content, "new policy section")
}

func TestOracle_Summarize_TruncatesInput(t *testing.T) {
	stub := &stubChat{content: "ok"}
	cfg := testConfig()
	cfg.MaxInputChars = 100
	o := newOracleWithClient(stub, cfg, nil)

	_, err := o.Summarize(context.Background(), strings.Repeat("x", 500), oracle.ModeNeutral)
	require.NoError(t, err)
	assert.NotContains(t, stub.lastReq.Messages[1].Content, strings.Repeat("x", 51))
}

func TestOracle_ExplainChange_ErrorWrapped(t *testing.T) {
	stub := &stubChat{err: assert.AnError}
	o := newOracleWithClient(stub, testConfig(), nil)

	_, err := o.ExplainChange(context.Background(), "old", "new")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOracleUnavailable, errors.GetCode(err))
}

func TestOracle_EmptyResponseIsError(t *testing.T) {
	stub := &stubChat{content: "   "}
	o := newOracleWithClient(stub, testConfig(), nil)

	_, err := o.ExplainChange(context.Background(), "old", "new")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOracleEmptyResponse, errors.GetCode(err))
}

func TestOracle_ClassifyChange_ValidJSON(t *testing.T) {
	stub := &stubChat{content: `{"impact_level":"high","change_category":"compliance","stakeholder_impact":"auditors"}`}
	o := newOracleWithClient(stub, testConfig(), nil)

	got, err := o.ClassifyChange(context.Background(), "old", "new")
	require.NoError(t, err)
	assert.Equal(t, comparison.ImpactHigh, got.ImpactLevel)
	assert.Equal(t, comparison.CategoryCompliance, got.ChangeCategory)
	assert.Equal(t, "auditors", got.StakeholderImpact)
}

func TestOracle_ClassifyChange_JSONInProse(t *testing.T) {
	stub := &stubChat{content: "Here is my analysis:\n```json\n{\"impact_level\":\"low\",\"change_category\":\"procedural\",\"stakeholder_impact\":\"clerks\"}\n```"}
	o := newOracleWithClient(stub, testConfig(), nil)

	got, err := o.ClassifyChange(context.Background(), "old", "new")
	require.NoError(t, err)
	assert.Equal(t, comparison.ImpactLow, got.ImpactLevel)
	assert.Equal(t, comparison.CategoryProcedural, got.ChangeCategory)
}

func TestOracle_ClassifyChange_ParseFallback(t *testing.T) {
	raw := "The change is quite significant for most departments involved, with broad operational consequences for everyone concerned in daily work."
	stub := &stubChat{content: raw}
	o := newOracleWithClient(stub, testConfig(), nil)

	got, err := o.ClassifyChange(context.Background(), "old", "new")
	require.NoError(t, err)
	assert.Equal(t, comparison.ImpactMedium, got.ImpactLevel)
	assert.Equal(t, comparison.CategoryRequirements, got.ChangeCategory)
	assert.Equal(t, raw[:100]+"...", got.StakeholderImpact)
}

func TestOracle_ClassifyChange_ParseFallbackShortTextKeptWhole(t *testing.T) {
	raw := "Not JSON at all."
	stub := &stubChat{content: raw}
	o := newOracleWithClient(stub, testConfig(), nil)

	got, err := o.ClassifyChange(context.Background(), "old", "new")
	require.NoError(t, err)
	assert.Equal(t, raw, got.StakeholderImpact)
}

func TestOracle_ClassifyChange_UnknownEnumsNormalized(t *testing.T) {
	stub := &stubChat{content: `{"impact_level":"CRITICAL","change_category":"misc","stakeholder_impact":"x"}`}
	o := newOracleWithClient(stub, testConfig(), nil)

	got, err := o.ClassifyChange(context.Background(), "old", "new")
	require.NoError(t, err)
	assert.Equal(t, comparison.ImpactMedium, got.ImpactLevel)
	assert.Equal(t, comparison.CategoryOther, got.ChangeCategory)
}

func TestOracle_OverallSummary_PromptCarriesStats(t *testing.T) {
	stub := &stubChat{content: "Executive summary."}
	o := newOracleWithClient(stub, testConfig(), nil)

	stats := comparison.Statistics{TotalSections: 9, Added: 2, Removed: 1, Modified: 3}
	major := []comparison.MajorChange{{Title: "Enforcement", ChangeType: comparison.ChangeRemoved}}

	out, err := o.OverallSummary(context.Background(), stats, major, "v1", "v2")
	require.NoError(t, err)
	assert.Equal(t, "Executive summary.", out)
	prompt := stub.lastReq.Messages[1].Content
	assert.Contains(t, prompt, "Total sections analyzed: 9")
	assert.Contains(t, prompt, "Enforcement: removed")
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSONObject("noise {\"a\":1} trailing"))
	assert.Equal(t, "no json here", extractJSONObject("no json here"))
}
