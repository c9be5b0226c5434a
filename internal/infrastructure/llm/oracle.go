package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/policylens/internal/config"
	"github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/internal/intelligence/oracle"
	"github.com/turtacn/policylens/pkg/errors"
)

// System prompts per oracle operation.
const (
	explainSystemPrompt  = "You are a policy analysis expert who explains government document changes in clear, accessible language."
	summarySystemPrompt  = "You are a policy expert who creates concise summaries of government document sections."
	classifySystemPrompt = "You are a policy analyst. Respond only with valid JSON."
	overallSystemPrompt  = "You are a senior policy analyst who creates executive summaries of government document changes for decision-makers."
)

// chatClient is the slice of the OpenAI client the oracle needs; narrowed for
// testability.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Oracle is the language-model TextOracle.  Prompts are truncated to the
// configured input budget before each call; classification responses are
// parsed as JSON with a best-effort fallback on malformed output.
type Oracle struct {
	client        chatClient
	model         string
	maxInputChars int
	log           logging.Logger
}

// NewOracle builds the LLM oracle from platform configuration.
func NewOracle(cfg config.LLMConfig, log logging.Logger) *Oracle {
	return newOracleWithClient(NewClient(cfg), cfg, log)
}

func newOracleWithClient(client chatClient, cfg config.LLMConfig, log logging.Logger) *Oracle {
	if log == nil {
		log = logging.NewNopLogger()
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 {
		maxChars = config.DefaultLLMMaxInputChars
	}
	return &Oracle{
		client:        client,
		model:         cfg.ChatModel,
		maxInputChars: maxChars,
		log:           log.Named("llm.oracle"),
	}
}

func (o *Oracle) Name() string { return "openai:" + o.model }

// chat issues one system+user exchange and returns the first choice.
func (o *Oracle) chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeOracleUnavailable, "chat completion failed")
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New(errors.ErrCodeOracleEmptyResponse, "model returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// Summarize produces a 1-2 sentence summary of one section.
func (o *Oracle) Summarize(ctx context.Context, text string, mode oracle.SummaryMode) (string, error) {
	text = truncate(text, o.maxInputChars/2)

	var prompt string
	switch mode {
	case oracle.ModeAdded:
		prompt = "Summarize this new policy section in 1-2 sentences: " + text
	case oracle.ModeRemoved:
		prompt = "Summarize what was removed from this policy section in 1-2 sentences: " + text
	default:
		prompt = "Summarize the key points of this policy section in 1-2 sentences: " + text
	}
	return o.chat(ctx, summarySystemPrompt, prompt)
}

// ExplainChange produces a plain-language account of a modification.
func (o *Oracle) ExplainChange(ctx context.Context, oldText, newText string) (string, error) {
	prompt := fmt.Sprintf(`Analyze the changes between these two policy text sections and provide a clear, concise summary in plain language.

ORIGINAL VERSION:
%s

NEW VERSION:
%s

Please provide:
1. What changed (additions, removals, modifications)
2. The significance of these changes
3. Who might be affected by these changes
4. Any terminology or requirement changes

Keep your response focused and under 200 words.`,
		truncate(oldText, o.maxInputChars), truncate(newText, o.maxInputChars))

	return o.chat(ctx, explainSystemPrompt, prompt)
}

// classificationPayload mirrors the JSON shape the model is asked for.
type classificationPayload struct {
	ImpactLevel       string `json:"impact_level"`
	ChangeCategory    string `json:"change_category"`
	StakeholderImpact string `json:"stakeholder_impact"`
}

// ClassifyChange asks the model for a structured impact classification.  A
// response that is not valid JSON degrades to impact medium, category
// requirements, with the raw text truncated into the stakeholder note.
func (o *Oracle) ClassifyChange(ctx context.Context, oldText, newText string) (comparison.ImpactAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze this policy change and classify it:

BEFORE: %s
AFTER: %s

Provide a JSON response with:
- impact_level: "low", "medium", or "high"
- change_category: "procedural", "requirements", "definitions", "scope", "compliance", or "other"
- stakeholder_impact: brief description of who is most affected

Respond only with valid JSON.`,
		truncate(oldText, o.maxInputChars/4), truncate(newText, o.maxInputChars/4))

	content, err := o.chat(ctx, classifySystemPrompt, prompt)
	if err != nil {
		return comparison.ImpactAnalysis{}, err
	}
	return o.parseClassification(content), nil
}

// parseClassification decodes the model's JSON, tolerating surrounding prose
// by extracting the outermost object first.
func (o *Oracle) parseClassification(content string) comparison.ImpactAnalysis {
	var payload classificationPayload
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &payload); err != nil {
		o.log.Warn("classification response was not valid JSON", logging.Err(err))
		return comparison.ImpactAnalysis{
			ImpactLevel:       comparison.ImpactMedium,
			ChangeCategory:    comparison.CategoryRequirements,
			StakeholderImpact: ellipsize(content, 100),
		}
	}

	analysis := comparison.ImpactAnalysis{
		ImpactLevel:       comparison.ImpactLevel(strings.ToLower(payload.ImpactLevel)),
		ChangeCategory:    comparison.ChangeCategory(strings.ToLower(payload.ChangeCategory)),
		StakeholderImpact: payload.StakeholderImpact,
	}
	if analysis.ImpactLevel.Ordinal() == 0 {
		analysis.ImpactLevel = comparison.ImpactMedium
	}
	if !comparison.ValidCategory(analysis.ChangeCategory) {
		analysis.ChangeCategory = comparison.CategoryOther
	}
	return analysis
}

// OverallSummary produces an executive summary of a whole comparison.
func (o *Oracle) OverallSummary(ctx context.Context, stats comparison.Statistics, major []comparison.MajorChange, doc1Title, doc2Title string) (string, error) {
	var changes strings.Builder
	for i, m := range major {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&changes, "- %s: %s\n", m.Title, m.ChangeType)
	}

	prompt := fmt.Sprintf(`Provide an executive summary comparing these two policy documents:

Document 1: %s
Document 2: %s

Statistics:
- Total sections analyzed: %d
- New sections: %d
- Removed sections: %d
- Modified sections: %d

Major changes:
%s
Please provide:
1. Overall assessment of the policy changes
2. Key areas of impact
3. Significance for stakeholders
4. Notable trends or patterns in the changes

Keep the summary under 300 words and focus on actionable insights.`,
		doc1Title, doc2Title, stats.TotalSections, stats.Added, stats.Removed, stats.Modified, changes.String())

	return o.chat(ctx, overallSystemPrompt, prompt)
}

// extractJSONObject returns the slice of s spanning the first '{' through the
// last '}', or s unchanged when no object is present.  Local models often
// wrap their JSON in prose or code fences.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

// ellipsize truncates s to max characters and marks the cut with "...".
func ellipsize(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
