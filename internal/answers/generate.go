// Package answers generates the free-text answers (why this company, cover letter, ...)
// that the form filler types into open-ended questions.
package answers

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/atlas/autoapply/internal/llm"
	"github.com/atlas/autoapply/internal/prompts"
	"github.com/atlas/autoapply/internal/schemas"
	"github.com/atlas/autoapply/internal/types"
)

const promptFile = "autofill.json"

// maxDescriptionChars keeps long postings from crowding out the rest of the prompt.
const maxDescriptionChars = 12000

// GenerateRequest describes the job and applicant answers are written for.
type GenerateRequest struct {
	JobURL         string
	JobDescription string
	Profile        *types.UserProfile
	// Questions lists answer keys to generate; empty means every known key.
	Questions []string
}

// Generator produces free-text answers for a job application.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (types.FreeTextAnswers, error)
}

// LLMGenerator writes answers with a language model.
type LLMGenerator struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMGenerator returns a generator using client at the standard model tier.
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client, tier: llm.TierStandard}
}

// WithTier returns a copy of g that uses tier.
func (g *LLMGenerator) WithTier(tier llm.ModelTier) *LLMGenerator {
	return &LLMGenerator{client: g.client, tier: tier}
}

// Generate makes one model call and never retries. Answers for keys that were not
// requested, and empty answers, are dropped.
func (g *LLMGenerator) Generate(ctx context.Context, req GenerateRequest) (types.FreeTextAnswers, error) {
	if req.Profile == nil {
		return nil, &GenerationError{Message: "profile is required"}
	}
	questions, err := requestedQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	prompt, err := buildPrompt(req, questions)
	if err != nil {
		return nil, &GenerationError{Message: "failed to build prompt", Cause: err}
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, g.tier)
	if err != nil {
		return nil, &GenerationError{Message: "failed to generate content from LLM", Cause: err}
	}
	return parseAnswers(raw, questions)
}

func requestedQuestions(keys []string) ([]string, error) {
	if len(keys) == 0 {
		return types.AnswerKeys(), nil
	}
	known := types.AnswerKeys()
	var out []string
	for _, k := range keys {
		if !slices.Contains(known, k) {
			return nil, &GenerationError{Message: fmt.Sprintf("unknown question %q", k)}
		}
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out, nil
}

func buildPrompt(req GenerateRequest, questions []string) (string, error) {
	var qs strings.Builder
	for _, key := range questions {
		text, err := prompts.Get(promptFile, "question-"+key)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&qs, "%s: %s\n", key, text)
	}

	profile, err := json.MarshalIndent(req.Profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode profile: %w", err)
	}

	description := strings.TrimSpace(req.JobDescription)
	if description == "" {
		description = "Not provided"
	}
	if len(description) > maxDescriptionChars {
		description = strings.ToValidUTF8(description[:maxDescriptionChars], "")
	}

	return prompts.Render(promptFile, "generate-answers", map[string]string{
		"Questions":      strings.TrimRight(qs.String(), "\n"),
		"Profile":        string(profile),
		"JobURL":         req.JobURL,
		"JobDescription": description,
	})
}

func parseAnswers(raw string, questions []string) (types.FreeTextAnswers, error) {
	if err := schemas.Validate(schemas.Answers, []byte(raw)); err != nil {
		return nil, &GenerationError{Message: "model returned malformed answers", Cause: err}
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &GenerationError{Message: "failed to parse answers", Cause: err}
	}

	out := types.FreeTextAnswers{}
	for _, key := range questions {
		if v := strings.TrimSpace(decoded[key]); v != "" {
			out[key] = v
		}
	}
	return out, nil
}
