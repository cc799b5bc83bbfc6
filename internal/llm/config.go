// Package llm wraps the hosted language model used to draft free-text application answers.
package llm

// ModelTier selects a model by capability.
type ModelTier string

const (
	// TierLite is for short extraction tasks
	TierLite ModelTier = "lite"
	// TierStandard drafts application answers
	TierStandard ModelTier = "standard"
	// TierAdvanced is for long-form writing such as cover letters
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one implemented.
const ProviderGemini Provider = "gemini"

// Config holds the model configuration.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// Temperature is applied to every request. Answers favor some variety over determinism.
	Temperature float32
}

// DefaultConfig returns the default Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: 0.4,
	}
}

// GetModel returns the model for tier, falling back to standard, then lite.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if model, ok := c.Models[t]; ok && model != "" {
			return model
		}
	}
	return ""
}

// WithModel returns a copy of c using model for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Provider:    c.Provider,
		Models:      make(map[ModelTier]string, len(c.Models)+1),
		Temperature: c.Temperature,
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
