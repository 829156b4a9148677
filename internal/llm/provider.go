package llm

import (
	"context"

	"github.com/gumruklab/gtip/internal/model"
)

// Provider is the vision/text collaborator behind classification,
// advisory opinions and batch product extraction.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Classify reads a product datasheet (images and/or text) and
	// returns a structured classification proposal.
	Classify(ctx context.Context, req ClassifyRequest) (*Classification, error)

	// Advise answers a free-form question grounded on tariff and
	// precedent context.
	Advise(ctx context.Context, req AdviseRequest) (*Advice, error)

	// ExtractProducts reads an order or formulation document and
	// returns the products and ingredients it names.
	ExtractProducts(ctx context.Context, req ExtractRequest) ([]ExtractedProduct, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Document is one attachment of a request. Images go to the model as
// vision parts; plain text is inlined into the prompt.
type Document struct {
	Name string
	MIME string // "image/png", "image/jpeg", "text/plain"
	Data []byte
}

// ClassifyRequest asks for a structured classification of one product.
type ClassifyRequest struct {
	// Documents are the product datasheet pages.
	Documents []Document

	// TariffContext is the pre-filtered slice of tariff lines relevant
	// to this product (keyword pre-filter output).
	TariffContext string

	// PrecedentContext is the rendering of the closest prior cases.
	PrecedentContext string

	// Model overrides the configured model for this call.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// Classification is the parsed reply of a Classify call. Raw carries
// the full model output for the classification log.
type Classification struct {
	ProductName     string             `json:"product_name"`
	Brand           string             `json:"brand"`
	SuggestedCode   string             `json:"suggested_code"`
	CompositionText string             `json:"composition_text"`
	Features        model.CaseFeatures `json:"features"`
	Tags            []string           `json:"tags"`
	ShortReason     string             `json:"short_reason"`

	// Set by the provider, not parsed from the reply. Raw keeps the
	// unparsed model output for the classification log and survives
	// cache round trips.
	Raw        string `json:"raw,omitempty"`
	Model      string `json:"model,omitempty"`
	TokensUsed int    `json:"tokens_used,omitempty"`
}

// AdviseRequest asks for a free-form expert opinion.
type AdviseRequest struct {
	Question         string
	Documents        []Document
	TariffContext    string
	PrecedentContext string
	Model            string
	MaxTokens        int
}

// Advice is the reply of an Advise call.
type Advice struct {
	Text       string
	Model      string
	TokensUsed int
}

// ExtractRequest asks for the product/ingredient inventory of a
// document.
type ExtractRequest struct {
	Documents []Document
	Model     string
	MaxTokens int
}

// ExtractedProduct is one product the model found, with its declared
// ingredients.
type ExtractedProduct struct {
	Name        string                `json:"name"`
	Ingredients []ExtractedIngredient `json:"ingredients"`
}

// ExtractedIngredient is one component line of an extracted product.
type ExtractedIngredient struct {
	Name    string `json:"name"`
	CAS     string `json:"cas"`
	Percent string `json:"percent,omitempty"`
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "gemini", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (Gemini's OpenAI-compatible
	// endpoint, self-hosted gateways, Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   60,
		MaxTokens: 2000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:   mc.Provider,
		Model:      mc.Model,
		APIKey:     mc.APIKey,
		BaseURL:    mc.BaseURL,
		Timeout:    mc.Timeout,
		MaxTokens:  mc.MaxTokens,
		HTTPProxy:  mc.HTTPProxy,
		HTTPSProxy: mc.HTTPSProxy,
	}
}
