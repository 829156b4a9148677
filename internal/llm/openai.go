package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/gumruklab/gtip/internal/util"
)

// geminiOpenAIBase is Google's OpenAI-compatible endpoint; selecting
// provider "gemini" is the openai provider pointed here.
const geminiOpenAIBase = "https://generativelanguage.googleapis.com/v1beta/openai/"

// OpenAIProvider talks to OpenAI and to any OpenAI-compatible endpoint
// (Gemini, self-hosted gateways) selected via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	config Config
}

// NewOpenAIProvider creates a provider against api.openai.com or the
// configured BaseURL.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	return newCompatibleProvider(config, "openai", config.BaseURL)
}

// NewGeminiProvider creates a provider against Gemini's
// OpenAI-compatible endpoint.
func NewGeminiProvider(config Config) (*OpenAIProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = geminiOpenAIBase
	}
	return newCompatibleProvider(config, "gemini", baseURL)
}

func newCompatibleProvider(config Config, name, baseURL string) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, ""),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		name:   name,
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error so users can diagnose API key issues
		fmt.Fprintf(os.Stderr, "%s API check failed: %v\n", p.name, err)
		return false
	}
	return true
}

// Classify sends the datasheet pages as vision parts and parses the
// structured reply.
func (p *OpenAIProvider) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	reply, model, tokens, err := p.complete(ctx, classifySystemPrompt, BuildClassifyPrompt(req), req.Documents, req.Model, req.MaxTokens)
	if err != nil {
		return nil, err
	}

	classification, err := ParseClassification(reply)
	if err != nil {
		return nil, err
	}
	classification.Model = model
	classification.TokensUsed = tokens
	return classification, nil
}

// Advise answers a free-form question grounded on the given context.
func (p *OpenAIProvider) Advise(ctx context.Context, req AdviseRequest) (*Advice, error) {
	reply, model, tokens, err := p.complete(ctx, adviseSystemPrompt, BuildAdvisePrompt(req), req.Documents, req.Model, req.MaxTokens)
	if err != nil {
		return nil, err
	}
	return &Advice{Text: reply, Model: model, TokensUsed: tokens}, nil
}

// ExtractProducts reads an order/formulation document into a product
// inventory.
func (p *OpenAIProvider) ExtractProducts(ctx context.Context, req ExtractRequest) ([]ExtractedProduct, error) {
	reply, _, _, err := p.complete(ctx, extractSystemPrompt, BuildExtractPrompt(req), req.Documents, req.Model, req.MaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseExtractedProducts(reply)
}

func (p *OpenAIProvider) complete(ctx context.Context, system, prompt string, docs []Document, model string, maxTokens int) (reply, usedModel string, tokens int, err error) {
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	userMessage := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	parts := imageParts(docs)
	if len(parts) > 0 {
		userMessage.MultiContent = append([]openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
		}, parts...)
	} else {
		userMessage.Content = prompt
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			userMessage,
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", "", 0, fmt.Errorf("%s API error: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", "", 0, fmt.Errorf("no response from %s", p.name)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), model, resp.Usage.TotalTokens, nil
}

// imageParts converts image documents into vision message parts using
// base64 data URLs.
func imageParts(docs []Document) []openai.ChatMessagePart {
	var parts []openai.ChatMessagePart
	for _, d := range docs {
		if !strings.HasPrefix(d.MIME, "image/") {
			continue
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", d.MIME, base64.StdEncoding.EncodeToString(d.Data))
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return parts
}
