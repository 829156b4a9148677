package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gumruklab/gtip/internal/util"
)

// OllamaProvider runs against a local Ollama daemon. Multimodal models
// (llava, llama3.2-vision) receive datasheet pages through the images
// field of the generate API.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Images  []string      `json:"images,omitempty"` // base64-encoded
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`

	// Token counts (only present when done=true)
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second // local vision models are slow
	}

	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, ""),
			},
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if the daemon is reachable.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/api/tags", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (request creation): %v\n", err)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (connection to %s): %v\n", p.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (HTTP %d from %s)\n", resp.StatusCode, p.baseURL)
		return false
	}

	return true
}

// Classify sends the datasheet through the generate API and parses the
// structured reply.
func (p *OllamaProvider) Classify(ctx context.Context, req ClassifyRequest) (*Classification, error) {
	reply, model, tokens, err := p.generate(ctx, classifySystemPrompt, BuildClassifyPrompt(req), req.Documents, req.Model, req.MaxTokens)
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
func (p *OllamaProvider) Advise(ctx context.Context, req AdviseRequest) (*Advice, error) {
	reply, model, tokens, err := p.generate(ctx, adviseSystemPrompt, BuildAdvisePrompt(req), req.Documents, req.Model, req.MaxTokens)
	if err != nil {
		return nil, err
	}
	return &Advice{Text: reply, Model: model, TokensUsed: tokens}, nil
}

// ExtractProducts reads an order/formulation document into a product
// inventory.
func (p *OllamaProvider) ExtractProducts(ctx context.Context, req ExtractRequest) ([]ExtractedProduct, error) {
	reply, _, _, err := p.generate(ctx, extractSystemPrompt, BuildExtractPrompt(req), req.Documents, req.Model, req.MaxTokens)
	if err != nil {
		return nil, err
	}
	return ParseExtractedProducts(reply)
}

func (p *OllamaProvider) generate(ctx context.Context, system, prompt string, docs []Document, model string, maxTokens int) (reply, usedModel string, tokens int, err error) {
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		return "", "", 0, fmt.Errorf("ollama model must be specified (e.g., llava:13b, llama3.2-vision)")
	}

	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 2000
	}

	var images []string
	for _, d := range docs {
		if strings.HasPrefix(d.MIME, "image/") {
			images = append(images, base64.StdEncoding.EncodeToString(d.Data))
		}
	}

	apiReq := ollamaRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false, // Get complete response at once
		System: system,
		Images: images,
		Options: ollamaOptions{
			Temperature: 0.2,
			NumPredict:  maxTokens,
		},
	}

	resp, err := p.makeRequest(ctx, apiReq)
	if err != nil {
		return "", "", 0, fmt.Errorf("ollama API error: %w", err)
	}

	// Some models report zero counts; estimate from text length then.
	tokens = resp.PromptEvalCount + resp.EvalCount
	if tokens == 0 {
		tokens = (len(prompt) + len(resp.Response)) / 4
	}

	return strings.TrimSpace(resp.Response), resp.Model, tokens, nil
}

// makeRequest makes an HTTP request to the Ollama API
func (p *OllamaProvider) makeRequest(ctx context.Context, apiReq ollamaRequest) (*ollamaResponse, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}
