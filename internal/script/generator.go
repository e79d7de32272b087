// Package script wraps the text-generation provider that turns source content
// into a structured two-host dialogue script.
package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/logger"
	"github.com/book-expert/podcast-service/internal/core"
)

// API endpoint of the OpenAI-compatible provider.
const apiChatCompletions = "/v1/chat/completions"

// HTTP headers.
const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
)

// Completion budgets per request type.
const (
	scriptMaxCompletionTokens   = 4000
	analysisMaxCompletionTokens = 500
)

// Generator is an HTTP client for an OpenAI-compatible chat-completions
// endpoint. It owns prompt construction, response shape validation, and the
// mapping of provider failures to the typed pipeline errors.
type Generator struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	log        *logger.Logger
}

// NewGenerator creates a script generator for the provider at baseURL. The
// timeout applies to every request made by this client.
func NewGenerator(baseURL, model, apiKey string, timeout time.Duration, log *logger.Logger) *Generator {
	return &Generator{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		apiKey:     apiKey,
		log:        log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string         `json:"model"`
	Messages            []chatMessage  `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
	Temperature         float64        `json:"temperature"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateScript asks the provider for a structured dialogue script and
// validates its shape. Transport and provider failures map to
// core.ErrScriptGeneration; a malformed structured result maps to
// core.ErrScriptFormat. The adapter performs no retries.
func (g *Generator) GenerateScript(
	ctx context.Context,
	content string,
	settings core.GenerationSettings,
) (core.Script, error) {
	if len(content) < core.MinContentLength {
		return core.Script{}, fmt.Errorf("%w: got %d characters, need at least %d",
			core.ErrContentTooShort, len(content), core.MinContentLength)
	}

	raw, completeErr := g.complete(
		ctx,
		scriptSystemPrompt,
		buildScriptPrompt(content, settings),
		scriptMaxCompletionTokens,
	)
	if completeErr != nil {
		return core.Script{}, fmt.Errorf("%w: %w", core.ErrScriptGeneration, completeErr)
	}

	var generated core.Script

	unmarshalErr := json.Unmarshal(raw, &generated)
	if unmarshalErr != nil {
		return core.Script{}, fmt.Errorf("%w: %w", core.ErrScriptFormat, unmarshalErr)
	}

	validateErr := validateScript(generated)
	if validateErr != nil {
		return core.Script{}, validateErr
	}

	g.log.Info("Generated script with %d segments (estimated %d seconds)",
		len(generated.Segments), generated.EstimatedDuration)

	return generated, nil
}

// AnalyzeContent asks the provider for a title, summary, and key points for
// the submitted content.
func (g *Generator) AnalyzeContent(ctx context.Context, content string) (core.ContentAnalysis, error) {
	raw, completeErr := g.complete(
		ctx,
		analysisSystemPrompt,
		buildAnalysisPrompt(content),
		analysisMaxCompletionTokens,
	)
	if completeErr != nil {
		return core.ContentAnalysis{}, fmt.Errorf("%w: %w", core.ErrScriptGeneration, completeErr)
	}

	var analysis core.ContentAnalysis

	unmarshalErr := json.Unmarshal(raw, &analysis)
	if unmarshalErr != nil {
		return core.ContentAnalysis{}, fmt.Errorf("%w: %w", core.ErrScriptFormat, unmarshalErr)
	}

	return analysis, nil
}

// complete sends one chat-completion request and returns the raw message
// content of the first choice.
func (g *Generator) complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
) ([]byte, error) {
	request := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat:      responseFormat{Type: "json_object"},
		Temperature:         1.0,
		MaxCompletionTokens: maxTokens,
	}

	requestBody, marshalErr := json.Marshal(request)
	if marshalErr != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", marshalErr)
	}

	url := g.baseURL + apiChatCompletions

	httpReq, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if reqErr != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", reqErr)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAuthorization, "Bearer "+g.apiKey)

	resp, doErr := g.httpClient.Do(httpReq)
	if doErr != nil {
		return nil, fmt.Errorf("failed to reach script provider at %s: %w", g.baseURL, doErr)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseProviderError(resp)
	}

	var completion chatResponse

	decodeErr := json.NewDecoder(resp.Body).Decode(&completion)
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", decodeErr)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices")
	}

	return []byte(completion.Choices[0].Message.Content), nil
}

// parseProviderError attempts to decode a structured provider error, falling
// back to the raw body so diagnostics are never lost.
func parseProviderError(resp *http.Response) error {
	var provErr providerError

	decodeErr := json.NewDecoder(resp.Body).Decode(&provErr)
	if decodeErr == nil && provErr.Error.Message != "" {
		return fmt.Errorf("script provider error (%s): %s", resp.Status, provErr.Error.Message)
	}

	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf("script provider returned non-OK status: %s, body: %s", resp.Status, string(body))
}

// validateScript enforces the structured-result contract: a non-empty segment
// list where every segment carries a known speaker tag and non-empty text.
func validateScript(generated core.Script) error {
	if len(generated.Segments) == 0 {
		return fmt.Errorf("%w: segment list is empty", core.ErrScriptFormat)
	}

	for i, segment := range generated.Segments {
		if segment.Speaker != core.SpeakerMale && segment.Speaker != core.SpeakerFemale {
			return fmt.Errorf("%w: segment %d has unknown speaker %q",
				core.ErrScriptFormat, i, segment.Speaker)
		}

		if segment.Content == "" {
			return fmt.Errorf("%w: segment %d has empty content", core.ErrScriptFormat, i)
		}
	}

	return nil
}
