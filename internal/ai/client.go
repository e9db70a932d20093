// Package ai generates study material, quizzes, stories, feedback and speech
// by calling the Gemini generateContent REST API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vocabtrainer/internal/models"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds the API settings
type Config struct {
	APIKey        string
	BaseURL       string
	FastModel     string
	AdvancedModel string
	SpeechModel   string
	SpeechVoice   string
	Timeout       time.Duration
}

// Client calls the generative-language API
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      RetryPolicy
	sleep      sleepFunc
}

// NewClient creates a client with the default retry policy
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.FastModel == "" {
		cfg.FastModel = "gemini-2.5-flash"
	}
	if cfg.AdvancedModel == "" {
		cfg.AdvancedModel = "gemini-2.5-pro"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	if cfg.SpeechVoice == "" {
		cfg.SpeechVoice = "Kore"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 90 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      DefaultRetryPolicy,
		sleep:      sleepContext,
	}
}

// WithRetry returns a copy of the client using policy
func (c *Client) WithRetry(policy RetryPolicy) *Client {
	clone := *c
	clone.retry = policy
	return &clone
}

// Model returns the model name serving a quality tier
func (c *Client) Model(quality string) string {
	if quality == models.QualityAdvanced {
		return c.cfg.AdvancedModel
	}
	return c.cfg.FastModel
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature        *float64       `json:"temperature,omitempty"`
	ResponseMimeType   string         `json:"responseMimeType,omitempty"`
	ResponseSchema     map[string]any `json:"responseSchema,omitempty"`
	ResponseModalities []string       `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig  `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig struct {
		PrebuiltVoiceConfig struct {
			VoiceName string `json:"voiceName"`
		} `json:"prebuiltVoiceConfig"`
	} `json:"voiceConfig"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// generate sends one request and returns the first candidate's parts
func (c *Client) generate(ctx context.Context, model string, reqBody generateRequest) ([]part, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, errPermanent)
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini blocked the prompt: %s: %w", genResp.PromptFeedback.BlockReason, errPermanent)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return genResp.Candidates[0].Content.Parts, nil
}

// generateText returns the concatenated text of the response
func (c *Client) generateText(ctx context.Context, model, prompt string, cfg *generationConfig) (string, error) {
	parts, err := c.generate(ctx, model, generateRequest{
		Contents:         []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: cfg,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return text, nil
}

// generateJSON asks for a JSON answer matching schema and decodes it into
// out, retrying per the client's policy. check validates the decoded value;
// a failed check is retried like a parse failure.
func (c *Client) generateJSON(ctx context.Context, op, model, prompt string, schema map[string]any, out any, check func() error) error {
	temperature := 0.7
	cfg := &generationConfig{
		Temperature:      &temperature,
		ResponseMimeType: "application/json",
		ResponseSchema:   schema,
	}

	return c.retry.run(ctx, c.sleep, op, func(ctx context.Context) error {
		text, err := c.generateText(ctx, model, prompt, cfg)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
			return fmt.Errorf("failed to parse JSON response: %w", err)
		}
		if check != nil {
			if err := check(); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	})
}

// stripFences removes a ```json fence some models wrap around JSON
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
