package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
)

const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type GeminiConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClient calls the generateContent endpoint of the Generative Language API.
type GeminiClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   base + "/v1beta/models/" + url.PathEscape(cfg.Model) + ":generateContent",
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

func (c *GeminiClient) Model() string {
	return c.model
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends the parts as a single user turn and returns the
// concatenated text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, parts []model.PromptPart) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("empty prompt: %w", apperr.ErrInvalidInput)
	}

	content := geminiContent{Role: "user", Parts: make([]geminiPart, 0, len(parts))}
	for _, p := range parts {
		if p.IsInline() {
			content.Parts = append(content.Parts, geminiPart{InlineData: &geminiInlineData{
				MIMEType: p.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.Data),
			}})
			continue
		}
		content.Parts = append(content.Parts, geminiPart{Text: p.Text})
	}

	bodyBytes, err := json.Marshal(geminiRequest{Contents: []geminiContent{content}})
	if err != nil {
		return "", fmt.Errorf("marshal gemini request failed: %w", err)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse gemini url failed: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build gemini request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the request URL, which carries the key.
		return "", fmt.Errorf("gemini request failed: %w", apperr.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", statusError("gemini", resp)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse gemini json failed: %v: %w", err, apperr.ErrModelError)
	}
	if parsed.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked prompt: %s: %w", parsed.PromptFeedback.BlockReason, apperr.ErrModelError)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty gemini candidates: %w", apperr.ErrModelError)
	}

	var out strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		out.WriteString(p.Text)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text (finish reason %q): %w", parsed.Candidates[0].FinishReason, apperr.ErrModelError)
	}
	return out.String(), nil
}
