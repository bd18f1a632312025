package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
)

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type OpenAICompatibleClient struct {
	httpClient *http.Client
	cfg        ChatConfig
}

func NewOpenAICompatibleClient(cfg ChatConfig) *OpenAICompatibleClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OpenAICompatibleClient{
		httpClient: &http.Client{Timeout: timeout},
		cfg:        cfg,
	}
}

func (c *OpenAICompatibleClient) Model() string {
	return c.cfg.Model
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
	File     *filePart     `json:"file,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

// Generate sends the parts as one user message of the chat completions API.
// Inline images travel as data URLs, other inline documents as file parts.
func (c *OpenAICompatibleClient) Generate(ctx context.Context, parts []model.PromptPart) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("empty prompt: %w", apperr.ErrInvalidInput)
	}

	msg := chatMessage{Role: "user", Content: make([]contentPart, 0, len(parts))}
	for _, p := range parts {
		if !p.IsInline() {
			msg.Content = append(msg.Content, contentPart{Type: "text", Text: p.Text})
			continue
		}
		dataURL := "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
		if strings.HasPrefix(p.MIMEType, "image/") {
			msg.Content = append(msg.Content, contentPart{Type: "image_url", ImageURL: &imageURLPart{URL: dataURL}})
		} else {
			msg.Content = append(msg.Content, contentPart{Type: "file", File: &filePart{Filename: "document", FileData: dataURL}})
		}
	}

	reqBody := map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": []chatMessage{msg},
		"stream":   false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %v: %w", err, apperr.ErrUpstreamUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", statusError("llm", resp)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %v: %w", err, apperr.ErrModelError)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices: %w", apperr.ErrModelError)
	}
	return parsed.Choices[0].Message.Content, nil
}
