package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyshelf/internal/model"
	"studyshelf/internal/observability"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

// User-facing replies. Upstream error text never reaches the client.
const (
	ReplyQuotaExceeded     = "The AI tutor has hit its usage limit for now. Please try again in a little while."
	ReplyAccessDenied      = "The AI tutor is not allowed to use the AI service at the moment. Please let the site administrators know."
	ReplyServiceError      = "Sorry, the AI tutor ran into a problem while answering. Please try again."
	ReplyCredentialMissing = "The AI tutor isn't set up yet, so I can't answer questions right now. Please check back later."
	ReplyEmptyMessage      = "Please type a question so I can help."
	ReplyInvalidRequest    = "Sorry, I couldn't read that request. Please refresh the page and try again."

	QuizServiceError      = "Failed to generate a quiz. Please try again."
	QuizCredentialMissing = "AI quiz generation is not configured."
)

// ReplyFor maps a synthesis error onto the fixed reply vocabulary.
func ReplyFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperr.ErrCredentialMissing):
		return ReplyCredentialMissing
	case errors.Is(err, apperr.ErrRateLimited):
		return ReplyQuotaExceeded
	case errors.Is(err, apperr.ErrAccessDenied):
		return ReplyAccessDenied
	case errors.Is(err, apperr.ErrInvalidInput):
		return ReplyEmptyMessage
	default:
		return ReplyServiceError
	}
}

type Synthesizer struct {
	generator Generator
	metrics   *observability.Metrics
	log       *logger.Logger
}

func NewSynthesizer(generator Generator, metrics *observability.Metrics, log *logger.Logger) *Synthesizer {
	return &Synthesizer{
		generator: generator,
		metrics:   metrics,
		log:       log.With("service", "synthesizer"),
	}
}

// Chat returns the model's text verbatim. On failure the returned reply is
// the user-facing message for the error's category.
func (s *Synthesizer) Chat(ctx context.Context, parts []model.PromptPart) (string, error) {
	start := time.Now()
	text, err := s.generator.Generate(ctx, parts)
	if err != nil {
		s.metrics.AIRequest("chat", outcome(err), time.Since(start))
		s.log.Error("chat generation failed", "model", s.generator.Model(), "error", err)
		return ReplyFor(err), err
	}
	s.metrics.AIRequest("chat", "ok", time.Since(start))
	return text, nil
}

// Quiz generates once and parses the result. Malformed output is logged
// with the offending text and not retried.
func (s *Synthesizer) Quiz(ctx context.Context, parts []model.PromptPart) ([]model.QuizItem, error) {
	start := time.Now()
	text, err := s.generator.Generate(ctx, parts)
	if err != nil {
		s.metrics.AIRequest("quiz", outcome(err), time.Since(start))
		s.log.Error("quiz generation failed", "model", s.generator.Model(), "error", err)
		return nil, err
	}

	items, err := ParseQuiz(text)
	if err != nil {
		s.metrics.AIRequest("quiz", "malformed", time.Since(start))
		s.log.Warn("quiz output rejected", "model", s.generator.Model(), "error", err, "raw", text)
		return nil, err
	}
	s.metrics.AIRequest("quiz", "ok", time.Since(start))
	return items, nil
}

type rawQuizItem struct {
	ID            *int     `json:"id"`
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correctAnswer"`
}

// ParseQuiz accepts a JSON array of quiz items, optionally wrapped in a
// markdown code fence.
func ParseQuiz(text string) ([]model.QuizItem, error) {
	body := StripCodeFence(text)

	var raw []rawQuizItem
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode quiz json: %v: %w", err, apperr.ErrMalformedQuizOutput)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("quiz is empty: %w", apperr.ErrMalformedQuizOutput)
	}

	items := make([]model.QuizItem, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.ID == nil || r.Question == nil || r.Options == nil || r.CorrectAnswer == nil:
			return nil, fmt.Errorf("quiz item %d misses a required field: %w", i, apperr.ErrMalformedQuizOutput)
		case strings.TrimSpace(*r.Question) == "":
			return nil, fmt.Errorf("quiz item %d has an empty question: %w", i, apperr.ErrMalformedQuizOutput)
		case len(r.Options) != QuizOptionCount:
			return nil, fmt.Errorf("quiz item %d has %d options: %w", i, len(r.Options), apperr.ErrMalformedQuizOutput)
		case *r.CorrectAnswer < 0 || *r.CorrectAnswer >= QuizOptionCount:
			return nil, fmt.Errorf("quiz item %d answer index %d out of range: %w", i, *r.CorrectAnswer, apperr.ErrMalformedQuizOutput)
		}
		items = append(items, model.QuizItem{
			ID:            *r.ID,
			Question:      *r.Question,
			Options:       r.Options,
			CorrectAnswer: *r.CorrectAnswer,
		})
	}
	return items, nil
}

// StripCodeFence removes a leading ``` or ```json line and a trailing ```.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, apperr.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, apperr.ErrModelError):
		return "model_error"
	default:
		return "upstream_error"
	}
}
