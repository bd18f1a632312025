package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

const validQuiz = `[
 {"id":1,"question":"Unit of resistance?","options":["Ohm","Volt","Amp","Watt"],"correctAnswer":0},
 {"id":2,"question":"V = ?","options":["IR","I/R","R/I","I+R"],"correctAnswer":0}
]`

func TestParseQuiz(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		items, err := ParseQuiz(validQuiz)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, model.QuizItem{ID: 1, Question: "Unit of resistance?", Options: []string{"Ohm", "Volt", "Amp", "Watt"}, CorrectAnswer: 0}, items[0])
	})

	t.Run("fenced json", func(t *testing.T) {
		items, err := ParseQuiz("```json\n" + validQuiz + "\n```")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("bare fence", func(t *testing.T) {
		items, err := ParseQuiz("```\n" + validQuiz + "\n```\n")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	cases := map[string]string{
		"prose":           "Here is your quiz!",
		"empty array":     "[]",
		"object":          `{"id":1}`,
		"three options":   `[{"id":1,"question":"q","options":["a","b","c"],"correctAnswer":0}]`,
		"index too high":  `[{"id":1,"question":"q","options":["a","b","c","d"],"correctAnswer":4}]`,
		"negative index":  `[{"id":1,"question":"q","options":["a","b","c","d"],"correctAnswer":-1}]`,
		"missing answer":  `[{"id":1,"question":"q","options":["a","b","c","d"]}]`,
		"missing id":      `[{"question":"q","options":["a","b","c","d"],"correctAnswer":1}]`,
		"blank question":  `[{"id":1,"question":" ","options":["a","b","c","d"],"correctAnswer":1}]`,
		"string answer":   `[{"id":1,"question":"q","options":["a","b","c","d"],"correctAnswer":"1"}]`,
		"truncated json":  `[{"id":1,"question":"q"`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuiz(input)
			assert.ErrorIs(t, err, apperr.ErrMalformedQuizOutput)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[1]", StripCodeFence("```json\n[1]\n```"))
	assert.Equal(t, "[1]", StripCodeFence("  [1]  "))
	assert.Equal(t, "[1]", StripCodeFence("```[1]```"))
}

func TestReplyFor(t *testing.T) {
	assert.Equal(t, ReplyQuotaExceeded, ReplyFor(fmt.Errorf("x: %w", apperr.ErrRateLimited)))
	assert.Equal(t, ReplyAccessDenied, ReplyFor(fmt.Errorf("x: %w", apperr.ErrAccessDenied)))
	assert.Equal(t, ReplyServiceError, ReplyFor(fmt.Errorf("x: %w", apperr.ErrModelError)))
	assert.Equal(t, ReplyServiceError, ReplyFor(fmt.Errorf("x: %w", apperr.ErrUpstreamUnavailable)))
	assert.Equal(t, ReplyCredentialMissing, ReplyFor(apperr.ErrCredentialMissing))
	assert.Empty(t, ReplyFor(nil))
}

func TestSynthesizerChat(t *testing.T) {
	gen := &fakeGenerator{reply: "  V = IR  "}
	s := NewSynthesizer(gen, nil, logger.NewNop())

	reply, err := s.Chat(context.Background(), []model.PromptPart{model.TextPart("q")})
	require.NoError(t, err)
	assert.Equal(t, "  V = IR  ", reply)
}

func TestSynthesizerChatHidesUpstreamText(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("gemini response status 429: quota for key AIza-secret: %w", apperr.ErrRateLimited)}
	s := NewSynthesizer(gen, nil, logger.NewNop())

	reply, err := s.Chat(context.Background(), []model.PromptPart{model.TextPart("q")})
	require.ErrorIs(t, err, apperr.ErrRateLimited)
	assert.Equal(t, ReplyQuotaExceeded, reply)
	assert.NotContains(t, reply, "AIza")
}

func TestSynthesizerQuizSingleAttempt(t *testing.T) {
	gen := &fakeGenerator{reply: "Sure! Here's a quiz."}
	s := NewSynthesizer(gen, nil, logger.NewNop())

	_, err := s.Quiz(context.Background(), []model.PromptPart{model.TextPart("q")})
	assert.ErrorIs(t, err, apperr.ErrMalformedQuizOutput)
	assert.Equal(t, 1, gen.calls)
}
