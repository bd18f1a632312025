package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

func newTestTutor(gen Generator, docs *fakeDocumentFetcher, pub ExchangePublisher) *TutorService {
	assembler := NewAssembler(docs, nil, AssemblerConfig{}, logger.NewNop())
	return NewTutorService(assembler, gen, pub, nil, logger.NewNop())
}

func TestTutorChat(t *testing.T) {
	gen := &fakeGenerator{reply: "A diode conducts one way."}
	docs := &fakeDocumentFetcher{body: []byte("diodes"), mediaType: "text/plain"}
	pub := &fakePublisher{}
	tutor := newTestTutor(gen, docs, pub)
	ref := model.DocumentRef{Title: "EC Notes", Subject: "Electronics", FileURL: "https://x/ec.txt"}

	reply, err := tutor.Chat(context.Background(), "  What is a diode? ", ref)
	require.NoError(t, err)
	assert.Equal(t, "A diode conducts one way.", reply)
	assert.Contains(t, gen.parts[0].Text, "diodes")
	assert.Contains(t, gen.parts[0].Text, "Student question:\n  What is a diode? \n")

	require.Len(t, pub.published, 1)
	assert.Equal(t, "  What is a diode? ", pub.published[0].Question)
	assert.Equal(t, "fake-model", pub.published[0].Model)
	assert.Equal(t, "EC Notes", pub.published[0].Title)
}

func TestTutorChatEmptyMessage(t *testing.T) {
	gen := &fakeGenerator{reply: "x"}
	tutor := newTestTutor(gen, &fakeDocumentFetcher{}, nil)

	reply, err := tutor.Chat(context.Background(), "   ", model.DocumentRef{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	assert.Equal(t, ReplyEmptyMessage, reply)
	assert.Zero(t, gen.calls)
}

func TestTutorWithoutCredentials(t *testing.T) {
	docs := &fakeDocumentFetcher{body: []byte("x"), mediaType: "text/plain"}
	tutor := newTestTutor(nil, docs, nil)
	ref := model.DocumentRef{FileURL: "https://x/a.txt"}

	assert.False(t, tutor.Configured())

	reply, err := tutor.Chat(context.Background(), "hello", ref)
	assert.ErrorIs(t, err, apperr.ErrCredentialMissing)
	assert.Equal(t, ReplyCredentialMissing, reply)

	_, err = tutor.Quiz(context.Background(), ref)
	assert.ErrorIs(t, err, apperr.ErrCredentialMissing)
	assert.Zero(t, docs.calls, "no network work before the credential check")
}

func TestTutorChatUpstreamFailureNotPublished(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("status 403: %w", apperr.ErrAccessDenied)}
	pub := &fakePublisher{}
	tutor := newTestTutor(gen, &fakeDocumentFetcher{}, pub)

	reply, err := tutor.Chat(context.Background(), "hello", model.DocumentRef{})
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
	assert.Equal(t, ReplyAccessDenied, reply)
	assert.Empty(t, pub.published)
}

func TestTutorChatPublishFailureIgnored(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	pub := &fakePublisher{err: errors.New("broker down")}
	tutor := newTestTutor(gen, &fakeDocumentFetcher{}, pub)

	reply, err := tutor.Chat(context.Background(), "hello", model.DocumentRef{})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestTutorQuiz(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + validQuiz + "\n```"}
	tutor := newTestTutor(gen, &fakeDocumentFetcher{}, nil)

	items, err := tutor.Quiz(context.Background(), model.DocumentRef{Subject: "Circuits"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Contains(t, gen.parts[0].Text, "Subject: Circuits")
}
