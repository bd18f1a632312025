package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studyshelf/internal/model"
	"studyshelf/internal/observability"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

// TutorService answers questions about a document and writes quizzes for it.
type TutorService struct {
	assembler *Assembler
	synth     *Synthesizer
	modelName string
	publisher ExchangePublisher
	log       *logger.Logger
}

// NewTutorService accepts a nil generator: every request then fails fast
// with ErrCredentialMissing. publisher may be nil.
func NewTutorService(
	assembler *Assembler,
	generator Generator,
	publisher ExchangePublisher,
	metrics *observability.Metrics,
	log *logger.Logger,
) *TutorService {
	s := &TutorService{
		assembler: assembler,
		publisher: publisher,
		log:       log.With("service", "tutor"),
	}
	if generator != nil {
		s.synth = NewSynthesizer(generator, metrics, log)
		s.modelName = generator.Model()
	}
	return s
}

func (s *TutorService) Configured() bool {
	return s.synth != nil
}

// Chat always returns a renderable reply, also alongside an error.
func (s *TutorService) Chat(ctx context.Context, question string, ref model.DocumentRef) (string, error) {
	if strings.TrimSpace(question) == "" {
		return ReplyEmptyMessage, fmt.Errorf("empty question: %w", apperr.ErrInvalidInput)
	}
	if s.synth == nil {
		return ReplyCredentialMissing, apperr.ErrCredentialMissing
	}

	content := s.assembler.Assemble(ctx, ref)
	reply, err := s.synth.Chat(ctx, BuildChatPrompt(ref, content, question))
	if err != nil {
		return reply, err
	}

	s.record(ctx, ref, question, reply)
	return reply, nil
}

func (s *TutorService) Quiz(ctx context.Context, ref model.DocumentRef) ([]model.QuizItem, error) {
	if s.synth == nil {
		return nil, apperr.ErrCredentialMissing
	}
	content := s.assembler.Assemble(ctx, ref)
	return s.synth.Quiz(ctx, BuildQuizPrompt(ref, content))
}

func (s *TutorService) record(ctx context.Context, ref model.DocumentRef, question, reply string) {
	if s.publisher == nil {
		return
	}
	exchange := model.TutorExchange{
		Title:     ref.Title,
		Subject:   ref.Subject,
		Branch:    ref.Branch,
		FileURL:   ref.FileURL,
		Question:  question,
		Reply:     reply,
		Model:     s.modelName,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, exchange); err != nil {
		s.log.Warn("publish tutor exchange failed", "error", err)
	}
}
