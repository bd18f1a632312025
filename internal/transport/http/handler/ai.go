package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"studyshelf/internal/app"
	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
	"studyshelf/internal/transport/http/response"
)

type Tutor interface {
	Configured() bool
	Chat(ctx context.Context, question string, ref model.DocumentRef) (string, error)
	Quiz(ctx context.Context, ref model.DocumentRef) ([]model.QuizItem, error)
}

type AIHandler struct {
	tutor Tutor
	log   *logger.Logger
}

func NewAIHandler(tutor Tutor, log *logger.Logger) *AIHandler {
	return &AIHandler{tutor: tutor, log: log.With("handler", "ai")}
}

type chatRequest struct {
	Message string            `json:"message"`
	Context model.DocumentRef `json:"context"`
}

type quizRequest struct {
	Context model.DocumentRef `json:"context"`
}

func (h *AIHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Reply(c, http.StatusBadRequest, app.ReplyInvalidRequest)
		return
	}

	reply, err := h.tutor.Chat(c.Request.Context(), req.Message, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			response.Reply(c, http.StatusBadRequest, reply)
		case errors.Is(err, apperr.ErrCredentialMissing):
			response.Reply(c, http.StatusOK, reply)
		default:
			h.log.Error("chat failed", "error", err)
			response.Reply(c, http.StatusInternalServerError, reply)
		}
		return
	}
	response.Reply(c, http.StatusOK, reply)
}

func (h *AIHandler) Quiz(c *gin.Context) {
	if !h.tutor.Configured() {
		response.Fail(c, http.StatusServiceUnavailable, app.QuizCredentialMissing)
		return
	}

	var req quizRequest
	// An empty or missing body still yields a generic quiz.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	quiz, err := h.tutor.Quiz(c.Request.Context(), req.Context)
	if err != nil {
		if errors.Is(err, apperr.ErrCredentialMissing) {
			response.Fail(c, http.StatusServiceUnavailable, app.QuizCredentialMissing)
			return
		}
		h.log.Error("quiz failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, app.QuizServiceError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": quiz})
}
