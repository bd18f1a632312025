package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
	"studyshelf/internal/transport/http/middleware"
	"studyshelf/internal/transport/http/response"
)

type ResourceCatalogue interface {
	List(ctx context.Context, filter model.ResourceFilter) ([]model.Resource, error)
	Get(ctx context.Context, id uint) (*model.Resource, error)
	Delete(ctx context.Context, id, userID uint) error
}

type ResourceHandler struct {
	resources ResourceCatalogue
	log       *logger.Logger
}

func NewResourceHandler(resources ResourceCatalogue, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, log: log.With("handler", "resources")}
}

func (h *ResourceHandler) List(c *gin.Context) {
	filter := model.ResourceFilter{
		Branch:   c.Query("branch"),
		Year:     c.Query("year"),
		Category: c.Query("category"),
		Subject:  c.Query("subject"),
	}
	items, err := h.resources.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error("list resources failed", "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list resources failed")
		return
	}
	response.OK(c, items)
}

func (h *ResourceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.resources.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "get resource failed", err)
		return
	}
	response.OK(c, item)
}

func (h *ResourceHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.resources.Delete(c.Request.Context(), id, userID); err != nil {
		h.writeError(c, "delete resource failed", err)
		return
	}
	response.OK(c, gin.H{"id": id})
}

func (h *ResourceHandler) writeError(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, apperr.ErrResourceNotFound):
		response.Error(c, http.StatusNotFound, response.CodeResourceNotFound, "resource not found")
	case errors.Is(err, apperr.ErrForbidden):
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "only the uploader can delete this resource")
	default:
		h.log.Error(msg, "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, msg)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid resource id")
		return 0, false
	}
	return uint(id), true
}
