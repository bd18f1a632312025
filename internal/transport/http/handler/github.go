package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
	"studyshelf/internal/transport/http/response"
)

type Browser interface {
	Browse(ctx context.Context, collectionID, path string) ([]model.ChildDescriptor, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

type GitHubHandler struct {
	browser       Browser
	searcher      Searcher
	collectionIDs []string
	log           *logger.Logger
}

func NewGitHubHandler(browser Browser, searcher Searcher, collectionIDs []string, log *logger.Logger) *GitHubHandler {
	return &GitHubHandler{
		browser:       browser,
		searcher:      searcher,
		collectionIDs: collectionIDs,
		log:           log.With("handler", "github"),
	}
}

// Search never fails: collections that cannot be read are left out.
func (h *GitHubHandler) Search(c *gin.Context) {
	results := h.searcher.Search(c.Request.Context(), c.Query("q"))
	if results == nil {
		results = []model.SearchResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *GitHubHandler) Browse(c *gin.Context) {
	collectionID := c.Param("collectionId")
	path := strings.TrimPrefix(c.Param("path"), "/")

	children, err := h.browser.Browse(c.Request.Context(), collectionID, path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidCollection):
			response.Msg(c, http.StatusBadRequest, "Invalid collection. Available collections: "+strings.Join(h.collectionIDs, ", "))
		case errors.Is(err, apperr.ErrPathNotFound):
			response.Msg(c, http.StatusNotFound, "Path not found in repository")
		default:
			h.log.Error("browse failed", "collection", collectionID, "path", path, "error", err)
			response.Msg(c, http.StatusInternalServerError, "Failed to fetch data from GitHub")
		}
		return
	}
	c.JSON(http.StatusOK, children)
}
