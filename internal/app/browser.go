package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"studyshelf/internal/cache"
	"studyshelf/internal/model"
	"studyshelf/internal/observability"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

type BrowserService struct {
	collections *Collections
	fetcher     ContentFetcher
	dirs        *cache.Snapshots[[]model.ChildDescriptor]
	metrics     *observability.Metrics
	log         *logger.Logger
	group       singleflight.Group
}

func NewBrowserService(
	collections *Collections,
	fetcher ContentFetcher,
	dirs *cache.Snapshots[[]model.ChildDescriptor],
	metrics *observability.Metrics,
	log *logger.Logger,
) *BrowserService {
	return &BrowserService{
		collections: collections,
		fetcher:     fetcher,
		dirs:        dirs,
		metrics:     metrics,
		log:         log.With("service", "browser"),
	}
}

// Browse lists the immediate children of path in a collection. Fresh
// listings come from the directory cache; anything else goes upstream and
// a failed fetch is reported, never papered over with a stale listing.
func (s *BrowserService) Browse(ctx context.Context, collectionID, path string) ([]model.ChildDescriptor, error) {
	col, ok := s.collections.Get(collectionID)
	if !ok {
		return nil, fmt.Errorf("browse %q: %w", collectionID, apperr.ErrInvalidCollection)
	}

	path = strings.TrimLeft(path, "/")
	key := collectionID + ":" + path

	snap, found, err := s.dirs.Lookup(ctx, key)
	if err != nil {
		s.log.Warn("directory cache lookup failed", "key", key, "error", err)
	}
	if found && snap.Fresh {
		s.metrics.CacheLookup("directory", "fresh")
		return snap.Value, nil
	}
	if found {
		s.metrics.CacheLookup("directory", "stale")
	} else {
		s.metrics.CacheLookup("directory", "miss")
	}

	children, err := coalesce(ctx, &s.group, key, func(fetchCtx context.Context) ([]model.ChildDescriptor, error) {
		children, err := s.fetcher.ListDirectory(fetchCtx, col, path)
		if err != nil {
			return nil, err
		}
		if children == nil {
			children = []model.ChildDescriptor{}
		}
		if err := s.dirs.Put(fetchCtx, key, children); err != nil {
			s.log.Warn("directory cache store failed", "key", key, "error", err)
		}
		return children, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("browse %s/%s: %w", collectionID, path, apperr.ErrPathNotFound)
		}
		s.metrics.RefreshFailed("directory", collectionID)
		s.log.Error("list directory failed", "collection", collectionID, "path", path, "error", err)
		if errors.Is(err, apperr.ErrUpstreamUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("browse %s/%s: %v: %w", collectionID, path, err, apperr.ErrUpstreamUnavailable)
	}
	return children, nil
}
