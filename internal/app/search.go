package app

import (
	"context"
	"path"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"studyshelf/internal/cache"
	"studyshelf/internal/model"
	"studyshelf/internal/observability"
	"studyshelf/internal/platform/logger"
)

const MinQueryLength = 2

type SearchService struct {
	collections *Collections
	fetcher     ContentFetcher
	trees       *cache.Snapshots[[]model.TreeEntry]
	metrics     *observability.Metrics
	log         *logger.Logger
	group       singleflight.Group
}

func NewSearchService(
	collections *Collections,
	fetcher ContentFetcher,
	trees *cache.Snapshots[[]model.TreeEntry],
	metrics *observability.Metrics,
	log *logger.Logger,
) *SearchService {
	return &SearchService{
		collections: collections,
		fetcher:     fetcher,
		trees:       trees,
		metrics:     metrics,
		log:         log.With("service", "search"),
	}
}

// Search matches query against file paths of every collection. Results keep
// collection order, then tree order. A collection whose tree cannot be
// loaded contributes nothing; Search itself never fails.
func (s *SearchService) Search(ctx context.Context, query string) []model.SearchResult {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []model.SearchResult{}
	}
	needle := strings.ToLower(query)

	cols := s.collections.All()
	perCollection := make([][]model.SearchResult, len(cols))

	var g errgroup.Group
	for i, col := range cols {
		g.Go(func() error {
			entries, ok := s.treeFor(ctx, col)
			if ok {
				perCollection[i] = s.match(col, entries, needle)
			}
			return nil
		})
	}
	_ = g.Wait()

	results := []model.SearchResult{}
	for _, matches := range perCollection {
		results = append(results, matches...)
	}
	return results
}

func (s *SearchService) treeFor(ctx context.Context, col model.Collection) ([]model.TreeEntry, bool) {
	snap, found, err := s.trees.Lookup(ctx, col.ID)
	if err != nil {
		s.log.Warn("tree cache lookup failed", "collection", col.ID, "error", err)
	}
	if found && snap.Fresh {
		s.metrics.CacheLookup("tree", "fresh")
		return snap.Value, true
	}

	entries, err := coalesce(ctx, &s.group, col.ID, func(fetchCtx context.Context) ([]model.TreeEntry, error) {
		entries, err := s.fetcher.ListTree(fetchCtx, col)
		if err != nil {
			return nil, err
		}
		if err := s.trees.Put(fetchCtx, col.ID, entries); err != nil {
			s.log.Warn("tree cache store failed", "collection", col.ID, "error", err)
		}
		return entries, nil
	})
	if err == nil {
		s.metrics.CacheLookup("tree", "refreshed")
		return entries, true
	}
	if ctx.Err() != nil {
		return nil, false
	}

	s.metrics.RefreshFailed("tree", col.ID)
	if found {
		s.log.Warn("tree refresh failed, serving stale snapshot",
			"collection", col.ID, "fetched_at", snap.FetchedAt, "error", err)
		s.metrics.CacheLookup("tree", "stale")
		return snap.Value, true
	}
	s.log.Warn("tree refresh failed, skipping collection", "collection", col.ID, "error", err)
	return nil, false
}

func (s *SearchService) match(col model.Collection, entries []model.TreeEntry, needle string) []model.SearchResult {
	var out []model.SearchResult
	for _, e := range entries {
		if e.Kind != model.KindFile || !strings.Contains(strings.ToLower(e.Path), needle) {
			continue
		}
		out = append(out, model.SearchResult{
			Name:           path.Base(e.Path),
			Path:           e.Path,
			Kind:           model.KindFile,
			DownloadURL:    s.fetcher.RawURL(col, e.Path),
			CollectionID:   col.ID,
			CollectionName: col.Name,
		})
	}
	return out
}
