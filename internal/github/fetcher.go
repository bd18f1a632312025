package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRawBaseURL = "https://raw.githubusercontent.com"
)

type Options struct {
	Token             string
	BaseURL           string
	RawBaseURL        string
	RequestsPerSecond float64
	Timeout           time.Duration
	// HTTPClient replaces the oauth2 client. Token is ignored when set.
	HTTPClient *http.Client
	Logger     *logger.Logger
}

// Fetcher reads repository trees and directory listings from the GitHub
// content API. It holds no cache of its own.
type Fetcher struct {
	gh         *gh.Client
	limiter    *rate.Limiter
	rawBaseURL string
	log        *logger.Logger
}

func NewFetcher(opts Options) (*Fetcher, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		if opts.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		} else {
			httpClient = &http.Client{}
		}
		httpClient.Timeout = timeout
	}

	client := gh.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url failed: %w", err)
		}
		client.BaseURL = u
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	rawBase := strings.TrimRight(opts.RawBaseURL, "/")
	if rawBase == "" {
		rawBase = DefaultRawBaseURL
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Fetcher{
		gh:         client,
		limiter:    rate.NewLimiter(limit, 1),
		rawBaseURL: rawBase,
		log:        log.With("component", "github"),
	}, nil
}

// ListTree returns every entry of the collection's default branch, in the
// order the API reports them. Blobs map to files, trees to directories;
// submodules are dropped.
func (f *Fetcher) ListTree(ctx context.Context, col model.Collection) ([]model.TreeEntry, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	tree, _, err := f.gh.Git.GetTree(ctx, col.Owner, col.Repo, col.Branch, true)
	if err != nil {
		return nil, wrapError(err, "get tree")
	}
	// The recursive listing is capped upstream; search then covers only
	// part of the repository.
	if tree.GetTruncated() {
		f.log.Warn("repository tree truncated by upstream",
			"collection", col.ID, "owner", col.Owner, "repo", col.Repo, "entries", len(tree.Entries))
	}

	entries := make([]model.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		var kind string
		switch e.GetType() {
		case "blob":
			kind = model.KindFile
		case "tree":
			kind = model.KindDir
		default:
			continue
		}
		entries = append(entries, model.TreeEntry{
			Path: e.GetPath(),
			Kind: kind,
			Size: int64(e.GetSize()),
		})
	}
	return entries, nil
}

// ListDirectory returns the immediate children of path ("" is the root).
// A path naming a single file yields a one-element listing.
func (f *Fetcher) ListDirectory(ctx context.Context, col model.Collection, path string) ([]model.ChildDescriptor, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: col.Branch}
	file, dir, _, err := f.gh.Repositories.GetContents(ctx, col.Owner, col.Repo, path, opts)
	if err != nil {
		return nil, wrapError(err, "get contents")
	}

	if file != nil {
		return []model.ChildDescriptor{toDescriptor(file)}, nil
	}
	children := make([]model.ChildDescriptor, 0, len(dir))
	for _, item := range dir {
		children = append(children, toDescriptor(item))
	}
	return children, nil
}

// RawURL is the direct download address of a file in the collection.
func (f *Fetcher) RawURL(col model.Collection, path string) string {
	return RawURL(f.rawBaseURL, col, path)
}

func RawURL(base string, col model.Collection, path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", base, col.Owner, col.Repo, col.Branch, strings.Join(segments, "/"))
}

func toDescriptor(item *gh.RepositoryContent) model.ChildDescriptor {
	d := model.ChildDescriptor{
		Name:        item.GetName(),
		Kind:        item.GetType(),
		Path:        item.GetPath(),
		DownloadURL: item.DownloadURL,
	}
	if item.Size != nil {
		size := int64(*item.Size)
		d.Size = &size
	}
	return d
}

func wrapError(err error, operation string) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		if ghErr.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s failed: %w", operation, apperr.ErrNotFound)
		}
		return fmt.Errorf("%s failed with status %d: %w", operation, ghErr.Response.StatusCode, apperr.ErrUpstreamUnavailable)
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s failed: %w: %w", operation, apperr.ErrRateLimited, apperr.ErrUpstreamUnavailable)
	}

	return fmt.Errorf("%s failed: %v: %w", operation, err, apperr.ErrUpstreamUnavailable)
}
