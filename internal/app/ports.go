package app

import (
	"context"
	"io"

	"studyshelf/internal/model"
)

// ContentFetcher reads collection listings from the repository host.
type ContentFetcher interface {
	ListTree(ctx context.Context, col model.Collection) ([]model.TreeEntry, error)
	ListDirectory(ctx context.Context, col model.Collection, path string) ([]model.ChildDescriptor, error)
	RawURL(col model.Collection, path string) string
}

type DocumentFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, string, error)
}

// Generator is a generative model endpoint.
type Generator interface {
	Generate(ctx context.Context, parts []model.PromptPart) (string, error)
	Model() string
}

type ExchangePublisher interface {
	Publish(ctx context.Context, exchange model.TutorExchange) error
}

type ResourceRepository interface {
	Create(ctx context.Context, resource *model.Resource) error
	GetByID(ctx context.Context, id uint) (*model.Resource, error)
	List(ctx context.Context, filter model.ResourceFilter) ([]model.Resource, error)
	Delete(ctx context.Context, id uint) error
}

// ObjectStore holds uploaded file bytes and serves them at a public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
