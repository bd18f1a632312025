package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
)

type fakeContentFetcher struct {
	mu        sync.Mutex
	trees     map[string][]model.TreeEntry
	treeErrs  map[string]error
	dirs      map[string][]model.ChildDescriptor
	dirErr    error
	treeCalls map[string]int
	dirCalls  int

	// When gate is set, calls signal entered and then wait for gate to
	// close or for their ctx to end.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeContentFetcher() *fakeContentFetcher {
	return &fakeContentFetcher{
		trees:     map[string][]model.TreeEntry{},
		treeErrs:  map[string]error{},
		dirs:      map[string][]model.ChildDescriptor{},
		treeCalls: map[string]int{},
	}
}

func (f *fakeContentFetcher) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	f.entered <- struct{}{}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeContentFetcher) ListTree(ctx context.Context, col model.Collection) ([]model.TreeEntry, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.treeCalls[col.ID]++
	if err := f.treeErrs[col.ID]; err != nil {
		return nil, err
	}
	return f.trees[col.ID], nil
}

func (f *fakeContentFetcher) ListDirectory(ctx context.Context, col model.Collection, path string) ([]model.ChildDescriptor, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirCalls++
	if f.dirErr != nil {
		return nil, f.dirErr
	}
	children, ok := f.dirs[col.ID+":"+path]
	if !ok {
		return nil, fmt.Errorf("get contents failed: %w", apperr.ErrNotFound)
	}
	return children, nil
}

func (f *fakeContentFetcher) RawURL(col model.Collection, path string) string {
	return "https://raw.test/" + col.Owner + "/" + col.Repo + "/" + col.Branch + "/" + path
}

func (f *fakeContentFetcher) calls() (dir, tree int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.treeCalls {
		tree += c
	}
	return f.dirCalls, tree
}

func (f *fakeContentFetcher) totalTreeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.treeCalls {
		n += c
	}
	return n
}

type fakeDocumentFetcher struct {
	body      []byte
	mediaType string
	err       error
	calls     int
}

func (f *fakeDocumentFetcher) FetchBytes(context.Context, string) ([]byte, string, error) {
	f.calls++
	return f.body, f.mediaType, f.err
}

type fakeGenerator struct {
	reply string
	err   error
	calls int
	parts []model.PromptPart
}

func (g *fakeGenerator) Generate(_ context.Context, parts []model.PromptPart) (string, error) {
	g.calls++
	g.parts = parts
	return g.reply, g.err
}

func (g *fakeGenerator) Model() string { return "fake-model" }

type fakePublisher struct {
	published []model.TutorExchange
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, exchange model.TutorExchange) error {
	p.published = append(p.published, exchange)
	return p.err
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeResourceRepo struct {
	items   map[uint]*model.Resource
	nextID  uint
	filter  model.ResourceFilter
	deleted []uint
	err     error
}

func newFakeResourceRepo() *fakeResourceRepo {
	return &fakeResourceRepo{items: map[uint]*model.Resource{}, nextID: 1}
}

func (r *fakeResourceRepo) Create(_ context.Context, res *model.Resource) error {
	if r.err != nil {
		return r.err
	}
	res.ID = r.nextID
	r.nextID++
	r.items[res.ID] = res
	return nil
}

func (r *fakeResourceRepo) GetByID(_ context.Context, id uint) (*model.Resource, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.items[id], nil
}

func (r *fakeResourceRepo) List(_ context.Context, filter model.ResourceFilter) ([]model.Resource, error) {
	r.filter = filter
	var out []model.Resource
	for _, res := range r.items {
		out = append(out, *res)
	}
	return out, nil
}

func (r *fakeResourceRepo) Delete(_ context.Context, id uint) error {
	r.deleted = append(r.deleted, id)
	delete(r.items, id)
	return nil
}

type fakeObjectStore struct {
	uploads   map[string][]byte
	types     map[string]string
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeObjectStore) Upload(_ context.Context, key string, r io.Reader, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.uploads[key] = buf.Bytes()
	s.types[key] = contentType
	return "https://cdn.test/" + key, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.deleteErr
}
