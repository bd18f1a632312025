package app

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"studyshelf/internal/model"
	"studyshelf/internal/pkg/apperr"
	"studyshelf/internal/platform/logger"
)

type ResourceService struct {
	repo    ResourceRepository
	objects ObjectStore
	log     *logger.Logger
}

// NewResourceService accepts a nil object store; Create then fails and
// Delete only removes the record.
func NewResourceService(repo ResourceRepository, objects ObjectStore, log *logger.Logger) *ResourceService {
	return &ResourceService{
		repo:    repo,
		objects: objects,
		log:     log.With("service", "resource"),
	}
}

type CreateResourceInput struct {
	Title       string
	Description string
	Subject     string
	Year        string
	Branch      string
	Semester    string
	Category    string
	Filename    string
	ContentType string
	Data        []byte
	UploadedBy  uint
}

// List returns resources newest first. Branch "All" does not filter.
func (s *ResourceService) List(ctx context.Context, filter model.ResourceFilter) ([]model.Resource, error) {
	filter.Branch = strings.TrimSpace(filter.Branch)
	if strings.EqualFold(filter.Branch, "all") {
		filter.Branch = ""
	}
	filter.Year = strings.TrimSpace(filter.Year)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Subject = strings.TrimSpace(filter.Subject)
	return s.repo.List(ctx, filter)
}

func (s *ResourceService) Get(ctx context.Context, id uint) (*model.Resource, error) {
	resource, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if resource == nil {
		return nil, apperr.ErrResourceNotFound
	}
	return resource, nil
}

func (s *ResourceService) Create(ctx context.Context, input CreateResourceInput) (*model.Resource, error) {
	title := strings.TrimSpace(input.Title)
	subject := strings.TrimSpace(input.Subject)
	year := strings.TrimSpace(input.Year)
	branch := strings.TrimSpace(input.Branch)
	if title == "" || subject == "" || year == "" || branch == "" || len(input.Data) == 0 {
		return nil, apperr.ErrInvalidInput
	}
	if s.objects == nil {
		return nil, fmt.Errorf("create resource: %w", apperr.ErrUnsupportedObject)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(input.Filename)), ".")
	key := ObjectKey(branch, year, subject, uuid.NewString(), ext)

	contentType := input.ContentType
	if contentType == "" && ext != "" {
		contentType = mime.TypeByExtension("." + ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	publicURL, err := s.objects.Upload(ctx, key, bytes.NewReader(input.Data), contentType)
	if err != nil {
		return nil, fmt.Errorf("upload resource failed: %w", err)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = CategoryFor(input.Filename)
	}

	resource := &model.Resource{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Subject:     subject,
		Year:        year,
		Branch:      branch,
		Semester:    strings.TrimSpace(input.Semester),
		Category:    category,
		FileURL:     publicURL,
		ObjectKey:   key,
		FileType:    ext,
		UploadedBy:  input.UploadedBy,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			s.log.Warn("remove orphaned object failed", "key", key, "error", delErr)
		}
		return nil, err
	}
	return resource, nil
}

// Delete removes a resource owned by userID. The stored object is removed
// best-effort before the record.
func (s *ResourceService) Delete(ctx context.Context, id, userID uint) error {
	resource, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if resource.UploadedBy != userID {
		return apperr.ErrForbidden
	}

	if s.objects != nil && resource.ObjectKey != "" {
		if err := s.objects.Delete(ctx, resource.ObjectKey); err != nil {
			s.log.Warn("delete stored object failed", "resource_id", id, "key", resource.ObjectKey, "error", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}

var unsafeSegment = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectKey builds branch/year/subject/<name>.<ext> with every segment
// reduced to a safe character set.
func ObjectKey(branch, year, subject, name, ext string) string {
	key := strings.Join([]string{
		sanitizeSegment(branch),
		sanitizeSegment(year),
		sanitizeSegment(subject),
		sanitizeSegment(name),
	}, "/")
	if ext = sanitizeSegment(ext); ext != "" && ext != "_" {
		key += "." + ext
	}
	return key
}

func sanitizeSegment(s string) string {
	s = unsafeSegment.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, ".")
	if s == "" {
		return "_"
	}
	return s
}

var categoryRules = []struct {
	keywords []string
	category string
}{
	{[]string{"paper", "qp", "cie", "see"}, "Paper"},
	{[]string{"manual", "lab"}, "Lab Manual"},
	{[]string{"textbook", "handbook"}, "Reference Book"},
	{[]string{"assignment"}, "Assignment"},
	{[]string{"project"}, "Project"},
}

// CategoryFor guesses a resource category from its file name.
func CategoryFor(filename string) string {
	lower := strings.ToLower(filename)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category
			}
		}
	}
	return model.DefaultCategory
}
