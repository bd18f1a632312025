package app

import (
	"context"
	"net/url"
	"path"
	"strings"

	"studyshelf/internal/cache"
	"studyshelf/internal/model"
	"studyshelf/internal/pkg/pdfextract"
	"studyshelf/internal/platform/logger"
)

const DefaultMaxContentChars = 20000

type AssemblerConfig struct {
	// Multimodal passes raw bytes to the model instead of extracted text.
	Multimodal      bool
	MaxContentChars int
}

// Assembler turns a document reference into prompt-ready content.
type Assembler struct {
	fetcher  DocumentFetcher
	contents *cache.ContentCache
	cfg      AssemblerConfig
	log      *logger.Logger
}

func NewAssembler(fetcher DocumentFetcher, contents *cache.ContentCache, cfg AssemblerConfig, log *logger.Logger) *Assembler {
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = DefaultMaxContentChars
	}
	return &Assembler{
		fetcher:  fetcher,
		contents: contents,
		cfg:      cfg,
		log:      log.With("service", "assembler"),
	}
}

// Assemble returns nil when the reference has no URL or the document cannot
// be fetched or read. Callers answer from metadata alone in that case.
func (a *Assembler) Assemble(ctx context.Context, ref model.DocumentRef) *model.ExtractedContent {
	rawURL := strings.TrimSpace(ref.FileURL)
	if rawURL == "" {
		return nil
	}

	key := cache.ContentKey(rawURL, a.cfg.Multimodal)
	if content, ok := a.contents.Get(key); ok {
		return content
	}

	body, mediaType, err := a.fetcher.FetchBytes(ctx, rawURL)
	if err != nil {
		a.log.Warn("fetch document failed", "url", rawURL, "error", err)
		return nil
	}

	content := a.extract(rawURL, body, mediaType)
	if content == nil {
		return nil
	}
	a.contents.Add(key, content)
	return content
}

func (a *Assembler) extract(rawURL string, body []byte, mediaType string) *model.ExtractedContent {
	if len(body) == 0 {
		return nil
	}

	if a.cfg.Multimodal {
		return &model.ExtractedContent{Data: body, MIMEType: mediaType}
	}

	var text string
	if isPDF(rawURL, mediaType) {
		extracted, err := pdfextract.ExtractBytes(body)
		if err != nil {
			a.log.Warn("extract pdf text failed", "url", rawURL, "error", err)
			return nil
		}
		text = extracted
	} else {
		text = strings.ToValidUTF8(string(body), "�")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	text, truncated := pdfextract.Truncate(text, a.cfg.MaxContentChars)
	return &model.ExtractedContent{Text: text, MIMEType: "text/plain", Truncated: truncated}
}

func isPDF(rawURL, mediaType string) bool {
	if mediaType == "application/pdf" {
		return true
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".pdf")
}
