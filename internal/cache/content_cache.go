package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"studyshelf/internal/model"
)

// ContentCache remembers extracted document content by (url, mode). A nil
// *ContentCache is valid and caches nothing.
type ContentCache struct {
	lru *expirable.LRU[string, *model.ExtractedContent]
}

// NewContentCache returns nil when size is not positive.
func NewContentCache(size int, ttl time.Duration) *ContentCache {
	if size <= 0 {
		return nil
	}
	return &ContentCache{lru: expirable.NewLRU[string, *model.ExtractedContent](size, nil, ttl)}
}

func ContentKey(url string, multimodal bool) string {
	if multimodal {
		return "bin:" + url
	}
	return "txt:" + url
}

func (c *ContentCache) Get(key string) (*model.ExtractedContent, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *ContentCache) Add(key string, content *model.ExtractedContent) {
	if c == nil || content == nil {
		return
	}
	c.lru.Add(key, content)
}
