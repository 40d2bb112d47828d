package parser

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dgallion1/personadoc/internal/doctree"
)

// Cache memoizes extraction results keyed by content hash, so the same
// bytes uploaded under any name are parsed once.
type Cache struct {
	cache *gocache.Cache
}

// NewCache creates an extraction cache. Zero durations use a one hour TTL
// and a ten minute cleanup interval.
func NewCache(ttl, cleanup time.Duration) *Cache {
	if ttl == 0 {
		ttl = time.Hour
	}
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}
	return &Cache{cache: gocache.New(ttl, cleanup)}
}

// Extract parses data as filename, reusing a cached result when the same
// content with the same format was seen before. The returned document is
// a copy identified by filename.
func (c *Cache) Extract(data []byte, filename string) (*doctree.Document, error) {
	key := strings.ToLower(filepath.Ext(filename)) + ":" + ContentHashHex(data)
	if v, found := c.cache.Get(key); found {
		if e, ok := v.(entry); ok {
			return e.document(filename), nil
		}
	}

	doc, err := Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	e := entry{pages: make([]string, len(doc.Pages))}
	if doc.Title != baseTitle(filename) {
		e.title = doc.Title
	}
	for i, p := range doc.Pages {
		e.pages[i] = p.Text
	}
	c.cache.Set(key, e, gocache.DefaultExpiration)
	return e.document(filename), nil
}

// Len returns the number of cached entries, expired ones included until
// the next cleanup.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

// entry is the cached form of a parsed document. An empty title means the
// title comes from the filename.
type entry struct {
	title string
	pages []string
}

func (e entry) document(filename string) *doctree.Document {
	doc := &doctree.Document{ID: filename, Title: e.title}
	if doc.Title == "" {
		doc.Title = baseTitle(filename)
	}
	for i, text := range e.pages {
		doc.Pages = append(doc.Pages, doctree.Page{DocumentID: filename, Number: i + 1, Text: text})
	}
	return doc
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
