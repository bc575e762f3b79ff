package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// Tokenizer splits a post's raw tag string into tags.
type Tokenizer struct {
	ignored   map[string]struct{}
	lowercase bool
}

// NewTokenizer creates a tokenizer that drops the given tags (meta tags such
// as "tagme" that carry no association signal).
func NewTokenizer(ignored []string) *Tokenizer {
	ign := make(map[string]struct{}, len(ignored))
	for _, tag := range ignored {
		ign[tag] = struct{}{}
	}
	return &Tokenizer{ignored: ign}
}

// SetLowercase folds tags to lower case before they are compared.
func (t *Tokenizer) SetLowercase(on bool) {
	t.lowercase = on
}

// Ignore adds a tag to the ignore list.
func (t *Tokenizer) Ignore(tag string) {
	t.ignored[tag] = struct{}{}
}

// Tokenize unescapes HTML entities (exports write "&amp;" for "&"), splits
// on whitespace and removes ignored tags. A tag repeated within the string
// is kept once, at its first position.
func (t *Tokenizer) Tokenize(raw string) []string {
	fields := strings.Fields(html.UnescapeString(raw))
	return t.Clean(fields)
}

// Clean applies case folding, the ignore list and per-post deduplication to
// an already split tag list.
func (t *Tokenizer) Clean(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if t.lowercase {
			tag = strings.ToLower(tag)
		}
		if tag == "" {
			continue
		}
		if _, ok := t.ignored[tag]; ok {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
