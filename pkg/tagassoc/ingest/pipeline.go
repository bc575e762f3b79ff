package ingest

import "github.com/cognicore/tagassoc/pkg/tagassoc/tags"

// Corpus is the ingested post collection: one tag-ID list per post plus the
// dictionary that owns the tag text and per-tag post counts.
type Corpus struct {
	Posts   [][]int
	Dict    *tags.Dictionary
	Skipped int // malformed input records that were not counted as posts
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{Dict: tags.NewDictionary()}
}

// PostCount returns the number of posts, including posts without tags.
func (c *Corpus) PostCount() int {
	return len(c.Posts)
}

// Pipeline turns raw tag strings into corpus posts.
type Pipeline struct {
	tokenizer *Tokenizer
	corpus    *Corpus
}

// NewPipeline creates a pipeline feeding a fresh corpus.
func NewPipeline(tokenizer *Tokenizer) *Pipeline {
	return &Pipeline{tokenizer: tokenizer, corpus: NewCorpus()}
}

// AddRaw tokenizes one post's tag string and records it.
func (p *Pipeline) AddRaw(raw string) {
	p.add(p.tokenizer.Tokenize(raw))
}

// AddTags records one post from an already split tag list.
func (p *Pipeline) AddTags(list []string) {
	p.add(p.tokenizer.Clean(list))
}

// Skip counts a record that could not be read.
func (p *Pipeline) Skip() {
	p.corpus.Skipped++
}

// Corpus returns the corpus built so far.
func (p *Pipeline) Corpus() *Corpus {
	return p.corpus
}

// add stores the IDs of a deduplicated tag list; each tag's post count
// grows by one.
func (p *Pipeline) add(list []string) {
	ids := make([]int, len(list))
	for i, tag := range list {
		ids[i] = p.corpus.Dict.Add(tag)
	}
	p.corpus.Posts = append(p.corpus.Posts, ids)
}
