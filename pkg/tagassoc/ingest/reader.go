package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/tagassoc/pkg/tagassoc/internalerr"
)

// DefaultTagColumn is the CSV header naming the tag string column.
const DefaultTagColumn = "tag_string"

// Format names an input file layout.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ReadCSV reads posts from CSV with a header row. column selects the field
// holding the whitespace-separated tag string.
func ReadCSV(r io.Reader, column string, tok *Tokenizer) (*Corpus, error) {
	if column == "" {
		column = DefaultTagColumn
	}
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: missing header: %w", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("csv: no %q column: %w", column, internalerr.ErrInvalidInput)
	}

	p := NewPipeline(tok)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", p.Corpus().PostCount()+2, err)
		}
		p.AddRaw(rec[col])
	}
	return p.Corpus(), nil
}

// jsonPost is one JSONL record; either field may carry the tags.
type jsonPost struct {
	Tags      []string `json:"tags"`
	TagString string   `json:"tag_string"`
}

// ReadJSONL reads one JSON object per line. Blank lines are ignored and
// malformed lines are counted in Corpus.Skipped.
func ReadJSONL(r io.Reader, tok *Tokenizer) (*Corpus, error) {
	p := NewPipeline(tok)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var post jsonPost
		if err := json.Unmarshal([]byte(line), &post); err != nil {
			p.Skip()
			continue
		}
		if len(post.Tags) > 0 {
			p.AddTags(post.Tags)
		} else {
			p.AddRaw(post.TagString)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return p.Corpus(), nil
}

// LoadFile opens path and reads it in the given format.
func LoadFile(path string, format Format, column string, tok *Tokenizer) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var c *Corpus
	switch format {
	case FormatCSV, "":
		c, err = ReadCSV(f, column, tok)
	case FormatJSONL:
		c, err = ReadJSONL(f, tok)
	default:
		return nil, fmt.Errorf("format %q: %w", format, internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
