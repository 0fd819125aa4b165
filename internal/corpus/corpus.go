// Package corpus defines the static snapshot the ranking and query core runs
// against: an ordered list of documents, each with its outgoing links and
// its extracted term bag. Document order is kept so that graph node order
// and postings order are reproducible between runs.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/graph"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

// Document is one crawled page as handed over by the crawler and text
// extraction collaborators.
type Document struct {
	ID    string   `json:"id" yaml:"id"`
	Links []string `json:"links,omitempty" yaml:"links,omitempty"`
	Terms []string `json:"terms,omitempty" yaml:"terms,omitempty"`
}

// Corpus is an ordered, de-duplicated set of documents. Terms are stored
// lower-cased, the same way queries are normalized.
type Corpus struct {
	docs  []Document
	index map[string]int
}

func New() *Corpus {
	return &Corpus{index: make(map[string]int)}
}

// FromDocuments builds a corpus in the given order, merging repeated ids.
func FromDocuments(docs []Document) (*Corpus, error) {
	c := New()
	for _, d := range docs {
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a document. A document id seen before has its links and terms
// appended to the existing entry instead.
func (c *Corpus) Add(d Document) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: document id is empty", apperrors.ErrInvalidInput)
	}
	d = normalized(d)
	if i, ok := c.index[d.ID]; ok {
		c.docs[i].Links = append(c.docs[i].Links, d.Links...)
		c.docs[i].Terms = append(c.docs[i].Terms, d.Terms...)
		return nil
	}
	c.index[d.ID] = len(c.docs)
	c.docs = append(c.docs, d)
	return nil
}

// Replace stores d, overwriting the links and terms of a document with the
// same id while keeping its position. Unknown ids are appended.
func (c *Corpus) Replace(d Document) error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: document id is empty", apperrors.ErrInvalidInput)
	}
	i, ok := c.index[d.ID]
	if !ok {
		return c.Add(d)
	}
	c.docs[i] = normalized(d)
	return nil
}

// normalized copies d with its terms lower-cased and blanks dropped.
func normalized(d Document) Document {
	out := Document{
		ID:    d.ID,
		Links: append([]string(nil), d.Links...),
	}
	if terms := tokenizer.Normalize(d.Terms); len(terms) > 0 {
		out.Terms = terms
	}
	return out
}

// Documents returns the documents in insertion order.
func (c *Corpus) Documents() []Document {
	return append([]Document(nil), c.docs...)
}

func (c *Corpus) Len() int { return len(c.docs) }

// Get looks up a document by id.
func (c *Corpus) Get(id string) (Document, bool) {
	i, ok := c.index[id]
	if !ok {
		return Document{}, false
	}
	return c.docs[i], true
}

// Fingerprint identifies the corpus contents: ids, links and terms in order.
// Equal corpora share a fingerprint.
func (c *Corpus) Fingerprint() string {
	h := sha256.New()
	for _, d := range c.docs {
		writeField(h, d.ID)
		for _, l := range d.Links {
			writeField(h, "l:"+l)
		}
		for _, t := range d.Terms {
			writeField(h, "t:"+t)
		}
		writeField(h, "")
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

func writeField(h hash.Hash, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

// RestrictLinks drops every link whose target is not a document of the
// corpus, matching a crawler that only follows links inside its seed set.
func (c *Corpus) RestrictLinks() {
	for i := range c.docs {
		kept := c.docs[i].Links[:0]
		for _, dst := range c.docs[i].Links {
			if _, ok := c.index[dst]; ok {
				kept = append(kept, dst)
			}
		}
		c.docs[i].Links = kept
	}
}

// Graph builds the document graph. Documents become nodes in corpus order;
// link targets outside the corpus are appended as dangling nodes.
func (c *Corpus) Graph() *graph.Graph {
	b := graph.NewBuilder()
	for _, d := range c.docs {
		b.AddNode(d.ID)
	}
	for _, d := range c.docs {
		b.AddLinks(d.ID, d.Links)
	}
	return b.Build()
}

// Index builds the inverted index from the term bags in corpus order.
func (c *Corpus) Index() *index.InvertedIndex {
	x := index.New()
	for _, d := range c.docs {
		x.AddDocument(d.ID, d.Terms)
	}
	return x
}

// LoadFile reads a corpus from a JSON or YAML file, chosen by extension.
// Both hold a list of documents.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	var docs []Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &docs)
	default:
		err = json.Unmarshal(data, &docs)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing corpus file %s: %v", apperrors.ErrInvalidInput, path, err)
	}
	return FromDocuments(docs)
}

// WriteFile stores the corpus as indented JSON.
func (c *Corpus) WriteFile(path string) error {
	data, err := json.MarshalIndent(c.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing corpus file %s: %w", path, err)
	}
	return nil
}
