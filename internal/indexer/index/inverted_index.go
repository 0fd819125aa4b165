// Package index implements the term -> documents inverted index queried by
// both evaluation strategies. Only membership is recorded: no term
// frequencies and no positions.
package index

import (
	"sort"
	"sync"
)

type InvertedIndex struct {
	mu       sync.RWMutex
	docs     []string
	docIndex map[string]int
	postings map[string]PostingList
	size     int64
}

func New() *InvertedIndex {
	return &InvertedIndex{
		docIndex: make(map[string]int),
		postings: make(map[string]PostingList),
	}
}

// AddDocument records that docID contains each of terms. Repeated terms in
// the bag collapse to one posting. Adding a known document again merges the
// new terms into its existing postings.
func (x *InvertedIndex) AddDocument(docID string, terms []string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	ord, exists := x.docIndex[docID]
	if !exists {
		ord = len(x.docs)
		x.docs = append(x.docs, docID)
		x.docIndex[docID] = ord
		x.size += int64(len(docID) + 16)
	}
	for _, term := range terms {
		if term == "" {
			continue
		}
		list := x.postings[term]
		pos, found := list.search(ord)
		if found {
			continue
		}
		if pos == len(list) {
			list = append(list, ord)
		} else {
			list = append(list, 0)
			copy(list[pos+1:], list[pos:])
			list[pos] = ord
		}
		if len(list) == 1 {
			x.size += int64(len(term) + 48)
		}
		x.postings[term] = list
		x.size += 8
	}
}

// Postings returns the documents containing term in insertion order, or nil
// for a term the index has never seen.
func (x *InvertedIndex) Postings(term string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	list, ok := x.postings[term]
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, ord := range list {
		out[i] = x.docs[ord]
	}
	return out
}

// PostingList returns the ordinals for term. The slice is shared with the
// index and must not be modified.
func (x *InvertedIndex) PostingList(term string) PostingList {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.postings[term]
}

// DocID maps an ordinal back to its document identifier.
func (x *InvertedIndex) DocID(ord int) string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.docs[ord]
}

// Documents returns every indexed document in insertion order.
func (x *InvertedIndex) Documents() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.docs...)
}

// Terms returns the distinct terms in ascending order.
func (x *InvertedIndex) Terms() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	terms := make([]string, 0, len(x.postings))
	for term := range x.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Snapshot copies the index into term-sorted entries.
func (x *InvertedIndex) Snapshot() []TermEntry {
	x.mu.RLock()
	defer x.mu.RUnlock()
	entries := make([]TermEntry, 0, len(x.postings))
	for term, list := range x.postings {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: append(PostingList(nil), list...),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// TermsOf returns the terms indexed for one document, ascending. It scans
// the whole dictionary and is meant for snapshot round trips, not queries.
func (x *InvertedIndex) TermsOf(docID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	ord, ok := x.docIndex[docID]
	if !ok {
		return nil
	}
	terms := make([]string, 0)
	for term, list := range x.postings {
		if _, found := list.search(ord); found {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms
}

func (x *InvertedIndex) DocCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

func (x *InvertedIndex) TermCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.postings)
}

// Size is a rough estimate of the index footprint in bytes.
func (x *InvertedIndex) Size() int64 {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.size
}
