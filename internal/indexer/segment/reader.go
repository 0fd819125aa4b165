package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

// Reader holds a validated segment in memory.
type Reader struct {
	filePath string
	header   SegmentHeader
	postings []byte
	dict     []DictEntry
	docs     []DocEntry
}

// OpenReader reads and validates the segment at path. Corrupt or truncated
// files fail with ErrInvalidInput.
func OpenReader(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment file: %w", err)
	}
	r, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: segment %s: %v", apperrors.ErrInvalidInput, filepath.Base(path), err)
	}
	r.filePath = path
	return r, nil
}

func decode(data []byte) (*Reader, error) {
	if len(data) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("file too short (%d bytes)", len(data))
	}
	header := decodeHeader(data[:HeaderSize])
	if header.Magic != MagicBytes {
		return nil, fmt.Errorf("bad magic bytes %x", header.Magic)
	}
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", header.Version)
	}
	body := data[HeaderSize : len(data)-FooterSize]
	footer := data[len(data)-FooterSize:]
	if size := int64(binary.LittleEndian.Uint64(footer[16:24])); size != int64(len(body)) {
		return nil, fmt.Errorf("body size %d, footer says %d", len(body), size)
	}
	if header.PostSize+header.DictSize+header.DocsSize != int64(len(body)) ||
		header.DictOffset != int64(HeaderSize)+header.PostSize ||
		header.DocsOffset != header.DictOffset+header.DictSize {
		return nil, fmt.Errorf("inconsistent section offsets")
	}
	if sum := crc32.ChecksumIEEE(body); sum != binary.LittleEndian.Uint32(footer[0:4]) {
		return nil, fmt.Errorf("checksum mismatch")
	}

	r := &Reader{
		header:   header,
		postings: body[:header.PostSize],
	}
	dictStart := header.PostSize
	docsStart := dictStart + header.DictSize
	if err := json.Unmarshal(body[dictStart:docsStart], &r.dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	if err := json.Unmarshal(body[docsStart:], &r.docs); err != nil {
		return nil, fmt.Errorf("parsing document table: %w", err)
	}
	if len(r.dict) != int(header.TermCount) || len(r.docs) != int(header.DocCount) {
		return nil, fmt.Errorf("section counts do not match header")
	}
	for _, e := range r.dict {
		if e.PostOffset < 0 || e.PostLen <= 0 || e.PostOffset+int64(e.PostLen) > header.PostSize {
			return nil, fmt.Errorf("postings for %q out of bounds", e.Term)
		}
	}
	return r, nil
}

// Search returns the documents containing term, in ordinal order.
func (r *Reader) Search(term string) ([]string, error) {
	idx := sort.Search(len(r.dict), func(i int) bool {
		return r.dict[i].Term >= term
	})
	if idx >= len(r.dict) || r.dict[idx].Term != term {
		return nil, nil
	}
	list, err := r.postingList(r.dict[idx])
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(list))
	for i, ord := range list {
		ids[i] = r.docs[ord].ID
	}
	return ids, nil
}

func (r *Reader) postingList(e DictEntry) (index.PostingList, error) {
	list, err := decodePostings(r.postings[e.PostOffset:e.PostOffset+int64(e.PostLen)], len(r.docs))
	if err != nil {
		return nil, fmt.Errorf("%w: term %q: %v", apperrors.ErrInvalidInput, e.Term, err)
	}
	return list, nil
}

// Corpus rebuilds the snapshot. Each document's terms come back in
// ascending order.
func (r *Reader) Corpus() (*corpus.Corpus, error) {
	docs := make([]corpus.Document, len(r.docs))
	for i, d := range r.docs {
		docs[i] = corpus.Document{ID: d.ID, Links: d.Links}
	}
	for _, e := range r.dict {
		list, err := r.postingList(e)
		if err != nil {
			return nil, err
		}
		for _, ord := range list {
			docs[ord].Terms = append(docs[ord].Terms, e.Term)
		}
	}
	return corpus.FromDocuments(docs)
}

func (r *Reader) Terms() int {
	return len(r.dict)
}

func (r *Reader) DocCount() uint32 {
	return r.header.DocCount
}

func (r *Reader) CreatedAt() time.Time {
	return time.Unix(r.header.CreatedAt, 0)
}

func (r *Reader) Path() string {
	return r.filePath
}

// ReadFile loads the corpus stored at path.
func ReadFile(path string) (*corpus.Corpus, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	return r.Corpus()
}

// List returns the segment files in dir, oldest first. Segment names embed
// their creation time, so name order is age order.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading segment directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "seg_") || filepath.Ext(e.Name()) != FileExt {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Latest returns the newest segment in dir, or ErrDocumentNotFound when
// there is none.
func Latest(dir string) (string, error) {
	paths, err := List(dir)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("%w: no snapshot in %s", apperrors.ErrDocumentNotFound, dir)
	}
	return paths[len(paths)-1], nil
}
