package segment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"time"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
)

// Writer serialises corpus snapshots into new .spdx segment files.
type Writer struct {
	dataDir string
}

// NewWriter creates a Writer that writes segments into the given directory.
func NewWriter(dataDir string) *Writer {
	return &Writer{dataDir: dataDir}
}

// Write atomically creates a new segment file for c and returns its name.
func (w *Writer) Write(c *corpus.Corpus) (string, error) {
	if err := os.MkdirAll(w.dataDir, 0755); err != nil {
		return "", fmt.Errorf("creating segment directory: %w", err)
	}
	segmentName := fmt.Sprintf("seg_%d%s", time.Now().UnixNano(), FileExt)
	if err := WriteFile(filepath.Join(w.dataDir, segmentName), c); err != nil {
		return "", err
	}
	return segmentName, nil
}

// WriteFile writes c to path. It writes to a .tmp file first and renames on
// success, so readers never observe a partial segment.
func WriteFile(path string, c *corpus.Corpus) error {
	if c.Len() == 0 {
		return fmt.Errorf("cannot write empty segment")
	}
	data, err := encode(c, time.Now())
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp segment file: %w", err)
	}
	defer os.Remove(tmpPath)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing segment: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming segment file: %w", err)
	}
	return nil
}

func encode(c *corpus.Corpus, now time.Time) ([]byte, error) {
	entries := c.Index().Snapshot()

	var postings []byte
	dict := make([]DictEntry, 0, len(entries))
	for _, entry := range entries {
		offset := len(postings)
		postings = encodePostings(postings, entry.Postings)
		dict = append(dict, DictEntry{
			Term:       entry.Term,
			PostOffset: int64(offset),
			PostLen:    len(postings) - offset,
			DocFreq:    len(entry.Postings),
		})
	}
	dictData, err := json.Marshal(dict)
	if err != nil {
		return nil, fmt.Errorf("marshaling dictionary: %w", err)
	}

	docs := c.Documents()
	table := make([]DocEntry, len(docs))
	for i, d := range docs {
		table[i] = DocEntry{ID: d.ID, Links: d.Links}
	}
	docsData, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("marshaling document table: %w", err)
	}

	header := SegmentHeader{
		Magic:      MagicBytes,
		Version:    FormatVersion,
		TermCount:  uint32(len(dict)),
		DocCount:   uint32(len(docs)),
		CreatedAt:  now.Unix(),
		PostSize:   int64(len(postings)),
		DictOffset: int64(HeaderSize + len(postings)),
		DictSize:   int64(len(dictData)),
		DocsOffset: int64(HeaderSize + len(postings) + len(dictData)),
		DocsSize:   int64(len(docsData)),
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(postings) + len(dictData) + len(docsData) + FooterSize)
	buf.Write(header.encode())
	crc := crc32.NewIEEE()
	for _, section := range [][]byte{postings, dictData, docsData} {
		buf.Write(section)
		crc.Write(section)
	}

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], crc.Sum32())
	binary.LittleEndian.PutUint32(footer[4:8], header.DocCount)
	binary.LittleEndian.PutUint32(footer[8:12], header.TermCount)
	binary.LittleEndian.PutUint64(footer[16:24], uint64(buf.Len()-HeaderSize))
	binary.LittleEndian.PutUint64(footer[24:32], uint64(header.CreatedAt))
	buf.Write(footer)
	return buf.Bytes(), nil
}
