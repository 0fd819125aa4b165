// Package segment stores a complete corpus snapshot in a single .spdx file
// and reads it back.
//
// Layout, all integers little endian:
//
//	header    64 bytes  magic, version, counts, creation time, section offsets
//	postings            per term: uvarint count, then uvarint ordinal deltas
//	dictionary          JSON []DictEntry, sorted by term
//	documents           JSON []DocEntry in ordinal order
//	footer    32 bytes  CRC32 of postings+dictionary+documents, counts, body size
//
// Document ordinals are positions in the documents section, so a snapshot
// rebuilds the corpus, graph and index in the order they were written.
package segment

import (
	"encoding/binary"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
)

const (
	// MagicBytes identifies a valid .spdx segment file ("SPDX").
	MagicBytes    uint32 = 0x53504458
	FormatVersion uint32 = 2
	HeaderSize    int    = 64
	FooterSize    int    = 32
	FileExt              = ".spdx"
)

// SegmentHeader is the 64-byte header written at the start of every segment.
type SegmentHeader struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	CreatedAt  int64
	PostSize   int64
	DictOffset int64
	DictSize   int64
	DocsOffset int64
	DocsSize   int64
}

// DictEntry maps a term to its postings offset and length relative to the
// start of the postings section.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// DocEntry is one row of the document table.
type DocEntry struct {
	ID    string   `json:"id"`
	Links []string `json:"links,omitempty"`
}

func (h SegmentHeader) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.TermCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.DocCount)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.CreatedAt))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.PostSize))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.DictOffset))
	binary.LittleEndian.PutUint64(buf[40:48], uint64(h.DictSize))
	binary.LittleEndian.PutUint64(buf[48:56], uint64(h.DocsOffset))
	binary.LittleEndian.PutUint64(buf[56:64], uint64(h.DocsSize))
	return buf
}

func decodeHeader(buf []byte) SegmentHeader {
	return SegmentHeader{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint32(buf[4:8]),
		TermCount:  binary.LittleEndian.Uint32(buf[8:12]),
		DocCount:   binary.LittleEndian.Uint32(buf[12:16]),
		CreatedAt:  int64(binary.LittleEndian.Uint64(buf[16:24])),
		PostSize:   int64(binary.LittleEndian.Uint64(buf[24:32])),
		DictOffset: int64(binary.LittleEndian.Uint64(buf[32:40])),
		DictSize:   int64(binary.LittleEndian.Uint64(buf[40:48])),
		DocsOffset: int64(binary.LittleEndian.Uint64(buf[48:56])),
		DocsSize:   int64(binary.LittleEndian.Uint64(buf[56:64])),
	}
}

// encodePostings appends the delta-coded list to dst.
func encodePostings(dst []byte, list index.PostingList) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(list)))
	prev := 0
	for _, ord := range list {
		dst = binary.AppendUvarint(dst, uint64(ord-prev))
		prev = ord
	}
	return dst
}

func decodePostings(buf []byte, docCount int) (index.PostingList, error) {
	n, k := binary.Uvarint(buf)
	if k <= 0 || n > uint64(docCount) {
		return nil, fmt.Errorf("corrupt postings length")
	}
	buf = buf[k:]
	list := make(index.PostingList, 0, n)
	prev := 0
	for i := uint64(0); i < n; i++ {
		d, k := binary.Uvarint(buf)
		if k <= 0 {
			return nil, fmt.Errorf("corrupt postings entry %d", i)
		}
		buf = buf[k:]
		if d >= uint64(docCount) || (i > 0 && d == 0) {
			return nil, fmt.Errorf("posting delta %d out of order or range", d)
		}
		ord := prev + int(d)
		if ord >= docCount {
			return nil, fmt.Errorf("posting ordinal %d out of range", ord)
		}
		list = append(list, ord)
		prev = ord
	}
	return list, nil
}
