package segment

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

func sampleCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c, err := corpus.FromDocuments([]corpus.Document{
		{ID: "https://a.example/", Links: []string{"https://b.example/", "https://x.example/"}, Terms: []string{"python", "language", "python"}},
		{ID: "https://b.example/", Links: []string{"https://a.example/"}, Terms: []string{"comedy", "python"}},
		{ID: "https://c.example/"},
	})
	require.NoError(t, err)
	return c
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := sampleCorpus(t)
	name, err := NewWriter(dir).Write(c)
	require.NoError(t, err)

	r, err := OpenReader(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), r.DocCount())
	assert.Equal(t, 3, r.Terms())
	assert.WithinDuration(t, time.Now(), r.CreatedAt(), 5*time.Second)

	ids, err := r.Search("python")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/", "https://b.example/"}, ids)
	ids, err = r.Search("missing")
	require.NoError(t, err)
	assert.Nil(t, ids)

	back, err := r.Corpus()
	require.NoError(t, err)
	want := []corpus.Document{
		{ID: "https://a.example/", Links: []string{"https://b.example/", "https://x.example/"}, Terms: []string{"language", "python"}},
		{ID: "https://b.example/", Links: []string{"https://a.example/"}, Terms: []string{"comedy", "python"}},
		{ID: "https://c.example/"},
	}
	assert.Equal(t, want, back.Documents())
	assert.Equal(t, c.Graph().Adjacency(), back.Graph().Adjacency())
}

func TestPostingsCodec(t *testing.T) {
	list := index.PostingList{0, 1, 5, 300, 70000}
	buf := encodePostings(nil, list)
	got, err := decodePostings(buf, 70001)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	_, err = decodePostings(buf, 300)
	assert.Error(t, err)
}

func TestPostingsRejectWrappingDelta(t *testing.T) {
	buf := binary.AppendUvarint(nil, 2)
	buf = binary.AppendUvarint(buf, 3)
	buf = binary.AppendUvarint(buf, math.MaxUint64-4)
	got, err := decodePostings(buf, 10)
	assert.Error(t, err)
	assert.Nil(t, got)

	buf = binary.AppendUvarint(nil, 1)
	buf = binary.AppendUvarint(buf, 10)
	_, err = decodePostings(buf, 10)
	assert.Error(t, err)
}

func TestCorruptionDetected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seg_1.spdx")
	require.NoError(t, WriteFile(path, sampleCorpus(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"flipped body byte", func(b []byte) []byte { b[HeaderSize+1] ^= 0xff; return b }},
		{"bad magic", func(b []byte) []byte { b[0] = 0; return b }},
		{"truncated", func(b []byte) []byte { return b[:len(b)-10] }},
		{"too short", func(b []byte) []byte { return b[:20] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := filepath.Join(dir, "bad.spdx")
			require.NoError(t, os.WriteFile(bad, tt.mutate(append([]byte(nil), data...)), 0o644))
			_, err := OpenReader(bad)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestEmptyCorpusRejected(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "seg_1.spdx"), corpus.New())
	assert.Error(t, err)
}

func TestListAndLatest(t *testing.T) {
	dir := t.TempDir()
	_, err := Latest(dir)
	assert.ErrorIs(t, err, apperrors.ErrDocumentNotFound)

	c := sampleCorpus(t)
	for _, name := range []string{"seg_100.spdx", "seg_300.spdx", "seg_200.spdx"} {
		require.NoError(t, WriteFile(filepath.Join(dir, name), c))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	paths, err := List(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
	latest, err := Latest(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "seg_300.spdx"), latest)

	back, err := ReadFile(latest)
	require.NoError(t, err)
	assert.Equal(t, 3, back.Len())
}

func TestListMissingDir(t *testing.T) {
	paths, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, paths)
}
