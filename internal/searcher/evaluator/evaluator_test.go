package evaluator

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/minisearch/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/minisearch/pkg/errors"
)

func catDogIndex() *index.InvertedIndex {
	x := index.New()
	x.AddDocument("doc1", []string{"cat"})
	x.AddDocument("doc2", []string{"cat", "dog"})
	return x
}

func TestCatDog(t *testing.T) {
	want := []ranker.ScoredDoc{
		{DocID: "doc2", Score: 2},
		{DocID: "doc1", Score: 1},
	}
	x := catDogIndex()
	terms := []string{"cat", "dog"}
	assert.Equal(t, want, EvaluateDAAT(x, terms))
	assert.Equal(t, want, EvaluateTAAT(x, terms))
}

func TestUnknownTermContributesNothing(t *testing.T) {
	x := catDogIndex()
	want := EvaluateDAAT(x, []string{"cat", "dog"})
	assert.Equal(t, want, EvaluateDAAT(x, []string{"cat", "unicorn", "dog"}))
	assert.Equal(t, want, EvaluateTAAT(x, []string{"unicorn", "cat", "dog"}))
	assert.Empty(t, EvaluateDAAT(x, []string{"unicorn"}))
	assert.Empty(t, EvaluateTAAT(x, []string{"unicorn"}))
}

func TestEmptyQuery(t *testing.T) {
	x := catDogIndex()
	assert.Empty(t, EvaluateDAAT(x, nil))
	assert.Empty(t, EvaluateTAAT(x, nil))
}

func TestTiesBrokenByDocumentID(t *testing.T) {
	x := index.New()
	x.AddDocument("zeta", []string{"a"})
	x.AddDocument("alpha", []string{"a"})
	x.AddDocument("mid", []string{"a"})
	want := []ranker.ScoredDoc{
		{DocID: "alpha", Score: 1},
		{DocID: "mid", Score: 1},
		{DocID: "zeta", Score: 1},
	}
	assert.Equal(t, want, EvaluateDAAT(x, []string{"a"}))
	assert.Equal(t, want, EvaluateTAAT(x, []string{"a"}))
}

func randomIndex(rng *rand.Rand, docs, vocab int) *index.InvertedIndex {
	x := index.New()
	for d := 0; d < docs; d++ {
		var terms []string
		for k := rng.Intn(8); k > 0; k-- {
			terms = append(terms, fmt.Sprintf("t%d", rng.Intn(vocab)))
		}
		x.AddDocument(fmt.Sprintf("d%03d", rng.Intn(docs*2)), terms)
	}
	return x
}

func randomQuery(rng *rand.Rand, vocab int) []string {
	q := make([]string, rng.Intn(6))
	for i := range q {
		q[i] = fmt.Sprintf("t%d", rng.Intn(vocab+3))
	}
	return q
}

func TestDAATEqualsTAAT(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		x := randomIndex(rng, 40, 15)
		for j := 0; j < 10; j++ {
			q := randomQuery(rng, 15)
			daat := EvaluateDAAT(x, q)
			taat := EvaluateTAAT(x, q)
			require.Equal(t, daat, taat, "query %v", q)
		}
	}
}

func TestParallelTAATEqualsTAAT(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	x := randomIndex(rng, 100, 20)
	for j := 0; j < 20; j++ {
		q := randomQuery(rng, 20)
		for _, workers := range []int{0, 1, 2, 4, 16} {
			got, err := EvaluateParallelTAAT(context.Background(), x, q, workers)
			require.NoError(t, err)
			assert.Equal(t, EvaluateTAAT(x, q), got, "query %v workers %d", q, workers)
		}
	}
}

func TestParallelTAATCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := EvaluateParallelTAAT(ctx, catDogIndex(), []string{"cat", "dog"}, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, DAAT, s)
	s, err = ParseStrategy("TAAT")
	require.NoError(t, err)
	assert.Equal(t, TAAT, s)
	_, err = ParseStrategy("bm25")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestEvaluateDispatch(t *testing.T) {
	x := catDogIndex()
	for _, s := range []Strategy{DAAT, TAAT} {
		got, err := Evaluate(s, x, []string{"dog"})
		require.NoError(t, err)
		assert.Equal(t, []ranker.ScoredDoc{{DocID: "doc2", Score: 1}}, got)
	}
	_, err := Evaluate("other", x, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func benchIndex() (*index.InvertedIndex, []string) {
	rng := rand.New(rand.NewSource(1))
	x := index.New()
	for d := 0; d < 20000; d++ {
		terms := make([]string, 20)
		for k := range terms {
			terms[k] = fmt.Sprintf("t%d", rng.Intn(500))
		}
		x.AddDocument(fmt.Sprintf("doc-%05d", d), terms)
	}
	return x, []string{"t1", "t7", "t42", "t99", "t300"}
}

func BenchmarkDAAT(b *testing.B) {
	x, q := benchIndex()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EvaluateDAAT(x, q)
	}
}

func BenchmarkTAAT(b *testing.B) {
	x, q := benchIndex()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EvaluateTAAT(x, q)
	}
}
