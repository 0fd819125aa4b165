package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"punctuation", "Python, the language!", []string{"python", "the", "language"}},
		{"cyrillic", "Питон — язык программирования", []string{"питон", "язык", "программирования"}},
		{"digits kept", "HTTP/2 in 2015", []string{"http", "2", "in", "2015"}},
		{"repeats kept", "cat cat", []string{"cat", "cat"}},
		{"empty", "  ...  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestBag(t *testing.T) {
	assert.Equal(t, []string{"dog", "cat"}, Bag("Dog cat DOG cat"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"cat", "dog"}, Normalize([]string{" Cat", "", "DOG "}))
}

func BenchmarkTokenize(b *testing.B) {
	text := "The distributed search platform indexes documents, ranks pages and answers queries over an inverted index."
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Tokenize(text)
	}
}
