// Package tokens estimates token usage for completions when the Gemini CLI
// does not report counts itself. The default word-count estimator is a fixed
// heuristic; the tiktoken estimator is available for callers who want a real
// model encoding. Reported counts from the CLI always take precedence over
// either estimator.
package tokens

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Estimator approximates the token count of a text for a given model.
type Estimator interface {
	// Count returns the estimated token count of text. Implementations
	// never fail; a degenerate input estimates to zero.
	Count(model, text string) int
}

// WordCount estimates tokens from whitespace-delimited words. This is a
// heuristic, not a tokenizer: it assumes roughly four tokens per three
// words, which tracks English prose closely enough for accounting but must
// never be presented as exact.
type WordCount struct{}

// Count implements Estimator.
func (WordCount) Count(_ string, text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return words*4/3 + 1
}

// Tiktoken estimates tokens with a real BPE encoding. Gemini does not
// publish its tokenizer, so this uses tiktoken's cl100k_base as a stand-in;
// the result is still an estimate, just a tighter one than word counting.
type Tiktoken struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewTiktoken creates a Tiktoken estimator. The codec is loaded lazily on
// first use.
func NewTiktoken() *Tiktoken {
	return &Tiktoken{}
}

// Count implements Estimator, falling back to the word-count heuristic if
// the codec cannot be loaded.
func (t *Tiktoken) Count(model, text string) int {
	t.once.Do(func() {
		t.codec, t.err = tokenizer.Get(tokenizer.Cl100kBase)
	})
	if t.err != nil {
		return WordCount{}.Count(model, text)
	}
	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return WordCount{}.Count(model, text)
	}
	return len(ids)
}

// ForName returns the estimator selected by config: "tiktoken" or the
// default "words".
func ForName(name string) Estimator {
	if name == "tiktoken" {
		return NewTiktoken()
	}
	return WordCount{}
}
