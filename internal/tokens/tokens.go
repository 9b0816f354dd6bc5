// Package tokens counts model tokens so documents can be sized against the
// embedding request budget.
package tokens

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// KindTiktoken selects exact BPE counting.
	KindTiktoken = "tiktoken"
	// KindApprox selects the offline character heuristic.
	KindApprox = "approx"

	fallbackEncoding = "cl100k_base"
	charsPerToken    = 4
)

// Counter reports how many tokens a model would see for text.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts tokens with the BPE encoding of an OpenAI model.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the encoding used by model, falling back to cl100k_base
// for models the library does not know. Loading may fetch the BPE ranks on
// first use; set TIKTOKEN_CACHE_DIR to keep them on disk.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(strings.TrimSpace(model))
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", fallbackEncoding, err)
		}
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of BPE tokens in text.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// Approx estimates roughly four characters per token, with every word
// counting at least once. It needs no encoding data.
type Approx struct{}

// Count returns the estimated token count for text.
func (Approx) Count(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, word := range words {
		n := (utf8.RuneCountInString(word) + charsPerToken - 1) / charsPerToken
		if n < 1 {
			n = 1
		}
		total += n
	}
	return total
}

// New returns the counter named by kind.
func New(kind, model string) (Counter, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindApprox:
		return Approx{}, nil
	case KindTiktoken, "":
		return NewTiktoken(model)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", kind)
	}
}
