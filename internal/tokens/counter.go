// Package tokens estimates prompt sizes in tokens for logging and
// diagnostics. Counts are indicative: local models do not share a tokenizer,
// so a general-purpose BPE encoding is used, with a character-based estimate
// as fallback.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// charsPerToken is the average characters per token used by the fallback
// estimator.
const charsPerToken = 4.0

// Counter counts prompt tokens. Safe for concurrent use.
type Counter struct {
	once  sync.Once
	codec tokenizer.Codec
}

// NewCounter creates a token counter. The tokenizer codec is loaded lazily on
// first use.
func NewCounter() *Counter {
	return &Counter{}
}

// Count returns the token count for text and whether the count is an
// estimate. When the tokenizer is unavailable it falls back to a
// character-based estimate.
func (c *Counter) Count(text string) (count int, estimated bool) {
	c.once.Do(func() {
		// cl100k_base is a reasonable general-purpose encoding for
		// size reporting across model families.
		codec, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			c.codec = codec
		}
	})

	if c.codec != nil {
		if ids, _, err := c.codec.Encode(text); err == nil {
			return len(ids), false
		}
	}

	return int(float64(len(text)) / charsPerToken), true
}
