// Package chunker splits documents into pieces that fit an embedding token budget.
//
// Paragraphs (separated by a blank line) are packed greedily into chunks. A
// paragraph over budget is broken into sentences, and a sentence over budget
// into words. A final pass re-splits any chunk that is still over budget,
// which can happen when a counter is not additive across joined pieces.
package chunker

import (
	"regexp"
	"strings"

	"nexus/internal/tokens"
)

var sentenceBreak = regexp.MustCompile(`[.!?]+`)

type packer struct {
	maxTokens int
	chunks    []string
	current   []string
	length    int
}

// add appends piece to the open chunk, flushing it first when piece would
// push it past the budget.
func (p *packer) add(piece string, n int) {
	if p.length+n > p.maxTokens {
		p.flush()
		p.current = []string{piece}
		p.length = n
		return
	}
	p.current = append(p.current, piece)
	p.length += n
}

func (p *packer) flush() {
	if len(p.current) > 0 {
		p.chunks = append(p.chunks, strings.Join(p.current, " "))
	}
	p.current = nil
	p.length = 0
}

// Split returns the chunks of text. Every chunk holds at most maxTokens
// tokens unless a single word exceeds the budget on its own. A non-positive
// maxTokens disables splitting.
func Split(text string, maxTokens int, counter tokens.Counter) []string {
	if maxTokens <= 0 {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}
	if counter == nil {
		counter = tokens.Approx{}
	}

	p := &packer{maxTokens: maxTokens}
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraTokens := counter.Count(para)
		if paraTokens <= maxTokens {
			p.add(para, paraTokens)
			continue
		}
		for _, sentence := range sentenceBreak.Split(para, -1) {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			sentenceTokens := counter.Count(sentence)
			if sentenceTokens <= maxTokens {
				p.add(sentence, sentenceTokens)
				continue
			}
			p.chunks = append(p.chunks, splitWords(sentence, maxTokens, counter)...)
		}
	}
	p.flush()
	if len(p.chunks) == 0 {
		return nil
	}

	final := make([]string, 0, len(p.chunks))
	for _, chunk := range p.chunks {
		if counter.Count(chunk) > maxTokens {
			final = append(final, splitWords(chunk, maxTokens, counter)...)
			continue
		}
		final = append(final, chunk)
	}
	return final
}

func splitWords(text string, maxTokens int, counter tokens.Counter) []string {
	words := &packer{maxTokens: maxTokens}
	for _, word := range strings.Fields(text) {
		words.add(word, counter.Count(word))
	}
	words.flush()
	return words.chunks
}
