// Package chunker splits raw document text into spans suitable for
// embedding and graph extraction. Both split functions are pure; they gate
// the cost of every downstream model call.
package chunker

import (
	"fmt"
	"strings"
)

// SplitFixed produces ordered spans of at most chunkSize characters starting
// at stride chunkSize-chunkOverlap. The final span may be shorter. Spans that
// are empty or whitespace-only are dropped. Text shorter than chunkSize is
// returned verbatim as a single span.
func SplitFixed(text string, chunkSize, chunkOverlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", chunkOverlap, chunkSize)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	stride := chunkSize - chunkOverlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := min(start+chunkSize, len(runes))
		span := string(runes[start:end])
		if strings.TrimSpace(span) != "" {
			chunks = append(chunks, span)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}

// SplitSentences segments text at '.', '!' or '?' followed by whitespace or
// end of string, then greedily packs consecutive sentences into groups of at
// most maxCharsPerChunk characters. A group is flushed before a sentence
// that would push it over the limit, so a single oversized sentence still
// forms its own group. Text without terminators is returned as one chunk;
// empty or whitespace-only input yields no chunks.
func SplitSentences(text string, maxCharsPerChunk int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	sentences := splitIntoSentences(trimmed)
	if len(sentences) == 0 {
		return []string{trimmed}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxCharsPerChunk {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func isTerminator(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func splitIntoSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminator(text[i]) {
			continue
		}
		if i+1 < len(text) && !isSpace(text[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(text[start : i+1])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if len(sentences) == 0 {
		return nil
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
