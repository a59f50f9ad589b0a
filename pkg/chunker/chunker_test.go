package chunker

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitFixed(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    []string
	}{
		{
			name: "no overlap",
			text: "abcdefghijklmnopqrstuvwxyz",
			size: 10,
			want: []string{"abcdefghij", "klmnopqrst", "uvwxyz"},
		},
		{
			name:    "with overlap",
			text:    "abcdefghijklmnopqrstuvwxyz",
			size:    10,
			overlap: 3,
			want:    []string{"abcdefghij", "hijklmnopq", "opqrstuvwx", "uvwxyz"},
		},
		{
			name: "text shorter than chunk size",
			text: " short ",
			size: 100,
			want: []string{" short "},
		},
		{
			name: "empty input",
			text: "",
			size: 10,
			want: nil,
		},
		{
			name: "whitespace only input",
			text: "   \n\t  ",
			size: 3,
			want: nil,
		},
		{
			name:    "exact multiple of stride",
			text:    "aabbcc",
			size:    2,
			overlap: 0,
			want:    []string{"aa", "bb", "cc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitFixed(tt.text, tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("SplitFixed() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitFixed() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitFixedRejectsInvalidOverlap(t *testing.T) {
	if _, err := SplitFixed("abcdef", 4, 4); err == nil {
		t.Error("expected error for overlap == size")
	}
	if _, err := SplitFixed("abcdef", 4, 7); err == nil {
		t.Error("expected error for overlap > size")
	}
	if _, err := SplitFixed("abcdef", 0, 0); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := SplitFixed("abcdef", 4, -1); err == nil {
		t.Error("expected error for negative overlap")
	}
}

func TestSplitFixedOverlapProperty(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog and keeps running"
	size, overlap := 12, 5

	chunks, err := SplitFixed(text, size, overlap)
	if err != nil {
		t.Fatalf("SplitFixed() error = %v", err)
	}
	for i, c := range chunks {
		if len(c) > size {
			t.Errorf("chunk %d longer than size: %q", i, c)
		}
	}
	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i][len(chunks[i])-overlap:]
		head := chunks[i+1][:overlap]
		if tail != head {
			t.Errorf("chunks %d/%d overlap mismatch: %q vs %q", i, i+1, tail, head)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{
			name:     "one chunk per sentence when the limit forces flushes",
			text:     "First sentence. Second sentence! Third sentence?",
			maxChars: 16,
			want: []string{
				"First sentence.",
				"Second sentence!",
				"Third sentence?",
			},
		},
		{
			name:     "sentences packed under a large limit",
			text:     "First sentence. Second sentence! Third sentence?",
			maxChars: 1000,
			want:     []string{"First sentence. Second sentence! Third sentence?"},
		},
		{
			name:     "no terminators returns whole trimmed text",
			text:     "  just a fragment without punctuation  ",
			maxChars: 10,
			want:     []string{"just a fragment without punctuation"},
		},
		{
			name:     "empty input",
			text:     "",
			maxChars: 100,
			want:     nil,
		},
		{
			name:     "whitespace only input",
			text:     " \n\t ",
			maxChars: 100,
			want:     nil,
		},
		{
			name:     "terminator not followed by whitespace stays inside a sentence",
			text:     "Version 1.2 shipped today. It works!",
			maxChars: 27,
			want:     []string{"Version 1.2 shipped today.", "It works!"},
		},
		{
			name:     "single oversized sentence forms its own group",
			text:     "Short one. This sentence is far longer than the limit allows. Tail!",
			maxChars: 12,
			want: []string{
				"Short one.",
				"This sentence is far longer than the limit allows.",
				"Tail!",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text, tt.maxChars)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitSentencesNeverLosesText(t *testing.T) {
	text := "Alpha beta. Gamma delta! Epsilon? Zeta eta theta. Iota."
	chunks := SplitSentences(text, 20)

	joined := strings.Join(chunks, " ")
	for _, sentence := range []string{"Alpha beta.", "Gamma delta!", "Epsilon?", "Zeta eta theta.", "Iota."} {
		if !strings.Contains(joined, sentence) {
			t.Errorf("sentence %q missing from output %q", sentence, joined)
		}
	}
}
