package internal

import (
	"log"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Chunker splits text into sentence-aligned chunks. Size and overlap
// are measured in tokens when the tiktoken encoding loads, in words
// otherwise.
type Chunker struct {
	size    int
	overlap int
	enc     *tiktoken.Tiktoken
}

func NewChunker(size, overlap int) *Chunker {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		log.Printf("[CHUNKER] tiktoken encoding unavailable, falling back to word counts: %v", err)
		enc = nil
	}
	return &Chunker{
		size:    size,
		overlap: overlap,
		enc:     enc,
	}
}

func (c *Chunker) length(s string) int {
	if c.enc != nil {
		return len(c.enc.Encode(s, nil, nil))
	}
	return len(strings.Fields(s))
}

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+`)

func splitSentences(text string) []string {
	// collapse whitespace first so offsets stay simple
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var out []string
	last := 0
	for _, m := range sentenceRe.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[m[0]:m[1]])
		if s != "" {
			out = append(out, s)
		}
		last = m[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Split walks sentences into chunks of at most size, carrying roughly
// overlap worth of trailing sentences into the next chunk. A sentence
// longer than size becomes its own chunk.
func (c *Chunker) Split(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	i := 0
	for i < len(sentences) {
		var current []string
		total := 0
		j := i
		for j < len(sentences) {
			n := c.length(sentences[j])
			if total > 0 && total+n > c.size {
				break
			}
			current = append(current, sentences[j])
			total += n
			j++
		}

		chunks = append(chunks, strings.Join(current, " "))
		if j >= len(sentences) {
			break
		}

		// back up over trailing sentences until the overlap budget is
		// covered, but always make forward progress
		back := j
		carried := 0
		for back > i+1 && carried < c.overlap {
			if carried+c.length(sentences[back-1]) > c.overlap {
				break
			}
			back--
			carried += c.length(sentences[back])
		}
		i = back
	}
	return chunks
}
