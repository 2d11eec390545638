// Package guidelines loads the annotation guideline document and splits it
// into overlapping word windows for prompt context.
package guidelines

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidChunking = errors.New("invalid chunking parameters")
	ErrNoText          = errors.New("no extractable text")
)

// Chunk splits text into windows of size words, each starting
// size-overlap words after the previous one. The last window may be short.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size < 1 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk_size=%d chunk_overlap=%d", ErrInvalidChunking, size, overlap)
	}
	words := strings.Fields(text)
	stride := size - overlap
	out := make([]string, 0, len(words)/stride+1)
	for start := 0; start < len(words); start += stride {
		end := min(start+size, len(words))
		out = append(out, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return out, nil
}
