// Package chunker splits raw text into overlapping segments for embedding.
package chunker

import (
	"strings"

	"rag/types"
)

// DefaultChunkSize is the target chunk length in characters.
const DefaultChunkSize = 500

// DefaultOverlap is the number of characters shared by adjacent chunks.
const DefaultOverlap = 100

// Split cuts text into overlapping chunks of at most size characters.
//
// When more text follows a window, the window end snaps back to just past the
// last sentence terminator ('.') or newline, but only if that break point lies
// past the window's midpoint. Chunks are trimmed and empty ones dropped; the
// scan advances by size-overlap (less after a boundary snap). Characters are
// runes, so multi-byte text never splits inside a code point.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, types.ErrInvalidChunking
	}

	runes := []rune(strings.TrimSpace(text))
	n := len(runes)

	var chunks []string
	start := 0
	for start < n {
		end := start + size
		sliceEnd := end
		if end >= n {
			sliceEnd = n
		} else if bp := lastBreak(runes[start:end]); bp > size/2 {
			end = start + bp + 1
			sliceEnd = end
		}

		if chunk := strings.TrimSpace(string(runes[start:sliceEnd])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// end stays the unclipped window end so a short tail cannot
		// restart the scan. A boundary snap with a large overlap could
		// move the offset backwards; refuse to loop on it.
		next := end - overlap
		if next <= start {
			return nil, types.ErrInvalidChunking
		}
		start = next
	}

	return chunks, nil
}

// lastBreak returns the index of the last '.' or '\n' in window, or -1.
func lastBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
