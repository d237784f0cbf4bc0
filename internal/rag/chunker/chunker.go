// Package chunker splits raw document text into overlapping fixed-size
// passages used as the unit of retrieval.
package chunker

import "fmt"

// Split cuts text into chunks of at most chunkSize runes, each chunk sharing
// its first overlap runes with the tail of the previous one. The tail chunk
// may be shorter. Overlap must be smaller than the chunk size, anything else
// would never terminate or only produce duplicates.
func Split(text string, chunkSize int, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be in [0, %d)", overlap, chunkSize)
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for start := 0; ; start += step {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
