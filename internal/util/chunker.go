package util

import "strings"

// ChunkWords splits text into consecutive chunks of at most chunkSize words.
// Chunks never overlap, order follows the text, and only the last chunk may
// be shorter. Joining the chunks with single spaces reproduces the input
// modulo whitespace. Empty text yields an empty slice.
func ChunkWords(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 300
	}
	words := strings.Fields(text)
	out := make([]string, 0, (len(words)+chunkSize-1)/chunkSize)
	for i := 0; i < len(words); i += chunkSize {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
	}
	return out
}
