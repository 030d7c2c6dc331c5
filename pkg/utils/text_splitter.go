package utils

import "strings"

// SplitText splits text into windows of at most chunkSize characters where
// consecutive windows share overlap characters. Surrounding whitespace is
// trimmed first; text that fits in a single window is returned as-is.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	totalLen := len(runes)

	if chunkSize <= 0 || totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // overlap >= chunkSize would never advance
	}

	var chunks []string
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, string(runes[i:end]))

		if end == totalLen {
			break
		}
	}

	return chunks
}

// ChunkText cuts text into consecutive, non-overlapping pieces of size characters.
// Empty text yields no chunks.
func ChunkText(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}

// Truncate caps text at limit characters, appending marker when it had to cut.
func Truncate(text string, limit int, marker string) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + marker
}
