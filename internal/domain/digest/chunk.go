package digest

import "strings"

// TruncationMarker terminates a line that had to be cut to fit the chunk
// budget on its own.
const TruncationMarker = "..."

// Pack greedily joins lines into chunks whose rune count stays within
// limit. A chunk boundary only ever falls between whole lines; a single
// line that cannot fit even alone is hard-truncated with TruncationMarker
// and emitted as its own chunk. Ordering is preserved across chunks.
func Pack(lines []string, limit int) []string {
	if limit < 1 {
		limit = 1
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range lines {
		lineLen := len([]rune(line))

		if lineLen > limit {
			// Over-long line: never corrupt a boundary, truncate instead.
			flush()
			chunks = append(chunks, truncate(line, limit))
			continue
		}

		need := lineLen
		if currentLen > 0 {
			need++ // joining newline
		}
		if currentLen+need > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteByte('\n')
			currentLen++
		}
		current.WriteString(line)
		currentLen += lineLen
	}
	flush()

	return chunks
}

func truncate(line string, limit int) string {
	runes := []rune(line)
	marker := []rune(TruncationMarker)
	if limit <= len(marker) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(marker)]) + TruncationMarker
}
