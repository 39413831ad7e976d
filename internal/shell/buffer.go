package shell

import (
	"strings"
)

// StatementBuffer groups input lines into dispatchable entries.
//
// A line starting with ':' on an empty buffer is a complete entry by itself.
// Anything else accumulates until a line ends with ';', and the accumulated
// lines, joined by newlines, form one entry.
type StatementBuffer struct {
	lines []string
}

// Add feeds one line. It returns the completed entry, if any.
func (b *StatementBuffer) Add(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(b.lines) == 0 {
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			return "", false
		}
		if strings.HasPrefix(trimmed, ":") {
			return trimmed, true
		}
	}

	b.lines = append(b.lines, strings.TrimRight(line, "\r\n"))
	if strings.HasSuffix(trimmed, ";") {
		return b.Flush()
	}
	return "", false
}

// Pending reports whether a partial statement is buffered.
func (b *StatementBuffer) Pending() bool {
	return len(b.lines) > 0
}

// Flush returns whatever is buffered as an entry and empties the buffer.
// It reports false when nothing but whitespace was buffered.
func (b *StatementBuffer) Flush() (string, bool) {
	entry := strings.TrimSpace(strings.Join(b.lines, "\n"))
	b.lines = b.lines[:0]
	return entry, entry != ""
}

// Reset drops any buffered input.
func (b *StatementBuffer) Reset() {
	b.lines = b.lines[:0]
}
