package repl

// History keeps the entries dispatched in the current session, oldest first.
// Only lines the user typed are recorded; statements the shell issues on its
// own never pass through here.
type History struct {
	entries []string
	maxSize int
}

// NewHistory creates a history holding at most maxSize entries.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &History{maxSize: maxSize}
}

// Add appends an entry, dropping the oldest when full.
func (h *History) Add(entry string) {
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[1:]
	}
}

// Entries returns a copy of the recorded entries.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}
