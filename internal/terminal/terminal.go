// Package terminal provides small helpers around the controlling terminal:
// TTY detection, width, and clearing lines a prompt left behind.
package terminal

import (
	"fmt"
	"math"
	"os"

	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the width of stdout, or 80 when it is not a terminal.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// ClearPreviousLines clears textLength characters of prompt and input that
// were just entered, including the empty line left after Enter.
func ClearPreviousLines(textLength int) {
	totalLines := LinesFor(textLength, Width())

	linesToClear := totalLines + 1
	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K")
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A")
		}
	}
}

// LinesFor returns how many terminal rows textLength characters occupy at width.
func LinesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	lines := int(math.Ceil(float64(textLength) / float64(width)))
	return max(lines, 1)
}
