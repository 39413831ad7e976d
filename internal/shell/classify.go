package shell

import (
	"strings"
	"unicode"
)

// Classify splits a raw input line into a candidate command name and its argument text.
//
// A line matches when, after optional leading whitespace, it holds a token with no
// embedded whitespace followed by the rest of the line. Trailing whitespace, including
// a final newline, is not part of the arguments. A line whose remainder continues onto
// another line does not match, so multi-line input is always statement text.
//
// Classify is purely syntactic; whether name is a known command is decided by the
// dispatcher.
func Classify(line string) (name, args string, ok bool) {
	body := strings.TrimRightFunc(strings.TrimLeftFunc(line, unicode.IsSpace), unicode.IsSpace)
	if body == "" {
		return "", "", false
	}
	if strings.ContainsAny(body, "\r\n") {
		return "", "", false
	}

	end := strings.IndexFunc(body, unicode.IsSpace)
	if end == -1 {
		return body, "", true
	}
	return body[:end], strings.TrimLeftFunc(body[end:], unicode.IsSpace), true
}
