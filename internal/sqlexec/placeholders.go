package sqlexec

import "strings"

// Placeholders returns the distinct @name placeholders in sql, in order of first
// appearance. It follows the rules pgx.NamedArgs rewrites by: names start with an
// ASCII letter or '_' and continue with letters, digits or '_', and placeholders
// inside string literals, quoted identifiers and comments are ignored.
func Placeholders(sql string) []string {
	var names []string
	seen := make(map[string]bool)

	for i := 0; i < len(sql); i++ {
		switch c := sql[i]; {
		case (c == 'e' || c == 'E') && next(sql, i) == '\'':
			i = skipQuoted(sql, i+2, '\'', true)
		case c == '\'':
			i = skipQuoted(sql, i+1, '\'', false)
		case c == '"':
			i = skipQuoted(sql, i+1, '"', false)
		case c == '-' && next(sql, i) == '-':
			if end := strings.IndexAny(sql[i:], "\n\r"); end >= 0 {
				i += end
			} else {
				i = len(sql)
			}
		case c == '/' && next(sql, i) == '*':
			i = skipBlockComment(sql, i+2)
		case c == '@' && isNameStart(next(sql, i)):
			j := i + 1
			for j < len(sql) && isNameByte(sql[j]) {
				j++
			}
			if name := sql[i+1 : j]; !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i = j - 1
		}
	}
	return names
}

func next(s string, i int) byte {
	if i+1 < len(s) {
		return s[i+1]
	}
	return 0
}

// skipQuoted returns the index of the closing quote at or after i. A doubled quote
// is part of the literal; with backslash set, '\' escapes the next byte.
func skipQuoted(s string, i int, quote byte, backslash bool) int {
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if backslash {
				i++
			}
		case quote:
			if next(s, i) != quote {
				return i
			}
			i++
		}
	}
	return len(s)
}

// skipBlockComment returns the index of the '/' closing the comment opened before i.
// Block comments nest.
func skipBlockComment(s string, i int) int {
	depth := 1
	for ; i < len(s); i++ {
		switch {
		case s[i] == '/' && next(s, i) == '*':
			depth++
			i++
		case s[i] == '*' && next(s, i) == '/':
			depth--
			i++
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}
