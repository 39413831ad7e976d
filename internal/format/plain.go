package format

import (
	"strings"

	"pgshell/cli/internal/sqlexec"
)

// PlainFormatter writes a tab-separated header and rows with no decoration,
// which keeps output easy to pipe into cut or awk.
type PlainFormatter struct{}

func (f *PlainFormatter) Format(res *sqlexec.Result) (string, error) {
	if len(res.Columns) == 0 {
		return res.CommandTag, nil
	}

	var b strings.Builder
	b.WriteString(strings.Join(res.Columns, "\t"))
	for _, row := range res.Rows {
		b.WriteByte('\n')
		for i, v := range row {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(Value(v))
		}
	}
	return b.String(), nil
}
