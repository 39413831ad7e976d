package format

import (
	"strings"

	"pgshell/cli/internal/sqlexec"

	"github.com/pterm/pterm"
)

// TableFormatter draws a boxed table with a header row and a row count footer.
// Results without columns (DDL, INSERT without RETURNING) show only the command tag.
type TableFormatter struct{}

func (f *TableFormatter) Format(res *sqlexec.Result) (string, error) {
	if len(res.Columns) == 0 {
		return footer(res), nil
	}

	data := make(pterm.TableData, 0, len(res.Rows)+1)
	data = append(data, res.Columns)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = Value(v)
		}
		data = append(data, cells)
	}

	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n" + footer(res), nil
}
