package format

import (
	"encoding/json"

	"pgshell/cli/internal/sqlexec"
)

// JSONFormatter writes the whole result as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(res *sqlexec.Result) (string, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
