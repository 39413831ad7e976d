package format

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"pgshell/cli/internal/sqlexec"
)

// NullText is how table and plain output show SQL NULL.
const NullText = "NULL"

// Value renders a single decoded column value as text.
func Value(v any) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte, [16]byte:
		return fmt.Sprint(sqlexec.JSONValue(val))
	case fmt.Stringer:
		return val.String()
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return fmt.Sprint(val)
		}
		return Value(dv)
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}
