package format

import (
	"strings"

	"pgshell/cli/internal/sqlexec"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter writes rows as a YAML sequence of mappings.
// Keys keep the column order of the query.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(res *sqlexec.Result) (string, error) {
	if len(res.Columns) == 0 {
		return res.CommandTag, nil
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range res.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, col := range res.Columns {
			val := &yaml.Node{}
			if err := val.Encode(sqlexec.JSONValue(row[i])); err != nil {
				return "", err
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
				val,
			)
		}
		seq.Content = append(seq.Content, m)
	}

	b, err := yaml.Marshal(seq)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}
