package shell

import (
	"fmt"
	"strings"
)

// Stage is one `|`-separated pipeline segment: a command and its args.
type Stage struct {
	Cmd  string
	Args []string
}

// parseCmd splits a line on the literal `|` character into stages, then
// splits each stage on whitespace into a command and its arguments. An
// empty stage (consecutive `|`, or one with no tokens after trimming)
// is a parse error. No quoting, escaping, or redirection is recognised.
func parseCmd(line string) ([]Stage, error) {
	rawStages := strings.Split(line, "|")
	stages := make([]Stage, 0, len(rawStages))

	for _, raw := range rawStages {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return nil, fmt.Errorf("empty command")
		}
		fields := strings.Fields(trimmed)
		stages = append(stages, Stage{
			Cmd:  fields[0],
			Args: fields[1:],
		})
	}

	return stages, nil
}
