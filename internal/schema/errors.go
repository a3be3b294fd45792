package schema

import (
	"fmt"
	"strings"
)

// ValidationError rejects a whole file: required columns are missing or a
// value breaks a file level rule.
type ValidationError struct {
	Source  string
	Missing []string
	Detail  string
}

func (e ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required columns: "+strings.Join(e.Missing, ", "))
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(parts, "; "))
}
