package scan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/attunehq/nudge"
)

// IsNew reports whether issue is absent from a previous report. Issues
// match by fingerprint; issues without one fall back to comparing location
// and matched text.
func IsNew(issue nudge.Issue, baseline []nudge.Issue) bool {
	for _, b := range baseline {
		if issue.Fingerprint != "" && b.Fingerprint != "" {
			if issue.Fingerprint == b.Fingerprint {
				return false
			}
			continue
		}

		if issue.Rule == b.Rule &&
			issue.Path == b.Path &&
			issue.StartLine == b.StartLine &&
			issue.EndLine == b.EndLine &&
			issue.StartColumn == b.StartColumn &&
			issue.EndColumn == b.EndColumn &&
			issue.Match == b.Match {
			return false
		}
	}
	return true
}

// LoadBaseline reads a JSON report written by `nudge check --report-format
// json`.
func LoadBaseline(baselinePath string) ([]nudge.Issue, error) {
	bytes, err := os.ReadFile(baselinePath)
	if err != nil {
		return nil, fmt.Errorf("could not open %s", baselinePath)
	}

	var previous []nudge.Issue
	if err := json.Unmarshal(bytes, &previous); err != nil {
		return nil, fmt.Errorf("the format of the file %s is not supported", baselinePath)
	}

	return previous, nil
}
