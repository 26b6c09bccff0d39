package report

import (
	"encoding/json"
	"io"

	"github.com/attunehq/nudge"
)

type JsonReporter struct {
}

var _ Reporter = (*JsonReporter)(nil)

func (t *JsonReporter) Write(w io.WriteCloser, issues []nudge.Issue) error {
	if issues == nil {
		issues = []nudge.Issue{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")
	return encoder.Encode(issues)
}
