package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/attunehq/nudge"
)

type CsvReporter struct {
}

var _ Reporter = (*CsvReporter)(nil)

func (r *CsvReporter) Write(w io.WriteCloser, issues []nudge.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	var (
		cw  = csv.NewWriter(w)
		err error
	)
	columns := []string{"Rule",
		"Description",
		"File",
		"Match",
		"StartLine",
		"EndLine",
		"StartColumn",
		"EndColumn",
		"Message",
		"Fingerprint",
	}
	if err = cw.Write(columns); err != nil {
		return err
	}
	for _, i := range issues {
		row := []string{i.Rule,
			i.Description,
			i.Path,
			i.Match,
			strconv.Itoa(i.StartLine),
			strconv.Itoa(i.EndLine),
			strconv.Itoa(i.StartColumn),
			strconv.Itoa(i.EndColumn),
			i.Message,
			i.Fingerprint,
		}
		if err = cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
