package reverse

import (
	"fmt"

	"github.com/qforge/fmea-backend/internal/types"
)

type Issue struct {
	LinkID  string `json:"link_id"`
	Message string `json:"message"`
}

// Report separates unusable rows (errors) from hierarchically incomplete
// ones (warnings). A warning row is still displayable; the chain simply has
// no matching entry in an upstream phase.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

func (r Report) OK() bool { return len(r.Errors) == 0 }

func Validate(rows []types.FailureAnalysisRow) Report {
	var report Report
	for _, row := range rows {
		if row.FMID == "" {
			report.Errors = append(report.Errors, Issue{
				LinkID:  row.LinkID,
				Message: "row has no failure mode reference",
			})
			continue
		}
		if row.ProcessName == "" {
			report.Warnings = append(report.Warnings, Issue{
				LinkID:  row.LinkID,
				Message: fmt.Sprintf("mode %s has no resolvable process structure", row.FMID),
			})
		}
		if row.FEID != "" && row.Requirement == "" && row.Category == "" {
			report.Warnings = append(report.Warnings, Issue{
				LinkID:  row.LinkID,
				Message: fmt.Sprintf("effect %s has no resolvable scope function", row.FEID),
			})
		}
		if row.FCID != "" && row.WorkElement == "" {
			report.Warnings = append(report.Warnings, Issue{
				LinkID:  row.LinkID,
				Message: fmt.Sprintf("cause %s has no resolvable work element", row.FCID),
			})
		}
	}
	return report
}
