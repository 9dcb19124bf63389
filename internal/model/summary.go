package model

// SummaryItem is one issue's entry in a run summary: either an issue that was
// skipped because it was previously applied, or a batch of per-account results.
type SummaryItem struct {
	Issue             Issue
	PreviouslyApplied bool
	Results           []ApplicationResult
}

// RunSummary aggregates everything one orchestrator run did. It distinguishes
// three terminal states: no open ordinary issues, all issues previously
// applied, and applied with per-account results.
type RunSummary struct {
	NoOpenIssues bool
	Items        []SummaryItem
}

// AppliedAny reports whether at least one batch was submitted this run.
func (s RunSummary) AppliedAny() bool {
	for _, item := range s.Items {
		if !item.PreviouslyApplied {
			return true
		}
	}
	return false
}
