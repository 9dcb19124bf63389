package model

import "time"

// AppliedDateFormat is the timestamp layout used in ledger records.
const AppliedDateFormat = "2006-01-02 15:04:05"

// ApplicationResult is the per-account outcome of one apply attempt.
type ApplicationResult struct {
	Account string `json:"account"`
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

// ShareApplicationRecord summarizes one batch application for a single issue.
// It is the unit persisted in the applied-issues ledger; the (Scrip, CloseDate)
// pair is the dedup key across runs.
type ShareApplicationRecord struct {
	Scrip        string `json:"scrip"`
	Name         string `json:"name"`
	CloseDate    string `json:"close_date"`
	AppliedDate  string `json:"applied_date"`
	SuccessCount int    `json:"success_count"`
	FailedCount  int    `json:"failed_count"`
}

// NewShareApplicationRecord rolls per-account results into a ledger record.
func NewShareApplicationRecord(issue Issue, results []ApplicationResult, now time.Time) ShareApplicationRecord {
	rec := ShareApplicationRecord{
		Scrip:       issue.Scrip,
		Name:        issue.CompanyName,
		CloseDate:   issue.CloseDate,
		AppliedDate: now.Format(AppliedDateFormat),
	}
	for _, r := range results {
		if r.Applied {
			rec.SuccessCount++
		} else {
			rec.FailedCount++
		}
	}
	return rec
}
