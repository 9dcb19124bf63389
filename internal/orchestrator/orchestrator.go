// Package orchestrator drives the multi-account application flow: discover
// open ordinary-share issues, skip those already in the ledger, fan the apply
// out across the selected accounts, persist the batch record, and repeat
// until no eligible issue remains.
package orchestrator

import (
	"fmt"
	"log"
	"time"

	"github.com/saugatsn/AutoApplyIPO/internal/ledger"
	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/model"
	"github.com/saugatsn/AutoApplyIPO/internal/recorder"
)

// Session is the per-account remote surface the orchestrator needs.
// *meroshare.Session satisfies it.
type Session interface {
	AccountName() string
	FetchApplicableIssues() ([]model.Issue, error)
	Apply(shareID, quantity int) (*meroshare.ApplyResult, error)
	Logout() error
}

// Ledger is the dedup record of issues already applied for.
// *ledger.Ledger satisfies it.
type Ledger interface {
	Has(scrip, closeDate string) bool
	Record(rec model.ShareApplicationRecord) error
}

// applyFailedMessage is the generic message recorded when an account's apply
// call errors out instead of returning a portal rejection.
const applyFailedMessage = "Failed to apply!"

// Orchestrator runs apply batches over a fixed selection of sessions.
// The first session doubles as the reference for issue discovery. All remote
// calls within a batch are sequential; the ledger append is the only write
// that gates progress to the next issue.
type Orchestrator struct {
	sessions []Session
	ledger   Ledger
	recorder recorder.Recorder
	quantity int
	now      func() time.Time
}

// New creates an orchestrator over the selected sessions. quantity is the
// number of units applied per account.
func New(sessions []Session, l Ledger, rec recorder.Recorder, quantity int) *Orchestrator {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Orchestrator{
		sessions: sessions,
		ledger:   l,
		recorder: rec,
		quantity: quantity,
		now:      time.Now,
	}
}

// Run executes apply passes until no eligible ordinary-share issue remains,
// then returns the aggregated summary. Issue discovery is re-fetched every
// pass since close dates and availability change between batches. Failures
// local to one account never abort the batch; a ledger write failure does.
func (o *Orchestrator) Run() (model.RunSummary, error) {
	var summary model.RunSummary
	if len(o.sessions) == 0 {
		return summary, fmt.Errorf("no accounts selected")
	}
	reference := o.sessions[0]
	// Discovery-only passes leave the reference session logged in; close it
	// on the way out. Failures are cleanup noise, not errors.
	defer func() {
		if err := reference.Logout(); err != nil {
			log.Printf("[WARN] logout reference session: %v", err)
		}
	}()
	skipped := make(map[string]bool)

	for pass := 1; ; pass++ {
		log.Printf("[INFO] apply pass %d: fetching applicable issues", pass)
		issues, err := reference.FetchApplicableIssues()
		if err != nil {
			return summary, fmt.Errorf("fetch applicable issues: %w", err)
		}

		var ordinary []model.Issue
		for _, issue := range issues {
			if issue.IsOrdinary() {
				ordinary = append(ordinary, issue)
			}
		}
		if len(ordinary) == 0 {
			if pass == 1 {
				summary.NoOpenIssues = true
			}
			log.Println("[INFO] no open ordinary-share issues")
			return summary, nil
		}

		// First issue not already in the ledger wins; everything already
		// applied is noted in the summary once.
		var selected *model.Issue
		for i, issue := range ordinary {
			if !o.ledger.Has(issue.Scrip, issue.CloseDate) {
				selected = &ordinary[i]
				break
			}
			key := issue.Scrip + "|" + issue.CloseDate
			if !skipped[key] {
				skipped[key] = true
				log.Printf("[INFO] %s already applied for, skipping", issue.Scrip)
				summary.Items = append(summary.Items, model.SummaryItem{
					Issue:             issue,
					PreviouslyApplied: true,
				})
			}
		}
		if selected == nil {
			log.Println("[INFO] every open issue is already in the ledger")
			return summary, nil
		}

		log.Printf("[INFO] applying for %s (%s), close date %s, %d units x %d accounts",
			selected.CompanyName, selected.Scrip, selected.CloseDate, o.quantity, len(o.sessions))
		results := o.applyBatch(*selected)

		rec := model.NewShareApplicationRecord(*selected, results, o.now())
		if err := o.ledger.Record(rec); err != nil {
			return summary, fmt.Errorf("record batch for %s: %w", selected.Scrip, err)
		}
		if err := o.recorder.RecordBatch(&recorder.BatchOutcome{
			Scrip:        rec.Scrip,
			Company:      rec.Name,
			CloseDate:    rec.CloseDate,
			SuccessCount: rec.SuccessCount,
			FailedCount:  rec.FailedCount,
		}); err != nil {
			log.Printf("[ERROR] record batch history: %v", err)
		}
		summary.Items = append(summary.Items, model.SummaryItem{
			Issue:   *selected,
			Results: results,
		})
		// The next pass will see this issue in the ledger; don't re-report
		// it as previously applied within the same run.
		skipped[selected.Scrip+"|"+selected.CloseDate] = true
	}
}

// applyBatch fans one issue out across every session sequentially. Each
// session is logged out afterward even when its apply failed; logout failures
// are logged and swallowed.
func (o *Orchestrator) applyBatch(issue model.Issue) []model.ApplicationResult {
	results := make([]model.ApplicationResult, 0, len(o.sessions))
	for _, s := range o.sessions {
		result := model.ApplicationResult{Account: s.AccountName()}

		applyResult, err := s.Apply(issue.CompanyShareID, o.quantity)
		if err != nil {
			log.Printf("[ERROR] apply for %s: %v", s.AccountName(), err)
			result.Applied = false
			result.Message = applyFailedMessage
		} else {
			result.Applied = applyResult.Applied()
			result.Message = applyResult.Message
		}

		if err := s.Logout(); err != nil {
			log.Printf("[WARN] logout for %s: %v", s.AccountName(), err)
		}

		if err := o.recorder.RecordAttempt(&recorder.ApplyAttempt{
			Scrip:     issue.Scrip,
			Company:   issue.CompanyName,
			CloseDate: issue.CloseDate,
			Account:   result.Account,
			Quantity:  o.quantity,
			Applied:   result.Applied,
			Message:   result.Message,
		}); err != nil {
			log.Printf("[ERROR] record apply attempt: %v", err)
		}

		results = append(results, result)
	}
	return results
}

var _ Ledger = (*ledger.Ledger)(nil)
