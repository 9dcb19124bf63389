package orchestrator

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saugatsn/AutoApplyIPO/internal/ledger"
	"github.com/saugatsn/AutoApplyIPO/internal/meroshare"
	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

type fakeSession struct {
	name       string
	issues     []model.Issue
	fetchCalls int
	applyErr   error
	rejectWith string
	appliedIDs []int
	logouts    int
	logoutErr  error
}

func (f *fakeSession) AccountName() string { return f.name }

func (f *fakeSession) FetchApplicableIssues() ([]model.Issue, error) {
	f.fetchCalls++
	return f.issues, nil
}

func (f *fakeSession) Apply(shareID, quantity int) (*meroshare.ApplyResult, error) {
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.appliedIDs = append(f.appliedIDs, shareID)
	if f.rejectWith != "" {
		return &meroshare.ApplyResult{Status: "REJECTED", Message: f.rejectWith}, nil
	}
	return &meroshare.ApplyResult{Status: meroshare.StatusCreated, Message: "Share applied successfully."}, nil
}

func (f *fakeSession) Logout() error {
	f.logouts++
	return f.logoutErr
}

func issue(id int, scrip, group, closeDate string) model.Issue {
	return model.Issue{
		CompanyShareID: id,
		CompanyName:    scrip + " Ltd.",
		Scrip:          scrip,
		ShareTypeName:  "IPO",
		ShareGroupName: group,
		CloseDate:      closeDate,
	}
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "applied.json"))
	require.NoError(t, err)
	return l
}

func TestRunNoOrdinaryIssues(t *testing.T) {
	a := &fakeSession{name: "Alice", issues: []model.Issue{
		issue(1, "DEBCO", "Debenture", "2026-09-01"),
	}}
	o := New([]Session{a}, testLedger(t), nil, 10)

	summary, err := o.Run()
	require.NoError(t, err)
	assert.True(t, summary.NoOpenIssues)
	assert.Empty(t, summary.Items)
	assert.Empty(t, a.appliedIDs)
	assert.Equal(t, 1, a.logouts, "reference session is closed even when nothing was applied")
}

func TestRunAllIssuesAlreadyApplied(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(model.ShareApplicationRecord{Scrip: "HIMAL", CloseDate: "2026-09-05"}))

	a := &fakeSession{name: "Alice", issues: []model.Issue{
		issue(501, "HIMAL", model.OrdinaryShares, "2026-09-05"),
	}}
	o := New([]Session{a}, l, nil, 10)

	summary, err := o.Run()
	require.NoError(t, err)
	assert.False(t, summary.NoOpenIssues)
	require.Len(t, summary.Items, 1)
	assert.True(t, summary.Items[0].PreviouslyApplied)
	assert.False(t, summary.AppliedAny())
	assert.Empty(t, a.appliedIDs, "ledgered issues are never re-applied")
	assert.Equal(t, 1, a.logouts, "reference session is closed on the all-ledgered exit")
}

func TestRunSelectsSecondWhenFirstLedgered(t *testing.T) {
	l := testLedger(t)
	require.NoError(t, l.Record(model.ShareApplicationRecord{Scrip: "HIMAL", CloseDate: "2026-09-05"}))

	issues := []model.Issue{
		issue(501, "HIMAL", model.OrdinaryShares, "2026-09-05"),
		issue(502, "KARNA", model.OrdinaryShares, "2026-09-07"),
	}
	a := &fakeSession{name: "Alice", issues: issues}
	b := &fakeSession{name: "Bob", issues: issues}
	o := New([]Session{a, b}, l, nil, 10)

	summary, err := o.Run()
	require.NoError(t, err)
	assert.Equal(t, []int{502}, a.appliedIDs)
	assert.Equal(t, []int{502}, b.appliedIDs)
	assert.True(t, l.Has("KARNA", "2026-09-07"))

	// Summary notes the skipped issue once plus the applied batch.
	require.Len(t, summary.Items, 2)
	assert.True(t, summary.Items[0].PreviouslyApplied)
	assert.Equal(t, "KARNA", summary.Items[1].Issue.Scrip)
}

func TestRunAppliesEachEligibleIssueOnce(t *testing.T) {
	issues := []model.Issue{
		issue(501, "HIMAL", model.OrdinaryShares, "2026-09-05"),
		issue(502, "KARNA", model.OrdinaryShares, "2026-09-07"),
	}
	a := &fakeSession{name: "Alice", issues: issues}
	l := testLedger(t)
	o := New([]Session{a}, l, nil, 10)

	summary, err := o.Run()
	require.NoError(t, err)
	assert.Equal(t, []int{501, 502}, a.appliedIDs)
	assert.Equal(t, 3, a.fetchCalls, "fresh fetch per pass plus the terminating pass")
	require.Len(t, summary.Items, 2)

	all := l.All()
	require.Len(t, all, 2)
	assert.Equal(t, "HIMAL", all[0].Scrip)
	assert.Equal(t, "KARNA", all[1].Scrip)
}

func TestRunPartialFailureStillRecordsAndLogsOut(t *testing.T) {
	issues := []model.Issue{issue(501, "HIMAL", model.OrdinaryShares, "2026-09-05")}
	a := &fakeSession{name: "Alice", issues: issues}
	b := &fakeSession{name: "Bob", issues: issues, applyErr: errors.New("connection reset")}
	l := testLedger(t)
	o := New([]Session{a, b}, l, nil, 10)

	summary, err := o.Run()
	require.NoError(t, err, "one account's failure never aborts the batch")

	all := l.All()
	require.Len(t, all, 1)
	assert.Equal(t, 1, all[0].SuccessCount)
	assert.Equal(t, 1, all[0].FailedCount)
	assert.Equal(t, 2, a.logouts, "batch logout plus the terminal reference logout")
	assert.Equal(t, 1, b.logouts, "failed account is still logged out")

	require.Len(t, summary.Items, 1)
	results := summary.Items[0].Results
	require.Len(t, results, 2)
	assert.True(t, results[0].Applied)
	assert.False(t, results[1].Applied)
	assert.Equal(t, "Failed to apply!", results[1].Message)
}

func TestRunCountsMatchSelection(t *testing.T) {
	issues := []model.Issue{issue(501, "HIMAL", model.OrdinaryShares, "2026-09-05")}
	sessions := []Session{
		&fakeSession{name: "A", issues: issues},
		&fakeSession{name: "B", issues: issues, rejectWith: "Insufficient balance."},
		&fakeSession{name: "C", issues: issues, applyErr: errors.New("timeout")},
	}
	l := testLedger(t)
	o := New(sessions, l, nil, 10)

	_, err := o.Run()
	require.NoError(t, err)
	rec := l.All()[0]
	assert.Equal(t, len(sessions), rec.SuccessCount+rec.FailedCount)
	assert.Equal(t, 1, rec.SuccessCount)
	assert.Equal(t, 2, rec.FailedCount)
}

func TestRunLogoutFailureIsSwallowed(t *testing.T) {
	issues := []model.Issue{issue(501, "HIMAL", model.OrdinaryShares, "2026-09-05")}
	a := &fakeSession{name: "Alice", issues: issues, logoutErr: errors.New("session expired")}
	l := testLedger(t)
	o := New([]Session{a}, l, nil, 10)

	_, err := o.Run()
	require.NoError(t, err)
	assert.True(t, l.Has("HIMAL", "2026-09-05"))
}

func TestRunNoSessions(t *testing.T) {
	o := New(nil, testLedger(t), nil, 10)
	_, err := o.Run()
	require.Error(t, err)
}

func TestSelectAccounts(t *testing.T) {
	accounts := []model.Account{
		{Dmat: "1", Name: "A", Tag: "fast"},
		{Dmat: "2", Name: "B", Tag: "slow"},
		{Dmat: "3", Name: "C"},
	}

	fast := SelectAccounts(accounts, []string{"fast"})
	require.Len(t, fast, 1)
	assert.Equal(t, "A", fast[0].Name)

	both := SelectAccounts(accounts, []string{"fast", "slow"})
	require.Len(t, both, 2)

	all := SelectAccounts(accounts, []string{"all"})
	assert.Len(t, all, 3)

	none := SelectAccounts(accounts, nil)
	assert.Len(t, none, 3, "empty filter selects every account")

	// Selections are views over the vault's accounts, not copies.
	fast[0].Tag = "retagged"
	assert.Equal(t, "retagged", accounts[0].Tag)
}
