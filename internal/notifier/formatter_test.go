package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

func TestFormatSummaryNoOpenIssues(t *testing.T) {
	out := FormatSummary(model.RunSummary{NoOpenIssues: true})
	assert.Contains(t, out, "No ordinary shares available")
}

func TestFormatSummaryAllPreviouslyApplied(t *testing.T) {
	out := FormatSummary(model.RunSummary{Items: []model.SummaryItem{
		{
			Issue:             model.Issue{CompanyName: "Himal Hydro", Scrip: "HIMAL"},
			PreviouslyApplied: true,
		},
	}})
	assert.Contains(t, out, "Himal Hydro (HIMAL)")
	assert.Contains(t, out, "PREVIOUSLY APPLIED")
	assert.NotContains(t, out, "Application Status")
}

func TestFormatSummaryWithResults(t *testing.T) {
	out := FormatSummary(model.RunSummary{Items: []model.SummaryItem{
		{
			Issue: model.Issue{CompanyName: "Himal Hydro", Scrip: "HIMAL", ShareTypeName: "IPO", ShareGroupName: model.OrdinaryShares},
			Results: []model.ApplicationResult{
				{Account: "Alice", Applied: true, Message: "Share applied successfully."},
				{Account: "Bob", Applied: false, Message: "Failed to apply!"},
			},
		},
	}})
	assert.Contains(t, out, "Application Status: 1 successful, 1 failed")
	assert.Contains(t, out, "- Bob: Failed to apply!")
	assert.NotContains(t, out, "- Alice")
}

func TestFormatSummaryEmptyRun(t *testing.T) {
	out := FormatSummary(model.RunSummary{})
	assert.Contains(t, out, "No shares were applied for")
}

type failingSink struct{}

func (failingSink) Name() string             { return "failing" }
func (failingSink) Notify(text string) error { return errors.New("sink down") }

func TestBroadcastToleratesSinkFailure(t *testing.T) {
	var buf bytes.Buffer
	Broadcast(context.Background(), []Sink{failingSink{}, &ConsoleSink{W: &buf}}, "hello")
	require.Contains(t, buf.String(), "hello", "later sinks still run after a failure")
}

// retryingSink records which delivery path Broadcast chose.
type retryingSink struct {
	notifies   int
	retries    int
	maxRetries int
}

func (r *retryingSink) Name() string { return "retrying" }

func (r *retryingSink) Notify(text string) error {
	r.notifies++
	return nil
}

func (r *retryingSink) NotifyWithRetry(ctx context.Context, text string, maxRetries int) error {
	r.retries++
	r.maxRetries = maxRetries
	return nil
}

func TestBroadcastUsesRetryDeliveryWhenAvailable(t *testing.T) {
	s := &retryingSink{}
	Broadcast(context.Background(), []Sink{s}, "hello")
	assert.Equal(t, 1, s.retries, "retry-capable sinks deliver through the retry path")
	assert.Zero(t, s.notifies)
	assert.Equal(t, maxDeliveryRetries, s.maxRetries)
}
