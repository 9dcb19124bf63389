package recorder

// ApplyAttempt is one account's apply attempt against one issue.
type ApplyAttempt struct {
	Scrip     string
	Company   string
	CloseDate string
	Account   string
	Quantity  int
	Applied   bool
	Message   string
}

// BatchOutcome is the aggregated result of one issue's batch.
type BatchOutcome struct {
	Scrip        string
	Company      string
	CloseDate    string
	SuccessCount int
	FailedCount  int
}

// Recorder persists per-attempt audit history for analysis. It supplements
// the ledger; losing it never affects dedup decisions.
type Recorder interface {
	RecordAttempt(att *ApplyAttempt) error
	RecordBatch(b *BatchOutcome) error
	Close() error
}
