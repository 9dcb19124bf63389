// Package ledger persists the append-only record of issues already applied
// for. The (scrip, close date) pair is the dedup key: presence means "skip on
// future runs regardless of per-account outcome". The file is a best-effort
// dedup aid, not the source of truth for money movement, so a corrupt file is
// recovered as empty with a loud warning instead of aborting.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

// ErrNotConfirmed is returned by Clear when the caller has not confirmed the
// destructive truncate. The file is left unchanged.
var ErrNotConfirmed = errors.New("ledger clear not confirmed")

// Ledger is the persisted list of applied-issue records, oldest first.
type Ledger struct {
	mu      sync.Mutex
	path    string
	records []model.ShareApplicationRecord
}

// Open loads the ledger at path. A missing file is an empty ledger; an
// unparsable file is reported loudly and treated as empty.
func Open(path string) (*Ledger, error) {
	l := &Ledger{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := json.Unmarshal(data, &l.records); err != nil {
		log.Printf("[WARN] ledger %s is unparsable (%v); treating as empty, previously applied issues may be re-applied", path, err)
		l.records = nil
	}
	return l, nil
}

// Has reports whether an issue with the given scrip and close date has
// already been applied for.
func (l *Ledger) Has(scrip, closeDate string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.Scrip == scrip && r.CloseDate == closeDate {
			return true
		}
	}
	return false
}

// Record appends one batch record and rewrites the file. Appending an issue
// already present is refused to keep the at-most-once invariant.
func (l *Ledger) Record(rec model.ShareApplicationRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.Scrip == rec.Scrip && r.CloseDate == rec.CloseDate {
			return fmt.Errorf("issue %s (%s) already recorded", rec.Scrip, rec.CloseDate)
		}
	}
	l.records = append(l.records, rec)
	if err := l.save(); err != nil {
		l.records = l.records[:len(l.records)-1]
		return err
	}
	return nil
}

// All returns a copy of the records, oldest first.
func (l *Ledger) All() []model.ShareApplicationRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.ShareApplicationRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Clear truncates the ledger to an empty list. Without confirmation it
// returns ErrNotConfirmed and leaves the file untouched.
func (l *Ledger) Clear(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	return l.save()
}

func (l *Ledger) save() error {
	data, err := json.MarshalIndent(ensureSlice(l.records), "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// ensureSlice keeps an empty ledger encoded as [] rather than null.
func ensureSlice(records []model.ShareApplicationRecord) []model.ShareApplicationRecord {
	if records == nil {
		return []model.ShareApplicationRecord{}
	}
	return records
}
