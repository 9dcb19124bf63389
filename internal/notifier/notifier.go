// Package notifier delivers the end-of-run application summary to configured
// sinks. Sink failures are logged and never block process termination.
package notifier

import (
	"context"
	"log"
)

// maxDeliveryRetries bounds redelivery attempts for sinks that retry.
const maxDeliveryRetries = 3

// Sink receives the final run summary.
type Sink interface {
	Notify(summary string) error
	Name() string
}

// retrySink is satisfied by sinks whose transport is flaky enough to warrant
// redelivery with backoff. TelegramSink implements it; the console does not.
type retrySink interface {
	NotifyWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Broadcast hands the summary to every sink, logging failures. Sinks that
// support retry get up to maxDeliveryRetries attempts.
func Broadcast(ctx context.Context, sinks []Sink, summary string) {
	for _, s := range sinks {
		var err error
		if rs, ok := s.(retrySink); ok {
			err = rs.NotifyWithRetry(ctx, summary, maxDeliveryRetries)
		} else {
			err = s.Notify(summary)
		}
		if err != nil {
			log.Printf("[WARN] notify via %s: %v", s.Name(), err)
		}
	}
}
