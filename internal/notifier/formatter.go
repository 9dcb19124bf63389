package notifier

import (
	"fmt"
	"strings"

	"github.com/saugatsn/AutoApplyIPO/internal/model"
)

// FormatSummary renders the run summary for delivery. The output
// distinguishes the three terminal states: no open issues, everything
// previously applied, and applied with per-account results.
func FormatSummary(s model.RunSummary) string {
	if s.NoOpenIssues {
		return "=== APPLICATION SUMMARY ===\n\nNo ordinary shares available for application."
	}
	if len(s.Items) == 0 {
		return "=== APPLICATION SUMMARY ===\n\nNo shares were applied for."
	}

	var b strings.Builder
	b.WriteString("=== APPLICATION SUMMARY ===\n")
	for _, item := range s.Items {
		b.WriteString(fmt.Sprintf("\nShare: %s (%s)\n", item.Issue.CompanyName, item.Issue.Scrip))
		if item.PreviouslyApplied {
			b.WriteString("Status: PREVIOUSLY APPLIED\n")
			continue
		}
		b.WriteString(fmt.Sprintf("Type: %s\n", item.Issue.ShareTypeName))
		b.WriteString(fmt.Sprintf("Group: %s\n", item.Issue.ShareGroupName))

		var success, failed int
		for _, r := range item.Results {
			if r.Applied {
				success++
			} else {
				failed++
			}
		}
		b.WriteString(fmt.Sprintf("Application Status: %d successful, %d failed\n", success, failed))
		if failed > 0 {
			b.WriteString("Failed Applications:\n")
			for _, r := range item.Results {
				if !r.Applied {
					b.WriteString(fmt.Sprintf("  - %s: %s\n", r.Account, r.Message))
				}
			}
		}
	}
	b.WriteString("\n=== END OF SUMMARY ===")
	return b.String()
}
