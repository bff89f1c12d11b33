package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// renderRunReport builds the final report text. Four sections in fixed
// order: overview counts, invite list (with an explicit "none" sentinel),
// review list (omitted entirely when empty), and a non-actionable summary.
// Pure function; callers decide where the text goes.
func renderRunReport(r RunReport, runDate time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Mail triage report — %s\n\n", runDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "Processed %d emails: %d interview, %d auto-reply, %d other, %d needs review.\n",
		r.Total, r.Counts.Interview, r.Counts.AutoReply, r.Counts.Other, r.Counts.NeedsReview)
	if r.AlertsSent > 0 {
		fmt.Fprintf(&b, "Alerts sent: %d\n", r.AlertsSent)
	}

	b.WriteString("\nInterview invites:\n")
	if len(r.InviteRows) == 0 {
		b.WriteString("(none)\n")
	} else {
		for _, row := range r.InviteRows {
			b.WriteString(row + "\n")
		}
	}

	if len(r.ReviewRows) > 0 {
		b.WriteString("\nNeeds review (low confidence):\n")
		for _, row := range r.ReviewRows {
			b.WriteString(row + "\n")
		}
	}

	fmt.Fprintf(&b, "\nNo action needed: %d auto-replies, %d other.\n",
		r.Counts.AutoReply, r.Counts.Other)

	return b.String()
}

// WriteReportFile archives the rendered report under outputDir, named by run
// date.
func WriteReportFile(content, outputDir string, runDate time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("triage_%s.txt", runDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(content), 0644)
}
