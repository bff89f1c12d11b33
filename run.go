package main

import (
	"context"
	"fmt"
	"log"
	"time"
)

type alertStore interface {
	IsAlerted(threadID string) (bool, error)
	MarkAlerted(threadID string, at time.Time) error
	EvictOlderThan(retention time.Duration, now time.Time) (int, error)
}

type notifier interface {
	Notify(text string) error
}

// Runner wires one triage run: evict stale dedupe state, fetch the window's
// records, classify batch by batch, apply routing effects, send the report.
type Runner struct {
	cfg        Config
	mailbox    Mailbox
	classifier Classifier
	alerts     alertStore
	notifier   notifier // nil when Slack is not configured
	now        func() time.Time
}

func NewRunner(cfg Config, mailbox Mailbox, classifier Classifier, alerts alertStore, n notifier) *Runner {
	return &Runner{
		cfg:        cfg,
		mailbox:    mailbox,
		classifier: classifier,
		alerts:     alerts,
		notifier:   n,
		now:        time.Now,
	}
}

// Run executes one triage pass. Fatal errors abort without sending the
// report; side effects applied before the failure (labels, dedupe writes,
// alerts) stay in effect and the next run recovers idempotently.
func (r *Runner) Run(ctx context.Context) error {
	runStart := r.now()

	retention := time.Duration(r.cfg.RetentionDays) * 24 * time.Hour
	if evicted, err := r.alerts.EvictOlderThan(retention, runStart); err != nil {
		log.Printf("dedupe eviction error (non-fatal): %v", err)
	} else if evicted > 0 {
		log.Printf("dedupe evicted=%d retention=%s", evicted, retention)
	}

	records, err := r.mailbox.FetchRecords()
	if err != nil {
		return fmt.Errorf("fetching records: %w", err)
	}

	if len(records) == 0 {
		log.Printf("run matched 0 emails, sending notice")
		notice := fmt.Sprintf("Mail triage ran at %s and matched 0 emails.", runStart.Format("2006-01-02 15:04"))
		return r.mailbox.SendMessage(r.cfg.ReportRecipient, "Mail triage: 0 emails", notice)
	}

	byID := make(map[string]RawRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	report := RunReport{Total: len(records)}
	batches := splitBatches(records, r.cfg.LLMBatchSize)
	log.Printf("run records=%d batches=%d batch_size=%d threshold=%.2f",
		len(records), len(batches), r.cfg.LLMBatchSize, r.cfg.LLMConfidence)

	for i, batch := range batches {
		systemPrompt, userPrompt := buildClassifyPrompts(batch)
		text, usage, err := r.classifier.Classify(ctx, systemPrompt, userPrompt)
		report.Usage.Add(usage)
		if err != nil {
			return fmt.Errorf("classifying batch %d: %w", i, err)
		}

		results, err := parseClassificationResponse(text)
		if err != nil {
			return fmt.Errorf("parsing batch %d: %w", i, err)
		}
		if len(results) == 0 {
			log.Printf("batch=%d produced no results", i)
			continue
		}

		for _, result := range results {
			record, ok := byID[result.ID]
			if !ok {
				// Unknown or foreign correlation id: drop silently.
				log.Printf("batch=%d dropping unknown result id=%q", i, result.ID)
				continue
			}
			outcome := routeResult(result, record, r.cfg.LLMConfidence)
			if err := r.applyOutcome(outcome, &report); err != nil {
				return fmt.Errorf("applying outcome for %s: %w", record.ID, err)
			}
		}
	}

	reportText := renderRunReport(report, runStart)
	if path, err := WriteReportFile(reportText, r.cfg.ReportOutputDir, runStart); err != nil {
		log.Printf("report archive error (non-fatal): %v", err)
	} else {
		log.Printf("report archived path=%s", path)
	}

	subject := fmt.Sprintf("Mail triage report %s", runStart.Format("2006-01-02"))
	if err := r.mailbox.SendMessage(r.cfg.ReportRecipient, subject, reportText); err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	if r.notifier != nil {
		summary := fmt.Sprintf("Mail triage: %d emails — %d interview, %d auto-reply, %d other, %d review, %d alerts.",
			report.Total, report.Counts.Interview, report.Counts.AutoReply,
			report.Counts.Other, report.Counts.NeedsReview, report.AlertsSent)
		if err := r.notifier.Notify(summary); err != nil {
			log.Printf("slack summary error (non-fatal): %v", err)
		}
	}

	log.Printf("run done total=%d interview=%d auto_reply=%d other=%d review=%d alerts=%d tokens=%d",
		report.Total, report.Counts.Interview, report.Counts.AutoReply, report.Counts.Other,
		report.Counts.NeedsReview, report.AlertsSent, report.Usage.TotalTokens())
	return nil
}

// applyOutcome performs the side effects of one routing decision: label
// attachment, report accumulation, and for invites the dedupe-gated alert.
func (r *Runner) applyOutcome(o RoutingOutcome, report *RunReport) error {
	switch o.Action {
	case ActionReview:
		report.Counts.NeedsReview++
		report.ReviewRows = append(report.ReviewRows, o.Row)
		return r.mailbox.AttachLabel(o.Record.ThreadID, o.Label)

	case ActionInvite:
		report.Counts.Interview++
		report.InviteRows = append(report.InviteRows, o.Row)
		if err := r.mailbox.AttachLabel(o.Record.ThreadID, o.Label); err != nil {
			return err
		}

		alerted, err := r.alerts.IsAlerted(o.Record.ThreadID)
		if err != nil {
			return err
		}
		if alerted {
			log.Printf("alert suppressed thread=%s (already alerted within retention)", o.Record.ThreadID)
			return nil
		}
		if err := r.alerts.MarkAlerted(o.Record.ThreadID, r.now()); err != nil {
			return err
		}
		if err := r.mailbox.SendMessage(r.cfg.AlertRecipient, o.Alert.Subject, o.Alert.Body); err != nil {
			return err
		}
		report.AlertsSent++
		if r.notifier != nil {
			if err := r.notifier.Notify(o.Alert.Subject); err != nil {
				log.Printf("slack alert mirror error (non-fatal): %v", err)
			}
		}
		return nil

	case ActionAutoReply:
		report.Counts.AutoReply++
		return r.mailbox.AttachLabel(o.Record.ThreadID, o.Label)

	default:
		report.Counts.Other++
		return nil
	}
}
