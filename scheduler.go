package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// RunOnSchedule re-runs the triage pass on a standard 5-field cron expression
// (minute hour day-of-month month day-of-week). Examples: "0 8 * * *"
// (daily 8am), "0 8 * * 1-5" (weekdays 8am). Blocks forever.
func RunOnSchedule(runner *Runner, schedule string) {
	schedule = strings.TrimSpace(schedule)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Fatalf("Invalid schedule '%s': %v", schedule, err)
	}
	log.Printf("Triage scheduled (cron: %s)", schedule)

	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("Next triage run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		time.Sleep(wait)

		if err := runner.Run(context.Background()); err != nil {
			log.Printf("Scheduled run error: %v", err)
		}
	}
}
