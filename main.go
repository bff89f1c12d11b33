package main

import (
	"context"
	"flag"
	"log"
)

func main() {
	schedule := flag.String("schedule", "", "cron expression for periodic runs (empty = run once and exit)")
	flag.Parse()

	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	mailbox := NewGmailClient(cfg)
	classifier := NewRetryingClassifier(
		NewAnthropicClassifier(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMMaxTokens),
		cfg.LLMMaxRetries,
	)
	alerts := NewAlertStore(db)

	var n notifier
	if sn := NewSlackNotifier(cfg); sn != nil {
		n = sn
	}

	runner := NewRunner(cfg, mailbox, classifier, alerts, n)

	if *schedule != "" {
		RunOnSchedule(runner, *schedule)
		return
	}

	log.Println("Starting mail triage run...")
	if err := runner.Run(context.Background()); err != nil {
		log.Fatalf("Triage run error: %v", err)
	}
}
