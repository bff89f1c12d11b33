package main

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedClassifier returns its responses in order, one per call.
type scriptedClassifier struct {
	calls     int
	responses []struct {
		text string
		err  error
	}
}

func (s *scriptedClassifier) Classify(_ context.Context, _, _ string) (string, LLMUsage, error) {
	if s.calls >= len(s.responses) {
		return "", LLMUsage{}, errors.New("unexpected extra call")
	}
	r := s.responses[s.calls]
	s.calls++
	return r.text, LLMUsage{InputTokens: 10, OutputTokens: 5}, r.err
}

func transientErr() error {
	return &ServiceError{Status: 503, Msg: "overloaded", Transient: true}
}

func fatalErr() error {
	return &ServiceError{Status: 401, Msg: "invalid api key"}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	inner := &scriptedClassifier{responses: []struct {
		text string
		err  error
	}{
		{err: transientErr()},
		{err: transientErr()},
		{text: "[]"},
	}}
	var slept []time.Duration
	r := &RetryingClassifier{
		Inner:       inner,
		MaxAttempts: 3,
		Unit:        time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	text, _, err := r.Classify(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if text != "[]" {
		t.Fatalf("unexpected text %q", text)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
	if len(slept) != 2 || slept[0] != time.Second || slept[1] != 2*time.Second {
		t.Fatalf("unexpected backoff sequence: %v", slept)
	}
}

func TestRetryExhaustsAndReturnsLastTransient(t *testing.T) {
	inner := &scriptedClassifier{responses: []struct {
		text string
		err  error
	}{
		{err: transientErr()},
		{err: transientErr()},
		{err: transientErr()},
	}}
	var slept []time.Duration
	r := &RetryingClassifier{
		Inner:       inner,
		MaxAttempts: 3,
		Unit:        time.Second,
		Sleep:       func(d time.Duration) { slept = append(slept, d) },
	}

	_, _, err := r.Classify(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !IsTransient(err) {
		t.Fatalf("expected last transient error, got %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", inner.calls)
	}
	// Backoff 1,2 between attempts; no sleep after the last one.
	if len(slept) != 2 {
		t.Fatalf("unexpected sleep count: %v", slept)
	}
}

func TestFatalErrorPropagatesWithoutRetry(t *testing.T) {
	inner := &scriptedClassifier{responses: []struct {
		text string
		err  error
	}{
		{err: fatalErr()},
	}}
	r := &RetryingClassifier{
		Inner:       inner,
		MaxAttempts: 3,
		Unit:        time.Second,
		Sleep:       func(time.Duration) { t.Fatal("fatal error must not back off") },
	}

	_, _, err := r.Classify(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected fatal error")
	}
	if IsTransient(err) {
		t.Fatalf("fatal error misclassified: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", inner.calls)
	}
	var se *ServiceError
	if !errors.As(err, &se) || se.Status != 401 {
		t.Fatalf("expected status 401, got %v", err)
	}
}

func TestIsTransientOnWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), transientErr())
	if !IsTransient(wrapped) {
		t.Fatal("transient classification must survive wrapping")
	}
	if IsTransient(errors.New("plain")) {
		t.Fatal("plain error must not be transient")
	}
}
