package main

import "time"

// Classification categories the model is allowed to emit. Anything else is
// coerced to CategoryOther at the parse boundary.
const (
	CategoryInterviewInvite = "interview_invite"
	CategoryAutoReply       = "auto_reply"
	CategoryOther           = "other"
)

const (
	UrgencyHigh   = "high"
	UrgencyNormal = "normal"
)

// RawRecord is one message summary handed to the classifier. ID is the
// per-run correlation key ("e1", "e2", ...); ThreadID is the stable mailbox
// thread identifier that survives across runs and keys the dedupe store.
type RawRecord struct {
	ID       string
	ThreadID string
	Date     time.Time
	From     string
	Subject  string
	Excerpt  string
}

// ClassificationResult is one coerced element of the model's JSON array.
// Company, Position and Contact are empty when the model returned null;
// ProposedTimes is always a (possibly empty) list after coercion.
type ClassificationResult struct {
	ID            string
	Category      string
	Confidence    float64
	Company       string
	Position      string
	Contact       string
	ProposedTimes []string
	Urgency       string
	Reason        string
}

// Routing actions, in policy order. Review wins over everything when
// confidence is below the threshold.
const (
	ActionReview    = "review"
	ActionInvite    = "invite"
	ActionAutoReply = "auto_reply"
	ActionOther     = "other"
)

// RoutingOutcome is the pure routing decision for one result. Side effects
// (label attach, alert send, dedupe write) are applied separately by
// applyOutcome so the policy itself stays testable.
type RoutingOutcome struct {
	Action  string
	Record  RawRecord
	Label   string // label to attach, empty for ActionOther
	Row     string // rendered report row, empty for ActionOther
	Alert   *AlertMessage
	Urgency string
}

// AlertMessage is a candidate interview alert. Whether it is actually sent
// depends on the dedupe store at effect-application time.
type AlertMessage struct {
	ThreadID string
	Subject  string
	Body     string
}

// RunCounts aggregates per-category totals for one run.
type RunCounts struct {
	Interview   int
	AutoReply   int
	Other       int
	NeedsReview int
}

// RunReport accumulates everything the final report renders. Built up over
// the batch loop, rendered once, then discarded.
type RunReport struct {
	Total      int
	Counts     RunCounts
	InviteRows []string
	ReviewRows []string
	Usage      LLMUsage
	AlertsSent int
}
