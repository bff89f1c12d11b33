package main

import (
	"fmt"
	"strings"
)

// Mailbox labels attached per routing outcome.
const (
	labelInvite    = "Triage/Interview"
	labelAutoReply = "Triage/AutoReply"
	labelReview    = "Triage/Review"
)

const (
	unknownCompany  = "(unknown company)"
	unknownPosition = "(unknown position)"
	unknownContact  = "(unknown contact)"
)

// routeResult applies the confidence/category policy to one classification
// and returns the pure routing decision. Confidence below the threshold
// always wins: even a matching interview_invite goes to review. No side
// effects here; applyOutcome performs them.
func routeResult(result ClassificationResult, record RawRecord, threshold float64) RoutingOutcome {
	if result.Confidence < threshold {
		return RoutingOutcome{
			Action:  ActionReview,
			Record:  record,
			Label:   labelReview,
			Row:     buildReviewRow(result, record),
			Urgency: result.Urgency,
		}
	}

	switch result.Category {
	case CategoryInterviewInvite:
		return RoutingOutcome{
			Action:  ActionInvite,
			Record:  record,
			Label:   labelInvite,
			Row:     buildInviteRow(result, record),
			Alert:   buildAlert(result, record),
			Urgency: result.Urgency,
		}
	case CategoryAutoReply:
		return RoutingOutcome{
			Action:  ActionAutoReply,
			Record:  record,
			Label:   labelAutoReply,
			Urgency: result.Urgency,
		}
	default:
		return RoutingOutcome{Action: ActionOther, Record: record, Urgency: result.Urgency}
	}
}

func buildInviteRow(result ClassificationResult, record RawRecord) string {
	company := result.Company
	if company == "" {
		company = unknownCompany
	}
	position := result.Position
	if position == "" {
		position = unknownPosition
	}
	contact := result.Contact
	if contact == "" {
		contact = unknownContact
	}
	times := "none proposed"
	if len(result.ProposedTimes) > 0 {
		times = strings.Join(result.ProposedTimes, "; ")
	}
	urgencyMark := ""
	if result.Urgency == UrgencyHigh {
		urgencyMark = " [URGENT]"
	}
	return redactDigits(fmt.Sprintf("- %s — %s (contact: %s)%s | times: %s | %s | %s",
		company, position, contact, urgencyMark, times, record.Subject, result.Reason))
}

func buildReviewRow(result ClassificationResult, record RawRecord) string {
	return redactDigits(fmt.Sprintf("- %s | from: %s | guessed %s at %.2f | %s",
		record.Subject, record.From, result.Category, result.Confidence, result.Reason))
}

func buildAlert(result ClassificationResult, record RawRecord) *AlertMessage {
	company := result.Company
	if company == "" {
		company = unknownCompany
	}
	position := result.Position
	if position == "" {
		position = unknownPosition
	}
	contact := result.Contact
	if contact == "" {
		contact = unknownContact
	}
	times := "none proposed"
	if len(result.ProposedTimes) > 0 {
		times = strings.Join(result.ProposedTimes, "; ")
	}

	subject := fmt.Sprintf("Interview invite: %s — %s", company, position)
	if result.Urgency == UrgencyHigh {
		subject = "[URGENT] " + subject
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Interview invite detected.\n\n")
	fmt.Fprintf(&body, "Company:  %s\n", company)
	fmt.Fprintf(&body, "Position: %s\n", position)
	fmt.Fprintf(&body, "Contact:  %s\n", contact)
	fmt.Fprintf(&body, "Times:    %s\n", times)
	fmt.Fprintf(&body, "From:     %s\n", record.From)
	fmt.Fprintf(&body, "Subject:  %s\n", record.Subject)
	fmt.Fprintf(&body, "Received: %s\n\n", record.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(&body, "Reason: %s\n", result.Reason)

	return &AlertMessage{
		ThreadID: record.ThreadID,
		Subject:  redactDigits(subject),
		Body:     redactDigits(body.String()),
	}
}
