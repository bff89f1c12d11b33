package main

import (
	"fmt"
	"strings"
)

// classifyPromptVersion tags the instruction text below. Bump it whenever the
// instructions change so classification behavior stays attributable to a
// prompt revision.
const classifyPromptVersion = "v3"

const recordDelimiter = "---"

const classifySystemPrompt = `You classify job-search emails. [prompt ` + classifyPromptVersion + `]

For every email in the input, emit exactly one JSON object with:
- "id": the email's id, copied verbatim
- "category": one of "interview_invite", "auto_reply", "other"
- "confidence": a number between 0 and 1
- "company": company name, or null if not present
- "position": role title, or null if not present
- "contact": recruiter/contact name, or null if not present
- "proposed_times": list of proposed interview time strings, or null
- "urgency": "high" or "normal"
- "reason": one short sentence justifying the category

Redaction is mandatory: never reproduce one-time codes, verification codes,
or personal identifiers (phone numbers, ID numbers) in any output field.
Classification never requires them.

Respond with a JSON array only. No markdown, no surrounding prose:
[{"id": "e1", "category": "interview_invite", "confidence": 0.92, "company": "Acme", "position": "SRE", "contact": "Dana", "proposed_times": ["Tue 10:00"], "urgency": "high", "reason": "..."}, ...]`

// buildClassifyPrompts renders one batch into the system/user prompt pair.
// Pure function of the batch; the instruction text is a versioned constant so
// redaction behavior is reproducible across runs.
func buildClassifyPrompts(batch []RawRecord) (string, string) {
	var lines strings.Builder
	for i, r := range batch {
		if i > 0 {
			lines.WriteString(recordDelimiter + "\n")
		}
		lines.WriteString(fmt.Sprintf("id: %s\ndate: %s\nfrom: %s\nsubject: %s\nexcerpt: %s\n",
			r.ID,
			r.Date.Format("2006-01-02 15:04"),
			strings.TrimSpace(r.From),
			strings.TrimSpace(r.Subject),
			strings.TrimSpace(r.Excerpt)))
	}
	userPrompt := "Classify these emails:\n\n" + lines.String()
	return classifySystemPrompt, userPrompt
}
