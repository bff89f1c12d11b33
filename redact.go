package main

import "regexp"

const redactedPlaceholder = "[REDACTED]"

var digitRunRe = regexp.MustCompile(`[0-9]+`)

// redactDigits replaces every standalone run of 6-10 digits with a
// placeholder. Second line of defense behind the prompt's redaction
// instruction; runs outside the 6-10 range are left alone.
func redactDigits(s string) string {
	return digitRunRe.ReplaceAllStringFunc(s, func(run string) string {
		if len(run) >= 6 && len(run) <= 10 {
			return redactedPlaceholder
		}
		return run
	})
}
