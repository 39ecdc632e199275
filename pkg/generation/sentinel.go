package generation

import (
	"fmt"
	"strings"

	"ai-coverletter-be/internal/constant"
)

// SentinelMissingError means a quality-check response did not end with a
// verdict marker. Callers retry a bounded number of times, then force the
// issues-found verdict rather than treating the response as a pass.
type SentinelMissingError struct {
	Check  string
	Vendor string
}

func (e *SentinelMissingError) Error() string {
	return fmt.Sprintf("check %q response from %s has no verdict sentinel", e.Check, e.Vendor)
}

// Verdict returns the trailing verdict marker of a check response, matched
// after trimming and case-normalizing. The bool is false when neither
// marker terminates the text.
func Verdict(text string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case strings.HasSuffix(normalized, constant.VerdictAllClear):
		return constant.VerdictAllClear, true
	case strings.HasSuffix(normalized, constant.VerdictIssuesFound):
		return constant.VerdictIssuesFound, true
	}
	return "", false
}

// HasIssues reports whether a feedback entry carries the issues-found
// verdict. Entries without any sentinel count as issues too; they only occur
// after retries were exhausted and the verdict was forced.
func HasIssues(feedback string) bool {
	verdict, ok := Verdict(feedback)
	if !ok {
		return true
	}
	return verdict == constant.VerdictIssuesFound
}
