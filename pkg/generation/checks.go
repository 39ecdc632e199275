package generation

import (
	"context"
	"fmt"
	"strings"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/pkg/llm"
)

// CheckInput is the context each quality check reviews the draft against.
type CheckInput struct {
	Draft             string
	JobText           string
	CvText            string
	StyleInstructions string
	CompanyReport     string
	Metadata          entity.JobMetadata
}

// RunCheck executes one quality check with a base model. Responses without a
// trailing verdict sentinel are retried; once attempts run out the last
// response is kept and the issues-found verdict appended, so a flaky reviewer
// can never produce a silent pass.
func RunCheck(ctx context.Context, client llm.Client, check string, in CheckInput) (string, llm.Usage, error) {
	system, ok := constant.CheckSystemPrompts[check]
	if !ok {
		return "", llm.Usage{}, fmt.Errorf("unknown quality check %q", check)
	}

	messages := llm.UserMessage(buildCheckPrompt(check, in))

	var total llm.Usage
	var last string
	for attempt := 1; attempt <= constant.SentinelMaxAttempts; attempt++ {
		text, usage, err := client.Call(ctx, llm.SizeBase, system, messages, false)
		total.Add(usage)
		if err != nil {
			return "", total, err
		}

		if _, ok := Verdict(text); ok {
			return text, total, nil
		}
		last = text
	}

	// Verdict forced after exhausted retries. Treating the response as a
	// pass here would hide a real issue.
	forced := strings.TrimSpace(last) + "\n" + constant.VerdictIssuesFound
	return forced, total, nil
}

func buildCheckPrompt(check string, in CheckInput) string {
	var sb strings.Builder

	sb.WriteString("Cover letter draft:\n")
	sb.WriteString(in.Draft)

	switch check {
	case constant.CheckInstruction:
		sb.WriteString("\n\nStyle instructions:\n")
		if in.StyleInstructions == "" {
			sb.WriteString("(none given)")
		} else {
			sb.WriteString(in.StyleInstructions)
		}
	case constant.CheckAccuracy, constant.CheckUserFit:
		sb.WriteString("\n\nCandidate CV:\n")
		sb.WriteString(in.CvText)
	case constant.CheckCompanyFit:
		sb.WriteString("\n\nJob posting:\n")
		sb.WriteString(in.JobText)
		if in.CompanyReport != "" {
			sb.WriteString("\n\nCompany briefing:\n")
			sb.WriteString(in.CompanyReport)
		}
	}

	return sb.String()
}
