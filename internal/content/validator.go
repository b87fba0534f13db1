package content

import (
	"fmt"
	"strings"

	"github.com/postline/postline/internal/platform"
)

// Severity of a validation issue. Warnings never block publishing.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one typed validation finding.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

const (
	codeNoPlatforms   = "no_platforms"
	codeEmptyText     = "empty_text"
	codeTextTooLong   = "text_too_long"
	codeMediaRequired = "media_required"
	codeTooManyImages = "too_many_images"
	codeHashtagFlood  = "hashtag_flood"
	codeNoCTA         = "no_call_to_action"
)

// hashtagWarnLimit: above this many hashtags readers (and some platform spam
// filters) stop taking the post seriously.
const hashtagWarnLimit = 10

var ctaHints = []string{"call", "visit", "book", "shop", "learn more", "sign up", "contact", "order", "dm us", "link in bio"}

// Validate checks a post's content against each target platform's
// requirements and returns every finding, blocking and advisory.
func Validate(text string, platforms []platform.Platform, mediaURLs []string) []Issue {
	var issues []Issue

	if len(platforms) == 0 {
		issues = append(issues, Issue{
			Code:     codeNoPlatforms,
			Message:  "post has no target platforms",
			Severity: SeverityError,
		})
	}

	if strings.TrimSpace(text) == "" {
		issues = append(issues, Issue{
			Code:     codeEmptyText,
			Message:  "post text is empty",
			Severity: SeverityError,
		})
	}

	textLen := len([]rune(text))
	for _, p := range platforms {
		req := platform.RequirementsFor(p)
		if req.MaxChars > 0 && textLen > req.MaxChars {
			issues = append(issues, Issue{
				Code:     codeTextTooLong,
				Message:  fmt.Sprintf("text is %d characters, %s allows %d", textLen, p, req.MaxChars),
				Severity: SeverityError,
			})
		}
		if req.RequiresMedia && len(mediaURLs) == 0 {
			issues = append(issues, Issue{
				Code:     codeMediaRequired,
				Message:  fmt.Sprintf("%s requires at least one media asset", p),
				Severity: SeverityError,
			})
		}
		if req.MaxImages > 0 && len(mediaURLs) > req.MaxImages {
			issues = append(issues, Issue{
				Code:     codeTooManyImages,
				Message:  fmt.Sprintf("post has %d media assets, %s allows %d", len(mediaURLs), p, req.MaxImages),
				Severity: SeverityError,
			})
		}
	}

	if n := strings.Count(text, "#"); n > hashtagWarnLimit {
		issues = append(issues, Issue{
			Code:     codeHashtagFlood,
			Message:  fmt.Sprintf("%d hashtags is unusually many", n),
			Severity: SeverityWarning,
		})
	}

	if strings.TrimSpace(text) != "" && !hasCallToAction(text) {
		issues = append(issues, Issue{
			Code:     codeNoCTA,
			Message:  "caption has no obvious call to action",
			Severity: SeverityWarning,
		})
	}

	return issues
}

func hasCallToAction(text string) bool {
	lower := strings.ToLower(text)
	for _, hint := range ctaHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// HasBlockingErrors reports whether any issue is error-severity. Publishing
// is refused whenever this is true.
func HasBlockingErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorMessages concatenates the blocking issues for operator display.
func ErrorMessages(issues []Issue) string {
	var msgs []string
	for _, i := range issues {
		if i.Severity == SeverityError {
			msgs = append(msgs, i.Message)
		}
	}
	return strings.Join(msgs, "; ")
}
