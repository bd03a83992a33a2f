package validate

import (
	"fmt"
	"strings"

	"bulletin/internal/core"
	"bulletin/internal/words"
)

// DefaultMaxWords is the description word limit applied when none is configured.
const DefaultMaxWords = 14

// genericPhrases are filler call-to-action phrases that weaken a description.
// Matched as case-insensitive substrings.
var genericPhrases = []string{
	"learn more",
	"find out",
	"click here",
	"read on",
	"discover",
}

// spamTriggers are subject-line words that commonly trip spam filters.
var spamTriggers = []string{
	"free", "guarantee", "urgent", "act now", "limited time",
	"winner", "cash", "!!!",
}

// Description checks a newsletter description against its article title.
// Issues (over the word limit, title-word repetition, empty text) make the
// report invalid; warnings (very short text, generic phrases) do not.
func Description(description, title string, maxWords int) core.ValidationReport {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	report := core.ValidationReport{
		WordCount: words.Count(description),
	}

	if strings.TrimSpace(description) == "" {
		report.Issues = append(report.Issues, "description is empty")
		return report
	}

	if report.WordCount > maxWords {
		report.Issues = append(report.Issues,
			fmt.Sprintf("description has %d words, maximum is %d", report.WordCount, maxWords))
	}

	if shared := words.Overlap(description, title, words.English); len(shared) > 0 {
		report.Issues = append(report.Issues,
			fmt.Sprintf("description repeats title words: %s", strings.Join(shared, ", ")))
	}

	if report.WordCount < 3 {
		report.Warnings = append(report.Warnings, "description is very short")
	}

	lower := strings.ToLower(description)
	for _, phrase := range genericPhrases {
		if strings.Contains(lower, phrase) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("description contains generic phrase %q", phrase))
		}
	}

	report.IsValid = len(report.Issues) == 0
	return report
}

// SubjectLine checks an email subject line. All findings are advisory, so the
// report is always valid.
func SubjectLine(subject string) core.ValidationReport {
	report := core.ValidationReport{
		IsValid:   true,
		WordCount: words.Count(subject),
	}

	length := len(strings.TrimSpace(subject))
	if length == 0 {
		report.IsValid = false
		report.Issues = append(report.Issues, "subject is empty")
		return report
	}

	if length < 20 {
		report.Warnings = append(report.Warnings, "subject is shorter than 20 characters")
	}
	if length > 60 {
		report.Warnings = append(report.Warnings, "subject is longer than 60 characters, may be truncated in inboxes")
	}

	lower := strings.ToLower(subject)
	for _, trigger := range spamTriggers {
		if strings.Contains(lower, trigger) {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("subject contains spam trigger %q", trigger))
		}
	}

	if strings.Count(subject, "!") > 1 || strings.Count(subject, "?") > 2 {
		report.Warnings = append(report.Warnings, "subject has excessive punctuation")
	}

	if letters := countLetters(subject); letters >= 5 && subject == strings.ToUpper(subject) {
		report.Warnings = append(report.Warnings, "subject is all uppercase")
	}

	return report
}

// NewsletterData checks the payload for newsletter creation: a subject and at
// least one article are required, and each article needs an id and a valid
// description.
func NewsletterData(subject string, articles []core.Article, maxWords int) core.ValidationReport {
	report := core.ValidationReport{}

	if strings.TrimSpace(subject) == "" {
		report.Issues = append(report.Issues, "subject is required")
	}
	if len(articles) == 0 {
		report.Issues = append(report.Issues, "at least one article is required")
	}

	for _, article := range articles {
		if article.ID == 0 {
			report.Issues = append(report.Issues, "article is missing an id")
			continue
		}
		if strings.TrimSpace(article.Description) == "" {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("article %d has no description", article.ID))
			continue
		}
		sub := Description(article.Description, article.Title, maxWords)
		for _, issue := range sub.Issues {
			report.Issues = append(report.Issues,
				fmt.Sprintf("article %d: %s", article.ID, issue))
		}
		for _, warning := range sub.Warnings {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("article %d: %s", article.ID, warning))
		}
	}

	report.IsValid = len(report.Issues) == 0
	return report
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			n++
		}
	}
	return n
}
