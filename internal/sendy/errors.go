package sendy

import "errors"

var (
	// ErrNotConfigured indicates the Sendy URL or API key is missing.
	ErrNotConfigured = errors.New("sendy is not configured")

	// ErrMissingField indicates a required campaign field was not provided.
	ErrMissingField = errors.New("required field is missing")
)

// errorMessages maps raw Sendy response tokens to readable messages.
var errorMessages = map[string]string{
	"No data passed":            "No data was sent to Sendy",
	"API key not passed":        "Sendy API key is missing",
	"Invalid API key":           "Invalid Sendy API key",
	"Brand ID not passed":       "Brand ID is required",
	"Brand does not exist":      "The specified brand does not exist",
	"List ID not passed":        "List ID is required",
	"List does not exist":       "The specified list does not exist",
	"From name not passed":      "From name is required",
	"From email not passed":     "From email is required",
	"Reply to email not passed": "Reply-to email is required",
	"Subject not passed":        "Email subject is required",
	"HTML not passed":           "Email HTML content is required",
	"Campaign does not exist":   "The specified campaign does not exist",
	"Campaign not sent":         "Failed to send campaign",
	"Segment does not exist":    "The specified segment does not exist",
}
