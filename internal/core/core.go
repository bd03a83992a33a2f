package core

import "time"

// Article represents a published content item eligible for newsletter inclusion.
type Article struct {
	ID            int64         `json:"id"`             // Unique identifier for the article
	Title         string        `json:"title"`          // Title of the article
	Content       string        `json:"content"`        // Full body content (may contain HTML)
	Excerpt       string        `json:"excerpt"`        // Short excerpt, generated when the source has none
	URL           string        `json:"url"`            // Canonical URL of the article
	Description   string        `json:"description"`    // Custom short description used in newsletters
	FeaturedImage FeaturedImage `json:"featured_image"` // Featured image metadata (zero value when absent)
	Categories    []string      `json:"categories"`     // Category names assigned to the article
	WordCount     int           `json:"word_count"`     // Word count of the cleaned content
	PublishedAt   time.Time     `json:"published_at"`   // Timestamp when the article was published
}

// FeaturedImage holds display metadata for an article's featured image.
type FeaturedImage struct {
	URL    string `json:"url"`    // Image URL
	Alt    string `json:"alt"`    // Alternative text
	Width  int    `json:"width"`  // Pixel width
	Height int    `json:"height"` // Pixel height
}

// HasImage reports whether a featured image is present.
func (f FeaturedImage) HasImage() bool {
	return f.URL != ""
}

// ValidationReport carries the outcome of validating a description or subject line.
// Issues block usage; warnings are advisory only.
type ValidationReport struct {
	IsValid   bool     `json:"is_valid"`   // True when no blocking issues were found
	WordCount int      `json:"word_count"` // Whitespace-delimited word count of the checked text
	Issues    []string `json:"issues"`     // Blocking problems
	Warnings  []string `json:"warnings"`   // Advisory findings, never affect IsValid
}

// DescriptionResult is the per-article outcome of description generation.
type DescriptionResult struct {
	ArticleID   int64  `json:"article_id"`  // Article the description belongs to
	Description string `json:"description"` // Final description text (generated, fixed, or fallback)
	Success     bool   `json:"success"`     // False when the provider failed and a fallback was used
	Fallback    bool   `json:"fallback"`    // True when the description was derived from the content
	Error       string `json:"error"`       // Provider error message when Success is false
	WordCount   int    `json:"word_count"`  // Word count of the final description
}

// NewsletterOptions controls how an assembled newsletter looks.
type NewsletterOptions struct {
	Template           string `json:"template"`             // Template slot name (e.g. "default", "minimal")
	Subject            string `json:"subject"`              // Email subject line
	HeaderText         string `json:"header_text"`          // Header shown above the article list
	FooterText         string `json:"footer_text"`          // Footer shown below the article list
	BrandColor         string `json:"brand_color"`          // Primary accent color (hex)
	BackgroundColor    string `json:"background_color"`     // Page background color (hex)
	IncludeSocialLinks bool   `json:"include_social_links"` // Render the social link row
	IncludeUnsubscribe bool   `json:"include_unsubscribe"`  // Render the unsubscribe line
}

// NewsletterAssembly is a rendered newsletter plus preview metadata.
type NewsletterAssembly struct {
	HTML          string    `json:"html"`           // Full rendered HTML document
	PreviewText   string    `json:"preview_text"`   // Tag-stripped text preview, capped at 500 chars
	EstimatedSize int       `json:"estimated_size"` // Byte size of the rendered HTML
	PostCount     int       `json:"post_count"`     // Number of articles included
	GeneratedAt   time.Time `json:"generated_at"`   // Timestamp of assembly
}

// SiteInfo holds site-level metadata merged into every newsletter.
type SiteInfo struct {
	Name        string            `json:"name"`         // Site name
	URL         string            `json:"url"`          // Site home URL
	Tagline     string            `json:"tagline"`      // Short site description
	LogoURL     string            `json:"logo_url"`     // Logo image URL (optional)
	FromName    string            `json:"from_name"`    // Default sender name
	FromEmail   string            `json:"from_email"`   // Default sender address
	ReplyTo     string            `json:"reply_to"`     // Default reply-to address
	SocialLinks map[string]string `json:"social_links"` // Platform name to profile URL
}

// CampaignRequest describes an email campaign to create on the delivery service.
type CampaignRequest struct {
	Subject         string   `json:"subject"`          // Email subject line
	HTMLContent     string   `json:"html_content"`     // Rendered HTML body
	PlainText       string   `json:"plain_text"`       // Plain-text alternative (derived from HTML when empty)
	ListID          string   `json:"list_id"`          // Target subscriber list
	FromName        string   `json:"from_name"`        // Sender name (defaults from SiteInfo)
	FromEmail       string   `json:"from_email"`       // Sender address (defaults from SiteInfo)
	ReplyTo         string   `json:"reply_to"`         // Reply-to address (defaults from SiteInfo)
	SendImmediately bool     `json:"send_immediately"` // Create and send in one call
	ArticleIDs      []int64  `json:"article_ids"`      // Articles included, recorded in the audit log
	Tags            []string `json:"tags"`             // Optional campaign tags
}

// CampaignResult is the outcome of a campaign create or send call.
type CampaignResult struct {
	Success         bool   `json:"success"`          // True when the service confirmed the operation
	Message         string `json:"message"`          // Human-readable outcome
	CampaignID      string `json:"campaign_id"`      // Local campaign identifier (best effort)
	SentImmediately bool   `json:"sent_immediately"` // True when the campaign was created and sent in one call
}

// List identifies a subscriber list on the delivery service.
type List struct {
	ID   string `json:"id"`   // List identifier
	Name string `json:"name"` // Display name
}

// AuditEntry is one row of the campaign audit log.
type AuditEntry struct {
	ID           string     `json:"id"`            // Unique identifier for the entry
	CampaignID   string     `json:"campaign_id"`   // Campaign the entry belongs to
	ArticleIDs   []int64    `json:"article_ids"`   // Articles included in the campaign
	Subject      string     `json:"subject"`       // Campaign subject line
	Status       string     `json:"status"`        // One of "created", "sending", "sent", "failed"
	CreatedAt    time.Time  `json:"created_at"`    // Timestamp when the entry was recorded
	SentAt       *time.Time `json:"sent_at"`       // Timestamp when sending was confirmed (nil until then)
	ErrorMessage string     `json:"error_message"` // Delivery error detail when Status is "failed"
}

// Audit log status values.
const (
	StatusCreated = "created"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// AuditStats summarizes the audit log.
type AuditStats struct {
	Total   int `json:"total"`   // All recorded campaigns
	Sent    int `json:"sent"`    // Campaigns confirmed sent or sending
	Created int `json:"created"` // Campaigns created but not yet sent
	Failed  int `json:"failed"`  // Campaigns that failed delivery
}
