// Package sendy talks to a self-hosted Sendy installation over its form-encoded
// HTTP API. Sendy answers most requests with a bare string token rather than a
// status code, so every call inspects the body against known success tokens and
// translates the rest into readable errors.
package sendy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bulletin/internal/core"
	"bulletin/internal/logger"
	"bulletin/internal/posts"
	"bulletin/internal/store"
)

// Auditor records campaign activity. Every create and send action appends
// its own entry. *store.Store satisfies it.
type Auditor interface {
	RecordAudit(entry core.AuditEntry) (core.AuditEntry, error)
	LatestCreatedCampaignID() (string, error)
}

// Client is a Sendy API client bound to one installation and API key.
type Client struct {
	apiURL     string
	apiKey     string
	brandID    string
	site       core.SiteInfo
	audit      Auditor
	httpClient *http.Client
}

// NewClient creates a Sendy client. audit may be nil, in which case campaign
// activity is not recorded.
func NewClient(apiURL, apiKey, brandID string, site core.SiteInfo, audit Auditor) *Client {
	return &Client{
		apiURL:  strings.TrimRight(apiURL, "/"),
		apiKey:  apiKey,
		brandID: brandID,
		site:    site,
		audit:   audit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client has enough settings to make API calls.
func (c *Client) Configured() bool {
	return c.apiURL != "" && c.apiKey != ""
}

// CreateCampaign creates a campaign in Sendy, optionally sending it
// immediately. Sendy does not return a campaign identifier on create, so the
// returned CampaignID is the identifier of the local audit record.
func (c *Client) CreateCampaign(ctx context.Context, req core.CampaignRequest) (core.CampaignResult, error) {
	if !c.Configured() {
		return core.CampaignResult{}, ErrNotConfigured
	}
	if err := validateRequest(req); err != nil {
		return core.CampaignResult{}, err
	}

	fromName := firstNonEmpty(req.FromName, c.site.FromName, c.site.Name)
	fromEmail := firstNonEmpty(req.FromEmail, c.site.FromEmail)
	replyTo := firstNonEmpty(req.ReplyTo, c.site.ReplyTo, fromEmail)

	plainText := req.PlainText
	if plainText == "" {
		plainText = HTMLToPlainText(req.HTMLContent)
	}

	form := url.Values{}
	form.Set("from_name", fromName)
	form.Set("from_email", fromEmail)
	form.Set("reply_to", replyTo)
	form.Set("subject", req.Subject)
	form.Set("plain_text", plainText)
	form.Set("html_text", req.HTMLContent)
	form.Set("list_ids", req.ListID)
	form.Set("api_key", c.apiKey)
	if req.SendImmediately {
		form.Set("send_campaign", "1")
	} else {
		form.Set("send_campaign", "0")
	}
	if c.brandID != "" {
		form.Set("brand_id", c.brandID)
	}

	body, err := c.postForm(ctx, "/api/campaigns/create.php", form)
	if err != nil {
		c.recordFailure(req, err.Error())
		return core.CampaignResult{}, fmt.Errorf("creating campaign: %w", err)
	}

	var result core.CampaignResult
	switch body {
	case "Campaign created":
		result = core.CampaignResult{
			Success:         true,
			Message:         "Newsletter created successfully",
			SentImmediately: req.SendImmediately,
		}
	case "Campaign created and now sending":
		result = core.CampaignResult{
			Success:         true,
			Message:         "Newsletter created and sent successfully",
			SentImmediately: true,
		}
	default:
		parsed := parseError(body)
		c.recordFailure(req, parsed.Error())
		return core.CampaignResult{}, parsed
	}

	status := core.StatusCreated
	if result.SentImmediately {
		status = core.StatusSent
	}
	result.CampaignID = c.recordCampaign(req, status)

	logger.Info("Campaign created in Sendy",
		"campaign_id", result.CampaignID,
		"list_id", req.ListID,
		"sent_immediately", result.SentImmediately)

	return result, nil
}

// SendCampaign sends a previously created campaign. listID is optional and
// restricts sending to that list.
func (c *Client) SendCampaign(ctx context.Context, campaignID, listID string) (core.CampaignResult, error) {
	if !c.Configured() {
		return core.CampaignResult{}, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("campaign_id", campaignID)
	form.Set("api_key", c.apiKey)
	if listID != "" {
		form.Set("list_ids", listID)
	}

	body, err := c.postForm(ctx, "/api/campaigns/send.php", form)
	if err != nil {
		return core.CampaignResult{}, fmt.Errorf("sending campaign: %w", err)
	}

	if body != "Campaign sent" && body != "Campaign is now sending" {
		parsed := parseError(body)
		c.recordSend(campaignID, core.StatusFailed, parsed.Error())
		return core.CampaignResult{}, parsed
	}

	c.recordSend(campaignID, core.StatusSent, "")

	logger.Info("Campaign sent via Sendy", "campaign_id", campaignID, "list_id", listID)

	return core.CampaignResult{
		Success:    true,
		Message:    "Newsletter sent successfully",
		CampaignID: campaignID,
	}, nil
}

// Schedule creates the campaign without sending it and returns the requested
// send time alongside the result. Actual dispatch at that time is up to the
// caller; Sendy itself has no scheduling API.
func (c *Client) Schedule(ctx context.Context, req core.CampaignRequest, at time.Time) (core.CampaignResult, time.Time, error) {
	req.SendImmediately = false
	result, err := c.CreateCampaign(ctx, req)
	if err != nil {
		return core.CampaignResult{}, time.Time{}, err
	}
	result.Message = "Newsletter scheduled successfully"
	return result, at, nil
}

// GetLists fetches the subscriber lists visible to the API key. brandID
// overrides the client's configured brand when non-empty.
func (c *Client) GetLists(ctx context.Context, brandID string) ([]core.List, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	if brandID == "" {
		brandID = c.brandID
	}

	form := url.Values{}
	form.Set("api_key", c.apiKey)
	if brandID != "" {
		form.Set("brand_id", brandID)
	}

	body, err := c.postForm(ctx, "/api/lists/get-lists.php", form)
	if err != nil {
		return nil, fmt.Errorf("fetching lists: %w", err)
	}

	var lists []core.List
	if err := json.Unmarshal([]byte(body), &lists); err != nil {
		return nil, parseError(body)
	}
	return lists, nil
}

// Subscribe adds an email address to a list. name is optional.
func (c *Client) Subscribe(ctx context.Context, email, name, listID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("list", listID)
	form.Set("api_key", c.apiKey)
	form.Set("boolean", "true")
	if name != "" {
		form.Set("name", name)
	}

	body, err := c.postForm(ctx, "/subscribe", form)
	if err != nil {
		return fmt.Errorf("subscribing %s: %w", email, err)
	}
	if body != "1" {
		return parseError(body)
	}
	return nil
}

// Unsubscribe removes an email address from a list.
func (c *Client) Unsubscribe(ctx context.Context, email, listID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	form := url.Values{}
	form.Set("email", email)
	form.Set("list", listID)
	form.Set("api_key", c.apiKey)
	form.Set("boolean", "true")

	body, err := c.postForm(ctx, "/unsubscribe", form)
	if err != nil {
		return fmt.Errorf("unsubscribing %s: %w", email, err)
	}
	if body != "1" {
		return parseError(body)
	}
	return nil
}

// SubscriberCount returns the number of active subscribers on a list.
func (c *Client) SubscriberCount(ctx context.Context, listID string) (int, error) {
	if !c.Configured() {
		return 0, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("list_id", listID)
	form.Set("api_key", c.apiKey)

	body, err := c.postForm(ctx, "/api/subscribers/active-subscriber-count.php", form)
	if err != nil {
		return 0, fmt.Errorf("fetching subscriber count: %w", err)
	}

	count, err := strconv.Atoi(body)
	if err != nil {
		return 0, parseError(body)
	}
	return count, nil
}

// TestConnection verifies the URL and API key by listing subscriber lists.
func (c *Client) TestConnection(ctx context.Context) error {
	lists, err := c.GetLists(ctx, "")
	if err != nil {
		return err
	}
	logger.Info("Sendy connection verified", "lists", len(lists))
	return nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) recordCampaign(req core.CampaignRequest, status string) string {
	if c.audit == nil {
		return ""
	}
	entry, err := c.audit.RecordAudit(core.AuditEntry{
		ArticleIDs: req.ArticleIDs,
		Subject:    req.Subject,
		Status:     status,
	})
	if err != nil {
		logger.Warn("Failed to record campaign audit", "subject", req.Subject, "error", err)
		if status == core.StatusCreated {
			if id, lookupErr := c.audit.LatestCreatedCampaignID(); lookupErr == nil {
				return id
			}
		}
		return ""
	}
	return entry.CampaignID
}

// recordSend appends an audit entry for a send attempt. The campaign id ties
// it to the create entry.
func (c *Client) recordSend(campaignID, status, errorMessage string) {
	if c.audit == nil {
		return
	}
	now := time.Now().UTC()
	_, err := c.audit.RecordAudit(core.AuditEntry{
		CampaignID:   campaignID,
		Status:       status,
		SentAt:       &now,
		ErrorMessage: errorMessage,
	})
	if err != nil {
		logger.Warn("Failed to record send audit", "campaign_id", campaignID, "error", err)
	}
}

func (c *Client) recordFailure(req core.CampaignRequest, message string) {
	if c.audit == nil {
		return
	}
	_, err := c.audit.RecordAudit(core.AuditEntry{
		ArticleIDs:   req.ArticleIDs,
		Subject:      req.Subject,
		Status:       core.StatusFailed,
		ErrorMessage: message,
	})
	if err != nil {
		logger.Warn("Failed to record campaign audit", "subject", req.Subject, "error", err)
	}
}

func validateRequest(req core.CampaignRequest) error {
	if strings.TrimSpace(req.Subject) == "" {
		return fmt.Errorf("%w: subject", ErrMissingField)
	}
	if strings.TrimSpace(req.HTMLContent) == "" {
		return fmt.Errorf("%w: html content", ErrMissingField)
	}
	if strings.TrimSpace(req.ListID) == "" {
		return fmt.Errorf("%w: list id", ErrMissingField)
	}
	return nil
}

// HTMLToPlainText derives the plain-text body Sendy expects alongside the
// HTML version of a campaign.
func HTMLToPlainText(html string) string {
	return posts.StripTags(html)
}

func parseError(response string) error {
	if msg, ok := errorMessages[response]; ok {
		return fmt.Errorf("%s", msg)
	}
	return fmt.Errorf("Sendy error: %s", response)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ Auditor = (*store.Store)(nil)
