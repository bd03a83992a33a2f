package sendy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bulletin/internal/core"
)

type fakeAuditor struct {
	entries   []core.AuditEntry
	recordErr error
	latestID  string
	nextID    int
}

func (f *fakeAuditor) RecordAudit(entry core.AuditEntry) (core.AuditEntry, error) {
	if f.recordErr != nil {
		return core.AuditEntry{}, f.recordErr
	}
	if entry.CampaignID == "" {
		f.nextID++
		entry.CampaignID = fmt.Sprintf("campaign-%d", f.nextID)
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeAuditor) LatestCreatedCampaignID() (string, error) {
	if f.latestID == "" {
		return "", errors.New("no campaigns recorded")
	}
	return f.latestID, nil
}

func newTestClient(serverURL string, audit Auditor) *Client {
	site := core.SiteInfo{
		Name:      "Example Site",
		FromName:  "Example Newsletter",
		FromEmail: "news@example.com",
		ReplyTo:   "replies@example.com",
	}
	return NewClient(serverURL, "test-api-key", "", site, audit)
}

func campaignRequest() core.CampaignRequest {
	return core.CampaignRequest{
		Subject:     "Weekly Digest",
		HTMLContent: "<h1>Hello</h1><p>This week in review.</p>",
		ListID:      "list-abc",
		ArticleIDs:  []int64{1, 2},
	}
}

func TestCreateCampaign(t *testing.T) {
	var gotForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/campaigns/create.php" {
			t.Errorf("Expected path /api/campaigns/create.php, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("Expected form body, got error: %v", err)
		}
		gotForm = map[string]string{}
		for key := range r.PostForm {
			gotForm[key] = r.PostForm.Get(key)
		}
		fmt.Fprint(w, "Campaign created")
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	result, err := client.CreateCampaign(context.Background(), campaignRequest())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !result.Success {
		t.Error("Expected success result")
	}
	if result.SentImmediately {
		t.Error("Expected campaign not to be sent immediately")
	}
	if result.CampaignID != "campaign-1" {
		t.Errorf("Expected campaign ID from audit record, got %q", result.CampaignID)
	}

	if gotForm["from_name"] != "Example Newsletter" {
		t.Errorf("Expected from_name from site info, got %q", gotForm["from_name"])
	}
	if gotForm["reply_to"] != "replies@example.com" {
		t.Errorf("Expected reply_to from site info, got %q", gotForm["reply_to"])
	}
	if gotForm["list_ids"] != "list-abc" {
		t.Errorf("Expected list_ids list-abc, got %q", gotForm["list_ids"])
	}
	if gotForm["send_campaign"] != "0" {
		t.Errorf("Expected send_campaign 0, got %q", gotForm["send_campaign"])
	}
	if gotForm["plain_text"] != "Hello This week in review." {
		t.Errorf("Expected derived plain text, got %q", gotForm["plain_text"])
	}
	if gotForm["api_key"] != "test-api-key" {
		t.Errorf("Expected api_key to be sent, got %q", gotForm["api_key"])
	}

	if len(audit.entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].Status != core.StatusCreated {
		t.Errorf("Expected status created, got %s", audit.entries[0].Status)
	}
}

func TestCreateCampaignSendImmediately(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("send_campaign") != "1" {
			t.Errorf("Expected send_campaign 1, got %q", r.PostForm.Get("send_campaign"))
		}
		fmt.Fprint(w, "Campaign created and now sending")
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	req := campaignRequest()
	req.SendImmediately = true

	result, err := client.CreateCampaign(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.SentImmediately {
		t.Error("Expected sent_immediately to be true")
	}
	if audit.entries[0].Status != core.StatusSent {
		t.Errorf("Expected status sent, got %s", audit.entries[0].Status)
	}
}

func TestCreateCampaignMissingFields(t *testing.T) {
	client := newTestClient("http://sendy.example.com", nil)

	cases := []struct {
		name   string
		mutate func(*core.CampaignRequest)
	}{
		{"missing subject", func(r *core.CampaignRequest) { r.Subject = "" }},
		{"missing html", func(r *core.CampaignRequest) { r.HTMLContent = "" }},
		{"missing list", func(r *core.CampaignRequest) { r.ListID = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := campaignRequest()
			tc.mutate(&req)
			_, err := client.CreateCampaign(context.Background(), req)
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("Expected ErrMissingField, got %v", err)
			}
		})
	}
}

func TestCreateCampaignSendyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Invalid API key")
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	_, err := client.CreateCampaign(context.Background(), campaignRequest())
	if err == nil {
		t.Fatal("Expected error for Sendy failure response")
	}
	if err.Error() != "Invalid Sendy API key" {
		t.Errorf("Expected translated error message, got %q", err.Error())
	}

	if len(audit.entries) != 1 {
		t.Fatalf("Expected failure audit entry, got %d entries", len(audit.entries))
	}
	if audit.entries[0].Status != core.StatusFailed {
		t.Errorf("Expected status failed, got %s", audit.entries[0].Status)
	}
	if audit.entries[0].ErrorMessage != "Invalid Sendy API key" {
		t.Errorf("Expected error message recorded, got %q", audit.entries[0].ErrorMessage)
	}
}

func TestCreateCampaignUnknownError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Something unexpected")
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.CreateCampaign(context.Background(), campaignRequest())
	if err == nil {
		t.Fatal("Expected error")
	}
	if err.Error() != "Sendy error: Something unexpected" {
		t.Errorf("Expected generic Sendy error, got %q", err.Error())
	}
}

func TestCreateCampaignNotConfigured(t *testing.T) {
	client := NewClient("", "", "", core.SiteInfo{}, nil)
	_, err := client.CreateCampaign(context.Background(), campaignRequest())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestSendCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/campaigns/send.php" {
			t.Errorf("Expected path /api/campaigns/send.php, got %s", r.URL.Path)
		}
		r.ParseForm()
		if r.PostForm.Get("campaign_id") != "campaign-7" {
			t.Errorf("Expected campaign_id campaign-7, got %q", r.PostForm.Get("campaign_id"))
		}
		fmt.Fprint(w, "Campaign sent")
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	result, err := client.SendCampaign(context.Background(), "campaign-7", "list-abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Success {
		t.Error("Expected success result")
	}
	if len(audit.entries) != 1 {
		t.Fatalf("Expected 1 send audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].CampaignID != "campaign-7" || audit.entries[0].Status != core.StatusSent {
		t.Errorf("Expected sent entry for campaign-7, got %+v", audit.entries[0])
	}
	if audit.entries[0].SentAt == nil {
		t.Error("Expected SentAt on the send entry")
	}
}

func TestSendCampaignFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Campaign not sent")
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	_, err := client.SendCampaign(context.Background(), "campaign-7", "")
	if err == nil {
		t.Fatal("Expected error")
	}
	if err.Error() != "Failed to send campaign" {
		t.Errorf("Expected translated error, got %q", err.Error())
	}
	if len(audit.entries) != 1 {
		t.Fatalf("Expected 1 send audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].CampaignID != "campaign-7" || audit.entries[0].Status != core.StatusFailed {
		t.Errorf("Expected failed entry for campaign-7, got %+v", audit.entries[0])
	}
	if audit.entries[0].ErrorMessage != "Failed to send campaign" {
		t.Errorf("Expected error message recorded, got %q", audit.entries[0].ErrorMessage)
	}
}

func TestCreateThenSendAppendsTwoEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/campaigns/create.php":
			fmt.Fprint(w, "Campaign created")
		case "/api/campaigns/send.php":
			fmt.Fprint(w, "Campaign sent")
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	created, err := client.CreateCampaign(context.Background(), campaignRequest())
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	if _, err := client.SendCampaign(context.Background(), created.CampaignID, "list-abc"); err != nil {
		t.Fatalf("SendCampaign failed: %v", err)
	}

	if len(audit.entries) != 2 {
		t.Fatalf("Expected one audit entry per action, got %d", len(audit.entries))
	}
	if audit.entries[0].Status != core.StatusCreated {
		t.Errorf("Expected created entry first, got %s", audit.entries[0].Status)
	}
	if audit.entries[1].Status != core.StatusSent || audit.entries[1].CampaignID != created.CampaignID {
		t.Errorf("Expected send entry for %s, got %+v", created.CampaignID, audit.entries[1])
	}
}

func TestCreateCampaignAuditFallbackID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Campaign created")
	}))
	defer server.Close()

	audit := &fakeAuditor{recordErr: errors.New("database is locked"), latestID: "campaign-42"}
	client := newTestClient(server.URL, audit)

	result, err := client.CreateCampaign(context.Background(), campaignRequest())
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	if result.CampaignID != "campaign-42" {
		t.Errorf("Expected fallback campaign id campaign-42, got %q", result.CampaignID)
	}
}

func TestGetLists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/lists/get-lists.php" {
			t.Errorf("Expected path /api/lists/get-lists.php, got %s", r.URL.Path)
		}
		fmt.Fprint(w, `[{"id":"list-1","name":"Weekly"},{"id":"list-2","name":"Monthly"}]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	lists, err := client.GetLists(context.Background(), "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("Expected 2 lists, got %d", len(lists))
	}
	if lists[0].ID != "list-1" || lists[0].Name != "Weekly" {
		t.Errorf("Unexpected first list: %+v", lists[0])
	}
}

func TestGetListsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Invalid API key")
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.GetLists(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error")
	}
	if err.Error() != "Invalid Sendy API key" {
		t.Errorf("Expected translated error, got %q", err.Error())
	}
}

func TestSubscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscribe" {
			t.Errorf("Expected path /subscribe, got %s", r.URL.Path)
		}
		r.ParseForm()
		if r.PostForm.Get("email") != "reader@example.com" {
			t.Errorf("Expected email reader@example.com, got %q", r.PostForm.Get("email"))
		}
		if r.PostForm.Get("list") != "list-abc" {
			t.Errorf("Expected list list-abc, got %q", r.PostForm.Get("list"))
		}
		if r.PostForm.Get("boolean") != "true" {
			t.Errorf("Expected boolean true, got %q", r.PostForm.Get("boolean"))
		}
		if r.PostForm.Get("name") != "Reader" {
			t.Errorf("Expected name Reader, got %q", r.PostForm.Get("name"))
		}
		fmt.Fprint(w, "1")
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	if err := client.Subscribe(context.Background(), "reader@example.com", "Reader", "list-abc"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/unsubscribe" {
			t.Errorf("Expected path /unsubscribe, got %s", r.URL.Path)
		}
		fmt.Fprint(w, "1")
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	if err := client.Unsubscribe(context.Background(), "reader@example.com", "list-abc"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestSubscriberCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/subscribers/active-subscriber-count.php" {
			t.Errorf("Expected subscriber count path, got %s", r.URL.Path)
		}
		fmt.Fprint(w, "1523")
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	count, err := client.SubscriberCount(context.Background(), "list-abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if count != 1523 {
		t.Errorf("Expected count 1523, got %d", count)
	}
}

func TestSubscriberCountError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "List does not exist")
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	_, err := client.SubscriberCount(context.Background(), "list-missing")
	if err == nil {
		t.Fatal("Expected error")
	}
	if err.Error() != "The specified list does not exist" {
		t.Errorf("Expected translated error, got %q", err.Error())
	}
}

func TestTestConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"list-1","name":"Weekly"}]`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)

	if err := client.TestConnection(context.Background()); err != nil {
		t.Errorf("Expected connection test to pass, got %v", err)
	}
}

func TestSchedule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("send_campaign") != "0" {
			t.Errorf("Expected scheduled campaign created unsent, got send_campaign=%q", r.PostForm.Get("send_campaign"))
		}
		fmt.Fprint(w, "Campaign created")
	}))
	defer server.Close()

	audit := &fakeAuditor{}
	client := newTestClient(server.URL, audit)

	at := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	result, sendAt, err := client.Schedule(context.Background(), campaignRequest(), at)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !sendAt.Equal(at) {
		t.Errorf("Expected send time handed back, got %v", sendAt)
	}
	if result.SentImmediately {
		t.Error("Expected scheduled campaign not sent immediately")
	}
	if result.Message != "Newsletter scheduled successfully" {
		t.Errorf("Unexpected message: %q", result.Message)
	}
}

func TestHTMLToPlainText(t *testing.T) {
	got := HTMLToPlainText("<h1>Title</h1>\n<p>Some   body\ntext.</p>")
	if got != "Title Some body text." {
		t.Errorf("Expected collapsed plain text, got %q", got)
	}
}
