package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bulletin/internal/config"
	"bulletin/internal/core"
	"bulletin/internal/describe"
	"bulletin/internal/newsletter"
	"bulletin/internal/posts"
	"bulletin/internal/provider"
	"bulletin/internal/sendy"
	"bulletin/internal/store"
	"bulletin/internal/template"
)

func newTestApp(t *testing.T, sendyURL string) *App {
	t.Helper()

	repo := posts.NewMemoryRepository()
	repo.Add(core.Article{
		ID:          1,
		Title:       "Go Release Highlights",
		Content:     "<p>The latest release brings faster builds for everyone involved.</p>",
		URL:         "https://example.com/go-release",
		PublishedAt: time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC),
		FeaturedImage: core.FeaturedImage{
			URL: "https://example.com/images/go.png",
		},
	})
	repo.Add(core.Article{
		ID:          2,
		Title:       "Database Tuning",
		Content:     "<p>Index design and query plans, explained.</p>",
		URL:         "https://example.com/database-tuning",
		PublishedAt: time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
	})

	mock := provider.NewMockProvider()

	cfg := &config.Config{
		Site: config.Site{
			Name:      "Example Site",
			URL:       "https://example.com",
			FromName:  "Example Newsletter",
			FromEmail: "news@example.com",
		},
		Newsletter: config.Newsletter{
			MaxDescriptionWords: 14,
			Template:            "default",
			OutputDirectory:     t.TempDir(),
		},
		Sendy: config.Sendy{
			URL:    sendyURL,
			APIKey: "test-key",
			ListID: "list-abc",
		},
	}

	auditStore, err := store.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { auditStore.Close() })

	registry := template.NewRegistry()
	site := cfg.SiteInfo()

	return &App{
		Config:    cfg,
		Repo:      repo,
		Provider:  mock,
		Generator: describe.NewGenerator(mock, repo, cfg.Newsletter.MaxDescriptionWords, provider.Options{}),
		Templates: registry,
		Builder:   newsletter.NewBuilder(repo, registry, site),
		Delivery:  sendy.NewClient(cfg.Sendy.URL, cfg.Sendy.APIKey, "", site, auditStore),
		Store:     auditStore,
	}
}

func TestSearchArticles(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.SearchArticles(context.Background(), posts.Query{Term: "release"})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	result, okType := resp.Data.(posts.SearchResult)
	if !okType {
		t.Fatalf("Expected SearchResult data, got %T", resp.Data)
	}
	if result.Total != 1 {
		t.Errorf("Expected 1 result, got %d", result.Total)
	}
}

func TestGenerateDescriptions(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.GenerateDescriptions(context.Background(), []int64{1, 2})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	results, okType := resp.Data.(map[int64]core.DescriptionResult)
	if !okType {
		t.Fatalf("Expected description results, got %T", resp.Data)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for id, result := range results {
		if result.Description == "" {
			t.Errorf("Expected description for article %d", id)
		}
	}

	total, _, _, err := a.Store.GenerationStats()
	if err != nil {
		t.Fatalf("Expected stats, got %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 recorded generations, got %d", total)
	}
}

func TestValidateNewsletter(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.ValidateNewsletter(context.Background(), []newsletter.Selection{
		{ArticleID: 1, Description: "A solid summary."},
	}, "This Week at Example Site in Review")
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	data := resp.Data.(map[string]any)
	report := data["newsletter"].(core.ValidationReport)
	if !report.IsValid {
		t.Errorf("Expected valid newsletter, got issues %v", report.Issues)
	}
}

func TestPreviewNewsletter(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.PreviewNewsletter(context.Background(), []newsletter.Selection{
		{ArticleID: 1, Description: "A solid summary."},
	}, core.NewsletterOptions{})
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	assembly := resp.Data.(core.NewsletterAssembly)
	if assembly.PostCount != 1 {
		t.Errorf("Expected 1 post, got %d", assembly.PostCount)
	}
	if !strings.Contains(assembly.HTML, "Go Release Highlights") {
		t.Error("Expected article title in rendered HTML")
	}
}

func TestCreateNewsletter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Campaign created")
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	resp := a.CreateNewsletter(context.Background(), []newsletter.Selection{
		{ArticleID: 1, Description: "A solid summary."},
	}, core.NewsletterOptions{}, "Weekly Digest", "", false)
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	result := resp.Data.(core.CampaignResult)
	if result.CampaignID == "" {
		t.Error("Expected campaign id from audit store")
	}
	if result.SentImmediately {
		t.Error("Expected campaign not sent immediately")
	}
}

func TestPreviewNewsletterEmptySelection(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.PreviewNewsletter(context.Background(), nil, core.NewsletterOptions{})
	if resp.Success {
		t.Fatal("Expected failure for empty selection")
	}
	if !strings.Contains(resp.Error, "no posts selected") {
		t.Errorf("Expected no-posts error, got %q", resp.Error)
	}

	resp = a.ExportNewsletter(context.Background(), nil, core.NewsletterOptions{}, "")
	if resp.Success {
		t.Fatal("Expected export failure for empty selection")
	}
}

func TestCreateNewsletterInvalidSelection(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.CreateNewsletter(context.Background(), []newsletter.Selection{
		{ArticleID: 99},
	}, core.NewsletterOptions{}, "Weekly Digest", "", false)
	if resp.Success {
		t.Fatal("Expected failure for missing article")
	}
	if !strings.Contains(resp.Error, "validation failed") {
		t.Errorf("Unexpected error: %q", resp.Error)
	}
}

func TestScheduleNewsletter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Campaign created")
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	at := time.Date(2025, 9, 2, 8, 0, 0, 0, time.UTC)
	resp := a.ScheduleNewsletter(context.Background(), []newsletter.Selection{
		{ArticleID: 1, Description: "A solid summary."},
	}, core.NewsletterOptions{}, "Weekly Digest", "", at)
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	data := resp.Data.(map[string]any)
	if !data["send_at"].(time.Time).Equal(at) {
		t.Errorf("Expected send time %v, got %v", at, data["send_at"])
	}
}

func TestExportNewsletter(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.ExportNewsletter(context.Background(), []newsletter.Selection{
		{ArticleID: 1, Description: "A solid summary."},
	}, core.NewsletterOptions{}, "digest.html")
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	path := resp.Data.(map[string]any)["path"].(string)
	if !strings.HasSuffix(path, "digest.html") {
		t.Errorf("Unexpected export path: %s", path)
	}
}

func TestActivity(t *testing.T) {
	a := newTestApp(t, "")

	if _, err := a.Store.RecordAudit(core.AuditEntry{Subject: "Old Issue", Status: core.StatusSent}); err != nil {
		t.Fatalf("Failed to seed audit entry: %v", err)
	}
	if err := a.Store.RecordGeneration(1, 9, false); err != nil {
		t.Fatalf("Failed to seed generation record: %v", err)
	}

	resp := a.Activity(context.Background(), 5)
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	data := resp.Data.(map[string]any)
	entries := data["entries"].([]core.AuditEntry)
	if len(entries) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(entries))
	}
	stats := data["stats"].(core.AuditStats)
	if stats.Sent != 1 {
		t.Errorf("Expected 1 sent campaign, got %d", stats.Sent)
	}
	if generated := data["generated"].(int); generated != 1 {
		t.Errorf("Expected 1 generated description, got %d", generated)
	}
	if avg := data["generated_avg_words"].(float64); avg != 9 {
		t.Errorf("Expected average of 9 words, got %v", avg)
	}
}

func TestLists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"list-1","name":"Weekly"}]`)
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)

	resp := a.Lists(context.Background())
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	lists := resp.Data.([]core.List)
	if len(lists) != 1 {
		t.Errorf("Expected 1 list, got %d", len(lists))
	}
}

func TestTestConnections(t *testing.T) {
	a := newTestApp(t, "")

	resp := a.TestConnections(context.Background())
	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}

	status := resp.Data.(map[string]string)
	if status["provider"] != "ok" {
		t.Errorf("Expected provider ok, got %q", status["provider"])
	}
	if status["sendy"] != "not configured" {
		t.Errorf("Expected sendy not configured, got %q", status["sendy"])
	}
}

func TestOperationsRecoverFromPanics(t *testing.T) {
	a := newTestApp(t, "")
	a.Generator = nil

	resp := a.GenerateDescriptions(context.Background(), []int64{1})
	if resp.Success {
		t.Fatal("Expected failure envelope from recovered panic")
	}
	if !strings.Contains(resp.Error, "internal error") {
		t.Errorf("Unexpected error: %q", resp.Error)
	}
}
