// Package app wires the domain packages into one explicit context object and
// exposes the operations the CLI calls. Every operation returns an envelope
// and never panics past its boundary.
package app

import (
	"context"
	"fmt"
	"time"

	"bulletin/internal/config"
	"bulletin/internal/core"
	"bulletin/internal/describe"
	"bulletin/internal/logger"
	"bulletin/internal/newsletter"
	"bulletin/internal/posts"
	"bulletin/internal/provider"
	"bulletin/internal/sendy"
	"bulletin/internal/store"
	"bulletin/internal/template"
	"bulletin/internal/validate"
)

// Response is the envelope every app operation returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(data any) Response {
	return Response{Success: true, Data: data}
}

func fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

// App holds the wired application context. Construct it once in the CLI layer
// and pass it down; nothing in here is a singleton.
type App struct {
	Config    *config.Config
	Repo      posts.Repository
	Provider  provider.Provider
	Generator *describe.Generator
	Templates *template.Registry
	Builder   *newsletter.Builder
	Delivery  *sendy.Client
	Store     *store.Store
}

// New builds the application context from loaded configuration.
func New(cfg *config.Config) (*App, error) {
	repo, err := buildRepository(cfg)
	if err != nil {
		return nil, err
	}

	factory := provider.NewProviderFactory()
	prov, err := factory.CreateProvider(provider.ProviderType(cfg.AI.Provider), providerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating AI provider: %w", err)
	}

	auditStore, err := store.NewStore(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening audit store: %w", err)
	}

	registry := template.NewRegistry()
	site := cfg.SiteInfo()

	generator := describe.NewGenerator(prov, repo, cfg.Newsletter.MaxDescriptionWords, provider.Options{})
	builder := newsletter.NewBuilder(repo, registry, site)
	delivery := sendy.NewClient(cfg.Sendy.URL, cfg.Sendy.APIKey, cfg.Sendy.BrandID, site, auditStore)

	return &App{
		Config:    cfg,
		Repo:      repo,
		Provider:  prov,
		Generator: generator,
		Templates: registry,
		Builder:   builder,
		Delivery:  delivery,
		Store:     auditStore,
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func buildRepository(cfg *config.Config) (posts.Repository, error) {
	if cfg.WordPress.BaseURL != "" {
		return posts.NewWordPressRepository(cfg.WordPress.BaseURL), nil
	}
	// Without a content source configured there is nothing to search, but the
	// pipeline still works for locally added articles and tests.
	return posts.NewMemoryRepository(), nil
}

func providerConfig(cfg *config.Config) map[string]string {
	switch cfg.AI.Provider {
	case "openai":
		return map[string]string{
			"api_key":  cfg.AI.OpenAI.APIKey,
			"model":    cfg.AI.OpenAI.Model,
			"base_url": cfg.AI.OpenAI.BaseURL,
		}
	case "anthropic":
		return map[string]string{
			"api_key": cfg.AI.Anthropic.APIKey,
			"model":   cfg.AI.Anthropic.Model,
		}
	case "gemini":
		return map[string]string{
			"api_key": cfg.AI.Gemini.APIKey,
			"model":   cfg.AI.Gemini.Model,
		}
	case "ollama":
		return map[string]string{
			"base_url": cfg.AI.Ollama.BaseURL,
			"model":    cfg.AI.Ollama.Model,
		}
	default:
		return map[string]string{}
	}
}

// guard converts a panic in an operation into an error envelope.
func guard(resp *Response) {
	if r := recover(); r != nil {
		logger.Error("Recovered panic in app operation", fmt.Errorf("%v", r))
		*resp = Response{Success: false, Error: fmt.Sprintf("internal error: %v", r)}
	}
}

// SearchArticles searches the content repository.
func (a *App) SearchArticles(ctx context.Context, query posts.Query) (resp Response) {
	defer guard(&resp)

	result, err := a.Repo.Search(ctx, query)
	if err != nil {
		return fail(fmt.Errorf("searching articles: %w", err))
	}
	return ok(result)
}

// GenerateDescriptions generates descriptions for the given article ids and
// records usage statistics for each result.
func (a *App) GenerateDescriptions(ctx context.Context, ids []int64) (resp Response) {
	defer guard(&resp)

	results, err := a.Generator.GenerateMany(ctx, ids)
	if err != nil {
		return fail(err)
	}

	for _, result := range results {
		if result.Description == "" {
			continue
		}
		if err := a.Store.RecordGeneration(result.ArticleID, result.WordCount, result.Fallback); err != nil {
			logger.Warn("Failed to record generation stats", "article_id", result.ArticleID, "error", err)
		}
	}

	return ok(results)
}

// ValidateNewsletter runs the pre-flight checks on a selection.
func (a *App) ValidateNewsletter(ctx context.Context, selections []newsletter.Selection, subject string) (resp Response) {
	defer guard(&resp)

	report := a.Builder.Validate(ctx, selections)
	subjectReport := core.ValidationReport{IsValid: true}
	if subject != "" {
		subjectReport = validate.SubjectLine(subject)
	}

	return ok(map[string]any{
		"newsletter": report,
		"subject":    subjectReport,
	})
}

// PreviewNewsletter renders the newsletter and returns the assembly summary.
func (a *App) PreviewNewsletter(ctx context.Context, selections []newsletter.Selection, opts core.NewsletterOptions) (resp Response) {
	defer guard(&resp)

	assembly, err := a.Builder.Preview(ctx, selections, opts)
	if err != nil {
		return fail(err)
	}
	return ok(assembly)
}

// checkPayload runs the campaign payload checks (subject, article ids,
// descriptions) against the resolved articles before anything hits Sendy.
func (a *App) checkPayload(ctx context.Context, selections []newsletter.Selection, subject string) error {
	ids := make([]int64, 0, len(selections))
	descriptions := make(map[int64]string, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ArticleID)
		descriptions[sel.ArticleID] = sel.Description
	}

	articles, err := a.Repo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range articles {
		if d := descriptions[articles[i].ID]; d != "" {
			articles[i].Description = d
		}
	}

	payload := validate.NewsletterData(subject, articles, a.Config.Newsletter.MaxDescriptionWords)
	if !payload.IsValid {
		return fmt.Errorf("newsletter validation failed: %v", payload.Issues)
	}
	return nil
}

// CreateNewsletter builds the newsletter HTML and creates the campaign in
// Sendy, optionally sending it immediately.
func (a *App) CreateNewsletter(ctx context.Context, selections []newsletter.Selection, opts core.NewsletterOptions, subject, listID string, sendNow bool) (resp Response) {
	defer guard(&resp)

	report := a.Builder.Validate(ctx, selections)
	if !report.IsValid {
		return fail(fmt.Errorf("newsletter validation failed: %v", report.Issues))
	}
	if err := a.checkPayload(ctx, selections, subject); err != nil {
		return fail(err)
	}

	html, err := a.Builder.Build(ctx, selections, opts)
	if err != nil {
		return fail(err)
	}

	if listID == "" {
		listID = a.Config.Sendy.ListID
	}

	ids := make([]int64, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ArticleID)
	}

	result, err := a.Delivery.CreateCampaign(ctx, core.CampaignRequest{
		Subject:         subject,
		HTMLContent:     html,
		ListID:          listID,
		SendImmediately: sendNow,
		ArticleIDs:      ids,
	})
	if err != nil {
		return fail(err)
	}
	return ok(result)
}

// ScheduleNewsletter creates the campaign unsent and returns the requested
// send time with the result.
func (a *App) ScheduleNewsletter(ctx context.Context, selections []newsletter.Selection, opts core.NewsletterOptions, subject, listID string, at time.Time) (resp Response) {
	defer guard(&resp)

	report := a.Builder.Validate(ctx, selections)
	if !report.IsValid {
		return fail(fmt.Errorf("newsletter validation failed: %v", report.Issues))
	}
	if err := a.checkPayload(ctx, selections, subject); err != nil {
		return fail(err)
	}

	html, err := a.Builder.Build(ctx, selections, opts)
	if err != nil {
		return fail(err)
	}

	if listID == "" {
		listID = a.Config.Sendy.ListID
	}

	ids := make([]int64, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ArticleID)
	}

	result, sendAt, err := a.Delivery.Schedule(ctx, core.CampaignRequest{
		Subject:     subject,
		HTMLContent: html,
		ListID:      listID,
		ArticleIDs:  ids,
	}, at)
	if err != nil {
		return fail(err)
	}

	return ok(map[string]any{
		"result":  result,
		"send_at": sendAt,
	})
}

// ExportNewsletter renders the newsletter to an HTML file.
func (a *App) ExportNewsletter(ctx context.Context, selections []newsletter.Selection, opts core.NewsletterOptions, filename string) (resp Response) {
	defer guard(&resp)

	path, err := a.Builder.ExportHTML(ctx, selections, opts, a.Config.Newsletter.OutputDirectory, filename)
	if err != nil {
		return fail(err)
	}
	return ok(map[string]any{"path": path})
}

// Lists fetches the Sendy subscriber lists.
func (a *App) Lists(ctx context.Context) (resp Response) {
	defer guard(&resp)

	lists, err := a.Delivery.GetLists(ctx, "")
	if err != nil {
		return fail(err)
	}
	return ok(lists)
}

// Activity returns recent campaign activity and aggregate stats.
func (a *App) Activity(ctx context.Context, limit int) (resp Response) {
	defer guard(&resp)

	entries, err := a.Store.RecentActivity(limit)
	if err != nil {
		return fail(err)
	}
	stats, err := a.Store.Stats()
	if err != nil {
		return fail(err)
	}
	genTotal, genFallbacks, genAvgWords, err := a.Store.GenerationStats()
	if err != nil {
		return fail(err)
	}

	return ok(map[string]any{
		"entries":             entries,
		"stats":               stats,
		"generated":           genTotal,
		"generated_fallbacks": genFallbacks,
		"generated_avg_words": genAvgWords,
	})
}

// TestConnections exercises the configured provider and, when configured,
// the Sendy installation.
func (a *App) TestConnections(ctx context.Context) (resp Response) {
	defer guard(&resp)

	status := map[string]string{}

	if _, err := a.Generator.TestConnection(ctx); err != nil {
		status["provider"] = err.Error()
	} else {
		status["provider"] = "ok"
	}

	if a.Delivery.Configured() {
		if err := a.Delivery.TestConnection(ctx); err != nil {
			status["sendy"] = err.Error()
		} else {
			status["sendy"] = "ok"
		}
	} else {
		status["sendy"] = "not configured"
	}

	for _, v := range status {
		if v != "ok" && v != "not configured" {
			return Response{Success: false, Data: status, Error: "one or more connections failed"}
		}
	}
	return ok(status)
}
