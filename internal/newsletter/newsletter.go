// Package newsletter assembles article selections into a rendered, email-ready
// HTML newsletter.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bulletin/internal/core"
	"bulletin/internal/posts"
	"bulletin/internal/template"
	"bulletin/internal/words"
)

// longDescriptionWords is the length above which a description draws a warning.
const longDescriptionWords = 20

// previewTextLimit caps the plain-text preview derived from rendered HTML.
const previewTextLimit = 500

// ErrNoSelection is returned when a build is attempted without any articles
// selected. An empty newsletter is never rendered.
var ErrNoSelection = errors.New("no posts selected")

// Selection pairs an article with the description chosen for it.
type Selection struct {
	ArticleID   int64
	Description string
}

// Builder renders newsletters from a post repository and a template registry.
type Builder struct {
	repo     posts.Repository
	registry *template.Registry
	site     core.SiteInfo
}

func NewBuilder(repo posts.Repository, registry *template.Registry, site core.SiteInfo) *Builder {
	return &Builder{
		repo:     repo,
		registry: registry,
		site:     site,
	}
}

// DefaultOptions returns the rendering options used when the caller does not
// override them.
func DefaultOptions(siteName string) core.NewsletterOptions {
	return core.NewsletterOptions{
		Template:           template.DefaultName,
		HeaderText:         siteName + " Newsletter",
		FooterText:         "Thanks for reading!",
		BrandColor:         "#2271b1",
		BackgroundColor:    "#f0f0f1",
		IncludeSocialLinks: true,
		IncludeUnsubscribe: true,
	}
}

// Build renders the newsletter HTML for the given selections. An empty
// selection is an error; articles that cannot be loaded are skipped, and
// Validate reports them.
func (b *Builder) Build(ctx context.Context, selections []Selection, opts core.NewsletterOptions) (string, error) {
	html, _, err := b.assemble(ctx, selections, opts)
	return html, err
}

// assemble renders the newsletter and reports how many articles actually made
// it into the output.
func (b *Builder) assemble(ctx context.Context, selections []Selection, opts core.NewsletterOptions) (string, int, error) {
	if len(selections) == 0 {
		return "", 0, ErrNoSelection
	}

	opts = b.fillOptions(opts)

	ids := make([]int64, 0, len(selections))
	descriptions := make(map[int64]string, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.ArticleID)
		descriptions[sel.ArticleID] = sel.Description
	}

	articles, err := b.repo.GetByIDs(ctx, ids)
	if err != nil {
		return "", 0, fmt.Errorf("loading articles: %w", err)
	}

	items := make([]map[string]any, 0, len(articles))
	for _, article := range articles {
		description := descriptions[article.ID]
		if description == "" {
			description = article.Description
		}
		items = append(items, map[string]any{
			"id":                 article.ID,
			"title":              article.Title,
			"custom_description": description,
			"permalink":          article.URL,
			"date":               article.PublishedAt.Format("January 2, 2006"),
			"categories":         article.Categories,
			"featured_image": map[string]any{
				"url": article.FeaturedImage.URL,
				"alt": article.FeaturedImage.Alt,
			},
		})
	}

	data := map[string]any{
		"posts":        items,
		"options":      optionsData(opts),
		"site_info":    b.siteData(),
		"social_links": b.socialLinks(),
	}

	html, err := b.registry.Render(opts.Template, data)
	if err != nil {
		return "", 0, fmt.Errorf("rendering newsletter: %w", err)
	}
	return html, len(articles), nil
}

// Preview renders the newsletter and wraps it with summary information for
// display before sending.
func (b *Builder) Preview(ctx context.Context, selections []Selection, opts core.NewsletterOptions) (core.NewsletterAssembly, error) {
	html, count, err := b.assemble(ctx, selections, opts)
	if err != nil {
		return core.NewsletterAssembly{}, err
	}

	return core.NewsletterAssembly{
		HTML:          html,
		PreviewText:   textPreview(html),
		EstimatedSize: len(html),
		PostCount:     count,
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// Validate checks a selection for problems before building. Missing articles
// are errors; missing images and weak descriptions are warnings.
func (b *Builder) Validate(ctx context.Context, selections []Selection) core.ValidationReport {
	report := core.ValidationReport{}

	if len(selections) == 0 {
		report.Issues = append(report.Issues, "no articles selected for newsletter")
		return report
	}

	for i, sel := range selections {
		article, err := b.repo.GetByID(ctx, sel.ArticleID)
		if err != nil {
			report.Issues = append(report.Issues, fmt.Sprintf("article #%d not found", i+1))
			continue
		}

		if !article.FeaturedImage.HasImage() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("article %q has no featured image", article.Title))
		}

		if sel.Description == "" {
			report.Warnings = append(report.Warnings, fmt.Sprintf("article %q has no description", article.Title))
		} else if count := words.Count(sel.Description); count > longDescriptionWords {
			report.Warnings = append(report.Warnings, fmt.Sprintf("description for %q is quite long (%d words)", article.Title, count))
		}
	}

	report.IsValid = len(report.Issues) == 0
	return report
}

// ExportHTML writes the rendered newsletter to a file in dir and returns the
// full path. An empty filename gets a timestamped default.
func (b *Builder) ExportHTML(ctx context.Context, selections []Selection, opts core.NewsletterOptions, dir, filename string) (string, error) {
	html, err := b.Build(ctx, selections, opts)
	if err != nil {
		return "", err
	}

	if filename == "" {
		filename = "newsletter_" + time.Now().Format("2006-01-02_15-04-05") + ".html"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing newsletter file: %w", err)
	}
	return path, nil
}

// Templates lists the registered template names.
func (b *Builder) Templates() []string {
	return b.registry.Names()
}

func (b *Builder) fillOptions(opts core.NewsletterOptions) core.NewsletterOptions {
	defaults := DefaultOptions(b.site.Name)
	if opts.Template == "" {
		opts.Template = defaults.Template
	}
	if opts.HeaderText == "" {
		opts.HeaderText = defaults.HeaderText
	}
	if opts.FooterText == "" {
		opts.FooterText = defaults.FooterText
	}
	if opts.BrandColor == "" {
		opts.BrandColor = defaults.BrandColor
	}
	if opts.BackgroundColor == "" {
		opts.BackgroundColor = defaults.BackgroundColor
	}
	return opts
}

func (b *Builder) siteData() map[string]any {
	return map[string]any{
		"name":     b.site.Name,
		"url":      b.site.URL,
		"tagline":  b.site.Tagline,
		"logo_url": b.site.LogoURL,
	}
}

func (b *Builder) socialLinks() []map[string]any {
	names := make([]string, 0, len(b.site.SocialLinks))
	for name := range b.site.SocialLinks {
		names = append(names, name)
	}
	sort.Strings(names)

	links := make([]map[string]any, 0, len(names))
	for _, name := range names {
		links = append(links, map[string]any{
			"name": name,
			"url":  b.site.SocialLinks[name],
		})
	}
	return links
}

func optionsData(opts core.NewsletterOptions) map[string]any {
	return map[string]any{
		"header_text":          opts.HeaderText,
		"footer_text":          opts.FooterText,
		"brand_color":          opts.BrandColor,
		"background_color":     opts.BackgroundColor,
		"include_social_links": opts.IncludeSocialLinks,
		"include_unsubscribe":  opts.IncludeUnsubscribe,
	}
}

func textPreview(html string) string {
	text := posts.StripTags(html)
	if len(text) > previewTextLimit {
		text = text[:previewTextLimit] + "..."
	}
	return text
}
