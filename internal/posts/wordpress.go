package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bulletin/internal/core"
)

// WordPressRepository implements Repository against the WordPress REST API
// (wp/v2). Only published posts are returned.
type WordPressRepository struct {
	baseURL string
	client  *http.Client
}

// NewWordPressRepository creates a repository for the site at baseURL
// (e.g. "https://example.com").
func NewWordPressRepository(baseURL string) *WordPressRepository {
	return &WordPressRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// wpPost mirrors the fields of a wp/v2 post response used here.
type wpPost struct {
	ID    int64 `json:"id"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
	Excerpt struct {
		Rendered string `json:"rendered"`
	} `json:"excerpt"`
	Link     string `json:"link"`
	Date     string `json:"date"`
	Embedded struct {
		FeaturedMedia []struct {
			SourceURL string `json:"source_url"`
			AltText   string `json:"alt_text"`
			Media     struct {
				Width  int `json:"width"`
				Height int `json:"height"`
			} `json:"media_details"`
		} `json:"wp:featuredmedia"`
		Terms [][]struct {
			Name     string `json:"name"`
			Taxonomy string `json:"taxonomy"`
		} `json:"wp:term"`
	} `json:"_embedded"`
}

// Search queries the posts endpoint. Date and category filters are passed
// through to the API; FeaturedOnly is applied client-side.
func (r *WordPressRepository) Search(ctx context.Context, query Query) (SearchResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	params := url.Values{}
	params.Set("status", "publish")
	params.Set("per_page", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("orderby", "date")
	params.Set("order", "desc")
	params.Set("_embed", "1")
	if query.Term != "" {
		params.Set("search", query.Term)
	}
	if !query.After.IsZero() {
		params.Set("after", query.After.Format(time.RFC3339))
	}
	if !query.Before.IsZero() {
		params.Set("before", query.Before.Format(time.RFC3339))
	}
	if len(query.Exclude) > 0 {
		excluded := make([]string, len(query.Exclude))
		for i, id := range query.Exclude {
			excluded[i] = strconv.FormatInt(id, 10)
		}
		params.Set("exclude", strings.Join(excluded, ","))
	}

	var raw []wpPost
	total, pages, err := r.getJSON(ctx, "/wp-json/wp/v2/posts?"+params.Encode(), &raw)
	if err != nil {
		return SearchResult{}, err
	}

	articles := make([]core.Article, 0, len(raw))
	for _, p := range raw {
		article := p.toArticle()
		if query.FeaturedOnly && !article.FeaturedImage.HasImage() {
			continue
		}
		articles = append(articles, article)
	}

	return SearchResult{Articles: articles, Total: total, Pages: pages}, nil
}

// GetByID fetches a single post. A 404 maps to ErrNotFound.
func (r *WordPressRepository) GetByID(ctx context.Context, id int64) (*core.Article, error) {
	var raw wpPost
	_, _, err := r.getJSON(ctx, fmt.Sprintf("/wp-json/wp/v2/posts/%d?_embed=1", id), &raw)
	if err != nil {
		return nil, err
	}

	article := raw.toArticle()
	return &article, nil
}

// GetByIDs fetches posts one by one, preserving order and skipping ids that
// do not resolve.
func (r *WordPressRepository) GetByIDs(ctx context.Context, ids []int64) ([]core.Article, error) {
	articles := make([]core.Article, 0, len(ids))
	for _, id := range ids {
		article, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		articles = append(articles, *article)
	}
	return articles, nil
}

// getJSON performs a GET and decodes the response, returning the total and
// page counts from the WordPress pagination headers when present.
func (r *WordPressRepository) getJSON(ctx context.Context, path string, out any) (total, pages int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, 0, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return 0, 0, fmt.Errorf("WordPress API error: status %d body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}

	total, _ = strconv.Atoi(resp.Header.Get("X-WP-Total"))
	pages, _ = strconv.Atoi(resp.Header.Get("X-WP-TotalPages"))
	return total, pages, nil
}

func (p wpPost) toArticle() core.Article {
	article := core.Article{
		ID:        p.ID,
		Title:     StripTags(p.Title.Rendered),
		Content:   p.Content.Rendered,
		Excerpt:   StripTags(p.Excerpt.Rendered),
		URL:       p.Link,
		WordCount: WordCount(p.Content.Rendered),
	}

	if article.Excerpt == "" {
		article.Excerpt = SmartExcerpt(p.Content.Rendered, DefaultExcerptLength)
	}

	if published, err := time.Parse("2006-01-02T15:04:05", p.Date); err == nil {
		article.PublishedAt = published
	}

	if media := p.Embedded.FeaturedMedia; len(media) > 0 && media[0].SourceURL != "" {
		article.FeaturedImage = core.FeaturedImage{
			URL:    media[0].SourceURL,
			Alt:    media[0].AltText,
			Width:  media[0].Media.Width,
			Height: media[0].Media.Height,
		}
		if article.FeaturedImage.Alt == "" {
			article.FeaturedImage.Alt = article.Title
		}
	}

	for _, group := range p.Embedded.Terms {
		for _, term := range group {
			if term.Taxonomy == "category" {
				article.Categories = append(article.Categories, term.Name)
			}
		}
	}

	return article
}
