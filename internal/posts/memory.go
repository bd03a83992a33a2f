package posts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bulletin/internal/core"
)

// MemoryRepository is an in-memory Repository used in tests and local runs.
type MemoryRepository struct {
	mu       sync.RWMutex
	articles map[int64]core.Article
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{articles: make(map[int64]core.Article)}
}

// Add stores or replaces an article. Derived fields (excerpt, word count)
// are filled in when missing.
func (r *MemoryRepository) Add(article core.Article) {
	if article.Excerpt == "" {
		article.Excerpt = SmartExcerpt(article.Content, DefaultExcerptLength)
	}
	if article.WordCount == 0 {
		article.WordCount = WordCount(article.Content)
	}

	r.mu.Lock()
	r.articles[article.ID] = article
	r.mu.Unlock()
}

// Search returns one page of matching articles, newest first.
func (r *MemoryRepository) Search(ctx context.Context, query Query) (SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	excluded := make(map[int64]struct{}, len(query.Exclude))
	for _, id := range query.Exclude {
		excluded[id] = struct{}{}
	}

	var matches []core.Article
	for _, article := range r.articles {
		if _, skip := excluded[article.ID]; skip {
			continue
		}
		if !r.matches(article, query) {
			continue
		}
		matches = append(matches, article)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].PublishedAt.After(matches[j].PublishedAt)
	})

	total := len(matches)
	pages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return SearchResult{
		Articles: matches[start:end],
		Total:    total,
		Pages:    pages,
	}, nil
}

func (r *MemoryRepository) matches(article core.Article, query Query) bool {
	if query.Term != "" {
		term := strings.ToLower(query.Term)
		if !strings.Contains(strings.ToLower(article.Title), term) &&
			!strings.Contains(strings.ToLower(article.Content), term) {
			return false
		}
	}
	if query.FeaturedOnly && !article.FeaturedImage.HasImage() {
		return false
	}
	if !query.After.IsZero() && article.PublishedAt.Before(query.After) {
		return false
	}
	if !query.Before.IsZero() && article.PublishedAt.After(query.Before) {
		return false
	}
	if len(query.Categories) > 0 {
		found := false
		for _, want := range query.Categories {
			for _, have := range article.Categories {
				if strings.EqualFold(want, have) {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// GetByID returns a single article or ErrNotFound.
func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*core.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.articles[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return &article, nil
}

// GetByIDs returns articles in the caller-given order, skipping missing ids.
func (r *MemoryRepository) GetByIDs(ctx context.Context, ids []int64) ([]core.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	articles := make([]core.Article, 0, len(ids))
	for _, id := range ids {
		if article, ok := r.articles[id]; ok {
			articles = append(articles, article)
		}
	}
	return articles, nil
}
