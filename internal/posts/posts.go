package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bulletin/internal/core"
	"bulletin/internal/words"
)

// ErrNotFound is returned when a requested article does not exist
var ErrNotFound = errors.New("article not found")

// DefaultExcerptLength is the character budget for generated excerpts.
const DefaultExcerptLength = 100

// promptContentWords caps how much article content is handed to generation
// prompts and newsletter assembly.
const promptContentWords = 300

// Query describes an article search.
type Query struct {
	Term         string    // Full-text search term (empty matches everything)
	Limit        int       // Maximum articles per page (default 10)
	Page         int       // 1-based page number
	Categories   []string  // Restrict to these category names
	After        time.Time // Only articles published after this time
	Before       time.Time // Only articles published before this time
	FeaturedOnly bool      // Only articles with a featured image
	Exclude      []int64   // Article ids to skip
}

// SearchResult is one page of matching articles.
type SearchResult struct {
	Articles []core.Article `json:"articles"` // Matching articles, newest first
	Total    int            `json:"total"`    // Total matches across all pages
	Pages    int            `json:"pages"`    // Total page count
}

// Repository provides article access for search, description generation, and
// newsletter assembly.
type Repository interface {
	// Search returns one page of articles matching the query, newest first
	Search(ctx context.Context, query Query) (SearchResult, error)

	// GetByID returns a single article or ErrNotFound
	GetByID(ctx context.Context, id int64) (*core.Article, error)

	// GetByIDs returns articles in the caller-given order, skipping ids
	// that do not resolve
	GetByIDs(ctx context.Context, ids []int64) ([]core.Article, error)
}

// StripTags removes HTML markup, including script and style bodies, and
// collapses whitespace.
func StripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// CleanContent prepares article content for prompts and rendering: markup is
// stripped, whitespace collapsed, and the text capped at 300 words with an
// ellipsis when cut.
func CleanContent(html string) string {
	text := StripTags(html)
	fields := strings.Fields(text)
	if len(fields) <= promptContentWords {
		return text
	}
	return strings.Join(fields[:promptContentWords], " ") + "..."
}

// SmartExcerpt derives an excerpt from content. It prefers cutting at a
// sentence boundary when one lands inside the final 30% of the window,
// otherwise it falls back to a word boundary with an ellipsis.
func SmartExcerpt(content string, length int) string {
	if length <= 0 {
		length = DefaultExcerptLength
	}

	text := StripTags(content)
	if len(text) <= length {
		return text
	}

	excerpt := text[:length]
	if idx := strings.LastIndex(excerpt, "."); idx != -1 && idx > int(float64(length)*0.7) {
		return excerpt[:idx+1]
	}

	if idx := strings.LastIndex(excerpt, " "); idx != -1 {
		return excerpt[:idx] + "..."
	}
	return excerpt + "..."
}

// WordCount counts the words in content after markup removal.
func WordCount(html string) int {
	return words.Count(StripTags(html))
}
