package describe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"bulletin/internal/core"
	"bulletin/internal/logger"
	"bulletin/internal/posts"
	"bulletin/internal/provider"
	"bulletin/internal/validate"
	"bulletin/internal/words"
)

// promptTemplate is the instruction set sent to the generation provider.
// The title words listed after "Do NOT use" come from the extended stop list,
// so multilingual titles still produce a useful exclusion set.
const promptTemplate = `Create a compelling newsletter description for this article:

TITLE: "%s"

CONTENT: %s

REQUIREMENTS:
1. Maximum %d words
2. Do NOT use any of these words from the title: %s
3. Create an engaging hook that makes readers want to click
4. Focus on the key benefit or insight for readers
5. Use active voice and compelling language
6. Make it conversational and engaging
7. Avoid generic phrases like "learn more" or "find out"

Return ONLY the description, no quotes, no extra text.`

// synonyms maps overused title words to replacements used during auto-fix.
var synonyms = map[string]string{
	"guide":    "tutorial",
	"tips":     "advice",
	"best":     "top",
	"ultimate": "complete",
	"complete": "comprehensive",
	"how":      "methods",
	"ways":     "approaches",
	"create":   "build",
	"make":     "develop",
	"build":    "construct",
}

// ArticleSource provides the articles descriptions are generated for.
type ArticleSource interface {
	GetByID(ctx context.Context, id int64) (*core.Article, error)
}

// Generator produces newsletter descriptions for articles using a
// generation provider, with validation, one-pass auto-fix, and an extractive
// fallback when the provider fails.
type Generator struct {
	provider provider.Provider
	source   ArticleSource
	maxWords int
	opts     provider.Options
}

// NewGenerator creates a description generator. maxWords <= 0 falls back to
// the default limit.
func NewGenerator(p provider.Provider, source ArticleSource, maxWords int, opts provider.Options) *Generator {
	if maxWords <= 0 {
		maxWords = validate.DefaultMaxWords
	}
	return &Generator{
		provider: p,
		source:   source,
		maxWords: maxWords,
		opts:     opts,
	}
}

// GenerateMany generates descriptions for the given article ids. Provider
// failures are contained per article: the result entry carries the error and
// a fallback description. Every requested id appears exactly once in the
// returned map. A cancelled context abandons the remaining articles.
func (g *Generator) GenerateMany(ctx context.Context, ids []int64) (map[int64]core.DescriptionResult, error) {
	results := make(map[int64]core.DescriptionResult, len(ids))

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[id] = g.GenerateOne(ctx, id)
	}

	return results, nil
}

// GenerateOne generates a description for one article. It never returns an
// error: failures are folded into the result with a fallback description.
func (g *Generator) GenerateOne(ctx context.Context, id int64) core.DescriptionResult {
	article, err := g.source.GetByID(ctx, id)
	if err != nil {
		logger.Error("Failed to load article for description", err, "article_id", id)
		return core.DescriptionResult{
			ArticleID: id,
			Error:     err.Error(),
		}
	}

	description, err := g.generate(ctx, article)
	if err != nil {
		logger.Warn("Provider failed, using fallback description",
			"article_id", id, "provider", g.provider.GetName(), "error", err.Error())
		fallback := Fallback(posts.CleanContent(article.Content), article.Title, g.maxWords)
		return core.DescriptionResult{
			ArticleID:   id,
			Description: fallback,
			Success:     false,
			Fallback:    true,
			Error:       err.Error(),
			WordCount:   words.Count(fallback),
		}
	}

	return core.DescriptionResult{
		ArticleID:   id,
		Description: description,
		Success:     true,
		WordCount:   words.Count(description),
	}
}

// generate runs the full pipeline for one article: prompt, provider call,
// cleanup, truncation, validation, and one auto-fix pass. The fixed text is
// not re-validated.
func (g *Generator) generate(ctx context.Context, article *core.Article) (string, error) {
	prompt := BuildPrompt(article.Title, posts.CleanContent(article.Content), g.maxWords)

	raw, err := g.provider.Generate(ctx, prompt, g.opts)
	if err != nil {
		return "", err
	}

	description := Truncate(Clean(raw), g.maxWords)

	report := validate.Description(description, article.Title, g.maxWords)
	if !report.IsValid {
		description = AutoFix(description, article.Title)
	}

	return description, nil
}

// TestConnection pushes one synthetic article through the generator to
// verify the provider is reachable and configured.
func (g *Generator) TestConnection(ctx context.Context) (string, error) {
	article := &core.Article{
		Title:   "Test Article for Newsletter",
		Content: "This is a test article to verify that the generation service is working correctly for newsletter description generation.",
	}
	return g.generate(ctx, article)
}

// BuildPrompt assembles the generation prompt for an article.
func BuildPrompt(title, content string, maxWords int) string {
	excluded := words.Meaningful(title, words.EnglishFrench)
	return fmt.Sprintf(promptTemplate, title, content, maxWords, strings.Join(excluded, ", "))
}

// Clean strips wrapping quotes and collapses whitespace in provider output.
func Clean(raw string) string {
	cleaned := strings.Trim(strings.TrimSpace(raw), `"'`)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return cleaned
}

// Truncate cuts text down to maxWords. When a period lands inside the final
// 30% of the truncated text it becomes the cut point, otherwise "..." is
// appended. Text already within the limit is returned unchanged.
func Truncate(text string, maxWords int) string {
	fields := strings.Fields(text)
	if len(fields) <= maxWords {
		return text
	}

	truncated := strings.Join(fields[:maxWords], " ")
	if idx := strings.LastIndex(truncated, "."); idx != -1 && idx > int(float64(len(truncated))*0.7) {
		return truncated[:idx+1]
	}
	return truncated + "..."
}

// AutoFix removes title-word repetition in one pass. Each meaningful title
// word is replaced by its synonym when one exists, otherwise its first
// occurrence is deleted. The result is not re-validated.
func AutoFix(description, title string) string {
	for _, word := range words.Meaningful(title, words.EnglishFrench) {
		description = replaceTitleWord(description, word)
	}
	return description
}

// replaceTitleWord rewrites the first whole-word, case-insensitive occurrence
// of word in description.
func replaceTitleWord(description, word string) string {
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return description
	}

	replacement, hasSynonym := synonyms[strings.ToLower(word)]

	replaced := false
	description = pattern.ReplaceAllStringFunc(description, func(match string) string {
		if replaced {
			return match
		}
		replaced = true
		if hasSynonym {
			return replacement
		}
		return ""
	})

	if !hasSynonym {
		description = strings.TrimSpace(strings.Join(strings.Fields(description), " "))
	}
	return description
}

// Fallback derives a description from the article content when the provider
// fails: the first sentence longer than 20 characters that fits the word
// budget, else the first maxWords words. Title words are removed afterwards.
func Fallback(content, title string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = validate.DefaultMaxWords
	}

	var description string
	for _, sentence := range splitSentences(content) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) > 20 && words.Count(sentence) <= maxWords {
			description = sentence
			break
		}
	}

	if description == "" {
		fields := strings.Fields(content)
		if len(fields) > maxWords {
			fields = fields[:maxWords]
		}
		description = strings.Join(fields, " ")
	}

	for _, word := range words.Meaningful(title, words.EnglishFrench) {
		description = replaceTitleWord(description, word)
	}

	description = strings.TrimSpace(description)
	if len(description) > 50 {
		description += "..."
	}
	return description
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

func splitSentences(text string) []string {
	return sentenceSplit.Split(text, -1)
}
