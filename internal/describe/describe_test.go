package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bulletin/internal/core"
	"bulletin/internal/provider"
)

type stubSource struct {
	articles map[int64]*core.Article
}

func (s *stubSource) GetByID(ctx context.Context, id int64) (*core.Article, error) {
	article, ok := s.articles[id]
	if !ok {
		return nil, fmt.Errorf("article %d not found", id)
	}
	return article, nil
}

func newStubSource() *stubSource {
	return &stubSource{articles: map[int64]*core.Article{
		1: {
			ID:      1,
			Title:   "Best Guide to Python",
			Content: "Python remains a versatile language for scripting and data work. This article walks through practical patterns used in real projects every day.",
		},
		2: {
			ID:      2,
			Title:   "Kubernetes Networking Explained",
			Content: "Pods talk to each other through a flat network. Understanding services and DNS resolution saves hours of debugging.",
		},
	}}
}

func TestBuildPromptExcludesTitleWords(t *testing.T) {
	prompt := BuildPrompt("Best Guide to Python", "Some content here.", 14)

	if !strings.Contains(prompt, "Maximum 14 words") {
		t.Error("Expected prompt to state the word limit")
	}
	for _, word := range []string{"best", "guide", "python"} {
		if !strings.Contains(prompt, word) {
			t.Errorf("Expected prompt exclusion list to contain %q", word)
		}
	}
	if !strings.Contains(prompt, "Return ONLY the description") {
		t.Error("Expected prompt to demand bare output")
	}
}

func TestClean(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"A quoted description."`, "A quoted description."},
		{`'Single quoted.'`, "Single quoted."},
		{"  spaced   out\n\ttext  ", "spaced out text"},
		{"already clean", "already clean"},
	}

	for _, tc := range cases {
		if got := Clean(tc.raw); got != tc.want {
			t.Errorf("Clean(%q): expected %q, got %q", tc.raw, tc.want, got)
		}
	}
}

func TestTruncateWithinLimitUnchanged(t *testing.T) {
	text := "Short and sweet."
	if got := Truncate(text, 14); got != text {
		t.Errorf("Expected unchanged text, got %q", got)
	}
}

func TestTruncateAtSentenceBoundary(t *testing.T) {
	text := "One two three four five six seven eight nine ten eleven twelve thirteen. And then some trailing words"
	got := Truncate(text, 14)

	if !strings.HasSuffix(got, "thirteen.") {
		t.Errorf("Expected truncation at the period, got %q", got)
	}
	if strings.Contains(got, "And") {
		t.Errorf("Expected trailing words to be dropped, got %q", got)
	}
}

func TestTruncateAppendsEllipsis(t *testing.T) {
	text := strings.Repeat("word ", 20)
	got := Truncate(text, 14)

	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
	if n := len(strings.Fields(strings.TrimSuffix(got, "..."))); n != 14 {
		t.Errorf("Expected 14 words before the ellipsis, got %d", n)
	}
}

func TestAutoFixSubstitutesAndDeletes(t *testing.T) {
	got := AutoFix("The best python guide available today", "Best Guide to Python")

	if strings.Contains(strings.ToLower(got), "best") {
		t.Errorf("Expected 'best' to be replaced, got %q", got)
	}
	if !strings.Contains(got, "top") {
		t.Errorf("Expected synonym 'top', got %q", got)
	}
	if !strings.Contains(got, "tutorial") {
		t.Errorf("Expected synonym 'tutorial' for 'guide', got %q", got)
	}
	if strings.Contains(strings.ToLower(got), "python") {
		t.Errorf("Expected 'python' to be deleted (no synonym), got %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("Expected collapsed whitespace, got %q", got)
	}
}

func TestAutoFixReplacesOnlyFirstOccurrence(t *testing.T) {
	got := AutoFix("A guide within a guide", "Style Guide")

	if strings.Count(got, "tutorial") != 1 {
		t.Errorf("Expected exactly one substitution, got %q", got)
	}
	if !strings.Contains(got, "guide") {
		t.Errorf("Expected second occurrence untouched, got %q", got)
	}
}

func TestAutoFixWholeWordOnly(t *testing.T) {
	got := AutoFix("Guidebooks are heavy", "Travel Guide")

	if !strings.Contains(got, "Guidebooks") {
		t.Errorf("Expected 'Guidebooks' to survive a whole-word match for 'guide', got %q", got)
	}
}

func TestFallbackUsesFirstSuitableSentence(t *testing.T) {
	content := "Too short. This sentence is long enough to serve as a usable fallback here. Another one follows."
	got := Fallback(content, "Unrelated Topic", 14)

	if !strings.Contains(got, "long enough to serve") {
		t.Errorf("Expected the first suitable sentence, got %q", got)
	}
}

func TestFallbackFirstWordsWhenNoSentenceFits(t *testing.T) {
	content := strings.Repeat("steady stream of running prose without any stops ", 5)
	got := Fallback(content, "Unrelated Topic", 10)

	if n := len(strings.Fields(strings.TrimSuffix(got, "..."))); n > 10 {
		t.Errorf("Expected at most 10 words, got %d (%q)", n, got)
	}
}

func TestFallbackRemovesTitleWords(t *testing.T) {
	content := "Docker containers make deployment repeatable and boring in the best way possible."
	got := Fallback(content, "Docker Containers", 14)

	lower := strings.ToLower(got)
	if strings.Contains(lower, "docker") || strings.Contains(lower, "containers") {
		t.Errorf("Expected title words removed, got %q", got)
	}
}

func TestGenerateManyAllIDsPresent(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.SetResponse("A hands-on look at patterns that hold up in production.")
	gen := NewGenerator(mock, newStubSource(), 14, provider.Options{})

	results, err := gen.GenerateMany(context.Background(), []int64{1, 2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, id := range []int64{1, 2} {
		result, ok := results[id]
		if !ok {
			t.Fatalf("Expected result for article %d", id)
		}
		if !result.Success {
			t.Errorf("Expected success for article %d, got error %q", id, result.Error)
		}
		if result.Description == "" {
			t.Errorf("Expected non-empty description for article %d", id)
		}
	}
}

func TestGenerateManyEmptyInput(t *testing.T) {
	gen := NewGenerator(provider.NewMockProvider(), newStubSource(), 14, provider.Options{})

	results, err := gen.GenerateMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result map, got %v", results)
	}
}

func TestGenerateManyProviderFailureUsesFallback(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.SetError(provider.ErrProviderUnavailable)
	gen := NewGenerator(mock, newStubSource(), 14, provider.Options{})

	results, err := gen.GenerateMany(context.Background(), []int64{2})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result := results[2]
	if result.Success {
		t.Error("Expected Success to be false on provider failure")
	}
	if !result.Fallback {
		t.Error("Expected Fallback to be true")
	}
	if result.Error == "" {
		t.Error("Expected the provider error to be recorded")
	}
	if result.Description == "" {
		t.Error("Expected a usable fallback description")
	}
}

func TestGenerateManyContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(provider.NewMockProvider(), newStubSource(), 14, provider.Options{})
	_, err := gen.GenerateMany(ctx, []int64{1, 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestGenerateOneAutoFixesTitleRepetition(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.SetResponse("The best python walkthrough you will read this year")
	gen := NewGenerator(mock, newStubSource(), 14, provider.Options{})

	result := gen.GenerateOne(context.Background(), 1)
	if !result.Success {
		t.Fatalf("Expected success, got error %q", result.Error)
	}

	lower := strings.ToLower(result.Description)
	if strings.Contains(lower, "best") || strings.Contains(lower, "python") {
		t.Errorf("Expected title words fixed, got %q", result.Description)
	}
	if !strings.Contains(result.Description, "top") {
		t.Errorf("Expected synonym substitution, got %q", result.Description)
	}
}

func TestTestConnection(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.SetResponse("Connection confirmed with a short sample output.")
	gen := NewGenerator(mock, newStubSource(), 14, provider.Options{})

	got, err := gen.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got == "" {
		t.Error("Expected non-empty test output")
	}
	if len(mock.Prompts()) != 1 {
		t.Errorf("Expected exactly one provider call, got %d", len(mock.Prompts()))
	}
}
