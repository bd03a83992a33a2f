package words

import "strings"

// StopList is a set of words excluded from meaningful-word extraction.
type StopList map[string]struct{}

// NewStopList builds a StopList from a slice of lowercase words.
func NewStopList(words []string) StopList {
	list := make(StopList, len(words))
	for _, w := range words {
		list[w] = struct{}{}
	}
	return list
}

// Contains reports whether the word is in the stop list.
func (s StopList) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// English is the stop list used when validating descriptions against titles.
var English = NewStopList([]string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
	"to", "was", "were", "will", "with", "you", "your", "this", "these",
	"those", "they", "them", "their", "have", "had", "do", "does", "did",
})

// EnglishFrench extends English with common French filler words. Generation
// prompts use this wider list so that mixed-language titles still yield a
// useful exclusion set.
var EnglishFrench = func() StopList {
	extra := []string{
		"le", "la", "de", "du", "les", "des", "voici",
		"et", "qui", "ce", "ces", "cette", "leur",
	}
	list := make(StopList, len(English)+len(extra))
	for w := range English {
		list[w] = struct{}{}
	}
	for _, w := range extra {
		list[w] = struct{}{}
	}
	return list
}()

// Meaningful extracts the meaningful words from text: tokens are lowercased,
// stripped of non-alphanumeric characters, and kept when at least three
// characters long and not in the stop list. The result is deduplicated and
// preserves first-occurrence order.
func Meaningful(text string, stop StopList) []string {
	var result []string
	seen := make(map[string]struct{})

	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := stripNonAlnum(token)
		if len(word) < 3 {
			continue
		}
		if stop.Contains(word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		result = append(result, word)
	}

	return result
}

// Overlap returns the meaningful words present in both texts, in the order
// they first appear in a.
func Overlap(a, b string, stop StopList) []string {
	inB := make(map[string]struct{})
	for _, w := range Meaningful(b, stop) {
		inB[w] = struct{}{}
	}

	var shared []string
	for _, w := range Meaningful(a, stop) {
		if _, ok := inB[w]; ok {
			shared = append(shared, w)
		}
	}
	return shared
}

// Count returns the number of whitespace-delimited words in text. This is the
// simple count used for length limits, distinct from meaningful extraction.
func Count(text string) int {
	return len(strings.Fields(text))
}

// stripNonAlnum removes every character outside [a-z0-9]. Input is expected
// to be lowercased already.
func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
