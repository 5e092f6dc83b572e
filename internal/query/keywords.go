package query

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "must": {},
	"can": {}, "what": {}, "when": {}, "where": {}, "why": {}, "how": {},
}

var wordPattern = regexp.MustCompile(`\w+`)

var lowerCaser = cases.Lower(language.Und)

// extractKeywords tokenizes the query into lowercase word tokens and drops
// stop words and tokens shorter than 3 characters.
func extractKeywords(text string) []string {
	words := wordPattern.FindAllString(lowerCaser.String(text), -1)
	keywords := make([]string, 0, len(words))
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if len(word) <= 2 {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
