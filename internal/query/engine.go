package query

import (
	"log/slog"
	"sort"
	"strings"

	"voltcheck/internal/logging"
	"voltcheck/internal/nec"
)

// Match ranks one code section against a query. Relevance is a normalized
// keyword-overlap score; higher is more relevant.
type Match struct {
	SectionID string
	Relevance float64
}

// Engine retrieves code sections for free-text questions.
type Engine struct {
	index  *nec.Index
	logger *slog.Logger
}

// NewEngine builds a query engine over the given section index.
func NewEngine(index *nec.Index, logger *slog.Logger) *Engine {
	return &Engine{
		index:  index,
		logger: logging.NewComponentLogger(logger, "query-engine"),
	}
}

// Retrieve scores every index entry against the query's keywords and returns
// the top three entries with positive relevance. A keyword scores 2 against
// an exactly equal entry keyword and 1 when either contains the other; the
// sum is normalized by (query token count + entry keyword count). Ties keep
// index order.
func (e *Engine) Retrieve(text string) []Match {
	keywords := extractKeywords(text)
	if len(keywords) == 0 {
		return nil
	}
	return e.searchSections(keywords)
}

func (e *Engine) searchSections(keywords []string) []Match {
	var matches []Match
	for _, section := range e.index.Sections() {
		score := 0
		for _, keyword := range keywords {
			for _, sectionKeyword := range section.Keywords {
				switch {
				case keyword == sectionKeyword:
					score += 2
				case strings.Contains(sectionKeyword, keyword) || strings.Contains(keyword, sectionKeyword):
					score++
				}
			}
		}
		if score > 0 {
			matches = append(matches, Match{
				SectionID: section.ID,
				Relevance: float64(score) / float64(len(keywords)+len(section.Keywords)),
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}
