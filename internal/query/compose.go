package query

import (
	"fmt"
	"strings"

	"voltcheck/internal/logging"
)

// Reference cites one code section supporting a response.
type Reference struct {
	Section   string  `json:"section"`
	Title     string  `json:"title"`
	Relevance float64 `json:"relevance"`
}

// Response is the composed answer to a code question.
type Response struct {
	Response   string      `json:"response"`
	References []Reference `json:"references"`
	Confidence float64     `json:"confidence"`
}

const (
	fallbackConfidence = 0.1
	confidenceCap      = 0.95

	noKeywordsResponse = "I need more specific information to help you. Please ask about specific electrical components, installations, or code requirements."
	noMatchesResponse  = "I couldn't find specific information about your query in my current database. Please refer to the official NEC code book or consult with a licensed electrician for detailed guidance."

	installAdvisory  = "\n\n\U0001F4A1 Practical Tip: Always verify local code requirements as they may be more restrictive than the NEC. Consider consulting with a licensed electrician for complex installations."
	gfciAdvisory     = "\n\n⚠️ Safety Note: GFCI devices should be tested monthly using the TEST and RESET buttons to ensure proper operation."
	wireSizeAdvisory = "\n\n\U0001F4CF Sizing Note: Always consider voltage drop calculations for long wire runs and ensure proper derating for multiple conductors in conduit."
)

// The three advisory keyword families are independent; a query can earn
// zero, one, or all three advisories.
var (
	installTriggers  = []string{"install", "installation", "how to"}
	gfciTriggers     = []string{"gfci", "ground fault"}
	wireSizeTriggers = []string{"wire size", "conductor size", "ampacity"}
)

// Answer processes a code question end to end: fast-path pattern match,
// else keyword retrieval and composition, else a low-confidence fallback.
// It never fails; malformed input degrades to the fallback response.
func (e *Engine) Answer(text string) Response {
	if match, ok := e.MatchPattern(text); ok {
		title := "NEC Section"
		if section, found := e.index.Lookup(match.PrimaryReference); found {
			title = section.Title
		}
		response := Response{
			Response: match.Response,
			References: []Reference{{
				Section:   match.PrimaryReference,
				Title:     title,
				Relevance: match.Confidence,
			}},
			Confidence: match.Confidence,
		}
		e.logger.Debug("query answered by pattern",
			logging.String("section", match.PrimaryReference),
		)
		return e.appendAdvisories(response, text)
	}

	keywords := extractKeywords(text)
	if len(keywords) == 0 {
		return Response{
			Response:   noKeywordsResponse,
			References: []Reference{},
			Confidence: fallbackConfidence,
		}
	}

	matches := e.searchSections(keywords)
	response := e.compose(matches)
	e.logger.Debug("query answered by retrieval",
		logging.Int("keywords", len(keywords)),
		logging.Int("matches", len(matches)),
		logging.Float64("confidence", response.Confidence),
	)
	return e.appendAdvisories(response, text)
}

// compose renders ranked matches into the response body: the primary
// section's title and content, its subsections as cited paragraphs at 0.9
// times the primary relevance, and one-line pointers to the remaining
// matches at their own scores.
func (e *Engine) compose(matches []Match) Response {
	if len(matches) == 0 {
		return Response{
			Response:   noMatchesResponse,
			References: []Reference{},
			Confidence: fallbackConfidence,
		}
	}

	primary, found := e.index.Lookup(matches[0].SectionID)
	if !found {
		return Response{
			Response:   noMatchesResponse,
			References: []Reference{},
			Confidence: fallbackConfidence,
		}
	}
	primaryRelevance := matches[0].Relevance

	var body strings.Builder
	references := []Reference{}

	fmt.Fprintf(&body, "According to NEC %s (%s): %s", primary.ID, primary.Title, primary.Content)
	references = append(references, Reference{
		Section:   primary.ID,
		Title:     primary.Title,
		Relevance: primaryRelevance,
	})

	for _, subsection := range primary.Subsections {
		fmt.Fprintf(&body, "\n\n%s: %s", subsection.ID, subsection.Content)
		references = append(references, Reference{
			Section:   subsection.ID,
			Title:     primary.Title + " - Subsection",
			Relevance: primaryRelevance * 0.9,
		})
	}

	for _, match := range matches[1:] {
		section, ok := e.index.Lookup(match.SectionID)
		if !ok {
			continue
		}
		fmt.Fprintf(&body, "\n\nAlso see NEC %s (%s) for related requirements.", section.ID, section.Title)
		references = append(references, Reference{
			Section:   section.ID,
			Title:     section.Title,
			Relevance: match.Relevance,
		})
	}

	return Response{
		Response:   body.String(),
		References: references,
		Confidence: min(primaryRelevance*1.2, confidenceCap),
	}
}

func (e *Engine) appendAdvisories(response Response, text string) Response {
	lowered := strings.ToLower(text)
	if containsAny(lowered, installTriggers) {
		response.Response += installAdvisory
	}
	if containsAny(lowered, gfciTriggers) {
		response.Response += gfciAdvisory
	}
	if containsAny(lowered, wireSizeTriggers) {
		response.Response += wireSizeAdvisory
	}
	return response
}
