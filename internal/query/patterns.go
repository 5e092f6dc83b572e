package query

import "regexp"

// PatternMatch is a fast-path answer produced without keyword retrieval.
type PatternMatch struct {
	Response         string
	PrimaryReference string
	Confidence       float64
}

const patternConfidence = 0.85

type queryPattern struct {
	expr             *regexp.Regexp
	responseTemplate string
	primaryReference string
}

// queryPatterns is the fixed ordered fast-path list. The first expression
// matching the query wins and short-circuits keyword search.
var queryPatterns = []queryPattern{
	{
		expr:             regexp.MustCompile(`(?i).*gfci.*(?:required|need|install).*`),
		responseTemplate: "GFCI protection is required in specific locations per NEC 210.8. For dwelling units, GFCI protection is required for 125-volt, 15- and 20-ampere receptacles in: bathrooms, garages, outdoors, crawl spaces, unfinished basements, kitchens (countertop receptacles), laundry areas, utility rooms, and within 6 feet of sinks.",
		primaryReference: "210.8",
	},
	{
		expr:             regexp.MustCompile(`(?i).*(?:grounding|ground).*(?:size|conductor|wire).*`),
		responseTemplate: "The size of the grounding electrode conductor is determined by NEC Table 250.66, which bases the size on the largest ungrounded service-entrance conductor or equivalent area for parallel conductors.",
		primaryReference: "250.66",
	},
	{
		expr:             regexp.MustCompile(`(?i).*(?:box fill|junction box|outlet box).*(?:calculation|size|conductors).*`),
		responseTemplate: "Box fill calculations are covered in NEC 314.16. Each conductor, device, and fitting counts toward the box fill. The total volume must not exceed the box's rated capacity. Use Table 314.16(A) for standard box volumes and Table 314.16(B) for conductor volumes.",
		primaryReference: "314.16",
	},
	{
		expr:             regexp.MustCompile(`(?i).*(?:clearance|working space|panel).*(?:distance|feet|inches).*`),
		responseTemplate: "Working space requirements are specified in NEC 110.26. Generally, a minimum of 3 feet of clear working space is required in front of electrical equipment rated 600 volts or less. The width shall be at least 30 inches or the width of the equipment, whichever is greater.",
		primaryReference: "110.26",
	},
}

// MatchPattern checks the query against the fast-path patterns in order.
func (e *Engine) MatchPattern(text string) (PatternMatch, bool) {
	for _, pattern := range queryPatterns {
		if pattern.expr.MatchString(text) {
			return PatternMatch{
				Response:         pattern.responseTemplate,
				PrimaryReference: pattern.primaryReference,
				Confidence:       patternConfidence,
			}, true
		}
	}
	return PatternMatch{}, false
}
