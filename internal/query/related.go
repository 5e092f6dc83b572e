package query

// Suggested follow-up questions, keyed off the same keyword families the
// retrieval path uses.
var (
	gfciFamily = map[string]struct{}{"gfci": {}, "ground": {}, "fault": {}}
	wireFamily = map[string]struct{}{"wire": {}, "conductor": {}, "size": {}}
	boxFamily  = map[string]struct{}{"box": {}, "fill": {}, "junction": {}}

	gfciQuestions = []string{
		"Where are GFCI outlets required in a kitchen?",
		"What is the difference between GFCI and AFCI?",
		"How do I test a GFCI outlet?",
	}
	wireQuestions = []string{
		"How do I calculate wire size for a circuit?",
		"What is the ampacity of 12 AWG wire?",
		"When do I need to derate wire ampacity?",
	}
	boxQuestions = []string{
		"How many wires can fit in a junction box?",
		"What size box do I need for 6 conductors?",
		"How do I calculate box fill for devices?",
	}
)

// RelatedQuestions suggests up to five follow-up questions for a query.
func (e *Engine) RelatedQuestions(text string) []string {
	keywords := extractKeywords(text)

	var related []string
	if keywordInFamily(keywords, gfciFamily) {
		related = append(related, gfciQuestions...)
	}
	if keywordInFamily(keywords, wireFamily) {
		related = append(related, wireQuestions...)
	}
	if keywordInFamily(keywords, boxFamily) {
		related = append(related, boxQuestions...)
	}
	if len(related) > 5 {
		related = related[:5]
	}
	return related
}

func keywordInFamily(keywords []string, family map[string]struct{}) bool {
	for _, keyword := range keywords {
		if _, ok := family[keyword]; ok {
			return true
		}
	}
	return false
}
