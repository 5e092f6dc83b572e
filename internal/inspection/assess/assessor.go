package assess

import (
	"fmt"

	"voltcheck/internal/inspection"
)

// Verdict confidence constants for the decision ladder. The ladder is
// deliberately coarse so a pass/fail is explainable from severity counts
// alone; there is no blended numeric scoring.
const (
	failConfidence    = 0.85
	warningConfidence = 0.70
	passConfidence    = 0.90

	// warningThreshold is the medium-severity count above which a clean-of-high
	// assessment degrades to a warning.
	warningThreshold = 2
)

// Evaluate combines detections and violations into a single assessment.
// The overall result is a pure function of the violation severity counts:
// any high severity fails, more than warningThreshold mediums warn, and
// everything else passes.
func Evaluate(detections []inspection.Detection, violations []inspection.Violation) inspection.Assessment {
	summary := summarize(detections, violations)

	var result inspection.Result
	var confidence float64
	switch {
	case summary.HighSeverity > 0:
		result = inspection.ResultFail
		confidence = failConfidence
	case summary.MediumSeverity > warningThreshold:
		result = inspection.ResultWarning
		confidence = warningConfidence
	default:
		result = inspection.ResultPass
		confidence = passConfidence
	}

	return inspection.Assessment{
		Detections:    detections,
		Violations:    violations,
		OverallResult: result,
		Confidence: inspection.ConfidenceScores{
			Overall:            confidence,
			ComponentDetection: meanDetectionConfidence(detections),
			ViolationDetection: meanViolationConfidence(violations),
		},
		Summary:         summary,
		Recommendations: Recommendations(violations),
	}
}

func summarize(detections []inspection.Detection, violations []inspection.Violation) inspection.Summary {
	summary := inspection.Summary{
		ComponentsDetected: len(detections),
		ViolationsFound:    len(violations),
	}
	for _, violation := range violations {
		switch violation.Severity {
		case inspection.SeverityHigh:
			summary.HighSeverity++
		case inspection.SeverityMedium:
			summary.MediumSeverity++
		case inspection.SeverityLow:
			summary.LowSeverity++
		}
	}
	return summary
}

func meanDetectionConfidence(detections []inspection.Detection) float64 {
	if len(detections) == 0 {
		return 0
	}
	var total float64
	for _, detection := range detections {
		total += detection.Confidence
	}
	return total / float64(len(detections))
}

// meanViolationConfidence reports 1.0 for a clean detection set: full
// confidence that nothing was found.
func meanViolationConfidence(violations []inspection.Violation) float64 {
	if len(violations) == 0 {
		return 1
	}
	var total float64
	for _, violation := range violations {
		total += violation.Confidence
	}
	return total / float64(len(violations))
}

var remediations = map[inspection.ViolationKind]string{
	inspection.ViolationMissingGFCI:           "Install GFCI protection for outlets in wet locations (bathrooms, kitchens, garages, etc.)",
	inspection.ViolationPotentialOvercrowding: "Verify junction box fill calculations per NEC 314.16 and consider larger box if needed",
	inspection.ViolationImproperGrounding:     "Ensure proper grounding connections per NEC Article 250",
}

const cleanRecommendation = "Installation appears to meet basic code requirements. Consider professional inspection for final verification."

// Recommendations maps each violation to a remediation sentence. Kinds without
// a curated sentence get a generic pointer at their code reference. A clean
// set still yields one reassuring sentence; the list is never empty.
func Recommendations(violations []inspection.Violation) []string {
	if len(violations) == 0 {
		return []string{cleanRecommendation}
	}
	recommendations := make([]string, 0, len(violations))
	for _, violation := range violations {
		if sentence, ok := remediations[violation.Kind]; ok {
			recommendations = append(recommendations, sentence)
			continue
		}
		reference := violation.CodeReference
		if reference == "" {
			reference = "NEC"
		}
		recommendations = append(recommendations, fmt.Sprintf("Address %s - refer to %s", violation.Kind, reference))
	}
	return recommendations
}
