package rules

import "voltcheck/internal/inspection"

// Calibrated confidences for the built-in rules.
const (
	missingGFCIConfidence       = 0.75
	overcrowdingConfidence      = 0.60
	improperGroundingConfidence = 0.70
)

func builtinRules() []Rule {
	return []Rule{
		{
			Name:      "outlet-missing-gfci",
			Component: inspection.ComponentOutlet,
			Applies: func(d inspection.Detection) bool {
				// Absent property counts as unprotected.
				return !d.PropertyBool("gfci_protected")
			},
			Template: Template{
				Kind:          inspection.ViolationMissingGFCI,
				Severity:      inspection.SeverityHigh,
				Description:   "GFCI protection may be required for this outlet location",
				CodeReference: "NEC 210.8",
				Confidence:    missingGFCIConfidence,
			},
		},
		{
			// Conservative policy: every junction box is flagged for a manual
			// fill check. There is no wire fill calculation here.
			Name:      "junction-box-fill",
			Component: inspection.ComponentJunctionBox,
			Applies:   nil,
			Template: Template{
				Kind:          inspection.ViolationPotentialOvercrowding,
				Severity:      inspection.SeverityMedium,
				Description:   "Junction box may be overcrowded - verify wire fill calculations",
				CodeReference: "NEC 314.16",
				Confidence:    overcrowdingConfidence,
			},
		},
		{
			Name:      "outlet-ungrounded",
			Component: inspection.ComponentOutlet,
			Applies:   explicitlyUngrounded,
			Template:  improperGroundingTemplate(),
		},
		{
			Name:      "panel-ungrounded",
			Component: inspection.ComponentPanel,
			Applies:   explicitlyUngrounded,
			Template:  improperGroundingTemplate(),
		},
	}
}

// explicitlyUngrounded matches only when the detector reported grounded=false.
// A missing property stays silent; the GFCI rule already covers the
// absent-information case for outlets.
func explicitlyUngrounded(d inspection.Detection) bool {
	value, ok := d.Property("grounded")
	if !ok {
		return false
	}
	return value == "false" || value == "0" || value == "no"
}

func improperGroundingTemplate() Template {
	return Template{
		Kind:          inspection.ViolationImproperGrounding,
		Severity:      inspection.SeverityHigh,
		Description:   "Component appears to lack proper grounding connections",
		CodeReference: "NEC Article 250",
		Confidence:    improperGroundingConfidence,
	}
}
