package rules

import (
	"testing"

	"voltcheck/internal/inspection"
)

func outlet(props map[string]string) inspection.Detection {
	return inspection.Detection{
		Component:  inspection.ComponentOutlet,
		Confidence: 0.9,
		Properties: props,
	}
}

func junctionBox() inspection.Detection {
	return inspection.Detection{
		Component:  inspection.ComponentJunctionBox,
		Confidence: 0.8,
	}
}

func countKind(violations []inspection.Violation, kind inspection.ViolationKind) int {
	count := 0
	for _, violation := range violations {
		if violation.Kind == kind {
			count++
		}
	}
	return count
}

func TestEvaluateFlagsUnprotectedOutlets(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		detection inspection.Detection
		want      int
	}{
		{"explicitly unprotected", outlet(map[string]string{"gfci_protected": "false"}), 1},
		{"property absent", outlet(nil), 1},
		{"protected", outlet(map[string]string{"gfci_protected": "true"}), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			violations := engine.Evaluate([]inspection.Detection{tc.detection})
			if got := countKind(violations, inspection.ViolationMissingGFCI); got != tc.want {
				t.Fatalf("missing_gfci count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEvaluateOneViolationPerUnprotectedOutlet(t *testing.T) {
	engine := NewEngine()
	detections := []inspection.Detection{
		outlet(map[string]string{"gfci_protected": "false"}),
		outlet(map[string]string{"gfci_protected": "true"}),
		outlet(nil),
	}

	violations := engine.Evaluate(detections)
	if got := countKind(violations, inspection.ViolationMissingGFCI); got != 2 {
		t.Fatalf("missing_gfci count = %d, want 2", got)
	}
	for _, violation := range violations {
		if violation.Kind != inspection.ViolationMissingGFCI {
			continue
		}
		if violation.Severity != inspection.SeverityHigh {
			t.Fatalf("missing_gfci severity = %s, want high", violation.Severity)
		}
		if violation.CodeReference != "NEC 210.8" {
			t.Fatalf("missing_gfci reference = %q", violation.CodeReference)
		}
		if violation.Confidence != missingGFCIConfidence {
			t.Fatalf("missing_gfci confidence = %v", violation.Confidence)
		}
	}
}

func TestEvaluateFlagsEveryJunctionBox(t *testing.T) {
	engine := NewEngine()
	detections := []inspection.Detection{junctionBox(), junctionBox(), junctionBox()}

	violations := engine.Evaluate(detections)
	if got := countKind(violations, inspection.ViolationPotentialOvercrowding); got != len(detections) {
		t.Fatalf("potential_overcrowding count = %d, want %d", got, len(detections))
	}
	for _, violation := range violations {
		if violation.Severity != inspection.SeverityMedium {
			t.Fatalf("overcrowding severity = %s, want medium", violation.Severity)
		}
	}
}

func TestEvaluateGroundingRequiresExplicitProperty(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		detection inspection.Detection
		want      int
	}{
		{"outlet grounded false", outlet(map[string]string{"grounded": "false", "gfci_protected": "true"}), 1},
		{"outlet grounded absent", outlet(map[string]string{"gfci_protected": "true"}), 0},
		{"panel grounded no", inspection.Detection{
			Component:  inspection.ComponentPanel,
			Properties: map[string]string{"grounded": "no"},
		}, 1},
		{"panel grounded true", inspection.Detection{
			Component:  inspection.ComponentPanel,
			Properties: map[string]string{"grounded": "true"},
		}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			violations := engine.Evaluate([]inspection.Detection{tc.detection})
			if got := countKind(violations, inspection.ViolationImproperGrounding); got != tc.want {
				t.Fatalf("improper_grounding count = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEvaluateUnmatchedComponentsProduceNothing(t *testing.T) {
	engine := NewEngine()
	detections := []inspection.Detection{
		{Component: inspection.ComponentWire, Confidence: 0.5},
		{Component: inspection.ComponentMeter, Confidence: 0.5},
	}
	if violations := engine.Evaluate(detections); len(violations) != 0 {
		t.Fatalf("expected no violations, got %d", len(violations))
	}
}

func TestRegisterCustomRule(t *testing.T) {
	engine := NewEmptyEngine()
	rule := Rule{
		Name:      "breaker-test",
		Component: inspection.ComponentBreaker,
		Template: Template{
			Kind:          inspection.ViolationCodeViolation,
			Severity:      inspection.SeverityLow,
			Description:   "test rule",
			CodeReference: "NEC 240.21",
			Confidence:    0.5,
		},
	}
	if err := engine.Register(rule); err != nil {
		t.Fatalf("Register: %v", err)
	}

	violations := engine.Evaluate([]inspection.Detection{{Component: inspection.ComponentBreaker}})
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if violations[0].Kind != inspection.ViolationCodeViolation {
		t.Fatalf("kind = %s", violations[0].Kind)
	}
}

func TestRegisterRejectsIncompleteRules(t *testing.T) {
	engine := NewEmptyEngine()

	tests := []struct {
		name string
		rule Rule
	}{
		{"missing name", Rule{Component: inspection.ComponentOutlet, Template: Template{Kind: "x", Severity: "high"}}},
		{"missing component", Rule{Name: "r", Template: Template{Kind: "x", Severity: "high"}}},
		{"missing kind", Rule{Name: "r", Component: inspection.ComponentOutlet, Template: Template{Severity: "high"}}},
		{"missing severity", Rule{Name: "r", Component: inspection.ComponentOutlet, Template: Template{Kind: "x"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := engine.Register(tc.rule); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEvaluateDeterministicOrder(t *testing.T) {
	engine := NewEngine()
	detections := []inspection.Detection{
		junctionBox(),
		outlet(nil),
	}

	first := engine.Evaluate(detections)
	second := engine.Evaluate(detections)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("violation %d differs between runs", i)
		}
	}
	if first[0].Kind != inspection.ViolationPotentialOvercrowding {
		t.Fatalf("expected detection order to lead, got %s first", first[0].Kind)
	}
}
