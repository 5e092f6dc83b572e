package inspection

import "strings"

// Component identifies the electrical component class a detector can report.
type Component string

const (
	ComponentOutlet       Component = "outlet"
	ComponentSwitch       Component = "switch"
	ComponentPanel        Component = "panel"
	ComponentConduit      Component = "conduit"
	ComponentJunctionBox  Component = "junction_box"
	ComponentWire         Component = "wire"
	ComponentBreaker      Component = "breaker"
	ComponentGFCIOutlet   Component = "gfci_outlet"
	ComponentLightFixture Component = "light_fixture"
	ComponentMeter        Component = "meter"
)

var allComponents = []Component{
	ComponentOutlet,
	ComponentSwitch,
	ComponentPanel,
	ComponentConduit,
	ComponentJunctionBox,
	ComponentWire,
	ComponentBreaker,
	ComponentGFCIOutlet,
	ComponentLightFixture,
	ComponentMeter,
}

var componentSet = func() map[Component]struct{} {
	set := make(map[Component]struct{}, len(allComponents))
	for _, component := range allComponents {
		set[component] = struct{}{}
	}
	return set
}()

// AllComponents returns the ordered list of known component classes.
func AllComponents() []Component {
	cp := make([]Component, len(allComponents))
	copy(cp, allComponents)
	return cp
}

// ParseComponent converts a string into a known Component.
func ParseComponent(value string) (Component, bool) {
	normalized := Component(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := componentSet[normalized]
	return normalized, ok
}

// BoundingBox locates a detection within the source image as x1,y1,x2,y2 pixels.
type BoundingBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Detection is one identified component instance reported by a detector backend.
// Detections are immutable once produced.
type Detection struct {
	Component  Component         `json:"component"`
	Confidence float64           `json:"confidence"`
	Box        BoundingBox       `json:"box"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Property returns the named component property and whether it was reported.
func (d Detection) Property(name string) (string, bool) {
	if d.Properties == nil {
		return "", false
	}
	value, ok := d.Properties[name]
	return value, ok
}

// PropertyBool interprets the named property as a boolean. Absent or
// unparseable values report false.
func (d Detection) PropertyBool(name string) bool {
	value, ok := d.Property(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// Severity ranks how serious a violation is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ViolationKind tags the category of a candidate code violation. The set is
// extensible; rule registrations may introduce new kinds.
type ViolationKind string

const (
	ViolationImproperWiring    ViolationKind = "improper_wiring"
	ViolationMissingGFCI       ViolationKind = "missing_gfci"
	ViolationOvercrowdedBox    ViolationKind = "overcrowded_box"
	ViolationImproperGrounding ViolationKind = "improper_grounding"
	ViolationCodeViolation     ViolationKind = "code_violation"
	ViolationSafetyHazard      ViolationKind = "safety_hazard"

	// ViolationPotentialOvercrowding flags every junction box for a manual
	// fill check. The rule engine emits it unconditionally; see rules package.
	ViolationPotentialOvercrowding ViolationKind = "potential_overcrowding"
)

// Violation is a candidate code-compliance issue derived from detections.
// Immutable once produced.
type Violation struct {
	Kind          ViolationKind `json:"kind"`
	Severity      Severity      `json:"severity"`
	Description   string        `json:"description"`
	CodeReference string        `json:"code_reference"`
	Component     Component     `json:"component,omitempty"`
	Confidence    float64       `json:"confidence"`
}

// Result is the overall verdict for an analyzed image or video.
type Result string

const (
	ResultPass    Result = "pass"
	ResultFail    Result = "fail"
	ResultWarning Result = "warning"
	ResultError   Result = "error"
)

// ParseResult converts a string into a known Result.
func ParseResult(value string) (Result, bool) {
	normalized := Result(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ResultPass, ResultFail, ResultWarning, ResultError:
		return normalized, true
	default:
		return "", false
	}
}

// ConfidenceScores reports the verdict confidence alongside the mean detector
// and mean violation confidences. The three values are independent.
type ConfidenceScores struct {
	Overall            float64 `json:"overall_confidence"`
	ComponentDetection float64 `json:"component_detection"`
	ViolationDetection float64 `json:"violation_detection"`
}

// Summary carries the aggregate counts backing an assessment verdict.
type Summary struct {
	ComponentsDetected int `json:"components_detected"`
	ViolationsFound    int `json:"violations_found"`
	HighSeverity       int `json:"high_severity"`
	MediumSeverity     int `json:"medium_severity"`
	LowSeverity        int `json:"low_severity"`
}

// Assessment is the verdict and supporting data for one analyzed image.
// It is computed synchronously and never mutated afterward; a re-analysis
// produces a new Assessment.
type Assessment struct {
	Detections      []Detection      `json:"detected_components"`
	Violations      []Violation      `json:"violations_found"`
	OverallResult   Result           `json:"overall_result"`
	Confidence      ConfidenceScores `json:"confidence_scores"`
	Summary         Summary          `json:"summary"`
	Recommendations []string         `json:"recommendations"`
	Error           string           `json:"error,omitempty"`
}

// ErrorAssessment builds the degraded assessment recorded when analysis of an
// image cannot complete. The request itself still succeeds.
func ErrorAssessment(cause string) Assessment {
	return Assessment{
		Detections:      []Detection{},
		Violations:      []Violation{},
		OverallResult:   ResultError,
		Confidence:      ConfidenceScores{},
		Summary:         Summary{},
		Recommendations: []string{},
		Error:           cause,
	}
}

// FrameAssessment pairs one sampled video frame with its assessment.
type FrameAssessment struct {
	FrameIndex int        `json:"frame_number"`
	Timestamp  float64    `json:"timestamp"`
	Assessment Assessment `json:"analysis"`
}

// VideoSummary aggregates per-frame analysis counts for a video verdict.
type VideoSummary struct {
	FramesAnalyzed  int `json:"frames_analyzed"`
	TotalComponents int `json:"total_components"`
	TotalViolations int `json:"total_violations"`
}

// VideoAssessment is the verdict for one analyzed video. The extracted frame
// files are transient; only this structure survives analysis.
type VideoAssessment struct {
	Frames        []FrameAssessment `json:"frame_analyses"`
	OverallResult Result            `json:"overall_result"`
	Duration      float64           `json:"duration"`
	Summary       VideoSummary      `json:"summary"`
	Error         string            `json:"error,omitempty"`
}

// ErrorVideoAssessment builds the degraded verdict recorded when no frames
// could be analyzed.
func ErrorVideoAssessment(cause string) VideoAssessment {
	return VideoAssessment{
		Frames:        []FrameAssessment{},
		OverallResult: ResultError,
		Duration:      0,
		Summary:       VideoSummary{},
		Error:         cause,
	}
}
