package detect

import (
	"context"

	"voltcheck/internal/inspection"
)

// Mock is the placeholder detector used when no trained model backend is
// configured. It reports a fixed detection set so the downstream pipeline can
// be exercised end to end.
type Mock struct {
	detections []inspection.Detection
	err        error
}

// NewMock constructs the mock detector with its default canned detections:
// an unprotected outlet and a properly wired single-pole switch.
func NewMock() *Mock {
	return &Mock{detections: defaultMockDetections()}
}

// NewMockWithDetections constructs a mock returning the provided detections.
func NewMockWithDetections(detections []inspection.Detection) *Mock {
	return &Mock{detections: detections}
}

// NewFailingMock constructs a mock whose Detect always fails with err.
func NewFailingMock(err error) *Mock {
	return &Mock{err: err}
}

func (m *Mock) Detect(ctx context.Context, imagePath string) ([]inspection.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, detectionFailure("mock detect", m.err)
	}
	if err := validateImage(imagePath); err != nil {
		return nil, err
	}
	out := make([]inspection.Detection, len(m.detections))
	copy(out, m.detections)
	return out, nil
}

func (m *Mock) HealthCheck(ctx context.Context) error {
	if m.err != nil {
		return detectionFailure("mock health", m.err)
	}
	return ctx.Err()
}

func defaultMockDetections() []inspection.Detection {
	return []inspection.Detection{
		{
			Component:  inspection.ComponentOutlet,
			Confidence: 0.92,
			Box:        inspection.BoundingBox{X1: 100, Y1: 150, X2: 200, Y2: 250},
			Properties: map[string]string{
				"grounded":       "true",
				"gfci_protected": "false",
			},
		},
		{
			Component:  inspection.ComponentSwitch,
			Confidence: 0.87,
			Box:        inspection.BoundingBox{X1: 300, Y1: 100, X2: 350, Y2: 180},
			Properties: map[string]string{
				"type":           "single_pole",
				"properly_wired": "true",
			},
		},
	}
}
