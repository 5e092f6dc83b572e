package detect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"voltcheck/internal/config"
	"voltcheck/internal/inspection"
)

// Detector identifies electrical components in a still image. Implementations
// are interchangeable and selected at construction; callers depend only on
// this interface.
type Detector interface {
	// Detect returns the components identified in the image at path.
	// Failures are reported as *DetectionError.
	Detect(ctx context.Context, imagePath string) ([]inspection.Detection, error)
	// HealthCheck verifies the backend is reachable and usable.
	HealthCheck(ctx context.Context) error
}

// DetectionError reports that the detector backend failed or the input image
// was unusable. Callers treat it as a soft failure: the pipeline continues
// with an "error" verdict instead of aborting the request.
type DetectionError struct {
	Op    string
	Cause error
}

func (e *DetectionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("detection: %s", e.Op)
	}
	return fmt.Sprintf("detection: %s: %v", e.Op, e.Cause)
}

func (e *DetectionError) Unwrap() error { return e.Cause }

// IsDetectionError reports whether err carries a *DetectionError.
func IsDetectionError(err error) bool {
	var de *DetectionError
	return errors.As(err, &de)
}

func detectionFailure(op string, cause error) error {
	return &DetectionError{Op: op, Cause: cause}
}

// New selects a detector implementation from configuration.
func New(cfg *config.Config) (Detector, error) {
	if cfg == nil {
		return nil, errors.New("detector: config is required")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Detector.Backend)) {
	case "", "mock":
		return NewMock(), nil
	case "remote":
		return NewRemote(RemoteConfig{
			BaseURL:        cfg.Detector.BaseURL,
			APIKey:         cfg.Detector.APIKey,
			Model:          cfg.Detector.Model,
			TimeoutSeconds: cfg.Detector.TimeoutSeconds,
		}), nil
	default:
		return nil, fmt.Errorf("detector: unsupported backend %q", cfg.Detector.Backend)
	}
}

// validateImage rejects inputs the backends cannot decode before any network
// or model work happens.
func validateImage(path string) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return detectionFailure("validate image", errors.New("empty path"))
	}
	info, err := os.Stat(trimmed)
	if err != nil {
		return detectionFailure("validate image", err)
	}
	if info.IsDir() {
		return detectionFailure("validate image", fmt.Errorf("%s is a directory", trimmed))
	}
	if info.Size() == 0 {
		return detectionFailure("validate image", fmt.Errorf("%s is empty", trimmed))
	}
	return nil
}

func clampConfidence(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
