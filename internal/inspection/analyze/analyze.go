package analyze

import (
	"context"
	"log/slog"

	"voltcheck/internal/inspection"
	"voltcheck/internal/inspection/assess"
	"voltcheck/internal/inspection/detect"
	"voltcheck/internal/inspection/rules"
	"voltcheck/internal/logging"
)

// ImageAnalyzer runs the detect, rules, and assess pipeline for one still
// image. Detector failures degrade to an "error" assessment instead of
// failing the request; the caller has no retry mechanism for a single image.
type ImageAnalyzer struct {
	detector detect.Detector
	engine   *rules.Engine
	logger   *slog.Logger
}

// NewImageAnalyzer wires the pipeline from its collaborators.
func NewImageAnalyzer(detector detect.Detector, engine *rules.Engine, logger *slog.Logger) *ImageAnalyzer {
	return &ImageAnalyzer{
		detector: detector,
		engine:   engine,
		logger:   logging.NewComponentLogger(logger, "image-analyzer"),
	}
}

// Analyze produces the assessment for the image at path. The returned
// assessment is well formed on every path; an unusable image or unavailable
// detector backend yields an "error" verdict with the cause recorded.
func (a *ImageAnalyzer) Analyze(ctx context.Context, imagePath string) inspection.Assessment {
	logger := logging.WithContext(ctx, a.logger)

	detections, err := a.detector.Detect(ctx, imagePath)
	if err != nil {
		logger.Warn("detector failed, degrading to error verdict",
			logging.String("image", imagePath),
			logging.Error(err),
		)
		return inspection.ErrorAssessment(err.Error())
	}

	violations := a.engine.Evaluate(detections)
	assessment := assess.Evaluate(detections, violations)

	logger.Debug("image analyzed",
		logging.String("image", imagePath),
		logging.Int("detections", len(detections)),
		logging.Int("violations", len(violations)),
		logging.String("result", string(assessment.OverallResult)),
	)
	return assessment
}
