package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"voltcheck/internal/inspection/analyze"
	"voltcheck/internal/inspection/detect"
	"voltcheck/internal/inspection/video"
	"voltcheck/internal/logging"
	"voltcheck/internal/records"
	"voltcheck/internal/services"
	"voltcheck/internal/stage"
)

// Analyzer executes the inspection pipeline for queued records. Detector
// failures degrade to an "error" verdict on a completed record; only
// infrastructure problems fail the record itself.
type Analyzer struct {
	detector detect.Detector
	images   *analyze.ImageAnalyzer
	videos   *video.Analyzer
	logger   *slog.Logger
}

// New constructs the analysis stage handler.
func New(detector detect.Detector, images *analyze.ImageAnalyzer, videos *video.Analyzer, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		detector: detector,
		images:   images,
		videos:   videos,
		logger:   logging.NewComponentLogger(logger, "analyzer"),
	}
}

// Prepare validates the record's source media before analysis begins.
func (a *Analyzer) Prepare(ctx context.Context, item *records.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, "analyzer", "prepare", "record is nil", nil)
	}
	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "analyzer", "prepare", "record has no source path", nil)
	}
	info, err := os.Stat(source)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "analyzer", "prepare", fmt.Sprintf("source media %s unavailable", source), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "analyzer", "prepare", fmt.Sprintf("source media %s is a directory", source), nil)
	}
	item.SetProgress("Analyzing", "Starting analysis", 0)
	return nil
}

// Execute runs the image or video pipeline and stores the verdict JSON on the
// record. A degraded verdict still completes the record.
func (a *Analyzer) Execute(ctx context.Context, item *records.Item) error {
	if item == nil {
		return services.Wrap(services.ErrValidation, "analyzer", "execute", "record is nil", nil)
	}
	logger := logging.WithContext(ctx, a.logger)

	var (
		payload any
		verdict string
	)
	switch item.MediaKind {
	case records.MediaImage:
		assessment := a.images.Analyze(ctx, item.SourcePath)
		payload = assessment
		verdict = string(assessment.OverallResult)
	case records.MediaVideo:
		assessment, err := a.videos.Analyze(ctx, item.SourcePath)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return services.Wrap(services.ErrExternalTool, "analyzer", "analyze video", "video analysis aborted", err)
		}
		payload = assessment
		verdict = string(assessment.OverallResult)
	default:
		return services.Wrap(services.ErrValidation, "analyzer", "execute", fmt.Sprintf("unknown media kind %q", item.MediaKind), nil)
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrTransient, "analyzer", "marshal result", "could not encode verdict", err)
	}

	item.ResultJSON = string(encoded)
	item.Status = records.StatusCompleted
	item.ErrorMessage = ""
	item.SetProgressComplete("Analyzed", fmt.Sprintf("Verdict: %s", verdict))

	logger.Info("record analyzed",
		logging.Int64("record_id", item.ID),
		logging.String("media_kind", string(item.MediaKind)),
		logging.String("verdict", verdict),
	)
	return nil
}

// HealthCheck reports whether the detector backend is reachable.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	if err := a.detector.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("analyzer", err.Error())
	}
	return stage.Healthy("analyzer")
}
