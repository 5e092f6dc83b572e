package video

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"voltcheck/internal/config"
	"voltcheck/internal/inspection"
	"voltcheck/internal/inspection/analyze"
	"voltcheck/internal/logging"
	"voltcheck/internal/media/ffprobe"
)

// displayFPS is the assumed frame rate used for per-frame display timestamps.
// The container's reported rate feeds only the duration calculation; the two
// formulas are intentionally independent.
const displayFPS = 30.0

// Analyzer samples frames from a video and folds their per-image assessments
// into a single video verdict.
type Analyzer struct {
	cfg      *config.Config
	images   *analyze.ImageAnalyzer
	logger   *slog.Logger
	stride   int
	staging  string
	ffmpeg   string
	ffprobeB string
}

// NewAnalyzer constructs a video analyzer sharing the given image pipeline.
func NewAnalyzer(cfg *config.Config, images *analyze.ImageAnalyzer, logger *slog.Logger) *Analyzer {
	stride := 30
	staging := ""
	ffmpegBin := "ffmpeg"
	ffprobeBin := "ffprobe"
	if cfg != nil {
		if cfg.Video.FrameStride > 0 {
			stride = cfg.Video.FrameStride
		}
		staging = cfg.Paths.StagingDir
		ffmpegBin = cfg.FFmpegBinary()
		ffprobeBin = cfg.FFprobeBinary()
	}
	return &Analyzer{
		cfg:      cfg,
		images:   images,
		logger:   logging.NewComponentLogger(logger, "video-analyzer"),
		stride:   stride,
		staging:  staging,
		ffmpeg:   ffmpegBin,
		ffprobeB: ffprobeBin,
	}
}

// Analyze extracts representative frames, analyzes each, and aggregates the
// results. Zero extractable frames yields an "error" verdict with duration 0;
// a single frame failing analysis is skipped, not fatal. The extracted frame
// working set is removed on every path. A non-nil error is returned only for
// context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, videoPath string) (inspection.VideoAssessment, error) {
	logger := logging.WithContext(ctx, a.logger)

	workDir := filepath.Join(a.staging, "frames-"+uuid.NewString())
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("failed to remove frame working set", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	frames, err := extractFrames(ctx, a.ffmpeg, videoPath, workDir, a.stride)
	if err != nil {
		if ctx.Err() != nil {
			return inspection.VideoAssessment{}, ctx.Err()
		}
		logger.Error("frame extraction failed", logging.String("video", videoPath), logging.Error(err))
		return inspection.ErrorVideoAssessment("could not extract frames from video"), nil
	}

	duration := a.probeDuration(ctx, videoPath, logger)

	assessment := inspection.VideoAssessment{
		Frames:   make([]inspection.FrameAssessment, 0, len(frames)),
		Duration: duration,
	}
	for i, framePath := range frames {
		if err := ctx.Err(); err != nil {
			return inspection.VideoAssessment{}, err
		}
		frameIndex := i * a.stride
		frameAssessment := a.images.Analyze(ctx, framePath)
		if frameAssessment.OverallResult == inspection.ResultError && frameAssessment.Error != "" {
			// Per-frame failure: log and keep going with the remaining frames.
			logger.Warn("frame analysis failed, skipping",
				logging.Int("frame_index", frameIndex),
				logging.String("cause", frameAssessment.Error),
			)
			continue
		}
		assessment.Frames = append(assessment.Frames, inspection.FrameAssessment{
			FrameIndex: frameIndex,
			Timestamp:  float64(frameIndex) / displayFPS,
			Assessment: frameAssessment,
		})
		assessment.Summary.TotalComponents += len(frameAssessment.Detections)
		assessment.Summary.TotalViolations += len(frameAssessment.Violations)
	}
	assessment.Summary.FramesAnalyzed = len(assessment.Frames)
	assessment.OverallResult = FoldResults(frameResults(assessment.Frames))

	logger.Info("video analyzed",
		logging.String("video", videoPath),
		logging.Int("frames_extracted", len(frames)),
		logging.Int("frames_analyzed", assessment.Summary.FramesAnalyzed),
		logging.String("result", string(assessment.OverallResult)),
		logging.Float64("duration", assessment.Duration),
	)
	return assessment, nil
}

// probeDuration computes duration as total frames over the container's
// reported frame rate. A zero or missing rate reports duration 0 rather
// than failing the analysis.
func (a *Analyzer) probeDuration(ctx context.Context, videoPath string, logger *slog.Logger) float64 {
	probe, err := ffprobe.Inspect(ctx, a.ffprobeB, videoPath)
	if err != nil {
		logger.Warn("ffprobe failed, duration unknown", logging.String("video", videoPath), logging.Error(err))
		return 0
	}
	fps := probe.FrameRate()
	totalFrames := probe.TotalFrames()
	if fps <= 0 || totalFrames <= 0 {
		return 0
	}
	return float64(totalFrames) / fps
}

func frameResults(frames []inspection.FrameAssessment) []inspection.Result {
	results := make([]inspection.Result, 0, len(frames))
	for _, frame := range frames {
		results = append(results, frame.Assessment.OverallResult)
	}
	return results
}

// FoldResults folds per-frame verdicts into the video verdict. Failure
// dominates, then warning; only a uniform run of passes stays a pass, and
// any mixed or unknown state degrades to a warning.
func FoldResults(results []inspection.Result) inspection.Result {
	if len(results) == 0 {
		return inspection.ResultError
	}
	allPass := true
	sawWarning := false
	for _, result := range results {
		switch result {
		case inspection.ResultFail:
			return inspection.ResultFail
		case inspection.ResultWarning:
			sawWarning = true
			allPass = false
		case inspection.ResultPass:
		default:
			allPass = false
		}
	}
	if sawWarning {
		return inspection.ResultWarning
	}
	if allPass {
		return inspection.ResultPass
	}
	return inspection.ResultWarning
}
