package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"voltcheck/internal/inspection/analyze"
	"voltcheck/internal/inspection/detect"
	"voltcheck/internal/inspection/rules"
	"voltcheck/internal/inspection/video"
	"voltcheck/internal/logging"
	"voltcheck/internal/records"
	"voltcheck/internal/services"
	"voltcheck/internal/testsupport"
)

func newTestAnalyzer(t *testing.T, detector detect.Detector) *Analyzer {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()
	images := analyze.NewImageAnalyzer(detector, rules.NewEngine(), logger)
	videos := video.NewAnalyzer(cfg, images, logger)
	return New(detector, images, videos, logger)
}

func TestPrepareValidation(t *testing.T) {
	analyzer := newTestAnalyzer(t, detect.NewMock())
	dir := t.TempDir()

	tests := []struct {
		name   string
		item   *records.Item
		marker error
	}{
		{"nil record", nil, services.ErrValidation},
		{"empty source", &records.Item{SourcePath: "   "}, services.ErrValidation},
		{"missing source", &records.Item{SourcePath: filepath.Join(dir, "gone.jpg")}, services.ErrNotFound},
		{"directory source", &records.Item{SourcePath: dir}, services.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := analyzer.Prepare(context.Background(), tc.item)
			if !errors.Is(err, tc.marker) {
				t.Fatalf("err = %v, want %v", err, tc.marker)
			}
			if services.FailureStatus(err) != records.StatusReview {
				t.Fatalf("validation failures should route to review, got %s", services.FailureStatus(err))
			}
		})
	}
}

func TestPrepareSetsProgress(t *testing.T) {
	analyzer := newTestAnalyzer(t, detect.NewMock())
	source := filepath.Join(t.TempDir(), "panel.jpg")
	testsupport.WriteFile(t, source, 256)

	item := &records.Item{SourcePath: source, MediaKind: records.MediaImage}
	if err := analyzer.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if item.ProgressStage != "Analyzing" || item.ProgressPercent != 0 {
		t.Fatalf("progress = %q %v", item.ProgressStage, item.ProgressPercent)
	}
}

func TestExecuteImageCompletesRecord(t *testing.T) {
	analyzer := newTestAnalyzer(t, detect.NewMock())
	source := filepath.Join(t.TempDir(), "panel.jpg")
	testsupport.WriteFile(t, source, 256)

	item := &records.Item{
		ID:         7,
		SourcePath: source,
		MediaKind:  records.MediaImage,
		Status:     records.StatusAnalyzing,
	}
	if err := analyzer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.Status != records.StatusCompleted {
		t.Fatalf("status = %s, want completed", item.Status)
	}
	// The mock detector reports an unprotected outlet, so the verdict fails.
	if !strings.Contains(item.ResultJSON, `"overall_result":"fail"`) {
		t.Fatalf("result json = %s", item.ResultJSON)
	}
	if item.ProgressPercent != 100 || item.ProgressMessage != "Verdict: fail" {
		t.Fatalf("progress = %v %q", item.ProgressPercent, item.ProgressMessage)
	}
}

func TestExecuteDegradedDetectorStillCompletes(t *testing.T) {
	analyzer := newTestAnalyzer(t, detect.NewFailingMock(errors.New("model offline")))

	item := &records.Item{
		SourcePath: "ignored.jpg",
		MediaKind:  records.MediaImage,
		Status:     records.StatusAnalyzing,
	}
	if err := analyzer.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.Status != records.StatusCompleted {
		t.Fatalf("status = %s, want completed", item.Status)
	}
	if !strings.Contains(item.ResultJSON, `"overall_result":"error"`) {
		t.Fatalf("result json = %s", item.ResultJSON)
	}
}

func TestExecuteRejectsUnknownMediaKind(t *testing.T) {
	analyzer := newTestAnalyzer(t, detect.NewMock())

	item := &records.Item{SourcePath: "x.bin", MediaKind: records.MediaKind("audio")}
	err := analyzer.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := newTestAnalyzer(t, detect.NewMock())
	if health := healthy.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("health = %+v, want ready", health)
	}

	broken := newTestAnalyzer(t, detect.NewFailingMock(errors.New("model offline")))
	health := broken.HealthCheck(context.Background())
	if health.Ready {
		t.Fatal("expected unhealthy")
	}
	if !strings.Contains(health.Detail, "model offline") {
		t.Fatalf("detail = %q", health.Detail)
	}
}
