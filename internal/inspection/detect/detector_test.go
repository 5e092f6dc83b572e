package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"voltcheck/internal/inspection"
	"voltcheck/internal/testsupport"
)

func TestNewSelectsBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	detector, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := detector.(*Mock); !ok {
		t.Fatalf("default backend = %T, want *Mock", detector)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithDetectorBackend("remote"))
	cfg.Detector.BaseURL = "https://detector.example.com"
	cfg.Detector.APIKey = "secret"
	detector, err = New(cfg)
	if err != nil {
		t.Fatalf("New remote: %v", err)
	}
	if _, ok := detector.(*Remote); !ok {
		t.Fatalf("remote backend = %T, want *Remote", detector)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithDetectorBackend("magic"))
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestMockDetect(t *testing.T) {
	image := filepath.Join(t.TempDir(), "panel.jpg")
	testsupport.WriteFile(t, image, 1024)

	detections, err := NewMock().Detect(context.Background(), image)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("detections = %d, want 2", len(detections))
	}
	if detections[0].Component != inspection.ComponentOutlet {
		t.Fatalf("first component = %s", detections[0].Component)
	}
	if detections[0].Properties["gfci_protected"] != "false" {
		t.Fatal("mock outlet should be unprotected")
	}
	if detections[1].Component != inspection.ComponentSwitch {
		t.Fatalf("second component = %s", detections[1].Component)
	}
}

func TestMockDetectCanceledContext(t *testing.T) {
	image := filepath.Join(t.TempDir(), "panel.jpg")
	testsupport.WriteFile(t, image, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMock().Detect(ctx, image); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestFailingMock(t *testing.T) {
	cause := errors.New("model unavailable")
	mock := NewFailingMock(cause)

	_, err := mock.Detect(context.Background(), "ignored.jpg")
	if !IsDetectionError(err) {
		t.Fatalf("Detect err = %v, want DetectionError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	if err := mock.HealthCheck(context.Background()); !IsDetectionError(err) {
		t.Fatalf("HealthCheck err = %v, want DetectionError", err)
	}
}

func TestValidateImage(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.jpg")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	valid := filepath.Join(dir, "valid.jpg")
	testsupport.WriteFile(t, valid, 16)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty path", "", true},
		{"whitespace path", "   ", true},
		{"missing file", filepath.Join(dir, "nope.jpg"), true},
		{"directory", dir, true},
		{"zero byte file", empty, true},
		{"valid file", valid, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateImage(tc.path)
			if tc.wantErr && !IsDetectionError(err) {
				t.Fatalf("err = %v, want DetectionError", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestClampConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{3.7, 1},
	}
	for _, tc := range tests {
		if got := clampConfidence(tc.in); got != tc.want {
			t.Fatalf("clampConfidence(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
