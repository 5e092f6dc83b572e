package detect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"voltcheck/internal/inspection"
	"voltcheck/internal/testsupport"
)

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "panel.jpg")
	testsupport.WriteFile(t, path, 256)
	return path
}

func newTestRemote(t *testing.T, serverURL string, opts ...RemoteOption) *Remote {
	t.Helper()
	base := []RemoteOption{
		WithRetryBackoff(0, 0),
		WithSleeper(func(time.Duration) {}),
	}
	return NewRemote(RemoteConfig{
		BaseURL: serverURL,
		APIKey:  "secret",
		Model:   "electrical-inspect-v1",
	}, append(base, opts...)...)
}

func TestRemoteDetectDecodesResponse(t *testing.T) {
	var authHeader atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))

		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Image == "" || req.Model != "electrical-inspect-v1" {
			t.Errorf("request payload = %+v", req)
		}

		_ = json.NewEncoder(w).Encode(detectResponse{
			Detections: []wireDetection{
				{
					Type:       "outlet",
					Confidence: 1.4,
					BBox:       []int{10, 20, 110, 220},
					Properties: map[string]string{"gfci_protected": "false"},
				},
				{Type: "hologram", Confidence: 0.9},
				{Type: "panel", Confidence: 0.6},
			},
		})
	}))
	defer server.Close()

	remote := newTestRemote(t, server.URL)
	detections, err := remote.Detect(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("detections = %d, want 2 (unknown class skipped)", len(detections))
	}
	if detections[0].Component != inspection.ComponentOutlet {
		t.Fatalf("component = %s", detections[0].Component)
	}
	if detections[0].Confidence != 1 {
		t.Fatalf("confidence = %v, want clamped 1", detections[0].Confidence)
	}
	if detections[0].Box != (inspection.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 220}) {
		t.Fatalf("box = %+v", detections[0].Box)
	}
	if got := authHeader.Load(); got != "Bearer secret" {
		t.Fatalf("auth header = %v", got)
	}
}

func TestRemoteDetectRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "transient", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(detectResponse{
			Detections: []wireDetection{{Type: "outlet", Confidence: 0.8}},
		})
	}))
	defer server.Close()

	remote := newTestRemote(t, server.URL)
	detections, err := remote.Detect(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("detections = %d, want 1", len(detections))
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("server calls = %d, want 2", got)
	}
}

func TestRemoteDetectDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer server.Close()

	remote := newTestRemote(t, server.URL)
	_, err := remote.Detect(context.Background(), testImage(t))
	if !IsDetectionError(err) {
		t.Fatalf("err = %v, want DetectionError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server calls = %d, want 1", got)
	}
}

func TestRemoteDetectAPIError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "model overloaded"},
		})
	}))
	defer server.Close()

	remote := newTestRemote(t, server.URL)
	_, err := remote.Detect(context.Background(), testImage(t))
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("err = %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server calls = %d, want 1 (api errors are not retried)", got)
	}
}

func TestRemoteDetectRequiresCredentials(t *testing.T) {
	image := testImage(t)

	missingURL := NewRemote(RemoteConfig{APIKey: "secret"})
	if _, err := missingURL.Detect(context.Background(), image); !IsDetectionError(err) {
		t.Fatalf("missing base url err = %v", err)
	}

	missingKey := NewRemote(RemoteConfig{BaseURL: "https://detector.example.com"})
	if _, err := missingKey.Detect(context.Background(), image); !IsDetectionError(err) {
		t.Fatalf("missing api key err = %v", err)
	}
}

func TestRemoteHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %s, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	remote := newTestRemote(t, server.URL)
	if err := remote.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	remote = newTestRemote(t, down.URL)
	if err := remote.HealthCheck(context.Background()); !IsDetectionError(err) {
		t.Fatalf("HealthCheck err = %v, want DetectionError", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"", 0, false},
		{"5", 5 * time.Second, true},
		{"-1", 0, false},
		{"garbage", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseRetryAfter(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseRetryAfter(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
