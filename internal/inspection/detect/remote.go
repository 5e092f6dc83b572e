package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"voltcheck/internal/inspection"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// RemoteConfig captures the runtime settings required to talk to a hosted
// detector service.
type RemoteConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Remote calls an HTTP detector service that accepts a base64-encoded image
// and returns component detections as JSON.
type Remote struct {
	cfg        RemoteConfig
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// RemoteOption customizes the remote detector client.
type RemoteOption func(*Remote)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(r *Remote) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) RemoteOption {
	return func(r *Remote) {
		r.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) RemoteOption {
	return func(r *Remote) {
		r.retryBaseDelay = baseDelay
		r.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) RemoteOption {
	return func(r *Remote) {
		r.sleeper = sleeper
	}
}

// NewRemote constructs a remote detector client using the supplied configuration.
func NewRemote(cfg RemoteConfig, opts ...RemoteOption) *Remote {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Remote{
		cfg: RemoteConfig{
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			APIKey:         strings.TrimSpace(cfg.APIKey),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

type detectRequest struct {
	Model string `json:"model,omitempty"`
	Image string `json:"image"`
}

type detectResponse struct {
	Detections []wireDetection `json:"detections"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type wireDetection struct {
	Type       string            `json:"type"`
	Confidence float64           `json:"confidence"`
	BBox       []int             `json:"bbox"`
	Properties map[string]string `json:"properties"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("detector request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (r *Remote) Detect(ctx context.Context, imagePath string) ([]inspection.Detection, error) {
	if err := validateImage(imagePath); err != nil {
		return nil, err
	}
	if r.cfg.BaseURL == "" {
		return nil, detectionFailure("remote detect", errors.New("base url required"))
	}
	if r.cfg.APIKey == "" {
		return nil, detectionFailure("remote detect", errors.New("api key required"))
	}

	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, detectionFailure("read image", err)
	}

	payload := detectRequest{
		Model: r.cfg.Model,
		Image: base64.StdEncoding.EncodeToString(raw),
	}
	response, err := r.sendWithRetry(ctx, payload)
	if err != nil {
		return nil, detectionFailure("remote detect", err)
	}
	return decodeDetections(response)
}

// HealthCheck verifies the detector service responds to an empty probe.
func (r *Remote) HealthCheck(ctx context.Context) error {
	if r.cfg.BaseURL == "" {
		return detectionFailure("remote health", errors.New("base url required"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(r.cfg.BaseURL, "/")+"/health", nil)
	if err != nil {
		return detectionFailure("remote health", err)
	}
	r.applyHeaders(req)
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return detectionFailure("remote health", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return detectionFailure("remote health", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}
	return nil
}

func decodeDetections(response detectResponse) ([]inspection.Detection, error) {
	detections := make([]inspection.Detection, 0, len(response.Detections))
	for _, wire := range response.Detections {
		component, ok := inspection.ParseComponent(wire.Type)
		if !ok {
			// Unknown classes from newer models are skipped, not fatal.
			continue
		}
		detection := inspection.Detection{
			Component:  component,
			Confidence: clampConfidence(wire.Confidence),
			Properties: wire.Properties,
		}
		if len(wire.BBox) == 4 {
			detection.Box = inspection.BoundingBox{X1: wire.BBox[0], Y1: wire.BBox[1], X2: wire.BBox[2], Y2: wire.BBox[3]}
		}
		detections = append(detections, detection)
	}
	return detections, nil
}

func (r *Remote) applyHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func (r *Remote) sendWithRetry(ctx context.Context, payload detectRequest) (detectResponse, error) {
	attempts := r.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		response, err := r.sendOnce(ctx, payload)
		if err == nil {
			return response, nil
		}

		delay, retry := r.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return detectResponse{}, err
		}
		if err := r.sleep(ctx, delay); err != nil {
			return detectResponse{}, err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return detectResponse{}, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (r *Remote) sendOnce(ctx context.Context, payload detectRequest) (detectResponse, error) {
	var response detectResponse
	encoded, err := json.Marshal(payload)
	if err != nil {
		return response, fmt.Errorf("detector request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return response, fmt.Errorf("detector request: new request: %w", err)
	}
	r.applyHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return response, fmt.Errorf("detector request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, fmt.Errorf("detector request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return response, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return response, fmt.Errorf("detector request: decode response: %w", err)
	}
	if response.Error != nil {
		return response, fmt.Errorf("detector request: api error: %s", strings.TrimSpace(response.Error.Message))
	}
	return response, nil
}

func (r *Remote) retryAttempts() int {
	if r == nil || r.retryMaxAttempts <= 0 {
		return 1
	}
	return r.retryMaxAttempts
}

func (r *Remote) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return r.capDelay(statusErr.RetryAfter), true
			}
			return r.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return r.backoffDelay(attempt), true
	}

	return 0, false
}

func (r *Remote) backoffDelay(attempt int) time.Duration {
	base := r.retryBaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := r.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return r.capDelay(delay)
}

func (r *Remote) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := r.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (r *Remote) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
