package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractionError reports that no frames could be obtained from a video.
// Unlike a per-frame analysis failure, this is fatal for the request.
type ExtractionError struct {
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("frame extraction: %s", e.Path)
	}
	return fmt.Sprintf("frame extraction: %s: %v", e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// extractFrames decodes the video sequentially with ffmpeg and writes every
// Nth frame as a JPEG still into workDir. The returned paths are ordered by
// source position: the i-th still corresponds to source frame index i*stride.
func extractFrames(ctx context.Context, binary, videoPath, workDir string, stride int) ([]string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	if stride <= 0 {
		stride = 1
	}
	if strings.TrimSpace(videoPath) == "" {
		return nil, &ExtractionError{Path: videoPath, Cause: errors.New("empty path")}
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, &ExtractionError{Path: videoPath, Cause: err}
	}

	pattern := filepath.Join(workDir, "frame_%06d.jpg")
	selectExpr := fmt.Sprintf("select=not(mod(n\\,%d))", stride)
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error",
		"-i", videoPath,
		"-vf", selectExpr,
		"-fps_mode", "vfr",
		"-f", "image2",
		pattern,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ExtractionError{Path: videoPath, Cause: fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))}
	}

	frames, err := listFrames(workDir)
	if err != nil {
		return nil, &ExtractionError{Path: videoPath, Cause: err}
	}
	if len(frames) == 0 {
		return nil, &ExtractionError{Path: videoPath, Cause: errors.New("no frames extracted")}
	}
	return frames, nil
}

func listFrames(workDir string) ([]string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, err
	}
	var frames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.HasSuffix(name, ".jpg") {
			frames = append(frames, filepath.Join(workDir, name))
		}
	}
	// ffmpeg numbers stills sequentially, so lexical order is source order.
	sort.Strings(frames)
	return frames, nil
}
