// Package ffprobe shells out to ffprobe for container metadata: frame rate,
// frame counts, and duration used by video sampling.
package ffprobe
