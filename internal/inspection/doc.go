// Package inspection defines the shared data model for electrical
// installation analysis: detections reported by a detector backend, the
// candidate code violations derived from them, and the per-image and
// per-video assessment verdicts.
package inspection
