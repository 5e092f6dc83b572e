// Package assess folds detections and violations into a per-image verdict
// with confidence scores and remediation recommendations.
package assess
