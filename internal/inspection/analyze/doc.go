// Package analyze composes the detector, rule engine, and assessor into the
// single-image analysis pipeline shared by the CLI, the workflow stage, and
// video frame analysis.
package analyze
