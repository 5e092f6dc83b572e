// Package rules derives candidate code violations from component detections
// using a data-driven registry of per-component rules.
package rules
