// Package analyzer is the workflow stage that runs the inspection pipeline
// for a claimed record and persists the resulting verdict JSON.
package analyzer
