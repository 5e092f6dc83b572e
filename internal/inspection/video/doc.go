// Package video samples representative frames from uploaded videos, runs the
// image pipeline on each still, and folds per-frame verdicts into one
// pessimistic video verdict. Extracted stills are a transient working set,
// removed after aggregation.
package video
