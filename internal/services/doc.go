// Package services provides cross-cutting helpers shared by pipeline stages:
// the sentinel error taxonomy used to classify failures, and context carriers
// for record, stage, and correlation identifiers.
package services
