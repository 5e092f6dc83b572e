// Package nec holds the embedded National Electrical Code reference index:
// a small curated set of code sections with titles, content, subsections,
// and keyword sets used for query retrieval. The index is read-only for the
// process lifetime.
package nec
