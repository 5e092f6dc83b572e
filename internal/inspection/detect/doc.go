// Package detect wraps the component detector behind a small interface with
// interchangeable backends: a deterministic mock used by default and a remote
// HTTP detector service client with bounded retries.
package detect
