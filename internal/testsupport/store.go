package testsupport

import (
	"context"
	"testing"

	"voltcheck/internal/config"
	"voltcheck/internal/records"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewSubmission creates a pending record for tests using the provided store.
func NewSubmission(t testing.TB, store *records.Store, sourcePath string, kind records.MediaKind) *records.Item {
	t.Helper()

	item, err := store.NewSubmission(context.Background(), sourcePath, kind)
	if err != nil {
		t.Fatalf("store.NewSubmission: %v", err)
	}
	return item
}
