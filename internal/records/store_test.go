package records_test

import (
	"context"
	"testing"
	"time"

	"voltcheck/internal/records"
	"voltcheck/internal/testsupport"
)

func TestNewSubmissionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewSubmission(t, store, "/media/panel.jpg", records.MediaImage)
	if item.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if item.Status != records.StatusPending {
		t.Fatalf("status = %s, want pending", item.Status)
	}
	if item.MediaKind != records.MediaImage {
		t.Fatalf("media kind = %s", item.MediaKind)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps")
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil {
		t.Fatal("record not found")
	}
	if fetched.SourcePath != "/media/panel.jpg" {
		t.Fatalf("source path = %q", fetched.SourcePath)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing record, got %+v", item)
	}
}

func TestUpdatePersistsAllFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewSubmission(t, store, "/media/panel.jpg", records.MediaImage)

	heartbeat := time.Now().UTC()
	item.Status = records.StatusCompleted
	item.ResultJSON = `{"overall_result":"pass"}`
	item.SetProgressComplete("Analyzed", "Verdict: pass")
	item.LastHeartbeat = &heartbeat
	item.NeedsReview = true
	item.ReviewReason = "manual follow-up"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != records.StatusCompleted {
		t.Fatalf("status = %s", fetched.Status)
	}
	if fetched.ResultJSON != item.ResultJSON {
		t.Fatalf("result json = %q", fetched.ResultJSON)
	}
	if fetched.ProgressPercent != 100 {
		t.Fatalf("progress = %v", fetched.ProgressPercent)
	}
	if fetched.LastHeartbeat == nil {
		t.Fatal("heartbeat not persisted")
	}
	if !fetched.NeedsReview || fetched.ReviewReason != "manual follow-up" {
		t.Fatalf("review flags = %v %q", fetched.NeedsReview, fetched.ReviewReason)
	}
}

func TestUpdateNilItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if err := store.Update(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil item")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewSubmission(t, store, "/media/a.jpg", records.MediaImage)
	testsupport.NewSubmission(t, store, "/media/b.mp4", records.MediaVideo)

	first.Status = records.StatusFailed
	first.ErrorMessage = "boom"
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all records = %d, want 2", len(all))
	}

	failed, err := store.List(ctx, records.StatusFailed)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != first.ID {
		t.Fatalf("failed records = %+v", failed)
	}
}

func TestNextForStatusesOrdersByCreation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewSubmission(t, store, "/media/a.jpg", records.MediaImage)
	testsupport.NewSubmission(t, store, "/media/b.jpg", records.MediaImage)

	next, err := store.NextForStatuses(ctx, records.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("next = %+v, want id %d", next, first.ID)
	}

	none, err := store.NextForStatuses(ctx, records.StatusCompleted)
	if err != nil {
		t.Fatalf("NextForStatuses completed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil, got %+v", none)
	}

	empty, err := store.NextForStatuses(ctx)
	if err != nil || empty != nil {
		t.Fatalf("no statuses should return nil, nil; got %+v, %v", empty, err)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.NewSubmission(t, store, "/media/a.jpg", records.MediaImage)
	item.Status = records.StatusAnalyzing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset count = %d, want 1", reset)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != records.StatusPending {
		t.Fatalf("status = %s, want pending", fetched.Status)
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stale := testsupport.NewSubmission(t, store, "/media/stale.jpg", records.MediaImage)
	oldBeat := time.Now().UTC().Add(-10 * time.Minute)
	stale.Status = records.StatusAnalyzing
	stale.LastHeartbeat = &oldBeat
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update stale: %v", err)
	}

	live := testsupport.NewSubmission(t, store, "/media/live.jpg", records.MediaImage)
	freshBeat := time.Now().UTC()
	live.Status = records.StatusAnalyzing
	live.LastHeartbeat = &freshBeat
	if err := store.Update(ctx, live); err != nil {
		t.Fatalf("Update live: %v", err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(ctx, time.Now().UTC().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}

	staleAfter, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID stale: %v", err)
	}
	if staleAfter.Status != records.StatusPending || staleAfter.LastHeartbeat != nil {
		t.Fatalf("stale record = %s heartbeat %v", staleAfter.Status, staleAfter.LastHeartbeat)
	}

	liveAfter, err := store.GetByID(ctx, live.ID)
	if err != nil {
		t.Fatalf("GetByID live: %v", err)
	}
	if liveAfter.Status != records.StatusAnalyzing {
		t.Fatalf("live record status = %s, want analyzing", liveAfter.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	failRecord := func(path string) *records.Item {
		item := testsupport.NewSubmission(t, store, path, records.MediaImage)
		item.Status = records.StatusFailed
		item.ErrorMessage = "boom"
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}
		return item
	}

	first := failRecord("/media/a.jpg")
	second := failRecord("/media/b.jpg")
	completed := testsupport.NewSubmission(t, store, "/media/c.jpg", records.MediaImage)
	completed.Status = records.StatusCompleted
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("Update completed: %v", err)
	}

	retried, err := store.RetryFailed(ctx, first.ID, completed.ID)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("retried = %d, want 1 (completed record must not reset)", retried)
	}

	remaining, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed all: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("retried all = %d, want 1", remaining)
	}

	secondAfter, err := store.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if secondAfter.Status != records.StatusPending || secondAfter.ErrorMessage != "" {
		t.Fatalf("second record = %s %q", secondAfter.Status, secondAfter.ErrorMessage)
	}
}

func TestStatsAndHealth(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewSubmission(t, store, "/media/a.jpg", records.MediaImage)
	failed := testsupport.NewSubmission(t, store, "/media/b.jpg", records.MediaImage)
	failed.Status = records.StatusFailed
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[records.StatusPending] != 1 || stats[records.StatusFailed] != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Failed != 1 {
		t.Fatalf("health = %+v", health)
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	pending := testsupport.NewSubmission(t, store, "/media/a.jpg", records.MediaImage)
	completed := testsupport.NewSubmission(t, store, "/media/b.jpg", records.MediaImage)
	completed.Status = records.StatusCompleted
	if err := store.Update(ctx, completed); err != nil {
		t.Fatalf("Update: %v", err)
	}
	failed := testsupport.NewSubmission(t, store, "/media/c.jpg", records.MediaImage)
	failed.Status = records.StatusFailed
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.Remove(ctx, pending.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, pending.ID)
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}

	cleared, err := store.ClearCompleted(ctx)
	if err != nil || cleared != 1 {
		t.Fatalf("ClearCompleted = %d, %v", cleared, err)
	}
	cleared, err = store.ClearFailed(ctx)
	if err != nil || cleared != 1 {
		t.Fatalf("ClearFailed = %d, %v", cleared, err)
	}

	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("remaining records = %d, want 0", len(remaining))
	}
}

func TestOpenReusesDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	item := testsupport.NewSubmission(t, store, "/media/a.jpg", records.MediaImage)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	fetched, err := reopened.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil || fetched.SourcePath != "/media/a.jpg" {
		t.Fatalf("record not persisted across reopen: %+v", fetched)
	}
}
