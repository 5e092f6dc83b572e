package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"voltcheck/internal/logging"
	"voltcheck/internal/records"
	"voltcheck/internal/services"
)

// processItem claims the record, runs Prepare and Execute with a heartbeat
// goroutine alive for the duration, and persists the outcome.
func (m *Manager) processItem(ctx context.Context, item *records.Item) error {
	stageCtx := services.WithRecordID(services.WithStage(ctx, "analyzer"), item.ID)
	logger := logging.WithContext(stageCtx, m.logger).With(logging.Int64(logging.FieldRecordID, item.ID))

	now := time.Now().UTC()
	item.Status = records.StatusAnalyzing
	item.LastHeartbeat = &now
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to claim record", logging.Error(err))
		return err
	}

	logger.Info("processing record",
		logging.String("media_kind", string(item.MediaKind)),
		logging.String("source", item.SourcePath),
	)

	if err := m.handler.Prepare(stageCtx, item); err != nil {
		m.finishFailure(stageCtx, logger, item, err)
		return err
	}

	hbCtx, stopHeartbeat := context.WithCancel(stageCtx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, item.ID)

	execErr := m.handler.Execute(stageCtx, item)
	stopHeartbeat()
	hbWG.Wait()

	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			m.failForShutdown(item)
			return execErr
		}
		m.finishFailure(stageCtx, logger, item, execErr)
		return execErr
	}

	item.LastHeartbeat = nil
	if err := m.store.Update(stageCtx, item); err != nil {
		m.setLastError(err)
		logger.Error("failed to persist completed record", logging.Error(err))
		return err
	}

	m.setLastItem(item)
	logger.Info("record completed", logging.String("status", string(item.Status)))
	return nil
}

func (m *Manager) finishFailure(ctx context.Context, logger *slog.Logger, item *records.Item, stageErr error) {
	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = "analysis failed"
	}

	status := services.FailureStatus(stageErr)
	item.SetFailed(message)
	if status == records.StatusReview {
		item.Status = records.StatusReview
		item.NeedsReview = true
		item.ReviewReason = message
	}

	logger.Error("stage failed",
		logging.String("resolved_status", string(item.Status)),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastError(stageErr)
	m.setLastItem(item)
}

// failForShutdown marks an interrupted record so the next daemon start
// resubmits it instead of leaving it stuck in analyzing.
func (m *Manager) failForShutdown(item *records.Item) {
	bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	item.Status = records.StatusPending
	item.LastHeartbeat = nil
	item.SetProgress("Interrupted", records.DaemonStopReason, 0)
	if err := m.store.Update(bgCtx, item); err != nil {
		m.logger.Warn("failed to release record during shutdown", logging.Error(err))
	}
}
