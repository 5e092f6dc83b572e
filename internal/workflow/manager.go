package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"voltcheck/internal/config"
	"voltcheck/internal/logging"
	"voltcheck/internal/records"
	"voltcheck/internal/stage"
)

// Manager coordinates record processing through the analysis stage.
type Manager struct {
	cfg          *config.Config
	store        *records.Store
	handler      stage.Handler
	logger       *slog.Logger
	pollInterval time.Duration
	retryDelay   time.Duration

	heartbeat *HeartbeatMonitor

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	lastErr  error
	lastItem *records.Item
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, store *records.Store, handler stage.Handler, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:          cfg,
		store:        store,
		handler:      handler,
		logger:       logging.NewComponentLogger(logger, "workflow-manager"),
		pollInterval: time.Duration(cfg.Workflow.PollInterval) * time.Second,
		retryDelay:   time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Workflow.HeartbeatTimeout)*time.Second,
		),
	}
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.handler == nil {
		m.mu.Unlock()
		return errors.New("workflow stage not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Running reports whether the processing loop is active.
func (m *Manager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastError returns the most recent loop error, if any.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// LastItem returns the most recently processed record.
func (m *Manager) LastItem() *records.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastItem
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	logger := m.logger

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.ReclaimStaleRecords(ctx, logger); err != nil {
			logger.Warn("reclaim stale processing failed; stuck records may remain", logging.Error(err))
		}

		item, err := m.store.NextForStatuses(ctx, records.StatusPending)
		if err != nil {
			m.setLastError(err)
			logger.Error("failed to fetch next record", logging.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.retryDelay):
			}
			continue
		}
		if item == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.pollInterval):
			}
			continue
		}

		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *records.Item) {
	m.mu.Lock()
	m.lastItem = item
	m.mu.Unlock()
}
