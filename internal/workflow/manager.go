package workflow

import (
	"log/slog"
	"sync/atomic"
	"time"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/notifications"
	"bindery/internal/queue"
	"bindery/internal/services/gutendex"
	"bindery/internal/services/metastore"
	"bindery/internal/services/objstore"
)

// Manager coordinates sequential processing of queued jobs.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	notifier notifications.Service
	catalog  *gutendex.Client
	storage  *objstore.Client
	meta     *metastore.Client

	jobDelay time.Duration
	stopping atomic.Bool
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	Processed int
	Failed    int
	Duration  time.Duration
}

// NewManager constructs a manager with default service clients.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithDependencies(
		cfg, store, logger,
		notifications.NewService(cfg),
		gutendex.NewFromConfig(cfg),
		objstore.NewFromConfig(cfg),
		metastore.NewFromConfig(cfg),
	)
}

// NewManagerWithDependencies allows injecting collaborators (used in tests).
func NewManagerWithDependencies(
	cfg *config.Config,
	store *queue.Store,
	logger *slog.Logger,
	notifier notifications.Service,
	catalog *gutendex.Client,
	storage *objstore.Client,
	meta *metastore.Client,
) *Manager {
	delay := time.Duration(cfg.Processing.JobDelaySeconds) * time.Second
	if delay < 0 {
		delay = 0
	}
	return &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifier,
		catalog:  catalog,
		storage:  storage,
		meta:     meta,
		jobDelay: delay,
	}
}

// Stop requests a cooperative shutdown. A book already in progress is
// allowed to finish; no new book starts afterwards.
func (m *Manager) Stop() {
	m.stopping.Store(true)
}

// Stopping reports whether a shutdown has been requested.
func (m *Manager) Stopping() bool {
	return m.stopping.Load()
}
