package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bindery/internal/logging"
	"bindery/internal/queue"
	"bindery/internal/services"
	"bindery/internal/services/metastore"
	"bindery/internal/stage"
	"bindery/internal/stages"
)

// binding pairs a processing status with the handler that owns it.
type binding struct {
	status  queue.Status
	handler stage.Handler
}

func (m *Manager) bindings(state *stages.State) []binding {
	return []binding{
		{queue.StatusDownloading, stages.NewDownload(m.cfg, m.catalog, m.storage, state, m.logger)},
		{queue.StatusParsing, stages.NewParse(state, m.logger)},
		{queue.StatusCleaning, stages.NewClean(m.cfg, state, m.logger)},
		{queue.StatusUploading, stages.NewUpload(m.cfg, m.storage, m.meta, state, m.logger)},
	}
}

// RunBatch drains the queue, processing pending jobs one at a time
// until the queue is empty, the context is cancelled, or a stop is
// requested. Per-job failures are recorded and the batch moves on.
func (m *Manager) RunBatch(ctx context.Context) (BatchResult, error) {
	start := time.Now()
	var result BatchResult

	if reset, err := m.store.ResetStuck(ctx); err != nil {
		m.logger.Warn("could not reset stuck jobs", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("requeued jobs from interrupted run", logging.Int64("count", reset))
	}

	for {
		if err := ctx.Err(); err != nil {
			break
		}
		if m.Stopping() {
			m.logger.Info("stop requested; finishing batch")
			break
		}

		job, err := m.store.NextPending(ctx)
		if err != nil {
			return result, fmt.Errorf("fetch next pending job: %w", err)
		}
		if job == nil {
			break
		}

		if err := m.ProcessJob(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			result.Failed++
		} else {
			result.Processed++
		}

		if m.jobDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(m.jobDelay):
			}
		}
	}

	result.Duration = time.Since(start)
	if result.Processed > 0 || result.Failed > 0 {
		if err := m.notifier.NotifyBatchCompleted(ctx, result.Processed, result.Failed, result.Duration); err != nil {
			m.logger.Warn("batch notification failed", logging.Error(err))
		}
	}
	return result, nil
}

// ProcessBook runs one book end to end, enqueueing it first unless an
// active job already exists.
func (m *Manager) ProcessBook(ctx context.Context, bookID int64) (*queue.Job, error) {
	job, err := m.store.FindActiveByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		job, err = m.store.Enqueue(ctx, bookID, "", 0)
		if err != nil {
			return nil, err
		}
	}
	if err := m.ProcessJob(ctx, job); err != nil {
		return job, err
	}
	return job, nil
}

// ProcessJob runs a single job through the full stage sequence.
func (m *Manager) ProcessJob(ctx context.Context, job *queue.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, m.logger)

	state := &stages.State{}
	jobStart := time.Now()

	if err := m.notifier.NotifyBookStarted(ctx, job.Title, job.BookID); err != nil {
		logger.Warn("start notification failed", logging.Error(err))
	}

	for _, b := range m.bindings(state) {
		stageCtx := services.WithStage(ctx, stageName(b.status))
		stageLogger := logging.WithContext(stageCtx, m.logger)

		job.Status = b.status
		if err := m.store.Update(stageCtx, job); err != nil {
			return m.failJob(ctx, job, fmt.Errorf("persist %s transition: %w", b.status, err))
		}
		m.mirrorJob(stageCtx, job)

		stageLogger.Info("stage started")
		if err := b.handler.Prepare(stageCtx, job); err != nil {
			return m.failJob(ctx, job, err)
		}
		if err := b.handler.Execute(stageCtx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return m.failJob(ctx, job, err)
		}
		if err := m.store.Update(stageCtx, job); err != nil {
			return m.failJob(ctx, job, fmt.Errorf("persist %s result: %w", b.status, err))
		}
		stageLogger.Info("stage completed")
	}

	job.Status = queue.StatusDone
	if err := m.store.Update(ctx, job); err != nil {
		return m.failJob(ctx, job, fmt.Errorf("persist completion: %w", err))
	}
	m.mirrorJob(ctx, job)
	m.notifyOutcome(ctx, job, state)

	logger.Info("job complete",
		logging.Int64(logging.FieldBookID, job.BookID),
		logging.Duration("job_duration", time.Since(jobStart)))
	return nil
}

// failJob records the failure on the queue row and reports it. The
// original error is returned so the batch driver can count it.
func (m *Manager) failJob(ctx context.Context, job *queue.Job, cause error) error {
	logger := logging.WithContext(ctx, m.logger)
	logger.Error("job failed",
		logging.Int64(logging.FieldBookID, job.BookID),
		logging.Error(cause))

	job.Status = services.FailureStatus(cause)
	job.SetFailed(cause.Error())
	if err := m.store.Update(ctx, job); err != nil {
		logger.Error("could not persist job failure", logging.Error(err))
	}
	m.mirrorJob(ctx, job)

	if err := m.notifier.NotifyError(ctx, cause, fmt.Sprintf("book %d", job.BookID)); err != nil {
		logger.Warn("failure notification failed", logging.Error(err))
	}
	return cause
}

// mirrorJob pushes queue state to the metadata store. Failures are
// logged and swallowed; the queue row stays authoritative.
func (m *Manager) mirrorJob(ctx context.Context, job *queue.Job) {
	record := metastore.JobRecord{
		SourceID:     job.BookID,
		Status:       string(job.Status),
		Priority:     job.Priority,
		Attempts:     job.Attempts,
		ErrorMessage: job.ErrorMessage,
		QualityScore: job.QualityScore,
	}
	if err := m.meta.UpsertJob(ctx, record); err != nil {
		logging.WithContext(ctx, m.logger).Warn("job mirror failed", logging.Error(err))
	}
}

func (m *Manager) notifyOutcome(ctx context.Context, job *queue.Job, state *stages.State) {
	logger := logging.WithContext(ctx, m.logger)
	score := state.Quality.Score
	if state.Quality.Score >= m.cfg.Processing.MinQualityScore {
		if err := m.notifier.NotifyBookPublished(ctx, job.Title, score); err != nil {
			logger.Warn("publish notification failed", logging.Error(err))
		}
		return
	}
	reason := strings.Join(state.Quality.Issues, "; ")
	if err := m.notifier.NotifyBookRejected(ctx, job.Title, score, reason); err != nil {
		logger.Warn("reject notification failed", logging.Error(err))
	}
}

func stageName(status queue.Status) string {
	switch status {
	case queue.StatusDownloading:
		return "download"
	case queue.StatusParsing:
		return "parse"
	case queue.StatusCleaning:
		return "clean"
	case queue.StatusUploading:
		return "upload"
	default:
		return string(status)
	}
}
