package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"stickermaker/internal/adapters/localstorage"
	"stickermaker/internal/core/domain"
	"stickermaker/internal/core/ports"
	"stickermaker/internal/imageops"
)

// Orchestrator coordinates batch processing. At most one batch runs at a
// time per Orchestrator.
type Orchestrator struct {
	remover  ports.BackgroundRemover
	storage  ports.Storage
	renderer *imageops.Renderer
	logger   *log.Logger
	running  atomic.Bool
}

// NewOrchestrator creates a new Orchestrator. remover may be nil or
// unconfigured when no API key is set; modes that remove the background
// are then rejected up front.
func NewOrchestrator(
	remover ports.BackgroundRemover,
	storage ports.Storage,
	renderer *imageops.Renderer,
	logger *log.Logger,
) *Orchestrator {
	if renderer == nil {
		renderer = imageops.NewRenderer()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Orchestrator{
		remover:  remover,
		storage:  storage,
		renderer: renderer,
		logger:   logger,
	}
}

// RunBatch processes files in order on the calling goroutine. Progress is
// sent to events when it is non-nil. Per-file failures are recorded in the
// result; the returned error is reserved for failures of the whole batch.
func (o *Orchestrator) RunBatch(ctx context.Context, files []string, mode domain.Mode, events chan<- domain.Event) (*domain.BatchResult, error) {
	job, err := o.acquire(files, mode)
	if err != nil {
		return nil, err
	}
	defer o.running.Store(false)
	return o.run(ctx, job, events)
}

// Start runs the batch on a background goroutine and returns the event
// stream. The channel is closed after the EventFinished event. Validation
// errors are returned synchronously and no goroutine is started.
func (o *Orchestrator) Start(ctx context.Context, files []string, mode domain.Mode) (<-chan domain.Event, error) {
	job, err := o.acquire(files, mode)
	if err != nil {
		return nil, err
	}

	// Sized so the worker never blocks on a slow consumer.
	events := make(chan domain.Event, len(files)+2)
	go func() {
		defer close(events)
		defer o.running.Store(false)
		if _, err := o.run(ctx, job, events); err != nil {
			events <- domain.Event{Kind: domain.EventFinished, JobID: job.ID, Total: len(job.Files), Err: err}
		}
	}()
	return events, nil
}

// acquire validates the request and marks the orchestrator busy.
func (o *Orchestrator) acquire(files []string, mode domain.Mode) (domain.Job, error) {
	if len(files) == 0 {
		return domain.Job{}, domain.ErrNoInputs
	}
	if mode.RemoveBackground() && (o.remover == nil || !o.remover.Configured()) {
		return domain.Job{}, domain.ErrMissingAPIKey
	}
	if !o.running.CompareAndSwap(false, true) {
		return domain.Job{}, domain.ErrBatchRunning
	}
	return domain.Job{
		ID:        uuid.New().String(),
		Files:     append([]string(nil), files...),
		Mode:      mode,
		OutputDir: localstorage.OutputDirFor(files[0]),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (o *Orchestrator) run(ctx context.Context, job domain.Job, events chan<- domain.Event) (*domain.BatchResult, error) {
	total := len(job.Files)
	o.logger.Printf("[JOB %s] Starting batch: %d file(s), mode %s", job.ID, total, job.Mode)

	if err := o.storage.InitOutput(ctx, job.OutputDir); err != nil {
		o.logger.Printf("[JOB %s] ERROR: %v", job.ID, err)
		return nil, err
	}

	result := &domain.BatchResult{Job: job, Files: make([]domain.FileResult, 0, total)}
	emit(events, domain.Event{Kind: domain.EventStarted, JobID: job.ID, Total: total})

	for i, path := range job.Files {
		if ctx.Err() != nil {
			result.Cancelled = true
			o.logger.Printf("[JOB %s] Cancelled after %d/%d", job.ID, i, total)
			break
		}

		fr := domain.FileResult{InputPath: path, StartedAt: time.Now().UTC()}
		out, err := o.ProcessImage(ctx, path, job.Mode, job.OutputDir)
		fr.FinishedAt = time.Now().UTC()
		if err != nil {
			fr.Error = err.Error()
			result.Failed++
		} else {
			fr.OutputPath = out
			result.Succeeded++
		}
		result.Files = append(result.Files, fr)

		emit(events, domain.Event{Kind: domain.EventFileDone, JobID: job.ID, Current: i + 1, Total: total, File: fr})
	}

	// Per-file lines and the summary travel as events; the consumer renders them.
	result.CompletedAt = time.Now().UTC()

	emit(events, domain.Event{Kind: domain.EventFinished, JobID: job.ID, Current: len(result.Files), Total: total, Result: result})
	return result, nil
}

func emit(events chan<- domain.Event, ev domain.Event) {
	if events != nil {
		events <- ev
	}
}

// Describe formats a file result the way the progress log shows it.
func Describe(fr domain.FileResult) string {
	if fr.OK() {
		return fmt.Sprintf("Created: %s", filepath.Base(fr.OutputPath))
	}
	return fmt.Sprintf("Error: %s - %s", filepath.Base(fr.InputPath), fr.Error)
}
