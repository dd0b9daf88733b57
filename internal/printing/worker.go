package printing

import (
	"context"
	"log"
	"time"

	"clinicflow/visit-service/internal/store"
)

type Worker struct {
	queue       store.PrintQueue
	provider    Provider
	batchSize   int
	maxAttempts int
}

type Config struct {
	BatchSize   int
	MaxAttempts int
	Provider    string
}

func New(queue store.PrintQueue, cfg Config) *Worker {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 20
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{
		queue:       queue,
		provider:    NewProvider(cfg.Provider),
		batchSize:   batch,
		maxAttempts: maxAttempts,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	jobs, err := w.queue.ClaimPrintJobs(ctx, w.batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		text, err := Render(job.Kind, job.Payload)
		if err != nil {
			// A payload that cannot render will never succeed; park it.
			if markErr := w.queue.MarkPrintJobFailed(ctx, job.JobID, err.Error(), true); markErr != nil {
				return markErr
			}
			continue
		}

		if err := w.provider.Print(ctx, job.JobID, text); err != nil {
			dead := job.Attempts >= w.maxAttempts
			if markErr := w.queue.MarkPrintJobFailed(ctx, job.JobID, err.Error(), dead); markErr != nil {
				return markErr
			}
			continue
		}

		if err := w.queue.MarkPrintJobDone(ctx, job.JobID); err != nil {
			return err
		}
	}
	return nil
}

func Start(ctx context.Context, interval time.Duration, w *Worker) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Run(ctx); err != nil {
				log.Printf("print worker error: %v", err)
			}
		}
	}
}
