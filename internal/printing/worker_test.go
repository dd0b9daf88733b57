package printing

import (
	"context"
	"errors"
	"testing"

	"clinicflow/visit-service/internal/store"
)

type fakeQueue struct {
	jobs   []store.PrintJob
	done   []string
	failed []string
	dead   []string
}

func (q *fakeQueue) ClaimPrintJobs(ctx context.Context, batchSize int) ([]store.PrintJob, error) {
	jobs := q.jobs
	q.jobs = nil
	return jobs, nil
}

func (q *fakeQueue) MarkPrintJobDone(ctx context.Context, jobID string) error {
	q.done = append(q.done, jobID)
	return nil
}

func (q *fakeQueue) MarkPrintJobFailed(ctx context.Context, jobID, reason string, dead bool) error {
	if dead {
		q.dead = append(q.dead, jobID)
	} else {
		q.failed = append(q.failed, jobID)
	}
	return nil
}

type fakeProvider struct {
	err error
}

func (p fakeProvider) Print(ctx context.Context, jobID, text string) error {
	return p.err
}

func TestWorkerMarksRenderedJobsDone(t *testing.T) {
	queue := &fakeQueue{
		jobs: []store.PrintJob{
			{JobID: "job-1", Kind: "visit_slip", Payload: []byte(`{"queue_number": 3}`)},
		},
	}
	w := &Worker{queue: queue, provider: fakeProvider{}, batchSize: 10, maxAttempts: 3}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(queue.done) != 1 || queue.done[0] != "job-1" {
		t.Fatalf("expected job-1 done, got %v", queue.done)
	}
}

func TestWorkerParksUnrenderableJob(t *testing.T) {
	queue := &fakeQueue{
		jobs: []store.PrintJob{
			{JobID: "job-1", Kind: "visit_slip", Payload: []byte(`garbage`)},
		},
	}
	w := &Worker{queue: queue, provider: fakeProvider{}, batchSize: 10, maxAttempts: 3}

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(queue.dead) != 1 {
		t.Fatalf("expected job parked as dead, got %v", queue.dead)
	}
}

func TestWorkerRetriesThenDeadLetters(t *testing.T) {
	printerDown := errors.New("printer offline")

	queue := &fakeQueue{
		jobs: []store.PrintJob{
			{JobID: "job-1", Kind: "visit_slip", Payload: []byte(`{}`), Attempts: 1},
		},
	}
	w := &Worker{queue: queue, provider: fakeProvider{err: printerDown}, batchSize: 10, maxAttempts: 3}
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(queue.failed) != 1 {
		t.Fatalf("expected retry, got failed=%v dead=%v", queue.failed, queue.dead)
	}

	queue.jobs = []store.PrintJob{
		{JobID: "job-1", Kind: "visit_slip", Payload: []byte(`{}`), Attempts: 3},
	}
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(queue.dead) != 1 {
		t.Fatalf("expected dead letter after max attempts, got failed=%v dead=%v", queue.failed, queue.dead)
	}
}
