package postgres

import (
	"context"
	"encoding/json"
	"time"

	"clinicflow/visit-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// insertPrintJob queues a slip for the print worker inside the transaction of
// the mutation that produced it. Printing failures never reach clinic state.
func insertPrintJob(ctx context.Context, tx pgx.Tx, kind string, payload map[string]interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO print_jobs (job_id, kind, payload_json, status, attempts, created_at)
		VALUES ($1, $2, $3, 'pending', 0, $4)
	`, uuid.NewString(), kind, payloadJSON, time.Now().UTC())
	return err
}

func (s *Store) ClaimPrintJobs(ctx context.Context, batchSize int) ([]store.PrintJob, error) {
	if batchSize <= 0 {
		batchSize = 20
	}
	rows, err := s.pool.Query(ctx, `
		UPDATE print_jobs
		SET status = 'printing', attempts = attempts + 1
		WHERE job_id IN (
			SELECT job_id FROM print_jobs
			WHERE status IN ('pending', 'retry')
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT $1
		)
		RETURNING job_id, kind, payload_json, attempts, created_at
	`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []store.PrintJob
	for rows.Next() {
		var job store.PrintJob
		if err := rows.Scan(&job.JobID, &job.Kind, &job.Payload, &job.Attempts, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) MarkPrintJobDone(ctx context.Context, jobID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE print_jobs SET status = 'printed', printed_at = $1 WHERE job_id = $2
	`, time.Now().UTC(), jobID)
	return err
}

func (s *Store) MarkPrintJobFailed(ctx context.Context, jobID, reason string, dead bool) error {
	status := "retry"
	if dead {
		status = "dead"
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE print_jobs SET status = $1, last_error = $2 WHERE job_id = $3
	`, status, reason, jobID)
	return err
}
