package postgres

import (
	"context"
	"database/sql"
	"time"

	"clinicflow/visit-service/internal/store"
)

func (s *Store) DailySummary(ctx context.Context, day string) (store.DailySummary, error) {
	if day == "" {
		day = visitDay(time.Now().UTC(), s.loc)
	}
	summary := store.DailySummary{
		Day:              day,
		ByStatus:         map[string]int{},
		PaymentsByMethod: map[string]int64{},
	}

	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM visits
		WHERE visit_date = $1
		GROUP BY status
	`, day)
	if err != nil {
		return store.DailySummary{}, err
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return store.DailySummary{}, err
		}
		summary.ByStatus[status] = count
		summary.TotalVisits += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return store.DailySummary{}, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT payment_method, COALESCE(SUM(payment_amount), 0)
		FROM visits
		WHERE visit_date = $1 AND payment_method IS NOT NULL
		GROUP BY payment_method
	`, day)
	if err != nil {
		return store.DailySummary{}, err
	}
	for rows.Next() {
		var method string
		var total int64
		if err := rows.Scan(&method, &total); err != nil {
			rows.Close()
			return store.DailySummary{}, err
		}
		summary.PaymentsByMethod[method] = total
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return store.DailySummary{}, err
	}

	var revenue sql.NullInt64
	row := s.pool.QueryRow(ctx, `
		SELECT SUM(ps.total_amount)
		FROM pharmacy_sales ps
		JOIN prescriptions pr ON pr.prescription_id = ps.prescription_id
		JOIN visits v ON v.visit_id = pr.visit_id
		WHERE v.visit_date = $1
	`, day)
	if err := row.Scan(&revenue); err != nil {
		return store.DailySummary{}, err
	}
	if revenue.Valid {
		summary.PharmacyRevenue = revenue.Int64
	}

	row = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM medicines WHERE stock <= low_stock_threshold
	`)
	if err := row.Scan(&summary.LowStockCount); err != nil {
		return store.DailySummary{}, err
	}

	return summary, nil
}
