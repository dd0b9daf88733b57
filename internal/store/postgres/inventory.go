package postgres

import (
	"context"
	"errors"
	"time"

	"clinicflow/visit-service/internal/models"
	"clinicflow/visit-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateMedicine(ctx context.Context, input store.MedicineInput) (models.Medicine, error) {
	medicine := models.Medicine{
		MedicineID:        uuid.NewString(),
		Name:              input.Name,
		Category:          input.Category,
		UnitPrice:         input.UnitPrice,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
		CreatedAt:         time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO medicines (medicine_id, name, category, unit_price, stock, low_stock_threshold, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, medicine.MedicineID, medicine.Name, medicine.Category, medicine.UnitPrice,
		medicine.Stock, medicine.LowStockThreshold, medicine.CreatedAt)
	if err != nil {
		return models.Medicine{}, err
	}
	return medicine, nil
}

func (s *Store) UpdateMedicine(ctx context.Context, medicineID string, input store.MedicineInput) (models.Medicine, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE medicines
		SET name = $1, category = $2, unit_price = $3, low_stock_threshold = $4
		WHERE medicine_id = $5
		RETURNING medicine_id, name, category, unit_price, stock, low_stock_threshold, created_at
	`, input.Name, input.Category, input.UnitPrice, input.LowStockThreshold, medicineID)
	return scanMedicine(row)
}

func (s *Store) DeleteMedicine(ctx context.Context, medicineID string) error {
	var referenced bool
	row := s.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM prescription_medicines WHERE medicine_id = $1)
			OR EXISTS (SELECT 1 FROM pharmacy_sale_items WHERE medicine_id = $1)
	`, medicineID)
	if err := row.Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return store.ErrMedicineInUse
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM medicines WHERE medicine_id = $1
	`, medicineID)
	if err != nil {
		// RESTRICT constraints catch a reference created between the check
		// and the delete.
		if isForeignKeyViolation(err) {
			return store.ErrMedicineInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrMedicineNotFound
	}
	return nil
}

func (s *Store) RestockMedicine(ctx context.Context, medicineID string, quantity int) (models.Medicine, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE medicines
		SET stock = stock + $1
		WHERE medicine_id = $2
		RETURNING medicine_id, name, category, unit_price, stock, low_stock_threshold, created_at
	`, quantity, medicineID)
	return scanMedicine(row)
}

func (s *Store) ListMedicines(ctx context.Context) ([]models.Medicine, error) {
	return s.listMedicines(ctx, `
		SELECT medicine_id, name, category, unit_price, stock, low_stock_threshold, created_at
		FROM medicines
		ORDER BY name ASC
	`)
}

func (s *Store) ListLowStock(ctx context.Context) ([]models.Medicine, error) {
	return s.listMedicines(ctx, `
		SELECT medicine_id, name, category, unit_price, stock, low_stock_threshold, created_at
		FROM medicines
		WHERE stock <= low_stock_threshold
		ORDER BY stock ASC, name ASC
	`)
}

func (s *Store) listMedicines(ctx context.Context, query string) ([]models.Medicine, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medicines []models.Medicine
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, medicine)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return medicines, nil
}

func scanMedicine(row pgx.Row) (models.Medicine, error) {
	var medicine models.Medicine
	if err := row.Scan(&medicine.MedicineID, &medicine.Name, &medicine.Category,
		&medicine.UnitPrice, &medicine.Stock, &medicine.LowStockThreshold,
		&medicine.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Medicine{}, store.ErrMedicineNotFound
		}
		return models.Medicine{}, err
	}
	return medicine, nil
}
