package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
)

// Repository handles transaction persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new transaction row.
func (r *Repository) Create(ctx context.Context, dto CreateTransactionDTO) (*models.Transaction, error) {
	tx := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

// FindByIDAndStore loads a transaction only when it belongs to the store.
func (r *Repository) FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

// FindByDateRange returns the store's transactions inside the inclusive
// window, most recent first.
func (r *Repository) FindByDateRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND date >= ? AND date <= ?", storeID, start, end).
		Order("date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByIDAndStore removes a transaction scoped to the store and reports
// how many rows were hit.
func (r *Repository) DeleteByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Transaction{})
	return result.RowsAffected, result.Error
}

type typeTotalRow struct {
	Type  enums.TransactionType
	Total decimal.Decimal
}

// AggregateByDateRange sums amounts grouped by type over the inclusive
// window. Types with no rows are simply absent from the result.
func (r *Repository) AggregateByDateRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) (map[enums.TransactionType]decimal.Decimal, error) {
	var rows []typeTotalRow
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total").
		Where("store_id = ? AND date >= ? AND date <= ?", storeID, start, end).
		Group("type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make(map[enums.TransactionType]decimal.Decimal, len(rows))
	for _, row := range rows {
		totals[row.Type] = row.Total
	}
	return totals, nil
}
