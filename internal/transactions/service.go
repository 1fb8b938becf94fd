package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

type transactionRepository interface {
	Create(ctx context.Context, dto CreateTransactionDTO) (*models.Transaction, error)
	FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Transaction, error)
	FindByDateRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) ([]models.Transaction, error)
	DeleteByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (int64, error)
}

// summaryInvalidator drops cached summaries covering the given month. The
// cache treats failures as a degraded hit rate, not as request failures, so
// the method reports nothing.
type summaryInvalidator interface {
	Invalidate(ctx context.Context, storeID uuid.UUID, year int, month time.Month)
}

// CreateTransactionInput captures the raw data for a new ledger entry.
type CreateTransactionInput struct {
	Type     enums.TransactionType
	Amount   decimal.Decimal
	Category *enums.ExpenseCategory
	Note     *string
	Date     *time.Time
}

// Service exposes ledger operations scoped to a resolved store.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateTransactionInput) (*TransactionDTO, error)
	ListByRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) ([]TransactionDTO, error)
	Delete(ctx context.Context, storeID, transactionID uuid.UUID) error
}

type service struct {
	repo    transactionRepository
	cache   summaryInvalidator
	timeNow func() time.Time
}

// NewService builds a transaction service. The invalidator keeps monthly
// summary reads coherent with ledger writes.
func NewService(repo transactionRepository, cache summaryInvalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("summary invalidator required")
	}
	return &service{
		repo:    repo,
		cache:   cache,
		timeNow: time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateTransactionInput) (*TransactionDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store context required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if input.Type == enums.TransactionTypeExpense {
		if input.Category == nil || !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense requires a valid category")
		}
	}
	if input.Type == enums.TransactionTypeIncome && input.Category != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is only valid for expenses")
	}

	date := s.timeNow()
	if input.Date != nil {
		date = *input.Date
	}

	tx, err := s.repo.Create(ctx, CreateTransactionDTO{
		StoreID:  storeID,
		Type:     input.Type,
		Amount:   input.Amount,
		Category: input.Category,
		Note:     input.Note,
		Date:     date,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transaction")
	}

	s.cache.Invalidate(ctx, storeID, tx.Date.Year(), tx.Date.Month())
	return FromModel(tx), nil
}

func (s *service) ListByRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) ([]TransactionDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store context required")
	}
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date precedes start date")
	}

	rows, err := s.repo.FindByDateRange(ctx, storeID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query transactions")
	}
	return FromModels(rows), nil
}

func (s *service) Delete(ctx context.Context, storeID, transactionID uuid.UUID) error {
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store context required")
	}

	// Load first so the invalidation targets the month the entry lived in.
	// A row in another store is indistinguishable from a missing one.
	tx, err := s.repo.FindByIDAndStore(ctx, transactionID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}

	affected, err := s.repo.DeleteByIDAndStore(ctx, transactionID, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete transaction")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}

	s.cache.Invalidate(ctx, storeID, tx.Date.Year(), tx.Date.Month())
	return nil
}
