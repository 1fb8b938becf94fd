package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maajod/maajod-backend/internal/transactions"
	"github.com/maajod/maajod-backend/pkg/db/models"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
)

type ledgerRepository interface {
	FindByDateRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) ([]models.Transaction, error)
	AggregateByDateRange(ctx context.Context, storeID uuid.UUID, start, end time.Time) (map[enums.TransactionType]decimal.Decimal, error)
}

type summaryCache interface {
	Get(ctx context.Context, storeID uuid.UUID, year int, month time.Month) (*Summary, bool)
	Put(ctx context.Context, storeID uuid.UUID, year int, month time.Month, value *Summary)
}

// Service computes ledger summaries for a store.
type Service interface {
	Daily(ctx context.Context, storeID uuid.UUID, date *time.Time) (*Summary, error)
	Monthly(ctx context.Context, storeID uuid.UUID, year, month int) (*Summary, error)
}

type service struct {
	ledger  ledgerRepository
	cache   summaryCache
	timeNow func() time.Time
}

// NewService builds a summary service. Monthly reads go through the cache;
// daily reads always hit the ledger.
func NewService(ledger ledgerRepository, cache summaryCache) (Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if cache == nil {
		return nil, fmt.Errorf("summary cache required")
	}
	return &service{
		ledger:  ledger,
		cache:   cache,
		timeNow: time.Now,
	}, nil
}

func (s *service) Daily(ctx context.Context, storeID uuid.UUID, date *time.Time) (*Summary, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store context required")
	}

	day := s.timeNow()
	if date != nil {
		day = *date
	}
	start, end := dayRange(day)
	return s.compute(ctx, storeID, start, end)
}

func (s *service) Monthly(ctx context.Context, storeID uuid.UUID, year, month int) (*Summary, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store context required")
	}

	now := s.timeNow()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if month < 1 || month > 12 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be between 1 and 12")
	}

	if cached, ok := s.cache.Get(ctx, storeID, year, time.Month(month)); ok {
		return cached, nil
	}

	start, end := monthRange(year, time.Month(month))
	result, err := s.compute(ctx, storeID, start, end)
	if err != nil {
		return nil, err
	}

	s.cache.Put(ctx, storeID, year, time.Month(month), result)
	return result, nil
}

// compute runs the grouped sum plus the row query for one inclusive window.
// A type with no rows contributes zero, never an error.
func (s *service) compute(ctx context.Context, storeID uuid.UUID, start, end time.Time) (*Summary, error) {
	totals, err := s.ledger.AggregateByDateRange(ctx, storeID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate transactions")
	}

	rows, err := s.ledger.FindByDateRange(ctx, storeID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query transactions")
	}

	income := totals[enums.TransactionTypeIncome]
	expense := totals[enums.TransactionTypeExpense]
	return &Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Net:          income.Sub(expense),
		Transactions: transactions.FromModels(rows),
	}, nil
}

// dayRange covers one calendar day inclusively in the day's location.
func dayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// monthRange covers one calendar month inclusively in UTC.
func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}
