package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/maajod/maajod-backend/api/responses"
	"github.com/maajod/maajod-backend/api/validators"
	"github.com/maajod/maajod-backend/internal/transactions"
	"github.com/maajod/maajod-backend/pkg/enums"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
	"github.com/maajod/maajod-backend/pkg/logger"
)

type transactionCreateRequest struct {
	Type     string           `json:"type" validate:"required,oneof=income expense"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Category *string          `json:"category,omitempty" validate:"omitempty,oneof=ingredients supplies utilities other"`
	Note     *string          `json:"note,omitempty" validate:"omitempty,max=512"`
	Date     *string          `json:"date,omitempty"`
}

// parseEntryDate accepts an RFC 3339 timestamp or a bare calendar date.
func parseEntryDate(raw string) (*time.Time, error) {
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return &value, nil
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be RFC 3339 or YYYY-MM-DD")
	}
	return &value, nil
}

// TransactionCreate appends a ledger entry to the resolved store.
func TransactionCreate(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transactionCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var date *time.Time
		if payload.Date != nil && *payload.Date != "" {
			date, err = parseEntryDate(*payload.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		txType, err := enums.ParseTransactionType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		var category *enums.ExpenseCategory
		if payload.Category != nil {
			parsed, err := enums.ParseExpenseCategory(*payload.Category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expense category"))
				return
			}
			category = &parsed
		}

		result, err := svc.Create(r.Context(), storeID, transactions.CreateTransactionInput{
			Type:     txType,
			Amount:   *payload.Amount,
			Category: category,
			Note:     payload.Note,
			Date:     date,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// TransactionList returns the store's entries inside an inclusive date
// window. Both bounds are required; the end bound covers its whole day.
func TransactionList(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, err := validators.ParseQueryDate(r, "startDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		end, err := validators.ParseQueryDate(r, "endDate")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if start == nil || end == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "startDate and endDate are required"))
			return
		}

		endOfDay := end.AddDate(0, 0, 1).Add(-time.Nanosecond)

		result, err := svc.ListByRange(r.Context(), storeID, *start, endOfDay)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// TransactionDelete removes one entry scoped to the resolved store.
func TransactionDelete(svc transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transactionID, err := pathUUID(r, chi.URLParam(r, "transactionId"), "transaction id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), storeID, transactionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
