package controllers

import (
	"net/http"

	"github.com/maajod/maajod-backend/api/responses"
	"github.com/maajod/maajod-backend/api/validators"
	"github.com/maajod/maajod-backend/internal/summary"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
	"github.com/maajod/maajod-backend/pkg/logger"
)

// SummaryDaily aggregates one calendar day of the resolved store's ledger.
func SummaryDaily(svc summary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "summary service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Daily(r.Context(), storeID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SummaryMonthly aggregates one calendar month, served through the cache.
func SummaryMonthly(svc summary.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "summary service unavailable"))
			return
		}

		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		year, err := validators.ParseQueryInt(r, "year", 0, 1970, 9999)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.ParseQueryInt(r, "month", 0, 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Monthly(r.Context(), storeID, year, month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
