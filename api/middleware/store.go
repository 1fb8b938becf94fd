package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/maajod/maajod-backend/api/responses"
	"github.com/maajod/maajod-backend/internal/access"
	pkgerrors "github.com/maajod/maajod-backend/pkg/errors"
	"github.com/maajod/maajod-backend/pkg/logger"
)

const storeIDHeader = "X-Store-Id"

// StoreContext resolves the effective store for the request: an explicit
// x-store-id header or storeId query parameter, else the user's default or
// earliest membership. Runs after Auth.
func StoreContext(resolver *access.Resolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, err := uuid.Parse(UserIDFromContext(ctx))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}

			requested := access.NormalizeStoreID(r.Header.Get(storeIDHeader))
			if requested == "" {
				requested = access.NormalizeStoreID(r.URL.Query().Get("storeId"))
			}

			scope, err := resolver.Resolve(ctx, userID, requested)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithStoreContext(ctx, scope.StoreID.String(), scope.Role.String())
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"store_id":   scope.StoreID.String(),
					"store_role": scope.Role.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
