package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// withChiParam attaches a route parameter the way the chi mux would.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
