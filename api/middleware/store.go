package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/enochaseks/lokal-sub003/api/responses"
	pkgerrors "github.com/enochaseks/lokal-sub003/pkg/errors"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
)

// StoreContext resolves the {storeID} route parameter into the request context
// so downstream handlers share one validated store identifier.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID := strings.TrimSpace(chi.URLParam(r, "storeID"))
			if storeID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
				return
			}
			ctx := WithStoreID(r.Context(), storeID)
			if logg != nil {
				ctx = logg.WithStoreID(ctx, storeID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
