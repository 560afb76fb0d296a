// Package analytics exposes the reconciled store analytics over HTTP.
package analytics

import (
	"net/http"

	"github.com/enochaseks/lokal-sub003/api/middleware"
	"github.com/enochaseks/lokal-sub003/api/responses"
	"github.com/enochaseks/lokal-sub003/internal/analytics"
	pkgerrors "github.com/enochaseks/lokal-sub003/pkg/errors"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
)

// StoreSnapshot serves the analytics snapshot for a store and window.
func StoreSnapshot(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		storeID := middleware.StoreIDFromContext(ctx)
		if storeID == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
			return
		}

		start, end, err := resolveAnalyticsRange(r, timeNowUTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Snapshot(ctx, analytics.SnapshotRequest{
			StoreID: storeID,
			Start:   start,
			End:     end,
			Refresh: refreshRequested(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
