package analytics

import (
	"net/http"
	"strings"

	"github.com/enochaseks/lokal-sub003/api/middleware"
	"github.com/enochaseks/lokal-sub003/api/responses"
	"github.com/enochaseks/lokal-sub003/internal/analytics"
	pkgerrors "github.com/enochaseks/lokal-sub003/pkg/errors"
	"github.com/enochaseks/lokal-sub003/pkg/logger"
)

// StoreOrders serves the deduplicated order list behind a snapshot, cursor
// paginated in occurrence order.
func StoreOrders(service analytics.Service, logg *logger.Logger) http.HandlerFunc {
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

		limit, err := resolveLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := service.Orders(ctx, analytics.OrdersRequest{
			StoreID: storeID,
			Start:   start,
			End:     end,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
