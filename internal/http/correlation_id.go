package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
)

const HeaderCorrelationID = "X-Correlation-Id"

// CorrelationID reuses the caller's correlation id or mints one, echoes it
// back and stores it, with the chi request id as causation, for publishers.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}

		w.Header().Set(HeaderCorrelationID, cid)

		ctx := events.ContextWithMetadata(r.Context(), events.PublishMetadata{
			CorrelationID: cid,
			CausationID:   middleware.GetReqID(r.Context()),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
