// Package middleware holds the HTTP middleware of the REST interface.
package middleware

import (
	"context"
	"net/http"

	appErrors "nodemapper-backend/pkg/errors"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestID generates or extracts the request id. The id is echoed in the
// response, written back to the request header for the error handler, and
// stored in the context under chi's request id key.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(appErrors.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			r.Header.Set(appErrors.RequestIDHeader, requestID)
		}

		w.Header().Set(appErrors.RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request id from the context.
func GetRequestID(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}
