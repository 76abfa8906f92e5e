// Package handlers implements the REST endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	appErrors "nodemapper-backend/pkg/errors"
)

// decodeJSON decodes the request body into v. An empty body leaves v
// untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var (
			maxErr    *http.MaxBytesError
			typeErr   *json.UnmarshalTypeError
			syntaxErr *json.SyntaxError
		)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &maxErr):
			return appErrors.NewPayloadTooLargeError(maxErr.Limit)
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return appErrors.NewValidationError("invalid request body").
				WithDetails(map[string]any{field: fmt.Sprintf("must be %s", typeErr.Type)}).
				WithCause(err)
		case errors.As(err, &syntaxErr):
			return appErrors.NewValidationError(fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)).
				WithCause(err)
		default:
			return appErrors.NewValidationError("invalid request body").WithCause(err)
		}
	}
	return nil
}

// mapContextError turns deadline and cancellation errors into their API
// equivalents. Other errors pass through.
func mapContextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return appErrors.NewTimeoutError("request").WithCause(err)
	case errors.Is(err, context.Canceled):
		return appErrors.NewUnavailableError("request cancelled").WithCause(err)
	default:
		return err
	}
}
