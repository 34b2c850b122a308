package middleware

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/collectionvault/index-engine/internal/shared/apierror"
)

// ErrorTransformer converts domain errors to Huma API errors, preserving
// the HTTPStatus and error code carried on an *apierror.APIError. Errors
// that do not unwrap to one fall back to a generic 500.
func ErrorTransformer(ctx context.Context, err error) huma.StatusError {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return huma.NewError(apiErr.HTTPStatus, apiErr.Message, &huma.ErrorDetail{
			Message:  string(apiErr.Code),
			Location: apiErr.Field,
			Value:    apiErr.Details,
		})
	}

	return huma.NewError(500, "Internal server error", &huma.ErrorDetail{
		Message: string(apierror.ErrCodeInternalError),
	})
}
