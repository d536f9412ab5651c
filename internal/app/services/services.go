// Package services holds the portal's data services. Each one talks to the
// backend through httpclient; any error a service returns is an
// *apperrors.NormalizedError and the user has already been notified of it,
// unless the caller went away first, in which case it is the caller's
// ctx.Err() and nothing was shown.
//
// Outgoing requests are detached from the caller's cancellation. Only the
// client timeout bounds them.
package services

import (
	"context"

	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// settle turns a failed request into the error the caller sees
func settle(ctx context.Context, n *apperrors.Normalizer, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return n.Handle(err)
}
