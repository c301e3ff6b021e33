package kubernetes

import (
	"context"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// wrapErr classifies an API server error into the domain taxonomy. The
// message keeps the operation context so chat output stays actionable.
func wrapErr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &outbound.ClusterError{
		Kind:    classify(err),
		Message: fmt.Sprintf("%s: %v", msg, err),
		Err:     err,
	}
}

func classify(err error) model.ErrorKind {
	switch {
	case apierrors.IsNotFound(err):
		return model.ErrClusterNotFound
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return model.ErrClusterForbidden
	case apierrors.IsTimeout(err), apierrors.IsServerTimeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return model.ErrTimeout
	case apierrors.IsServiceUnavailable(err), apierrors.IsTooManyRequests(err):
		return model.ErrClusterUnavailable
	default:
		return model.ErrClusterUnavailable
	}
}
