package pinecone

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pinecone-io/go-pinecone/v2/pinecone"
	"github.com/zoobzio/sprout"
	"github.com/zoobzio/sprout/internal/shared"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classify wraps a Pinecone SDK error with its semantic sprout error.
// Control plane failures carry an HTTP status; data plane failures carry a gRPC code.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
	}

	var pe *pinecone.PineconeError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", shared.ErrorForStatus(pe.Code), err)
	}

	if st, ok := status.FromError(err); ok {
		// No index of matching dimension: reported as both a missing target and bad input.
		if st.Code() == codes.InvalidArgument && strings.Contains(strings.ToLower(st.Message()), "dimension") {
			return fmt.Errorf("%w: %w: %w", sprout.ErrNotFound, sprout.ErrInvalidInput, err)
		}
		return fmt.Errorf("%w: %w", errorForCode(st.Code()), err)
	}

	return fmt.Errorf("%w: %w", sprout.ErrRemoteService, err)
}

// errorForCode maps a gRPC status code onto the error taxonomy.
func errorForCode(c codes.Code) error {
	switch c {
	case codes.Unauthenticated, codes.PermissionDenied:
		return sprout.ErrAuthentication
	case codes.InvalidArgument:
		return sprout.ErrInvalidInput
	case codes.NotFound:
		return sprout.ErrNotFound
	case codes.AlreadyExists:
		return sprout.ErrConflict
	default:
		return sprout.ErrRemoteService
	}
}
