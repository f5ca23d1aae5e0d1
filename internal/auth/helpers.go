package auth

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/store"
)

// RequireAuth extracts user claims from context or returns an unauthenticated error
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("user not authenticated"))
	}
	return claims, nil
}

// RequireUserAccess verifies the authenticated user matches the requested user ID
func RequireUserAccess(ctx context.Context, requestedUserID string) (*UserClaims, error) {
	claims, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if requestedUserID != "" && requestedUserID != claims.UID {
		return nil, connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("cannot access another user's resources"))
	}

	return claims, nil
}

// WrapStoreError wraps store errors with operation context. Missing records
// become CodeNotFound and everything else CodeInternal.
func WrapStoreError(operation string, err error) error {
	if err == nil {
		return nil
	}
	code := connect.CodeInternal
	if errors.Is(err, store.ErrNotFound) {
		code = connect.CodeNotFound
	}
	return connect.NewError(code, fmt.Errorf("failed to %s: %w", operation, err))
}
