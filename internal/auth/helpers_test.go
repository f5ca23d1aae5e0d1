package auth

import (
	"context"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	t.Run("returns error when no claims in context", func(t *testing.T) {
		ctx := context.Background()
		claims, err := RequireAuth(ctx)
		assert.Nil(t, claims)
		assert.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("returns claims when present in context", func(t *testing.T) {
		ctx := context.Background()
		expectedClaims := &UserClaims{UID: "user-123", Email: "test@example.com"}
		ctx = withUserClaims(ctx, expectedClaims)

		claims, err := RequireAuth(ctx)
		require.NoError(t, err)
		assert.Equal(t, expectedClaims.UID, claims.UID)
		assert.Equal(t, expectedClaims.Email, claims.Email)
	})
}

func TestRequireUserAccess(t *testing.T) {
	t.Run("returns error when no claims in context", func(t *testing.T) {
		ctx := context.Background()
		claims, err := RequireUserAccess(ctx, "user-123")
		assert.Nil(t, claims)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("returns error when user ID does not match", func(t *testing.T) {
		ctx := context.Background()
		ctx = withUserClaims(ctx, &UserClaims{UID: "user-123"})

		claims, err := RequireUserAccess(ctx, "user-456")
		assert.Nil(t, claims)
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
		assert.Contains(t, err.Error(), "cannot access another user's resources")
	})

	t.Run("returns claims when user ID matches", func(t *testing.T) {
		ctx := context.Background()
		ctx = withUserClaims(ctx, &UserClaims{UID: "user-123"})

		claims, err := RequireUserAccess(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UID)
	})

	t.Run("returns claims when user ID is empty", func(t *testing.T) {
		ctx := context.Background()
		ctx = withUserClaims(ctx, &UserClaims{UID: "user-123"})

		claims, err := RequireUserAccess(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UID)
	})
}

func TestWrapStoreError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		err := WrapStoreError("list alerts", nil)
		assert.Nil(t, err)
	})

	t.Run("wraps error with operation", func(t *testing.T) {
		err := WrapStoreError("list alerts", assert.AnError)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list alerts")
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("maps not found", func(t *testing.T) {
		err := WrapStoreError("update alert", fmt.Errorf("alert a1: %w", store.ErrNotFound))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
