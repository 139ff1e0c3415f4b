package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moon-community/fto-queue-service/internal/domain"
)

func TestQueueSentinelsMapToUserFacingCodes(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{domain.ErrAlreadyQueued, "ALREADY_QUEUED", http.StatusConflict},
		{domain.ErrNotQueued, "NOT_QUEUED", http.StatusConflict},
		{domain.ErrIneligible, "INELIGIBLE", http.StatusForbidden},
		{pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
	}

	for _, tc := range cases {
		mapped := ToDomainError(tc.err)
		require.NotNil(t, mapped, tc.err.Error())
		assert.Equal(t, tc.code, mapped.Code)
		assert.Equal(t, tc.status, mapped.HTTPStatus)
	}
}

func TestWrappedSentinelStillMaps(t *testing.T) {
	wrapped := fmt.Errorf("join: %w", domain.ErrAlreadyQueued)
	assert.Equal(t, "ALREADY_QUEUED", ToDomainError(wrapped).Code)
}

func TestUnknownErrorBecomesInternal(t *testing.T) {
	mapped := ToDomainError(errors.New("connection reset"))
	assert.Equal(t, "INTERNAL_ERROR", mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
	// The original cause stays wrapped for logging, not for the response.
	assert.NotContains(t, mapped.Message, "connection reset")
	assert.ErrorContains(t, mapped, "connection reset")
}

func TestDomainErrorPassesThrough(t *testing.T) {
	original := NewAlreadyQueued()
	var de *DomainError
	require.ErrorAs(t, original, &de)
	assert.Same(t, de, ToDomainError(original))
}

func TestNilMapsToNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}
