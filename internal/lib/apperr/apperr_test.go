package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsComparesCodes(t *testing.T) {
	wrapped := fmt.Errorf("service.Register: %w", ErrDuplicateEmail.Wrap(errors.New("unique violation")))

	assert.ErrorIs(t, wrapped, ErrDuplicateEmail)
	assert.NotErrorIs(t, wrapped, ErrInvalidCredentials)
	assert.ErrorIs(t, Validation("NO_UPDATES", "other text"), ErrNoUpdates)
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, ErrInternal.Err, "Wrap must not mutate the reference error")
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode string
	}{
		{name: "plain error", err: errors.New("boom"), wantKind: KindStorage, wantCode: "INTERNAL_ERROR"},
		{name: "wrapped validation", err: fmt.Errorf("op: %w", ErrInvalidMonth), wantKind: KindValidation, wantCode: "INVALID_MONTH"},
		{name: "auth", err: ErrUnauthorized, wantKind: KindAuth, wantCode: "UNAUTHORIZED"},
		{name: "not found", err: ErrPlanNotFound, wantKind: KindNotFound, wantCode: "PLAN_NOT_FOUND"},
		{name: "conflict", err: ErrActiveConflict, wantKind: KindConflict, wantCode: "ACTIVE_CONFLICT"},
		{name: "upstream", err: fmt.Errorf("enqueue: %w", ErrUpstreamFailed.Wrap(errors.New("closed"))), wantKind: KindUpstream, wantCode: "UPSTREAM_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantKind, KindOf(tt.err))
		})
	}
	assert.Nil(t, From(nil))
}
