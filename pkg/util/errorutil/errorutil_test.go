package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", fmt.Errorf("wrapped: %w", NewForbidden("nope")), CodeForbidden, http.StatusForbidden},
		{"missing row", fmt.Errorf("get lead: %w", pgx.ErrNoRows), CodeNotFound, http.StatusNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "customers_lead_id_key"}, CodeConflict, http.StatusConflict},
		{"other pg error", &pgconn.PgError{Code: "23503"}, CodeInternal, http.StatusInternalServerError},
		{"deadline", fmt.Errorf("list: %w", context.DeadlineExceeded), CodeTimeout, http.StatusGatewayTimeout},
		{"anything else", cause, CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
	assert.ErrorIs(t, MapError(cause), cause)
}

func TestUniqueViolationNamesConstraint(t *testing.T) {
	got := ToDomainError(&pgconn.PgError{Code: "23505", ConstraintName: "identities_email_key"})
	assert.Equal(t, "identities_email_key", got.Details["constraint"])
}

func TestDependencyUnavailable(t *testing.T) {
	err := NewDependencyUnavailable(map[string]any{"redis": "connection refused"})
	got := ToDomainError(err)
	assert.Equal(t, CodeDependencyUnavailable, got.Code)
	assert.Equal(t, http.StatusServiceUnavailable, got.HTTPStatus)
	assert.Equal(t, "connection refused", got.Details["redis"])
}
