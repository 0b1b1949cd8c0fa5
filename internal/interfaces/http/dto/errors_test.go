package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor_DomainKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", shared.NewValidationError("amount", "must be positive"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", shared.NewNotFoundError("account", uuid.New()), http.StatusNotFound, "NOT_FOUND"},
		{"insufficient funds", shared.NewInsufficientFundsError("Cash", decimal.NewFromInt(10), decimal.NewFromInt(20)), http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"consistency", shared.NewConsistencyError("balance drift"), http.StatusInternalServerError, "CONSISTENCY_ERROR"},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENT_MODIFICATION"},
		{"unauthorized", shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrapped", fmt.Errorf("save account: %w", shared.ErrAlreadyExists), http.StatusConflict, "ALREADY_EXISTS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, de, ok := StatusFor(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestStatusFor_PlainError(t *testing.T) {
	status, de, ok := StatusFor(errors.New("connection reset"))
	assert.False(t, ok)
	assert.Nil(t, de)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, GetHTTPStatus(ErrCodeDuplicateRequest))
	assert.Equal(t, http.StatusRequestEntityTooLarge, GetHTTPStatus(ErrCodeRequestTooLarge))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}

func TestNewValidationErrorResponse_JSONShape(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "amount", Message: "This field is required"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "amount", "message": "This field is required"}]
		}
	}`, string(raw))
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse(shared.NewPaginated([]string{"a", "b"}, 41, 2, 20))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewPaginatedResponse(shared.NewPaginated[string](nil, 0, 1, 20))
	raw, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"data":[]`)
}
