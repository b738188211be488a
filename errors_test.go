package dynapatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	err := newError(CodeInvalidFilter, "other message", nil)
	assert.True(t, errors.Is(err, ErrInvalidFilter))
	assert.False(t, errors.Is(err, ErrStore))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInvalidFilter))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "INVALID_FILTER: Please provide table's primary key in filter", ErrInvalidFilter.Error())

	cause := errors.New("boom")
	err := newError(CodeStore, "failed", cause)
	assert.Equal(t, "STORE_ERROR: failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestClassifyStoreError(t *testing.T) {
	tests := []struct {
		name      string
		in        error
		code      *Error
		apiCode   string
		retryable bool
		message   string
	}{
		{
			name:    "resource not found",
			in:      &types.ResourceNotFoundException{Message: stringPtr("Requested resource not found")},
			code:    ErrStore,
			apiCode: "ResourceNotFoundException",
			message: "Requested resource not found",
		},
		{
			name:      "throughput exceeded",
			in:        &types.ProvisionedThroughputExceededException{Message: stringPtr("slow down")},
			code:      ErrStore,
			apiCode:   "ProvisionedThroughputExceededException",
			retryable: true,
			message:   "slow down",
		},
		{
			name:      "throttling",
			in:        &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"},
			code:      ErrStore,
			apiCode:   "ThrottlingException",
			retryable: true,
			message:   "Rate exceeded",
		},
		{
			name:    "validation",
			in:      fmt.Errorf("operation error: %w", &smithy.GenericAPIError{Code: "ValidationException", Message: "The provided key element does not match the schema"}),
			code:    ErrStore,
			apiCode: "ValidationException",
			message: "The provided key element does not match the schema",
		},
		{
			name:    "plain error",
			in:      errors.New("connection reset"),
			code:    ErrStore,
			message: "connection reset",
		},
		{
			name: "canceled",
			in:   fmt.Errorf("operation error: %w", context.Canceled),
			code: ErrCanceled,
		},
		{
			name: "deadline",
			in:   context.DeadlineExceeded,
			code: ErrCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyStoreError(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.code)
			assert.ErrorIs(t, err, tt.in)
			assert.Equal(t, tt.retryable, IsRetryable(err))

			if tt.code != ErrStore {
				return
			}

			var herr *Error
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.message, herr.Message)

			var serr *StoreError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.apiCode, serr.APICode)
		})
	}

	assert.NoError(t, ClassifyStoreError(nil))
}

func stringPtr(s string) *string { return &s }
