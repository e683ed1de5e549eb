package portal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceeded(t *testing.T) {
	r := Succeeded()

	assert.True(t, r.Success)
	assert.True(t, r.Valid())
	assert.NoError(t, r.AsError())
}

func TestFailed_FillsInvariant(t *testing.T) {
	tests := []struct {
		name        string
		code        int
		message     string
		cause       error
		wantCode    int
		wantMessage string
	}{
		{"explicit", -7, "down", nil, -7, "down"},
		{"zero_code", 0, "down", nil, ProbeFailureCode, "down"},
		{"message_from_cause", -1, "", errors.New("dial tcp: refused"), -1, "dial tcp: refused"},
		{"fallback_message", 0, "", nil, ProbeFailureCode, "portal is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Failed(tt.code, tt.message, tt.cause)

			assert.False(t, r.Success)
			assert.Equal(t, tt.wantCode, r.ErrorCode)
			assert.Equal(t, tt.wantMessage, r.ErrorMessage)
			assert.True(t, r.Valid())
		})
	}
}

func TestFailedFrom_UsesPortalMessage(t *testing.T) {
	cause := errors.New("401 unauthorized")
	r := FailedFrom(NewError(KindCollectionUnavailable, cause))

	assert.Equal(t, ProbeFailureCode, r.ErrorCode)
	assert.Equal(t, "list collection could not be loaded", r.ErrorMessage)
	assert.ErrorIs(t, r.Err, cause)
}

func TestOperationResult_AsError(t *testing.T) {
	cause := errors.New("timeout")
	r := Failed(-1, "portal is unavailable", cause)

	err := r.AsError()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstructionFailure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "#-1: portal is unavailable: timeout", err.Error())
}

func TestOperationResult_Valid_RejectsBrokenStates(t *testing.T) {
	assert.False(t, OperationResult{Success: true, ErrorCode: -1}.Valid())
	assert.False(t, OperationResult{Success: false}.Valid())
	assert.False(t, OperationResult{Success: false, ErrorCode: -1}.Valid())
}

func TestNewProbeRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rec := NewProbeRecord("p1", "https://contoso.sharepoint.com", Failed(-1, "down", nil), 2*time.Second, at)

	assert.Equal(t, "p1", rec.ID)
	assert.False(t, rec.Success)
	assert.Equal(t, -1, rec.ErrorCode)
	assert.Equal(t, "down", rec.ErrorMessage)
	assert.Equal(t, 2*time.Second, rec.Duration)
	assert.Equal(t, at, rec.CheckedAt)
}
