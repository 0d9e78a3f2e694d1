package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupBegin_Metadata(t *testing.T) {
	ctx, cancel := GroupBegin(context.Background(), "run-1", "meeting-9", 3, time.Minute)
	defer cancel()

	meta := GetGroupMetadata(ctx)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, "meeting-9", meta.MeetingID)
	assert.Equal(t, 3, meta.RoomNumber)
	assert.False(t, meta.StartTime.IsZero())

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestGroupBegin_ZeroTimeoutHasNoDeadline(t *testing.T) {
	ctx, cancel := GroupBegin(context.Background(), "run", "m", 0, 0)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	assert.Equal(t, 0, GetRoomNumber(ctx))
}

func TestGetRoomNumber_Missing(t *testing.T) {
	assert.Equal(t, -1, GetRoomNumber(context.Background()))
}

func TestGroupRun(t *testing.T) {
	ctx := context.Background()

	calls := 0
	err := GroupRun(ctx, func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "groups are not retried")

	err = GroupRun(ctx, func(context.Context) error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: boom")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = GroupRun(cancelled, func(context.Context) error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("chat completion: %w", context.DeadlineExceeded), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("error, status code: 503, message: overloaded"), true},
		{errors.New("error, status code: 429, message: rate limit reached"), true},
		{errors.New("ERROR: deadlock detected (SQLSTATE 40P01)"), true},
		{errors.New("error, status code: 401, message: invalid api key"), false},
		{errors.New("no response choices"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableError(tt.err), "%v", tt.err)
	}
	assert.False(t, IsRetryableMessage(""))
}

func TestCalculateBackoff(t *testing.T) {
	base := 30 * time.Second
	assert.Equal(t, 30*time.Second, CalculateBackoff(0, base))
	assert.Equal(t, 60*time.Second, CalculateBackoff(1, base))
	assert.Equal(t, 4*time.Minute, CalculateBackoff(3, base))
	assert.Equal(t, time.Hour, CalculateBackoff(20, base))
	assert.Equal(t, 30*time.Second, CalculateBackoff(-2, base))
}
