package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type KeyContext string

var (
	keyRunID      KeyContext = "run_id"
	keyMeetingID  KeyContext = "meeting_id"
	keyRoomNumber KeyContext = "room_number"
	keyStartTime  KeyContext = "group_start_time"
)

// GroupMetadata describes the queue group a context belongs to
type GroupMetadata struct {
	RunID      string
	MeetingID  string
	RoomNumber int
	StartTime  time.Time
}

// GroupBegin derives the context one queue group runs under.
// A zero timeout leaves the parent deadline in place.
func GroupBegin(parentCtx context.Context, runID, meetingID string, roomNumber int, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyMeetingID, meetingID)
	ctx = context.WithValue(ctx, keyRoomNumber, roomNumber)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// GroupRun executes fn once, converting a panic into an error.
// Groups are never retried in-process.
func GroupRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	// Check if context was cancelled before execution
	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before group execution: %w", ctx.Err())
	}
	return fn(ctx)
}

// GetRunID extracts the processor run ID from context
func GetRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(keyRunID).(string)
	return runID, ok
}

// GetMeetingID extracts the group's meeting ID from context
func GetMeetingID(ctx context.Context) (string, bool) {
	meetingID, ok := ctx.Value(keyMeetingID).(string)
	return meetingID, ok
}

// GetRoomNumber extracts the group's room number from context
func GetRoomNumber(ctx context.Context) int {
	room, ok := ctx.Value(keyRoomNumber).(int)
	if !ok {
		return -1
	}
	return room
}

// GetGroupMetadata extracts all group metadata from context
func GetGroupMetadata(ctx context.Context) *GroupMetadata {
	runID, _ := GetRunID(ctx)
	meetingID, _ := GetMeetingID(ctx)
	startTime, _ := ctx.Value(keyStartTime).(time.Time)

	return &GroupMetadata{
		RunID:      runID,
		MeetingID:  meetingID,
		RoomNumber: GetRoomNumber(ctx),
		StartTime:  startTime,
	}
}

// IsRetryableError checks if an error is worth re-enqueueing
// Retryable errors include: network errors, timeouts, deadlocks, rate limits
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return IsRetryableMessage(err.Error())
}

// IsRetryableMessage applies IsRetryableError to a stored error message
func IsRetryableMessage(msg string) bool {
	errStr := strings.ToLower(msg)
	if errStr == "" {
		return false
	}

	// Context errors (timeout, cancelled)
	if strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "context canceled") {
		return true
	}

	// Network errors
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "network unreachable") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	// Database deadlock/lock errors (Postgres)
	if strings.Contains(errStr, "deadlock") ||
		strings.Contains(errStr, "40001") || // serialization_failure
		strings.Contains(errStr, "40p01") { // deadlock_detected
		return true
	}

	// API rate limiting
	if strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429") {
		return true
	}

	// Server errors (5xx)
	if strings.Contains(errStr, "status code: 5") ||
		strings.Contains(errStr, "status 5") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "service unavailable") ||
		strings.Contains(errStr, "overloaded") ||
		strings.Contains(errStr, "bad gateway") {
		return true
	}

	// Temporary failures
	if strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "try again") {
		return true
	}

	return false
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 16 {
		attempt = 16
	}

	// 2^attempt * baseDelay, max 1 hour
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	maxBackoff := time.Hour
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
