package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Queue errors
var (
	ErrAlreadyClaimed   = errors.New("queue item already claimed")
	ErrProcessorRunning = errors.New("queue processor already running")
)

// Prompt errors
var (
	ErrInvalidScope      = errors.New("prompt scope must be global or room")
	ErrRoomNumberMissing = errors.New("room-scoped prompt requires room_number")
	ErrRoomOutOfRange    = errors.New("room number must be between 0 and 8")
)

// LLM errors
var (
	ErrEmptyResponse = errors.New("llm returned empty response")
)
