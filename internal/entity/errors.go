package entity

import "errors"

// Domain errors
var (
	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrTurnInProgress       = errors.New("a question is already being answered")
	ErrInvalidTransition    = errors.New("invalid turn state transition")
	ErrEmptyQuestion        = errors.New("question is empty")
	ErrUnsupportedModel     = errors.New("unsupported model")

	// External service errors
	ErrSearchFailed     = errors.New("context search failed")
	ErrCompletionFailed = errors.New("completion failed")
	ErrEmptyCompletion  = errors.New("completion returned an empty response")
	ErrStatementFailed  = errors.New("statement execution failed")

	// Feedback errors
	ErrScoreUnparseable = errors.New("score could not be parsed")

	// File errors
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileParse           = errors.New("failed to process file")
	ErrFileTooLarge        = errors.New("file too large")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
