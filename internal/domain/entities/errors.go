package entities

import "errors"

// Domain errors
var (
	// Conversation errors
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidAnalysisKind  = errors.New("invalid analysis kind")

	// Prompt errors
	ErrPromptNotFound = errors.New("prompt template not found")
	ErrBackupNotFound = errors.New("prompt backup not found")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid token")

	// Generic errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid request")
)
