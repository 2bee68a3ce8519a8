package services

import "errors"

// OAuth flow errors
var (
	ErrOAuthDenied         = errors.New("authorization denied by provider")
	ErrMissingCode         = errors.New("no authorization code provided")
	ErrStateMismatch       = errors.New("oauth state mismatch")
	ErrTokenExchangeFailed = errors.New("failed to exchange authorization code")
)

// Search flow errors
var (
	ErrInvalidMode      = errors.New("invalid search mode")
	ErrEmptyQuery       = errors.New("search query cannot be empty")
	ErrClientInitFailed = errors.New("reddit client initialization failed")
	ErrUpstream         = errors.New("reddit api error")
)
