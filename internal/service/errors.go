package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resource not found")
)

// User service specific errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Ingestion specific errors. 둘 다 ErrInvalidInput 으로 감싸서 반환된다.
var (
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrInvalidIdentifiers = errors.New("invalid identifiers")
)

// Match specific errors
var (
	ErrMatchNotFound = errors.New("match not found")
)

// Lookup specific errors
var (
	ErrProfileNotFound       = errors.New("player profile not found")
	ErrClientVersionNotFound = errors.New("client version not found")
)
