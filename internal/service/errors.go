package service

import "errors"

var (
	// ErrNotFound means the room code does not resolve to a usable session.
	ErrNotFound = errors.New("room not found")
	// ErrUnauthorized means the caller may not perform the operation on this session.
	ErrUnauthorized = errors.New("not the owner of this session")
	// ErrInvalidTransition means the session status does not allow the request.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrPersistence wraps store, log and blob I/O failures. Callers may retry.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidInput means a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidToken means a bearer token failed signature, expiry or claim checks.
	ErrInvalidToken = errors.New("invalid or expired token")
)
