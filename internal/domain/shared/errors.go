package shared

import "errors"

var (
	// ErrEnvironmentMismatch indicates the request targeted a different
	// deployment environment than the one this instance serves.
	ErrEnvironmentMismatch = errors.New("target environment does not match deployment environment")

	// ErrInvalidIdempotencyKey indicates a missing or non-UUID idempotency key
	ErrInvalidIdempotencyKey = errors.New("idempotency key must be a valid UUID")

	// ErrInvalidCallbackURL indicates the callback URL is not an absolute http(s) URL
	ErrInvalidCallbackURL = errors.New("callback URL must be an absolute http or https URL")

	// ErrNotWhitelisted indicates the destination number is not authorized
	// for the calling account.
	ErrNotWhitelisted = errors.New("destination number is not whitelisted for this account")

	// ErrNoUpstreamReference indicates the transaction was never accepted by
	// the upstream gateway, so it has no status to query there.
	ErrNoUpstreamReference = errors.New("transaction has no upstream reference")

	ErrInvalidProvider = errors.New("unknown provider")
	ErrInvalidAmount   = errors.New("amount must be positive")
)
