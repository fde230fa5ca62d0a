package domain

import "errors"

// Error taxonomy shared by services and handlers. Services wrap these with
// fmt.Errorf("...: %w", err); handlers map them to status codes with errors.Is.
var (
	// ErrNotFound means the resource, space, invitation or membership is absent
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor lacks a required permission
	ErrForbidden = errors.New("forbidden")

	// ErrExpired means a grant, membership or invitation is past its expiry.
	// Distinct from ErrForbidden so callers can offer a re-invite flow.
	ErrExpired = errors.New("expired")

	// ErrQuotaExhausted means an invitation has no redemption slots left
	ErrQuotaExhausted = errors.New("invitation quota exhausted")

	// ErrNotAddressed means the invitation targets a different email or user
	ErrNotAddressed = errors.New("invitation addressed to another identity")

	// ErrConflict means a duplicate active membership or a lost redemption race
	ErrConflict = errors.New("conflict")

	// ErrLastOwner guards against removing the sole owner of a space
	ErrLastOwner = errors.New("cannot remove the last owner of a space")

	// ErrValidation means the request was rejected before any state mutation
	ErrValidation = errors.New("validation failed")
)
