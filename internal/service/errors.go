package service

import (
	"errors"

	"formassist/internal/form"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownModule      = errors.New("unknown module")
	ErrEvidenceNotAllowed = errors.New("question does not accept evidence")
	ErrCheckoutDisabled   = errors.New("checkout is not configured")
	ErrCheckoutFailed     = errors.New("checkout failed")

	// Store errors, re-exported so handlers only depend on this package
	ErrUnknownQuestion = form.ErrUnknownQuestion
	ErrUnknownProperty = form.ErrUnknownProperty
	ErrOutOfRange      = form.ErrOutOfRange
)
