package intention

import (
	"errors"

	"deliveroo/grid"
)

// Error taxonomy for the decision core, expressed as errors.Is-compatible
// sentinels rather than free-form strings or type switches.
var (
	// ErrPathNotFound aliases grid.ErrPathNotFound so callers can use either
	// package's sentinel interchangeably with errors.Is.
	ErrPathNotFound = grid.ErrPathNotFound

	ErrMoveFailed = errors.New("intention: move failed")
	ErrStopped = errors.New("intention: stopped")
	ErrStateMismatch = errors.New("intention: state mismatch")
	ErrNoApplicablePlan = errors.New("intention: no plan satisfied the intention")
	ErrTransport = errors.New("intention: transport error")
)
