package service

import "fmt"

// Precondition errors are fatal for the affected vendor's phase call and are
// never retried; they surface as 4xx responses.

// MissingInputError means a required request field was empty.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input %q", e.Field)
}

func (e *MissingInputError) HTTPStatus() int {
	return 400
}

// MissingMetadataError means a phase needs an extracted field that neither
// the vendor's extraction nor the common baseline provides.
type MissingMetadataError struct {
	Vendor string
	Field  string
}

func (e *MissingMetadataError) Error() string {
	return fmt.Sprintf("vendor %s has no %q metadata and no common fallback", e.Vendor, e.Field)
}

func (e *MissingMetadataError) HTTPStatus() int {
	return 422
}

// MissingDraftError means refinement was requested before a draft exists.
type MissingDraftError struct {
	Vendor string
}

func (e *MissingDraftError) Error() string {
	return fmt.Sprintf("vendor %s has no draft letter to refine", e.Vendor)
}

func (e *MissingDraftError) HTTPStatus() int {
	return 409
}
