package contract

import (
	"context"
	"errors"

	"ai-coverletter-be/internal/entity"
)

// ErrSessionNotFound is returned by Load for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// CommonFields is a partial update of the session's shared fields. Nil
// pointers leave the stored value untouched.
type CommonFields struct {
	JobText           *string
	CvText            *string
	StyleInstructions *string
	SearchResult      []entity.CandidateRef
}

// SessionStore persists the session aggregate with safe concurrent partial
// updates. Every Save* is a read-merge-write at the granularity of one
// top-level key (one vendor slice, one metadata key, the common fields), so
// vendor workers running in parallel never clobber each other's writes.
// Implementations hold their lock only for the in-memory merge, never across
// a vendor call.
type SessionStore interface {
	// Create stores a fresh session. Existing sessions with the same id are
	// replaced.
	Create(ctx context.Context, session *entity.Session) error

	// Load returns the session or ErrSessionNotFound.
	Load(ctx context.Context, sessionId string) (*entity.Session, error)

	// SaveCommon merges the non-nil shared fields into the session.
	SaveCommon(ctx context.Context, sessionId string, fields CommonFields) error

	// SaveMetadata merges metadata[key]. Phase code only passes vendor keys;
	// the "common" baseline is written at ingestion/seeding time only.
	SaveMetadata(ctx context.Context, sessionId, key string, meta entity.JobMetadata) error

	// SaveVendorSlice merges vendors[vendor]. Last writer for the same
	// vendor wins; writers for different vendors never interfere.
	SaveVendorSlice(ctx context.Context, sessionId, vendor string, state entity.VendorPhaseState) error

	// Clear removes the session.
	Clear(ctx context.Context, sessionId string) error
}
