package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
)

func newTestStore() contract.SessionStore {
	return NewSessionStore(1 * time.Hour)
}

func seedSession(t *testing.T, store contract.SessionStore, id string) {
	t.Helper()
	err := store.Create(context.Background(), &entity.Session{
		Id:      id,
		JobText: "job posting",
		CvText:  "cv",
	})
	assert.NoError(t, err)
}

func TestCreateLoadRoundtrip(t *testing.T) {
	store := newTestStore()
	seedSession(t, store, "sess-1")

	loaded, err := store.Load(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "job posting", loaded.JobText)
}

func TestLoadUnknownSession(t *testing.T) {
	store := newTestStore()

	_, err := store.Load(context.Background(), "nope")
	assert.True(t, errors.Is(err, contract.ErrSessionNotFound))
}

func TestLoadReturnsIsolatedCopy(t *testing.T) {
	store := newTestStore()
	seedSession(t, store, "sess-1")

	first, err := store.Load(context.Background(), "sess-1")
	assert.NoError(t, err)
	first.JobText = "mutated by caller"
	if first.Vendors == nil {
		first.Vendors = map[string]entity.VendorPhaseState{}
	}
	first.Vendors["rogue"] = entity.VendorPhaseState{DraftLetter: "rogue"}

	second, err := store.Load(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "job posting", second.JobText)
	assert.NotContains(t, second.Vendors, "rogue")
}

func TestSaveCommonMergesOnlyGivenFields(t *testing.T) {
	store := newTestStore()
	seedSession(t, store, "sess-1")

	style := "friendly"
	err := store.SaveCommon(context.Background(), "sess-1", contract.CommonFields{
		StyleInstructions: &style,
		SearchResult:      []entity.CandidateRef{{Id: "doc-1", Score: 0.8}},
	})
	assert.NoError(t, err)

	loaded, err := store.Load(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "friendly", loaded.StyleInstructions)
	assert.Len(t, loaded.SearchResult, 1)
	// Nil pointers leave stored values untouched.
	assert.Equal(t, "job posting", loaded.JobText)
	assert.Equal(t, "cv", loaded.CvText)
}

func TestSaveMetadataMergesSingleKey(t *testing.T) {
	store := newTestStore()
	seedSession(t, store, "sess-1")

	ctx := context.Background()
	assert.NoError(t, store.SaveMetadata(ctx, "sess-1", "openai", entity.JobMetadata{CompanyName: "Acme"}))
	assert.NoError(t, store.SaveMetadata(ctx, "sess-1", "gemini", entity.JobMetadata{CompanyName: "ACME Inc"}))

	loaded, err := store.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Equal(t, "Acme", loaded.Metadata["openai"].CompanyName)
	assert.Equal(t, "ACME Inc", loaded.Metadata["gemini"].CompanyName)
}

// Vendor workers persist concurrently during every phase; a write for one
// vendor must never clobber a sibling's slice.
func TestConcurrentVendorWritesNeverClobber(t *testing.T) {
	store := newTestStore()
	seedSession(t, store, "sess-1")

	ctx := context.Background()
	const vendors = 8

	var wg sync.WaitGroup
	for i := 0; i < vendors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vendor := fmt.Sprintf("vendor-%d", i)
			assert.NoError(t, store.SaveMetadata(ctx, "sess-1", vendor, entity.JobMetadata{
				CompanyName: vendor,
			}))
			assert.NoError(t, store.SaveVendorSlice(ctx, "sess-1", vendor, entity.VendorPhaseState{
				DraftLetter: "draft from " + vendor,
				Cost:        float64(i),
			}))
		}(i)
	}
	wg.Wait()

	loaded, err := store.Load(ctx, "sess-1")
	assert.NoError(t, err)
	assert.Len(t, loaded.Vendors, vendors)
	assert.Len(t, loaded.Metadata, vendors)
	for i := 0; i < vendors; i++ {
		vendor := fmt.Sprintf("vendor-%d", i)
		assert.Equal(t, "draft from "+vendor, loaded.Vendors[vendor].DraftLetter)
		assert.Equal(t, vendor, loaded.Metadata[vendor].CompanyName)
	}
}

func TestSaveVendorSliceUnknownSession(t *testing.T) {
	store := newTestStore()

	err := store.SaveVendorSlice(context.Background(), "missing", "openai", entity.VendorPhaseState{})
	assert.True(t, errors.Is(err, contract.ErrSessionNotFound))
}

func TestClearRemovesSession(t *testing.T) {
	store := newTestStore()
	seedSession(t, store, "sess-1")

	assert.NoError(t, store.Clear(context.Background(), "sess-1"))

	_, err := store.Load(context.Background(), "sess-1")
	assert.True(t, errors.Is(err, contract.ErrSessionNotFound))
}
