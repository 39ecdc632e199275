package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/dto"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/repository/contract"
	"ai-coverletter-be/internal/repository/memory"
	"ai-coverletter-be/internal/repository/specification"
	"ai-coverletter-be/pkg/llm"
	"ai-coverletter-be/pkg/retrieval"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (l *nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *nopLogger) Info(module, message string, details map[string]interface{})  {}
func (l *nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (l *nopLogger) Error(module, message string, details map[string]interface{}) {}
func (l *nopLogger) Sync() error                                                  { return nil }

// scriptedVendor routes calls by size and system prompt, recording every size
// it served. Safe for the concurrent vendor workers.
type scriptedVendor struct {
	vendor string
	handle func(size llm.Size, system string) (string, llm.Usage, error)

	mu    sync.Mutex
	sizes []llm.Size
}

func (c *scriptedVendor) Vendor() string { return c.vendor }

func (c *scriptedVendor) Call(ctx context.Context, size llm.Size, system string, messages []llm.Message, search bool) (string, llm.Usage, error) {
	c.mu.Lock()
	c.sizes = append(c.sizes, size)
	c.mu.Unlock()
	return c.handle(size, system)
}

func (c *scriptedVendor) countSize(size llm.Size) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sizes {
		if s == size {
			n++
		}
	}
	return n
}

// happyHandler answers every phase call the way a cooperative vendor would.
func happyHandler(size llm.Size, system string) (string, llm.Usage, error) {
	usage := llm.Usage{InputTokens: 100, OutputTokens: 50, Cost: 0.01}
	if system == constant.RerankSystemPrompt {
		return `{"doc_1": 8}`, usage, nil
	}
	switch size {
	case llm.SizeTiny:
		return `{"company_name": "Acme GmbH", "job_title": "Backend Engineer", "language": "en"}`, usage, nil
	case llm.SizeBase:
		return "Reviewed, nothing to flag.\nALL CLEAR.", usage, nil
	case llm.SizeMedium:
		return "Acme GmbH builds industrial anvils in Berlin.", usage, nil
	case llm.SizeXLarge:
		return "Dear Acme team,\n\nthe drafted letter.", usage, nil
	case llm.SizeLarge:
		return "Dear Acme team,\n\nthe rewritten letter.", usage, nil
	}
	return "", usage, errors.New("unexpected size " + string(size))
}

type fakeEmbedder struct{}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeCorpus struct {
	doc *entity.CorpusDocument
}

func (f *fakeCorpus) Create(ctx context.Context, doc *entity.CorpusDocument) error     { return nil }
func (f *fakeCorpus) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error { return nil }
func (f *fakeCorpus) QueryNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredCorpusDocument, error) {
	return []*entity.ScoredCorpusDocument{{Document: f.doc, Similarity: 0.91}}, nil
}
func (f *fakeCorpus) FindById(ctx context.Context, id uuid.UUID) (*entity.CorpusDocument, error) {
	return f.doc, nil
}
func (f *fakeCorpus) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.CorpusDocument, error) {
	return []*entity.CorpusDocument{f.doc}, nil
}
func (f *fakeCorpus) List(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusDocument, error) {
	return nil, nil
}
func (f *fakeCorpus) Count(ctx context.Context) (int64, error)       { return 1, nil }
func (f *fakeCorpus) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type harness struct {
	store   contract.SessionStore
	service ILetterService
	clients map[string]*scriptedVendor
}

func newHarness(t *testing.T, vendors ...*scriptedVendor) *harness {
	t.Helper()

	log := &nopLogger{}
	store := memory.NewSessionStore(1 * time.Hour)

	registry := llm.NewRegistry()
	clients := make(map[string]*scriptedVendor, len(vendors))
	names := make([]string, 0, len(vendors))
	for _, v := range vendors {
		registry.Register(v)
		clients[v.vendor] = v
		names = append(names, v.vendor)
	}

	corpus := &fakeCorpus{doc: &entity.CorpusDocument{
		Id:          uuid.New(),
		CompanyName: "Ref Co",
		JobText:     "reference posting",
		LetterText:  "reference letter",
	}}
	engine := retrieval.NewEngine(&fakeEmbedder{}, corpus, log)

	svc := NewLetterService(store, registry, engine, NewPublisherService(nil, log), log, names)
	return &harness{store: store, service: svc, clients: clients}
}

func TestStartExtractionValidatesInputs(t *testing.T) {
	h := newHarness(t, &scriptedVendor{vendor: "alpha", handle: happyHandler})

	_, err := h.service.StartExtraction(context.Background(), &dto.ExtractRequest{CvText: "cv"})
	var missing *MissingInputError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "job_text", missing.Field)
	assert.Equal(t, 400, missing.HTTPStatus())

	_, err = h.service.StartExtraction(context.Background(), &dto.ExtractRequest{JobText: "   ", CvText: "cv"})
	assert.True(t, errors.As(err, &missing))

	_, err = h.service.StartExtraction(context.Background(), &dto.ExtractRequest{JobText: "job"})
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, "cv_text", missing.Field)
}

func TestStartExtractionIsolatesVendorFailure(t *testing.T) {
	good := &scriptedVendor{vendor: "good", handle: happyHandler}
	bad := &scriptedVendor{vendor: "bad", handle: func(size llm.Size, system string) (string, llm.Usage, error) {
		return "", llm.Usage{}, errors.New("key revoked")
	}}
	h := newHarness(t, good, bad)

	resp, err := h.service.StartExtraction(context.Background(), &dto.ExtractRequest{
		JobText: "We are hiring a backend engineer at Acme GmbH.",
		CvText:  "Ten years of Go.",
		Vendors: []string{"good", "bad"},
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Results, 2)

	assert.Equal(t, "good", resp.Results[0].Vendor)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, "Acme GmbH", resp.Results[0].Metadata.CompanyName)

	assert.Equal(t, "bad", resp.Results[1].Vendor)
	assert.Contains(t, resp.Results[1].Error, "key revoked")
	assert.Nil(t, resp.Results[1].Metadata)

	// The failed vendor's extraction is recorded as empty so later phases can
	// fall back to the common baseline.
	session, err := h.store.Load(context.Background(), resp.SessionId)
	assert.NoError(t, err)
	assert.Contains(t, session.Metadata, "bad")
	assert.True(t, session.Metadata["bad"].IsEmpty())
	assert.Equal(t, "Acme GmbH", session.Metadata["good"].CompanyName)
}

func TestStartExtractionUnknownVendor(t *testing.T) {
	h := newHarness(t, &scriptedVendor{vendor: "alpha", handle: happyHandler})

	resp, err := h.service.StartExtraction(context.Background(), &dto.ExtractRequest{
		JobText: "job",
		CvText:  "cv",
		Vendors: []string{"ghost"},
	})
	assert.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Error, "unknown vendor")
}

func TestStartExtractionRetriesTransientFailures(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	flaky := &scriptedVendor{vendor: "flaky", handle: func(size llm.Size, system string) (string, llm.Usage, error) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n == 1 {
			return "", llm.Usage{}, &llm.CallError{Vendor: "flaky", Model: "m", Err: errors.New("overloaded")}
		}
		return happyHandler(size, system)
	}}
	h := newHarness(t, flaky)

	resp, err := h.service.StartExtraction(context.Background(), &dto.ExtractRequest{JobText: "job", CvText: "cv"})
	assert.NoError(t, err)
	assert.Empty(t, resp.Results[0].Error)
	assert.Equal(t, 2, attempts)
}

// seedThrough runs the pipeline up to the requested phase with a single
// cooperative vendor and returns the session id.
func seedThrough(t *testing.T, h *harness, phase string) string {
	t.Helper()
	ctx := context.Background()

	resp, err := h.service.StartExtraction(ctx, &dto.ExtractRequest{
		JobText: "We are hiring a backend engineer at Acme GmbH in Berlin.",
		CvText:  "Ten years of Go.",
	})
	assert.NoError(t, err)
	for _, r := range resp.Results {
		assert.Empty(t, r.Error)
	}
	if phase == constant.PhaseExtraction {
		return resp.SessionId
	}

	bg, err := h.service.RunBackgroundPhase(ctx, resp.SessionId, &dto.BackgroundRequest{})
	assert.NoError(t, err)
	for _, r := range bg.Results {
		assert.Empty(t, r.Error)
	}
	if phase == constant.PhaseBackground {
		return resp.SessionId
	}

	draft, err := h.service.AdvanceToDraft(ctx, resp.SessionId, &dto.DraftRequest{})
	assert.NoError(t, err)
	for _, r := range draft.Results {
		assert.Empty(t, r.Error)
	}
	return resp.SessionId
}

func TestRunBackgroundPhasePopulatesVendorState(t *testing.T) {
	alpha := &scriptedVendor{vendor: "alpha", handle: happyHandler}
	h := newHarness(t, alpha)

	sessionId := seedThrough(t, h, constant.PhaseBackground)

	session, err := h.store.Load(context.Background(), sessionId)
	assert.NoError(t, err)

	// Retrieval candidates are found once and cached on the session.
	assert.NotEmpty(t, session.SearchResult)

	state := session.VendorState("alpha")
	assert.Len(t, state.TopDocs, 1)
	assert.Equal(t, "Ref Co", state.TopDocs[0].CompanyName)
	assert.Contains(t, state.CompanyReport, "Acme GmbH")
	assert.Greater(t, state.Cost, 0.0)
}

func TestRunBackgroundPhaseRequiresCompanyName(t *testing.T) {
	// Extraction that yields no fields leaves no company name to research.
	vague := &scriptedVendor{vendor: "vague", handle: func(size llm.Size, system string) (string, llm.Usage, error) {
		if size == llm.SizeTiny {
			return "no structured data found", llm.Usage{}, nil
		}
		return happyHandler(size, system)
	}}
	h := newHarness(t, vague)

	resp, err := h.service.StartExtraction(context.Background(), &dto.ExtractRequest{JobText: "job", CvText: "cv"})
	assert.NoError(t, err)

	bg, err := h.service.RunBackgroundPhase(context.Background(), resp.SessionId, &dto.BackgroundRequest{})
	assert.NoError(t, err)
	assert.Contains(t, bg.Results[0].Error, "company_name")
}

func TestRunBackgroundPhaseUnknownSession(t *testing.T) {
	h := newHarness(t, &scriptedVendor{vendor: "alpha", handle: happyHandler})

	_, err := h.service.RunBackgroundPhase(context.Background(), "missing", &dto.BackgroundRequest{})
	assert.True(t, errors.Is(err, contract.ErrSessionNotFound))
}

func TestAdvanceToDraftRequiresCompanyReport(t *testing.T) {
	h := newHarness(t, &scriptedVendor{vendor: "alpha", handle: happyHandler})
	sessionId := seedThrough(t, h, constant.PhaseExtraction)

	resp, err := h.service.AdvanceToDraft(context.Background(), sessionId, &dto.DraftRequest{})
	assert.NoError(t, err)
	assert.Contains(t, resp.Results[0].Error, "company_report")

	// Override drafts without the briefing.
	resp, err = h.service.AdvanceToDraft(context.Background(), sessionId, &dto.DraftRequest{Override: true})
	assert.NoError(t, err)
	assert.Empty(t, resp.Results[0].Error)
	assert.NotEmpty(t, resp.Results[0].DraftLetter)
}

func TestAdvanceToDraftRunsAllChecks(t *testing.T) {
	alpha := &scriptedVendor{vendor: "alpha", handle: happyHandler}
	h := newHarness(t, alpha)

	sessionId := seedThrough(t, h, constant.PhaseDraft)

	session, err := h.store.Load(context.Background(), sessionId)
	assert.NoError(t, err)

	state := session.VendorState("alpha")
	assert.Contains(t, state.DraftLetter, "drafted letter")
	assert.Len(t, state.Feedback, len(constant.CheckNames))
	for _, check := range constant.CheckNames {
		assert.Contains(t, state.Feedback, check)
	}
	assert.Equal(t, 1, alpha.countSize(llm.SizeXLarge))
	// Six checks plus the background rerank share the base size.
	assert.Equal(t, len(constant.CheckNames)+1, alpha.countSize(llm.SizeBase))
}

func TestAdvanceToRefinementRequiresDraft(t *testing.T) {
	h := newHarness(t, &scriptedVendor{vendor: "alpha", handle: happyHandler})
	sessionId := seedThrough(t, h, constant.PhaseBackground)

	resp, err := h.service.AdvanceToRefinement(context.Background(), sessionId, &dto.RefineRequest{})
	assert.NoError(t, err)
	assert.Contains(t, resp.Results[0].Error, "no draft letter")
}

func TestAdvanceToRefinementAllClearSkipsRewrite(t *testing.T) {
	alpha := &scriptedVendor{vendor: "alpha", handle: happyHandler}
	h := newHarness(t, alpha)

	sessionId := seedThrough(t, h, constant.PhaseDraft)

	resp, err := h.service.AdvanceToRefinement(context.Background(), sessionId, &dto.RefineRequest{})
	assert.NoError(t, err)
	assert.Empty(t, resp.Results[0].Error)

	session, err := h.store.Load(context.Background(), sessionId)
	assert.NoError(t, err)
	state := session.VendorState("alpha")

	// Every check came back clear, so the final letter is the draft verbatim
	// and no rewrite call was spent.
	assert.Equal(t, state.DraftLetter, state.FinalLetter)
	assert.Equal(t, 0, alpha.countSize(llm.SizeLarge))
}

func TestAdvanceToRefinementRewritesOnIssues(t *testing.T) {
	picky := &scriptedVendor{vendor: "picky", handle: func(size llm.Size, system string) (string, llm.Usage, error) {
		if size == llm.SizeBase && system != constant.RerankSystemPrompt {
			return "The tone is off.\nISSUES FOUND.", llm.Usage{Cost: 0.01}, nil
		}
		return happyHandler(size, system)
	}}
	h := newHarness(t, picky)

	sessionId := seedThrough(t, h, constant.PhaseDraft)

	resp, err := h.service.AdvanceToRefinement(context.Background(), sessionId, &dto.RefineRequest{})
	assert.NoError(t, err)
	assert.Empty(t, resp.Results[0].Error)
	assert.Contains(t, resp.Results[0].FinalLetter, "rewritten letter")
	assert.Equal(t, 1, picky.countSize(llm.SizeLarge))
}

func TestShowAndClear(t *testing.T) {
	h := newHarness(t, &scriptedVendor{vendor: "alpha", handle: happyHandler})
	sessionId := seedThrough(t, h, constant.PhaseExtraction)

	shown, err := h.service.Show(context.Background(), sessionId)
	assert.NoError(t, err)
	assert.Equal(t, sessionId, shown.Id)
	assert.Contains(t, shown.Metadata, "alpha")

	assert.NoError(t, h.service.Clear(context.Background(), sessionId))

	_, err = h.service.Show(context.Background(), sessionId)
	assert.True(t, errors.Is(err, contract.ErrSessionNotFound))

	// Clearing an unknown session is a no-op.
	assert.NoError(t, h.service.Clear(context.Background(), "already-gone"))
}
