package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/dto"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/internal/repository/contract"
	"ai-coverletter-be/pkg/events"
	"ai-coverletter-be/pkg/generation"
	"ai-coverletter-be/pkg/llm"
	"ai-coverletter-be/pkg/retrieval"

	"github.com/google/uuid"
)

type ILetterService interface {
	StartExtraction(ctx context.Context, req *dto.ExtractRequest) (*dto.ExtractResponse, error)
	RunBackgroundPhase(ctx context.Context, sessionId string, req *dto.BackgroundRequest) (*dto.PhaseResponse, error)
	AdvanceToDraft(ctx context.Context, sessionId string, req *dto.DraftRequest) (*dto.PhaseResponse, error)
	AdvanceToRefinement(ctx context.Context, sessionId string, req *dto.RefineRequest) (*dto.PhaseResponse, error)
	Show(ctx context.Context, sessionId string) (*dto.SessionResponse, error)
	Clear(ctx context.Context, sessionId string) error
}

const (
	// phaseTimeout bounds one vendor's work within a phase.
	phaseTimeout = 5 * time.Minute

	// transientAttempts is 1 call plus retries for vendor-level failures.
	// Precondition and parse errors are never retried.
	transientAttempts = 3
	retryBackoff      = 500 * time.Millisecond
)

// letterService is the phase orchestrator. Each phase fans out over the
// requested vendors concurrently; one vendor's failure never aborts its
// siblings, it is reported in that vendor's result slot. Every vendor worker
// persists through per-key partial saves, so concurrent writers cannot
// clobber each other's slices.
type letterService struct {
	store          contract.SessionStore
	registry       *llm.Registry
	engine         *retrieval.Engine
	publisher      IPublisherService
	logger         logger.ILogger
	defaultVendors []string
}

func NewLetterService(
	store contract.SessionStore,
	registry *llm.Registry,
	engine *retrieval.Engine,
	publisher IPublisherService,
	log logger.ILogger,
	defaultVendors []string,
) ILetterService {
	return &letterService{
		store:          store,
		registry:       registry,
		engine:         engine,
		publisher:      publisher,
		logger:         log,
		defaultVendors: defaultVendors,
	}
}

func (s *letterService) resolveVendors(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return s.defaultVendors
}

// retryTransient retries fn on vendor-level errors only. Any other error is
// the caller's problem immediately.
func retryTransient(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= transientAttempts; attempt++ {
		err = fn()
		if err == nil || !llm.IsCallError(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// runVendors executes one phase step per vendor concurrently and blocks until
// every vendor finished. Result order matches the vendors argument.
func (s *letterService) runVendors(
	ctx context.Context,
	sessionId string,
	phase string,
	vendors []string,
	step func(ctx context.Context, client llm.Client, vendor string, result *dto.VendorResultDTO) error,
) []dto.VendorResultDTO {
	results := make([]dto.VendorResultDTO, len(vendors))

	var wg sync.WaitGroup
	for i, vendor := range vendors {
		wg.Add(1)
		go func(i int, vendor string) {
			defer wg.Done()

			results[i].Vendor = vendor
			s.publisher.Publish(ctx, events.NewPhaseEvent(events.TypePhaseStarted, sessionId, vendor, phase, nil))

			client, err := s.registry.Get(vendor)
			if err != nil {
				results[i].Error = err.Error()
				s.publishFailed(ctx, sessionId, vendor, phase, err)
				return
			}

			vendorCtx, cancel := context.WithTimeout(ctx, phaseTimeout)
			defer cancel()

			if err := step(vendorCtx, client, vendor, &results[i]); err != nil {
				results[i].Error = err.Error()
				s.publishFailed(ctx, sessionId, vendor, phase, err)
				return
			}

			s.publisher.Publish(ctx, events.NewPhaseEvent(events.TypePhaseCompleted, sessionId, vendor, phase, map[string]interface{}{
				"cost": results[i].Cost,
			}))
		}(i, vendor)
	}
	wg.Wait()

	return results
}

func (s *letterService) publishFailed(ctx context.Context, sessionId, vendor, phase string, err error) {
	s.logger.Error("LetterService", "Phase failed for vendor", map[string]interface{}{
		"session_id": sessionId,
		"vendor":     vendor,
		"phase":      phase,
		"error":      err.Error(),
	})
	s.publisher.Publish(ctx, events.NewPhaseEvent(events.TypePhaseFailed, sessionId, vendor, phase, map[string]interface{}{
		"error": err.Error(),
	}))
}

// StartExtraction creates the session and runs metadata extraction for every
// vendor in parallel. A failing vendor is recorded as an empty extraction so
// later phases can still run for its siblings, falling back to the common
// baseline.
func (s *letterService) StartExtraction(ctx context.Context, req *dto.ExtractRequest) (*dto.ExtractResponse, error) {
	if strings.TrimSpace(req.JobText) == "" {
		return nil, &MissingInputError{Field: "job_text"}
	}
	if strings.TrimSpace(req.CvText) == "" {
		return nil, &MissingInputError{Field: "cv_text"}
	}

	now := time.Now()
	session := &entity.Session{
		Id:                uuid.NewString(),
		JobText:           req.JobText,
		CvText:            req.CvText,
		StyleInstructions: req.StyleInstructions,
		Metadata:          make(map[string]entity.JobMetadata),
		Vendors:           make(map[string]entity.VendorPhaseState),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}

	vendors := s.resolveVendors(req.Vendors)
	results := s.runVendors(ctx, session.Id, constant.PhaseExtraction, vendors,
		func(ctx context.Context, client llm.Client, vendor string, result *dto.VendorResultDTO) error {
			var meta entity.JobMetadata
			var usage llm.Usage
			err := retryTransient(ctx, func() error {
				var callErr error
				meta, usage, callErr = generation.ExtractMetadata(ctx, client, req.JobText)
				return callErr
			})
			if err != nil {
				// Record the empty extraction so downstream phases can fall
				// back to the common baseline for this vendor.
				if saveErr := s.store.SaveMetadata(ctx, session.Id, vendor, entity.JobMetadata{}); saveErr != nil {
					s.logger.Error("LetterService", "Failed to persist empty extraction", map[string]interface{}{
						"session_id": session.Id,
						"vendor":     vendor,
						"error":      saveErr.Error(),
					})
				}
				return err
			}

			if err := s.store.SaveMetadata(ctx, session.Id, vendor, meta); err != nil {
				return err
			}
			if err := s.store.SaveVendorSlice(ctx, session.Id, vendor, entity.VendorPhaseState{Cost: usage.Cost}); err != nil {
				return err
			}

			result.Metadata = &meta
			result.Cost = usage.Cost
			return nil
		})

	return &dto.ExtractResponse{SessionId: session.Id, Results: results}, nil
}

// RunBackgroundPhase populates top_docs and company_report for each vendor.
// Retrieval candidates are found once and cached on the session; reranking
// and company research run per vendor, concurrently with each other.
func (s *letterService) RunBackgroundPhase(ctx context.Context, sessionId string, req *dto.BackgroundRequest) (*dto.PhaseResponse, error) {
	session, err := s.store.Load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	refs := session.SearchResult
	if len(refs) == 0 {
		refs, err = s.engine.FindSimilar(ctx, session.JobText)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveCommon(ctx, sessionId, contract.CommonFields{SearchResult: refs}); err != nil {
			return nil, err
		}
	}

	docs, err := s.engine.Hydrate(ctx, refs)
	if err != nil {
		return nil, err
	}

	vendors := s.resolveVendors(req.Vendors)
	results := s.runVendors(ctx, sessionId, constant.PhaseBackground, vendors,
		func(ctx context.Context, client llm.Client, vendor string, result *dto.VendorResultDTO) error {
			meta := session.MetadataFor(vendor)
			if meta.CompanyName == "" {
				return &MissingMetadataError{Vendor: vendor, Field: "company_name"}
			}

			// Research does not depend on the shortlist, so both halves run
			// concurrently.
			var (
				wg          sync.WaitGroup
				topDocs     []entity.ScoredDocument
				rerankUsage llm.Usage
				rerankErr   error
				report      string
				reportUsage llm.Usage
				reportErr   error
			)

			wg.Add(2)
			go func() {
				defer wg.Done()
				rerankErr = retryTransient(ctx, func() error {
					var callErr error
					topDocs, rerankUsage, callErr = s.engine.Rerank(ctx, client, session.JobText, docs)
					return callErr
				})
			}()
			go func() {
				defer wg.Done()
				reportErr = retryTransient(ctx, func() error {
					var callErr error
					report, reportUsage, callErr = generation.ResearchCompany(ctx, client, meta)
					return callErr
				})
			}()
			wg.Wait()

			if rerankErr != nil {
				return rerankErr
			}
			if reportErr != nil {
				return reportErr
			}

			state := session.VendorState(vendor)
			state.TopDocs = topDocs
			state.CompanyReport = report
			state.Cost += rerankUsage.Cost + reportUsage.Cost
			if err := s.store.SaveVendorSlice(ctx, sessionId, vendor, state); err != nil {
				return err
			}

			result.CompanyReport = report
			result.Cost = state.Cost
			return nil
		})

	return &dto.PhaseResponse{SessionId: sessionId, Phase: constant.PhaseBackground, Results: results}, nil
}

// AdvanceToDraft generates the letter and reviews it with the six quality
// checks on a bounded worker pool. Re-entrant: a vendor already drafted
// regenerates from current state.
func (s *letterService) AdvanceToDraft(ctx context.Context, sessionId string, req *dto.DraftRequest) (*dto.PhaseResponse, error) {
	session, err := s.store.Load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	vendors := s.resolveVendors(req.Vendors)
	results := s.runVendors(ctx, sessionId, constant.PhaseDraft, vendors,
		func(ctx context.Context, client llm.Client, vendor string, result *dto.VendorResultDTO) error {
			state := session.VendorState(vendor)
			if state.CompanyReport == "" && !req.Override {
				return &MissingMetadataError{Vendor: vendor, Field: "company_report"}
			}

			meta := session.MetadataFor(vendor)
			var draft string
			var draftUsage llm.Usage
			err := retryTransient(ctx, func() error {
				var callErr error
				draft, draftUsage, callErr = generation.DraftLetter(ctx, client, generation.DraftInput{
					JobText:           session.JobText,
					CvText:            session.CvText,
					StyleInstructions: session.StyleInstructions,
					Metadata:          meta,
					CompanyReport:     state.CompanyReport,
					TopDocs:           state.TopDocs,
				})
				return callErr
			})
			if err != nil {
				return err
			}

			feedback, checksUsage, err := s.runChecks(ctx, client, generation.CheckInput{
				Draft:             draft,
				JobText:           session.JobText,
				CvText:            session.CvText,
				StyleInstructions: session.StyleInstructions,
				CompanyReport:     state.CompanyReport,
				Metadata:          meta,
			})
			if err != nil {
				return err
			}

			state.DraftLetter = draft
			state.Feedback = feedback
			state.FinalLetter = "" // a fresh draft invalidates any earlier refinement
			state.Cost += draftUsage.Cost + checksUsage.Cost
			if err := s.store.SaveVendorSlice(ctx, sessionId, vendor, state); err != nil {
				return err
			}

			result.DraftLetter = draft
			result.Feedback = feedback
			result.Cost = state.Cost
			return nil
		})

	return &dto.PhaseResponse{SessionId: sessionId, Phase: constant.PhaseDraft, Results: results}, nil
}

// runChecks runs all quality checks against the draft on a bounded pool.
func (s *letterService) runChecks(ctx context.Context, client llm.Client, in generation.CheckInput) (map[string]string, llm.Usage, error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		total    llm.Usage
		firstErr error
	)
	feedback := make(map[string]string, len(constant.CheckNames))
	sem := make(chan struct{}, constant.CheckWorkers)

	for _, check := range constant.CheckNames {
		wg.Add(1)
		go func(check string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			text, usage, err := generation.RunCheck(ctx, client, check, in)

			mu.Lock()
			defer mu.Unlock()
			total.Add(usage)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			feedback[check] = text
		}(check)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, total, firstErr
	}
	return feedback, total, nil
}

// AdvanceToRefinement rewrites the draft against the actionable feedback.
// When every check came back clear, or the rewrite model reports nothing to
// change, the draft is returned unchanged without spending a rewrite call.
func (s *letterService) AdvanceToRefinement(ctx context.Context, sessionId string, req *dto.RefineRequest) (*dto.PhaseResponse, error) {
	session, err := s.store.Load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	vendors := s.resolveVendors(req.Vendors)
	results := s.runVendors(ctx, sessionId, constant.PhaseRefine, vendors,
		func(ctx context.Context, client llm.Client, vendor string, result *dto.VendorResultDTO) error {
			state := session.VendorState(vendor)
			if state.DraftLetter == "" {
				return &MissingDraftError{Vendor: vendor}
			}

			actionable := make(map[string]string)
			for check, entry := range state.Feedback {
				if generation.HasIssues(entry) {
					actionable[check] = entry
				}
			}

			final := state.DraftLetter
			var usage llm.Usage
			if len(actionable) > 0 {
				err := retryTransient(ctx, func() error {
					var callErr error
					final, usage, callErr = generation.RewriteLetter(ctx, client, state.DraftLetter, actionable, session.StyleInstructions)
					return callErr
				})
				if err != nil {
					return err
				}
			}

			if req.Fancy {
				meta := session.MetadataFor(vendor)
				if meta.CompanyName == "" {
					s.logger.Warn("LetterService", "Skipping fancy transform, no company name", map[string]interface{}{
						"session_id": sessionId,
						"vendor":     vendor,
					})
				} else {
					var fancyUsage llm.Usage
					letter := final
					err := retryTransient(ctx, func() error {
						var callErr error
						letter, fancyUsage, callErr = generation.FancyLetter(ctx, client, final, meta.CompanyName)
						return callErr
					})
					if err != nil {
						return err
					}
					final = letter
					usage.Add(fancyUsage)
				}
			}

			state.FinalLetter = final
			state.Cost += usage.Cost
			if err := s.store.SaveVendorSlice(ctx, sessionId, vendor, state); err != nil {
				return err
			}

			result.FinalLetter = final
			result.Cost = state.Cost
			return nil
		})

	return &dto.PhaseResponse{SessionId: sessionId, Phase: constant.PhaseRefine, Results: results}, nil
}

func (s *letterService) Show(ctx context.Context, sessionId string) (*dto.SessionResponse, error) {
	session, err := s.store.Load(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		Id:                session.Id,
		JobText:           session.JobText,
		CvText:            session.CvText,
		StyleInstructions: session.StyleInstructions,
		SearchResult:      session.SearchResult,
		Metadata:          session.Metadata,
		Vendors:           session.Vendors,
		CreatedAt:         session.CreatedAt,
		UpdatedAt:         session.UpdatedAt,
	}, nil
}

func (s *letterService) Clear(ctx context.Context, sessionId string) error {
	if _, err := s.store.Load(ctx, sessionId); err != nil {
		if errors.Is(err, contract.ErrSessionNotFound) {
			return nil // clearing an unknown session is a no-op
		}
		return err
	}
	return s.store.Clear(ctx, sessionId)
}
