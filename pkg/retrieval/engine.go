package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ai-coverletter-be/internal/constant"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/internal/repository/contract"
	"ai-coverletter-be/pkg/embedding"
	"ai-coverletter-be/pkg/llm"

	"github.com/google/uuid"
)

// Engine finds reference letters for a job posting. FindSimilar queries the
// vector index for the nearest top-N candidates, Hydrate resolves them to
// full documents, Rerank asks a vendor model to score each candidate against
// the posting and keeps the top-K shortlist.
type Engine struct {
	embedder embedding.Provider
	corpus   contract.CorpusRepository
	logger   logger.ILogger
	topN     int
	topK     int
}

func NewEngine(embedder embedding.Provider, corpus contract.CorpusRepository, logger logger.ILogger) *Engine {
	return &Engine{
		embedder: embedder,
		corpus:   corpus,
		logger:   logger,
		topN:     constant.RetrievalTopN,
		topK:     constant.RerankTopK,
	}
}

func (e *Engine) FindSimilar(ctx context.Context, queryText string) ([]entity.CandidateRef, error) {
	vector, err := e.embedder.Generate(ctx, queryText, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored, err := e.corpus.QueryNearest(ctx, vector, e.topN)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector index: %w", err)
	}

	refs := make([]entity.CandidateRef, len(scored))
	for i, s := range scored {
		refs[i] = entity.CandidateRef{
			Id:    s.Document.Id.String(),
			Score: s.Similarity,
		}
	}
	return refs, nil
}

// Hydrate resolves candidate refs to full documents. Refs carrying inline
// content (legacy payloads) are used as-is without a store round trip.
func (e *Engine) Hydrate(ctx context.Context, refs []entity.CandidateRef) ([]entity.ScoredDocument, error) {
	var missing []uuid.UUID
	for _, ref := range refs {
		if ref.Inline() {
			continue
		}
		id, err := uuid.Parse(ref.Id)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate ref id %q: %w", ref.Id, err)
		}
		missing = append(missing, id)
	}

	byId := make(map[string]*entity.CorpusDocument)
	if len(missing) > 0 {
		docs, err := e.corpus.FindByIds(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to hydrate candidates: %w", err)
		}
		for _, d := range docs {
			byId[d.Id.String()] = d
		}
	}

	hydrated := make([]entity.ScoredDocument, 0, len(refs))
	for _, ref := range refs {
		if ref.Inline() {
			hydrated = append(hydrated, entity.ScoredDocument{
				CompanyName: ref.CompanyName,
				JobText:     ref.JobText,
				LetterText:  ref.LetterText,
				Score:       ref.Score,
			})
			continue
		}
		doc, ok := byId[ref.Id]
		if !ok {
			e.logger.Warn("retrieval", "candidate ref no longer in corpus, skipping", map[string]interface{}{
				"id": ref.Id,
			})
			continue
		}
		hydrated = append(hydrated, entity.ScoredDocument{
			CompanyName: doc.CompanyName,
			JobText:     doc.JobText,
			LetterText:  doc.LetterText,
			Score:       ref.Score,
		})
	}
	return hydrated, nil
}

// Rerank scores every candidate 1 to 10 against the posting and returns the
// top candidates by descending score, ties keeping retrieval order. Zero
// scores drop out, so the shortlist can be smaller than top-K. Malformed
// score JSON is a hard *RerankParseError, never silently defaulted.
func (e *Engine) Rerank(ctx context.Context, client llm.Client, queryText string, docs []entity.ScoredDocument) ([]entity.ScoredDocument, llm.Usage, error) {
	if len(docs) == 0 {
		return nil, llm.Usage{}, nil
	}

	var sb strings.Builder
	sb.WriteString("Job posting:\n")
	sb.WriteString(queryText)
	sb.WriteString("\n\nCandidates:\n")
	for i, doc := range docs {
		fmt.Fprintf(&sb, "\n[doc_%d]\n%s\n", i+1, doc.JobText)
	}

	text, usage, err := client.Call(ctx, llm.SizeBase, constant.RerankSystemPrompt, llm.UserMessage(sb.String()), false)
	if err != nil {
		return nil, usage, err
	}

	scores, err := parseScores(text, len(docs))
	if err != nil {
		return nil, usage, &RerankParseError{Vendor: client.Vendor(), Raw: text, Err: err}
	}

	type indexed struct {
		doc   entity.ScoredDocument
		score float64
		order int
	}
	ranked := make([]indexed, 0, len(docs))
	for i, doc := range docs {
		score := scores[fmt.Sprintf("doc_%d", i+1)]
		if score == 0 {
			continue
		}
		doc.Score = score
		ranked = append(ranked, indexed{doc: doc, score: score, order: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > e.topK {
		ranked = ranked[:e.topK]
	}

	top := make([]entity.ScoredDocument, len(ranked))
	for i, r := range ranked {
		top[i] = r.doc
	}
	return top, usage, nil
}

// parseScores decodes the strict score JSON. Every candidate must be scored
// 0 to 10 under its doc_N key.
func parseScores(text string, count int) (map[string]float64, error) {
	raw := extractJSON(text)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var scores map[string]float64
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, err
	}

	for i := 1; i <= count; i++ {
		key := fmt.Sprintf("doc_%d", i)
		score, ok := scores[key]
		if !ok {
			return nil, fmt.Errorf("missing score for %s", key)
		}
		if score < 0 || score > 10 {
			return nil, fmt.Errorf("score %v for %s out of range", score, key)
		}
	}
	return scores, nil
}

// extractJSON strips markdown fences and surrounding prose, keeping the
// outermost object.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return text[start : end+1]
}
