package retrieval

import (
	"context"
	"errors"
	"testing"

	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/repository/specification"
	"ai-coverletter-be/pkg/llm"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (l *nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *nopLogger) Info(module, message string, details map[string]interface{})  {}
func (l *nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (l *nopLogger) Error(module, message string, details map[string]interface{}) {}
func (l *nopLogger) Sync() error                                                  { return nil }

type scriptedClient struct {
	response string
	err      error
	calls    int
}

func (c *scriptedClient) Vendor() string { return "scripted" }

func (c *scriptedClient) Call(ctx context.Context, size llm.Size, system string, messages []llm.Message, search bool) (string, llm.Usage, error) {
	c.calls++
	if c.err != nil {
		return "", llm.Usage{}, c.err
	}
	return c.response, llm.Usage{InputTokens: 100, OutputTokens: 20}, nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text, taskType string) ([]float32, error) {
	return f.vector, f.err
}

type fakeCorpus struct {
	nearest []*entity.ScoredCorpusDocument
	docs    map[uuid.UUID]*entity.CorpusDocument
}

func (f *fakeCorpus) Create(ctx context.Context, doc *entity.CorpusDocument) error { return nil }
func (f *fakeCorpus) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error {
	return nil
}
func (f *fakeCorpus) QueryNearest(ctx context.Context, vector []float32, limit int) ([]*entity.ScoredCorpusDocument, error) {
	return f.nearest, nil
}
func (f *fakeCorpus) FindById(ctx context.Context, id uuid.UUID) (*entity.CorpusDocument, error) {
	return f.docs[id], nil
}
func (f *fakeCorpus) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.CorpusDocument, error) {
	var out []*entity.CorpusDocument
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}
func (f *fakeCorpus) List(ctx context.Context, specs ...specification.Specification) ([]*entity.CorpusDocument, error) {
	return nil, nil
}
func (f *fakeCorpus) Count(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeCorpus) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func docs(n int) []entity.ScoredDocument {
	out := make([]entity.ScoredDocument, n)
	for i := range out {
		out[i] = entity.ScoredDocument{
			CompanyName: "Company",
			JobText:     "posting",
			LetterText:  "letter",
		}
	}
	return out
}

func TestRerankKeepsTopThreeDescending(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{}, &nopLogger{})
	client := &scriptedClient{
		response: `{"doc_1": 4, "doc_2": 9, "doc_3": 2, "doc_4": 7, "doc_5": 5}`,
	}

	top, _, err := engine.Rerank(context.Background(), client, "posting", docs(5))
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}

	if len(top) != 3 {
		t.Fatalf("len(top) = %d, want 3", len(top))
	}
	wantScores := []float64{9, 7, 5}
	for i, want := range wantScores {
		if top[i].Score != want {
			t.Errorf("top[%d].Score = %v, want %v", i, top[i].Score, want)
		}
	}
}

func TestRerankTiesKeepRetrievalOrder(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{}, &nopLogger{})
	client := &scriptedClient{
		response: `{"doc_1": 5, "doc_2": 5, "doc_3": 5}`,
	}

	input := docs(3)
	input[0].CompanyName = "first"
	input[1].CompanyName = "second"
	input[2].CompanyName = "third"

	top, _, err := engine.Rerank(context.Background(), client, "posting", input)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if top[i].CompanyName != want {
			t.Errorf("top[%d] = %q, want %q", i, top[i].CompanyName, want)
		}
	}
}

func TestRerankDropsZeroScores(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{}, &nopLogger{})
	client := &scriptedClient{
		response: `{"doc_1": 0, "doc_2": 3, "doc_3": 0}`,
	}

	top, _, err := engine.Rerank(context.Background(), client, "posting", docs(3))
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(top) != 1 {
		t.Fatalf("len(top) = %d, want 1 (zero scores drop out)", len(top))
	}
	if top[0].Score != 3 {
		t.Errorf("top[0].Score = %v, want 3", top[0].Score)
	}
}

func TestRerankParsesFencedJSON(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{}, &nopLogger{})
	client := &scriptedClient{
		response: "Here are the scores:\n```json\n{\"doc_1\": 8, \"doc_2\": 6}\n```",
	}

	top, _, err := engine.Rerank(context.Background(), client, "posting", docs(2))
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(top) != 2 {
		t.Errorf("len(top) = %d, want 2", len(top))
	}
}

func TestRerankMalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no JSON at all", "I cannot score these documents."},
		{"missing key", `{"doc_1": 8}`},
		{"score out of range", `{"doc_1": 11, "doc_2": 5}`},
		{"negative score", `{"doc_1": -1, "doc_2": 5}`},
		{"non-numeric score", `{"doc_1": "high", "doc_2": 5}`},
	}

	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{}, &nopLogger{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{response: tt.response}
			_, _, err := engine.Rerank(context.Background(), client, "posting", docs(2))

			var parseErr *RerankParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Rerank() error = %v, want *RerankParseError", err)
			}
			if parseErr.HTTPStatus() != 502 {
				t.Errorf("HTTPStatus() = %d, want 502", parseErr.HTTPStatus())
			}
		})
	}
}

func TestRerankEmptyCandidatesSkipsCall(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{}, &nopLogger{})
	client := &scriptedClient{response: "{}"}

	top, usage, err := engine.Rerank(context.Background(), client, "posting", nil)
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if top != nil {
		t.Errorf("top = %v, want nil", top)
	}
	if usage.InputTokens != 0 || client.calls != 0 {
		t.Error("Rerank with no candidates should not call the model")
	}
}

func TestHydrateInlineBypassesStore(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeCorpus{docs: map[uuid.UUID]*entity.CorpusDocument{}}, &nopLogger{})

	refs := []entity.CandidateRef{
		{Id: "legacy", Score: 0.9, CompanyName: "Inline Co", JobText: "job", LetterText: "letter"},
	}

	hydrated, err := engine.Hydrate(context.Background(), refs)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if len(hydrated) != 1 {
		t.Fatalf("len(hydrated) = %d, want 1", len(hydrated))
	}
	if hydrated[0].CompanyName != "Inline Co" || hydrated[0].Score != 0.9 {
		t.Errorf("hydrated[0] = %+v", hydrated[0])
	}
}

func TestHydrateSkipsMissingDocuments(t *testing.T) {
	known := uuid.New()
	corpus := &fakeCorpus{docs: map[uuid.UUID]*entity.CorpusDocument{
		known: {Id: known, CompanyName: "Known Co", JobText: "job", LetterText: "letter"},
	}}
	engine := NewEngine(&fakeEmbedder{}, corpus, &nopLogger{})

	refs := []entity.CandidateRef{
		{Id: known.String(), Score: 0.8},
		{Id: uuid.NewString(), Score: 0.7}, // deleted from corpus since retrieval
	}

	hydrated, err := engine.Hydrate(context.Background(), refs)
	if err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if len(hydrated) != 1 {
		t.Fatalf("len(hydrated) = %d, want 1", len(hydrated))
	}
	if hydrated[0].CompanyName != "Known Co" {
		t.Errorf("hydrated[0].CompanyName = %q", hydrated[0].CompanyName)
	}
}

func TestFindSimilar(t *testing.T) {
	id := uuid.New()
	corpus := &fakeCorpus{
		nearest: []*entity.ScoredCorpusDocument{
			{Document: &entity.CorpusDocument{Id: id}, Similarity: 0.93},
		},
	}
	engine := NewEngine(&fakeEmbedder{vector: []float32{0.1, 0.2}}, corpus, &nopLogger{})

	refs, err := engine.FindSimilar(context.Background(), "posting")
	if err != nil {
		t.Fatalf("FindSimilar() error = %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("len(refs) = %d, want 1", len(refs))
	}
	if refs[0].Id != id.String() || refs[0].Score != 0.93 {
		t.Errorf("refs[0] = %+v", refs[0])
	}
}
