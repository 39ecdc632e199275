package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"ai-coverletter-be/internal/config"
	"ai-coverletter-be/internal/entity"
	"ai-coverletter-be/internal/repository/implementation"
	"ai-coverletter-be/pkg/database"
	"ai-coverletter-be/pkg/embedding"
	"ai-coverletter-be/pkg/embedding/jina"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// seedDocument mirrors the JSON seed file format.
type seedDocument struct {
	CompanyName string `json:"company_name"`
	JobText     string `json:"job_text"`
	LetterText  string `json:"letter_text"`
	Language    string `json:"language"`
}

// Seeds the reference-letter corpus from a JSON file, embedding every
// document synchronously so the index is queryable as soon as this exits.
func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "seed/corpus.json", "path to the corpus seed JSON")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("Failed to read seed file %s: %v", filePath, err)
	}

	var docs []seedDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		log.Fatalf("Failed to parse seed file: %v", err)
	}

	var provider embedding.Provider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		provider = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	repo := implementation.NewCorpusRepository(db)
	ctx := context.Background()

	okCount, failCount := 0, 0
	for i, seed := range docs {
		doc := &entity.CorpusDocument{
			Id:          uuid.New(),
			CompanyName: seed.CompanyName,
			JobText:     seed.JobText,
			LetterText:  seed.LetterText,
			Language:    seed.Language,
		}

		if err := repo.Create(ctx, doc); err != nil {
			color.Red("✗ [%d/%d] %s: create failed: %v", i+1, len(docs), seed.CompanyName, err)
			failCount++
			continue
		}

		content := "Company: " + seed.CompanyName + "\n\n" + seed.JobText
		vector, err := provider.Generate(ctx, content, embedding.TaskDocument)
		if err != nil {
			color.Red("✗ [%d/%d] %s: embedding failed: %v", i+1, len(docs), seed.CompanyName, err)
			failCount++
			continue
		}

		if err := repo.Upsert(ctx, doc.Id, vector); err != nil {
			color.Red("✗ [%d/%d] %s: upsert failed: %v", i+1, len(docs), seed.CompanyName, err)
			failCount++
			continue
		}

		color.Green("✓ [%d/%d] %s embedded (%d dims)", i+1, len(docs), seed.CompanyName, len(vector))
		okCount++
	}

	count, err := repo.Count(ctx)
	if err != nil {
		log.Printf("Warn: failed to count corpus: %v", err)
	}

	color.Cyan("Done: %d seeded, %d failed, %d total documents in corpus", okCount, failCount, count)
	if failCount > 0 {
		os.Exit(1)
	}
}
