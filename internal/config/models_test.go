package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ai-coverletter-be/pkg/llm"
)

const testTable = `{
  "openai": {
    "models": {
      "tiny": "gpt-5-nano",
      "base": "gpt-5-mini",
      "xlarge": "gpt-5"
    },
    "pricing": {
      "gpt-5": {"input_per_mtok": 1.25, "output_per_mtok": 10.0},
      "gpt-5-mini": {"input_per_mtok": 0.25, "output_per_mtok": 2.0}
    }
  },
  "gemini": {
    "models": {
      "medium": "gemini-2.5-pro"
    },
    "pricing": {
      "gemini-2.5-pro": {
        "input_per_mtok": 1.25,
        "output_per_mtok": 10.0,
        "tier_threshold_tokens": 200000,
        "tier_input_per_mtok": 2.5,
        "tier_output_per_mtok": 15.0,
        "search_per_k_queries": 35.0
      }
    }
  }
}`

func writeTestTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestModelTableResolvesModels(t *testing.T) {
	table, err := NewModelTable(writeTestTable(t, testTable))
	if err != nil {
		t.Fatalf("NewModelTable() error = %v", err)
	}

	model, err := table.Model("openai", llm.SizeXLarge)
	if err != nil {
		t.Fatalf("Model() error = %v", err)
	}
	if model != "gpt-5" {
		t.Errorf("Model() = %q, want gpt-5", model)
	}
}

func TestModelTableUnknownVendor(t *testing.T) {
	table, err := NewModelTable(writeTestTable(t, testTable))
	if err != nil {
		t.Fatal(err)
	}

	_, err = table.Model("grok", llm.SizeTiny)
	if !errors.Is(err, llm.ErrUnknownVendor) {
		t.Errorf("Model() error = %v, want ErrUnknownVendor", err)
	}
}

func TestModelTableUnknownSize(t *testing.T) {
	table, err := NewModelTable(writeTestTable(t, testTable))
	if err != nil {
		t.Fatal(err)
	}

	// gemini only maps medium in the test table.
	_, err = table.Model("gemini", llm.SizeXLarge)
	if !errors.Is(err, llm.ErrUnknownSize) {
		t.Errorf("Model() error = %v, want ErrUnknownSize", err)
	}
}

func TestModelTablePricing(t *testing.T) {
	table, err := NewModelTable(writeTestTable(t, testTable))
	if err != nil {
		t.Fatal(err)
	}

	pricing, ok := table.Pricing("gemini", "gemini-2.5-pro")
	if !ok {
		t.Fatal("Pricing() ok = false, want true")
	}
	if pricing.TierThresholdTokens != 200000 {
		t.Errorf("TierThresholdTokens = %d, want 200000", pricing.TierThresholdTokens)
	}
	if pricing.SearchPerKQueries != 35.0 {
		t.Errorf("SearchPerKQueries = %v, want 35.0", pricing.SearchPerKQueries)
	}

	if _, ok := table.Pricing("openai", "gpt-5-nano"); ok {
		t.Error("Pricing() for unpriced model should report false")
	}
}

func TestNewModelTableErrors(t *testing.T) {
	if _, err := NewModelTable(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("NewModelTable() with missing file should error")
	}
	if _, err := NewModelTable(writeTestTable(t, "not json")); err == nil {
		t.Error("NewModelTable() with invalid JSON should error")
	}
}
