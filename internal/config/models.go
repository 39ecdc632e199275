package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ai-coverletter-be/internal/pkg/logger"
	"ai-coverletter-be/pkg/llm"

	"github.com/fsnotify/fsnotify"
)

// VendorModels is one vendor's entry in the model table: the size-to-model
// mapping plus the rate card per concrete model.
type VendorModels struct {
	Models  map[string]string      `json:"models"`
	Pricing map[string]llm.Pricing `json:"pricing"`
}

// ModelTable maps (vendor, size) to concrete model ids and carries pricing.
// The table is loaded from a JSON file and hot-reloaded on change, so model
// rollouts and price updates never need a restart. Implements
// llm.ModelResolver.
type ModelTable struct {
	path string

	mu      sync.RWMutex
	vendors map[string]VendorModels
}

func NewModelTable(path string) (*ModelTable, error) {
	t := &ModelTable{path: path}
	if err := t.load(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *ModelTable) load() error {
	data, err := os.ReadFile(t.path)
	if err != nil {
		return fmt.Errorf("failed to read model table %s: %w", t.path, err)
	}

	var vendors map[string]VendorModels
	if err := json.Unmarshal(data, &vendors); err != nil {
		return fmt.Errorf("failed to parse model table %s: %w", t.path, err)
	}

	t.mu.Lock()
	t.vendors = vendors
	t.mu.Unlock()
	return nil
}

// Model resolves the concrete model id for a vendor and logical size.
func (t *ModelTable) Model(vendor string, size llm.Size) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.vendors[vendor]
	if !ok {
		return "", fmt.Errorf("vendor %q: %w", vendor, llm.ErrUnknownVendor)
	}
	model, ok := entry.Models[string(size)]
	if !ok {
		return "", fmt.Errorf("vendor %q size %q: %w", vendor, size, llm.ErrUnknownSize)
	}
	return model, nil
}

// Pricing returns the rate card for a concrete model.
func (t *ModelTable) Pricing(vendor, model string) (llm.Pricing, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.vendors[vendor]
	if !ok {
		return llm.Pricing{}, false
	}
	pricing, ok := entry.Pricing[model]
	return pricing, ok
}

// Vendors returns the vendor keys present in the table.
func (t *ModelTable) Vendors() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.vendors))
	for k := range t.vendors {
		keys = append(keys, k)
	}
	return keys
}

// Watch reloads the table whenever the file changes. It blocks until the
// watcher fails or is closed, so run it in its own goroutine. Editors often
// replace files instead of writing in place, so the parent directory is
// watched and events are filtered by name.
func (t *ModelTable) Watch(log logger.ILogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(t.path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := t.load(); err != nil {
				// Keep serving the last good table.
				log.Error("config", "model table reload failed", map[string]interface{}{
					"path":  t.path,
					"error": err.Error(),
				})
				continue
			}
			log.Info("config", "model table reloaded", map[string]interface{}{
				"path": t.path,
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("config", "model table watcher error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
