package services

import (
	"sync"

	"studymixer-backend/internal/models"
)

// ResultHolder is the process-wide latest-result slot. It is reset at the
// start of each generation cycle and populated on completion, success or
// failure. Modeled as an explicit object so the pipeline stays testable
// without any UI layer.
type ResultHolder struct {
	mu      sync.RWMutex
	current *models.GenerationResult
}

func NewResultHolder() *ResultHolder {
	return &ResultHolder{}
}

// Reset clears the slot at the start of a new cycle.
func (h *ResultHolder) Reset() {
	h.mu.Lock()
	h.current = nil
	h.mu.Unlock()
}

func (h *ResultHolder) Set(result models.GenerationResult) {
	h.mu.Lock()
	h.current = &result
	h.mu.Unlock()
}

// Get returns the latest result and whether one exists.
func (h *ResultHolder) Get() (models.GenerationResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return models.GenerationResult{}, false
	}
	return *h.current, true
}
