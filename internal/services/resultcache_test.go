package services

import (
	"context"
	"testing"

	"studymixer-backend/internal/models"
)

func TestCacheKey_Deterministic(t *testing.T) {
	data := []byte("same document bytes")
	opts := models.GenerationOptions{Difficulty: "standard", Format: "qa", Focus: "key dates"}

	if CacheKey(data, opts) != CacheKey(data, opts) {
		t.Error("Expected identical keys for identical input")
	}
}

func TestCacheKey_VariesWithInput(t *testing.T) {
	data := []byte("document bytes")
	base := models.GenerationOptions{Difficulty: "standard", Format: "qa"}

	baseKey := CacheKey(data, base)

	variants := []models.GenerationOptions{
		{Difficulty: "hard", Format: "qa"},
		{Difficulty: "standard", Format: "essay"},
		{Difficulty: "standard", Format: "qa", Focus: "something"},
	}
	for _, v := range variants {
		if CacheKey(data, v) == baseKey {
			t.Errorf("Expected key to change for options %+v", v)
		}
	}

	if CacheKey([]byte("other bytes"), base) == baseKey {
		t.Error("Expected key to change with document bytes")
	}
}

func TestResultCache_NilIsNoop(t *testing.T) {
	var c *ResultCache

	if _, ok := c.Get(context.Background(), "any"); ok {
		t.Error("Expected nil cache to miss")
	}
	// Must not panic.
	c.Set(context.Background(), "any", models.GenerationResult{Text: "x"})
}
