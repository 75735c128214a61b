// Package ratelimit caps daily usage of the paid AI services so a busy day
// cannot burn through the Gemini quota.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/baka-byte447/NewsDigest/internal/logger"
)

// AIRateLimiter tracks per-day AI request budgets.
type AIRateLimiter struct {
	mu          sync.Mutex
	geminiCount int
	openaiCount int
	totalCount  int
	maxGemini   int
	maxOpenAI   int
	maxTotal    int
	resetTime   time.Time
}

// New creates a rate limiter with the given daily limits (0 = unlimited).
func New(maxGemini, maxOpenAI, maxTotal int) *AIRateLimiter {
	return &AIRateLimiter{
		maxGemini: maxGemini,
		maxOpenAI: maxOpenAI,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour), // Reset daily
	}
}

// CanUseGemini checks if we can make a Gemini request.
func (rl *AIRateLimiter) CanUseGemini() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		logger.Warn("Gemini rate limit reached", "used", rl.geminiCount, "limit", rl.maxGemini)
		return false
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		logger.Warn("Total AI rate limit reached", "used", rl.totalCount, "limit", rl.maxTotal)
		return false
	}

	return true
}

// UseGemini increments the Gemini counter.
func (rl *AIRateLimiter) UseGemini() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		return fmt.Errorf("gemini rate limit exceeded")
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	rl.geminiCount++
	rl.totalCount++

	return nil
}

// CanUseOpenAI checks if we can make an OpenAI request.
func (rl *AIRateLimiter) CanUseOpenAI() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxOpenAI > 0 && rl.openaiCount >= rl.maxOpenAI {
		logger.Warn("OpenAI rate limit reached", "used", rl.openaiCount, "limit", rl.maxOpenAI)
		return false
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return false
	}

	return true
}

// UseOpenAI increments the OpenAI counter.
func (rl *AIRateLimiter) UseOpenAI() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxOpenAI > 0 && rl.openaiCount >= rl.maxOpenAI {
		return fmt.Errorf("openai rate limit exceeded")
	}

	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	rl.openaiCount++
	rl.totalCount++

	return nil
}

// GetStats returns current rate limiter statistics.
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":  rl.geminiCount,
		"gemini_limit": rl.maxGemini,
		"openai_used":  rl.openaiCount,
		"openai_limit": rl.maxOpenAI,
		"total_used":   rl.totalCount,
		"total_limit":  rl.maxTotal,
		"reset_time":   rl.resetTime,
	}
}

// checkReset resets counters if reset time has passed.
func (rl *AIRateLimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		logger.Info("Resetting AI rate limiter counters")
		rl.geminiCount = 0
		rl.openaiCount = 0
		rl.totalCount = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
