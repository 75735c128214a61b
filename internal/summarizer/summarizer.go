// Package summarizer produces short article summaries with Gemini, degrading
// to a deterministic text fallback when the model is unavailable.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/baka-byte447/NewsDigest/internal/logger"
	"github.com/baka-byte447/NewsDigest/internal/metrics"
	"github.com/baka-byte447/NewsDigest/internal/ratelimit"
	"github.com/baka-byte447/NewsDigest/internal/retry"
)

// removedSentinel is what the News API puts in place of paywalled content.
const removedSentinel = "[Removed]"

const maxPromptRunes = 6000

type Summarizer struct {
	client    *genai.Client
	model     string
	limiter   *ratelimit.AIRateLimiter
	retryConf retry.Config
}

// New creates a Gemini-backed summarizer. An empty API key yields a
// summarizer that is not Available and always falls back.
func New(ctx context.Context, apiKey, model string, limiter *ratelimit.AIRateLimiter, retryConf retry.Config) (*Summarizer, error) {
	s := &Summarizer{
		model:     model,
		limiter:   limiter,
		retryConf: retryConf,
	}

	if apiKey == "" {
		logger.Warn("Gemini API key not provided - AI summarization disabled")
		return s, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	s.client = client

	logger.Info("Gemini summarizer initialized", "model", model)
	return s, nil
}

func (s *Summarizer) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// Available reports whether the AI path is configured. Callers can still call
// Summarize either way; it never fails.
func (s *Summarizer) Available() bool {
	return s.client != nil
}

// Summarize returns a short summary for the article. It never returns an
// error: when the model is unconfigured, over budget, or the call fails, a
// deterministic fallback string is returned instead.
func (s *Summarizer) Summarize(ctx context.Context, title, description, content string) string {
	if !s.Available() {
		metrics.Global.IncrementSummaryFallbacks()
		return Fallback(title, description)
	}

	if s.limiter != nil && !s.limiter.CanUseGemini() {
		metrics.Global.IncrementSummaryFallbacks()
		return rateLimitFallback(description)
	}

	prompt := buildPrompt(title, description, content)

	var text string
	err := retry.WithRetry(ctx, s.retryConf, func() error {
		out, genErr := s.generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		text = out
		return nil
	})
	if err != nil {
		if isRateLimitError(err) {
			logger.Warn("Gemini rate limit or quota exceeded", "error", err)
			metrics.Global.IncrementSummaryFallbacks()
			return rateLimitFallback(description)
		}
		logger.Error("Error summarizing article", "error", err)
		metrics.Global.IncrementSummaryFallbacks()
		return Fallback(title, description)
	}

	if s.limiter != nil {
		if limitErr := s.limiter.UseGemini(); limitErr != nil {
			logger.Warn("AI budget accounting failed", "error", limitErr)
		}
	}

	metrics.Global.IncrementSummariesGenerated()
	return strings.TrimSpace(text)
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	model := s.client.GenerativeModel(s.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// buildPrompt assembles the article text, skipping the paywall sentinel and
// capping the prompt at a sane size.
func buildPrompt(title, description, content string) string {
	var article strings.Builder
	article.WriteString("Title: " + title + "\n")
	if description != "" {
		article.WriteString("Description: " + description + "\n")
	}
	if content != "" && content != removedSentinel {
		article.WriteString("Content: " + sanitize(content))
	}

	return fmt.Sprintf(`Please provide a concise summary of this news article in 2-3 sentences:

%s

Focus on the key facts and main points.`, article.String())
}

// sanitize collapses whitespace and trims over-long content on a rune
// boundary, preferring a sentence end.
func sanitize(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.Join(strings.Fields(content), " ")

	if utf8.RuneCountInString(content) > maxPromptRunes {
		runes := []rune(content)
		trimmed := string(runes[:maxPromptRunes])
		if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
			trimmed = trimmed[:idx+1]
		}
		content = trimmed + " [TRUNCATED]"
	}

	return content
}

func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate")
}

func rateLimitFallback(description string) string {
	return fmt.Sprintf("AI summary temporarily unavailable (rate limit). Original description: %s", description)
}

// Fallback builds a summary without the AI model: a truncated description,
// the title, or a fixed marker, in that order of preference.
func Fallback(title, description string) string {
	descRunes := []rune(description)
	if len(descRunes) > 50 {
		if len(descRunes) > 100 {
			return string(descRunes[:100]) + "..."
		}
		return description
	}
	if title != "" {
		return fmt.Sprintf("Article about: %s", title)
	}
	return "Summary unavailable"
}
