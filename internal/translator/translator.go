// Package translator translates article text, falling back to the original
// text whenever the configured backends fail.
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/baka-byte447/NewsDigest/internal/logger"
	"github.com/baka-byte447/NewsDigest/internal/metrics"
)

const defaultEndpoint = "https://translate.googleapis.com/translate_a/single"

const maxTranslateRunes = 4000

type Translator struct {
	endpoint     string
	openaiClient *openai.Client
	httpClient   *http.Client
}

// New creates a translator. translateKey gates the feature: callers should
// pass nil translators through untouched, so an unconfigured backend is
// visible at the type level instead of hidden behind silent no-ops.
func New(translateKey, openaiKey string, timeout time.Duration) *Translator {
	if translateKey == "" {
		logger.Warn("Google Translate key not provided - translation disabled")
		return nil
	}

	t := &Translator{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
	if openaiKey != "" {
		t.openaiClient = openai.NewClient(openaiKey)
	}

	logger.Info("Translator initialized", "openai_fallback", t.openaiClient != nil)
	return t
}

// SetEndpoint overrides the Google Translate endpoint, used by tests.
func (t *Translator) SetEndpoint(endpoint string) {
	t.endpoint = endpoint
}

// Translate converts text into the target language. Any failure returns the
// input unchanged; callers cannot tell "translated to same text" from
// "translation skipped", which is the intended degradation.
func (t *Translator) Translate(ctx context.Context, text, target string) string {
	if text == "" || target == "" || target == "en" {
		return text
	}

	original := text
	if runes := []rune(text); len(runes) > maxTranslateRunes {
		text = string(runes[:maxTranslateRunes])
	}

	// First try the Google Translate endpoint
	result, err := t.translateWithGoogle(ctx, text, target)
	if err == nil && result != "" {
		metrics.Global.IncrementTranslationsApplied()
		return result
	}
	logger.Warn("Google Translate failed", "target", target, "error", err)

	// Then try OpenAI, if configured
	if t.openaiClient != nil {
		result, err = t.translateWithOpenAI(ctx, text, target)
		if err == nil && result != "" {
			metrics.Global.IncrementTranslationsApplied()
			return result
		}
		logger.Warn("OpenAI translation failed", "target", target, "error", err)
	}

	metrics.Global.IncrementTranslationFailures()
	return original
}

func (t *Translator) translateWithGoogle(ctx context.Context, text, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto") // source language: detect
	params.Set("tl", target) // target language
	params.Set("dt", "t")    // return translations
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	return parseGoogleResponse(body)
}

// parseGoogleResponse unpacks the nested-array response of the gtx endpoint:
// the first element holds segment arrays whose first element is the
// translated text.
func parseGoogleResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}

	if len(response) == 0 {
		return "", errors.New("empty response from translate API")
	}

	segments, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, segment := range segments {
		if parts, ok := segment.([]interface{}); ok && len(parts) > 0 {
			if translated, ok := parts[0].(string); ok {
				result.WriteString(translated)
			}
		}
	}

	if result.Len() == 0 {
		return "", errors.New("no translation segments in response")
	}
	return result.String(), nil
}

func (t *Translator) translateWithOpenAI(ctx context.Context, text, target string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following news text to the language with ISO code %q.
Keep the meaning, tone and journalistic style of the original.
Translate only the text itself, without additional comments.

Text to translate:
%s`, target, text)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := t.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: 2000,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
