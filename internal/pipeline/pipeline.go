// Package pipeline turns raw fetch results into the normalized article shape
// served by the API, attaching summaries and translations when requested.
package pipeline

import (
	"context"

	"github.com/baka-byte447/NewsDigest/internal/metrics"
	"github.com/baka-byte447/NewsDigest/internal/newsclient"
)

// Article is the processed record served to clients. Field names match the
// public API contract; the mixed snake/camel translated_* names are part of
// that contract.
type Article struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	URL              string  `json:"url"`
	URLToImage       *string `json:"urlToImage"`
	PublishedAt      string  `json:"publishedAt"`
	Source           string  `json:"source"`
	Content          string  `json:"content"`
	OriginalLanguage string  `json:"originalLanguage"`

	Summary               string `json:"summary,omitempty"`
	TranslatedTitle       string `json:"translated_title,omitempty"`
	TranslatedDescription string `json:"translatedDescription,omitempty"`
	TranslatedSummary     string `json:"translated_summary,omitempty"`
}

// Result is the processed counterpart of a fetch result.
type Result struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Message      string    `json:"message,omitempty"`
}

// Summarizer is the optional AI summary capability.
type Summarizer interface {
	Available() bool
	Summarize(ctx context.Context, title, description, content string) string
}

// Translator is the optional translation capability. A nil Translator means
// the feature is unconfigured.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// Options controls per-request processing.
type Options struct {
	Summarize bool
	// TranslateTo is an ISO language code; empty or "en" disables translation.
	TranslateTo string
	// SourceLanguage is the language the articles were fetched in. Recorded
	// as originalLanguage on every article and never changed by translation.
	SourceLanguage string
}

type Processor struct {
	summarizer Summarizer
	translator Translator
}

func New(summarizer Summarizer, translator Translator) *Processor {
	return &Processor{
		summarizer: summarizer,
		translator: translator,
	}
}

// Process normalizes every raw article, preserving order, and conditionally
// attaches summaries and translations. Error results pass through unchanged;
// per-article summarize/translate failures are absorbed by the clients and
// never abort processing.
func (p *Processor) Process(ctx context.Context, input newsclient.Result, opts Options) Result {
	if input.Status == newsclient.StatusError {
		return Result{
			Status:  newsclient.StatusError,
			Message: input.Message,
		}
	}

	sourceLang := opts.SourceLanguage
	if sourceLang == "" {
		sourceLang = "en"
	}

	translate := p.translator != nil && opts.TranslateTo != "" && opts.TranslateTo != "en"

	articles := make([]Article, 0, len(input.Articles))
	for _, raw := range input.Articles {
		article := normalize(raw, sourceLang)

		if opts.Summarize && article.Title != "" && p.summarizer != nil {
			article.Summary = p.summarizer.Summarize(ctx, article.Title, article.Description, article.Content)
		}

		if translate {
			article.TranslatedTitle = p.translator.Translate(ctx, article.Title, opts.TranslateTo)
			article.TranslatedDescription = p.translator.Translate(ctx, article.Description, opts.TranslateTo)
			if article.Summary != "" {
				article.TranslatedSummary = p.translator.Translate(ctx, article.Summary, opts.TranslateTo)
			}
		}

		articles = append(articles, article)
	}

	metrics.Global.AddArticlesProcessed(len(articles))

	total := input.TotalResults
	if total == 0 {
		total = len(articles)
	}

	return Result{
		Status:       newsclient.StatusOK,
		TotalResults: total,
		Articles:     articles,
	}
}

func normalize(raw newsclient.RawArticle, sourceLang string) Article {
	source := raw.Source.Name
	if source == "" {
		source = "Unknown"
	}

	return Article{
		ID:               raw.URL, // Use URL as ID for now
		Title:            raw.Title,
		Description:      raw.Description,
		URL:              raw.URL,
		URLToImage:       raw.URLToImage,
		PublishedAt:      raw.PublishedAt,
		Source:           source,
		Content:          raw.Content,
		OriginalLanguage: sourceLang,
	}
}
