package newsclient

// Source is the nested source object of the News API article shape.
type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// RawArticle mirrors the article shape returned by the News API. Fields may
// be null upstream; the pipeline owns defaulting.
type RawArticle struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
	Content     string  `json:"content"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the outcome of a fetch. Callers must check Status before reading
// Articles; a failed upstream call yields Status "error" with a Message, never
// a Go error.
type Result struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []RawArticle `json:"articles"`
	Message      string       `json:"message,omitempty"`
}

// ErrorResult builds an error-status result with no articles.
func ErrorResult(message string) Result {
	return Result{Status: StatusError, Message: message}
}
