package news

import (
	"errors"
	"fmt"
	"strings"
)

// RawArticle is one headline as delivered by a feed source. Absent fields are
// empty strings. The JSON shape follows the NewsAPI article object.
type RawArticle struct {
	Source      Source `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	ImageURL    string `json:"urlToImage"`
}

type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Status string

const (
	StatusOK                  Status = "ok"
	StatusInsufficientContent Status = "insufficient_content"
	StatusError               Status = "error"
)

// Record is the normalized, displayable result for one RawArticle.
type Record struct {
	Title    string `json:"title"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	ImageURL string `json:"image_url,omitempty"`
	Status   Status `json:"status"`
}

const (
	PlaceholderSource = "[Source Unavailable]"
	PlaceholderTitle  = "[Title Unavailable]"
	PlaceholderURL    = "#"

	SummaryContentUnavailable = "Content unavailable for this article."
	SummaryGenerationFailed   = "Unable to generate summary due to an error. Please refer to the original article for information."
	summaryDegenerateFormat   = "Summary unavailable. Please read the full article at: %s"
	summaryProcessingFormat   = "Error processing article: %s"
)

// ErrInsufficientContent marks an article too thin to summarize.
var ErrInsufficientContent = errors.New("insufficient content")

var Categories = []string{
	"business", "entertainment", "general", "health",
	"science", "sports", "technology",
}

var Languages = []string{"English", "Spanish", "French", "German", "Chinese", "Hindi", "Arabic"}

// ParseCategory returns the canonical category name.
func ParseCategory(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if c == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseLanguage returns the canonical language name, matching case-insensitively.
func ParseLanguage(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(l, s) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q", s)
}
