package feed

import (
	"bytes"
	"log/slog"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// Extractor distills the main readable body out of an article page.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article's main content as an HTML fragment. Anything
// unusable (empty page, readability failure, no content) surfaces as an
// ExtractionError.
func (e *Extractor) Extract(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", &ExtractionError{URL: pageURL, Reason: "page is empty"}
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", &ExtractionError{URL: pageURL, Reason: err.Error()}
	}

	article, err := readability.FromReader(bytes.NewReader(data), parsed)
	if err != nil {
		return "", &ExtractionError{URL: pageURL, Reason: err.Error()}
	}
	if article.Content == "" {
		return "", &ExtractionError{URL: pageURL, Reason: "no content extracted"}
	}

	slog.Debug("Content extracted", "url", pageURL, "content_length", len(article.Content))

	return article.Content, nil
}
