package feed

import (
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample Article</title></head>
<body>
  <nav><a href="/">Home</a> | <a href="/about">About</a></nav>
  <article>
    <h1>Sample Article</h1>
    <p>This is the first paragraph of the article body. It carries enough
    prose to be recognized as the main content of the page rather than
    navigation or boilerplate text surrounding it.</p>
    <p>This is the second paragraph, continuing the article with more
    sentences so the readability heuristics have something substantial to
    score and keep in the extracted output.</p>
  </article>
  <footer>Copyright 2023</footer>
</body>
</html>`

func TestExtract(t *testing.T) {
	content, err := NewExtractor().Extract([]byte(samplePage), "https://example.com/sample")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(content, "first paragraph of the article body") {
		t.Errorf("Expected extracted content to contain the article text, got: %q", content)
	}
	if strings.Contains(content, "Copyright 2023") {
		t.Error("Expected boilerplate footer to be stripped")
	}
}

func TestExtractEmptyPage(t *testing.T) {
	_, err := NewExtractor().Extract(nil, "https://example.com/empty")
	if err == nil {
		t.Fatal("Expected an error for an empty page")
	}
	if _, ok := err.(*ExtractionError); !ok {
		t.Errorf("Expected ExtractionError, got: %T", err)
	}
}

func TestExtractErrorMessage(t *testing.T) {
	err := &ExtractionError{URL: "https://example.com/x", Reason: "no content extracted"}
	if !strings.Contains(err.Error(), "https://example.com/x") {
		t.Errorf("Expected error message to name the URL, got: %q", err.Error())
	}
}
