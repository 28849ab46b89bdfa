package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
)

// GeneratorName is emitted in the feed's generator element.
const GeneratorName = "history4feed (https://github.com/mohamedmoataz-oacc/history4feed)"

// Generator synthesizes the canonical RSS 2.0 output document.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run builds the output feed. Entries must already be ordered; namespace
// prefixes collected from the source documents are re-declared on the root
// element so prefixed markup inside retained bodies stays well-formed.
func (g *Generator) Run(meta Metadata, namespaces map[string]string, entries []*Entry, pretty bool) string {
	w := newXMLWriter(pretty)

	w.raw(0, `<?xml version="1.0" encoding="UTF-8"?>`)
	w.raw(0, g.rootElement(namespaces))
	w.raw(1, "<channel>")

	w.element(2, "title", meta.Title)
	w.element(2, "description", meta.Description)
	w.element(2, "link", meta.Link)
	w.element(2, "lastBuildDate", time.Now().UTC().Format(time.RFC3339))
	w.element(2, "generator", GeneratorName)

	for _, entry := range entries {
		g.writeItem(w, entry)
	}

	w.raw(1, "</channel>")
	w.raw(0, "</rss>")

	return w.String()
}

func (g *Generator) rootElement(namespaces map[string]string) string {
	var sb strings.Builder
	sb.WriteString(`<rss version="2.0"`)

	prefixes := make([]string, 0, len(namespaces))
	for prefix := range namespaces {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	for _, prefix := range prefixes {
		sb.WriteString(fmt.Sprintf(` xmlns:%s="%s"`, prefix, html.EscapeString(namespaces[prefix])))
	}

	sb.WriteString(">")
	return sb.String()
}

func (g *Generator) writeItem(w *xmlWriter, entry *Entry) {
	w.raw(2, "<item>")

	w.element(3, "title", entry.Title)

	// The link is carried both as element text and as an href attribute for
	// downstream compatibility.
	var link bytes.Buffer
	link.WriteString(fmt.Sprintf(`<link href="%s">`, html.EscapeString(entry.Link)))
	xml.EscapeText(&link, []byte(entry.Link))
	link.WriteString("</link>")
	w.raw(3, link.String())

	w.element(3, "pubDate", entry.Created.UTC().Format(time.RFC3339))

	w.raw(3, fmt.Sprintf(`<description type="html"><![CDATA[%s]]></description>`, escapeCDATA(entry.Description)))

	for _, category := range entry.Categories {
		w.element(3, "category", category)
	}

	if entry.Author != "" {
		w.raw(3, "<author>")
		w.element(4, "name", entry.Author)
		w.raw(3, "</author>")
	}

	w.raw(2, "</item>")
}

// escapeCDATA splits any `]]>` occurring in the body across two CDATA
// sections so the enclosing section cannot be terminated early.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

type xmlWriter struct {
	buf    bytes.Buffer
	pretty bool
}

func newXMLWriter(pretty bool) *xmlWriter {
	return &xmlWriter{pretty: pretty}
}

func (w *xmlWriter) raw(indent int, s string) {
	if w.pretty {
		for i := 0; i < indent*2; i++ {
			w.buf.WriteByte(' ')
		}
	}
	w.buf.WriteString(s)
	if w.pretty {
		w.buf.WriteByte('\n')
	}
}

func (w *xmlWriter) element(indent int, tag, content string) {
	var sb bytes.Buffer
	sb.WriteString("<")
	sb.WriteString(tag)
	sb.WriteString(">")
	xml.EscapeText(&sb, []byte(content))
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteString(">")
	w.raw(indent, sb.String())
}

func (w *xmlWriter) String() string {
	return w.buf.String()
}
