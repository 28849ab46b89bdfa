package feed

import (
	"bytes"
	"log/slog"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/araddon/dateparse"
)

// Document is a parsed RSS or Atom feed: its kind, channel metadata, the
// namespace prefixes declared on the root element, and the underlying tree.
type Document struct {
	Kind       Kind
	Metadata   Metadata
	Namespaces map[string]string

	root *xmlquery.Node
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse detects the feed kind and extracts channel metadata. Input that is
// neither RSS (root or direct child `rss`) nor Atom (`feed`) yields an
// UnknownFeedTypeError.
func (p *Parser) Parse(data []byte, source string) (*Document, error) {
	tree, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &UnknownFeedTypeError{Source: source, Reason: err.Error()}
	}

	if root := detectRoot(tree, "rss"); root != nil {
		channel := findElement(root, "channel")
		if channel == nil {
			return nil, &UnknownFeedTypeError{Source: source, Reason: "rss document has no channel"}
		}
		return &Document{
			Kind: KindRSS,
			Metadata: Metadata{
				Title:       elementText(findElement(channel, "title")),
				Description: elementText(findElement(channel, "description")),
				Link:        elementText(childElement(channel, "link")),
			},
			Namespaces: namespaces(root),
			root:       root,
		}, nil
	}

	if root := detectRoot(tree, "feed"); root != nil {
		description := elementText(childElement(root, "description"))
		if description == "" {
			description = elementText(childElement(root, "subtitle"))
		}
		return &Document{
			Kind: KindAtom,
			Metadata: Metadata{
				Title:       elementText(childElement(root, "title")),
				Description: description,
				Link:        atomLink(root, "alternate"),
			},
			Namespaces: namespaces(root),
			root:       root,
		}, nil
	}

	return nil, &UnknownFeedTypeError{Source: source, Reason: "document is neither rss nor atom"}
}

// detectRoot matches the document's root element or one of its direct
// children against the expected feed root name.
func detectRoot(tree *xmlquery.Node, name string) *xmlquery.Node {
	for node := tree.FirstChild; node != nil; node = node.NextSibling {
		if node.Type != xmlquery.ElementNode {
			continue
		}
		if matchName(node, name) {
			return node
		}
		if child := childElement(node, name); child != nil {
			return child
		}
	}
	return nil
}

// Entries extracts the document's entries keyed by link. Entries without a
// link or without a parseable publish date are dropped with a warning.
func (p *Parser) Entries(doc *Document) map[string]*Entry {
	entries := make(map[string]*Entry)

	var items []*xmlquery.Node
	switch doc.Kind {
	case KindAtom:
		items = findElements(doc.root, "entry")
	default:
		channel := findElement(doc.root, "channel")
		if channel == nil {
			return entries
		}
		items = findElements(channel, "item")
	}

	for _, item := range items {
		var link string
		if doc.Kind == KindAtom {
			link = atomLink(item, "alternate")
		} else {
			link = strings.TrimSpace(elementText(childElement(item, "link")))
		}
		if link == "" {
			slog.Warn("Dropping entry without a link", "title", elementText(findElement(item, "title")))
			continue
		}

		entry, err := p.newEntry(doc.Kind, item, link)
		if err != nil {
			slog.Warn("Dropping entry with unparseable publish date", "link", link, "error", err)
			continue
		}
		entries[link] = entry
	}

	return entries
}

func (p *Parser) newEntry(kind Kind, item *xmlquery.Node, link string) (*Entry, error) {
	created, err := publishDate(item)
	if err != nil {
		return nil, err
	}

	return &Entry{
		Link:        link,
		Title:       strings.TrimSpace(elementText(findElement(item, "title"))),
		Author:      author(item),
		Created:     created.UTC(),
		Categories:  categories(item),
		Description: description(kind, item),
		RawXML:      item.OutputXML(true),
	}, nil
}

// publishDate reads `published`, falling back to `pubDate`, and parses it
// permissively.
func publishDate(item *xmlquery.Node) (time.Time, error) {
	node := findElement(item, "published")
	if node == nil {
		node = findElement(item, "pubDate")
	}
	return dateparse.ParseAny(strings.TrimSpace(elementText(node)))
}

// author prefers dc:creator over the name child of an author element.
func author(item *xmlquery.Node) string {
	if creator := findElement(item, "dc:creator"); creator != nil {
		return strings.TrimSpace(elementText(creator))
	}
	return strings.TrimSpace(elementText(findElement(findElement(item, "author"), "name")))
}

// categories preserves feed order; the term attribute wins over element text
// and exact duplicates are dropped.
func categories(item *xmlquery.Node) []string {
	var cats []string
	seen := make(map[string]bool)
	for _, node := range findElements(item, "category") {
		cat := attrValue(node, "term")
		if cat == "" {
			cat = strings.TrimSpace(elementText(node))
		}
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		cats = append(cats, cat)
	}
	return cats
}

func description(kind Kind, item *xmlquery.Node) string {
	if kind == KindAtom {
		if content := findElement(item, "content"); content != nil {
			return elementText(content)
		}
		return elementText(findElement(item, "summary"))
	}
	return elementText(findElement(item, "description"))
}

// atomLink picks the child link with the requested rel, falling back to the
// first link child, and returns its href.
func atomLink(node *xmlquery.Node, rel string) string {
	var links []*xmlquery.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == "link" {
			links = append(links, child)
		}
	}
	if len(links) == 0 {
		return ""
	}
	link := links[0]
	for _, l := range links {
		if attrValue(l, "rel") == rel {
			link = l
			break
		}
	}
	return attrValue(link, "href")
}

// namespaces collects the xmlns: prefix declarations of an element.
func namespaces(node *xmlquery.Node) map[string]string {
	ns := make(map[string]string)
	for _, attr := range node.Attr {
		if attr.Name.Space == "xmlns" {
			ns[attr.Name.Local] = attr.Value
		}
	}
	return ns
}
