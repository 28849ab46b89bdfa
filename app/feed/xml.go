package feed

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// matchName compares an element against a name that may carry a namespace
// prefix ("dc:creator"). Plain names match on the local part only.
func matchName(node *xmlquery.Node, name string) bool {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return node.Prefix == name[:i] && node.Data == name[i+1:]
	}
	return node.Data == name
}

// childElement returns the first direct child element with the given name.
func childElement(node *xmlquery.Node, name string) *xmlquery.Node {
	if node == nil {
		return nil
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && matchName(child, name) {
			return child
		}
	}
	return nil
}

// findElement returns the first descendant element with the given name,
// depth-first in document order.
func findElement(node *xmlquery.Node, name string) *xmlquery.Node {
	if node == nil {
		return nil
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			if matchName(child, name) {
				return child
			}
			if found := findElement(child, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// findElements returns all descendant elements with the given name in
// document order.
func findElements(node *xmlquery.Node, name string) []*xmlquery.Node {
	if node == nil {
		return nil
	}
	var found []*xmlquery.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			if matchName(child, name) {
				found = append(found, child)
			}
			found = append(found, findElements(child, name)...)
		}
	}
	return found
}

// elementText concatenates the text and CDATA children of an element.
func elementText(node *xmlquery.Node) string {
	if node == nil {
		return ""
	}
	var sb strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			sb.WriteString(child.Data)
		}
	}
	return sb.String()
}

func attrValue(node *xmlquery.Node, name string) string {
	if node == nil {
		return ""
	}
	for _, attr := range node.Attr {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}
