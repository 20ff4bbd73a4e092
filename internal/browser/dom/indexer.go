// browser/dom/indexer.go
package dom

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const maxTextLength = 64

// candidateRoles are the ARIA roles treated as interactable.
var candidateRoles = map[string]bool{
	"button":   true,
	"link":     true,
	"tab":      true,
	"menuitem": true,
	"checkbox": true,
	"radio":    true,
}

// Indexer builds the index -> locator map one snapshot at a time from raw
// page source. It never touches the live page; filtering is attribute-based,
// and live interactability is the action executor's problem.
type Indexer struct {
	logger *zap.Logger
}

// NewIndexer creates an indexer.
func NewIndexer(logger *zap.Logger) *Indexer {
	return &Indexer{logger: logger.Named("indexer")}
}

// ClickableElements parses the page source and returns every interactable
// candidate with a dense integer index and a unique XPath locator, in
// document order. Indices are stable only for this single pass.
func (ix *Indexer) ClickableElements(r io.Reader) (*IndexResult, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page source: %w", err)
	}

	result := &IndexResult{
		IndexMap: make(map[int]string),
	}

	// A single depth-first walk keeps indices in document order. An XPath
	// union would return matches grouped per branch, scrambling the order
	// an agent sees elements on the page.
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			attrs := attributeMap(n)
			if isCandidate(tag, attrs) && !skipCandidate(n, attrs) {
				ix.appendElement(result, n, tag, attrs)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	ix.logger.Debug("Indexed clickable elements.", zap.Int("count", len(result.Items)))
	return result, nil
}

func (ix *Indexer) appendElement(result *IndexResult, node *html.Node, tag string, attrs map[string]string) {
	xpath := GenerateUniqueXPath(node)
	if xpath == "" || xpath == "/" {
		ix.logger.Warn("Could not generate a locator for candidate element.", zap.String("tag", tag))
		return
	}

	index := len(result.Items)
	result.IndexMap[index] = xpath
	result.Items = append(result.Items, ElementDescriptor{
		Index:      index,
		Tag:        tag,
		Attributes: attrs,
		Text:       elementText(node),
		XPath:      xpath,
	})
}

// isCandidate reports whether the element is interactable by nature: an
// anchor with a target, a form control, or anything click-wired through
// onclick, contenteditable or an interactive ARIA role.
func isCandidate(tag string, attrs map[string]string) bool {
	switch tag {
	case "a":
		if _, ok := attrs["href"]; ok {
			return true
		}
	case "button", "input", "textarea", "select", "summary":
		return true
	}
	if _, ok := attrs["onclick"]; ok {
		return true
	}
	if attrs["contenteditable"] == "true" {
		return true
	}
	return candidateRoles[attrs["role"]]
}

// skipCandidate filters out elements that cannot be interacted with based on
// their attributes alone.
func skipCandidate(node *html.Node, attrs map[string]string) bool {
	tag := strings.ToLower(node.Data)
	if tag == "html" || tag == "body" {
		return true
	}
	if _, disabled := attrs["disabled"]; disabled {
		return true
	}
	if attrs["aria-disabled"] == "true" {
		return true
	}
	if _, hidden := attrs["hidden"]; hidden {
		return true
	}
	if tag == "input" {
		if strings.ToLower(attrs["type"]) == "hidden" {
			return true
		}
	}
	if isTextEntry(tag, attrs) {
		if _, readonly := attrs["readonly"]; readonly {
			return true
		}
	}
	style := strings.ReplaceAll(strings.ToLower(attrs["style"]), " ", "")
	if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
		return true
	}
	return false
}

// isTextEntry reports whether the element accepts typed text rather than a
// click.
func isTextEntry(tag string, attrs map[string]string) bool {
	switch tag {
	case "textarea":
		return true
	case "input":
		switch strings.ToLower(attrs["type"]) {
		case "hidden", "submit", "button", "reset", "image", "checkbox", "radio", "file":
			return false
		default:
			return true
		}
	}
	return attrs["contenteditable"] == "true"
}

func attributeMap(node *html.Node) map[string]string {
	attrs := make(map[string]string, len(node.Attr))
	for _, a := range node.Attr {
		attrs[a.Key] = a.Val
	}
	return attrs
}

// elementText extracts trimmed, whitespace-collapsed inner text, truncated
// for display on a rune boundary.
func elementText(node *html.Node) string {
	text := strings.Join(strings.Fields(htmlquery.InnerText(node)), " ")
	if utf8.RuneCountInString(text) > maxTextLength {
		runes := []rune(text)
		text = string(runes[:maxTextLength]) + "..."
	}
	return text
}
