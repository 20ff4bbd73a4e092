// internal/browser/content.go
package browser

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// extractText reduces a page's HTML to its visible text: script, style and
// other non-rendered subtrees are dropped, and whitespace is collapsed so
// the result reads as prose an agent can consume.
func extractText(pageHTML string) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("parsing page content: %w", err)
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style", "noscript", "template", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " "), nil
}
