// browser/dom/xpath.go
package dom

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// GenerateUniqueXPath generates a robust XPath expression for a given node.
// It prioritizes using IDs as anchors for stability and brevity.
func GenerateUniqueXPath(node *html.Node) string {
	if node == nil {
		return ""
	}

	var path []string
	// Traverse up the tree from the node to the root.
	for n := node; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}

		tag := strings.ToLower(n.Data)
		if tag == "" {
			continue
		}

		// An ID anchors the path; everything above it is irrelevant.
		if id := htmlquery.SelectAttr(n, "id"); id != "" {
			path = append(path, fmt.Sprintf(`//*[@id='%s']`, id))
			break
		}

		// 1-based index among same-tag siblings.
		index := 1
		for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
			if prev.Type == html.ElementNode && strings.ToLower(prev.Data) == tag {
				index++
			}
		}

		path = append(path, fmt.Sprintf("%s[%d]", tag, index))
	}

	if len(path) == 0 {
		return "/"
	}

	// The path was collected child-first; reverse it.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	xpath := strings.Join(path, "/")
	// An ID-anchored path is already absolute.
	if !strings.HasPrefix(xpath, "//*[@id=") {
		xpath = "/" + xpath
	}
	return xpath
}
