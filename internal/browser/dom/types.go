// browser/dom/types.go
package dom

import (
	"fmt"
	"sort"
	"strings"
)

// ElementDescriptor carries the metadata an agent needs to reason about an
// indexed element. The XPath locator is what action execution resolves; the
// rest is display material.
type ElementDescriptor struct {
	Index      int               `json:"index"`
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes"`
	Text       string            `json:"text"`
	XPath      string            `json:"xpath"`
}

// String renders the descriptor in the compact form agents are shown,
// e.g. `[3] <button id="submit">Submit</button>`.
func (d ElementDescriptor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] <%s", d.Index, d.Tag)

	keys := make([]string, 0, len(d.Attributes))
	for k := range d.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isDisplayAttribute(k) {
			fmt.Fprintf(&sb, " %s=%q", k, d.Attributes[k])
		}
	}
	sb.WriteString(">")
	sb.WriteString(d.Text)
	fmt.Fprintf(&sb, "</%s>", d.Tag)
	return sb.String()
}

// isDisplayAttribute limits descriptor rendering to attributes that help an
// agent identify the element, keeping the listing readable.
func isDisplayAttribute(name string) bool {
	switch name {
	case "id", "name", "type", "href", "role", "placeholder", "value", "title", "aria-label", "alt":
		return true
	}
	return false
}

// IndexResult is the output of one indexing pass: a dense index -> locator
// map plus descriptors in document order. Indices are only meaningful within
// the pass that produced them.
type IndexResult struct {
	IndexMap map[int]string
	Items    []ElementDescriptor
}
