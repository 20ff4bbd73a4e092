// internal/browser/state.go
package browser

import (
	"strings"

	"github.com/sbenkov/aviator/internal/browser/dom"
)

// State is an immutable snapshot of one page observation: the URL and title
// at snapshot time plus the index map produced by a single indexing pass.
// Indices are only meaningful against the snapshot that minted them; after
// any page mutation the caller must take a fresh snapshot.
type State struct {
	URL      string
	Title    string
	IndexMap map[int]string
	Items    []dom.ElementDescriptor
}

// Locator resolves an element index to the XPath recorded at snapshot time.
// An index absent from the map yields *ElementNotFoundError without any
// browser interaction.
func (s *State) Locator(index int) (string, error) {
	locator, ok := s.IndexMap[index]
	if !ok {
		return "", &ElementNotFoundError{Index: index}
	}
	return locator, nil
}

// DescribeElements renders the indexed elements one per line, in index
// order, in the compact form an agent prompt consumes.
func (s *State) DescribeElements() string {
	var b strings.Builder
	for i, item := range s.Items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(item.String())
	}
	return b.String()
}
