// internal/browser/state_test.go
package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbenkov/aviator/internal/browser/dom"
)

func TestStateLocator(t *testing.T) {
	state := &State{
		IndexMap: map[int]string{
			1: "//*[@id='submit']",
			2: "/html/body/div[1]/a[1]",
		},
	}

	locator, err := state.Locator(2)
	require.NoError(t, err)
	assert.Equal(t, "/html/body/div[1]/a[1]", locator)

	_, err = state.Locator(7)
	var notFound *ElementNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 7, notFound.Index)
}

func TestStateDescribeElements(t *testing.T) {
	state := &State{
		Items: []dom.ElementDescriptor{
			{Index: 1, Tag: "a", Attributes: map[string]string{"href": "/docs"}, Text: "Docs"},
			{Index: 2, Tag: "button", Attributes: map[string]string{"id": "submit"}, Text: "Sign in"},
		},
	}

	assert.Equal(t, "[1] <a href=\"/docs\">Docs</a>\n[2] <button id=\"submit\">Sign in</button>", state.DescribeElements())
}

func TestStateDescribeElementsEmpty(t *testing.T) {
	assert.Empty(t, (&State{}).DescribeElements())
}
