package fetch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/browser/browsertest"
)

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser(""))
	assert.True(t, ShouldUseBrowser("   Loading...   "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}

func launch(t *testing.T, routes map[string]string) (*browsertest.Launcher, browser.Session) {
	t.Helper()
	l := browsertest.NewLauncher(routes)
	s, err := l.Launch(context.Background(), browser.DefaultOptions())
	require.NoError(t, err)
	return l, s
}

func TestRender(t *testing.T) {
	url := "https://careers.example.com/jobs/1"
	l, s := launch(t, map[string]string{url: `<main><p>Rendered description</p></main>`})

	html, err := Render(context.Background(), s, url, DefaultRenderSettle)
	require.NoError(t, err)
	assert.Contains(t, html, "Rendered description")
	assert.Equal(t, 0, l.OpenPages(), "tab is closed after rendering")

	_, err = Render(context.Background(), s, "https://careers.example.com/missing", DefaultRenderSettle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser rendering failed")
	assert.Equal(t, 0, l.OpenPages())
}
