package view

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestRenderFromFallback(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"templates/Hello.html": {Data: []byte("<h1>{{.Name}}</h1>")},
	})

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "Hello.html", map[string]string{"Name": "world"}))
	require.Equal(t, "<h1>world</h1>", buf.String())
}

func TestSearchPathWinsOverFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hello.html"), []byte("on disk"), 0o600))

	e := NewEngine(fstest.MapFS{
		"templates/Hello.html": {Data: []byte("embedded")},
	}, dir)

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "Hello.html", nil))
	require.Equal(t, "on disk", buf.String())
}

func TestMissingTemplate(t *testing.T) {
	e := NewEngine(fstest.MapFS{})
	err := e.Render(&bytes.Buffer{}, "Ghost.html", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
	require.False(t, e.Lookup("Ghost.html"))
}

func TestRenderEscapesHTML(t *testing.T) {
	e := NewEngine(fstest.MapFS{
		"templates/Echo.html": {Data: []byte("{{.Input}}")},
	})

	var buf bytes.Buffer
	require.NoError(t, e.Render(&buf, "Echo.html", map[string]string{"Input": "<script>"}))
	require.NotContains(t, buf.String(), "<script>")
}
