package fallback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureExistsCreatesPage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resources")
	p := NewProvisioner(dir, "Webdeck")

	path, ok := p.EnsureExists()

	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, FileName), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Webdeck could not load its content")
	assert.Contains(t, string(data), "<style>")
	assert.NotContains(t, string(data), "<link", "page must not reference external resources")
	assert.NotContains(t, string(data), "<script")
}

func TestEnsureExistsNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("custom page from an older release"), 0644))

	got, ok := NewProvisioner(dir, "Webdeck").EnsureExists()

	require.True(t, ok)
	assert.Equal(t, path, got)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom page from an older release", string(data))
}

func TestEnsureExistsIdempotent(t *testing.T) {
	p := NewProvisioner(t.TempDir(), "Webdeck")

	path1, ok1 := p.EnsureExists()
	first, err := os.ReadFile(path1)
	require.NoError(t, err)
	path2, ok2 := p.EnsureExists()
	second, err := os.ReadFile(path2)
	require.NoError(t, err)

	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestEnsureExistsWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0600))

	_, ok := NewProvisioner(filepath.Join(blocker, "resources"), "Webdeck").EnsureExists()

	assert.False(t, ok)
}

func TestEnsureExistsDirectoryInTheWay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, FileName), 0700))

	_, ok := NewProvisioner(dir, "Webdeck").EnsureExists()

	assert.False(t, ok)
}

func TestRenderEscapesAppName(t *testing.T) {
	doc, err := Render("<b>Deck</b>")
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "<b>Deck</b>")
	assert.Contains(t, string(doc), "&lt;b&gt;Deck&lt;/b&gt;")
}

func TestInlineMessage(t *testing.T) {
	msg := InlineMessage("Webdeck")
	assert.NotEmpty(t, msg)
	assert.Contains(t, msg, "Webdeck could not load its content")

	assert.Contains(t, InlineMessage(""), "The application could not load")
	assert.NotContains(t, InlineMessage("<script>"), "<script>")
}
