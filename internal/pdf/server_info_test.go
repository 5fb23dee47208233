package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-forms/internal/descriptions"
)

func TestServerInfo(t *testing.T) {
	svc, dir := newTestService(t)
	writePDF(t, dir, "form.pdf", formDoc())

	info := NewPDFServerInfo(svc)
	result, err := info.GetServerInfo(context.Background(), "test-pdf-forms", "1.0.0-test")
	require.NoError(t, err)

	assert.Equal(t, "test-pdf-forms", result.ServerName)
	assert.Equal(t, "1.0.0-test", result.Version)
	assert.Equal(t, dir, result.DefaultDirectory)
	assert.Equal(t, dir, result.OutputDirectory)
	assert.Equal(t, svc.GetMaxFileSize(), result.MaxFileSize)

	require.Len(t, result.AvailableTools, len(descriptions.ToolNames))
	for i, tool := range result.AvailableTools {
		assert.Equal(t, descriptions.ToolNames[i], tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotContains(t, tool.Description, "\n", tool.Name)
	}

	require.Len(t, result.DirectoryContents, 1)
	assert.Equal(t, "form.pdf", result.DirectoryContents[0].Name)

	assert.Contains(t, result.UsageGuidance, "pdf_form_fill")
	assert.Contains(t, result.UsageGuidance, "10MB")
}

func TestServerInfo_CachesListing(t *testing.T) {
	svc, dir := newTestService(t)
	writePDF(t, dir, "first.pdf", formDoc())

	info := NewPDFServerInfo(svc)
	first, err := info.GetServerInfo(context.Background(), "s", "v")
	require.NoError(t, err)
	require.Len(t, first.DirectoryContents, 1)

	writePDF(t, dir, "second.pdf", formDoc())
	cached, err := info.GetServerInfo(context.Background(), "s", "v")
	require.NoError(t, err)
	assert.Len(t, cached.DirectoryContents, 1, "listing served from cache")
}

func TestServerInfo_CanceledContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPDFServerInfo(svc).GetServerInfo(ctx, "s", "v")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirectoryCache(t *testing.T) {
	cache := NewDirectoryCache(50 * time.Millisecond)
	files := []FileInfo{{Name: "a.pdf"}}

	_, ok := cache.Get("/x")
	assert.False(t, ok)

	cache.Set("/x", files)
	got, ok := cache.Get("/x")
	require.True(t, ok)
	assert.Equal(t, files, got)

	time.Sleep(100 * time.Millisecond)
	_, ok = cache.Get("/x")
	assert.False(t, ok, "entry expired")

	cache.Clear()
	assert.Empty(t, cache.entries)
}

func TestServerInfo_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	svc, err := NewService(Options{Directory: dir})
	require.NoError(t, err)
	require.NoError(t, os.Remove(dir))

	result, err := NewPDFServerInfo(svc).GetServerInfo(context.Background(), "s", "v")
	require.NoError(t, err)
	assert.Empty(t, result.DirectoryContents)
	assert.NotNil(t, result.DirectoryContents)
}
