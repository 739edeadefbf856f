package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/recall/core"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileLoad_PlainText(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "  line one\nline two  \n")

	docs, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "line one\nline two", docs[0].Content)
	assert.Equal(t, path, docs[0].Metadata[core.MetaSource])
}

func TestFileLoad_Markdown(t *testing.T) {
	path := writeTempFile(t, "readme.md", "# Heading\n\nbody")

	docs, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "# Heading\n\nbody", docs[0].Content)
}

func TestFileLoad_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "data.csv", "a,b,c")

	docs, err := NewFile(path).Load(context.Background())
	require.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Nil(t, docs)
}

func TestFileLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")

	docs, err := NewFile(path).Load(context.Background())
	require.ErrorIs(t, err, core.ErrSourceUnavailable)
	assert.Nil(t, docs)
}

func TestFileLoad_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "blank.txt", "   \n\t\n")

	docs, err := NewFile(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestFileLoad_CanceledContext(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "content")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFile(path).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
