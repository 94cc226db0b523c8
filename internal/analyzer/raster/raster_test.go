package raster

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0644))

	doc, err := Open(path)
	require.Error(t, err)
	assert.Nil(t, doc)

	var openErr *OpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, path, openErr.Path)
}

func TestOpenMissingFile(t *testing.T) {
	doc, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Nil(t, doc)

	var openErr *OpenError
	assert.True(t, errors.As(err, &openErr))
}
