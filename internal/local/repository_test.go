package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Write(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, WithPrefix("export-1"))

	err := r.Write(context.Background(), "arquivos.json", strings.NewReader(`[]`))
	require.NoError(t, err)

	fpath := filepath.Join(dir, "export-1", "arquivos.json")
	assert.Equal(t, fpath, r.URI("arquivos.json"))

	bs, err := os.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(bs))

	entries, err := os.ReadDir(filepath.Join(dir, "export-1"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
