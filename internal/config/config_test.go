package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromFile(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		c, err := NewFromFile("../../dev/examples/arquivo.yml")
		require.NoError(t, err)
		assert.Equal(t, "debug", c.Logger.Level)
		assert.Equal(t, "legacy", c.API.DateMode)
		assert.Equal(t, 15*time.Second, c.API.Timeout)
		assert.Equal(t, 50, c.API.PageSize)
		assert.Equal(t, "s3", c.Export.Repository.Type)
		assert.Equal(t, "arquivo-exports", c.Export.Repository.S3Config.Bucket)
		assert.True(t, c.Export.Repository.S3Config.ForcePathStyle)
	})

	t.Run("empty path returns defaults", func(t *testing.T) {
		c, err := NewFromFile("")
		require.NoError(t, err)
		assert.Equal(t, Default().API, c.API)
		assert.NoError(t, c.Validate())
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		fpath := filepath.Join(t.TempDir(), "c.yml")
		require.NoError(t, os.WriteFile(fpath, []byte("api:\n  base_url: http://x/api\n"), 0644))
		c, err := NewFromFile(fpath)
		require.NoError(t, err)
		assert.Equal(t, "http://x/api", c.API.BaseURL)
		assert.Equal(t, 20, c.API.PageSize)
		assert.Equal(t, "local", c.Export.Repository.Type)
	})

	t.Run("invalid date mode", func(t *testing.T) {
		fpath := filepath.Join(t.TempDir(), "c.yml")
		require.NoError(t, os.WriteFile(fpath, []byte("api:\n  date_mode: epoch\n"), 0644))
		_, err := NewFromFile(fpath)
		assert.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		fpath := filepath.Join(t.TempDir(), "c.yml")
		require.NoError(t, os.WriteFile(fpath, []byte("export:\n  repository:\n    type: s3\n"), 0644))
		_, err := NewFromFile(fpath)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFromFile("does-not-exist.yml")
		assert.Error(t, err)
	})
}
