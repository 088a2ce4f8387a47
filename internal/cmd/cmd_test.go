package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/arquivo/internal/catalog"
	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/export"
)

type testEnv struct {
	configPath  string
	sessionPath string
	exportDir   string
}

func newTestEnv(t *testing.T, apiURL string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		configPath:  filepath.Join(dir, "arquivo.yml"),
		sessionPath: filepath.Join(dir, "session.json"),
		exportDir:   filepath.Join(dir, "exports"),
	}

	cfg := fmt.Sprintf(`
logger:
  level: error
api:
  base_url: %q
  page_size: 2
session:
  path: %q
export:
  format: csv
  repository:
    type: local
    local:
      path: %q
`, apiURL, env.sessionPath, env.exportDir)
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0644))
	return env
}

func run(t *testing.T, env testEnv, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if env.configPath != "" {
		args = append(args, "--config", env.configPath)
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPeriodConvert(t *testing.T) {
	out, err := run(t, testEnv{}, "period", "convert", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, "01/02/2024\n", out)

	out, err = run(t, testEnv{}, "period", "convert", "1/2/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01\n", out)

	_, err = run(t, testEnv{}, "period", "convert", "2023-02-29")
	assert.Error(t, err)
}

func TestListCommand(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("dataInicio"))
		assert.Equal(t, "2", r.URL.Query().Get("pageSize"))
		w.Write([]byte(`{"arquivos": [{"id": 7, "nomeArquivo": "lote.txt", "aceitos": "1.500"}, {"nome_arquivo": "sem-id.txt"}], "totalRegistros": 2}`))
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t, srv.URL)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, env, "list", "--start", "2024-01-01", "--end", "2024-01-31")
		require.NoError(t, err)
		assert.Contains(t, out, "lote.txt")
		assert.Contains(t, out, "1500")
		assert.Contains(t, out, "page 1 of 1, 2 files")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, env, "list", "--start", "2024-01-01", "--end", "2024-01-31", "-o", "json")
		require.NoError(t, err)
		var page pageOutput
		require.NoError(t, json.Unmarshal([]byte(out), &page))
		require.Len(t, page.Items, 2)
		assert.Equal(t, "7", page.Items[0].ID)
		assert.Equal(t, "", page.Items[1].ID)
		assert.Equal(t, 2, page.Total)
	})

	t.Run("invalid period never reaches the backend", func(t *testing.T) {
		before := atomic.LoadInt32(&calls)
		_, err := run(t, env, "list", "--start", "2024-02-01", "--end", "2024-01-01")
		assert.Error(t, err)
		assert.Equal(t, before, atomic.LoadInt32(&calls))
	})

	t.Run("api url flag overrides config", func(t *testing.T) {
		_, err := run(t, env, "list", "--start", "2024-01-01", "--end", "2024-01-31", "--api-url", "ftp://nowhere")
		assert.Error(t, err)
	})
}

func TestSessionCommands(t *testing.T) {
	var user atomic.Value
	user.Store("")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user.Store(r.Header.Get(client.UserHeader))
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t, srv.URL)

	out, err := run(t, env, "login", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as ana")
	assert.FileExists(t, env.sessionPath)

	out, err = run(t, env, "list", "--start", "2024-01-01", "--end", "2024-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "No files uploaded")
	assert.Equal(t, "ana", user.Load())

	_, err = run(t, env, "logout")
	require.NoError(t, err)
	assert.NoFileExists(t, env.sessionPath)

	_, err = run(t, env, "list", "--start", "2024-01-01", "--end", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "", user.Load())
}

func TestUploadCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "janeiro", r.FormValue("descricao"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"idArquivo": 31}`))
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t, srv.URL)

	file := filepath.Join(t.TempDir(), "lote.txt")
	require.NoError(t, os.WriteFile(file, []byte("conteudo"), 0644))

	out, err := run(t, env, "upload", file, "-d", "janeiro")
	require.NoError(t, err)
	assert.Equal(t, "31\n", out)

	_, err = run(t, env, "login", "bia", "--can-upload=false")
	require.NoError(t, err)
	_, err = run(t, env, "upload", file)
	assert.ErrorIs(t, err, client.ErrUploadNotPermitted)
}

func TestExportCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Total-Count", "3")
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`[{"id": 1, "nomeArquivo": "a"}, {"id": 2, "nomeArquivo": "b"}]`))
		default:
			w.Write([]byte(`[{"id": 3, "nomeArquivo": "c"}]`))
		}
	}))
	t.Cleanup(srv.Close)
	env := newTestEnv(t, srv.URL)

	out, err := run(t, env, "export", "--start", "2024-01-01", "--end", "2024-01-31")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), export.CatalogKey))

	dirs, err := os.ReadDir(env.exportDir)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	exportPath := filepath.Join(env.exportDir, dirs[0].Name())

	bs, err := os.ReadFile(filepath.Join(exportPath, export.CatalogKey))
	require.NoError(t, err)
	var c catalog.Catalog
	require.NoError(t, json.Unmarshal(bs, &c))
	assert.True(t, c.Completed)
	assert.Equal(t, 3, c.NumRecords)
	assert.Equal(t, 2, c.NumPages)
	assert.Equal(t, "csv", c.Format)

	data, err := os.ReadFile(filepath.Join(exportPath, "arquivos.csv"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 4)
}
