package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docserver/internal/config"
	"docserver/internal/errs"
	"docserver/internal/model"
	"docserver/internal/service"
)

type workspace struct {
	dir      string
	nodeRoot string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("METADATA_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "metadata.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("OTEL_SDK_DISABLED", "true")
	return &workspace{dir: dir, nodeRoot: filepath.Join(dir, "nodes", "hot1")}
}

func (w *workspace) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(VersionInfo{Version: "test", Commit: "none"})
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

func (w *workspace) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// seed migrates and applies a one-node catalog, returning the document type id.
func (w *workspace) seed(t *testing.T) int64 {
	t.Helper()
	out, err := w.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date")

	catalog := w.file(t, "catalog.yaml", fmt.Sprintf(`
applications:
  - name: billing
storage_nodes:
  - name: hot1
    root_path: %s
    location: HostedLocal
document_types:
  - name: Invoices
    application: billing
    folder: INV
    mode: Replaceable
    active_nodes: [hot1]
`, w.nodeRoot))

	out, err = w.run(t, "", "seed", catalog)
	require.NoError(t, err)

	var res struct {
		DocumentTypes map[string]int64
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotZero(t, res.DocumentTypes["Invoices"])
	return res.DocumentTypes["Invoices"]
}

func decodeDoc(t *testing.T, out string) model.StoredDocument {
	t.Helper()
	var doc model.StoredDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	return doc
}

func TestCLI_PutGetReplace(t *testing.T) {
	w := newWorkspace(t)
	typeID := w.seed(t)

	out, err := w.run(t, "", "put", "--type", strconv.FormatInt(typeID, 10), "--description", "march", w.file(t, "invoice.txt", "hello"))
	require.NoError(t, err)
	first := decodeDoc(t, out)

	assert.True(t, strings.HasPrefix(first.StorageFolder, filepath.Join(w.nodeRoot, "R", "INV")))
	assert.True(t, strings.HasSuffix(first.FileName, ".txt"))
	onDisk, err := os.ReadFile(first.FullPath())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(onDisk))

	out, err = w.run(t, "", "get", first.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	out, err = w.run(t, "", "replace", "--description", "march v2", first.ID, w.file(t, "v2.txt", "world"))
	require.NoError(t, err)
	second := decodeDoc(t, out)
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.FileName, second.FileName)

	_, err = os.Stat(first.FullPath())
	assert.True(t, os.IsNotExist(err), "superseded file is removed")

	target := filepath.Join(w.dir, "copy.txt")
	_, err = w.run(t, "", "get", "-o", target, first.ID)
	require.NoError(t, err)
	copied, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "world", string(copied))

	out, err = w.run(t, "", "get", "--meta", first.ID)
	require.NoError(t, err)
	meta := decodeDoc(t, out)
	assert.Equal(t, "march v2", meta.Description)
	assert.Equal(t, int64(2), meta.AccessCount)
}

func TestCLI_PutFromStdin(t *testing.T) {
	w := newWorkspace(t)
	typeID := w.seed(t)

	out, err := w.run(t, "piped", "put", "--type", strconv.FormatInt(typeID, 10), "--ext", "log", "-")
	require.NoError(t, err)
	doc := decodeDoc(t, out)
	assert.True(t, strings.HasSuffix(doc.FileName, ".log"))
	assert.Equal(t, int64(len("piped")), doc.Size)
}

func TestCLI_Errors(t *testing.T) {
	w := newWorkspace(t)
	typeID := w.seed(t)

	_, err := w.run(t, "", "get", uuid.NewString())
	assert.ErrorIs(t, err, errs.ErrDocumentNotFound)

	_, err = w.run(t, "", "put", "--type", strconv.FormatInt(typeID+100, 10), w.file(t, "a.txt", "x"))
	assert.ErrorIs(t, err, errs.ErrDocumentTypeNotFound)

	_, err = w.run(t, "", "put", w.file(t, "b.txt", "x"))
	assert.ErrorContains(t, err, "type")

	_, err = w.run(t, "", "seed", filepath.Join(w.dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestCLI_InvalidDriver(t *testing.T) {
	newWorkspace(t)
	t.Setenv("METADATA_DRIVER", "oracle")

	root := NewRootCommand(VersionInfo{Version: "test", Commit: "none"})
	root.SetArgs([]string{"migrate"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	assert.ErrorContains(t, root.Execute(), "METADATA_DRIVER")
}

func TestServeApp(t *testing.T) {
	w := newWorkspace(t)
	w.seed(t)

	log := logrus.New()
	log.SetOutput(io.Discard)
	env := &environment{cfg: config.Load(), log: log}
	ctx := context.Background()
	md, err := env.openMetadata(ctx)
	require.NoError(t, err)
	defer md.close()

	reg := prometheus.NewRegistry()
	metrics, err := service.NewMetrics(reg)
	require.NoError(t, err)
	docSvc, err := env.documentService(ctx, md, service.WithMetrics(metrics))
	require.NoError(t, err)

	app, err := env.newApp(md, docSvc, reg)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="/documents/:id",status="404"} 1`)
	assert.Contains(t, string(body), "docserver_storage_bytes_written_total")
}
