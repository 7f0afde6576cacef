package api

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag/config"
	"rag/model"
	"rag/service"
	"rag/store"
)

// fakeOllama answers the embeddings API with canned vectors per prompt so
// search rankings are deterministic.
func fakeOllama(t *testing.T, vectors map[string][]float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		vec, ok := vectors[req.Prompt]
		if !ok {
			vec = []float64{1, 0}
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, vectors map[string][]float64) *fiber.App {
	t.Helper()

	srv := fakeOllama(t, vectors)
	t.Setenv("EMBEDDING_PROVIDER", "ollama")
	t.Setenv("OLLAMA_EMBEDDING_URL", srv.URL)
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("STORAGE_PROVIDER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "rag.db"))
	t.Setenv("UPLOAD_DIR", "")

	cfg := config.Load()
	stores, err := store.NewManager(cfg.Storage())
	require.NoError(t, err)
	require.NoError(t, stores.Current().Init(context.Background()))

	var (
		app            = fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		rag            = service.New(cfg, stores)
		checkHandler   = NewCheckHandler(cfg, stores)
		requestHandler = NewRequestHandler(rag, stores)
		configHandler  = NewConfigHandler(cfg, stores)
		fileHandler    = NewFileHandler()
	)

	app.Get("/", checkHandler.HandleRoot)
	app.Get("/health", checkHandler.HandleHealthy)
	app.Get("/settings/embedding", configHandler.HandleGetEmbedding)
	app.Post("/settings/embedding", configHandler.HandleSetEmbedding)
	app.Get("/settings/database", configHandler.HandleGetStorage)
	app.Post("/settings/database", configHandler.HandleSetStorage)
	app.Get("/settings/database/test", configHandler.HandleTestStorage)
	app.Post("/documents", requestHandler.HandleAddDocument)
	app.Get("/documents", requestHandler.HandleListDocuments)
	app.Delete("/documents/:title", requestHandler.HandleDeleteDocument)
	app.Post("/search", requestHandler.HandleSearch)
	app.Post("/embed", requestHandler.HandleEmbed)
	app.Post("/extract-file", fileHandler.HandleExtractFile)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestRootAndHealth(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := doJSON(t, app, "GET", "/", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", body["status"])

	status, body = doJSON(t, app, "GET", "/health", nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ollama", body["embedding_provider"])
	assert.Equal(t, "sqlite", body["database_provider"])
	assert.EqualValues(t, 0, body["documents"])
}

func TestDocumentLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := doJSON(t, app, "POST", "/documents",
		map[string]string{"title": "Greeting", "content": "hello world"})
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["chunks"])
	assert.Equal(t, "ollama", body["embedding_provider"])

	status, body = doJSON(t, app, "GET", "/documents", nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["count"])

	status, body = doJSON(t, app, "DELETE", "/documents/Greeting", nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["deleted_chunks"])

	status, _ = doJSON(t, app, "DELETE", "/documents/Greeting", nil)
	assert.Equal(t, 404, status)
}

func TestDeleteEscapedTitle(t *testing.T) {
	app := newTestApp(t, nil)

	status, _ := doJSON(t, app, "POST", "/documents",
		map[string]string{"title": "My Notes", "content": "something"})
	require.Equal(t, 200, status)

	status, body := doJSON(t, app, "DELETE", "/documents/My%20Notes", nil)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["deleted_chunks"])
}

func TestSearch(t *testing.T) {
	app := newTestApp(t, map[string][]float64{
		"bravo":       {0, 1},
		"about bravo": {0.1, 0.9},
	})

	for _, doc := range []map[string]string{
		{"title": "A", "content": "alpha"},
		{"title": "B", "content": "bravo"},
	} {
		status, _ := doJSON(t, app, "POST", "/documents", doc)
		require.Equal(t, 200, status)
	}

	status, body := doJSON(t, app, "POST", "/search",
		map[string]any{"query": "about bravo", "limit": 1})
	require.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "ollama", body["embedding_provider"])

	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "bravo", results[0].(map[string]any)["content"])
}

func TestValidation(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := doJSON(t, app, "POST", "/documents", map[string]string{})
	assert.Equal(t, 422, status)
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "Title")
	assert.Contains(t, errs, "Content")

	status, _ = doJSON(t, app, "POST", "/search", map[string]string{})
	assert.Equal(t, 422, status)

	status, _ = doJSON(t, app, "POST", "/documents", "this is not json")
	assert.Equal(t, 400, status)
}

func TestEmbeddingSettings(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := doJSON(t, app, "GET", "/settings/embedding", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "ollama", body["provider"])
	assert.Equal(t, false, body["google_configured"])

	status, _ = doJSON(t, app, "POST", "/settings/embedding",
		map[string]string{"provider": "tfidf"})
	assert.Equal(t, 400, status)

	if !model.GoogleAvailable() {
		return
	}

	// Switching to google without a key is accepted; embeds then report the
	// missing key until one is configured.
	status, body = doJSON(t, app, "POST", "/settings/embedding",
		map[string]string{"provider": "google"})
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["google_configured"])

	status, _ = doJSON(t, app, "POST", "/embed", map[string]string{"text": "x"})
	assert.Equal(t, 400, status)

	status, _ = doJSON(t, app, "POST", "/settings/embedding",
		map[string]string{"provider": "ollama"})
	require.Equal(t, 200, status)

	status, body = doJSON(t, app, "POST", "/embed", map[string]string{"text": "x"})
	require.Equal(t, 200, status)
	assert.EqualValues(t, 2, body["dimensions"])
	assert.Equal(t, "ollama", body["provider"])
}

func TestStorageSettings(t *testing.T) {
	app := newTestApp(t, nil)

	status, body := doJSON(t, app, "GET", "/settings/database", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "sqlite", body["provider"])
	assert.NotEmpty(t, body["sqlite_path"])

	status, body = doJSON(t, app, "POST", "/settings/database",
		map[string]string{"provider": "sqlite", "sqlite_path": filepath.Join(t.TempDir(), "other.db")})
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	test := body["connection_test"].(map[string]any)
	assert.Equal(t, true, test["success"])

	status, _ = doJSON(t, app, "POST", "/settings/database",
		map[string]string{"provider": "supabase"})
	assert.Equal(t, 400, status)

	status, body = doJSON(t, app, "GET", "/settings/database/test", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
}

func TestExtractFile(t *testing.T) {
	app := newTestApp(t, nil)

	var docx bytes.Buffer
	zw := zip.NewWriter(&docx)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(`<?xml version="1.0"?>` +
		`<w:document xmlns:w="urn:w"><w:body>` +
		`<w:p><w:r><w:t>Uploaded text.</w:t></w:r></w:p>` +
		`</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("file", "upload.docx")
	require.NoError(t, err)
	_, err = fw.Write(docx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/extract-file", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "docx", body["type"])
	assert.Equal(t, "Uploaded text.", body["content"])
	assert.EqualValues(t, 1, body["units"])

	req = httptest.NewRequest("POST", "/extract-file", bytes.NewReader(nil))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)
}
