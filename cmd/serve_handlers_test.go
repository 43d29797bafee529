package main

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solbras/fatura-cli/internal/extract"
)

func newTestServer() *server {
	return &server{
		extractor: extract.New(extract.Config{}),
		maxUpload: 1 << 20,
		started:   time.Now(),
	}
}

// multipartBody builds a multipart form with the given file fields.
func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".bin")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestServe_Health(t *testing.T) {
	h := newTestServer().routes(100, 100)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, appName, body["app"])
	assert.Equal(t, appVersion, body["version"])
	assert.Contains(t, body, "uptime_secs")
	assert.Contains(t, body, "now")
}

func TestServe_ExtractMissingFile(t *testing.T) {
	h := newTestServer().routes(100, 100)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file upload is required")
}

func TestServe_ExtractUndecodablePDF(t *testing.T) {
	h := newTestServer().routes(100, 100)

	body, contentType := multipartBody(t, map[string][]byte{"file": []byte("not a pdf at all")})
	req := httptest.NewRequest(http.MethodPost, "/extract", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a decodable PDF")
}

func TestServe_ValidateUndecodableFile(t *testing.T) {
	h := newTestServer().routes(100, 100)

	// Undecodable input errors out before any scoring happens.
	body, contentType := multipartBody(t, map[string][]byte{"file": []byte("not a pdf")})
	req := httptest.NewRequest(http.MethodPost, "/validate", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServe_ValidateBadGold(t *testing.T) {
	h := newTestServer().routes(100, 100)

	body, contentType := multipartBody(t, map[string][]byte{
		"file": []byte("not a pdf"),
		"gold": []byte("{broken json"),
	})
	req := httptest.NewRequest(http.MethodPost, "/validate", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "decode json")
}

func TestServe_ReadGold_InlineFormValue(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("gold", `{"unidade_consumidora":"1012345678"}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/validate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	gold, err := newTestServer().readGold(req)
	require.NoError(t, err)
	require.NotNil(t, gold)
	require.NotNil(t, gold.ConsumerUnit)
	assert.Equal(t, "1012345678", *gold.ConsumerUnit)
}

func TestServe_ReadGold_Absent(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/validate", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	gold, err := newTestServer().readGold(req)
	require.NoError(t, err)
	assert.Nil(t, gold)
}

func TestServe_RateLimit(t *testing.T) {
	h := newTestServer().routes(0.0001, 1)

	body1, ct1 := multipartBody(t, map[string][]byte{"file": []byte("x")})
	first := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/extract", body1)
	req1.Header.Set("Content-Type", ct1)
	h.ServeHTTP(first, req1)
	require.NotEqual(t, http.StatusTooManyRequests, first.Code)

	body2, ct2 := multipartBody(t, map[string][]byte{"file": []byte("x")})
	second := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/extract", body2)
	req2.Header.Set("Content-Type", ct2)
	h.ServeHTTP(second, req2)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate limit")

	// Health is not metered.
	health := httptest.NewRecorder()
	h.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, health.Code)
}
