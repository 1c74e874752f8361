package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datacleaner/pkg/engine"
	"datacleaner/pkg/session"
)

const dataset = `id,score,city
1,10,Paris
2,,Rome
1,10,Paris
3,1000,
4,,Oslo
`

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(session.NewStore(session.Config{}, nil), nil, opts).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "-" {
		fw, err := mw.CreateFormFile(uploadField, filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

type uploadResponse struct {
	Success   bool           `json:"success"`
	SessionID string         `json:"session_id"`
	Summary   engine.Summary `json:"summary"`
}

func upload(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	body, ct := multipartBody(t, "data.csv", dataset, nil)
	resp, err := http.Post(srv.URL+"/upload", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out uploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.True(t, out.Success)
	assert.Equal(t, 5, out.Summary.RowCount)
	assert.Equal(t, 1, out.Summary.DuplicateRowCount)
	assert.Equal(t, out.SessionID, resp.Header.Get(SessionHeader))
	return out.SessionID
}

func do(t *testing.T, srv *httptest.Server, method, path, id string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if id != "" {
		req.Header.Set(SessionHeader, id)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := upload(t, srv)

	resp, out := do(t, srv, http.MethodPost, "/api/clean", id, map[string]any{"operation": "remove_duplicates"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := out["result"].(map[string]any)
	assert.Equal(t, "Removed 1 duplicate rows", result["description"])

	resp, out = do(t, srv, http.MethodPost, "/api/clean", id, map[string]any{"operation": "fill_missing", "method": "median"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	after := out["result"].(map[string]any)["after_summary"].(map[string]any)
	assert.Equal(t, float64(0), after["total_missing"])

	resp, out = do(t, srv, http.MethodGet, "/api/history", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, out["history"], 2)

	resp, out = do(t, srv, http.MethodGet, "/api/summary", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(4), out["summary"].(map[string]any)["row_count"])

	resp, _ = do(t, srv, http.MethodPost, "/api/download", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cleaned_dataset.csv")

	resp, out = do(t, srv, http.MethodPost, "/api/reset", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dataset reset to original state", out["message"])
	assert.Equal(t, float64(5), out["summary"].(map[string]any)["row_count"])

	resp, out = do(t, srv, http.MethodGet, "/api/history", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, out["history"])

	resp, _ = do(t, srv, http.MethodGet, "/api/chart", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, _ = do(t, srv, http.MethodDelete, "/api/session", id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/api/summary", id, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadBody(t *testing.T) {
	srv := newTestServer(t, Options{})
	id := upload(t, srv)
	do(t, srv, http.MethodPost, "/api/clean", id, map[string]any{"operation": "drop_high_missing", "threshold": 0.3})

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/download", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "id,city\n1,Paris\n2,Rome\n1,Paris\n3,\n4,Oslo\n", string(body))
}

func TestZeroMissingThreshold(t *testing.T) {
	zero := 0.0
	srv := newTestServer(t, Options{MissingThreshold: &zero})
	id := upload(t, srv)

	resp, out := do(t, srv, http.MethodPost, "/api/clean", id, map[string]any{"operation": "drop_high_missing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := out["result"].(map[string]any)
	assert.Equal(t, "Drop High Missing Columns (>0%)", result["operation"])
	assert.Equal(t, "Dropped 2 columns: score, city", result["description"])
}

func TestCleanErrors(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, out := do(t, srv, http.MethodPost, "/api/clean", "", map[string]any{"operation": "remove_duplicates"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, noSessionMsg, out["error"])

	resp, _ = do(t, srv, http.MethodPost, "/api/clean", "no-such-session", map[string]any{"operation": "remove_duplicates"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	id := upload(t, srv)
	resp, out = do(t, srv, http.MethodPost, "/api/clean", id, map[string]any{"operation": "explode"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid operation", out["error"])
}

func TestUploadErrors(t *testing.T) {
	srv := newTestServer(t, Options{})

	cases := []struct {
		name     string
		filename string
		content  string
		status   int
		msg      string
	}{
		{"NoFile", "-", "", http.StatusBadRequest, "No file uploaded"},
		{"WrongExtension", "data.txt", dataset, http.StatusBadRequest, "Invalid file format. Please upload a CSV file."},
		{"Unparseable", "data.csv", "a,b\n1\n", http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.filename, tc.content, map[string]string{"x": "y"})
			resp, err := http.Post(srv.URL+"/upload", ct, body)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)

			var out map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, out["error"])
			} else {
				assert.Contains(t, out["error"], "Failed to read CSV file")
			}
		})
	}
}

func TestLegacyClean(t *testing.T) {
	srv := newTestServer(t, Options{})
	body, ct := multipartBody(t, "data.csv", dataset, map[string]string{
		"remove_duplicates": "on",
		"fill_missing":      "on",
	})
	resp, err := http.Post(srv.URL+"/clean", ct, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "2,505,Rome", lines[2])
	assert.Equal(t, "3,1000,Oslo", lines[3])
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, Options{RateLimit: 0.001, Burst: 1})

	resp, _ := do(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
