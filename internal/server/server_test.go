package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tential/gqlbody"
	"github.com/tential/gqlbody/internal/config"
	"github.com/tential/gqlbody/internal/metrics"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()

	cfg, err := config.LoadFrom(config.NewViper())
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	s, err := NewServer(cfg, logrus.NewEntry(logger))
	require.NoError(t, err)

	return s.Handler()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestGraphQL_PostJSON(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"query Q($id: ID) { node(id: $id) { id } }","variables":{"id":"1"},"operationName":"Q"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	out := decodeBody(t, rr)
	assert.Equal(t, "query Q($id: ID) { node(id: $id) { id } }", out["query"])
	assert.Equal(t, map[string]any{"id": "1"}, out["variables"])
	assert.Equal(t, "Q", out["operationName"])
}

func TestGraphQL_PostGzipJSON(t *testing.T) {
	h := newTestServer(t, nil)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"query":"{ x }"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	req := httptest.NewRequest(http.MethodPost, "/graphql", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "{ x }", decodeBody(t, rr)["query"])
}

func TestGraphQL_PostGraphQLAndForm(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{ x }"))
	req.Header.Set("Content-Type", "application/graphql")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "{ x }", decodeBody(t, rr)["query"])

	form := url.Values{"query": {"{ y }"}, "variables": {`{"a":1}`}}
	req = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	out := decodeBody(t, rr)
	assert.Equal(t, "{ y }", out["query"])
	assert.Equal(t, map[string]any{"a": 1.0}, out["variables"])
}

func TestGraphQL_URLParamsWin(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql?query=%7B+url+%7D", strings.NewReader(`{"query":"{ body }","operationName":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	out := decodeBody(t, rr)
	assert.Equal(t, "{ url }", out["query"])
	assert.Equal(t, "B", out["operationName"])
}

func TestGraphQL_BodyErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		encoding    string
		body        string
		status      int
		message     string
	}{
		{name: "invalid json", contentType: "application/json", body: "  not-json", status: http.StatusBadRequest, message: "POST body sent invalid JSON."},
		{name: "bad charset", contentType: "application/json; charset=latin1", body: "{}", status: http.StatusUnsupportedMediaType, message: `Unsupported charset "LATIN1".`},
		{name: "bad encoding", contentType: "application/json", encoding: "br", body: "{}", status: http.StatusUnsupportedMediaType, message: `Unsupported content-encoding "br".`},
		{name: "corrupt gzip", contentType: "application/json", encoding: "gzip", body: `{"query":"{ x }"}`, status: http.StatusBadRequest, message: "Invalid body: gzip: invalid header."},
		{name: "too large", contentType: "application/graphql", body: strings.Repeat("x", 65), status: http.StatusRequestEntityTooLarge, message: "Invalid body: request entity too large."},
	}

	h := newTestServer(t, func(cfg *config.Config) { cfg.MaxBodyBytes = 64 })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.encoding != "" {
				req.Header.Set("Content-Encoding", tt.encoding)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, map[string]any{
				"errors": []any{map[string]any{"message": tt.message}},
			}, decodeBody(t, rr))
		})
	}
}

func TestGraphQL_MissingQuery(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"variables":{}}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Must provide query string.")
}

func TestGraphQL_InvalidVariables(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bx%7D&variables=%7Bnope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Variables are invalid JSON.")
}

func TestGraphQL_GraphiQL(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) { cfg.GraphiQL.DefaultQuery = "{ defaultQuery }" })

	req := httptest.NewRequest(http.MethodGet, "/graphql?query=%7B+x+%7D", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `query: "{ x }"`)
	assert.Contains(t, rr.Body.String(), `defaultQuery: "{ defaultQuery }"`)

	req = httptest.NewRequest(http.MethodGet, "/graphql?query=%7B+x+%7D&raw", nil)
	req.Header.Set("Accept", "text/html")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "{ x }", decodeBody(t, rr)["query"])
}

func TestGraphQL_GraphiQLDisabled(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) { cfg.GraphiQL.Enabled = false })

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Must provide query string.")
}

func TestGraphQL_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPut, "/graphql", strings.NewReader(`{"query":"{ x }"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"status": "ok"}, decodeBody(t, rr))
}

func TestParseMetrics(t *testing.T) {
	h := newTestServer(t, nil)

	okBefore := testutil.ToFloat64(metrics.ParseTotal.WithLabelValues("json", "ok"))
	badBefore := testutil.ToFloat64(metrics.ParseTotal.WithLabelValues("json", gqlbody.KindInvalidJSON.String()))

	for _, body := range []string{`{"query":"{ x }"}`, `[]`} {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, okBefore+1, testutil.ToFloat64(metrics.ParseTotal.WithLabelValues("json", "ok")))
	assert.Equal(t, badBefore+1, testutil.ToFloat64(metrics.ParseTotal.WithLabelValues("json", gqlbody.KindInvalidJSON.String())))
}

func TestMediaTypeLabel(t *testing.T) {
	assert.Equal(t, "none", mediaTypeLabel(""))
	assert.Equal(t, "json", mediaTypeLabel("application/json; charset=utf-8"))
	assert.Equal(t, "graphql", mediaTypeLabel("Application/GraphQL"))
	assert.Equal(t, "form", mediaTypeLabel("application/x-www-form-urlencoded"))
	assert.Equal(t, "other", mediaTypeLabel("text/plain"))
	assert.Equal(t, "invalid", mediaTypeLabel("application/"))
}

func TestPrefersHTML(t *testing.T) {
	assert.False(t, prefersHTML(""))
	assert.False(t, prefersHTML("application/json"))
	assert.False(t, prefersHTML("*/*"))
	assert.True(t, prefersHTML("text/html"))
	assert.True(t, prefersHTML("text/html,application/json;q=0.9"))
	assert.False(t, prefersHTML("application/json,text/html;q=0.9"))
}
