package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/filecabinet/pkg/metrics"
	"github.com/ssargent/filecabinet/pkg/store"
	"github.com/ssargent/filecabinet/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type testServer struct {
	*httptest.Server
	engine *store.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	policy, err := validation.ByName(validation.PolicyDefault)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	engine, err := store.NewEngine(store.EngineConfig{DataFile: filepath.Join(t.TempDir(), "cabinet.db")}, policy, store.WithMetrics(m))
	require.NoError(t, err)
	_, err = engine.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	server := NewServer(engine, ServerConfig{APIKey: testAPIKey}, m, nil)
	ts := httptest.NewServer(server.Routes(reg))
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, data interface{}) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

const annJSON = `{"first_name":"Ann","last_name":"Lee","date_of_birth":"1990-05-02","height":170,"salary":"1000.50","grade":"A"}`

func TestServer_CreateGetEdit(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "POST", "/api/v1/records", strings.NewReader(annJSON))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created CreatedResponse
	assert.True(t, decodeResponse(t, resp, &created).Success)
	assert.Equal(t, int32(1), created.ID)

	resp = ts.do(t, "GET", "/api/v1/records/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var record RecordResponse
	decodeResponse(t, resp, &record)
	assert.Equal(t, "Ann", record.FirstName)
	assert.Equal(t, "1990-05-02", record.DateOfBirth)
	assert.Equal(t, "1000.5", record.Salary.String())
	assert.Equal(t, "A", record.Grade)

	edited := strings.Replace(annJSON, `"Ann"`, `"Anna"`, 1)
	resp = ts.do(t, "PUT", "/api/v1/records/1", strings.NewReader(edited))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &record)
	assert.Equal(t, "Anna", record.FirstName)
	assert.Equal(t, int32(1), record.ID)

	resp = ts.do(t, "GET", "/api/v1/records", nil)
	var records []RecordResponse
	decodeResponse(t, resp, &records)
	require.Len(t, records, 1)
}

func TestServer_Errors(t *testing.T) {
	ts := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"missing record", "GET", "/api/v1/records/999", "", http.StatusNotFound},
		{"bad id", "GET", "/api/v1/records/abc", "", http.StatusBadRequest},
		{"edit missing record", "PUT", "/api/v1/records/5", annJSON, http.StatusNotFound},
		{"invalid json", "POST", "/api/v1/records", "{", http.StatusBadRequest},
		{"bad date", "POST", "/api/v1/records", strings.Replace(annJSON, "1990-05-02", "someday", 1), http.StatusBadRequest},
		{"bad grade", "POST", "/api/v1/records", strings.Replace(annJSON, `"A"`, `"AB"`, 1), http.StatusBadRequest},
		{"validation failure", "POST", "/api/v1/records", strings.Replace(annJSON, "170", "20", 1), http.StatusBadRequest},
		{"find without value", "GET", "/api/v1/records/find?by=firstname", "", http.StatusBadRequest},
		{"find unknown field", "GET", "/api/v1/records/find?by=height&value=1", "", http.StatusBadRequest},
		{"export unknown format", "GET", "/api/v1/export?format=json", "", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			resp := ts.do(t, tc.method, tc.path, body)
			assert.Equal(t, tc.status, resp.StatusCode)

			result := decodeResponse(t, resp, nil)
			assert.False(t, result.Success)
			assert.NotEmpty(t, result.Error)
		})
	}

	assert.Equal(t, 0, ts.engine.GetStat())
}

func TestServer_ValidationMessage(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, "POST", "/api/v1/records", strings.NewReader(strings.Replace(annJSON, "170", "20", 1)))
	result := decodeResponse(t, resp, nil)
	assert.Contains(t, result.Error, "height")
}

func TestServer_Find(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []string{annJSON, strings.Replace(annJSON, `"Lee"`, `"Kim"`, 1)} {
		resp := ts.do(t, "POST", "/api/v1/records", strings.NewReader(body))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	testCases := []struct {
		query string
		ids   []int32
	}{
		{"by=firstname&value=ANN", []int32{1, 2}},
		{"by=lastname&value=kim", []int32{2}},
		{"by=dateofbirth&value=05/02/1990", []int32{1, 2}},
		{"by=dateofbirth&value=garbage", []int32{}},
		{"by=lastname&value=Nobody", []int32{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			resp := ts.do(t, "GET", "/api/v1/records/find?"+tc.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var records []RecordResponse
			decodeResponse(t, resp, &records)
			ids := []int32{}
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestServer_ExportImport(t *testing.T) {
	source := newTestServer(t)
	resp := source.do(t, "POST", "/api/v1/records", strings.NewReader(annJSON))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, format := range []string{"csv", "xml"} {
		t.Run(format, func(t *testing.T) {
			resp := source.do(t, "GET", "/api/v1/export?format="+format, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Disposition"), "."+format)

			doc, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(doc), "1990-May-2")

			target := newTestServer(t)
			resp = target.do(t, "POST", "/api/v1/import?format="+format, bytes.NewReader(doc))
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var result ImportResponse
			decodeResponse(t, resp, &result)
			assert.Equal(t, 1, result.Created)
			assert.Empty(t, result.Skipped)
			assert.NotEmpty(t, result.BatchID)
			assert.Equal(t, 1, target.engine.GetStat())
		})
	}

	resp = source.do(t, "POST", "/api/v1/import?format=csv", strings.NewReader("not,a,header\n"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_ImportTooLarge(t *testing.T) {
	limit := maxImportSize
	maxImportSize = 64
	t.Cleanup(func() { maxImportSize = limit })

	ts := newTestServer(t)
	doc := "Id,First Name,Last Name,Date of Birth,Height,Salary,Grade\n" +
		"1,Ann,Lee,1990-May-2,170,1000,A\n" +
		"2,Bob,Ray,1985-Jan-3,180,2500.5,B\n"

	resp := ts.do(t, "POST", "/api/v1/import?format=csv", strings.NewReader(doc))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	body := decodeResponse(t, resp, nil)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "exceeds 64 bytes")
	assert.Equal(t, 0, ts.engine.GetStat())
}

func TestServer_StatsHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, "POST", "/api/v1/records", strings.NewReader(annJSON))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.do(t, "GET", "/api/v1/stats", nil)
	var stats store.StoreStats
	decodeResponse(t, resp, &stats)
	assert.Equal(t, 1, stats.Records)
	assert.Equal(t, int32(2), stats.NextID)

	resp = ts.do(t, "GET", "/api/v1/health", nil)
	var health map[string]interface{}
	decodeResponse(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])

	// Metrics are served without an API key
	metricsResp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "filecabinet_records_total 1")
	assert.Contains(t, string(body), `filecabinet_http_requests_total{endpoint="/api/v1/records",method="POST",status_code="201"} 1`)
}

func TestServer_RequiresAPIKey(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
