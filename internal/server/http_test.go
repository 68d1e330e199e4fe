package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/startpacket/internal/territory"
)

func do(t *testing.T, h http.Handler, method, path, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHTTPTerritoryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPHandler(env.territories, env.processor, env.logger)

	rec, body := do(t, h, http.MethodGet, "/api/environment", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TEST", body["environment"])

	rec, body = do(t, h, http.MethodPost, "/api/territories/add", "application/json",
		`{"zipCode":"77001","aeEmail":" Ann@Example.com ","branchId":"BRN-001","territoryName":"West"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Zip added.", body["message"])
	record := body["record"].(map[string]any)
	assert.Equal(t, "ann@example.com", record["aeEmail"])
	assert.Equal(t, "TEST_West", record["territoryName"])

	rec, body = do(t, h, http.MethodPost, "/api/territories/add", "application/json",
		`{"zipCode":"77001","aeEmail":"bob@example.com","branchId":"BRN-001","territoryName":"West"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Zip updated.", body["message"])

	rec, body = do(t, h, http.MethodPost, "/api/territories/add", "application/json",
		`{"zipCode":"7700","aeEmail":"bob@example.com","branchId":"BRN-001","territoryName":"West"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Zip must be 5 digits.", body["error"])

	rec, body = do(t, h, http.MethodGet, "/api/territories/search/77001", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob@example.com", body["record"].(map[string]any)["aeEmail"])

	rec, body = do(t, h, http.MethodGet, "/api/territories/search/99999", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Zip not assigned.", body["error"])

	rec, body = do(t, h, http.MethodGet, "/api/territories/search/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Zip must be 5 digits.", body["error"])

	rec, body = do(t, h, http.MethodGet, "/api/territories", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TEST", body["environment"])
	assert.Len(t, body["territories"], 1)
	assert.EqualValues(t, 1, body["stats"].(map[string]any)["totalZipCodes"])

	rec, body = do(t, h, http.MethodPost, "/api/territories/remove", "application/json", `{"zipCode":"77001"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Removed zip 77001.", body["message"])

	rec, body = do(t, h, http.MethodPost, "/api/territories/remove", "application/json", `{"zipCode":"77001"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Zip not found.", body["error"])
}

func TestHTTPBulkAndExport(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPHandler(env.territories, nil, env.logger)

	csv := "ZipCode,AE_Email,BranchID,TerritoryName\n77001,a@x.com,BRN-001,West, Inner\n77002,b@x.com,BRN-001,East\n"
	rec, body := do(t, h, http.MethodPost, "/api/territories/bulk", "text/csv", csv)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Processed 2 rows. Added 2, updated 0.", body["message"])

	payload, _ := json.Marshal(map[string]string{"csvData": "77003,c@x.com,BRN-002,North"})
	rec, body = do(t, h, http.MethodPost, "/api/territories/bulk", "application/json", string(payload))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Processed 1 rows. Added 1, updated 0.", body["message"])

	rec, body = do(t, h, http.MethodPost, "/api/territories/bulk", "text/csv", "77004,c@x.com\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"Line 1: Expected 4 columns."}, body["summary"].(map[string]any)["errors"])

	rec, _ = do(t, h, http.MethodGet, "/api/territories/export", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "territories-export.csv")
	lines := strings.Split(rec.Body.String(), "\n")
	assert.Equal(t, territory.ExportHeader, lines[0])
	assert.Equal(t, `77001,a@x.com,BRN-001,"TEST_West,Inner"`, lines[1])
	assert.Len(t, lines, 4)
}

func TestHTTPEnvironmentAndTestRoutes(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPHandler(env.territories, nil, env.logger)

	rec, body := do(t, h, http.MethodPost, "/api/test/sample", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Loaded sample territories.", body["message"])
	assert.EqualValues(t, 16, body["totalSampleZips"])

	rec, body = do(t, h, http.MethodPost, "/api/environment/switch", "application/json", `{"environment":"test"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Already in TEST.", body["message"])

	rec, body = do(t, h, http.MethodPost, "/api/environment/switch", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PRODUCTION", body["environment"])
	assert.Equal(t, "Switched to PRODUCTION.", body["message"])

	rec, body = do(t, h, http.MethodPost, "/api/test/clear", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Clearing data is only allowed in TEST mode.", body["error"])

	rec, body = do(t, h, http.MethodPost, "/api/test/sample", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Sample data is only available in TEST mode.", body["error"])

	rec, body = do(t, h, http.MethodGet, "/api/territories/search/77010", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Southeast Houston", body["record"].(map[string]any)["territoryName"])

	rec, body = do(t, h, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found.", body["error"])

	// no quote processor configured
	rec, _ = do(t, h, http.MethodPost, "/api/quotes/parse", "text/plain", globexQuote)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPParseQuote(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.territories.LoadSamples(context.Background())
	require.NoError(t, err)
	h := NewHTTPHandler(env.territories, env.processor, env.logger)

	rec, body := do(t, h, http.MethodPost, "/api/quotes/parse", "text/plain", globexQuote)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, body["jobId"])
	stored := body["draft"].(map[string]any)
	assert.Equal(t, "http", stored["source_path"])
	draft := stored["draft"].(map[string]any)
	assert.Equal(t, "Globex LLC", draft["accountName"])
	assert.Equal(t, "BRN-002", draft["branchId"])

	payload, _ := json.Marshal(map[string]string{"text": globexQuote, "source": "crm-paste"})
	rec, body = do(t, h, http.MethodPost, "/api/quotes/parse", "application/json", string(payload))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "crm-paste", body["draft"].(map[string]any)["source_path"])

	rec, body = do(t, h, http.MethodPost, "/api/quotes/parse", "text/plain", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no document text provided", body["error"])

	rec, _ = do(t, h, http.MethodPost, "/api/quotes/parse", "application/json", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPMalformedBodies(t *testing.T) {
	env := newTestEnv(t)
	h := NewHTTPHandler(env.territories, nil, env.logger)
	before := env.territories.Environment()

	rec, body := do(t, h, http.MethodPost, "/api/environment/switch", "application/json", `{"environment":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body.", body["error"])
	assert.Equal(t, before, env.territories.Environment(), "environment must not toggle")

	rec, body = do(t, h, http.MethodPost, "/api/territories/remove", "application/json", `zipCode=77001`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body.", body["error"])
}
