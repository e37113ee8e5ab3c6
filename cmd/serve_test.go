package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/capital-cli/internal/config"
	"github.com/sells-group/capital-cli/internal/pipeline"
)

func withTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Pipeline: config.PipelineConfig{MissingMonthPolicy: "excluded"},
		Report:   config.ReportConfig{GroupBy: "PROJECT_NAME", TopN: 5, HighlightThreshold: 10},
		Server:   config.ServerConfig{Port: 8080, MaxUploadMB: 64},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestSpoolUploadKeepsExtension(t *testing.T) {
	path, err := spoolUpload(strings.NewReader("A,B\n1,2\n"), "budget.xlsx")
	assert.NoError(t, err)
	defer os.Remove(path) //nolint:errcheck

	assert.True(t, strings.HasSuffix(path, ".xlsx"))
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "A,B\n1,2\n", string(data))
}

func TestUploadOptions(t *testing.T) {
	withTestConfig(t)

	req := func(query string) *http.Request {
		return &http.Request{URL: &url.URL{RawQuery: query}}
	}

	opts, err := uploadOptions(req(""))
	assert.NoError(t, err)
	assert.Equal(t, pipeline.MissingMonthExcluded, opts.MissingMonth)

	opts, err = uploadOptions(req("as_of=2025-06-15&missing_month=zero"))
	assert.NoError(t, err)
	assert.Equal(t, 2025, opts.AsOf.Year())
	assert.Equal(t, pipeline.MissingMonthZero, opts.MissingMonth)

	_, err = uploadOptions(req("as_of=June"))
	assert.Error(t, err)

	_, err = uploadOptions(req("missing_month=maybe"))
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "file field is required")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file field is required")
}

func TestReportOptionDefaults(t *testing.T) {
	withTestConfig(t)

	assert.Equal(t, "PROJECT_NAME", reportGroupBy(""))
	assert.Equal(t, "PROJECT_MANAGER", reportGroupBy("PROJECT_MANAGER"))
	assert.Equal(t, 5, reportTopN(0))
	assert.Equal(t, 3, reportTopN(3))
}
