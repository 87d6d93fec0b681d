package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer_ExposesCollectors(t *testing.T) {
	srv, err := New("panel-test", "127.0.0.1:0")
	require.NoError(t, err)

	// A second server in the same process must not fail on re-registration.
	_, err = New("panel-test", "127.0.0.1:0")
	require.NoError(t, err)

	PublishJobsTotal.WithLabelValues(OutcomeStarted).Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hostkey_panel_publish_jobs_total")
	assert.Contains(t, string(body), `service="panel-test"`)
}
