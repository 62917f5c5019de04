package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopRecorder(t *testing.T) {
	// Must not panic, whatever is thrown at it.
	r := Nop()
	r.Observe("getattr", time.Millisecond, "")
	r.Observe("", 0, "io_error")
}

func TestPrometheusCountsOperations(t *testing.T) {
	p := NewPrometheus("gridnfs")

	p.Observe("getattr", 2*time.Millisecond, "")
	p.Observe("getattr", 3*time.Millisecond, "")
	p.Observe("list", time.Millisecond, "")

	assert.Equal(t, float64(2), testutil.ToFloat64(p.ops.WithLabelValues("getattr")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.ops.WithLabelValues("list")))
}

func TestPrometheusCountsErrors(t *testing.T) {
	p := NewPrometheus("gridnfs")

	p.Observe("create", time.Millisecond, "already_exists")
	p.Observe("create", time.Millisecond, "already_exists")
	p.Observe("create", time.Millisecond, "")

	assert.Equal(t, float64(2),
		testutil.ToFloat64(p.errors.WithLabelValues("create", "already_exists")))
	assert.Equal(t, float64(3), testutil.ToFloat64(p.ops.WithLabelValues("create")))
}

func TestPrometheusHandlerExposesMetrics(t *testing.T) {
	p := NewPrometheus("gridnfs")
	p.Observe("statfs", time.Millisecond, "")

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.True(t, strings.Contains(text, "gridnfs_operations_total"),
		"exposition should contain the operations counter, got:\n%s", text)
}
