package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/telephone/internal/walker"
)

var _ walker.Recorder = (*Metrics)(nil)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.PassCompleted("fr")
	m.PassCompleted("fr")
	m.PassCompleted("de")
	m.PassFailed("ja")
	m.BackTranslated(true)
	m.BackTranslated(false)
	m.InFlight(1)
	m.InFlight(1)
	m.InFlight(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes.WithLabelValues("fr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.passes.WithLabelValues("de")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("ja")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backTranslations.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestServer_Routes(t *testing.T) {
	m := New()
	m.PassCompleted("fr")
	s := NewServer("127.0.0.1:0", m, nil)

	code, body := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	code, body = get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `telephone_passes_total{lang="fr"} 1`)

	code, _ = get(t, s.Handler(), "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestServer_Progress(t *testing.T) {
	s := NewServer("127.0.0.1:0", New(), nil)

	_, body := get(t, s.Handler(), "/progress")
	var empty ProgressReport
	require.NoError(t, json.Unmarshal([]byte(body), &empty))
	assert.Zero(t, empty.Leaves)

	p := walker.NewProgress(map[string]int{"a": 2, "b": 1})
	s.Track(p, 3, 4)

	_, body = get(t, s.Handler(), "/progress")
	var report ProgressReport
	require.NoError(t, json.Unmarshal([]byte(body), &report))
	assert.Equal(t, 3, report.Leaves)
	assert.Equal(t, 3, report.PassesCompleted)
	assert.Equal(t, 12, report.PassesTotal)
	assert.Equal(t, map[string]int{"Pending": 2}, report.States)
}

func TestServer_StartStop(t *testing.T) {
	s := NewServer("127.0.0.1:0", New(), nil)
	addr, err := s.Start()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.HasPrefix(string(body), "ok"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
