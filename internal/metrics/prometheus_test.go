package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/iontrim/internal/trim"
)

func testResult() *trim.Result {
	return &trim.Result{
		Strategy:      trim.NameBulk,
		Summary:       trim.Summary{Total: 10, Inside: 7, Backscattered: 2, Transmitted: 1},
		Elapsed:       300 * time.Millisecond,
		Collisions:    4200,
		Clamped:       3,
		Backscattered: 2,
		Transmitted:   1,
	}
}

func TestRecord(t *testing.T) {
	c := New()
	c.Record(testResult())
	c.Record(testResult())

	assert.Equal(t, 14.0, testutil.ToFloat64(c.ions.WithLabelValues(trim.NameBulk, OutcomeStopped)))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.ions.WithLabelValues(trim.NameBulk, OutcomeBackscattered)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ions.WithLabelValues(trim.NameBulk, OutcomeTransmitted)))
	assert.Equal(t, 8400.0, testutil.ToFloat64(c.collisions.WithLabelValues(trim.NameBulk)))
	assert.Equal(t, 6.0, testutil.ToFloat64(c.clamped.WithLabelValues(trim.NameBulk)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestObserverSetsProgress(t *testing.T) {
	c := New()
	c.Observer().OnProgress(trim.Progress{Done: 25, Total: 100})
	assert.Equal(t, 0.25, testutil.ToFloat64(c.progress))
}

func TestHandler(t *testing.T) {
	c := New()
	c.Record(testResult())

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `iontrim_ions_total{outcome="stopped",strategy="bulk"} 7`)
	assert.Contains(t, string(body), "# TYPE iontrim_run_duration_seconds histogram")
}

func TestWriteTextfile(t *testing.T) {
	c := New()
	c.Record(testResult())

	path := filepath.Join(t.TempDir(), "iontrim.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `iontrim_collisions_total{strategy="bulk"} 4200`))
}
