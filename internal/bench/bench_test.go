package bench

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/iontrim/internal/config"
	"github.com/san-kum/iontrim/internal/experiment"
	"github.com/san-kum/iontrim/internal/trim"
)

func TestSummarize(t *testing.T) {
	res := summarize("B-Si", trim.NameLoop, 100, []float64{0.2, 0.1, 0.3})
	assert.InDelta(t, 0.2, res.Mean, 1e-12)
	assert.Equal(t, 0.1, res.Min)
	assert.Equal(t, 0.3, res.Max)
	assert.InDelta(t, 500, res.IonsPerSecond, 1e-9)
	assert.Equal(t, 3, res.Iterations)
}

func TestRunnerMeasuresEveryPair(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := Options{
		Strategies: []string{trim.NameLoop, trim.NameParallelBulk},
		Counts:     []int{4, 8},
		Iterations: 2,
		Workers:    2,
	}

	var seen int
	results, err := NewRunner(cfg, nil).Run(context.Background(), opts, func(Result) { seen++ })
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, 4, seen)

	for _, r := range results {
		assert.Equal(t, "B-Si", r.Name)
		assert.Equal(t, 2, r.Iterations)
		assert.LessOrEqual(t, r.Min, r.Mean)
		assert.LessOrEqual(t, r.Mean, r.Max)
	}
	assert.Equal(t, trim.NameParallelBulk, results[3].Strategy)
	assert.Equal(t, 8, results[3].Ions)
}

func TestRunnerRejectsBadOptions(t *testing.T) {
	r := NewRunner(config.DefaultConfig(), nil)

	_, err := r.Run(context.Background(), Options{Counts: []int{4}}, nil)
	assert.Error(t, err)

	_, err = r.Run(context.Background(), Options{Strategies: []string{"numba"}, Counts: []int{4}, Iterations: 1}, nil)
	assert.ErrorIs(t, err, experiment.ErrUnknownStrategy)
}

func TestHistoryAppendList(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "data", HistoryFile))
	require.NoError(t, err)
	defer h.Close()

	now := time.Now()
	batch := []Result{
		{Name: "B-Si", Strategy: trim.NameLoop, Ions: 100, Iterations: 5, Mean: 0.5, Min: 0.4, Max: 0.6, IonsPerSecond: 200, Timestamp: now},
		{Name: "B-Si", Strategy: trim.NameBulk, Ions: 100, Iterations: 5, Mean: 0.2, Min: 0.1, Max: 0.3, IonsPerSecond: 500, Timestamp: now},
		{Name: "He-Au", Strategy: trim.NameLoop, Ions: 10, Iterations: 1, Mean: 0.1, Min: 0.1, Max: 0.1, IonsPerSecond: 100, Timestamp: now},
	}
	session, err := h.Append(context.Background(), batch)
	require.NoError(t, err)
	assert.NotEmpty(t, session)

	all, err := h.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, trim.NameBulk, all[1].Strategy)
	assert.Equal(t, now.UnixNano(), all[1].Timestamp.UnixNano())

	bsi, err := h.List(context.Background(), "B-Si")
	require.NoError(t, err)
	assert.Len(t, bsi, 2)
}

func TestHistoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), HistoryFile)
	h, err := OpenHistory(path)
	require.NoError(t, err)
	_, err = h.Append(context.Background(), []Result{{Name: "x", Strategy: trim.NameLoop, Ions: 1, Iterations: 1, Timestamp: time.Now()}})
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h, err = OpenHistory(path)
	require.NoError(t, err)
	defer h.Close()
	rows, err := h.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSeries(t *testing.T) {
	counts, times := Series([]Result{
		{Strategy: trim.NameLoop, Ions: 1000, Mean: 2},
		{Strategy: trim.NameLoop, Ions: 100, Mean: 0.2},
		{Strategy: trim.NameLoop, Ions: 1000, Mean: 4},
		{Strategy: trim.NameBulk, Ions: 100, Mean: 0.1},
	})
	assert.Equal(t, []int{100, 1000}, counts)
	assert.Equal(t, []float64{0.2, 3}, times[trim.NameLoop])
	assert.Equal(t, []float64{0.1, 0}, times[trim.NameBulk])
}
