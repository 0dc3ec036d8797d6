package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/iontrim/internal/config"
	"github.com/san-kum/iontrim/internal/experiment"
	"github.com/san-kum/iontrim/internal/trim"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestProgressUpdatesView(t *testing.T) {
	m := NewModel("B-Si", trim.NameBulk, nil)
	m, cmd := update(t, m, ProgressMsg{Done: 250, Total: 1000, Elapsed: time.Second})
	assert.Nil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "250 / 1000")
	assert.Contains(t, view, "250 ions/s")
	assert.Contains(t, view, "RUNNING")
	assert.Equal(t, 3*time.Second, m.ETA())
}

func TestQuitCancels(t *testing.T) {
	cancelled := false
	m := NewModel("B-Si", trim.NameLoop, func() { cancelled = true })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, cancelled)
	assert.Contains(t, m.View(), "CANCELLED")
}

func TestDoneShowsSummary(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Simulation.Ions = 50
	exp := experiment.New(cfg, nil)
	require.NoError(t, exp.Setup())
	rep, err := exp.Run(context.Background(), nil)
	require.NoError(t, err)

	m := NewModel(rep.Name, rep.Strategy, nil)
	m, cmd := update(t, m, DoneMsg{Report: rep})
	require.NotNil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "DONE")
	assert.Contains(t, view, "50 / 50")
	assert.Contains(t, view, "mean depth")
	assert.False(t, strings.Contains(view, "q: cancel"))
}

func TestDoneWithError(t *testing.T) {
	m := NewModel("B-Si", trim.NameLoop, nil)
	m, _ = update(t, m, DoneMsg{Err: errors.New("boom")})
	view := m.View()
	assert.Contains(t, view, "FAILED")
	assert.Contains(t, view, "boom")
}

func TestETAWithoutRate(t *testing.T) {
	m := NewModel("B-Si", trim.NameLoop, nil)
	assert.Zero(t, m.ETA())
}
