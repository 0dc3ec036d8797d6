package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/iontrim/internal/experiment"
	"github.com/san-kum/iontrim/internal/trim"
	"github.com/san-kum/iontrim/internal/viz"
)

const (
	barWidth  = 48
	plotWidth = 60
)

type ProgressMsg trim.Progress

type DoneMsg struct {
	Report *experiment.Report
	Err    error
}

// Model shows a running batch: progress bar, throughput and, once the batch
// is done, the summary and depth profile.
type Model struct {
	title    string
	strategy string
	bar      progress.Model
	prog     trim.Progress
	report   *experiment.Report
	err      error
	cancel   context.CancelFunc
	rates    []int64
	width    int
	quitting bool
}

func NewModel(title, strategy string, cancel context.CancelFunc) Model {
	return Model{
		title:    title,
		strategy: strategy,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		cancel:   cancel,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(barWidth, max(10, msg.Width-20))
	case ProgressMsg:
		m.prog = trim.Progress(msg)
		m.rates = append(m.rates, int64(m.prog.Rate()))
		if len(m.rates) > plotWidth {
			m.rates = m.rates[1:]
		}
	case DoneMsg:
		m.report, m.err = msg.Report, msg.Err
		if m.report != nil {
			r := m.report.Result
			m.prog = trim.Progress{Done: r.Batch.Len(), Total: r.Batch.Len(), Elapsed: r.Elapsed}
		}
		return m, tea.Quit
	}
	return m, nil
}

// ETA extrapolates the remaining time from the current rate.
func (m Model) ETA() time.Duration {
	rate := m.prog.Rate()
	if rate <= 0 || m.prog.Done >= m.prog.Total {
		return 0
	}
	left := float64(m.prog.Total-m.prog.Done) / rate
	return time.Duration(left * float64(time.Second)).Round(100 * time.Millisecond)
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return viz.StatusFailed.Render("FAILED")
	case m.report != nil:
		return viz.StatusDone.Render("DONE")
	case m.quitting:
		return viz.StatusFailed.Render("CANCELLED")
	}
	return viz.StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(viz.Title.Render(strings.ToUpper(m.title)) + "  " + viz.Subtle.Render(m.strategy) + "  " + m.status() + "\n\n")
	s.WriteString(m.bar.ViewAs(m.prog.Ratio()) + "\n\n")
	s.WriteString(viz.Row("ions", fmt.Sprintf("%d / %d", m.prog.Done, m.prog.Total)) + "\n")
	s.WriteString(viz.Row("elapsed", m.prog.Elapsed.Round(time.Millisecond).String()) + "\n")
	s.WriteString(viz.Row("rate", fmt.Sprintf("%.0f ions/s", m.prog.Rate())) + "\n")
	if m.report == nil && m.err == nil {
		s.WriteString(viz.Row("eta", m.ETA().String()) + "\n")
		if len(m.rates) > 1 {
			s.WriteString("\n" + viz.Sparkline(m.rates) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + viz.Warning.Render(m.err.Error()) + "\n")
	}

	body := s.String()
	if m.report != nil {
		summary := viz.RenderSummary("Summary", m.report.Result.Summary)
		plot := viz.DepthPlot(m.report.Histogram, 10, plotWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, body, summary, plot)
	}

	if m.report == nil && m.err == nil {
		body += "\n" + viz.KeyHint.Render("q: cancel")
	}
	return viz.Panel.Render(body) + "\n"
}

// Run executes the experiment while rendering its progress. Quitting the
// view cancels the batch.
func Run(ctx context.Context, exp *experiment.Experiment, opts ...tea.ProgramOption) (*experiment.Report, error) {
	built := exp.Built()
	if built == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(built.Name, built.Strategy, cancel), opts...)

	done := make(chan DoneMsg, 1)
	go func() {
		obs := trim.ObserverFunc(func(pr trim.Progress) { p.Send(ProgressMsg(pr)) })
		rep, err := exp.Run(ctx, obs)
		msg := DoneMsg{Report: rep, Err: err}
		done <- msg
		p.Send(msg)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	cancel()
	res := <-done
	return res.Report, res.Err
}
