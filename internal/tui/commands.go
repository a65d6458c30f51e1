package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/rsrch/internal/debuglog"
)

var errCanceled = errors.New(MsgCanceled)

type analysisDoneMsg struct {
	seq     int
	answer  string
	err     error
	elapsed time.Duration
}

type rawRenderedMsg struct {
	content string
}

// startAnalysis marks the session busy and returns the command that runs
// the request. Answers from superseded submissions are dropped.
func (a *App) startAnalysis(query string) tea.Cmd {
	if err := a.session.Begin(query); err != nil {
		a.setStatus(err.Error(), StatusWarn)
		return nil
	}

	a.seq++
	ctx, cancel := context.WithCancel(a.ctx)
	a.cancel = cancel
	a.setStatus(MsgAnalyzing, StatusInfo)

	debuglog.WithFields(map[string]interface{}{
		"seq":  a.seq,
		"refs": len(a.articleRefs),
	}).Infof("Submitting query (%d chars)", len(query))

	return tea.Batch(a.spinner.Tick, a.submitQuery(ctx, a.seq, query))
}

func (a *App) submitQuery(ctx context.Context, seq int, query string) tea.Cmd {
	client := a.client
	return func() (msg tea.Msg) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				msg = analysisDoneMsg{seq: seq, err: fmt.Errorf("analysis aborted: %v", r), elapsed: time.Since(start)}
			}
		}()

		answer, err := client.Submit(ctx, query)
		return analysisDoneMsg{seq: seq, answer: answer, err: err, elapsed: time.Since(start)}
	}
}

// cancelAnalysis aborts the in-flight request, if any, and clears the
// loading state.
func (a *App) cancelAnalysis() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.session.Loading() {
		a.seq++
		a.session.Complete("", errCanceled)
	}
}

// renderRaw renders the unmodified answer as markdown. The renderer is
// resolved before the command runs so the App is not touched off the UI loop.
func (a *App) renderRaw(answer string) tea.Cmd {
	r, err := a.getRenderer()
	if err != nil {
		content := wrapErr("initializing renderer", err).Error()
		return func() tea.Msg { return rawRenderedMsg{content: content} }
	}

	return func() tea.Msg {
		rendered, err := r.Render(answer)
		if err != nil {
			debuglog.Warnf("Raw render failed: %v", err)
			return rawRenderedMsg{content: answer}
		}
		return rawRenderedMsg{content: rendered}
	}
}
