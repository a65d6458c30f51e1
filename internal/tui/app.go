package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/rsrch/internal/analysis"
	"github.com/pders01/rsrch/internal/config"
	"github.com/pders01/rsrch/internal/debuglog"
	"github.com/pders01/rsrch/internal/plugins"
	"github.com/pders01/rsrch/internal/render"
	"github.com/pders01/rsrch/internal/session"
	"github.com/pders01/rsrch/internal/validation"
)

// chrome is the number of lines taken by the header and the status bar.
const chrome = 5

type App struct {
	ctx             context.Context
	cancel          context.CancelFunc
	config          *config.Config
	client          analysis.Submitter
	session         *session.State
	keyHandler      *KeyHandler
	urlValidator    *validation.URLValidator
	sources         *plugins.Registry
	palette         render.Palette
	textarea        textarea.Model
	spinner         spinner.Model
	viewport        viewport.Model
	help            help.Model
	view            View
	articleRefs     []validation.ArticleRef
	seq             int // Identifies the in-flight submission
	status          string
	statusKind      StatusKind
	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func NewApp(client analysis.Submitter, cfg *config.Config) *App {
	ta := textarea.New()
	ta.Placeholder = QueryPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = validation.MaxQueryLength
	ta.MaxHeight = 0
	ta.SetHeight(6)
	ta.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
	)

	app := &App{
		ctx:          context.Background(),
		config:       cfg,
		client:       client,
		session:      session.New(),
		urlValidator: validation.NewArticleURLValidator(),
		sources:      plugins.DefaultRegistry(),
		palette:      render.DefaultPalette().WithColors(cfg.UI.Tags.Map()),
		textarea:     ta,
		spinner:      sp,
		viewport:     viewport.New(0, 0),
		help:         help.New(),
		view:         ViewCompose,
	}

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// wrapWidth is the text width used for results and the raw view.
func (a *App) wrapWidth() int {
	maxWidth := a.config.UI.Result.WordWrapMaxWidth
	minWidth := a.config.UI.Result.WordWrapMinWidth

	w := (a.width * 9) / 10
	if maxWidth > 0 && w > maxWidth {
		w = maxWidth
	}
	if w < minWidth {
		w = minWidth
	}
	if a.width < 50 {
		w = a.width - 4
		if w < 20 {
			w = 20
		}
	}
	return w
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := a.wrapWidth()

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case analysisDoneMsg:
		a.finishAnalysis(msg)
		return a, nil

	case rawRenderedMsg:
		if a.view == ViewRaw {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
			a.setStatus("", StatusInfo)
		}
		return a, nil

	case spinner.TickMsg:
		if !a.session.Loading() {
			return a, nil
		}
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	switch a.view {
	case ViewCompose:
		a.textarea, cmd = a.textarea.Update(msg)
	case ViewResults, ViewRaw:
		a.viewport, cmd = a.viewport.Update(msg)
	}
	return a, cmd
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.help.Width = width

	inputWidth := width - 6
	if inputWidth < 20 {
		inputWidth = width
	}
	a.textarea.SetWidth(inputWidth)

	inputHeight := (height - chrome) / 3
	if inputHeight < 3 {
		inputHeight = 3
	}
	if inputHeight > 12 {
		inputHeight = 12
	}
	a.textarea.SetHeight(inputHeight)

	a.viewport.Width = width
	a.viewport.Height = a.bodyHeight()

	if a.view == ViewResults {
		a.viewport.SetContent(a.resultContent())
	}
}

func (a *App) bodyHeight() int {
	h := a.height - chrome
	if h < 3 {
		h = 3
	}
	return h
}

func (a *App) finishAnalysis(msg analysisDoneMsg) {
	if msg.seq != a.seq || !a.session.Loading() {
		debuglog.Debugf("Dropping stale analysis result (seq %d, current %d)", msg.seq, a.seq)
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	a.session.Complete(msg.answer, msg.err)
	if msg.err != nil {
		debuglog.Warnf("Analysis failed after %s: %v", msg.elapsed, msg.err)
		a.setStatus(MsgAnalysisFailed, StatusError)
	} else {
		debuglog.Infof("Analysis finished in %s (%d bytes)", msg.elapsed, len(msg.answer))
		a.setStatus(MsgElapsed(msg.elapsed), StatusSuccess)
	}

	a.textarea.Blur()
	a.showResults()
}

func (a *App) showResults() {
	a.view = ViewResults
	a.viewport.SetContent(a.resultContent())
	a.viewport.GotoTop()
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = text
	a.statusKind = kind
}

// resultContent renders the outcome of the last submission.
func (a *App) resultContent() string {
	width := a.wrapWidth()

	switch {
	case a.session.HasError():
		return renderErrorPanel(a.session.Err(), width)

	case a.session.HasResult():
		blocks := a.session.Blocks()
		title := a.palette.Title.Lipgloss().Render(ResultsTitle)
		if len(blocks) == 0 {
			return lipgloss.JoinVertical(lipgloss.Left, title, "", renderMuted(MsgNoFindings))
		}
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			renderMuted(render.Summary(blocks)),
			render.Legend(a.palette),
			"",
			render.Terminal(blocks, a.palette, width),
		)

	case a.session.Query() != "" && !a.session.Loading():
		title := a.palette.Title.Lipgloss().Render(ResultsTitle)
		return lipgloss.JoinVertical(lipgloss.Left, title, "", renderMuted(MsgNoFindings))

	default:
		return ""
	}
}

func (a *App) View() string {
	var subtitle string
	switch a.view {
	case ViewCompose:
		subtitle = MsgSubmitPrompt
	case ViewResults:
		subtitle = "results"
	case ViewRaw:
		subtitle = "raw answer"
	}
	header := renderHeader(CompactLogo+" "+Tagline, subtitle, a.width)

	var content string
	switch a.view {
	case ViewCompose:
		content = a.composeView()
	case ViewResults:
		if a.session.Loading() {
			content = renderCentered(a.width, a.bodyHeight(), a.spinner.View()+" "+MsgAnalyzing)
		} else {
			content = a.viewport.View()
		}
	case ViewRaw:
		content = a.viewport.View()
	}

	if a.height > chrome {
		content = lipgloss.NewStyle().
			Height(a.bodyHeight()).
			MaxHeight(a.bodyHeight()).
			Render(content)
	}

	separatorWidth := a.width
	if separatorWidth < 1 {
		separatorWidth = 1
	}
	separator := SeparatorStyle.Render(strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Left, header, "", content, separator, a.getCustomStatusBar())
}

func (a *App) composeView() string {
	rows := []string{renderInputFrame(a.textarea.View(), a.textarea.Focused(), a.textarea.Width())}

	if refs := a.renderArticleRefs(); refs != "" {
		rows = append(rows, refs)
	}

	rows = append(rows, "")
	if a.session.Loading() {
		rows = append(rows, ButtonLoadingStyle.Render(a.spinner.View()+" "+MsgAnalyzing))
	} else {
		submit := a.keyHandler.keys.Submit.Help().Key
		rows = append(rows, ButtonStyle.Render(SubmitButtonLabel)+" "+renderHelp(submit))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderArticleRefs() string {
	if len(a.articleRefs) == 0 {
		return ""
	}

	limit := a.width - 8
	if limit < 20 {
		limit = 20
	}

	rows := []string{renderMuted(MsgArticleCount(len(a.articleRefs)))}
	for _, ref := range a.articleRefs {
		if ref.OK() {
			line := "  ↳ " + truncateMiddle(ref.URL, limit)
			if info, err := a.sources.Describe(ref.URL); err == nil {
				line = "  ↳ " + info.Label() + " · " + truncateMiddle(ref.URL, limit-len(info.Label())-3)
			}
			rows = append(rows, renderMuted(line))
			continue
		}
		rows = append(rows, StatusWarnStyle.Render("  ✗ "+truncateMiddle(ref.URL, limit/2)+": "+ref.Err.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) getCustomStatusBar() string {
	bindings := a.keyHandler.GetHelpForCurrentView()

	var parts []string
	if a.status != "" {
		parts = append(parts, a.statusKind.style().Render(a.status))
	}
	if len(bindings) > 0 {
		parts = append(parts, helpText(bindings))
	}

	line := StatusBarStyle.Width(a.width).Render(strings.Join(parts, " │ "))
	if a.help.ShowAll {
		return lipgloss.JoinVertical(lipgloss.Left, line, a.help.FullHelpView(a.keyHandler.keys.FullHelp()))
	}
	return line
}
