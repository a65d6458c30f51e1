package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/rsrch/internal/config"
	"github.com/pders01/rsrch/internal/validation"
)

type keyMap struct {
	Submit key.Binding
	Raw    key.Binding
	Clear  key.Binding
	Focus  key.Binding
	Back   key.Binding
	Help   key.Binding
	Quit   key.Binding
	Scroll key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Focus, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Raw, k.Clear},
		{k.Focus, k.Back, k.Scroll},
		{k.Help, k.Quit},
	}
}

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings

	chord := func(k string) string {
		if len(k) == 1 {
			return modifierKey + k
		}
		return k
	}

	quit := chord(b.Quit)
	quitKeys := []string{quit}
	if quit != "ctrl+c" {
		quitKeys = append(quitKeys, "ctrl+c")
	}

	keys := keyMap{
		Submit: key.NewBinding(key.WithKeys(chord(b.Submit)), key.WithHelp(chord(b.Submit), "analyze")),
		Raw:    key.NewBinding(key.WithKeys(chord(b.Raw)), key.WithHelp(chord(b.Raw), "raw")),
		Clear:  key.NewBinding(key.WithKeys(chord(b.Clear)), key.WithHelp(chord(b.Clear), "clear")),
		Focus:  key.NewBinding(key.WithKeys(b.Focus), key.WithHelp(b.Focus, "form/results")),
		Back:   key.NewBinding(key.WithKeys(b.Back), key.WithHelp(b.Back, "back")),
		Help:   key.NewBinding(key.WithKeys(b.Help), key.WithHelp(b.Help, "help")),
		Quit:   key.NewBinding(key.WithKeys(quitKeys...), key.WithHelp(quit, "quit")),
		Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑↓", "scroll")),
	}

	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, keys: keys}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	if kh.isInTextInputMode() {
		return kh.delegateToTextInput(msg)
	}

	if key.Matches(msg, kh.keys.Help) {
		kh.app.help.ShowAll = !kh.app.help.ShowAll
		return kh.app, nil
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewCompose && kh.app.textarea.Focused()
}

// handleCustomKeys handles the action keys that work in every view.
func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, kh.keys.Quit):
		kh.app.cancelAnalysis()
		return kh.app, tea.Quit, true
	case key.Matches(msg, kh.keys.Submit):
		model, cmd := kh.submit()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Clear):
		model, cmd := kh.clear()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Raw):
		model, cmd := kh.toggleRaw()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Focus):
		model, cmd := kh.toggleFocus()
		return model, cmd, true
	case key.Matches(msg, kh.keys.Back):
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) submit() (tea.Model, tea.Cmd) {
	if kh.app.session.Loading() {
		kh.app.setStatus(MsgAlreadyRunning, StatusWarn)
		return kh.app, nil
	}

	query, err := validation.NormalizeQuery(kh.app.textarea.Value())
	if err != nil {
		kh.app.setStatus(err.Error(), StatusWarn)
		return kh.app, nil
	}

	return kh.app, kh.app.startAnalysis(query)
}

func (kh *KeyHandler) clear() (tea.Model, tea.Cmd) {
	kh.app.cancelAnalysis()
	kh.app.session.Reset()
	kh.app.textarea.Reset()
	kh.app.articleRefs = nil
	kh.app.viewport.SetContent("")
	kh.app.view = ViewCompose
	kh.app.setStatus(MsgCleared, StatusInfo)
	return kh.app, kh.app.textarea.Focus()
}

func (kh *KeyHandler) toggleRaw() (tea.Model, tea.Cmd) {
	if kh.app.view == ViewRaw {
		kh.app.showResults()
		return kh.app, nil
	}
	if !kh.app.session.HasResult() {
		kh.app.setStatus(MsgNothingToShow, StatusInfo)
		return kh.app, nil
	}
	kh.app.textarea.Blur()
	kh.app.view = ViewRaw
	kh.app.setStatus(MsgRenderingRaw, StatusInfo)
	return kh.app, kh.app.renderRaw(kh.app.session.Result())
}

func (kh *KeyHandler) toggleFocus() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewCompose:
		if kh.app.session.Query() == "" {
			kh.app.setStatus(MsgNothingToShow, StatusInfo)
			return kh.app, nil
		}
		kh.app.textarea.Blur()
		kh.app.showResults()
		return kh.app, nil
	default:
		kh.app.view = ViewCompose
		return kh.app, kh.app.textarea.Focus()
	}
}

// navigateBack steps raw → results → form. On the form it cancels a running
// analysis.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	switch kh.app.view {
	case ViewRaw:
		kh.app.showResults()
		return kh.app, nil
	case ViewResults:
		kh.app.view = ViewCompose
		return kh.app, kh.app.textarea.Focus()
	default:
		if kh.app.session.Loading() {
			kh.app.cancelAnalysis()
			kh.app.setStatus(MsgCanceled, StatusWarn)
		}
		return kh.app, nil
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.textarea.Value()
	newTextarea, cmd := kh.app.textarea.Update(msg)
	kh.app.textarea = newTextarea

	if value := kh.app.textarea.Value(); value != prev {
		kh.app.articleRefs = kh.app.urlValidator.ArticleRefs(value)
	}
	return kh.app, cmd
}

// delegateToCharm lets the bubbles widgets handle keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewResults, ViewRaw:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
		return kh.app, cmd

	case ViewCompose:
		switch msg.String() {
		case "enter", "i":
			return kh.app, kh.app.textarea.Focus()
		}
		return kh.app, nil

	default:
		return kh.app, nil
	}
}

// GetHelpForCurrentView returns the key bindings relevant to the active view.
func (kh *KeyHandler) GetHelpForCurrentView() []key.Binding {
	switch kh.app.view {
	case ViewCompose:
		bindings := []key.Binding{kh.keys.Submit}
		if kh.app.session.Query() != "" {
			bindings = append(bindings, kh.keys.Focus)
		}
		if kh.app.session.Loading() {
			bindings = append(bindings, kh.keys.Back)
		}
		return append(bindings, kh.keys.Clear, kh.keys.Quit)

	case ViewResults:
		bindings := []key.Binding{kh.keys.Scroll}
		if kh.app.session.HasResult() {
			bindings = append(bindings, kh.keys.Raw)
		}
		return append(bindings, kh.keys.Focus, kh.keys.Clear, kh.keys.Help, kh.keys.Quit)

	case ViewRaw:
		return []key.Binding{kh.keys.Scroll, kh.keys.Raw, kh.keys.Back, kh.keys.Quit}

	default:
		return []key.Binding{}
	}
}

// helpText renders bindings the way the status bar shows them.
func helpText(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
