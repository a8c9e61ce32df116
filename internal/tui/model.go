package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/edugenius/internal/assistant"
	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/catalog"
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/logging"
	"github.com/csheth/edugenius/internal/markdown"
	"github.com/csheth/edugenius/internal/material"
	"github.com/csheth/edugenius/internal/settings"
)

// Config wires the terminal UI to the core packages. Every field is optional:
// without LLM submissions report a configuration error, without Settings the
// defaults live in memory.
type Config struct {
	LLM           llm.Client
	Settings      *settings.Store
	History       *history.Log
	Auth          *auth.Authenticator
	MaterialPath  string
	Loader        material.Loader
	Interstitial  time.Duration
	RenderOptions markdown.Options
}

type model struct {
	config Config
	orch   *assistant.Orchestrator
	jobs   *jobBus
	layout pageLayout

	stage    stage
	focus    focus
	showHelp bool

	settings settings.Settings
	subject  string
	modeIdx  int
	langIdx  int
	material *material.Package

	composer      textarea.Model
	viewport      viewport.Model
	spinner       spinner.Model
	searchInput   textinput.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	subjectInput  textinput.Model

	// seq identifies the current submission; stale ticks and results are dropped.
	seq       int
	countdown time.Duration
	tickEvery time.Duration
	state     assistant.State

	viewportDirty   bool
	viewportContent string
	lineCount       int
	headingLines    []int

	searchQuery    string
	searchMatches  []matchRange
	searchMatchIdx int

	history      []history.Entry
	historyTotal int
	activeJobs   map[string]jobSnapshot

	session     auth.Session
	adminCursor int

	infoMessage  string
	errorMessage string
}

// New builds the root bubbletea model.
func New(cfg Config) tea.Model {
	composer := textarea.New()
	composer.Placeholder = composerPlaceholder
	composer.ShowLineNumbers = false
	composer.CharLimit = 4000
	composer.SetHeight(composerLines)
	composer.SetWidth(80)
	composer.KeyMap.InsertNewline = key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "new line"),
	)
	composer.Focus()

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search the answer"
	search.CharLimit = 200

	email := textinput.New()
	email.Prompt = "Email    "
	email.Placeholder = "admin@example.com"
	email.CharLimit = 254

	password := textinput.New()
	password.Prompt = "Password "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	subjectInput := textinput.New()
	subjectInput.Prompt = "Subject  "
	subjectInput.Placeholder = "e.g. Economics"
	subjectInput.CharLimit = 60

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &model{
		config:         cfg,
		jobs:           newJobBus(),
		layout:         newPageLayout(),
		composer:       composer,
		viewport:       viewport.New(80, 20),
		spinner:        spin,
		searchInput:    search,
		emailInput:     email,
		passwordInput:  password,
		subjectInput:   subjectInput,
		searchMatchIdx: -1,
		activeJobs:     map[string]jobSnapshot{},
		settings:       settings.Default(),
		viewportDirty:  true,
	}
	if cfg.Settings != nil {
		m.settings = cfg.Settings.Current()
	}
	m.subject = m.settings.FallbackSubject(catalog.DefaultSubject)

	if cfg.LLM != nil {
		opts := []assistant.Option{
			assistant.WithInterstitial(m.interstitialEnabled, cfg.Interstitial),
			assistant.WithLogger(logging.Logger()),
			assistant.WithRenderOptions(cfg.RenderOptions),
		}
		if cfg.History != nil {
			opts = append(opts, assistant.WithRecorder(cfg.History))
		}
		m.orch = assistant.New(cfg.LLM, opts...)
	}
	return m
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.config.MaterialPath != "" {
		m.infoMessage = "Loading reference material…"
		cmds = append(cmds, m.jobs.Start(jobKindMaterial, loadMaterialJob(m.config.Loader, material.NewBuilder(nil), m.config.MaterialPath)))
	}
	if m.config.History != nil {
		cmds = append(cmds, m.jobs.Start(jobKindHistory, loadHistoryJob(m.config.History)))
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height, m.settings.Ads.Sidebar.Active)
		m.applyLayout()
		return m, nil
	case spinner.TickMsg:
		if m.state.Phase != assistant.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.markViewportDirty()
		return m, cmd
	case jobSignalMsg:
		m.activeJobs[msg.Snapshot.ID] = msg.Snapshot
		return m, nil
	case jobResultEnvelope:
		delete(m.activeJobs, msg.Snapshot.ID)
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case interstitialTickMsg:
		return m, m.handleInterstitialTick(msg)
	case askResultMsg:
		return m, m.handleAskResult(msg)
	case materialResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("Reference material unavailable: %v", msg.err)
			m.infoMessage = ""
			return m, nil
		}
		m.material = msg.pkg
		m.infoMessage = fmt.Sprintf("Reference material ready: %s (%d passages).", msg.pkg.Source, len(msg.pkg.Chunks))
		m.markViewportDirty()
		return m, nil
	case historyResultMsg:
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("history unavailable: %v", msg.err)
			return m, nil
		}
		m.history = msg.recent
		m.historyTotal = msg.total
		m.markViewportDirty()
		return m, nil
	case settingsResultMsg:
		m.handleSettingsResult(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.stage == stageCompose && m.focus == focusComposer {
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) applyLayout() {
	m.viewport.Width = m.layout.viewportWidth
	m.viewport.Height = m.layout.viewportHeight
	m.composer.SetWidth(m.layout.composerWidth)
	m.markViewportDirty()
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.jobs.Stop()
		return m, tea.Quit
	}
	switch m.stage {
	case stageSearch:
		return m.handleSearchKey(msg)
	case stageAdminLogin:
		return m.handleLoginKey(msg)
	case stageAdmin:
		return m.handleAdminKey(msg)
	case stageAdminAddSubject:
		return m.handleAddSubjectKey(msg)
	}
	return m.handleComposeKey(msg)
}

func (m *model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.Interstitial && msg.Type == tea.KeyEsc {
		m.cancelInterstitial()
		return m, nil
	}
	switch msg.String() {
	case "ctrl+a":
		return m, m.openAdmin()
	case "tab":
		return m, m.cycleFocus(1)
	case "shift+tab":
		return m, m.cycleFocus(-1)
	case "esc":
		switch {
		case m.showHelp:
			m.showHelp = false
		case m.searchQuery != "":
			m.clearSearch()
			m.infoMessage = "Cleared search filter."
		case m.focus != focusComposer:
			return m, m.setFocus(focusComposer)
		default:
			m.composer.Reset()
		}
		return m, nil
	}

	if m.focus == focusComposer {
		if msg.Type == tea.KeyEnter && !msg.Alt {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.composer, cmd = m.composer.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "enter":
		return m, m.setFocus(focusComposer)
	}
	if m.focus == focusAnswer {
		return m.handleAnswerKey(msg)
	}
	switch msg.String() {
	case "left", "h":
		m.cyclePicker(-1)
	case "right", "l", " ":
		m.cyclePicker(1)
	}
	return m, nil
}

func (m *model) handleAnswerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.viewport.LineUp(1)
	case "down", "j":
		m.viewport.LineDown(1)
	case "pgup", "b":
		m.viewport.HalfViewUp()
	case "pgdown", "f":
		m.viewport.HalfViewDown()
	case "g", "home":
		m.viewport.GotoTop()
	case "G", "end":
		m.viewport.GotoBottom()
	case "]":
		m.jumpHeading(1)
	case "[":
		m.jumpHeading(-1)
	case "/":
		if m.state.Phase != assistant.PhaseSucceeded {
			m.infoMessage = "Search is available once an answer arrives."
			return m, nil
		}
		m.stage = stageSearch
		m.searchInput.SetValue(m.searchQuery)
		return m, m.searchInput.Focus()
	case "n":
		m.advanceSearch(1)
	case "N":
		m.advanceSearch(-1)
	}
	return m, nil
}

func (m *model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stage = stageCompose
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.stage = stageCompose
		m.applySearch(m.searchInput.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *model) setFocus(target focus) tea.Cmd {
	m.focus = target
	if target == focusComposer {
		return m.composer.Focus()
	}
	m.composer.Blur()
	return nil
}

func (m *model) cycleFocus(delta int) tea.Cmd {
	idx := 0
	for i, f := range focusOrder {
		if f == m.focus {
			idx = i
			break
		}
	}
	return m.setFocus(focusOrder[wrapIndex(idx+delta, len(focusOrder))])
}

func (m *model) cyclePicker(delta int) {
	switch m.focus {
	case focusSubject:
		subjects := m.settings.Subjects
		if len(subjects) == 0 {
			return
		}
		idx := 0
		for i, sub := range subjects {
			if sub.ID == m.subject {
				idx = i
				break
			}
		}
		m.subject = subjects[wrapIndex(idx+delta, len(subjects))].ID
	case focusMode:
		m.modeIdx = wrapIndex(m.modeIdx+delta, len(catalog.Modes()))
	case focusLanguage:
		m.langIdx = wrapIndex(m.langIdx+delta, len(catalog.Languages()))
	}
	m.markViewportDirty()
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func (m *model) currentMode() catalog.Mode {
	return catalog.Modes()[m.modeIdx]
}

func (m *model) currentLanguage() string {
	return catalog.Languages()[m.langIdx]
}

func (m *model) interstitialEnabled() bool {
	return m.settings.Ads.AdMob.InterstitialActive
}

func (m *model) buildRequest() llm.Request {
	mode := m.currentMode().ID
	return llm.Request{
		Subject:  m.subject,
		Mode:     mode,
		Query:    m.composer.Value(),
		Language: m.currentLanguage(),
		Material: m.material.ForMode(mode),
	}
}

// submit hands the composed query to the orchestrator. An empty query and a
// submission while another is outstanding leave every state untouched.
func (m *model) submit() tea.Cmd {
	if m.orch == nil {
		m.errorMessage = noProviderMessage
		return nil
	}
	delay, err := m.orch.Begin(m.buildRequest())
	switch {
	case errors.Is(err, assistant.ErrEmptyQuery):
		return nil
	case errors.Is(err, assistant.ErrBusy):
		m.infoMessage = "Hold on, the current answer is still on its way."
		return nil
	case err != nil:
		m.errorMessage = err.Error()
		return nil
	}
	m.seq++
	m.errorMessage = ""
	m.state = m.orch.Snapshot()
	if delay > 0 {
		m.countdown = delay
		m.tickEvery = time.Second
		if delay < m.tickEvery {
			m.tickEvery = delay
		}
		m.infoMessage = "Sponsored break. Your answer is being prepared."
		return interstitialTickCmd(m.seq, m.tickEvery)
	}
	return m.startAsk()
}

func (m *model) handleInterstitialTick(msg interstitialTickMsg) tea.Cmd {
	if msg.seq != m.seq || !m.state.Interstitial {
		return nil
	}
	m.countdown -= m.tickEvery
	if m.countdown > 0 {
		return interstitialTickCmd(m.seq, m.tickEvery)
	}
	return m.startAsk()
}

func (m *model) cancelInterstitial() {
	m.orch.Abandon()
	m.seq++
	m.countdown = 0
	m.state = m.orch.Snapshot()
	m.infoMessage = "Submission cancelled."
	m.markViewportDirty()
}

func (m *model) startAsk() tea.Cmd {
	req, err := m.orch.Start()
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.state = m.orch.Snapshot()
	m.infoMessage = ""
	m.clearSearch()
	m.viewport.GotoTop()
	m.markViewportDirty()
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindAsk, askJob(m.orch, req, m.seq)))
}

func (m *model) handleAskResult(msg askResultMsg) tea.Cmd {
	if msg.seq != m.seq {
		return nil
	}
	result, err := m.orch.Resolve(msg.resp, msg.err)
	if errors.Is(err, assistant.ErrNotPending) {
		return nil
	}
	m.state = m.orch.Snapshot()
	m.viewport.GotoTop()
	m.markViewportDirty()
	if err != nil {
		m.errorMessage = m.state.Message
		m.infoMessage = ""
		return nil
	}
	m.errorMessage = ""
	m.composer.Reset()
	m.infoMessage = fmt.Sprintf("Answered in %s. Tab to the answer to scroll; [ and ] jump between headings.", result.Took.Round(100*time.Millisecond))
	if m.config.History != nil {
		return m.jobs.Start(jobKindHistory, loadHistoryJob(m.config.History))
	}
	return nil
}

func (m *model) jumpHeading(delta int) {
	if len(m.headingLines) == 0 {
		m.infoMessage = "This answer has no headings."
		return
	}
	current := m.viewport.YOffset
	target := -1
	if delta > 0 {
		for _, line := range m.headingLines {
			if line > current {
				target = line
				break
			}
		}
	} else {
		for i := len(m.headingLines) - 1; i >= 0; i-- {
			if m.headingLines[i] < current {
				target = m.headingLines[i]
				break
			}
		}
	}
	if target < 0 {
		m.infoMessage = "No more headings in that direction."
		return
	}
	m.viewport.SetYOffset(m.clampYOffset(target))
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if m.viewportDirty {
		m.refreshViewport()
	}
}

func (m *model) refreshViewport() {
	m.viewportDirty = false
	prevYOffset := m.viewport.YOffset
	cb := &contentBuilder{}
	m.headingLines = nil
	switch m.state.Phase {
	case assistant.PhaseLoading:
		cb.WriteString(helperStyle.Render(fmt.Sprintf("%s Consulting Global Academy on %s…", m.spinner.View(), m.state.Request.Subject)))
		cb.WriteRune('\n')
	case assistant.PhaseSucceeded:
		m.headingLines = writeAnswer(cb, m.state.Response.Title, m.state.Blocks, m.wrapWidth(2))
	case assistant.PhaseFailed:
		cb.WriteString(errorStyle.Render(wordwrap.String(m.state.Message, m.wrapWidth(2))))
		cb.WriteRune('\n')
	default:
		m.writeIdle(cb)
	}

	content := cb.String()
	m.viewportContent = content
	if m.searchQuery != "" {
		m.searchMatches = findMatches(content, m.searchQuery)
		if len(m.searchMatches) == 0 {
			m.searchMatchIdx = -1
		} else if m.searchMatchIdx < 0 || m.searchMatchIdx >= len(m.searchMatches) {
			m.searchMatchIdx = 0
		}
		content = highlightMatches(content, m.searchMatches, m.searchMatchIdx)
	} else {
		m.searchMatches = nil
		m.searchMatchIdx = -1
	}
	m.lineCount = strings.Count(content, "\n") + 1
	m.viewport.SetContent(content)
	m.viewport.SetYOffset(m.clampYOffset(prevYOffset))
	if len(m.searchMatches) > 0 && m.searchMatchIdx >= 0 {
		m.scrollToCurrentMatch()
	}
}

func (m *model) writeIdle(cb *contentBuilder) {
	mode := m.currentMode()
	wrap := m.wrapWidth(2)
	cb.WriteString(sectionHeaderStyle.Render("Ask the Global Academy"))
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render(wordwrap.String(fmt.Sprintf("%s: %s", mode.Label, mode.Description), wrap)))
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render(wordwrap.String("Type a question below and press Enter. Tab moves between subject, mode, language and the answer.", wrap)))
	cb.WriteRune('\n')
	if !m.material.Empty() {
		cb.WriteString(helperStyle.Render(fmt.Sprintf("Reference material: %s (%d passages)", m.material.Source, len(m.material.Chunks))))
		cb.WriteRune('\n')
	}
	if len(m.history) == 0 {
		return
	}
	cb.WriteRune('\n')
	cb.WriteString(sectionHeaderStyle.Render(fmt.Sprintf("Recent questions (%d saved)", m.historyTotal)))
	cb.WriteRune('\n')
	for _, entry := range m.history {
		line := fmt.Sprintf(" • %s  [%s] %s", entry.AskedAt.Local().Format("02 Jan 15:04"), entry.Subject, previewText(entry.Query, wrap-30))
		cb.WriteString(line)
		cb.WriteRune('\n')
	}
}

func (m *model) applySearch(query string) {
	query = strings.TrimSpace(query)
	m.searchInput.Blur()
	m.searchQuery = query
	if query == "" {
		m.searchInput.SetValue("")
	}
	m.searchMatchIdx = 0
	m.markViewportDirty()
	m.refreshViewportIfDirty()
	switch {
	case query == "":
		m.infoMessage = "Cleared search filter."
	case len(m.searchMatches) == 0:
		m.infoMessage = fmt.Sprintf("No matches for %q.", query)
	default:
		m.infoMessage = fmt.Sprintf("Match 1/%d for %q. n and N cycle.", len(m.searchMatches), query)
	}
}

func (m *model) clearSearch() {
	m.searchQuery = ""
	m.searchMatches = nil
	m.searchMatchIdx = -1
	m.searchInput.SetValue("")
	m.searchInput.Blur()
	m.markViewportDirty()
}

func (m *model) advanceSearch(delta int) {
	if m.searchQuery == "" {
		m.infoMessage = "Start a search with / first."
		return
	}
	if len(m.searchMatches) == 0 {
		m.infoMessage = fmt.Sprintf("No matches for %q.", m.searchQuery)
		return
	}
	count := len(m.searchMatches)
	m.searchMatchIdx = wrapIndex(m.searchMatchIdx+delta, count)
	m.infoMessage = fmt.Sprintf("Match %d/%d for %q.", m.searchMatchIdx+1, count, m.searchQuery)
	m.markViewportDirty()
	m.refreshViewportIfDirty()
}

func (m *model) scrollToCurrentMatch() {
	if m.searchMatchIdx < 0 || m.searchMatchIdx >= len(m.searchMatches) {
		return
	}
	line := lineNumberAtOffset(m.viewportContent, m.searchMatches[m.searchMatchIdx].start)
	m.viewport.SetYOffset(m.clampYOffset(line - 1))
}
