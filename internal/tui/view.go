package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/edugenius/internal/assistant"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	switch m.stage {
	case stageAdminLogin, stageAdmin, stageAdminAddSubject:
		return m.frameWithHero(m.adminView())
	}
	if m.showHelp {
		return m.frameWithHero(lipgloss.JoinVertical(lipgloss.Left, m.helpView(), m.keyLegendView()))
	}
	return m.frameWithHero(m.mainView())
}

func (m *model) mainView() string {
	sections := []string{}
	if banner := m.bannerView(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.pickerBar(), "", m.answerPanel(), "")

	if m.stage == stageSearch {
		sections = append(sections, m.searchInput.View())
	} else {
		label := "Your question"
		if m.focus == focusComposer {
			label = "Your question (enter to ask, alt+enter for a new line)"
		}
		sections = append(sections, sectionHeaderStyle.Render(label), m.composer.View())
	}
	sections = append(sections, m.messageLines()...)
	if status := m.searchStatusLine(); status != "" {
		sections = append(sections, helperStyle.Render(status))
	}
	if footer := m.adMobFooter(); footer != "" {
		sections = append(sections, footer)
	}
	sections = append(sections, m.sessionMeterView())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *model) answerPanel() string {
	panel := m.viewport.View()
	if m.state.Interstitial {
		panel = m.interstitialView()
	}
	if !m.settings.Ads.Sidebar.Active {
		return panel
	}
	if m.layout.sidebar {
		return lipgloss.JoinHorizontal(lipgloss.Top, panel, "  ", m.sidebarView())
	}
	compact := adTagStyle.Render("Sponsored") + " " + helperStyle.Render(m.settings.Ads.Sidebar.Title)
	return lipgloss.JoinVertical(lipgloss.Left, panel, compact)
}

func (m *model) interstitialView() string {
	seconds := int(math.Ceil(m.countdown.Seconds()))
	if seconds < 0 {
		seconds = 0
	}
	body := strings.Join([]string{
		adTagStyle.Render("Sponsored"),
		"",
		heroTitleStyle.Render("Your answer is being prepared"),
		helperStyle.Render(fmt.Sprintf("Continuing in %ds", seconds)),
		"",
		helperStyle.Render("AdMob " + m.settings.Ads.AdMob.InterstitialUnitID),
		helperStyle.Render("esc cancels"),
	}, "\n")
	box := interstitialStyle.Render(body)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m *model) bannerView() string {
	banner := m.settings.Ads.Banner
	if !banner.Active || strings.TrimSpace(banner.Text) == "" {
		return ""
	}
	text := banner.Text
	if banner.Link != "" && banner.Link != "#" {
		text += "  →  " + banner.Link
	}
	return bannerStyle.Render(text)
}

func (m *model) sidebarView() string {
	card := m.settings.Ads.Sidebar
	width := sidebarWidth - 4
	lines := []string{
		adTagStyle.Render("Sponsored"),
		heroTitleStyle.Render(wordwrap.String(card.Title, width)),
		helperStyle.Render(wordwrap.String(card.Description, width)),
	}
	if card.Link != "" && card.Link != "#" {
		lines = append(lines, helperStyle.Render(wordwrap.String(card.Link, width)))
	}
	return sidebarBoxStyle.Width(sidebarWidth - 2).Render(strings.Join(lines, "\n"))
}

func (m *model) adMobFooter() string {
	admob := m.settings.Ads.AdMob
	if !admob.BannerActive {
		return ""
	}
	return adTagStyle.Render("Ad") + " " + helperStyle.Render("AdMob banner "+admob.BannerUnitID)
}

func (m *model) pickerBar() string {
	mode := m.currentMode()
	subject := m.subject
	if sub, ok := m.settings.Subject(m.subject); ok {
		subject = sub.Icon + " " + sub.ID
	}
	if subject == "" {
		subject = "No subjects"
	}
	cells := []string{
		m.pickerCell("Subject", subject, focusSubject),
		m.pickerCell("Mode", mode.Label, focusMode),
		m.pickerCell("Language", m.currentLanguage(), focusLanguage),
	}
	return strings.Join(cells, "   ")
}

func (m *model) pickerCell(label, value string, f focus) string {
	if m.stage == stageCompose && m.focus == f {
		return pickerLabelStyle.Render(label+" ") + pickerFocusedStyle.Render("‹ "+value+" ›")
	}
	return pickerLabelStyle.Render(label+" ") + pickerValueStyle.Render(value)
}

func (m *model) messageLines() []string {
	var lines []string
	if m.infoMessage != "" {
		lines = append(lines, helperStyle.Render(m.infoMessage))
	}
	if m.errorMessage != "" {
		lines = append(lines, errorStyle.Render(m.errorMessage))
	}
	return lines
}

func (m *model) searchStatusLine() string {
	if m.searchQuery == "" {
		return ""
	}
	if len(m.searchMatches) == 0 {
		return fmt.Sprintf("Search %q: no matches", m.searchQuery)
	}
	return fmt.Sprintf("Search %q: match %d/%d", m.searchQuery, m.searchMatchIdx+1, len(m.searchMatches))
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		renderLogo(),
		taglineStyle.Render(heroTagline),
	)
}

func (m *model) frameWithHero(body string) string {
	return joinNonEmpty([]string{m.heroView(), body})
}

func (m *model) phaseLabel() string {
	switch {
	case m.orch == nil:
		return "offline"
	case m.state.Interstitial:
		return "sponsored break"
	case m.state.Phase == assistant.PhaseLoading:
		return "thinking…"
	default:
		return m.state.Phase.String()
	}
}

func (m *model) sessionMeterView() string {
	provider := "no provider"
	if m.config.LLM != nil {
		provider = m.config.LLM.Name()
	}
	stats := []string{
		provider,
		m.phaseLabel(),
		fmt.Sprintf("History %d", m.historyTotal),
	}
	if m.settings.Ads.AdMob.AutoAdsActive {
		stats = append(stats, "Auto ads on")
	}
	if n := len(m.activeJobs); n > 0 {
		stats = append(stats, fmt.Sprintf("Jobs %d", n))
	}
	if m.session.Token != "" {
		stats = append(stats, "Admin "+m.session.Email)
	}
	stats = append(stats, "? help • ctrl+a admin • ctrl+c quit")
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"enter", "Ask"},
		{"alt+enter", "New line"},
		{"tab", "Next control"},
		{"←/→", "Change pick"},
		{"↑/↓", "Scroll answer"},
		{"[/]", "Prev/next heading"},
		{"/", "Search answer"},
		{"n/N", "Next match"},
		{"g/G", "Top or bottom"},
		{"esc", "Back or clear"},
		{"ctrl+a", "Admin console"},
		{"?", "Toggle help"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Width(20).Render(" " + hint.Description)
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) helpView() string {
	mode := m.currentMode()
	lines := []string{
		sectionHeaderStyle.Render("How EduGenius works"),
		"Pick a subject, an output mode and an answer language, then type your question.",
		"Answers arrive formatted with headings, bullet points and numbered steps.",
		"",
		sectionHeaderStyle.Render("Current mode"),
		fmt.Sprintf("%s: %s", mode.Label, mode.Description),
	}
	if !m.material.Empty() {
		lines = append(lines, "", sectionHeaderStyle.Render("Reference material"),
			fmt.Sprintf("%s is attached to every question (%d passages).", m.material.Source, len(m.material.Chunks)))
	}
	lines = append(lines, "", helperStyle.Render("Press ? or esc to close."))
	return legendBoxStyle.Render(wordwrap.String(strings.Join(lines, "\n"), m.wrapWidth(6)))
}

func renderLogo() string {
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		lineRunes[i] = []rune(line)
		if len(lineRunes[i]) > width {
			width = len(lineRunes[i])
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style *lipgloss.Style
	}
	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: &logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: &logoFaceStyle}
			}
		}
	}

	rows := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.style == nil {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		rows[y] = strings.TrimRight(b.String(), " ")
	}
	return logoContainerStyle.Render(strings.Join(rows, "\n"))
}
