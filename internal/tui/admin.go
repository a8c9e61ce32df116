package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/catalog"
	"github.com/csheth/edugenius/internal/settings"
)

const adminDisabledMessage = "Admin access is not configured. Set EDUGENIUS_ADMIN_EMAILS and EDUGENIUS_ADMIN_PASSWORD_HASH."

func slotLabel(slot settings.Slot) string {
	switch slot {
	case settings.SlotBanner:
		return "Top banner"
	case settings.SlotSidebar:
		return "Sidebar card"
	case settings.SlotAdMobBanner:
		return "AdMob banner"
	case settings.SlotAutoAds:
		return "Auto ads"
	case settings.SlotInterstitial:
		return "Interstitial"
	default:
		return string(slot)
	}
}

func (m *model) adminRowCount() int {
	return len(settings.Slots()) + len(m.settings.Subjects)
}

func (m *model) openAdmin() tea.Cmd {
	m.composer.Blur()
	m.showHelp = false
	if m.session.Token != "" && m.config.Auth != nil {
		if _, err := m.config.Auth.Authorize(m.session.Token); err == nil {
			m.stage = stageAdmin
			return nil
		}
		m.session = auth.Session{}
	}
	m.stage = stageAdminLogin
	m.errorMessage = ""
	m.infoMessage = ""
	m.emailInput.SetValue("")
	m.passwordInput.SetValue("")
	m.passwordInput.Blur()
	return m.emailInput.Focus()
}

func (m *model) closeAdmin() tea.Cmd {
	m.stage = stageCompose
	m.emailInput.Blur()
	m.passwordInput.Blur()
	m.subjectInput.Blur()
	m.errorMessage = ""
	return m.setFocus(focusComposer)
}

func (m *model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, m.closeAdmin()
	case "tab", "shift+tab", "up", "down":
		if m.emailInput.Focused() {
			m.emailInput.Blur()
			return m, m.passwordInput.Focus()
		}
		m.passwordInput.Blur()
		return m, m.emailInput.Focus()
	case "enter":
		if m.emailInput.Focused() {
			m.emailInput.Blur()
			return m, m.passwordInput.Focus()
		}
		return m, m.login()
	}
	var cmd tea.Cmd
	if m.emailInput.Focused() {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *model) login() tea.Cmd {
	if m.config.Auth == nil || !m.config.Auth.Enabled() {
		m.errorMessage = adminDisabledMessage
		return nil
	}
	session, err := m.config.Auth.Login(m.emailInput.Value(), m.passwordInput.Value())
	m.passwordInput.SetValue("")
	if err != nil {
		m.errorMessage = err.Error()
		return nil
	}
	m.session = session
	m.stage = stageAdmin
	m.adminCursor = 0
	m.passwordInput.Blur()
	m.errorMessage = ""
	m.infoMessage = fmt.Sprintf("Signed in as %s.", session.Email)
	return nil
}

func (m *model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slots := settings.Slots()
	switch msg.String() {
	case "esc":
		return m, m.closeAdmin()
	case "up", "k":
		if m.adminCursor > 0 {
			m.adminCursor--
		}
	case "down", "j":
		if m.adminCursor < m.adminRowCount()-1 {
			m.adminCursor++
		}
	case " ", "enter":
		if m.adminCursor >= len(slots) {
			return m, nil
		}
		slot := slots[m.adminCursor]
		notice := fmt.Sprintf("%s switched %s.", slotLabel(slot), onOff(!m.settings.Ads.Active(slot)))
		return m, m.saveSettings(func(s settings.Settings) (settings.Settings, error) {
			return s.Toggle(slot)
		}, notice)
	case "d", "delete":
		idx := m.adminCursor - len(slots)
		if idx < 0 || idx >= len(m.settings.Subjects) {
			return m, nil
		}
		id := m.settings.Subjects[idx].ID
		return m, m.saveSettings(func(s settings.Settings) (settings.Settings, error) {
			return s.WithoutSubject(id)
		}, fmt.Sprintf("Removed %s.", id))
	case "a":
		m.stage = stageAdminAddSubject
		m.subjectInput.SetValue("")
		return m, m.subjectInput.Focus()
	case "x":
		m.config.Auth.Logout(m.session.Token)
		m.session = auth.Session{}
		cmd := m.closeAdmin()
		m.infoMessage = "Signed out."
		return m, cmd
	}
	return m, nil
}

func (m *model) handleAddSubjectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stage = stageAdmin
		m.subjectInput.Blur()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.subjectInput.Value())
		m.stage = stageAdmin
		m.subjectInput.Blur()
		return m, m.saveSettings(func(s settings.Settings) (settings.Settings, error) {
			return s.WithSubject(catalog.Subject{ID: name})
		}, fmt.Sprintf("Added %s.", name))
	}
	var cmd tea.Cmd
	m.subjectInput, cmd = m.subjectInput.Update(msg)
	return m, cmd
}

func (m *model) saveSettings(edit settingsEdit, notice string) tea.Cmd {
	return m.jobs.Start(jobKindSettings, saveSettingsJob(m.config.Settings, m.config.Auth, m.session.Token, m.settings, edit, notice))
}

func (m *model) handleSettingsResult(msg settingsResultMsg) {
	if msg.expired {
		m.session = auth.Session{}
		if m.stage == stageAdmin || m.stage == stageAdminAddSubject {
			m.stage = stageAdminLogin
			m.passwordInput.Blur()
			m.emailInput.Focus()
		}
		m.errorMessage = "Session expired. Sign in again."
		return
	}
	if msg.err != nil {
		m.errorMessage = msg.err.Error()
		return
	}
	m.settings = msg.value
	m.subject = m.settings.FallbackSubject(m.subject)
	if rows := m.adminRowCount(); m.adminCursor >= rows {
		m.adminCursor = rows - 1
	}
	if m.layout.windowWidth > 0 {
		m.layout.Update(m.layout.windowWidth, m.layout.windowHeight, m.settings.Ads.Sidebar.Active)
		m.applyLayout()
	}
	m.errorMessage = ""
	m.infoMessage = msg.notice
	m.markViewportDirty()
}

func onOff(active bool) string {
	if active {
		return "on"
	}
	return "off"
}

func (m *model) adminRow(idx int, text string) string {
	if idx == m.adminCursor {
		return currentLineStyle.Render("› " + text)
	}
	return "  " + text
}

func (m *model) adminView() string {
	if m.stage == stageAdminLogin {
		return m.loginView()
	}
	rows := []string{
		sectionHeaderStyle.Render("Admin Console"),
		helperStyle.Render("Signed in as " + m.session.Email),
		"",
		sectionHeaderStyle.Render("Ad slots"),
	}
	for i, slot := range settings.Slots() {
		state := toggleOffStyle.Render("off")
		if m.settings.Ads.Active(slot) {
			state = toggleOnStyle.Render("on")
		}
		rows = append(rows, m.adminRow(i, fmt.Sprintf("%-14s %s", slotLabel(slot), state)))
	}
	rows = append(rows, "", sectionHeaderStyle.Render(fmt.Sprintf("Subjects (%d)", len(m.settings.Subjects))))
	offset := len(settings.Slots())
	for j, sub := range m.settings.Subjects {
		rows = append(rows, m.adminRow(offset+j, sub.Icon+" "+sub.ID))
	}
	if m.stage == stageAdminAddSubject {
		rows = append(rows, "", m.subjectInput.View())
	}
	rows = append(rows, "", helperStyle.Render("↑/↓ move • space toggle slot • a add subject • d delete subject • x sign out • esc close"))
	rows = append(rows, m.messageLines()...)
	return adminBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m *model) loginView() string {
	rows := []string{
		sectionHeaderStyle.Render("Admin Sign In"),
		helperStyle.Render("Only allow-listed emails can manage subjects and ads."),
		"",
		m.emailInput.View(),
		m.passwordInput.View(),
		"",
		helperStyle.Render("enter next/sign in • tab switch field • esc back"),
	}
	rows = append(rows, m.messageLines()...)
	return adminBoxStyle.Render(strings.Join(rows, "\n"))
}
