package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/edugenius/internal/auth"
	"github.com/csheth/edugenius/internal/settings"
)

func signIn(t *testing.T, m *model, email, password string) {
	t.Helper()
	press(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	if m.stage != stageAdminLogin {
		t.Fatalf("expected login stage, got %v", m.stage)
	}
	press(m, runes(email))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	press(m, runes(password))
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestAdminLoginSucceeds(t *testing.T) {
	m := newTestModel(t, Config{LLM: fakeLLM{}, Auth: newTestAuth(t)})
	signIn(t, m, "Admin@Example.com", "letmein")

	if m.stage != stageAdmin || m.session.Email != "admin@example.com" {
		t.Fatalf("expected admin stage, got %v (%+v)", m.stage, m.session)
	}
	view := m.View()
	for _, want := range []string{"Admin Console", "Top banner", "Interstitial", "Mathematics"} {
		if !strings.Contains(view, want) {
			t.Fatalf("admin view missing %q", want)
		}
	}

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.stage != stageCompose || !m.composer.Focused() {
		t.Fatal("esc should return to the composer")
	}
	press(m, tea.KeyMsg{Type: tea.KeyCtrlA})
	if m.stage != stageAdmin {
		t.Fatal("a live session should skip the login form")
	}
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
	m := newTestModel(t, Config{LLM: fakeLLM{}, Auth: newTestAuth(t)})
	signIn(t, m, "admin@example.com", "wrong")

	if m.stage != stageAdminLogin {
		t.Fatalf("expected to stay on login, got %v", m.stage)
	}
	if m.errorMessage != auth.ErrInvalidCredentials.Error() {
		t.Fatalf("unexpected error %q", m.errorMessage)
	}
	if m.passwordInput.Value() != "" {
		t.Fatal("password should be cleared after a failed attempt")
	}
}

func TestAdminDisabledWithoutAuthenticator(t *testing.T) {
	m := newTestModel(t, Config{LLM: fakeLLM{}})
	signIn(t, m, "admin@example.com", "letmein")
	if m.stage != stageAdminLogin || m.errorMessage != adminDisabledMessage {
		t.Fatalf("unexpected state %v %q", m.stage, m.errorMessage)
	}
}

func TestAdminToggleSlotPersists(t *testing.T) {
	authn := newTestAuth(t)
	store, err := settings.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m := newTestModel(t, Config{LLM: fakeLLM{}, Auth: authn, Settings: store})
	signIn(t, m, "admin@example.com", "letmein")

	if cmd := press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}); cmd == nil {
		t.Fatal("expected a save job")
	}
	toggle := func(s settings.Settings) (settings.Settings, error) { return s.Toggle(settings.SlotBanner) }
	msg, err := saveSettingsJob(store, authn, m.session.Token, m.settings, toggle, "Top banner switched off.")(context.Background())
	if err != nil {
		t.Fatalf("saveSettingsJob: %v", err)
	}
	m.Update(msg)
	if m.settings.Ads.Banner.Active || store.Current().Ads.Banner.Active {
		t.Fatal("banner should be off")
	}
	if m.bannerView() != "" {
		t.Fatal("inactive banner should not render")
	}
	if m.infoMessage != "Top banner switched off." {
		t.Fatalf("unexpected info %q", m.infoMessage)
	}
}

func TestSubjectRemovalFallsBack(t *testing.T) {
	m := newTestModel(t, Config{LLM: fakeLLM{}})
	m.subject = "Physics"
	m.adminCursor = m.adminRowCount() - 1

	next, err := m.settings.WithoutSubject("Physics")
	if err != nil {
		t.Fatalf("WithoutSubject: %v", err)
	}
	m.Update(settingsResultMsg{value: next, notice: "Removed Physics."})
	if m.subject != next.Subjects[0].ID {
		t.Fatalf("expected fallback to %s, got %s", next.Subjects[0].ID, m.subject)
	}
	if m.adminCursor != m.adminRowCount()-1 {
		t.Fatalf("cursor should clamp to the last row, got %d", m.adminCursor)
	}
}

func TestAddSubjectFlow(t *testing.T) {
	m := newTestModel(t, Config{LLM: fakeLLM{}, Auth: newTestAuth(t)})
	signIn(t, m, "admin@example.com", "letmein")

	press(m, runes("a"))
	if m.stage != stageAdminAddSubject {
		t.Fatalf("expected add-subject stage, got %v", m.stage)
	}
	press(m, runes("Economics"))
	if cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Fatal("expected a save job")
	}
	if m.stage != stageAdmin {
		t.Fatalf("expected admin stage, got %v", m.stage)
	}
}

func TestExpiredSessionReturnsToLogin(t *testing.T) {
	m := newTestModel(t, Config{LLM: fakeLLM{}, Auth: newTestAuth(t)})
	signIn(t, m, "admin@example.com", "letmein")

	m.Update(settingsResultMsg{err: auth.ErrUnauthorized, expired: true})
	if m.stage != stageAdminLogin || m.session.Token != "" {
		t.Fatalf("expected login after expiry, got %v", m.stage)
	}
	if !strings.Contains(m.errorMessage, "Session expired") {
		t.Fatalf("unexpected error %q", m.errorMessage)
	}
}

func TestAdminSignOut(t *testing.T) {
	authn := newTestAuth(t)
	m := newTestModel(t, Config{LLM: fakeLLM{}, Auth: authn})
	signIn(t, m, "admin@example.com", "letmein")
	token := m.session.Token

	press(m, runes("x"))
	if m.stage != stageCompose || m.session.Token != "" {
		t.Fatal("expected signed out")
	}
	if _, err := authn.Authorize(token); err == nil {
		t.Fatal("token should be revoked")
	}
}
