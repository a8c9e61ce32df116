package tui

import (
	"github.com/csheth/edugenius/internal/history"
	"github.com/csheth/edugenius/internal/llm"
	"github.com/csheth/edugenius/internal/material"
	"github.com/csheth/edugenius/internal/settings"
)

type stage int

const (
	stageCompose stage = iota
	stageSearch
	stageAdminLogin
	stageAdmin
	stageAdminAddSubject
)

// focus is the control that receives keys in stageCompose.
type focus int

const (
	focusComposer focus = iota
	focusSubject
	focusMode
	focusLanguage
	focusAnswer
)

var focusOrder = []focus{focusComposer, focusSubject, focusMode, focusLanguage, focusAnswer}

const heroTagline = "Global Academy for K-12, competitive exams and universities."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	sidebarWidth              = 30
	sidebarMinWindowWidth     = 110
	composerLines             = 3
	historyPreviewLimit       = 5
)

const (
	composerPlaceholder = "Ask anything: a JEE problem, UPSC notes, WBPSC previous year questions…"
	noProviderMessage   = "No AI provider is configured. Set GEMINI_API_KEY, OPENAI_API_KEY or run Ollama."
)

type interstitialTickMsg struct {
	seq int
}

type askResultMsg struct {
	seq  int
	resp llm.Response
	err  error
}

type settingsResultMsg struct {
	value   settings.Settings
	notice  string
	err     error
	expired bool
}

type materialResultMsg struct {
	pkg *material.Package
	err error
}

type historyResultMsg struct {
	recent []history.Entry
	total  int
	err    error
}
