package tui

import "github.com/charmbracelet/lipgloss"

var (
	sectionHeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	searchHighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("190"))
	searchCurrentStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("229"))

	heroAccentColor        = lipgloss.Color("#6366f1")
	heroDeepColor          = lipgloss.Color("#111133")
	heroTextColor          = lipgloss.Color("#eef0ff")
	heroSecondaryTextColor = lipgloss.Color("#a5b4fc")

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	taglineStyle       = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a5b4fc")).Padding(0, 1)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	currentLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a5b4fc"))
	logoFaceStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroDeepColor)
	logoShadowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#05051a"))
	logoContainerStyle = lipgloss.NewStyle().Padding(0, 1)

	pickerLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pickerValueStyle   = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor)
	pickerFocusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(heroAccentColor).Padding(0, 1)

	answerTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor).Underline(true)
	h1Style          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c7d2fe"))
	h2Style          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a5b4fc"))
	h3Style          = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#818cf8"))
	bulletMarkStyle  = lipgloss.NewStyle().Foreground(heroAccentColor)
	orderedMarkStyle = lipgloss.NewStyle().Bold(true).Foreground(heroAccentColor)
	boldSpanStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))

	bannerStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#4f46e5")).Padding(0, 1)
	sidebarBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#f59e0b")).Padding(0, 1)
	interstitialStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#f59e0b")).Padding(1, 4).Align(lipgloss.Center)
	adTagStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)

	adminBoxStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	toggleOnStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22c55e"))
	toggleOffStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	logoArtLines    = []string{
		"█▀▀ █▀▄ █ █ █▀▀ █▀▀ █▀█ █ █ █ █▀▀",
		"██▄ █▄▀ █▄█ █▄█ ██▄ █ ▀█ █ █▄█ ▄▄█",
	}
)
