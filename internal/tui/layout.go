package tui

import (
	"strings"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	composerWidth  int
	sidebar        bool
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		composerWidth:  80,
	}
}

// Update recomputes the panel sizes. The sidebar ad only claims a column when
// the window is wide enough to keep the answer readable.
func (l *pageLayout) Update(width, height int, sidebarActive bool) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.composerWidth = innerWidth
	l.sidebar = sidebarActive && width >= sidebarMinWindowWidth
	if l.sidebar {
		innerWidth -= sidebarWidth + 2
	}
	l.viewportWidth = innerWidth

	const chrome = 13
	contentHeight := height - chrome - composerLines
	if contentHeight < 6 {
		contentHeight = 6
	}
	l.viewportHeight = contentHeight
}

type contentBuilder struct {
	builder strings.Builder
	lines   int
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
	cb.lines += strings.Count(s, "\n")
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
	if r == '\n' {
		cb.lines++
	}
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

func (cb *contentBuilder) Line() int {
	return cb.lines
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func (m *model) clampYOffset(offset int) int {
	maxOffset := m.lineCount - m.viewport.Height
	if m.viewport.Height <= 0 {
		maxOffset = m.lineCount - 1
	}
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

type matchRange struct {
	start int
	end   int
}

// findMatches locates case-insensitive occurrences of query in content. It
// gives up when lowering the content shifts byte offsets.
func findMatches(content, query string) []matchRange {
	lowerContent := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)
	if lowerQuery == "" || len(lowerContent) != len(content) {
		return nil
	}
	var matches []matchRange
	for from := 0; from < len(content); {
		idx := strings.Index(lowerContent[from:], lowerQuery)
		if idx == -1 {
			break
		}
		start := from + idx
		matches = append(matches, matchRange{start: start, end: start + len(lowerQuery)})
		from = start + len(lowerQuery)
	}
	return matches
}

func highlightMatches(content string, matches []matchRange, current int) string {
	if len(matches) == 0 {
		return content
	}
	var b strings.Builder
	pos := 0
	for idx, match := range matches {
		if match.start < pos || match.end > len(content) {
			continue
		}
		b.WriteString(content[pos:match.start])
		segment := content[match.start:match.end]
		if idx == current {
			b.WriteString(searchCurrentStyle.Render(segment))
		} else {
			b.WriteString(searchHighlightStyle.Render(segment))
		}
		pos = match.end
	}
	b.WriteString(content[pos:])
	return b.String()
}

func lineNumberAtOffset(content string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(content) {
		offset = len(content)
	}
	return strings.Count(content[:offset], "\n")
}
