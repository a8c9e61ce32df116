package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/edugenius/internal/markdown"
)

const bulletGlyph = "●"

// writeAnswer projects rendered blocks onto the terminal and returns the
// content line of every heading, in order.
func writeAnswer(cb *contentBuilder, title string, blocks markdown.Blocks, width int) []int {
	var headings []int
	if title != "" {
		cb.WriteString(answerTitleStyle.Render(title))
		cb.WriteString("\n\n")
	}
	for _, block := range blocks {
		switch block.Kind {
		case markdown.KindHeading:
			headings = append(headings, cb.Line())
			cb.WriteString(headingStyle(block.Level).Render(wordwrap.String(block.Text, width)))
		case markdown.KindBullet:
			cb.WriteString(hangingItem("  "+bulletMarkStyle.Render(bulletGlyph)+" ", 4, block.Text, width))
		case markdown.KindOrdered:
			marker := block.Index + "."
			prefix := "  " + orderedMarkStyle.Render(marker) + " "
			cb.WriteString(hangingItem(prefix, lipgloss.Width(marker)+3, strings.TrimLeft(block.Text, " "), width))
		case markdown.KindParagraph:
			cb.WriteString(wordwrap.String(paragraphText(block.Segments), width))
		}
		cb.WriteRune('\n')
	}
	return headings
}

func headingStyle(level int) lipgloss.Style {
	switch level {
	case 1:
		return h1Style
	case 2:
		return h2Style
	default:
		return h3Style
	}
}

func paragraphText(spans []markdown.Span) string {
	var b strings.Builder
	for _, span := range spans {
		if span.Bold {
			b.WriteString(boldSpanStyle.Render(span.Text))
			continue
		}
		b.WriteString(span.Text)
	}
	return b.String()
}

// hangingItem wraps text after prefix and aligns continuation lines under the
// first character of the text.
func hangingItem(prefix string, hang int, text string, width int) string {
	wrapAt := width - hang
	if wrapAt < 10 {
		wrapAt = 10
	}
	body := wordwrap.String(text, wrapAt)
	first, rest, found := strings.Cut(body, "\n")
	if !found {
		return prefix + first
	}
	return prefix + first + "\n" + indent.String(rest, uint(hang))
}
