// Package markdown converts the restricted Markdown dialect returned by the
// assistant into display blocks. The transform is line-local: every input line
// yields exactly one block and no line looks at its neighbours.
package markdown

import (
	"regexp"
	"strings"
)

const boldMarker = "**"

var (
	orderedPrefix       = regexp.MustCompile(`^\d+\.`)
	strictOrderedPrefix = regexp.MustCompile(`^\d+\.(?:[^0-9]|$)`)
)

// Options tunes line classification.
type Options struct {
	// StrictOrdered requires a non-digit after the "." of an ordered item so
	// decimal-numbered lines such as "2.5 Theorem" are not read as list items.
	StrictOrdered bool
}

// Render splits source on "\n" and classifies each line with the default options.
func Render(source string) Blocks {
	return RenderWith(source, Options{})
}

// RenderWith is Render with explicit options.
func RenderWith(source string, opts Options) Blocks {
	lines := strings.Split(source, "\n")
	blocks := make(Blocks, len(lines))
	for i, line := range lines {
		blocks[i] = opts.Classify(line)
	}
	return blocks
}

// Classify maps a single line to its block using the default options.
func Classify(line string) Block {
	return Options{}.Classify(line)
}

// Classify maps a single line to its block. Rules are tried in a fixed order
// and the first match wins; longer heading prefixes are checked first.
func (o Options) Classify(line string) Block {
	switch {
	case strings.HasPrefix(line, "### "):
		return Heading(3, strings.TrimPrefix(line, "### "))
	case strings.HasPrefix(line, "## "):
		return Heading(2, strings.TrimPrefix(line, "## "))
	case strings.HasPrefix(line, "# "):
		return Heading(1, strings.TrimPrefix(line, "# "))
	}

	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ") {
		return Bullet(trimmed[2:])
	}
	if o.orderedPattern().MatchString(trimmed) {
		// Split on the first "." only; the label is kept as written.
		dot := strings.IndexByte(trimmed, '.')
		return Ordered(trimmed[:dot], trimmed[dot+1:])
	}
	if strings.Contains(line, boldMarker) {
		return Paragraph(splitBold(line)...)
	}
	if trimmed == "" {
		return Spacer()
	}
	return Paragraph(Plain(line))
}

func (o Options) orderedPattern() *regexp.Regexp {
	if o.StrictOrdered {
		return strictOrderedPrefix
	}
	return orderedPrefix
}

// splitBold cuts the line on every "**". Odd positions are bold; an unpaired
// marker simply flips the emphasis of whatever follows it. Emphasis is decided
// by position before empty parts are dropped.
func splitBold(line string) []Span {
	parts := strings.Split(line, boldMarker)
	spans := make([]Span, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		spans = append(spans, Span{Text: part, Bold: i%2 == 1})
	}
	return spans
}
