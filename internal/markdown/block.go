package markdown

import (
	"fmt"
	"strings"
)

// Kind discriminates the display block variants.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindBullet
	KindOrdered
	KindSpacer
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindBullet:
		return "bullet"
	case KindOrdered:
		return "ordered"
	case KindSpacer:
		return "spacer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name so JSON payloads stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span is a run of paragraph text, optionally emphasised.
type Span struct {
	Text string `json:"text"`
	Bold bool   `json:"bold,omitempty"`
}

// Plain returns an unemphasised span.
func Plain(text string) Span { return Span{Text: text} }

// Bold returns an emphasised span.
func Bold(text string) Span { return Span{Text: text, Bold: true} }

// Block is the display unit derived from exactly one source line. Only the
// fields relevant to Kind are populated: Level for headings, Index for ordered
// items, Segments for paragraphs and Text for everything else.
type Block struct {
	Kind     Kind   `json:"kind"`
	Level    int    `json:"level,omitempty"`
	Index    string `json:"index,omitempty"`
	Text     string `json:"text,omitempty"`
	Segments []Span `json:"segments,omitempty"`
}

// Heading returns a heading block of the given level.
func Heading(level int, text string) Block {
	return Block{Kind: KindHeading, Level: level, Text: text}
}

// Bullet returns an unordered list item.
func Bullet(text string) Block {
	return Block{Kind: KindBullet, Text: text}
}

// Ordered returns a numbered list item with its label as written.
func Ordered(index, text string) Block {
	return Block{Kind: KindOrdered, Index: index, Text: text}
}

// Paragraph returns a text block made of the given spans.
func Paragraph(segments ...Span) Block {
	return Block{Kind: KindParagraph, Segments: segments}
}

// Spacer returns the block for a blank line.
func Spacer() Block {
	return Block{Kind: KindSpacer}
}

// Visible returns the text a reader sees for the block, without markers.
func (b Block) Visible() string {
	switch b.Kind {
	case KindParagraph:
		var sb strings.Builder
		for _, seg := range b.Segments {
			sb.WriteString(seg.Text)
		}
		return sb.String()
	case KindSpacer:
		return ""
	default:
		return b.Text
	}
}

// Blocks is the ordered projection of a source text, one entry per line.
type Blocks []Block

// Headings returns the line positions of every heading block.
func (bs Blocks) Headings() []int {
	var positions []int
	for i, b := range bs {
		if b.Kind == KindHeading {
			positions = append(positions, i)
		}
	}
	return positions
}
