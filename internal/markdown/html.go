package markdown

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const bulletGlyph = "●"

var headingAtoms = map[int]atom.Atom{
	1: atom.H1,
	2: atom.H2,
	3: atom.H3,
}

// HTML renders blocks as an HTML fragment. Text is always escaped.
func HTML(blocks Blocks) (string, error) {
	var b strings.Builder
	if err := WriteHTML(&b, blocks); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteHTML streams one element per block to w.
func WriteHTML(w io.Writer, blocks Blocks) error {
	for _, block := range blocks {
		if err := html.Render(w, blockNode(block)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

func blockNode(b Block) *html.Node {
	switch b.Kind {
	case KindHeading:
		tag, ok := headingAtoms[b.Level]
		if !ok {
			tag = atom.H3
		}
		return element(tag, "md-h"+tag.String()[1:], textNode(b.Text))
	case KindBullet:
		return element(atom.Div, "md-bullet",
			element(atom.Span, "md-marker", textNode(bulletGlyph)),
			element(atom.Span, "", textNode(b.Text)),
		)
	case KindOrdered:
		return element(atom.Div, "md-ordered",
			element(atom.Span, "md-index", textNode(b.Index+".")),
			element(atom.Span, "", textNode(b.Text)),
		)
	case KindSpacer:
		return element(atom.Div, "md-spacer")
	default:
		children := make([]*html.Node, 0, len(b.Segments))
		for _, seg := range b.Segments {
			if seg.Bold {
				children = append(children, element(atom.Strong, "", textNode(seg.Text)))
				continue
			}
			children = append(children, textNode(seg.Text))
		}
		return element(atom.P, "md-p", children...)
	}
}

func element(tag atom.Atom, class string, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: tag, Data: tag.String()}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	for _, child := range children {
		n.AppendChild(child)
	}
	return n
}

func textNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}
