package markdown

import (
	"reflect"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		line string
		want Block
	}{
		{name: "h3 before shorter prefixes", line: "### Title", want: Heading(3, "Title")},
		{name: "h2", line: "## Section", want: Heading(2, "Section")},
		{name: "h1", line: "# Top", want: Heading(1, "Top")},
		{name: "heading keeps inner markers", line: "## **Key** idea", want: Heading(2, "**Key** idea")},
		{name: "indented hash is not a heading", line: "  # not", want: Paragraph(Plain("  # not"))},
		{name: "hash without space", line: "#tag", want: Paragraph(Plain("#tag"))},
		{name: "dash bullet", line: "- item one", want: Bullet("item one")},
		{name: "star bullet indented", line: "   * nested look", want: Bullet("nested look")},
		{name: "bullet wins over bold", line: "* **bold** item", want: Bullet("**bold** item")},
		{name: "ordered", line: "3. Third point", want: Ordered("3", " Third point")},
		{name: "ordered label verbatim", line: "  10.Tenth", want: Ordered("10", "Tenth")},
		{name: "ordered splits on first dot", line: "2.5 Theorem", want: Ordered("2", "5 Theorem")},
		{name: "bold paragraph", line: "**bold** and plain", want: Paragraph(Bold("bold"), Plain(" and plain"))},
		{name: "bold in the middle", line: "see **this** now", want: Paragraph(Plain("see "), Bold("this"), Plain(" now"))},
		{name: "blank", line: "", want: Spacer()},
		{name: "whitespace only", line: " \t ", want: Spacer()},
		{name: "carriage return only", line: "\r", want: Spacer()},
		{name: "fallback keeps line verbatim", line: "  plain text  ", want: Paragraph(Plain("  plain text  "))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.line)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Classify(%q) = %#v, want %#v", tc.line, got, tc.want)
			}
		})
	}
}

func TestBoldSegmentsAlternate(t *testing.T) {
	got := Classify("**bold** and plain")
	if got.Kind != KindParagraph {
		t.Fatalf("expected paragraph, got %s", got.Kind)
	}
	want := []Span{Bold("bold"), Plain(" and plain")}
	if !reflect.DeepEqual(got.Segments, want) {
		t.Fatalf("segments = %#v, want %#v", got.Segments, want)
	}
	if visible := got.Visible(); visible != "bold and plain" {
		t.Fatalf("visible text = %q", visible)
	}
}

func TestOddBoldMarkersStillParagraph(t *testing.T) {
	got := Classify("a **b** c **d")
	want := []Span{Plain("a "), Bold("b"), Plain(" c "), Bold("d")}
	if got.Kind != KindParagraph || !reflect.DeepEqual(got.Segments, want) {
		t.Fatalf("unexpected block: %#v", got)
	}

	lone := Classify("**")
	if lone.Kind != KindParagraph || len(lone.Segments) != 0 {
		t.Fatalf("lone marker should give an empty paragraph, got %#v", lone)
	}

	trailing := Classify("end **")
	if trailing.Kind != KindParagraph || !reflect.DeepEqual(trailing.Segments, []Span{Plain("end ")}) {
		t.Fatalf("trailing marker should leave the plain prefix, got %#v", trailing)
	}
}

func TestStrictOrderedRejectsDecimals(t *testing.T) {
	strict := Options{StrictOrdered: true}
	if got := strict.Classify("2.5 Theorem"); got.Kind != KindParagraph {
		t.Fatalf("decimal line should fall through, got %#v", got)
	}
	if got := strict.Classify("2. Lemma"); !reflect.DeepEqual(got, Ordered("2", " Lemma")) {
		t.Fatalf("ordered item should still match, got %#v", got)
	}
	if got := strict.Classify("7."); !reflect.DeepEqual(got, Ordered("7", "")) {
		t.Fatalf("bare label should match, got %#v", got)
	}
	if got := strict.Classify("1.5 **key**"); got.Kind != KindParagraph || len(got.Segments) != 2 {
		t.Fatalf("decimal bold line should become a bold paragraph, got %#v", got)
	}
}

func TestRenderOneBlockPerLine(t *testing.T) {
	inputs := []string{
		"",
		"single",
		"a\nb",
		"# T\n\n- x\n1. y\n",
		"\n\n\n",
		"**x\n**\nplain\r\nend",
	}
	for _, in := range inputs {
		blocks := Render(in)
		if want := strings.Count(in, "\n") + 1; len(blocks) != want {
			t.Fatalf("Render(%q) produced %d blocks, want %d", in, len(blocks), want)
		}
	}
}

func TestRenderIsPure(t *testing.T) {
	src := "## Plan\n- step **one**\n2. two\n\nclosing"
	first := Render(src)
	second := Render(src)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("render not deterministic:\n%#v\n%#v", first, second)
	}
}

func TestRenderIsLineLocal(t *testing.T) {
	lines := []string{"# Head", "- a", "- b", "1. c", "**x** y", "", "tail"}
	joined := Render(strings.Join(lines, "\n"))
	for i, line := range lines {
		if alone := Classify(line); !reflect.DeepEqual(joined[i], alone) {
			t.Fatalf("line %d classified differently in context: %#v vs %#v", i, joined[i], alone)
		}
	}
}

func TestHeadingsPositions(t *testing.T) {
	blocks := Render("# A\ntext\n## B\n\n### C")
	if got, want := blocks.Headings(), []int{0, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Headings() = %v, want %v", got, want)
	}
}
