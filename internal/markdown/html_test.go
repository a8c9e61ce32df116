package markdown

import (
	"strings"
	"testing"
)

func TestHTMLProjection(t *testing.T) {
	blocks := Render("### Steps\n- first\n2. second\n**key** idea\n\nplain")
	got, err := HTML(blocks)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	want := strings.Join([]string{
		`<h3 class="md-h3">Steps</h3>`,
		`<div class="md-bullet"><span class="md-marker">●</span><span>first</span></div>`,
		`<div class="md-ordered"><span class="md-index">2.</span><span> second</span></div>`,
		`<p class="md-p"><strong>key</strong> idea</p>`,
		`<div class="md-spacer"></div>`,
		`<p class="md-p">plain</p>`,
	}, "\n") + "\n"
	if got != want {
		t.Fatalf("unexpected html\n---- want ----\n%s\n---- got ----\n%s", want, got)
	}
}

func TestHTMLEscapesText(t *testing.T) {
	got, err := HTML(Render("# <script>alert(1)</script>\na & b **<i>**"))
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if strings.Contains(got, "<script>") || strings.Contains(got, "<i>") {
		t.Fatalf("markup leaked into output: %s", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") || !strings.Contains(got, "a &amp; b") {
		t.Fatalf("expected escaped text, got %s", got)
	}
}
