package render

import (
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	render := Markdown()

	out, err := render("Hello *world*, this is **bold**.")
	if err != nil {
		t.Fatalf("failed to render markdown: %v", err)
	}
	if !strings.Contains(out, "<em>world</em>") {
		t.Errorf("expected emphasis in output, got %q", out)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("expected strong text in output, got %q", out)
	}
	if !strings.HasPrefix(out, "<html><body>") {
		t.Errorf("expected a full HTML document, got %q", out)
	}
}

func TestMarkdownHardWraps(t *testing.T) {
	render := Markdown()

	out, err := render("first line\nsecond line")
	if err != nil {
		t.Fatalf("failed to render markdown: %v", err)
	}
	if !strings.Contains(out, "<br") {
		t.Errorf("expected a line break in output, got %q", out)
	}
}

func TestMarkdownStrikethrough(t *testing.T) {
	render := Markdown()

	out, err := render("~~gone~~")
	if err != nil {
		t.Fatalf("failed to render markdown: %v", err)
	}
	if !strings.Contains(out, "<del>gone</del>") {
		t.Errorf("expected strikethrough in output, got %q", out)
	}
}

func TestText(t *testing.T) {
	render := Text()

	out, err := render("a <b>tag</b> & more")
	if err != nil {
		t.Fatalf("failed to render text: %v", err)
	}
	if !strings.Contains(out, "a &lt;b&gt;tag&lt;/b&gt; &amp; more") {
		t.Errorf("expected escaped text in output, got %q", out)
	}
	if !strings.Contains(out, "<pre>") {
		t.Errorf("expected a pre block in output, got %q", out)
	}
}
