// Package render provides the HTML renderers a processor can be
// configured with.
package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown returns a renderer that treats the body as Markdown with
// GitHub-style extensions. Hard wraps keep the line structure of mail
// text intact.
func Markdown() func(text string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(ghtml.WithHardWraps()),
	)
	return func(text string) (string, error) {
		var buf bytes.Buffer
		if err := md.Convert([]byte(text), &buf); err != nil {
			return "", err
		}
		return wrapDocument(buf.String()), nil
	}
}

// Text returns a renderer that escapes the body and preserves its
// layout in a <pre> block.
func Text() func(text string) (string, error) {
	return func(text string) (string, error) {
		return wrapDocument("<pre>" + html.EscapeString(text) + "</pre>\n"), nil
	}
}

func wrapDocument(body string) string {
	return fmt.Sprintf("<html><body>\n%s</body></html>\n", body)
}
