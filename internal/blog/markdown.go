package blog

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	// Post bodies are author-written; the UGC policy strips scripts and
	// event handlers that raw HTML blocks could carry.
	sanitizer = bluemonday.UGCPolicy()
)

// Markdown renders a post body to sanitized HTML.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(sanitizer.Sanitize(template.HTMLEscapeString(src)))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// PlainText strips Markdown and HTML from a post body, for excerpts and meta
// descriptions.
func PlainText(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return src
	}
	return string(bytes.Join(bytes.Fields(bluemonday.StrictPolicy().SanitizeBytes(buf.Bytes())), []byte(" ")))
}
