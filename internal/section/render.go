package section

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"

	"github.com/slyyfoxx/foxxtalk/internal/metrics"
)

// View is one rendered section.
type View struct {
	ID   string
	Type Type
	HTML template.HTML
}

// Renderer turns section records into HTML using the section templates.
type Renderer struct {
	tmpl   *template.Template
	logger *slog.Logger
}

// NewRenderer parses templates/sections/*.html from fsys.
func NewRenderer(fsys fs.FS, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("sections").Funcs(template.FuncMap{
		"galleryAlt": func(alt string, i int) string {
			if alt != "" {
				return alt
			}
			return fmt.Sprintf("Gallery image %d", i+1)
		},
	}).ParseFS(fsys, "templates/sections/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse section templates: %w", err)
	}
	for _, t := range Types {
		s, _ := Decode(Record{Type: t})
		if tmpl.Lookup(s.view()) == nil {
			return nil, fmt.Errorf("no template %q for section type %q", s.view(), t)
		}
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Render returns one view per recognized record, in input order. Unknown
// types are skipped without affecting their neighbours. A view whose template
// fails to execute is logged and kept with empty HTML, so Render never fails.
func (r *Renderer) Render(records []Record) []View {
	views := make([]View, 0, len(records))
	for _, rec := range records {
		s, ok := Decode(rec)
		if !ok {
			metrics.SectionsSkippedTotal.Inc()
			continue
		}
		v := View{ID: rec.ID.String(), Type: rec.Type}
		var buf bytes.Buffer
		if err := r.tmpl.ExecuteTemplate(&buf, s.view(), s.viewData()); err != nil {
			r.logger.Error("render section", "id", v.ID, "type", string(rec.Type), "error", err)
		} else {
			v.HTML = template.HTML(buf.String())
		}
		metrics.SectionsRenderedTotal.WithLabelValues(string(rec.Type)).Inc()
		views = append(views, v)
	}
	return views
}

// HTML renders records and concatenates the views.
func (r *Renderer) HTML(records []Record) template.HTML {
	var buf bytes.Buffer
	for _, v := range r.Render(records) {
		buf.WriteString(string(v.HTML))
	}
	return template.HTML(buf.String())
}
