package section_test

import (
	"encoding/json"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/slyyfoxx/foxxtalk/internal/section"
	"github.com/slyyfoxx/foxxtalk/web"
)

func newRenderer(t *testing.T) *section.Renderer {
	t.Helper()
	r, err := section.NewRenderer(web.TemplateFS, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func records(t *testing.T, raw string) []section.Record {
	t.Helper()
	var recs []section.Record
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	return recs
}

func TestRender_SkipsUnknownAndKeepsOrder(t *testing.T) {
	r := newRenderer(t)
	recs := records(t, `[
		{"id":1,"type":"stats","data":{"stats":[{"number":"10","label":"x"}]}},
		{"id":2,"type":"bogus","data":{}},
		{"id":3,"type":"text","data":{"content":"a\nb"}}
	]`)

	views := r.Render(recs)
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	if views[0].ID != "1" || views[1].ID != "3" {
		t.Errorf("ids = %s, %s; want 1, 3", views[0].ID, views[1].ID)
	}
	if !strings.Contains(string(views[0].HTML), `<div class="stat-number">10</div>`) {
		t.Errorf("stats view missing number: %s", views[0].HTML)
	}
	text := string(views[1].HTML)
	if !strings.Contains(text, "<p>a</p>") || !strings.Contains(text, "<p>b</p>") {
		t.Errorf("text view should split paragraphs: %s", text)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	r := newRenderer(t)
	if got := r.Render(nil); len(got) != 0 {
		t.Errorf("Render(nil) = %d views", len(got))
	}
	if got := r.Render([]section.Record{}); len(got) != 0 {
		t.Errorf("Render([]) = %d views", len(got))
	}
	if got := r.HTML(nil); got != "" {
		t.Errorf("HTML(nil) = %q", got)
	}
}

func TestRender_CountMatchesRecognizedTypes(t *testing.T) {
	r := newRenderer(t)
	var recs []section.Record
	recognized := 0
	for i, typ := range []string{"video", "x", "gallery", "cta", "", "text", "testimonials",
		"features", "stats", "about", "contact", "team", "TEXT", "hero"} {
		recs = append(recs, section.Record{
			ID:   section.Flex(strings.Repeat("i", i+1)),
			Type: section.Type(typ),
			Data: json.RawMessage(`{}`),
		})
		if section.Type(typ).Known() {
			recognized++
		}
	}

	views := r.Render(recs)
	if len(views) != recognized {
		t.Fatalf("len(views) = %d, want %d", len(views), recognized)
	}
	// Relative order of recognized records survives.
	j := 0
	for _, rec := range recs {
		if !rec.Type.Known() {
			continue
		}
		if views[j].ID != rec.ID.String() {
			t.Errorf("views[%d].ID = %s, want %s", j, views[j].ID, rec.ID)
		}
		j++
	}
}

func TestRender_AliasesShareViews(t *testing.T) {
	r := newRenderer(t)
	recs := records(t, `[
		{"id":"a","type":"about","data":{"title":"About us","content":"We write."}},
		{"id":"c","type":"contact","data":{"title":"Contact","content":"mail@example.com"}},
		{"id":"t","type":"team","data":{"title":"Team","testimonials":[{"quote":"Hi","name":"Foxx"}]}}
	]`)
	views := r.Render(recs)
	if len(views) != 3 {
		t.Fatalf("len(views) = %d, want 3", len(views))
	}
	for i := 0; i < 2; i++ {
		if !strings.Contains(string(views[i].HTML), `class="text-section"`) {
			t.Errorf("%s should use the text view: %s", views[i].Type, views[i].HTML)
		}
	}
	if !strings.Contains(string(views[2].HTML), `class="testimonials-section"`) ||
		!strings.Contains(string(views[2].HTML), "Foxx") {
		t.Errorf("team should use the testimonials view: %s", views[2].HTML)
	}
}

func TestRender_Defaults(t *testing.T) {
	r := newRenderer(t)
	recs := records(t, `[
		{"id":1,"type":"cta","data":{"title":"Join","buttonText":"Go"}},
		{"id":2,"type":"gallery","data":{"images":[{"url":"/a.jpg"},{"url":"/b.jpg","alt":"B"}]}},
		{"id":3,"type":"cta","data":{"title":"No button"}}
	]`)
	views := r.Render(recs)
	if len(views) != 3 {
		t.Fatalf("len(views) = %d, want 3", len(views))
	}
	cta := string(views[0].HTML)
	if !strings.Contains(cta, `href="#"`) || !strings.Contains(cta, "#ff6b35") {
		t.Errorf("cta defaults missing: %s", cta)
	}
	gallery := string(views[1].HTML)
	if !strings.Contains(gallery, `alt="Gallery image 1"`) || !strings.Contains(gallery, `alt="B"`) {
		t.Errorf("gallery alt defaults wrong: %s", gallery)
	}
	if strings.Contains(string(views[2].HTML), "cta-button") {
		t.Errorf("cta without buttonText should omit the button: %s", views[2].HTML)
	}
}

func TestRender_VideoVariants(t *testing.T) {
	r := newRenderer(t)
	recs := records(t, `[
		{"id":1,"type":"video","data":{"videoUrl":"https://www.youtube.com/embed/x"}},
		{"id":2,"type":"video","data":{"videoFile":"/uploads/clip.mp4"}},
		{"id":3,"type":"video","data":{"title":"Nothing yet"}}
	]`)
	views := r.Render(recs)
	if len(views) != 3 {
		t.Fatalf("len(views) = %d, want 3", len(views))
	}
	if !strings.Contains(string(views[0].HTML), "<iframe") {
		t.Errorf("videoUrl should embed an iframe: %s", views[0].HTML)
	}
	if !strings.Contains(string(views[1].HTML), `<source src="/uploads/clip.mp4"`) {
		t.Errorf("videoFile should render a video tag: %s", views[1].HTML)
	}
	if strings.Contains(string(views[2].HTML), "<iframe") || strings.Contains(string(views[2].HTML), "<video") {
		t.Errorf("video without sources should omit the player: %s", views[2].HTML)
	}
}

func TestRender_MalformedPayloadDegradesToEmpty(t *testing.T) {
	r := newRenderer(t)
	recs := []section.Record{
		{ID: "1", Type: section.TypeStats, Data: json.RawMessage(`{"stats":"not a list"}`)},
		{ID: "2", Type: section.TypeText, Data: json.RawMessage(`[1,2,3]`)},
		{ID: "3", Type: section.TypeGallery},
	}
	views := r.Render(recs)
	if len(views) != 3 {
		t.Fatalf("len(views) = %d, want 3", len(views))
	}
	if strings.Contains(string(views[0].HTML), "stat-number") {
		t.Errorf("malformed stats should render no items: %s", views[0].HTML)
	}
}

func TestRender_EveryTypeWithEmptyData(t *testing.T) {
	r := newRenderer(t)
	for _, typ := range section.Types {
		for _, data := range []string{"", "null", "{}"} {
			rec := section.Record{ID: "s1", Type: typ}
			if data != "" {
				rec.Data = json.RawMessage(data)
			}
			views := r.Render([]section.Record{rec})
			if len(views) != 1 {
				t.Errorf("%s with data %q: len(views) = %d, want 1", typ, data, len(views))
				continue
			}
			if !strings.HasPrefix(strings.TrimSpace(string(views[0].HTML)), "<section") {
				t.Errorf("%s with data %q: html = %q", typ, data, views[0].HTML)
			}
		}
	}
}

func TestRender_FailedViewKeepsItsPlace(t *testing.T) {
	views := []string{"video", "gallery", "cta", "text", "testimonials", "features", "stats"}
	var src strings.Builder
	for _, v := range views {
		body := "<section>" + v + "</section>"
		if v == "text" {
			body = `{{template "undefined-view"}}`
		}
		src.WriteString(`{{define "section-` + v + `"}}` + body + "{{end}}")
	}
	fsys := fstest.MapFS{"templates/sections/all.html": {Data: []byte(src.String())}}
	r, err := section.NewRenderer(fsys, nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	got := r.Render([]section.Record{
		{ID: "1", Type: section.TypeText},
		{ID: "2", Type: section.TypeStats},
	})
	if len(got) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(got))
	}
	if got[0].ID != "1" || got[0].HTML != "" {
		t.Errorf("failed view = %+v", got[0])
	}
	if got[1].ID != "2" || got[1].HTML != "<section>stats</section>" {
		t.Errorf("second view = %+v", got[1])
	}
}

func TestRender_EscapesContent(t *testing.T) {
	r := newRenderer(t)
	recs := records(t, `[{"id":1,"type":"text","data":{"title":"<script>alert(1)</script>"}}]`)
	out := string(r.HTML(recs))
	if strings.Contains(out, "<script>") {
		t.Errorf("title not escaped: %s", out)
	}
}

func TestFlex(t *testing.T) {
	var recs []section.Record
	if err := json.Unmarshal([]byte(`[{"id":7,"type":"text"},{"id":"seven","type":"text"}]`), &recs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if recs[0].ID != "7" || recs[1].ID != "seven" {
		t.Errorf("ids = %q, %q", recs[0].ID, recs[1].ID)
	}
	out, err := json.Marshal(recs[0].ID)
	if err != nil || string(out) != "7" {
		t.Errorf("marshal numeric id = %s, %v; want 7", out, err)
	}
	out, _ = json.Marshal(recs[1].ID)
	if string(out) != `"seven"` {
		t.Errorf("marshal string id = %s", out)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"unique ids", `[{"id":1,"type":"text"},{"id":2,"type":"stats"}]`, false},
		{"unknown type kept", `[{"id":1,"type":"carousel"}]`, false},
		{"duplicate ids", `[{"id":1,"type":"text"},{"id":1,"type":"cta"}]`, true},
		{"missing id", `[{"type":"text"}]`, true},
		{"missing type", `[{"id":1}]`, true},
		{"empty list", `[]`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := section.Validate(records(t, tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
