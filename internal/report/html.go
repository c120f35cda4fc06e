package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page carries everything around the report itself.
type Page struct {
	Title        string
	Provider     string
	GeneratedAt  time.Time
	ExamDate     string
	StartOverURL string
	// Standalone pages include the print and download controls.
	Standalone bool
}

// Templates parses the embedded report templates. The web package adds its own
// pages to the returned set.
func Templates() (*template.Template, error) {
	return template.New("report").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// FuncMap is the set of helpers the report templates rely on.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"lineClass": func(k LineKind) string { return "line-" + k.String() },
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006")
		},
	}
}

var reportTmpl = template.Must(Templates())

type pageData struct {
	Page   Page
	Report Report
}

// WriteHTML renders rep as a complete printable HTML document.
func WriteHTML(w io.Writer, rep Report, page Page) error {
	if page.Title == "" {
		page.Title = "Your Study Plan"
	}
	if err := reportTmpl.ExecuteTemplate(w, "document.html", pageData{Page: page, Report: rep}); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}
