// Package render formats query results with user supplied text templates
package render

import (
	"bytes"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// Result is the data a template is executed with
type Result struct {
	Observer  string
	Body      string
	Operation string
	Cached    bool
	At        time.Time
	Time      time.Time
	Value     *int
	Position  *Position
}

// Position is an apparent azimuth and altitude
type Position struct {
	Azimuth  float64
	Altitude float64
}

// DefaultTemplate prints the operation and its result
const DefaultTemplate = `{{ .Observer }} {{ .Operation }}: ` +
	`{{- if .Value }} {{ .Value }}` +
	`{{- else if .Position }} az={{ printf "%.4f" .Position.Azimuth }} alt={{ printf "%.4f" .Position.Altitude }}` +
	`{{- else }} {{ .Time.Format "2006-01-02T15:04:05Z07:00" }}{{ end }}` + "\n"

// Template renders results with Sprig functions available
type Template struct {
	tmpl *template.Template
}

// New parses text; an empty text selects DefaultTemplate
func New(text string) (*Template, error) {
	if text == "" {
		text = DefaultTemplate
	}

	tmpl, err := template.New("result").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Template{tmpl: tmpl}, nil
}

// Execute writes result to w
func (t *Template) Execute(w io.Writer, result Result) error {
	var buf bytes.Buffer

	if err := t.tmpl.Execute(&buf, result); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	_, err := w.Write(buf.Bytes())

	return err
}
