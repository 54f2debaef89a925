// Package page renders the French status page served at the site root.
//
// The template is embedded in the binary and parsed once. The hostname is
// looked up on every render so a page served from a renamed host or a new
// container replica always reports where it came from.
package page

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"runtime"
)

// ContentType is sent with every rendered status page.
const ContentType = "text/html; charset=utf-8"

//go:embed templates/status.html
var templatesFS embed.FS

// Data is the view model passed to the status template.
type Data struct {
	Hostname string
	Port     int
	Runtime  string
}

// Renderer executes the status template for the local host.
type Renderer struct {
	tpl      *template.Template
	port     int
	hostname func() (string, error)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHostname replaces the hostname lookup (os.Hostname by default).
func WithHostname(fn func() (string, error)) Option {
	return func(r *Renderer) {
		r.hostname = fn
	}
}

// NewRenderer parses the embedded template. port is displayed on the page.
func NewRenderer(port int, opts ...Option) (*Renderer, error) {
	tpl, err := template.ParseFS(templatesFS, "templates/status.html")
	if err != nil {
		return nil, fmt.Errorf("parsing status template: %w", err)
	}
	r := &Renderer{
		tpl:      tpl,
		port:     port,
		hostname: os.Hostname,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render writes the page for the current hostname to w.
func (r *Renderer) Render(w io.Writer) error {
	host, err := r.hostname()
	if err != nil {
		return fmt.Errorf("looking up hostname: %w", err)
	}
	data := Data{
		Hostname: host,
		Port:     r.port,
		Runtime:  runtime.Version(),
	}
	if err := r.tpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing status template: %w", err)
	}
	return nil
}

// Bytes renders the page into memory. Nothing is written on failure, which
// lets callers still answer with a clean error status.
func (r *Renderer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
