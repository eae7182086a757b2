// Package report writes the run report: an index.html that steps append
// scenes to, with a numbered table of contents in toc.html.
package report

import (
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"sync"
	"time"

	"github.com/felixgeelhaar/actor/internal/ports"
)

// ErrClosed is returned for writes after Close.
var ErrClosed = errors.New("report closed")

// Header is the run information shown at the top of the report.
type Header struct {
	Title      string
	Name       string
	Project    string
	RunDir     string
	ConfigFile string
	Copyright  string
	Started    time.Time
}

// HTMLReporter appends HTML to a report file as the run progresses.
type HTMLReporter struct {
	mu      sync.Mutex
	fsys    ports.FileSystem
	path    string
	toc     string
	header  Header
	scenes  int
	inScene bool
	closed  bool
	now     func() time.Time
}

// Open starts a report at path, writing the preamble. The table of
// contents goes to toc.html next to it.
func Open(fsys ports.FileSystem, path string, header Header) (*HTMLReporter, error) {
	r := &HTMLReporter{
		fsys:   fsys,
		path:   path,
		toc:    filepath.Join(filepath.Dir(path), "toc.html"),
		header: header,
		now:    time.Now,
	}
	if r.header.Started.IsZero() {
		r.header.Started = r.now()
	}
	if err := fsys.WriteFile(r.path, []byte(r.preamble()), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	if err := fsys.WriteFile(r.toc, []byte("<tr><td class='main'><b>Table of contents:</b><ol>\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to create table of contents: %w", err)
	}
	return r, nil
}

// Path returns the report file.
func (r *HTMLReporter) Path() string {
	return r.path
}

// Scenes returns the number of scenes written.
func (r *HTMLReporter) Scenes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scenes
}

// Scene opens a numbered section and adds it to the table of contents.
func (r *HTMLReporter) Scene(title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	r.scenes++
	title = html.EscapeString(title)
	var out string
	if r.inScene {
		out = "</td></tr>\n"
	}
	r.inScene = true
	out += fmt.Sprintf("\n<tr><td class='main'><big><a name='sc%d'>%d. %s</a></big><br>\n", r.scenes, r.scenes, title)

	if err := r.fsys.AppendFile(r.path, []byte(out)); err != nil {
		return err
	}
	return r.fsys.AppendFile(r.toc, []byte(fmt.Sprintf("<li><a href='#sc%d'>%s</a></li>\n", r.scenes, title)))
}

// Paragraph appends escaped text.
func (r *HTMLReporter) Paragraph(text string) error {
	return r.append(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(text)))
}

// Link appends a download link to a run file.
func (r *HTMLReporter) Link(path, label string) error {
	if label == "" {
		label = filepath.Base(path)
	}
	return r.append(fmt.Sprintf("<a href='%s'>%s</a><br>\n", html.EscapeString(path), html.EscapeString(label)))
}

func (r *HTMLReporter) append(s string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	return r.fsys.AppendFile(r.path, []byte(s))
}

// Close writes the completion time and footer. Closing twice is a no-op.
func (r *HTMLReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var out string
	if r.inScene {
		out = fmt.Sprintf("<br><br>Completed: <b>%s</b></td></tr>\n", r.now().Format("01/02/2006 15:04:05"))
	}
	if r.header.Copyright != "" {
		out += fmt.Sprintf("\n<tr><td class='main'><small>%s</small></td></tr>\n", html.EscapeString(r.header.Copyright))
	}
	out += "\n    </table>\n  </body>\n</html>\n"

	if err := r.fsys.AppendFile(r.path, []byte(out)); err != nil {
		return err
	}
	return r.fsys.AppendFile(r.toc, []byte("</ol></td></tr>\n"))
}

func (r *HTMLReporter) preamble() string {
	h := r.header
	conf := ""
	if h.ConfigFile != "" {
		name := filepath.Base(h.ConfigFile)
		conf = fmt.Sprintf("            <b>Configuration:</b> <a href='%s'>%s</a><br>\n", html.EscapeString(name), html.EscapeString(name))
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <head>
    <title>%s</title>
  </head>
  <body>
    <center>
      <h1>%s</h1>
      <table class='main'>
        <tr>
          <td class='main'>
            <b>Title:</b> %s<br>
            <b>Project:</b> %s<br>
            <b>Started on:</b> %s<br>
            <b>Run directory:</b> %s<br>
%s          </td>
        </tr>
        <!--#include file="toc.html" -->
`,
		html.EscapeString(h.Title), html.EscapeString(h.Title), html.EscapeString(h.Name),
		html.EscapeString(h.Project), h.Started.Format("01/02/2006 15:04:05"),
		html.EscapeString(h.RunDir), conf)
}

var _ ports.Reporter = (*HTMLReporter)(nil)
