package display

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pixil98/niboshi/internal/vrc"
)

const (
	DefaultWidth          = 80
	DefaultFriendTemplate = "{{ .DisplayName }} ({{ .Username }})"
	DefaultHeaderTemplate = "{{ .WorldName | default .Location }}"
)

var templateFuncs = sprig.TxtFuncMap()

// Header is the data a group header template sees.
type Header struct {
	Location     vrc.Location
	WorldID      vrc.WorldID
	WorldName    string
	ThumbnailURL string
}

// Formatter turns friends and group headers into lines of text.
type Formatter struct {
	friend *template.Template
	header *template.Template
	width  int
}

// NewFormatter parses the row and header templates. Empty templates fall
// back to the defaults; a non-positive width disables wrapping.
func NewFormatter(friendTmpl, headerTmpl string, width int) (*Formatter, error) {
	if friendTmpl == "" {
		friendTmpl = DefaultFriendTemplate
	}
	if headerTmpl == "" {
		headerTmpl = DefaultHeaderTemplate
	}

	friend, err := template.New("friend").Funcs(templateFuncs).Parse(friendTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing friend template: %w", err)
	}
	header, err := template.New("header").Funcs(templateFuncs).Parse(headerTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing header template: %w", err)
	}

	return &Formatter{friend: friend, header: header, width: width}, nil
}

// DefaultFormatter uses the default templates at DefaultWidth.
func DefaultFormatter() *Formatter {
	f, err := NewFormatter("", "", DefaultWidth)
	if err != nil {
		panic(err)
	}
	return f
}

// Friend renders a single friend row.
func (f *Formatter) Friend(fr vrc.Friend) (string, error) {
	return execute(f.friend, fr)
}

// Header renders a group header.
func (f *Formatter) Header(h Header) (string, error) {
	return execute(f.header, h)
}

// Wrap word-wraps text to the formatter's width, preserving ANSI escape
// sequences.
func (f *Formatter) Wrap(text string) string {
	if f.width <= 0 {
		return text
	}
	return wordwrap.String(text, f.width)
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
