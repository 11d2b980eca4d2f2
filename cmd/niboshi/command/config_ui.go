package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/display"
	"github.com/pixil98/niboshi/internal/tui"
	"github.com/pixil98/niboshi/internal/viewer"
)

type UiConfig struct {
	Enabled        bool   `json:"enabled"`
	FriendTemplate string `json:"friend_template"`
	HeaderTemplate string `json:"header_template"`
	Width          int    `json:"width"`
}

func (c *UiConfig) validate() error {
	el := errors.NewErrorList()

	if c.Width < 0 {
		el.Add(fmt.Errorf("width must not be negative"))
	}

	if _, err := c.buildFormatter(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

func (c *UiConfig) buildFormatter() (*display.Formatter, error) {
	width := c.Width
	if width == 0 {
		width = display.DefaultWidth
	}
	return display.NewFormatter(c.FriendTemplate, c.HeaderTemplate, width)
}

// buildRenderer returns the terminal UI when enabled and a log renderer
// otherwise. The view is nil in headless mode.
func (c *UiConfig) buildRenderer(v *viewer.Viewer, logger logrus.FieldLogger, quit func()) (viewer.Renderer, *tui.View, error) {
	f, err := c.buildFormatter()
	if err != nil {
		return nil, nil, err
	}

	if !c.Enabled {
		return display.NewLogRenderer(f, logger.WithField("module", "display")), nil, nil
	}

	view := tui.NewView(v,
		tui.WithFormatter(f),
		tui.WithLogger(logger.WithField("module", "tui")),
		tui.WithOnQuit(quit),
	)
	return view, view, nil
}
