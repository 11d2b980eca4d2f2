package tui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/display"
)

type ViewOpt func(*View)

func WithFormatter(f *display.Formatter) ViewOpt {
	return func(v *View) {
		v.formatter = f
	}
}

func WithLogger(l logrus.FieldLogger) ViewOpt {
	return func(v *View) {
		v.logger = l
	}
}

// WithScreen draws to s instead of the terminal
func WithScreen(s tcell.Screen) ViewOpt {
	return func(v *View) {
		v.screen = s
	}
}

// WithOnQuit is called when the user closes the UI
func WithOnQuit(f func()) ViewOpt {
	return func(v *View) {
		v.onQuit = f
	}
}
