package listener

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/display"
	"github.com/pixil98/niboshi/internal/viewer"
)

const consoleHelp = "commands: r (reload), + (click), q (quit)\n"

// Controls is what console commands act on.
type Controls interface {
	Reload()
	Click()
}

// Console serves the text rendering to remote sessions and turns their input
// into viewer commands. It implements viewer.Renderer.
type Console struct {
	controls  Controls
	formatter *display.Formatter
	logger    logrus.FieldLogger

	mu       sync.Mutex
	latest   viewer.Snapshot
	sessions map[*session]struct{}
}

type session struct {
	notify chan struct{}
}

func NewConsole(controls Controls, f *display.Formatter, logger logrus.FieldLogger) *Console {
	return &Console{
		controls:  controls,
		formatter: f,
		logger:    logger,
		sessions:  map[*session]struct{}{},
	}
}

// Render records snap and wakes every connected session.
func (c *Console) Render(snap viewer.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest = snap
	for s := range c.sessions {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}
}

// Sessions reports how many clients are connected.
func (c *Console) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// AcceptConnection runs one session until the client quits, disconnects or
// ctx is done.
func (c *Console) AcceptConnection(ctx context.Context, rw io.ReadWriter) {
	s := c.register()
	defer c.unregister(s)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(rw)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	if !c.write(rw, consoleHelp+c.text()) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			if !c.write(rw, "\n"+c.text()) {
				return
			}
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch line {
			case "r", "reload":
				c.controls.Reload()
			case "+", "click":
				c.controls.Click()
			case "q", "quit":
				c.write(rw, "bye\n")
				return
			case "":
			default:
				if !c.write(rw, consoleHelp) {
					return
				}
			}
		}
	}
}

func (c *Console) register() *session {
	s := &session{notify: make(chan struct{}, 1)}

	c.mu.Lock()
	c.sessions[s] = struct{}{}
	n := len(c.sessions)
	c.mu.Unlock()

	c.logger.WithField("sessions", n).Info("console session opened")
	return s
}

func (c *Console) unregister(s *session) {
	c.mu.Lock()
	delete(c.sessions, s)
	n := len(c.sessions)
	c.mu.Unlock()

	c.logger.WithField("sessions", n).Info("console session closed")
}

func (c *Console) text() string {
	c.mu.Lock()
	snap := c.latest
	c.mu.Unlock()
	return c.formatter.RenderText(snap)
}

func (c *Console) write(w io.Writer, text string) bool {
	if _, err := io.WriteString(w, text); err != nil {
		c.logger.WithError(err).Debug("writing to console session")
		return false
	}
	return true
}
