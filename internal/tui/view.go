package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/display"
	"github.com/pixil98/niboshi/internal/viewer"
)

const Title = "に～ぼし"

// Controls is what the view's buttons and keys act on.
type Controls interface {
	Reload()
	Click()
}

// View is a terminal UI over viewer snapshots. Render only records the latest
// snapshot; drawing happens on the tview event loop.
type View struct {
	controls  Controls
	formatter *display.Formatter
	logger    logrus.FieldLogger
	screen    tcell.Screen
	onQuit    func()

	app    *tview.Application
	body   *tview.TextView
	status *tview.TextView
	click  *tview.Button

	mu     sync.Mutex
	latest viewer.Snapshot
	dirty  chan struct{}
}

func NewView(controls Controls, opts ...ViewOpt) *View {
	v := &View{
		controls:  controls,
		formatter: display.DefaultFormatter(),
		logger:    logrus.StandardLogger(),
		onQuit:    func() {},
		dirty:     make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(v)
	}

	v.build()
	return v
}

func (v *View) build() {
	v.body = tview.NewTextView().
		SetScrollable(true).
		SetWrap(false)
	v.body.SetBorder(true).SetTitle(" " + Title + " ")

	v.status = tview.NewTextView().SetTextAlign(tview.AlignRight)

	reload := tview.NewButton("Reload").SetSelectedFunc(v.controls.Reload)
	v.click = tview.NewButton(clickLabel(0)).SetSelectedFunc(v.controls.Click)

	buttons := tview.NewFlex().
		AddItem(reload, 10, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(v.click, 10, 0, false).
		AddItem(v.status, 0, 1, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(v.body, 0, 1, true).
		AddItem(buttons, 1, 0, false)

	v.app = tview.NewApplication().
		SetRoot(root, true).
		SetInputCapture(v.handleKey)
	if v.screen != nil {
		v.app.SetScreen(v.screen)
	}
}

// Render implements viewer.Renderer.
func (v *View) Render(snap viewer.Snapshot) {
	v.mu.Lock()
	v.latest = snap
	v.mu.Unlock()

	select {
	case v.dirty <- struct{}{}:
	default:
	}
}

// Start runs the terminal UI until ctx is done or the user quits.
func (v *View) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- v.app.Run()
	}()

	for {
		select {
		case <-ctx.Done():
			return v.stop(errc)
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("running terminal ui: %w", err)
			}
			v.logger.Info("terminal ui closed")
			v.onQuit()
			return nil
		case <-v.dirty:
			v.app.QueueUpdateDraw(v.draw)
		}
	}
}

// stop keeps asking the app to stop until Run returns; a Stop issued before
// Run has set up the screen is a no-op.
func (v *View) stop(errc <-chan error) error {
	for {
		v.app.Stop()
		select {
		case err := <-errc:
			return err
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (v *View) draw() {
	v.mu.Lock()
	snap := v.latest
	v.mu.Unlock()

	v.body.SetText(v.formatter.RenderText(snap))
	v.click.SetLabel(clickLabel(snap.Counter))
	v.status.SetText(statusText(snap))
}

func (v *View) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	switch {
	case ev.Key() == tcell.KeyCtrlC:
		v.app.Stop()
		return nil
	case ev.Key() != tcell.KeyRune:
		return ev
	}

	switch ev.Rune() {
	case 'r':
		v.controls.Reload()
	case '+':
		v.controls.Click()
	case 'q':
		v.app.Stop()
	default:
		return ev
	}
	return nil
}

func clickLabel(n int) string {
	return fmt.Sprintf("++ %d", n)
}

func statusText(snap viewer.Snapshot) string {
	if snap.Loading {
		return "loading..."
	}
	if snap.Reloads == 0 {
		return ""
	}
	return fmt.Sprintf("updated %s", snap.LastReload.Format("15:04:05"))
}
