package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pixil98/go-testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/pixil98/niboshi/internal/viewer"
	"github.com/pixil98/niboshi/internal/vrc"
)

type fakeControls struct {
	mu      sync.Mutex
	reloads int
	clicks  int
}

func (c *fakeControls) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloads++
}

func (c *fakeControls) Click() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clicks++
}

func TestView_HandleKey(t *testing.T) {
	tests := map[string]struct {
		ev         *tcell.EventKey
		expReloads int
		expClicks  int
		expPassed  bool
	}{
		"r reloads": {
			ev:         tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone),
			expReloads: 1,
		},
		"plus clicks": {
			ev:        tcell.NewEventKey(tcell.KeyRune, '+', tcell.ModNone),
			expClicks: 1,
		},
		"q is consumed": {
			ev: tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		},
		"other runes pass through": {
			ev:        tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone),
			expPassed: true,
		},
		"navigation passes through": {
			ev:        tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone),
			expPassed: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			controls := &fakeControls{}
			v := NewView(controls)

			got := v.handleKey(tt.ev)

			testutil.AssertEqual(t, "passed", got != nil, tt.expPassed)
			testutil.AssertEqual(t, "reloads", controls.reloads, tt.expReloads)
			testutil.AssertEqual(t, "clicks", controls.clicks, tt.expClicks)
		})
	}
}

func TestView_RenderCoalesces(t *testing.T) {
	v := NewView(&fakeControls{})

	v.Render(viewer.Snapshot{Counter: 1})
	v.Render(viewer.Snapshot{Counter: 2})

	testutil.AssertEqual(t, "pending draws", len(v.dirty), 1)
	testutil.AssertEqual(t, "latest", v.latest.Counter, 2)
}

func TestView_Draw(t *testing.T) {
	v := NewView(&fakeControls{})

	v.Render(viewer.Snapshot{
		Groups: []viewer.GroupView{{
			Location: "wrld_1:1",
			World:    &vrc.World{ID: "wrld_1", Name: "The Great Pug"},
			Friends:  []vrc.Friend{{ID: "a", Username: "alice", DisplayName: "Alice", Location: "wrld_1:1"}},
		}},
		Counter:    7,
		Reloads:    1,
		LastReload: time.Date(2026, 10, 14, 8, 5, 9, 0, time.UTC),
	})
	v.draw()

	body := v.body.GetText(true)
	if !strings.Contains(body, "The Great Pug (1)") || !strings.Contains(body, "Alice (alice)") {
		t.Errorf("unexpected body:\n%s", body)
	}
	testutil.AssertEqual(t, "button", v.click.GetLabel(), "++ 7")
	testutil.AssertEqual(t, "status", v.status.GetText(true), "updated 08:05:09")
}

func TestStatusText(t *testing.T) {
	tests := map[string]struct {
		snap viewer.Snapshot
		exp  string
	}{
		"never loaded": {
			exp: "",
		},
		"loading": {
			snap: viewer.Snapshot{Loading: true, Reloads: 3},
			exp:  "loading...",
		},
		"loaded": {
			snap: viewer.Snapshot{Reloads: 1, LastReload: time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC)},
			exp:  "updated 13:04:05",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "status", statusText(tt.snap), tt.exp)
		})
	}
}

func TestView_StartStopsWithContext(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	logger, _ := logtest.NewNullLogger()

	var quit bool
	v := NewView(&fakeControls{},
		WithScreen(screen),
		WithLogger(logger),
		WithOnQuit(func() { quit = true }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- v.Start(ctx) }()

	v.Render(viewer.Snapshot{Counter: 1})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("view did not stop")
	}
	testutil.AssertEqual(t, "quit called", quit, false)
}
