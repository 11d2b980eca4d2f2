package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pixil98/go-testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/pixil98/niboshi/internal/fetch"
	"github.com/pixil98/niboshi/internal/vrc"
)

const (
	friendsJSON = `[
		{"id":"a","username":"alice","displayName":"Alice","location":"wrld_1:12345"},
		{"id":"b","username":"bob","displayName":"Bob","location":"private"},
		{"id":"c","username":"carol","displayName":"Carol","location":"wrld_1:99999"}
	]`
	favoritesJSON = `[{"id":"f1","favoriteId":"a"},{"id":"f2","favoriteId":"c"}]`
	worldJSON     = `{"id":"wrld_1","name":"The Great Pug","thumbnailImageUrl":"https://example.com/pug.png"}`
)

type fixture struct {
	mu            sync.Mutex
	order         []string
	worldRequests map[string]int

	friendsStatus int
	favoritesGate chan struct{}
}

func (f *fixture) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/1/favorites", func(w http.ResponseWriter, r *http.Request) {
		f.record("favorites")
		if f.favoritesGate != nil {
			select {
			case <-f.favoritesGate:
			case <-r.Context().Done():
				return
			}
		}
		_, _ = w.Write([]byte(favoritesJSON))
	})
	mux.HandleFunc("/api/1/auth/user/friends", func(w http.ResponseWriter, _ *http.Request) {
		f.record("friends")
		if f.friendsStatus != 0 {
			w.WriteHeader(f.friendsStatus)
			return
		}
		_, _ = w.Write([]byte(friendsJSON))
	})
	mux.HandleFunc("/api/1/worlds/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/1/worlds/")
		f.record("world " + id)
		f.mu.Lock()
		f.worldRequests[id]++
		f.mu.Unlock()
		_, _ = w.Write([]byte(worldJSON))
	})
	return mux
}

func (f *fixture) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.order = append(f.order, name)
}

func (f *fixture) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

func (f *fixture) worlds(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.worldRequests[id]
}

type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) Render(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) all() []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.snaps...)
}

// waitFor polls until cond holds for the snapshots rendered so far.
func (r *recorder) waitFor(t *testing.T, cond func([]Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snaps := r.all()
		if len(snaps) > 0 && cond(snaps) {
			return snaps[len(snaps)-1]
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met, rendered %d snapshots", len(r.all()))
	return Snapshot{}
}

func last(cond func(Snapshot) bool) func([]Snapshot) bool {
	return func(snaps []Snapshot) bool {
		return cond(snaps[len(snaps)-1])
	}
}

type harness struct {
	viewer   *Viewer
	recorder *recorder
	tracker  *fetch.Tracker
	hook     *logtest.Hook
	stop     func() error
}

func startViewer(t *testing.T, fx *fixture, opts ...ViewerOpt) *harness {
	t.Helper()

	if fx.worldRequests == nil {
		fx.worldRequests = map[string]int{}
	}
	srv := httptest.NewServer(fx.handler())
	t.Cleanup(srv.Close)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tracker := fetch.NewTracker(fetch.WithClient(srv.Client()), fetch.WithLogger(logger))
	client := vrc.NewClient(tracker, vrc.WithBaseURL(srv.URL))

	rec := &recorder{}
	v := NewViewer(client, append([]ViewerOpt{WithLogger(logger), WithRenderers(rec)}, opts...)...)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- v.Start(ctx) }()

	var once sync.Once
	var stopErr error
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case stopErr = <-errc:
			case <-time.After(5 * time.Second):
				t.Errorf("viewer did not stop")
			}
		})
		return stopErr
	}
	t.Cleanup(func() { _ = stop() })

	return &harness{viewer: v, recorder: rec, tracker: tracker, hook: hook, stop: stop}
}

func TestViewer_ReloadCycle(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	fx := &fixture{}
	h := startViewer(t, fx, WithClock(func() time.Time { return at }))

	snap := h.recorder.waitFor(t, last(func(s Snapshot) bool {
		return s.Reloads == 1 && s.Worlds == 1
	}))

	testutil.AssertEqual(t, "loading", snap.Loading, false)
	testutil.AssertEqual(t, "last reload", snap.LastReload, at)
	testutil.AssertEqual(t, "groups", len(snap.Groups), 2)
	testutil.AssertEqual(t, "remainder", len(snap.Remainder), 1)
	testutil.AssertEqual(t, "remainder id", snap.Remainder[0].ID, "b")

	expWorld := &vrc.World{ID: "wrld_1", Name: "The Great Pug", ThumbnailImageURL: "https://example.com/pug.png"}
	for _, g := range snap.Groups {
		if diff := cmp.Diff(expWorld, g.World); diff != "" {
			t.Errorf("world for %s mismatch (-want +got):\n%s", g.Location, diff)
		}
	}

	exp := []string{"favorites", "friends", "world wrld_1"}
	if diff := cmp.Diff(exp, fx.requests()); diff != "" {
		t.Errorf("request order mismatch (-want +got):\n%s", diff)
	}
	testutil.AssertEqual(t, "world lookups", fx.worlds("wrld_1"), 1)
}

func TestViewer_ReloadUsesWorldCache(t *testing.T) {
	fx := &fixture{}
	h := startViewer(t, fx)

	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Reloads == 1 && s.Worlds == 1 }))

	h.viewer.Reload()
	snap := h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Reloads == 2 && !s.Loading }))

	testutil.AssertEqual(t, "groups", len(snap.Groups), 2)
	testutil.AssertEqual(t, "world lookups", fx.worlds("wrld_1"), 1)

	exp := []string{"favorites", "friends", "world wrld_1", "favorites", "friends"}
	if diff := cmp.Diff(exp, fx.requests()); diff != "" {
		t.Errorf("request order mismatch (-want +got):\n%s", diff)
	}
}

func TestViewer_UnauthorizedFriends(t *testing.T) {
	fx := &fixture{friendsStatus: http.StatusUnauthorized}
	h := startViewer(t, fx)

	// initial, reload, favorites, failure
	snap := h.recorder.waitFor(t, func(snaps []Snapshot) bool {
		return len(snaps) >= 4 && !snaps[len(snaps)-1].Loading
	})

	testutil.AssertEqual(t, "reloads", snap.Reloads, 0)
	testutil.AssertEqual(t, "groups", len(snap.Groups), 0)
	testutil.AssertEqual(t, "remainder", len(snap.Remainder), 0)
	testutil.AssertEqual(t, "world lookups", fx.worlds("wrld_1"), 0)

	var warned bool
	for _, e := range h.hook.AllEntries() {
		if e.Message == "api request not authenticated" {
			warned = true
			testutil.AssertEqual(t, "level", e.Level, logrus.WarnLevel)
		}
	}
	testutil.AssertEqual(t, "warned", warned, true)

	// a failed cycle does not block the next one
	h.viewer.Reload()
	h.recorder.waitFor(t, func(snaps []Snapshot) bool {
		return len(snaps) >= 7 && !snaps[len(snaps)-1].Loading
	})
	testutil.AssertEqual(t, "friends requests", strings.Count(strings.Join(fx.requests(), ","), "friends"), 2)
}

func TestViewer_ReloadCoalesced(t *testing.T) {
	fx := &fixture{favoritesGate: make(chan struct{})}
	h := startViewer(t, fx)

	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Loading }))
	for i := 0; i < 5; i++ {
		h.viewer.Reload()
	}
	h.viewer.Click()
	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Counter == 1 }))

	close(fx.favoritesGate)
	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Reloads == 1 && s.Worlds == 1 }))

	testutil.AssertEqual(t, "favorites requests", strings.Count(strings.Join(fx.requests(), ","), "favorites"), 1)
}

func TestViewer_Click(t *testing.T) {
	h := startViewer(t, &fixture{})

	for i := 0; i < 3; i++ {
		h.viewer.Click()
	}

	snap := h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Counter == 3 }))
	testutil.AssertEqual(t, "counter", snap.Counter, 3)
}

func TestViewer_TickReloads(t *testing.T) {
	h := startViewer(t, &fixture{})
	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Reloads == 1 }))

	if err := h.viewer.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected tick error: %v", err)
	}

	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Reloads == 2 }))
}

func TestViewer_StopAbandonsRequests(t *testing.T) {
	fx := &fixture{favoritesGate: make(chan struct{})}
	h := startViewer(t, fx)
	h.recorder.waitFor(t, last(func(s Snapshot) bool { return s.Loading }))

	if err := h.stop(); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	testutil.AssertEqual(t, "tracked", h.tracker.Len(), 0)

	rendered := len(h.recorder.all())
	close(fx.favoritesGate)
	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, "renders after stop", len(h.recorder.all()), rendered)
}

func TestViewer_QueueFullDropsInput(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	v := NewViewer(nil, WithLogger(logger), WithQueueSize(1))

	v.Click()
	v.Click()

	testutil.AssertEqual(t, "queued", len(v.msgs), 1)
	testutil.AssertEqual(t, "warning", hook.LastEntry().Message, "viewer queue full, dropping message")
	testutil.AssertEqual(t, "msg field", hook.LastEntry().Data["msg"], "click")
}
