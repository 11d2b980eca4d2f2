package viewer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/correlate"
	"github.com/pixil98/niboshi/internal/fetch"
	"github.com/pixil98/niboshi/internal/vrc"
)

const DefaultQueueSize = 64

// API is the subset of vrc.Client the viewer drives.
type API interface {
	Favorites(onSuccess func([]vrc.Favorite)) *fetch.Future[[]vrc.Favorite]
	Friends(onSuccess func([]vrc.Friend)) *fetch.Future[[]vrc.Friend]
	World(id vrc.WorldID, onSuccess func(vrc.World)) *fetch.Future[vrc.World]
	Close() error
}

// Renderer receives a snapshot after every visible state change. Render is
// called from the viewer's event loop and must not block.
type Renderer interface {
	Render(Snapshot)
}

// Viewer owns State and runs the only goroutine that touches it. Network
// completions and user input arrive as messages on its queue.
type Viewer struct {
	api        API
	logger     logrus.FieldLogger
	state      *State
	correlator *correlate.Correlator
	renderers  []Renderer

	ctx      context.Context
	msgs     chan Msg
	inflight map[vrc.WorldID]struct{}
	now      func() time.Time
}

func NewViewer(api API, opts ...ViewerOpt) *Viewer {
	v := &Viewer{
		api:      api,
		ctx:      context.Background(),
		logger:   logrus.StandardLogger(),
		state:    NewState(),
		msgs:     make(chan Msg, DefaultQueueSize),
		inflight: map[vrc.WorldID]struct{}{},
		now:      time.Now,
	}
	v.correlator = correlate.NewCorrelator(correlate.WorldLookupFunc(v.lookupWorld))

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// AddRenderer registers r. It must be called before Start.
func (v *Viewer) AddRenderer(r Renderer) {
	v.renderers = append(v.renderers, r)
}

// Reload asks for a new fetch cycle. A request made while a cycle is in
// flight is ignored.
func (v *Viewer) Reload() {
	v.enqueue(ReloadRequested{})
}

// Click increments the counter.
func (v *Viewer) Click() {
	v.enqueue(Clicked{})
}

// Tick reloads on every driver tick.
func (v *Viewer) Tick(_ context.Context) error {
	v.Reload()
	return nil
}

// Start runs the event loop until ctx is done. The first fetch cycle starts
// immediately. In-flight requests are abandoned on return.
func (v *Viewer) Start(ctx context.Context) error {
	defer func() {
		if err := v.api.Close(); err != nil {
			v.logger.WithError(err).Warn("closing api client")
		}
	}()

	v.ctx = ctx
	v.logger.Info("viewer started")
	v.render()
	v.handle(ctx, ReloadRequested{})

	for {
		select {
		case <-ctx.Done():
			v.logger.Info("viewer stopped")
			return nil
		case msg := <-v.msgs:
			v.handle(ctx, msg)
		}
	}
}

func (v *Viewer) handle(ctx context.Context, msg Msg) {
	changed := v.state.Update(msg)

	switch m := msg.(type) {
	case ReloadRequested:
		if !changed {
			v.logger.Debug("reload already in progress")
			return
		}
		forward(ctx, v, v.api.Favorites(nil), func(res fetch.Result[[]vrc.Favorite]) Msg {
			if !res.Ok() {
				return FetchFailed{Stage: "favorites", Outcome: res.Outcome}
			}
			return FavoritesLoaded{Favorites: res.Value}
		})

	case FavoritesLoaded:
		forward(ctx, v, v.api.Friends(nil), func(res fetch.Result[[]vrc.Friend]) Msg {
			if !res.Ok() {
				return FetchFailed{Stage: "friends", Outcome: res.Outcome}
			}
			return FriendsLoaded{Friends: res.Value, At: v.now()}
		})

	case FriendsLoaded:
		ids := v.correlator.Schedule(v.state.Groups, v.known)
		v.logger.WithFields(logrus.Fields{
			"friends":   len(m.Friends),
			"groups":    len(v.state.Groups),
			"lookups":   len(ids),
			"favorites": len(v.state.Favorites),
		}).Info("friends partitioned")

	case FetchFailed:
		v.logger.WithFields(logrus.Fields{
			"stage":   m.Stage,
			"outcome": m.Outcome.String(),
		}).Debug("reload cycle ended early")

	case WorldLoaded:
		delete(v.inflight, m.Requested)

	case WorldFailed:
		delete(v.inflight, m.ID)
	}

	if changed {
		v.render()
	}
}

func (v *Viewer) known(id vrc.WorldID) bool {
	if v.state.Worlds.Has(id) {
		return true
	}
	_, ok := v.inflight[id]
	return ok
}

// lookupWorld runs on the event loop via the correlator.
func (v *Viewer) lookupWorld(id vrc.WorldID) {
	v.inflight[id] = struct{}{}
	f := v.api.World(id, nil)
	forward(v.ctx, v, f, func(res fetch.Result[vrc.World]) Msg {
		if !res.Ok() {
			return WorldFailed{ID: id}
		}
		w := res.Value
		if w.ID == "" {
			w.ID = id
		}
		return WorldLoaded{Requested: id, World: w}
	})
}

func (v *Viewer) render() {
	snap := v.state.Snapshot()
	for _, r := range v.renderers {
		r.Render(snap)
	}
}

// enqueue is used for input from outside the loop. Messages are dropped
// when the queue is full.
func (v *Viewer) enqueue(msg Msg) {
	select {
	case v.msgs <- msg:
	default:
		v.logger.WithField("msg", msgName(msg)).Warn("viewer queue full, dropping message")
	}
}

// forward waits for f and posts the message built from its result back on
// the loop. Nothing is posted once ctx is done.
func forward[T any](ctx context.Context, v *Viewer, f *fetch.Future[T], toMsg func(fetch.Result[T]) Msg) {
	go func() {
		res, err := f.Wait(ctx)
		if err != nil {
			return
		}

		select {
		case v.msgs <- toMsg(res):
		case <-ctx.Done():
		}
	}()
}

func msgName(msg Msg) string {
	switch msg.(type) {
	case ReloadRequested:
		return "reload"
	case Clicked:
		return "click"
	default:
		return "internal"
	}
}
