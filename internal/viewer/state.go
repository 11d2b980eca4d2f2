package viewer

import (
	"time"

	"github.com/pixil98/niboshi/internal/correlate"
	"github.com/pixil98/niboshi/internal/fetch"
	"github.com/pixil98/niboshi/internal/vrc"
)

// Msg is an update applied to State.
type Msg interface {
	isMsg()
}

// ReloadRequested starts a fetch cycle.
type ReloadRequested struct{}

// FavoritesLoaded replaces the favorites list.
type FavoritesLoaded struct {
	Favorites []vrc.Favorite
}

// FriendsLoaded replaces the friend list and ends the cycle.
type FriendsLoaded struct {
	Friends []vrc.Friend
	At      time.Time
}

// FetchFailed ends the cycle without touching friends or favorites.
type FetchFailed struct {
	Stage   string
	Outcome fetch.Outcome
}

// WorldLoaded merges a resolved world. Requested is the id the lookup was
// issued for.
type WorldLoaded struct {
	Requested vrc.WorldID
	World     vrc.World
}

// WorldFailed clears an in-flight lookup so a later cycle can retry it.
type WorldFailed struct {
	ID vrc.WorldID
}

// Clicked increments the counter.
type Clicked struct{}

func (ReloadRequested) isMsg() {}
func (FavoritesLoaded) isMsg() {}
func (FriendsLoaded) isMsg()   {}
func (FetchFailed) isMsg()     {}
func (WorldLoaded) isMsg()     {}
func (WorldFailed) isMsg()     {}
func (Clicked) isMsg()         {}

// State is everything the view layer renders. It is only mutated through
// Update.
type State struct {
	Favorites []vrc.Favorite
	Groups    []correlate.Group
	Remainder []vrc.Friend
	Worlds    *correlate.WorldCache

	Counter    int
	Loading    bool
	Reloads    int
	LastReload time.Time
}

func NewState() *State {
	return &State{
		Groups: []correlate.Group{},
		Worlds: correlate.NewWorldCache(),
	}
}

// Update applies msg and reports whether anything visible changed.
func (s *State) Update(msg Msg) bool {
	switch m := msg.(type) {
	case ReloadRequested:
		if s.Loading {
			return false
		}
		s.Loading = true
		return true

	case FavoritesLoaded:
		s.Favorites = m.Favorites
		return true

	case FriendsLoaded:
		res := correlate.Partition(m.Friends, s.Favorites)
		s.Groups = res.Groups
		s.Remainder = res.Remainder
		s.Loading = false
		s.Reloads++
		s.LastReload = m.At
		return true

	case FetchFailed:
		s.Loading = false
		return true

	case WorldLoaded:
		return s.Worlds.Merge(m.World)

	case WorldFailed:
		return false

	case Clicked:
		s.Counter++
		return true

	default:
		return false
	}
}

// GroupView is a favorites group with its world resolved when known.
type GroupView struct {
	Location vrc.Location `json:"location"`
	World    *vrc.World   `json:"world,omitempty"`
	Friends  []vrc.Friend `json:"friends"`
}

// Snapshot is a copy of State safe to hand to another goroutine.
type Snapshot struct {
	Groups     []GroupView  `json:"groups"`
	Remainder  []vrc.Friend `json:"remainder"`
	Worlds     int          `json:"worlds"`
	Counter    int          `json:"counter"`
	Loading    bool         `json:"loading"`
	Reloads    int          `json:"reloads"`
	LastReload time.Time    `json:"lastReload"`
}

func (s *State) Snapshot() Snapshot {
	groups := make([]GroupView, 0, len(s.Groups))
	for _, g := range s.Groups {
		gv := GroupView{
			Location: g.Location,
			Friends:  append([]vrc.Friend(nil), g.Friends...),
		}
		if id, ok := g.Location.WorldID(); ok {
			if w, ok := s.Worlds.Get(id); ok {
				gv.World = &w
			}
		}
		groups = append(groups, gv)
	}

	return Snapshot{
		Groups:     groups,
		Remainder:  append([]vrc.Friend(nil), s.Remainder...),
		Worlds:     s.Worlds.Len(),
		Counter:    s.Counter,
		Loading:    s.Loading,
		Reloads:    s.Reloads,
		LastReload: s.LastReload,
	}
}
