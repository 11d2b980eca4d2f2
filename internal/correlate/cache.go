package correlate

import "github.com/pixil98/niboshi/internal/vrc"

// WorldCache holds every world resolved during a session. Entries are never
// replaced or removed. It is not safe for concurrent use; the viewer's
// event loop owns it.
type WorldCache struct {
	worlds map[vrc.WorldID]vrc.World
}

func NewWorldCache() *WorldCache {
	return &WorldCache{
		worlds: map[vrc.WorldID]vrc.World{},
	}
}

// Merge stores w under its own id. It returns false when w has no id or the
// id is already cached.
func (c *WorldCache) Merge(w vrc.World) bool {
	if w.ID == "" || vrc.Location(w.ID).IsSentinel() {
		return false
	}
	if _, ok := c.worlds[w.ID]; ok {
		return false
	}
	c.worlds[w.ID] = w
	return true
}

func (c *WorldCache) Has(id vrc.WorldID) bool {
	_, ok := c.worlds[id]
	return ok
}

func (c *WorldCache) Get(id vrc.WorldID) (vrc.World, bool) {
	w, ok := c.worlds[id]
	return w, ok
}

func (c *WorldCache) Len() int {
	return len(c.worlds)
}

// All returns a copy of the cached worlds.
func (c *WorldCache) All() map[vrc.WorldID]vrc.World {
	out := make(map[vrc.WorldID]vrc.World, len(c.worlds))
	for id, w := range c.worlds {
		out[id] = w
	}
	return out
}
