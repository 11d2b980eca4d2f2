package correlate

import "github.com/pixil98/niboshi/internal/vrc"

// WorldLookup requests the metadata of a single world. Completion is
// reported out of band, typically by merging into a WorldCache.
type WorldLookup interface {
	LookupWorld(id vrc.WorldID)
}

// WorldLookupFunc adapts a function to WorldLookup.
type WorldLookupFunc func(id vrc.WorldID)

func (f WorldLookupFunc) LookupWorld(id vrc.WorldID) {
	f(id)
}

// Correlator joins friends and favorites and schedules the world lookups
// the resulting groups need.
type Correlator struct {
	Lookup WorldLookup
}

func NewCorrelator(lookup WorldLookup) *Correlator {
	return &Correlator{Lookup: lookup}
}

// Run partitions friends and issues one lookup per world that known does
// not report. It returns the partition.
func (c *Correlator) Run(friends []vrc.Friend, favorites []vrc.Favorite, known func(vrc.WorldID) bool) Result {
	res := Partition(friends, favorites)
	c.Schedule(res.Groups, known)
	return res
}

// Schedule issues the lookups for groups and returns the ids it requested.
func (c *Correlator) Schedule(groups []Group, known func(vrc.WorldID) bool) []vrc.WorldID {
	ids := PendingWorlds(groups, known)
	for _, id := range ids {
		c.Lookup.LookupWorld(id)
	}
	return ids
}
