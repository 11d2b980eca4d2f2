package correlate

import "github.com/pixil98/niboshi/internal/vrc"

// Group is the favorited friends sharing one location.
type Group struct {
	Location vrc.Location `json:"location"`
	Friends  []vrc.Friend `json:"friends"`
}

// Result is the outcome of a partition pass. Groups are in the order their
// location was first seen; Remainder keeps the input order.
type Result struct {
	Groups    []Group      `json:"groups"`
	Remainder []vrc.Friend `json:"remainder"`
}

// Group returns the favorited friends at loc.
func (r Result) Group(loc vrc.Location) ([]vrc.Friend, bool) {
	for _, g := range r.Groups {
		if g.Location == loc {
			return g.Friends, true
		}
	}
	return nil, false
}

// Favorited returns the total number of friends across all groups.
func (r Result) Favorited() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Friends)
	}
	return n
}

// Partition moves every friend referenced by a favorite into the group for
// the friend's location. A friend is favorited when some favorite's
// FavoriteID equals the friend's ID.
func Partition(friends []vrc.Friend, favorites []vrc.Favorite) Result {
	favorited := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		favorited[f.FavoriteID] = struct{}{}
	}

	res := Result{
		Groups:    []Group{},
		Remainder: make([]vrc.Friend, 0, len(friends)),
	}
	index := map[vrc.Location]int{}

	for _, f := range friends {
		if _, ok := favorited[f.ID]; !ok {
			res.Remainder = append(res.Remainder, f)
			continue
		}

		i, ok := index[f.Location]
		if !ok {
			i = len(res.Groups)
			index[f.Location] = i
			res.Groups = append(res.Groups, Group{Location: f.Location})
		}
		res.Groups[i].Friends = append(res.Groups[i].Friends, f)
	}

	return res
}

// PendingWorlds returns the distinct worlds referenced by groups, in group
// order, skipping locations without a world and worlds known already.
func PendingWorlds(groups []Group, known func(vrc.WorldID) bool) []vrc.WorldID {
	seen := map[vrc.WorldID]struct{}{}
	var ids []vrc.WorldID

	for _, g := range groups {
		id, ok := g.Location.WorldID()
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if known != nil && known(id) {
			continue
		}
		ids = append(ids, id)
	}

	return ids
}
