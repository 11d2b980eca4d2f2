package display

import (
	"fmt"
	"strings"

	"github.com/pixil98/niboshi/internal/viewer"
	"github.com/pixil98/niboshi/internal/vrc"
)

// RenderText lays out a snapshot as plain text: favorited friends grouped by
// location, the remaining friends, then the click counter.
func (f *Formatter) RenderText(snap viewer.Snapshot) string {
	var sb strings.Builder

	if snap.Loading {
		sb.WriteString("Loading...\n\n")
	}

	sb.WriteString("Favorites\n")
	if len(snap.Groups) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, g := range snap.Groups {
		fmt.Fprintf(&sb, "  %s (%d)\n", f.headerLine(g), len(g.Friends))
		for _, fr := range g.Friends {
			fmt.Fprintf(&sb, "    %s\n", f.friendLine(fr))
		}
	}

	sb.WriteString("\nFriends\n")
	if len(snap.Remainder) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, fr := range snap.Remainder {
		fmt.Fprintf(&sb, "  %s\n", f.friendLine(fr))
	}

	fmt.Fprintf(&sb, "\nClicks: %d\n", snap.Counter)

	return f.Wrap(sb.String())
}

func (f *Formatter) headerLine(g viewer.GroupView) string {
	h := Header{Location: g.Location}
	if id, ok := g.Location.WorldID(); ok {
		h.WorldID = id
	}
	if g.World != nil {
		h.WorldName = g.World.Name
		h.ThumbnailURL = g.World.ThumbnailImageURL
	}

	s, err := f.Header(h)
	if err != nil {
		return string(g.Location)
	}
	return s
}

func (f *Formatter) friendLine(fr vrc.Friend) string {
	s, err := f.Friend(fr)
	if err != nil {
		return fr.DisplayName
	}
	return s
}
