package vrc

import "strings"

// WorldID is the world part of a location, e.g. "wrld_4cf554b4-430c-4f8f-b53e-1f294eed230b".
type WorldID string

// Location is where a friend currently is. World instances are encoded as
// "<worldId>:<instance>"; the remaining values are sentinels.
type Location string

const (
	PrivateLocation   Location = "private"
	OfflineLocation   Location = "offline"
	TravelingLocation Location = "traveling"
)

// WorldID returns the world referenced by the location. Sentinels, empty
// locations and locations without a ':' separator have no world.
func (l Location) WorldID() (WorldID, bool) {
	if l.IsSentinel() {
		return "", false
	}

	id, _, found := strings.Cut(string(l), ":")
	if !found || id == "" || Location(id).IsSentinel() {
		return "", false
	}

	return WorldID(id), true
}

// IsPrivate reports whether the friend's location is hidden.
func (l Location) IsPrivate() bool {
	return l == PrivateLocation
}

// IsSentinel reports whether l is one of the reserved non-world values.
func (l Location) IsSentinel() bool {
	switch l {
	case PrivateLocation, OfflineLocation, TravelingLocation:
		return true
	default:
		return false
	}
}

type Friend struct {
	ID                 string   `json:"id"`
	Username           string   `json:"username"`
	DisplayName        string   `json:"displayName"`
	AvatarThumbnailURL string   `json:"avatarThumbnailUrl"`
	Location           Location `json:"location"`
}

// Favorite marks the user referenced by FavoriteID as favorited. ID is the
// favorite record's own identifier.
type Favorite struct {
	ID         string   `json:"id"`
	FavoriteID string   `json:"favoriteId"`
	Type       string   `json:"type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type World struct {
	ID                WorldID `json:"id"`
	Name              string  `json:"name"`
	ThumbnailImageURL string  `json:"thumbnailImageUrl,omitempty"`
}
