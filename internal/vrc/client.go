package vrc

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pixil98/niboshi/internal/fetch"
)

const (
	DefaultBaseURL           = "https://vrchat.com"
	DefaultFavoritesPageSize = 100

	// AuthCookieName is the session cookie the API authenticates with.
	AuthCookieName = "auth"
)

// Client issues the friend, favorite and world lookups through a tracker.
type Client struct {
	tracker *fetch.Tracker

	baseURL           string
	favoritesPageSize int
}

func NewClient(tracker *fetch.Tracker, opts ...ClientOpt) *Client {
	c := &Client{
		tracker:           tracker,
		baseURL:           DefaultBaseURL,
		favoritesPageSize: DefaultFavoritesPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Friends fetches the current user's friend list.
func (c *Client) Friends(onSuccess func([]Friend)) *fetch.Future[[]Friend] {
	return fetch.Get(c.tracker, c.url("/api/1/auth/user/friends", nil), onSuccess)
}

// Favorites fetches the current user's favorited friends.
func (c *Client) Favorites(onSuccess func([]Favorite)) *fetch.Future[[]Favorite] {
	q := url.Values{}
	q.Set("n", strconv.Itoa(c.favoritesPageSize))
	q.Set("type", "friend")
	return fetch.Get(c.tracker, c.url("/api/1/favorites", q), onSuccess)
}

// World fetches the metadata of a single world.
func (c *Client) World(id WorldID, onSuccess func(World)) *fetch.Future[World] {
	return fetch.Get(c.tracker, c.url("/api/1/worlds/"+url.PathEscape(string(id)), nil), onSuccess)
}

// Close abandons every request still in flight.
func (c *Client) Close() error {
	return c.tracker.Close()
}

func (c *Client) url(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// NewSessionClient returns an http client whose cookie jar replays the given
// session cookie to baseURL. An empty cookie yields a client that relies on
// whatever the jar collects at runtime.
func NewSessionClient(baseURL, authCookie string, timeout time.Duration) (*http.Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	if authCookie = strings.TrimSpace(authCookie); authCookie != "" {
		jar.SetCookies(u, []*http.Cookie{{
			Name:  AuthCookieName,
			Value: authCookie,
			Path:  "/",
		}})
	}

	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}, nil
}
