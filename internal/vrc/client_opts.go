package vrc

import "strings"

type ClientOpt func(*Client)

// WithBaseURL sets the API host, e.g. "https://vrchat.com"
func WithBaseURL(u string) ClientOpt {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithFavoritesPageSize sets the n parameter of the favorites request
func WithFavoritesPageSize(n int) ClientOpt {
	return func(c *Client) {
		if n > 0 {
			c.favoritesPageSize = n
		}
	}
}
