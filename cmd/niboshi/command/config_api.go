package command

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/sirupsen/logrus"

	"github.com/pixil98/niboshi/internal/fetch"
	"github.com/pixil98/niboshi/internal/vrc"
)

const (
	AuthCookieEnv    = "NIBOSHI_AUTH_COOKIE"
	DefaultUserAgent = "niboshi/0.1"
)

type ApiConfig struct {
	BaseURL           string `json:"base_url"`
	AuthCookie        string `json:"auth_cookie"`
	UserAgent         string `json:"user_agent"`
	FavoritesPageSize int    `json:"favorites_page_size"`
	RequestTimeout    string `json:"request_timeout"`
}

func (c *ApiConfig) validate() error {
	el := errors.NewErrorList()

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			el.Add(fmt.Errorf("parsing base_url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			el.Add(fmt.Errorf("base_url must be an http or https url"))
		}
	}

	if c.FavoritesPageSize < 0 {
		el.Add(fmt.Errorf("favorites_page_size must not be negative"))
	}

	if c.RequestTimeout != "" {
		_, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing request_timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *ApiConfig) baseURL() string {
	if c.BaseURL == "" {
		return vrc.DefaultBaseURL
	}
	return c.BaseURL
}

// authCookie prefers the config file and falls back to the environment.
func (c *ApiConfig) authCookie() string {
	if c.AuthCookie != "" {
		return c.AuthCookie
	}
	return os.Getenv(AuthCookieEnv)
}

func (c *ApiConfig) buildClient(logger logrus.FieldLogger) (*vrc.Client, error) {
	var timeout time.Duration
	if c.RequestTimeout != "" {
		d, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing request_timeout: %w", err)
		}
		timeout = d
	}

	cookie := c.authCookie()
	if cookie == "" {
		logger.Warn("no auth cookie configured, requests will be unauthenticated")
	}

	httpClient, err := vrc.NewSessionClient(c.baseURL(), cookie, timeout)
	if err != nil {
		return nil, fmt.Errorf("creating http client: %w", err)
	}

	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	tracker := fetch.NewTracker(
		fetch.WithClient(httpClient),
		fetch.WithLogger(logger.WithField("module", "fetch")),
		fetch.WithHeader("User-Agent", ua),
	)

	opts := []vrc.ClientOpt{vrc.WithBaseURL(c.baseURL())}
	if c.FavoritesPageSize != 0 {
		opts = append(opts, vrc.WithFavoritesPageSize(c.FavoritesPageSize))
	}

	return vrc.NewClient(tracker, opts...), nil
}
