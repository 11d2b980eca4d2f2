package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
)

type tracked interface {
	Active() bool
}

// Tracker issues JSON requests and keeps the set of in-flight requests.
// Completed requests are pruned every time a new one is issued, so the
// tracked list stays bounded by the number of concurrent requests.
type Tracker struct {
	client  *http.Client
	logger  logrus.FieldLogger
	headers http.Header

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	requests []tracked
	closed   bool
}

func NewTracker(opts ...TrackerOpt) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		client:  http.DefaultClient,
		logger:  logrus.StandardLogger(),
		headers: http.Header{},
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Get issues a GET request and decodes the response body into T.
// onSuccess may be nil; it is only called for a 2xx response that decoded.
func Get[T any](t *Tracker, url string, onSuccess func(T)) *Future[T] {
	return issue(t, http.MethodGet, url, nil, onSuccess)
}

func Delete[T any](t *Tracker, url string, onSuccess func(T)) *Future[T] {
	return issue(t, http.MethodDelete, url, nil, onSuccess)
}

// Post issues a POST request with body encoded as JSON.
func Post[T any](t *Tracker, url string, body any, onSuccess func(T)) *Future[T] {
	return issue(t, http.MethodPost, url, body, onSuccess)
}

// Put issues a PUT request with body encoded as JSON.
func Put[T any](t *Tracker, url string, body any, onSuccess func(T)) *Future[T] {
	return issue(t, http.MethodPut, url, body, onSuccess)
}

// Len returns the number of requests currently tracked. Requests that have
// completed since the last issue are still counted until the next prune.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// Active reports whether any tracked request is still in flight.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.requests {
		if r.Active() {
			return true
		}
	}
	return false
}

// Close abandons all in-flight requests. Their outcome becomes
// OutcomeCancelled and their callbacks are not invoked. Requests issued
// after Close resolve immediately as cancelled.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.cancel()
	t.requests = nil

	return nil
}

func issue[T any](t *Tracker, method, url string, body any, onSuccess func(T)) *Future[T] {
	f := newFuture[T](method, url)
	logger := t.logger.WithFields(logrus.Fields{
		"request_id": f.id.String(),
		"method":     method,
		"url":        url,
	})

	req, err := t.newRequest(method, url, body)
	if err != nil {
		res := Result[T]{Outcome: OutcomeHTTPError, Err: err}
		handleAPIError(logger, res.Outcome, res.Status, res.Err)
		f.resolve(res)
		return f
	}

	if !t.track(f) {
		f.resolve(Result[T]{Outcome: OutcomeCancelled, Err: ErrClosed})
		return f
	}

	go func() {
		res := roundTrip[T](t, req)
		if res.Ok() {
			if onSuccess != nil {
				onSuccess(res.Value)
			}
		} else {
			handleAPIError(logger, res.Outcome, res.Status, res.Err)
		}
		f.resolve(res)
	}()

	return f
}

func (t *Tracker) newRequest(method, url string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(t.ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for k, vals := range t.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

// track prunes completed requests and appends r. It returns false once the
// tracker has been closed.
func (t *Tracker) track(r tracked) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}

	live := t.requests[:0]
	for _, x := range t.requests {
		if x.Active() {
			live = append(live, x)
		}
	}
	clear(t.requests[len(live):])
	t.requests = append(live, r)

	return true
}

func roundTrip[T any](t *Tracker, req *http.Request) Result[T] {
	resp, err := t.client.Do(req)
	if err != nil {
		if t.ctx.Err() != nil {
			return Result[T]{Outcome: OutcomeCancelled, Err: ErrClosed}
		}
		return Result[T]{Outcome: OutcomeHTTPError, Err: fmt.Errorf("sending request: %w", err)}
	}

	// Ignoring close error - the body has been fully consumed or is being discarded
	defer func() { _ = resp.Body.Close() }()

	res := Result[T]{Status: resp.StatusCode}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var v T
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			if t.ctx.Err() != nil {
				res.Outcome, res.Err = OutcomeCancelled, ErrClosed
				return res
			}
			res.Outcome, res.Err = OutcomeDecodeError, fmt.Errorf("decoding response: %w", err)
			return res
		}
		res.Outcome, res.Value = OutcomeSuccess, v
	case resp.StatusCode == http.StatusUnauthorized:
		res.Outcome, res.Err = OutcomeUnauthorized, ErrUnauthorized
	case resp.StatusCode == http.StatusRequestTimeout:
		res.Outcome, res.Err = OutcomeCancelled, ErrCancelled
	default:
		res.Outcome, res.Err = OutcomeHTTPError, &StatusError{Status: resp.StatusCode}
	}

	return res
}

// handleAPIError is the single sink for failed requests. It only logs.
func handleAPIError(logger logrus.FieldLogger, outcome Outcome, status int, err error) {
	if status != 0 {
		logger = logger.WithField("status", status)
	}

	switch outcome {
	case OutcomeCancelled:
		// Client side cancellation, nothing to report
	case OutcomeDecodeError:
		logger.WithError(err).Error("decoding api response")
	case OutcomeUnauthorized:
		logger.Warn("api request not authenticated")
	default:
		var se *StatusError
		if err != nil && !errors.As(err, &se) {
			logger = logger.WithError(err)
		}
		logger.Error("api request failed")
	}
}
