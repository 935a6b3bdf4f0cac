// Package lookup resolves identifiers into a display name and email address
// through the directory lookup web app.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultFormField      = "UserEmail"
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
	DefaultMinInterval    = 250 * time.Millisecond

	maxBodySize = 1 << 20
)

// ErrNoMarker indicates a response carried neither the success nor the
// not-found marker.
var ErrNoMarker = errors.New("response has no recognized marker")

// Outcome classifies how a lookup ended.
type Outcome int

const (
	// OutcomeUnresolved means the deadline passed without a usable response.
	OutcomeUnresolved Outcome = iota
	// OutcomeResolved means both name and email were found.
	OutcomeResolved
	// OutcomeNotFound means the directory has no entry for the identifier.
	OutcomeNotFound
	// OutcomeNonInteractive means the identifier is a service principal.
	OutcomeNonInteractive
	// OutcomeUnparsed means the response succeeded but lacked the fields.
	OutcomeUnparsed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeNonInteractive:
		return "non-interactive"
	case OutcomeUnparsed:
		return "unparsed"
	default:
		return "unresolved"
	}
}

// Result is the outcome of resolving one identifier.
type Result struct {
	Identifier string
	Outcome    Outcome
	Name       string
	Email      string
	Attempts   int
	Elapsed    time.Duration

	// LastErr is the error of the last unsuccessful attempt, if any.
	LastErr error
}

// Markers are the literal strings that classify a response.
type Markers struct {
	Success        string
	NotFound       string
	NonInteractive []string
}

// DefaultMarkers returns the markers of the directory lookup app.
func DefaultMarkers() Markers {
	return Markers{
		Success:        "company",
		NotFound:       "No AD entry found",
		NonInteractive: []string{"sid", "gid"},
	}
}

// IsNonInteractive reports whether identifier names a service principal.
func (m Markers) IsNonInteractive(identifier string) bool {
	for _, marker := range m.NonInteractive {
		if marker != "" && strings.Contains(identifier, marker) {
			return true
		}
	}
	return false
}

// Client issues lookups against the directory web app.
type Client struct {
	url            string
	formField      string
	client         *http.Client
	logger         *slog.Logger
	timeout        time.Duration
	requestTimeout time.Duration
	minInterval    time.Duration
	markers        Markers
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the overall deadline for one identifier, measured from
// the first attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRequestTimeout bounds a single HTTP attempt. Zero disables the bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithMinInterval sets the minimum delay between attempts. Zero retries
// immediately.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) {
		c.minInterval = d
	}
}

// WithMarkers overrides the response markers.
func WithMarkers(m Markers) Option {
	return func(c *Client) {
		c.markers = m
	}
}

// WithFormField sets the form field that carries the identifier.
func WithFormField(field string) Option {
	return func(c *Client) {
		c.formField = field
	}
}

// New creates a client for the lookup endpoint at rawURL.
func New(rawURL string, opts ...Option) (*Client, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	c := &Client{
		url:            rawURL,
		formField:      DefaultFormField,
		client:         &http.Client{},
		logger:         slog.Default(),
		timeout:        DefaultTimeout,
		requestTimeout: DefaultRequestTimeout,
		minInterval:    DefaultMinInterval,
		markers:        DefaultMarkers(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout <= 0 {
		return nil, fmt.Errorf("lookup timeout must be positive, got %s", c.timeout)
	}
	if c.markers.Success == "" {
		return nil, fmt.Errorf("lookup success marker is empty")
	}

	return c, nil
}

// ValidateURL checks that rawURL is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("lookup url is empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing lookup url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("lookup url must be http or https: %s", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("lookup url has no host: %s", rawURL)
	}
	return nil
}

// Resolve looks identifier up, retrying until a response carries the success
// or not-found marker or the deadline passes. It never returns an error:
// failures are reported through Result.Outcome and Result.LastErr.
func (c *Client) Resolve(ctx context.Context, identifier string) Result {
	start := time.Now()
	res := Result{Identifier: identifier}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var limiter *rate.Limiter
	if c.minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(c.minInterval), 1)
	}

	for ctx.Err() == nil {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}

		res.Attempts++
		body, status, err := c.attempt(ctx, identifier)
		if err != nil {
			res.LastErr = err
			c.logger.Debug("lookup attempt failed", "identifier", identifier, "attempt", res.Attempts, "err", err)
			continue
		}

		if c.markers.NotFound != "" && strings.Contains(body, c.markers.NotFound) {
			res.Outcome = OutcomeNotFound
			res.LastErr = nil
			break
		}

		if strings.Contains(body, c.markers.Success) {
			res.LastErr = nil
			c.classify(&res, body)
			break
		}

		if status < 200 || status >= 300 {
			res.LastErr = fmt.Errorf("lookup returned status %d", status)
			c.logger.Debug("lookup attempt failed", "identifier", identifier, "attempt", res.Attempts, "status", status)
			continue
		}
		res.LastErr = ErrNoMarker
	}

	res.Elapsed = time.Since(start)
	return res
}

func (c *Client) classify(res *Result, body string) {
	d := ParseResponse(body)
	switch {
	case d.Complete():
		res.Outcome = OutcomeResolved
		res.Name = d.Name
		res.Email = d.Email
	case c.markers.IsNonInteractive(res.Identifier):
		res.Outcome = OutcomeNonInteractive
	default:
		res.Outcome = OutcomeUnparsed
		res.Name = d.Name
		res.Email = d.Email
	}
}

// attempt performs a single lookup request and returns the response body and
// status code. The status is not checked here: markers in the body decide.
func (c *Client) attempt(ctx context.Context, identifier string) (string, int, error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	form := url.Values{}
	form.Set(c.formField, identifier)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	return string(body), resp.StatusCode, nil
}
