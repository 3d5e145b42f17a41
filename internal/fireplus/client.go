package fireplus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"fireplus_bridge/internal/logger"
	"fireplus_bridge/internal/models"

	"golang.org/x/sync/errgroup"
)

// Endpoints served by the controller's web interface.
const (
	panelPath         = "/php/easpanel.php"
	configurationPath = "/php/easkonfig.php"
	writePath         = "/php/easpanelW.php"
)

// DefaultTimeout bounds every single request.
const DefaultTimeout = 10 * time.Second

const (
	dialTimeout   = 5 * time.Second
	dialKeepAlive = 30 * time.Second
)

// IPFamily restricts which address family is dialed.
type IPFamily string

const (
	IPAny IPFamily = "any"
	IPv4  IPFamily = "ipv4"
	IPv6  IPFamily = "ipv6"
)

// ParseIPFamily accepts "", "any", "ipv4"/"v4" and "ipv6"/"v6".
func ParseIPFamily(s string) (IPFamily, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(IPAny):
		return IPAny, nil
	case string(IPv4), "v4":
		return IPv4, nil
	case string(IPv6), "v6":
		return IPv6, nil
	default:
		return "", fmt.Errorf("invalid ip family %q: must be any, ipv4 or ipv6", s)
	}
}

func (f IPFamily) network() string {
	switch f {
	case IPv4:
		return "tcp4"
	case IPv6:
		return "tcp6"
	default:
		return "tcp"
	}
}

// Client talks to one fire+ controller. It keeps no state between calls.
type Client struct {
	baseURL    string
	family     IPFamily
	timeout    time.Duration
	httpClient *http.Client
	log        *logger.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. The IP family option is ignored then.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithIPFamily pins the address family used to reach the controller.
func WithIPFamily(f IPFamily) Option {
	return func(c *Client) { c.family = f }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client for host, which may be a name, an IPv4 or IPv6
// literal (optionally with port) or a full http:// base URL.
func NewClient(host string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL(host),
		family:  IPAny,
		timeout: DefaultTimeout,
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: newTransport(c.family)}
	}
	return c
}

func baseURL(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
		host = "[" + host + "]"
	}
	return "http://" + host
}

func newTransport(family IPFamily) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: dialKeepAlive}
	network := family.network()
	t.DialContext = func(ctx context.Context, _, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}
	return t
}

// BaseURL returns the controller address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch performs one request bounded by the client timeout and returns the
// body as text. A non-nil body is sent form-encoded.
func (c *Client) Fetch(ctx context.Context, method, rawURL string, body url.Values) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(body.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return "", &APIError{Msg: "building fire+ request", Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classify(method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &CommunicationError{Method: method, URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(method, rawURL, err)
	}
	c.log.Debugw("fireplus_fetch", "method", method, "url", rawURL, "bytes", len(b))
	return string(b), nil
}

// classify sorts a transport failure into the error taxonomy.
func classify(method, rawURL string, err error) error {
	var (
		netErr net.Error
		dnsErr *net.DNSError
		opErr  *net.OpError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return &APIError{Msg: "fire+ request canceled", Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &CommunicationError{Method: method, URL: rawURL, Err: fmt.Errorf("timeout: %w", err)}
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return &CommunicationError{Method: method, URL: rawURL, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Do reports protocol violations (malformed responses, bad redirects) this way.
		return &CommunicationError{Method: method, URL: rawURL, Err: err}
	}
	return &APIError{Msg: "unexpected failure talking to fire+", Err: err}
}

// Read fetches both payloads concurrently and decodes them into one Snapshot.
func (c *Client) Read(ctx context.Context) (models.Snapshot, error) {
	var panel, configuration string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		panel, err = c.Fetch(gctx, http.MethodGet, c.baseURL+panelPath, nil)
		return err
	})
	g.Go(func() error {
		var err error
		configuration, err = c.Fetch(gctx, http.MethodGet, c.baseURL+configurationPath, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}

	s, err := Decode(panel, configuration)
	if err != nil {
		c.log.Warnw("fireplus_decode_failed", "err", err)
		return models.Snapshot{}, err
	}
	s.FetchedAt = c.now().UTC()
	return s, nil
}

// Write posts a complete settings form.
func (c *Client) Write(ctx context.Context, form url.Values) error {
	_, err := c.Fetch(ctx, http.MethodPost, c.baseURL+writePath, form)
	return err
}

// UpdateSettings re-reads the controller, merges s onto that fresh state and
// writes the result. Re-reading narrows, but does not close, the window for
// concurrent changes made on the device itself.
func (c *Client) UpdateSettings(ctx context.Context, s Settings) error {
	current, err := c.Read(ctx)
	if err != nil {
		return err
	}
	form, err := BuildUpdate(current, s)
	if err != nil {
		return &APIError{Msg: "building fire+ settings update", Err: err}
	}
	c.log.Infow("fireplus_write", "version", current.Version, "form", form.Encode())
	return c.Write(ctx, form)
}
