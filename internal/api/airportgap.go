package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// DefaultAirportGapURL is the public Airport Gap API
	DefaultAirportGapURL = "https://airportgap.com/api"

	airportsPath = "/airports"
	distancePath = "/airports/distance"

	defaultProbeTimeout = 5 * time.Second
	defaultProbeRetries = 2
	defaultProbeWait    = 250 * time.Millisecond
)

// AirportGapOptions configures an AirportGapClient
type AirportGapOptions struct {
	Options
	ProbePath    string        // Endpoint hit by VerifyReachable, defaults to /airports
	ProbeTimeout time.Duration // Bound for the whole probe, retries included
	ProbeRetries uint64        // Extra attempts after a connection error
}

// AirportGapClient is the Airport Gap flavor of Client
type AirportGapClient struct {
	*Client
	probePath    string
	probeTimeout time.Duration
	probeRetries uint64
}

// NewAirportGapClient validates baseURL and builds the client. It sends nothing;
// call VerifyReachable (or use DialAirportGap) before the first real request.
func NewAirportGapClient(baseURL string, opts AirportGapOptions) (*AirportGapClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base URL %q: %v", ErrInvalidConfig, baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q must be absolute with scheme and host", ErrInvalidConfig, baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL %q has unsupported scheme %q", ErrInvalidConfig, baseURL, u.Scheme)
	}

	if opts.ProbePath == "" {
		opts.ProbePath = airportsPath
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = defaultProbeTimeout
	}
	if opts.ProbeRetries == 0 {
		opts.ProbeRetries = defaultProbeRetries
	}

	return &AirportGapClient{
		Client:       NewClient(baseURL, opts.Options),
		probePath:    opts.ProbePath,
		probeTimeout: opts.ProbeTimeout,
		probeRetries: opts.ProbeRetries,
	}, nil
}

// DialAirportGap builds the client and probes it. No client is returned when
// either step fails, so nothing can run against an unusable target.
func DialAirportGap(ctx context.Context, baseURL string, opts AirportGapOptions) (*AirportGapClient, error) {
	c, err := NewAirportGapClient(baseURL, opts)
	if err != nil {
		return nil, err
	}
	if err := c.VerifyReachable(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// VerifyReachable sends one bounded GET to the probe path. Connection errors are
// retried by the transport a few times; a timeout, a transport failure or a
// non-2xx status all yield ErrConnectivity.
func (c *AirportGapClient) VerifyReachable(ctx context.Context) error {
	next := c.http.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	probe := &http.Client{
		Transport: &retryTransport{next: next, retries: c.probeRetries, wait: defaultProbeWait},
		Timeout:   c.probeTimeout,
	}

	u := c.baseURL + c.probePath
	c.log.Infof("Probing %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build probe: %v", ErrConnectivity, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := probe.Do(req)
	if err != nil {
		c.log.WithError(err).Errorf("Probe of %s failed", u)
		return fmt.Errorf("%w: %s: %v", ErrConnectivity, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Errorf("Probe of %s returned %d", u, resp.StatusCode)
		return fmt.Errorf("%w: %s returned status %d", ErrConnectivity, u, resp.StatusCode)
	}
	c.log.Debugf("Probe of %s returned %d", u, resp.StatusCode)
	return nil
}

// ListAirports fetches the airport collection
func (c *AirportGapClient) ListAirports(ctx context.Context) (*Response, error) {
	resp, err := c.Get(ctx, airportsPath, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp, requireJSON(resp)
}

// CalculateDistance asks the service for the distance between two airports.
// The codes are passed through unchecked; the service reports bad ones.
func (c *AirportGapClient) CalculateDistance(ctx context.Context, from, to string) (*Response, error) {
	payload := map[string]string{"from": from, "to": to}
	resp, err := c.Post(ctx, distancePath, payload, nil)
	if err != nil {
		return nil, err
	}
	return resp, requireJSON(resp)
}

func requireJSON(resp *Response) error {
	if !gjson.ValidBytes(resp.Body) {
		return fmt.Errorf("%w: status %d: %.200s", ErrMalformedBody, resp.StatusCode, resp.Body)
	}
	return nil
}
