// Package api wraps HTTP calls against REST services with request/response logging.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a whole request/response exchange
const DefaultTimeout = 30 * time.Second

// Options configures a Client
type Options struct {
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
}

// Client sends requests relative to a base URL over one reused *http.Client.
// It never turns a non-2xx status into an error; callers inspect StatusCode.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// NewClient creates a generic API client
func NewClient(baseURL string, opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		log:     opts.Logger.WithField("component", "api"),
	}
}

// BaseURL returns the URL every path is appended to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON looks up a gjson path in the body, e.g. "data.#" or "data.attributes.kilometers".
func (r *Response) JSON(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Decode unmarshals the body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get sends a GET request for path with optional query parameters and headers
func (c *Client) Get(ctx context.Context, path string, query url.Values, headers http.Header) (*Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	c.log.Infof("GET %s | Params: %v", u, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build GET %s: %w", u, err)
	}
	return c.do(req, headers)
}

// Post sends a POST request for path. A nil body sends nothing, url.Values are
// form-encoded, []byte is sent as is and anything else is encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, headers http.Header) (*Response, error) {
	u := c.baseURL + path

	payload, contentType, err := encodeBody(body)
	if err != nil {
		return nil, fmt.Errorf("encode POST %s body: %w", u, err)
	}
	c.log.Infof("POST %s | Data: %s", u, payload)

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build POST %s: %w", u, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.do(req, headers)
}

func (c *Client) do(req *http.Request, headers http.Header) (*Response, error) {
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", req.Method, req.URL, err)
	}

	c.log.Debugf("Response [%d]: %s", resp.StatusCode, body)
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case url.Values:
		return []byte(b.Encode()), "application/x-www-form-urlencoded", nil
	case []byte:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}
