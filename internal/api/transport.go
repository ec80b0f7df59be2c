package api

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryTransport retries a request that failed before any response arrived.
// Responses, whatever their status, are returned as they are.
type retryTransport struct {
	next    http.RoundTripper
	retries uint64
	wait    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		// the body cannot be replayed
		return t.next.RoundTrip(req)
	}

	var resp *http.Response
	operation := func() error {
		r := req
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			r = req.Clone(req.Context())
			r.Body = body
		}
		var err error
		resp, err = t.next.RoundTrip(r)
		if err != nil && req.Context().Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(t.wait), t.retries),
		req.Context(),
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}
