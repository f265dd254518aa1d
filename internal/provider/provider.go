// Package provider contains metadata provider implementations
// (MusicBrainz, Last.fm) and the retry policy they share.
//
// The Provider interface is defined in internal/metadata
// (metadata.Provider), following the Go convention of defining
// interfaces where they are consumed. Each sub-package here implements
// that interface for a specific service.
package provider

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 10 * time.Second
	// DefaultRetries is how many attempts a lookup gets before giving up.
	DefaultRetries = 3
	// DefaultBaseDelay is the backoff unit: attempt n waits n*BaseDelay.
	DefaultBaseDelay = 2 * time.Second
)

// Policy describes the shared retry behaviour of provider clients.
type Policy struct {
	Retries   int
	BaseDelay time.Duration
}

// DefaultPolicy returns the retry policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{Retries: DefaultRetries, BaseDelay: DefaultBaseDelay}
}

func (p Policy) normalized() Policy {
	if p.Retries < 1 {
		p.Retries = DefaultRetries
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	return p
}

// Do executes the request, retrying transport failures and non-2xx
// responses with linear backoff (BaseDelay * attempt number). The
// caller owns the returned body. After exhausting all attempts the
// last error is returned; callers degrade that to "no result".
func Do(client *http.Client, req *http.Request, policy Policy) (*http.Response, error) {
	policy = policy.normalized()
	ctx := req.Context()

	var lastErr error
	for attempt := 1; attempt <= policy.Retries; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			err = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
		}
		lastErr = err

		if attempt == policy.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(policy.BaseDelay * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("giving up after %d attempts: %w", policy.Retries, lastErr)
}
