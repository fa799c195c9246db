package validator

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 8
)

// Options tunes a validation run.
type Options struct {
	// Timeout bounds a single record check (HEAD and the GET fallback together).
	Timeout time.Duration

	// Concurrency is the maximum number of checks in flight.
	Concurrency int

	// Deadline bounds a whole Validate call. Zero means none.
	// Records not finished when it expires are reported as timeout.
	Deadline time.Duration

	UserAgent     string
	SkipTLSVerify bool
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.UserAgent == "" {
		o.UserAgent = "favorg-linkcheck/1.0"
	}
	return o
}

// Option customizes a Validator.
type Option func(*Validator)

// WithHTTPClient replaces the probing client. The client must not follow redirects.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) { v.client = c }
}

// WithProgress registers a callback invoked once per finished record.
// Calls are serialized.
func WithProgress(fn func(Result)) Option {
	return func(v *Validator) { v.progress = fn }
}
