// Package validator checks bookmark URLs for reachability and classifies
// them into the link-health statuses.
//
// Each record gets a single bounded attempt: no retries. Results depend
// on the network at the time of the call.
package validator

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/logger"
	"github.com/MrSnakeDoc/favorg/internal/urlnorm"
)

// Result is the outcome of checking one URL.
type Result struct {
	ID         string        `json:"id,omitempty"`
	URL        string        `json:"url"`
	Status     domain.Status `json:"status_type"`
	HTTPStatus int           `json:"http_status,omitempty"`
	Method     string        `json:"method,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`

	// Attempted is false when no network call was made (localhost,
	// invalid URL, deadline already passed).
	Attempted bool `json:"attempted"`

	// Canceled is set when the caller went away before the check could
	// conclude. Status then carries no verdict and is never written back.
	Canceled bool `json:"canceled,omitempty"`

	// Locked records are checked but keep their status; Applied tells
	// whether Status was written to the record.
	Locked  bool `json:"locked"`
	Applied bool `json:"applied"`
}

// Report aggregates a Validate run.
type Report struct {
	Results        []Result              `json:"results"`
	TotalChecked   int                   `json:"total_checked"`
	DeadLinksFound int                   `json:"dead_links_found"`
	Counts         map[domain.Status]int `json:"counts"`
	LockedCount    int                   `json:"locked_count"`
	CanceledCount  int                   `json:"canceled_count"`
	Duration       time.Duration         `json:"duration"`
}

// Validator probes URLs with HEAD (GET when HEAD is refused).
type Validator struct {
	opts     Options
	client   *http.Client
	log      logger.Logger
	progress func(Result)
	mu       sync.Mutex
}

// New builds a Validator. The default client never follows redirects:
// a 3xx answer already proves the link is alive.
func New(opts Options, log logger.Logger, options ...Option) *Validator {
	opts = opts.withDefaults()
	v := &Validator{
		opts: opts,
		log:  log.With(logger.Component("validator")),
	}
	for _, o := range options {
		o(v)
	}
	if v.client == nil {
		v.client = newClient(opts)
	}
	return v
}

func newClient(opts Options) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return (&net.Dialer{
					Timeout:   opts.Timeout,
					KeepAlive: 0,
				}).DialContext(ctx, network, addr)
			},
			TLSHandshakeTimeout:   opts.Timeout,
			ResponseHeaderTimeout: opts.Timeout,
			TLSClientConfig: &tls.Config{
				MinVersion:         tls.VersionTLS12,
				InsecureSkipVerify: opts.SkipTLSVerify,
			},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Options returns the effective options.
func (v *Validator) Options() Options { return v.opts }

// Check classifies a single URL.
func (v *Validator) Check(ctx context.Context, raw string) Result {
	start := time.Now()
	res := v.check(ctx, raw)
	res.Duration = time.Since(start)
	return res
}

func (v *Validator) check(ctx context.Context, raw string) Result {
	res := Result{URL: raw}

	if _, err := urlnorm.Normalize(raw); err != nil {
		res.Status = domain.StatusDead
		res.Error = err.Error()
		return res
	}
	if urlnorm.IsLocalhost(raw) {
		res.Status = domain.StatusLocalhost
		return res
	}

	u, _ := url.Parse(strings.TrimSpace(raw))
	if s := strings.ToLower(u.Scheme); s != "http" && s != "https" {
		res.Status = domain.StatusDead
		res.Error = fmt.Sprintf("unsupported scheme %q", u.Scheme)
		return res
	}

	if err := ctx.Err(); err != nil {
		return interrupted(res, err)
	}

	rctx, cancel := context.WithTimeout(ctx, v.opts.Timeout)
	defer cancel()

	res.Attempted = true
	res.Method = http.MethodHead
	code, err := v.probe(rctx, http.MethodHead, u.String())
	if err == nil && (code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented) {
		res.Method = http.MethodGet
		code, err = v.probe(rctx, http.MethodGet, u.String())
	}

	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return interrupted(res, ctx.Err())
	}

	switch {
	case err != nil && isTimeout(rctx, err):
		res.Status = domain.StatusTimeout
		res.Error = err.Error()
	case err != nil:
		res.Status = domain.StatusDead
		res.Error = err.Error()
	case code < http.StatusBadRequest:
		res.Status = domain.StatusActive
		res.HTTPStatus = code
	default:
		res.Status = domain.StatusDead
		res.HTTPStatus = code
	}
	return res
}

func (v *Validator) probe(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", v.opts.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := v.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, nil
}

// interrupted classifies a check cut short by ctx: the run deadline counts
// as timeout, a cancellation yields no verdict.
func interrupted(res Result, err error) Result {
	res.Error = err.Error()
	if errors.Is(err, context.Canceled) {
		res.Canceled = true
		res.Status = domain.StatusUnchecked
		return res
	}
	res.Status = domain.StatusTimeout
	return res
}

// isTimeout reports a per-request or run deadline. Cancellation is not a timeout.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Validate checks every record with at most Options.Concurrency checks in
// flight and writes the outcome to unlocked records. It never fails: a dead
// network yields a report full of dead or timeout results.
func (v *Validator) Validate(ctx context.Context, records []*domain.Bookmark) *Report {
	start := time.Now()

	if v.opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.opts.Deadline)
		defer cancel()
	}

	results := make([]Result, len(records))

	var g errgroup.Group
	g.SetLimit(v.opts.Concurrency)

	for i, b := range records {
		g.Go(func() error {
			r := v.Check(ctx, b.URL)
			r.ID = b.ID
			results[i] = r
			v.report(r)
			return nil
		})
	}
	_ = g.Wait()

	rep := &Report{
		TotalChecked: len(records),
		Counts:       make(map[domain.Status]int),
	}
	for i, b := range records {
		r := results[i]
		if r.Canceled {
			r.Status = b.Status
			r.Locked = b.Locked()
			rep.CanceledCount++
			rep.Results = append(rep.Results, r)
			continue
		}
		if b.Locked() {
			r.Locked = true
			rep.LockedCount++
		} else {
			b.Status = r.Status
			r.Applied = true
		}
		if r.Status == domain.StatusDead {
			rep.DeadLinksFound++
		}
		rep.Counts[r.Status]++
		rep.Results = append(rep.Results, r)
	}
	rep.Duration = time.Since(start)

	v.log.Info("link validation finished",
		logger.Int("total", rep.TotalChecked),
		logger.Int("dead", rep.DeadLinksFound),
		logger.Int("timeout", rep.Counts[domain.StatusTimeout]),
		logger.Int("locked", rep.LockedCount),
		logger.Int("canceled", rep.CanceledCount),
		logger.Duration("duration", rep.Duration))

	return rep
}

func (v *Validator) report(r Result) {
	if v.progress == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.progress(r)
}
