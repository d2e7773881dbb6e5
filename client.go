// Package geoapi is a client for a Google-Maps-style geospatial web service
// family: elevation, geocoding, and directions endpoints sharing one request
// dispatch pipeline with rate limiting, retry with backoff, and typed error
// classification.
package geoapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/txomin/geoapi/internal/pkg/metrics"
	"github.com/txomin/geoapi/internal/signing"
)

const (
	defaultBaseURL     = "https://maps.googleapis.com"
	defaultQPS         = 10
	defaultWorkers     = 10
	defaultQueueDepth  = 128
	defaultLimiterWait = 10 * time.Second
	defaultRetryBudget = 30 * time.Second
	defaultHTTPTimeout = 10 * time.Second
)

// Client is the shared request dispatcher. One Client serves many concurrent
// logical requests: network attempts and retry waits run on its bounded
// worker pool, so the rate limiter's view of outbound traffic stays global.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	clientID   string
	signer     *signing.Signer

	qps         float64
	limiter     *rate.Limiter
	limiterWait time.Duration

	workers        int
	retryBudget    time.Duration
	backoffInitial time.Duration

	logger *slog.Logger
	tracer trace.Tracer

	jobs     chan func()
	workerWG sync.WaitGroup
	sendWG   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Option configures a Client.
type Option func(*Client) error

// WithAPIKey authenticates requests with an API key.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		c.apiKey = key
		return nil
	}
}

// WithClientIDAndSecret authenticates with an enterprise client ID and signs
// every request with the shared secret.
func WithClientIDAndSecret(clientID, secret string) Option {
	return func(c *Client) error {
		s, err := signing.New(secret)
		if err != nil {
			return err
		}
		c.clientID = clientID
		c.signer = s
		return nil
	}
}

// WithBaseURL points the client at a different service root. Used by tests
// and by proxies fronting the real service.
func WithBaseURL(base string) Option {
	return func(c *Client) error {
		c.baseURL = base
		return nil
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithQPS sets the outbound request rate shared by all callers.
func WithQPS(qps float64) Option {
	return func(c *Client) error {
		if qps <= 0 {
			return fmt.Errorf("geoapi: qps must be positive, got %v", qps)
		}
		c.qps = qps
		return nil
	}
}

// WithWorkers sets the size of the worker pool executing requests.
func WithWorkers(n int) Option {
	return func(c *Client) error {
		if n <= 0 {
			return fmt.Errorf("geoapi: worker count must be positive, got %d", n)
		}
		c.workers = n
		return nil
	}
}

// WithRetryBudget bounds the elapsed time spent retrying one request.
func WithRetryBudget(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("geoapi: retry budget must be positive, got %v", d)
		}
		c.retryBudget = d
		return nil
	}
}

// WithLimiterWait bounds how long one attempt waits for a rate limiter
// permit before failing as locally rate-limited.
func WithLimiterWait(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("geoapi: limiter wait must be positive, got %v", d)
		}
		c.limiterWait = d
		return nil
	}
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = l
		return nil
	}
}

// NewClient builds a dispatcher and starts its worker pool. Callers should
// Close it once all pending requests have completed.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient:     &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:        defaultBaseURL,
		qps:            defaultQPS,
		limiterWait:    defaultLimiterWait,
		workers:        defaultWorkers,
		retryBudget:    defaultRetryBudget,
		backoffInitial: backoff.DefaultInitialInterval,
		logger:         slog.Default(),
		tracer:         otel.Tracer("github.com/txomin/geoapi"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.limiter = rate.NewLimiter(rate.Limit(c.qps), 1)
	c.jobs = make(chan func(), defaultQueueDepth)
	for i := 0; i < c.workers; i++ {
		c.workerWG.Add(1)
		go c.worker()
	}
	return c, nil
}

func (c *Client) worker() {
	defer c.workerWG.Done()
	for job := range c.jobs {
		job()
	}
}

// SetQPS changes the shared request rate at runtime. It affects
// acquisitions queued after the call; permits already granted stand.
func (c *Client) SetQPS(qps float64) {
	if qps > 0 {
		c.limiter.SetLimit(rate.Limit(qps))
	}
}

// Close stops the worker pool after draining queued requests. Requests
// dispatched after Close fail with ErrClientClosed.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.sendWG.Wait()
	close(c.jobs)
	c.workerWG.Wait()
}

// submit enqueues a job without ever blocking the dispatching caller. When
// the queue is full the handoff moves to a goroutine; the job itself still
// runs on the pool.
func (c *Client) submit(job func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.sendWG.Add(1)
	c.mu.Unlock()

	select {
	case c.jobs <- job:
		c.sendWG.Done()
	default:
		go func() {
			c.jobs <- job
			c.sendWG.Done()
		}()
	}
	return true
}

// GetSingle dispatches a request whose declared response shape carries
// exactly one result. params are ordered key/value pairs.
func GetSingle[T any](ctx context.Context, c *Client, basePath string, params ...string) *PendingResult[T] {
	return dispatch(ctx, c, basePath, params, classifySingle[T])
}

// GetList dispatches a request whose declared response shape carries zero
// or more results.
func GetList[T any](ctx context.Context, c *Client, basePath string, params ...string) *PendingResult[[]T] {
	return dispatch(ctx, c, basePath, params, classifyList[T])
}

// dispatch validates parameters, builds the signed URL, and hands the
// request to the worker pool, returning its pending handle immediately.
// Validation failures complete the handle synchronously and never reach the
// retry loop.
func dispatch[R any](ctx context.Context, c *Client, basePath string, params []string, classify func([]byte) (R, error)) *PendingResult[R] {
	ctx, cancel := context.WithCancel(ctx)
	p := newPending[R](cancel)

	var zero R
	url, err := c.requestURL(basePath, params)
	if err != nil {
		cancel()
		p.complete(zero, err)
		return p
	}

	if !c.submit(func() { run(ctx, c, p, basePath, url, classify) }) {
		cancel()
		p.complete(zero, ErrClientClosed)
	}
	return p
}

// run executes the attempt/retry loop for one request and performs its
// single terminal transition.
func run[R any](ctx context.Context, c *Client, p *PendingResult[R], path, url string, classify func([]byte) (R, error)) {
	var zero R
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "geoapi.request",
		trace.WithAttributes(attribute.String("geoapi.path", path)))
	defer span.End()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.backoffInitial
	bo.MaxElapsedTime = c.retryBudget

	var (
		result   R
		attempts int
	)
	op := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ErrCancelled)
		}
		if attempts > 0 {
			metrics.RetriesTotal.WithLabelValues(path).Inc()
		}
		attempts++

		r, err := attempt(ctx, c, path, url, classify)
		if err == nil {
			result = r
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.DebugContext(ctx, "transient failure, will retry",
			"path", path, "attempt", attempts, "error", err)
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(bo, ctx))

	// Cancellation observed at any point wins over whatever the last
	// attempt produced; a terminal handle is unaffected either way.
	if ctx.Err() != nil && err != nil {
		err = ErrCancelled
	}

	var outcome string
	switch {
	case err == nil:
		outcome = "ok"
		p.complete(result, nil)
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		outcome = "cancelled"
		p.complete(zero, ErrCancelled)
	case retryable(err):
		outcome = "retry_exhausted"
		p.complete(zero, &RetryBudgetError{Last: err, Attempts: attempts, Elapsed: time.Since(start)})
	case errors.Is(err, ErrDecode):
		outcome = "decode_error"
		p.complete(zero, err)
	default:
		outcome = "remote_error"
		p.complete(zero, err)
	}

	span.SetAttributes(
		attribute.Int("geoapi.attempts", attempts),
		attribute.String("geoapi.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		c.logger.WarnContext(ctx, "request failed",
			"path", path, "attempts", attempts, "outcome", outcome, "error", err)
	}
	metrics.ObserveRequest(path, outcome, time.Since(start))
}

// attempt performs one rate-limited network attempt and classifies the
// payload.
func attempt[R any](ctx context.Context, c *Client, path, url string, classify func([]byte) (R, error)) (R, error) {
	var zero R

	waitCtx, cancel := context.WithTimeout(ctx, c.limiterWait)
	waitStart := time.Now()
	err := c.limiter.Wait(waitCtx)
	cancel()
	metrics.LimiterWait.Observe(time.Since(waitStart).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return zero, ErrCancelled
		}
		return zero, ErrRateLimited
	}

	metrics.AttemptsTotal.WithLabelValues(path).Inc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return zero, ErrCancelled
		}
		return zero, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return zero, &APIError{Status: StatusOverQueryLimit, Message: "HTTP 429"}
	case resp.StatusCode >= 500:
		return zero, &TransportError{Err: fmt.Errorf("server returned %s", resp.Status)}
	}

	// 2xx and remaining 4xx responses carry the status envelope.
	return classify(body)
}
