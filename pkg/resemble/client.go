// Package resemble is a client for the Resemble AI text-to-speech API.
//
// The client covers the v2 REST resources (projects, voices, recordings,
// clips, batches, phonemes, term substitutions, deepfake detection and audio
// edits) on the application server and the direct and streaming synthesis
// endpoints on the synthesis server.
//
// Basic usage:
//
//	client, err := resemble.New(os.Getenv("RESEMBLE_API_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	projects, err := client.Projects.List(ctx, 1, 10)
//
// Streaming synthesis returns audio in fixed-size buffers together with the
// word and phoneme timings embedded in the WAV stream:
//
//	stream, err := client.Clips.Stream(ctx, resemble.StreamInput{
//		ProjectUUID: project,
//		VoiceUUID:   voice,
//		Data:        "Hello from Resemble",
//	}, resemble.StreamConfig{Timestamps: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for {
//		chunk, err := stream.Next()
//		if err == io.EOF {
//			break
//		}
//		...
//	}
//
// Idempotent requests (GET and DELETE) are retried with exponential backoff
// on network errors, 429 and 5xx responses. Every request passes through a
// circuit breaker that opens after repeated server-side failures.
package resemble

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/resemble-ai/resemble-go/internal/config"
	"github.com/resemble-ai/resemble-go/internal/observability"
	"github.com/resemble-ai/resemble-go/internal/resilience"
)

const (
	// DefaultBaseURL is the application server for the REST resources.
	DefaultBaseURL = "https://app.resemble.ai/api/"

	// DefaultSynthesisURL is the synthesis server for direct and streaming synthesis.
	DefaultSynthesisURL = "https://f.cluster.resemble.ai/"

	apiVersion     = "v2"
	defaultTimeout = 60 * time.Second
	userAgent      = "resemble-go/2"
)

// server selects which host a request goes to.
type server int

const (
	appServer server = iota
	synthesisServer
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithBaseURL sets the application server URL. A trailing slash is added
// when missing.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = normalizeURL(u)
	}
}

// WithSynthesisURL sets the synthesis server URL. A trailing slash is added
// when missing.
func WithSynthesisURL(u string) Option {
	return func(c *Client) {
		c.synthesisURL = normalizeURL(u)
	}
}

// WithHTTPClient replaces the HTTP client used for all requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect
// in combination with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger. The default is the process-wide logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryConfig sets the retry policy for idempotent requests. A nil
// config disables retries.
func WithRetryConfig(rc *resilience.RetryConfig) Option {
	return func(c *Client) {
		c.retry = rc
		c.noRetry = rc == nil
	}
}

// WithCircuitBreaker sets the circuit breaker guarding all requests. The
// client registers a state hook on it to publish state changes as metrics.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// Client talks to the Resemble API. It is safe for concurrent use.
type Client struct {
	apiKey       string
	baseURL      string
	synthesisURL string
	httpClient   *http.Client
	timeout      time.Duration
	logger       zerolog.Logger
	retry        *resilience.RetryConfig
	noRetry      bool
	breaker      *resilience.CircuitBreaker

	common service // Reused by all services

	Projects          *ProjectsService
	Voices            *VoicesService
	Recordings        *RecordingsService
	Clips             *ClipsService
	Batch             *BatchService
	Phonemes          *PhonemesService
	TermSubstitutions *TermSubstitutionsService
	Detection         *DetectionService
	AudioEdits        *AudioEditService
}

type service struct {
	client *Client
}

// New creates a Client. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("resemble: apiKey must not be empty")
	}

	c := &Client{
		apiKey:       apiKey,
		baseURL:      DefaultBaseURL,
		synthesisURL: DefaultSynthesisURL,
		timeout:      defaultTimeout,
		logger:       observability.WithComponent("resemble"),
		retry:        resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.breaker == nil {
		c.breaker = resilience.NewCircuitBreaker("resemble", 5, 30*time.Second)
	}
	logger := c.logger
	c.breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		observability.UpdateCircuitBreakerState(name, int(to))
		logger.Warn().
			Str("breaker", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("Circuit breaker state changed")
	})

	c.common.client = c
	c.Projects = (*ProjectsService)(&c.common)
	c.Voices = (*VoicesService)(&c.common)
	c.Recordings = (*RecordingsService)(&c.common)
	c.Clips = (*ClipsService)(&c.common)
	c.Batch = (*BatchService)(&c.common)
	c.Phonemes = (*PhonemesService)(&c.common)
	c.TermSubstitutions = (*TermSubstitutionsService)(&c.common)
	c.Detection = (*DetectionService)(&c.common)
	c.AudioEdits = (*AudioEditService)(&c.common)

	return c, nil
}

// NewFromConfig creates a Client from loaded configuration. Extra options
// are applied after the configured ones.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithSynthesisURL(cfg.SynthesisURL),
		WithTimeout(time.Duration(cfg.HTTPTimeout) * time.Second),
		WithRetryConfig(&resilience.RetryConfig{
			MaxAttempts:       cfg.RetryMaxAttempts,
			InitialBackoff:    time.Duration(cfg.RetryInitialBackoff) * time.Millisecond,
			MaxBackoff:        time.Duration(cfg.RetryMaxBackoff) * time.Millisecond,
			BackoffMultiplier: 2.0,
			Jitter:            true,
		}),
		WithCircuitBreaker(resilience.NewCircuitBreaker(
			"resemble",
			cfg.CircuitBreakerMaxFailures,
			time.Duration(cfg.CircuitBreakerResetTimeout)*time.Second,
		)),
	}
	return New(cfg.APIKey, append(base, opts...)...)
}

// BaseURL returns the normalized application server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SynthesisURL returns the normalized synthesis server URL.
func (c *Client) SynthesisURL() string { return c.synthesisURL }

// Healthy reports whether the circuit breaker currently admits requests.
// Its signature matches observability.HealthCheckFunc.
func (c *Client) Healthy(ctx context.Context) (bool, error) {
	if c.breaker.GetState() == resilience.StateOpen {
		return false, ErrCircuitOpen
	}
	return true, nil
}

func normalizeURL(u string) string {
	if !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

// endpoint builds the absolute URL for path on srv. A leading slash on path
// is ignored.
func (c *Client) endpoint(srv server, path string) string {
	path = strings.TrimPrefix(path, "/")
	if srv == synthesisServer {
		return c.synthesisURL + path
	}
	return c.baseURL + apiVersion + "/" + path
}

func (c *Client) setHeaders(req *http.Request, srv server, contentType, requestID string) {
	if srv == synthesisServer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("x-access-token", c.apiKey)
	} else {
		req.Header.Set("Authorization", "Token token="+c.apiKey)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

// call describes one logical API call. body is replayed on every attempt.
type call struct {
	method      string
	srv         server
	path        string
	body        []byte
	contentType string
	header      http.Header // extra request headers
}

func jsonCall(method string, srv server, path string, in any) (call, error) {
	c := call{method: method, srv: srv, path: path}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return call{}, fmt.Errorf("failed to marshal request: %w", err)
		}
		c.body = data
		c.contentType = "application/json"
	}
	return c, nil
}

func (c *Client) idempotent(method string) bool {
	return !c.noRetry && (method == http.MethodGet || method == http.MethodDelete)
}

// send performs the call and returns a 2xx response whose body the caller
// must close. Server-side failures count against the circuit breaker;
// client errors are returned without tripping it.
func (c *Client) send(ctx context.Context, cl call) (*http.Response, error) {
	requestID := observability.NewCorrelationID()
	logger := observability.WithCorrelationID(c.logger, requestID)

	var resp *http.Response
	attempt := func(ctx context.Context) error {
		var clientErr error
		err := c.breaker.Call(func() error {
			r, err := c.roundTrip(ctx, cl, requestID, logger)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					clientErr = err
					return nil
				}
				observability.IncrementCircuitBreakerFailures(c.breaker.Name())
				return err
			}
			if r.StatusCode >= 200 && r.StatusCode < 300 {
				resp = r
				return nil
			}

			apiErr := newAPIError(r, requestID)
			if apiErr.Temporary() {
				observability.IncrementCircuitBreakerFailures(c.breaker.Name())
				return resilience.NewRetryableErrorAfter(apiErr, apiErr.RetryAfter)
			}
			clientErr = apiErr
			return nil
		})
		if err != nil {
			return err
		}
		return clientErr
	}

	var err error
	if c.idempotent(cl.method) {
		retryCfg := *c.retry
		retryCfg.OnRetry = func(n int, err error, wait time.Duration) {
			logger.Warn().Err(err).
				Int("attempt", n).
				Dur("backoff", wait).
				Str("path", cl.path).
				Msg("Retrying Resemble request")
		}
		err = resilience.Retry(ctx, attempt, &retryCfg, isRetryableRequestError)
	} else {
		err = attempt(ctx)
	}
	if err != nil {
		return nil, unwrapRetryable(err)
	}
	return resp, nil
}

func isRetryableRequestError(err error) bool {
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return resilience.IsRetryableNetworkError(err)
}

// unwrapRetryable strips the retry marker so callers see the APIError.
func unwrapRetryable(err error) error {
	var re *resilience.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call, requestID string, logger zerolog.Logger) (*http.Response, error) {
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.srv, cl.path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, cl.srv, cl.contentType, requestID)
	for k, v := range cl.header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		observability.RecordAPIRequest(cl.method, 0, latency)
		observability.RecordError("transport", "client")
		logger.Warn().Err(err).
			Str("method", cl.method).
			Str("path", cl.path).
			Dur("latency", latency).
			Msg("Resemble request failed")
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	observability.RecordAPIRequest(cl.method, resp.StatusCode, latency)
	event := logger.Debug()
	if resp.StatusCode >= 400 {
		observability.RecordError("api_error", "client")
		event = logger.Warn()
	}
	event.Str("method", cl.method).
		Str("path", cl.path).
		Int("status", resp.StatusCode).
		Dur("latency", latency).
		Msg("Resemble request completed")

	return resp, nil
}

// do performs the call and decodes the JSON response into out. An envelope
// reporting success=false becomes an APIError.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env, ok := out.(envelope); ok {
		if msg, failed := env.failure(); failed {
			return &APIError{
				StatusCode: resp.StatusCode,
				Message:    msg,
				RequestID:  resp.Request.Header.Get("X-Request-ID"),
			}
		}
	}
	return nil
}

// doJSON marshals in (when non-nil) and decodes the response into a new T.
func doJSON[T any](ctx context.Context, c *Client, method string, srv server, path string, in any) (*T, error) {
	cl, err := jsonCall(method, srv, path, in)
	if err != nil {
		return nil, err
	}
	return doCall[T](ctx, c, cl)
}

func doCall[T any](ctx context.Context, c *Client, cl call) (*T, error) {
	out := new(T)
	if err := c.do(ctx, cl, out); err != nil {
		return nil, err
	}
	return out, nil
}
