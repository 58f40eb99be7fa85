package earthengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"

	"github.com/couchcryptid/climate-projection-explorer/internal/config"
	"github.com/couchcryptid/climate-projection-explorer/internal/domain"
	"github.com/couchcryptid/climate-projection-explorer/internal/observability"
)

const (
	opSampleDay   = "sample_day"
	opListMonths  = "list_months"
	opSampleMonth = "sample_month"
)

// Options configure a Client.
type Options struct {
	BaseURL    string
	TokenURL   string
	Project    string
	Timeout    time.Duration
	MaxRetries int
}

// Client implements domain.ProjectionSource against the Earth Engine REST API.
type Client struct {
	baseURL         string
	project         string
	httpClient      *http.Client
	tokens          oauth2.TokenSource
	maxRetries      int
	initialInterval time.Duration
	metrics         *observability.Metrics
	logger          *slog.Logger
}

// NewClient creates an authenticated client. The project falls back to the one
// named in the credentials.
func NewClient(opts Options, creds Credentials, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	project := opts.Project
	if project == "" {
		project = creds.ProjectID
	}
	if project == "" {
		return nil, &domain.InitializationError{Reason: "EE_PROJECT is not set and the credentials name no project"}
	}
	if err := creds.validate(); err != nil {
		return nil, err
	}

	// The token endpoint shares the request timeout.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: opts.Timeout})
	tokens := oauth2.ReuseTokenSource(nil, creds.TokenSource(tokenCtx, opts.TokenURL))

	httpClient := oauth2.NewClient(context.Background(), tokens)
	httpClient.Timeout = opts.Timeout

	return &Client{
		baseURL:         opts.BaseURL,
		project:         project,
		httpClient:      httpClient,
		tokens:          tokens,
		maxRetries:      opts.MaxRetries,
		initialInterval: 500 * time.Millisecond,
		metrics:         metrics,
		logger:          logger,
	}, nil
}

// NewClientFromConfig loads credentials and creates a client from the service configuration.
func NewClientFromConfig(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	creds, err := LoadCredentials(cfg.EECredentialsFile, cfg.EEServiceAccountEmail, cfg.EEPrivateKey)
	if err != nil {
		return nil, err
	}
	return NewClient(Options{
		BaseURL:    cfg.EEBaseURL,
		TokenURL:   cfg.EETokenURL,
		Project:    cfg.EEProject,
		Timeout:    cfg.EETimeout,
		MaxRetries: cfg.EEMaxRetries,
	}, creds, logger, metrics)
}

// CheckReadiness verifies that an access token can be obtained before ctx expires.
func (c *Client) CheckReadiness(ctx context.Context) error {
	if c.tokens == nil {
		return nil
	}
	// Token takes no context, so ctx bounds the wait here.
	done := make(chan error, 1)
	go func() {
		_, err := c.tokens.Token()
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("obtain access token: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("obtain access token: %w", ctx.Err())
	}
}

// SampleDay reduces the day's image at the query point with a first-value reducer.
func (c *Client) SampleDay(ctx context.Context, q domain.CollectionQuery, day time.Time) (domain.RawSample, error) {
	var values map[string]*float64
	if err := c.compute(ctx, opSampleDay, dayExpr(q, day), &values); err != nil {
		return domain.RawSample{}, err
	}
	s := domain.RawSample{Pr: values["pr"], Tasmin: values["tasmin"], Tasmax: values["tasmax"]}
	c.observeSample(opSampleDay, s)
	return s, nil
}

// ListMonths returns the distinct months covered by images in the query range,
// in ascending order.
func (c *Client) ListMonths(ctx context.Context, q domain.CollectionQuery) ([]domain.YearMonth, error) {
	var stamps []float64
	if err := c.compute(ctx, opListMonths, timestampsExpr(q), &stamps); err != nil {
		return nil, err
	}

	seen := make(map[domain.YearMonth]struct{}, len(stamps)/28+1)
	months := make([]domain.YearMonth, 0, len(stamps)/28+1)
	for _, ms := range stamps {
		ym := domain.YearMonthOf(time.UnixMilli(int64(ms)))
		if _, ok := seen[ym]; ok {
			continue
		}
		seen[ym] = struct{}{}
		months = append(months, ym)
	}
	slices.SortFunc(months, func(a, b domain.YearMonth) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})

	outcome := "success"
	if len(months) == 0 {
		outcome = "empty"
	}
	c.metrics.SourceRequests.WithLabelValues(opListMonths, outcome).Inc()
	return months, nil
}

// SampleMonth sums precipitation and averages temperatures over the month's images,
// then reduces the composite at the query point.
func (c *Client) SampleMonth(ctx context.Context, q domain.CollectionQuery, month domain.YearMonth) (domain.RawSample, error) {
	var values map[string]*float64
	if err := c.compute(ctx, opSampleMonth, monthExpr(q, month), &values); err != nil {
		return domain.RawSample{}, err
	}
	s := domain.RawSample{Pr: values["pr_sum"], Tasmin: values["tasmin_mean"], Tasmax: values["tasmax_mean"]}
	c.observeSample(opSampleMonth, s)
	return s, nil
}

func (c *Client) observeSample(op string, s domain.RawSample) {
	outcome := "success"
	if !s.Complete() {
		outcome = "empty"
	}
	c.metrics.SourceRequests.WithLabelValues(op, outcome).Inc()
}

// compute evaluates an expression and decodes its result into out. Transport
// errors, 429 and 5xx responses are retried with exponential backoff.
func (c *Client) compute(ctx context.Context, op string, root node, out any) error {
	body, err := json.Marshal(newComputeRequest(root))
	if err != nil {
		return fmt.Errorf("encode expression: %w", err)
	}
	url := fmt.Sprintf("%s/v1/projects/%s/value:compute", c.baseURL, c.project)

	var payload []byte
	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 {
			c.metrics.SourceRetries.WithLabelValues(op).Inc()
		}
		payload, err = c.post(ctx, op, url, body)
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(c.backOff(), uint64(c.maxRetries)), ctx)); err != nil {
		c.metrics.SourceRequests.WithLabelValues(op, "error").Inc()
		return err
	}

	var resp computeResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		c.metrics.SourceRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		c.metrics.SourceRequests.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("decode %s result: %w", op, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, op, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.SourceAPIDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		var tokenErr *oauth2.RetrieveError
		if errors.As(err, &tokenErr) {
			return nil, backoff.Permanent(fmt.Errorf("%w: obtain access token: %v", domain.ErrSourceUnavailable, err))
		}
		c.logger.Debug("remote request failed, will retry", "operation", op, "error", err)
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, backoff.Permanent(fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, newAPIError(resp.StatusCode, data)))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.logger.Debug("remote request throttled or failed, will retry", "operation", op, "status", resp.StatusCode)
		return nil, newAPIError(resp.StatusCode, data)
	default:
		return nil, backoff.Permanent(newAPIError(resp.StatusCode, data))
	}
}

func (c *Client) backOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 2 * time.Minute
	return bo
}

type computeResponse struct {
	Result json.RawMessage `json:"result"`
}

// APIError is a non-200 response from the remote service.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("earth engine API error: status %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("earth engine API error: status %d: %s", e.StatusCode, e.Message)
}

func newAPIError(code int, body []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &APIError{StatusCode: code, Status: envelope.Error.Status, Message: envelope.Error.Message}
	}
	return &APIError{StatusCode: code, Message: string(bytes.TrimSpace(body))}
}
