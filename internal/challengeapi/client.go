package challengeapi

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

	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/models"
)

const maxBodyBytes = 4 << 20

// Client talks to the challenge API. Core endpoints report failure through
// the HTTP status; proxy endpoints through a "status" field in the body. Both
// come back from here as (value, *errors.AppError).
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMetrics records upstream latency and outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("challengeapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API base the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	var out models.Health
	if err := c.getJSON(ctx, "health", "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var out models.ChallengeList
	if err := c.getJSON(ctx, "challenges", "/api/challenges", nil, &out); err != nil {
		return nil, err
	}
	if out.Challenges == nil {
		out.Challenges = []models.Challenge{}
	}
	return out.Challenges, nil
}

func (c *Client) Submit(ctx context.Context, req models.SubmissionRequest) (*models.SubmissionReceipt, error) {
	resp, body, err := c.do(ctx, "submit", http.MethodPost, "/api/submit", nil, req)
	if err != nil {
		return nil, err
	}
	var out models.SubmissionReceipt
	if err := c.decodeCore("submit", resp, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSubmission(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	var out models.SubmissionDetail
	if err := c.getJSON(ctx, "submission", "/api/submissions/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var out models.Leaderboard
	if err := c.getJSON(ctx, "leaderboard", "/api/leaderboard", nil, &out); err != nil {
		return nil, err
	}
	if out.Leaderboard == nil {
		out.Leaderboard = []models.LeaderboardEntry{}
	}
	return out.Leaderboard, nil
}

func (c *Client) JSONPlaceholder(ctx context.Context) (*models.ProxyResult, error) {
	return c.proxy(ctx, "jsonplaceholder", http.MethodGet, "/api/external/jsonplaceholder", nil, nil)
}

func (c *Client) HTTPBin(ctx context.Context) (*models.ProxyResult, error) {
	return c.proxy(ctx, "httpbin", http.MethodGet, "/api/external/httpbin", nil, nil)
}

func (c *Client) Weather(ctx context.Context, city string) (*models.ProxyResult, error) {
	return c.proxy(ctx, "weather", http.MethodGet, "/api/external/weather", url.Values{"city": {city}}, nil)
}

func (c *Client) Custom(ctx context.Context, req models.CustomRequest) (*models.ProxyResult, error) {
	return c.proxy(ctx, "custom", http.MethodPost, "/api/external/custom", nil, req)
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	resp, body, err := c.do(ctx, endpoint, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.decodeCore(endpoint, resp, body, out)
}

// do issues one request and reads the whole body. Only transport failures are
// returned as errors here; status handling is up to the caller.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, payload any) (*http.Response, []byte, error) {
	log := logger.FromContext(ctx).WithPrefix("challengeapi").WithField("endpoint", endpoint)

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			log.Error("failed to encode request: %v", err)
			return nil, nil, errors.NewInternalError(err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("%s %s", method, target)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeNetwork, time.Since(start))
		log.Warn("request failed: %v", err)
		return nil, nil, errors.NewNetworkError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, metrics.OutcomeNetwork, time.Since(start))
		log.Warn("failed to read response body: %v", err)
		return nil, nil, errors.NewNetworkError(endpoint, err)
	}

	log.Debug("response received in %v, status=%d", time.Since(start), resp.StatusCode)
	c.metrics.ObserveUpstream(endpoint, outcomeFor(endpoint, resp.StatusCode, body), time.Since(start))
	return resp, body, nil
}

// errorBody covers the error shapes of the Flask and FastAPI servers.
type errorBody struct {
	Error         string          `json:"error"`
	Message       string          `json:"message"`
	Detail        json.RawMessage `json:"detail"`
	MissingFields []string        `json:"missing_fields"`
}

func (b errorBody) text() string {
	switch {
	case b.Error != "":
		return b.Error
	case b.Message != "":
		return b.Message
	}
	var detail string
	if len(b.Detail) > 0 && json.Unmarshal(b.Detail, &detail) == nil {
		return detail
	}
	return ""
}

func (c *Client) decodeCore(endpoint string, resp *http.Response, body []byte, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.text()
		if msg == "" {
			msg = fmt.Sprintf("%s failed with status %d", endpoint, resp.StatusCode)
		}
		c.log.Warn("%s returned status %d: %s", endpoint, resp.StatusCode, msg)
		return errors.NewProtocolError(resp.StatusCode, msg, eb.MissingFields)
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.log.Warn("%s returned an undecodable body: %v", endpoint, err)
		appErr := errors.NewProtocolError(0, fmt.Sprintf("%s returned an invalid response", endpoint), nil)
		appErr.Err = err
		return appErr
	}
	return nil
}

func (c *Client) proxy(ctx context.Context, endpoint, method, path string, query url.Values, payload any) (*models.ProxyResult, error) {
	_, body, err := c.do(ctx, endpoint, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	return DecodeProxy(body)
}

// DecodeProxy interprets a proxy envelope. The HTTP status is not consulted:
// a proxy call succeeded exactly when the body says status "success".
func DecodeProxy(body []byte) (*models.ProxyResult, error) {
	var env models.ProxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		appErr := errors.NewProtocolError(0, "response is not valid JSON", nil)
		appErr.Err = err
		return nil, appErr
	}
	if env.Status != models.ProxyStatusSuccess {
		return nil, errors.NewApplicationError(env.Message)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(body)
	}
	return &models.ProxyResult{
		ProxyEnvelope: env,
		Raw:           json.RawMessage(body),
		Pretty:        pretty.String(),
	}, nil
}

func outcomeFor(endpoint string, status int, body []byte) string {
	if isProxyEndpoint(endpoint) {
		var env models.ProxyEnvelope
		if json.Unmarshal(body, &env) != nil {
			return metrics.OutcomeProtocol
		}
		if env.Status != models.ProxyStatusSuccess {
			return metrics.OutcomeApplication
		}
		return metrics.OutcomeSuccess
	}
	if status < 200 || status > 299 {
		return metrics.OutcomeProtocol
	}
	return metrics.OutcomeSuccess
}

func isProxyEndpoint(endpoint string) bool {
	switch endpoint {
	case "jsonplaceholder", "httpbin", "weather", "custom":
		return true
	}
	return false
}
