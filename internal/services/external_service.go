package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/vytor/codearena/internal/challengeapi"
	"github.com/vytor/codearena/internal/errors"
	"github.com/vytor/codearena/internal/logger"
	"github.com/vytor/codearena/internal/metrics"
	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/session"
)

// DefaultWeatherCity is used when no city is given.
const DefaultWeatherCity = "London"

// CustomMethods are the methods a custom request may use, in menu order.
var CustomMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// CustomForm is the custom request form as typed.
type CustomForm struct {
	URL    string
	Method string
	Body   string
}

// ExternalService runs the external API demos through the server's proxy
type ExternalService interface {
	FetchPosts(ctx context.Context, st *session.State) error
	FetchHTTPBin(ctx context.Context, st *session.State) error
	FetchWeather(ctx context.Context, st *session.State, city string) error
	CustomRequest(ctx context.Context, st *session.State, form CustomForm) error
}

type externalService struct {
	client  challengeapi.ClientInterface
	metrics *metrics.Metrics
}

// NewExternalService creates a new ExternalService
func NewExternalService(client challengeapi.ClientInterface, m *metrics.Metrics) ExternalService {
	return &externalService{client: client, metrics: m}
}

type panelCall struct {
	kind     session.ExternalKind
	title    string
	loading  string
	fallback string
	fetch    func(ctx context.Context) (*models.ProxyResult, error)
}

func (s *externalService) FetchPosts(ctx context.Context, st *session.State) error {
	return s.run(ctx, st, panelCall{
		kind:     session.ExternalPosts,
		title:    "JSONPlaceholder Posts",
		loading:  "Fetching posts from JSONPlaceholder...",
		fallback: "Failed to fetch posts",
		fetch:    s.client.JSONPlaceholder,
	})
}

func (s *externalService) FetchHTTPBin(ctx context.Context, st *session.State) error {
	return s.run(ctx, st, panelCall{
		kind:     session.ExternalHTTPBin,
		title:    "HTTPBin Test Result",
		loading:  "Testing HTTPBin API...",
		fallback: "HTTPBin test failed",
		fetch:    s.client.HTTPBin,
	})
}

func (s *externalService) FetchWeather(ctx context.Context, st *session.State, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		city = DefaultWeatherCity
	}
	return s.run(ctx, st, panelCall{
		kind:     session.ExternalWeather,
		title:    fmt.Sprintf("Weather for %s", city),
		loading:  fmt.Sprintf("Fetching weather for %s...", city),
		fallback: "Failed to fetch weather data",
		fetch: func(ctx context.Context) (*models.ProxyResult, error) {
			return s.client.Weather(ctx, city)
		},
	})
}

// CustomRequest asks the proxy to call an arbitrary URL. The URL must be set
// and a POST body, if any, must be valid JSON; otherwise nothing is sent.
func (s *externalService) CustomRequest(ctx context.Context, st *session.State, form CustomForm) error {
	const title = "Custom Request Result"

	target := strings.TrimSpace(form.URL)
	method := strings.ToUpper(strings.TrimSpace(form.Method))
	if method == "" {
		method = http.MethodGet
	}

	if target == "" {
		return s.reject(st, title, "url", msgEnterURL)
	}
	if !allowedMethod(method) {
		return s.reject(st, title, "method", fmt.Sprintf("Unsupported method: %s", method))
	}

	req := models.CustomRequest{URL: target, Method: method}
	if body := strings.TrimSpace(form.Body); method == http.MethodPost && body != "" {
		if !json.Valid([]byte(body)) {
			return s.reject(st, title, "body", msgInvalidJSONBody)
		}
		req.Body = json.RawMessage(body)
	}

	return s.run(ctx, st, panelCall{
		kind:     session.ExternalCustom,
		title:    title,
		loading:  fmt.Sprintf("Making %s request to %s...", method, target),
		fallback: "Custom request failed",
		fetch: func(ctx context.Context) (*models.ProxyResult, error) {
			return s.client.Custom(ctx, req)
		},
	})
}

func (s *externalService) run(ctx context.Context, st *session.State, call panelCall) error {
	log := logger.FromContext(ctx).WithPrefix("external").WithField("panel", string(call.kind))

	ticket := st.BeginPanel(call.kind, call.title, call.loading)
	res, err := call.fetch(ctx)
	if err != nil {
		msg := panelMessage(err, call.fallback)
		if !st.ApplyPanelError(ticket, call.kind, msg) {
			discardStale(ctx, s.metrics, ticket)
			return err
		}
		log.Warn("demo call failed: %v", err)
		return err
	}

	if !st.ApplyPanelSuccess(ticket, call.kind, res) {
		discardStale(ctx, s.metrics, ticket)
		return nil
	}
	log.Debug("demo call succeeded: source=%s", res.Source)
	return nil
}

// reject shows a local validation failure in the panel without calling out.
func (s *externalService) reject(st *session.State, title, field, message string) error {
	ticket := st.BeginPanel(session.ExternalCustom, title, "")
	st.ApplyPanelError(ticket, session.ExternalCustom, message)
	return errors.NewValidationError(field, message)
}

// panelMessage is the error text for a failed demo call: the proxy's own
// message when it answered, otherwise a network error.
func panelMessage(err error, fallback string) string {
	if errors.HasCode(err, errors.ErrCodeApplication) {
		if appErr, _ := errors.As(err); appErr.Message != "" {
			return appErr.Message
		}
		return fallback
	}
	return "Network error: " + networkCause(err)
}

func allowedMethod(method string) bool {
	for _, m := range CustomMethods {
		if m == method {
			return true
		}
	}
	return false
}
