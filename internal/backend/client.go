// Package backend talks JSON over HTTP to the bakery backend: pickup slots,
// identity, magic links, checkout sessions and accounts.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"bakeshop/internal/domain"
)

const maxBodySize = 1 << 20

// Paths are the backend endpoints, relative to the base URL.
type Paths struct {
	Slots         string
	Identity      string
	Login         string
	Session       string
	Logout        string
	Config        string
	CreateSession string
	Outcome       string
	Account       string
}

func DefaultPaths() Paths {
	return Paths{
		Slots:         "/api/pre-sales",
		Identity:      "/api/me",
		Login:         "/login",
		Session:       "/api/session",
		Logout:        "/logout",
		Config:        "/config",
		CreateSession: "/create-checkout-session",
		Outcome:       "/api/checkout-session",
		Account:       "/api/account",
	}
}

type Client struct {
	base    *url.URL
	paths   Paths
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*reply]
	logger  *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }
func WithPaths(p Paths) Option             { return func(cl *Client) { cl.paths = p } }
func WithLogger(l *zap.Logger) Option      { return func(cl *Client) { cl.logger = l } }

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(st gobreaker.Settings) Option {
	return func(cl *Client) { cl.breaker = gobreaker.NewCircuitBreaker[*reply](st) }
}

// DefaultHTTPClient is an instrumented client giving up after timeout.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		paths:  DefaultPaths(),
		logger: zap.NewNop(),
		http:   DefaultHTTPClient(10 * time.Second),
	}
	for _, o := range opts {
		o(c)
	}
	if c.breaker == nil {
		c.breaker = gobreaker.NewCircuitBreaker[*reply](defaultBreakerSettings(c.logger))
	}
	return c, nil
}

func defaultBreakerSettings(logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
}

type cookieKey struct{}

// WithCookies attaches the visitor's cookies to calls made with ctx, so the
// backend sees the same session the browser holds.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookieKey{}, cookies)
}

func cookiesFrom(ctx context.Context) []*http.Cookie {
	c, _ := ctx.Value(cookieKey{}).([]*http.Cookie)
	return c
}

type reply struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

func (r *reply) ok() bool { return r.status >= 200 && r.status < 300 }

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in any) (*reply, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	rep, err := c.breaker.Execute(func() (*reply, error) {
		req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for _, ck := range cookiesFrom(ctx) {
			req.AddCookie(ck)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, err
		}
		r := &reply{status: resp.StatusCode, body: b, cookies: resp.Cookies()}
		if r.status >= 500 {
			return r, &ServerError{Op: op, Status: r.status, Message: errorMessage(b)}
		}
		return r, nil
	})
	if err != nil {
		var se *ServerError
		if errors.As(err, &se) {
			c.logger.Warn("backend call failed", zap.String("op", op), zap.Int("status", se.Status))
			return rep, se
		}
		c.logger.Warn("backend unreachable", zap.String("op", op), zap.Error(err))
		return nil, &NetworkError{Op: op, Err: err}
	}
	return rep, nil
}

func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, in, out any) (*reply, error) {
	rep, err := c.do(ctx, op, method, path, query, in)
	if err != nil {
		return rep, err
	}
	if !rep.ok() {
		c.logger.Debug("backend rejected call", zap.String("op", op), zap.Int("status", rep.status))
		return rep, &ServerError{Op: op, Status: rep.status, Message: errorMessage(rep.body)}
	}
	if out != nil && len(bytes.TrimSpace(rep.body)) > 0 {
		if err := json.Unmarshal(rep.body, out); err != nil {
			return rep, fmt.Errorf("%s: decode response: %w", op, err)
		}
	}
	return rep, nil
}

// ListPickupSlots returns the pickup slots in the backend's order.
func (c *Client) ListPickupSlots(ctx context.Context) ([]domain.PickupSlot, error) {
	var slots []domain.PickupSlot
	if _, err := c.call(ctx, "list pickup slots", http.MethodGet, c.paths.Slots, nil, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *Client) CurrentIdentity(ctx context.Context) (domain.Identity, error) {
	var id domain.Identity
	_, err := c.call(ctx, "current identity", http.MethodGet, c.paths.Identity, nil, nil, &id)
	return id, err
}

// RequestMagicLink asks the backend to e-mail a one-time login link.
func (c *Client) RequestMagicLink(ctx context.Context, email string) error {
	_, err := c.call(ctx, "request magic link", http.MethodPost, c.paths.Login, nil,
		map[string]string{"email": email}, nil)
	return err
}

// ExchangeToken trades a one-time token for a session. The returned cookies
// carry that session and must be handed to the visitor.
func (c *Client) ExchangeToken(ctx context.Context, token string) (string, []*http.Cookie, error) {
	var out struct {
		Location string `json:"location"`
	}
	rep, err := c.call(ctx, "exchange token", http.MethodPost, c.paths.Session, nil,
		map[string]string{"token": token}, &out)
	if err != nil {
		return "", nil, err
	}
	if out.Location == "" {
		return "", nil, &ServerError{Op: "exchange token", Status: rep.status, Message: "no location in response"}
	}
	return out.Location, rep.cookies, nil
}

func (c *Client) EndSession(ctx context.Context) ([]*http.Cookie, error) {
	rep, err := c.call(ctx, "end session", http.MethodGet, c.paths.Logout, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	return rep.cookies, nil
}

func (c *Client) CheckoutConfig(ctx context.Context) (domain.CheckoutConfig, error) {
	var cfg domain.CheckoutConfig
	_, err := c.call(ctx, "get checkout config", http.MethodGet, c.paths.Config, nil, nil, &cfg)
	return cfg, err
}

// CreateCheckoutSession registers a checkout for quantity units on date and returns its id.
func (c *Client) CreateCheckoutSession(ctx context.Context, quantity int, date time.Time) (string, error) {
	in := struct {
		Quantity int    `json:"quantity"`
		Date     string `json:"date"`
	}{Quantity: quantity, Date: date.UTC().Format(time.RFC3339)}
	var out struct {
		SessionID string `json:"sessionId"`
	}
	rep, err := c.call(ctx, "create checkout session", http.MethodPost, c.paths.CreateSession, nil, in, &out)
	if err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", &ServerError{Op: "create checkout session", Status: rep.status, Message: "no session id in response"}
	}
	return out.SessionID, nil
}

// CheckoutOutcome reports how the hosted checkout for sessionID ended. An
// {"error": ...} body is an outcome, not a call failure, whatever its status.
func (c *Client) CheckoutOutcome(ctx context.Context, sessionID string) (domain.CheckoutOutcome, error) {
	const op = "get checkout outcome"
	rep, err := c.do(ctx, op, http.MethodGet, c.paths.Outcome, url.Values{"sessionId": {sessionID}}, nil)
	if rep != nil {
		if msg := errorMessage(rep.body); msg != "" {
			return domain.CheckoutOutcome{SessionID: sessionID, Error: msg}, nil
		}
	}
	if err != nil {
		return domain.CheckoutOutcome{}, err
	}
	if !rep.ok() {
		return domain.CheckoutOutcome{}, &ServerError{Op: op, Status: rep.status}
	}
	var out domain.CheckoutOutcome
	if err := json.Unmarshal(rep.body, &out); err != nil {
		return domain.CheckoutOutcome{}, fmt.Errorf("%s: decode response: %w", op, err)
	}
	out.SessionID = sessionID
	return out, nil
}

// CreateAccount claims an account for the customer behind sessionID. The
// status of a ServerError (409, 400) tells the caller what went wrong.
func (c *Client) CreateAccount(ctx context.Context, sessionID, email string) error {
	in := struct {
		SessionID string `json:"sessionId"`
		Email     string `json:"email"`
	}{SessionID: sessionID, Email: email}
	_, err := c.call(ctx, "create account", http.MethodPost, c.paths.Account, nil, in, nil)
	return err
}
