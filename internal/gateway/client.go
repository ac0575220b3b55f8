// Package gateway is the typed client for the platform API. Every call
// attaches the bearer credential matching its namespace (/admin uses the
// admin token, everything else the member token). A 401 tears down the
// matching session channel and is then re-raised — callers own the
// user-visible error surfacing; nothing is swallowed here.
package gateway

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

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/observability"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/resilience"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("gateway")

// CredentialSource provides bearer credentials per namespace and the
// teardown hooks invoked on a 401. The session store implements it.
type CredentialSource interface {
	MemberToken() string
	AdminToken() string
	InvalidateMember()
	InvalidateAdmin()
}

// Client wraps HTTP calls to the platform API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      CredentialSource
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates a platform API client.
func NewClient(httpClient *http.Client, baseURL string, creds CredentialSource, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		cb:         cb,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}
}

// errorBody is the platform's error payload shape.
type errorBody struct {
	Message string `json:"message"`
}

// do executes a single request. The credential is chosen by namespace;
// a 401 invalidates the matching session channel before the error is
// returned. Any other non-2xx becomes ErrRemote with the server message
// when the body parses, a generic fallback otherwise.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	admin := strings.HasPrefix(path, "/admin")
	token := c.creds.MemberToken()
	if admin {
		token = c.creds.AdminToken()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("platform request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return &domain.ErrExternalService{Service: "platform", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ErrExternalService{Service: "platform", Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		namespace := "user"
		if admin {
			c.creds.InvalidateAdmin()
			namespace = "admin"
		} else {
			c.creds.InvalidateMember()
		}
		c.metrics.IncrSessionTeardown(namespace)
		c.logger.Warn("credential rejected, session torn down",
			zap.String("namespace", namespace),
			zap.String("path", path),
		)
		return &domain.ErrUnauthorized{Namespace: namespace, Message: serverMessage(raw)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := serverMessage(raw)
		c.logger.Warn("platform returned non-2xx",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &domain.ErrRemote{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func serverMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return "Request failed"
}

// get runs a read through the circuit breaker with retry. 401s and other
// 4xx responses are permanent: they bypass retry and never count as
// breaker failures.
func (c *Client) get(ctx context.Context, operation, path string, out any) error {
	ctx, span := tracer.Start(ctx, "Gateway."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	start := time.Now()
	var permanent error
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			err := c.do(ctx, http.MethodGet, path, nil, out)
			if err != nil && !retryable(err) {
				permanent = err
				return nil
			}
			return err
		})
	})
	if permanent != nil {
		err = permanent
	}
	c.observe(operation, start, err)
	return err
}

// send runs a mutation: one attempt, never retried, not breaker-counted.
func (c *Client) send(ctx context.Context, operation, method, path string, payload, out any) error {
	ctx, span := tracer.Start(ctx, "Gateway."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	start := time.Now()
	err := c.do(ctx, method, path, payload, out)
	c.observe(operation, start, err)
	return err
}

func (c *Client) observe(operation string, start time.Time, err error) {
	c.metrics.RecordGatewayDuration(operation, time.Since(start))
	if err != nil {
		c.metrics.IncrGatewayError(operation)
	}
}

// retryable reports whether an error is worth another attempt: transport
// failures and 5xx responses are; 401s and other 4xx rejections are not.
func retryable(err error) bool {
	var remote *domain.ErrRemote
	if errors.As(err, &remote) {
		return remote.Status >= 500
	}
	var unauthorized *domain.ErrUnauthorized
	return !errors.As(err, &unauthorized)
}
