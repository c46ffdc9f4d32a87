// Package graphql is the client for the training GraphQL backend. It sends
// parameterized documents with a static admin credential and exposes the
// fixed set of operations the gateway needs.
package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gql "github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/okian/enroll/pkg/logger"
	"github.com/okian/enroll/pkg/metrics"
)

// DefaultSecretHeader is the header Hasura reads the admin secret from.
const DefaultSecretHeader = "X-Hasura-Admin-Secret"

// Config describes the backend endpoint and its credential.
type Config struct {
	Endpoint     string
	SecretHeader string
	Secret       string
	// Timeout bounds one round trip; zero leaves it to the transport.
	Timeout time.Duration
}

// Client executes documents against one backend endpoint. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	endpoint string
	doer     gql.Doer
	gql      gql.Client
	logger   logger.Logger
}

// New constructs a Client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	header := cfg.SecretHeader
	if header == "" {
		header = DefaultSecretHeader
	}

	c := &Client{
		endpoint: cfg.Endpoint,
		doer:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.gql = gql.NewClient(c.endpoint, &secretDoer{next: c.doer, header: header, secret: cfg.Secret})
	return c, nil
}

// secretDoer attaches the admin credential to every outgoing request.
type secretDoer struct {
	next   gql.Doer
	header string
	secret string
}

func (d *secretDoer) Do(req *http.Request) (*http.Response, error) {
	if d.secret != "" {
		req = req.Clone(req.Context())
		req.Header.Set(d.header, d.secret)
	}
	return d.next.Do(req)
}

// Execute POSTs document and variables to the backend and returns the
// decoded body verbatim. A non-success status or undecodable body is a
// *TransportError; GraphQL errors are returned inside the Result and are
// not a Go error.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any) (*Result, error) {
	op := operationName(document)
	res, err := c.execute(ctx, op, document, variables)
	if err == nil && len(res.Errors) == 0 {
		metrics.RecordBackendRequest(opLabel(op), metrics.OutcomeOK)
	}
	return res, err
}

// execute performs one round trip. Transport and application failures are
// counted here; a successful call is counted by the caller once it has
// judged the data.

func (c *Client) execute(ctx context.Context, op, document string, variables map[string]any) (*Result, error) {
	if variables == nil {
		variables = map[string]any{}
	}
	label := opLabel(op)

	var data json.RawMessage
	resp := &gql.Response{Data: &data}
	req := &gql.Request{Query: document, Variables: variables, OpName: op}

	start := time.Now()
	err := c.gql.MakeRequest(ctx, req, resp)
	elapsed := time.Since(start)
	metrics.RecordBackendLatency(label, float64(elapsed.Microseconds())/1000)

	if err != nil {
		var list gqlerror.List
		if !errors.As(err, &list) {
			terr := &TransportError{Operation: op, Err: err}
			var httpErr *gql.HTTPError
			if errors.As(err, &httpErr) {
				terr.StatusCode = httpErr.StatusCode
			}
			metrics.RecordBackendRequest(label, metrics.OutcomeTransportError)
			c.logger.Warn(ctx, "backend call failed",
				logger.String("operation", label),
				logger.Int("status_code", terr.StatusCode),
				logger.Duration("elapsed", elapsed),
				logger.Error(err))
			return nil, terr
		}
	}

	res := &Result{Operation: op, Data: data, Errors: convertErrors(resp.Errors)}
	if len(res.Errors) > 0 {
		metrics.RecordBackendRequest(label, metrics.OutcomeApplicationError)
		c.logger.Debug(ctx, "backend reported errors",
			logger.String("operation", label),
			logger.Int("errors", len(res.Errors)),
			logger.String("first", res.Errors[0].Message))
		return res, nil
	}
	c.logger.Debug(ctx, "backend call ok", logger.String("operation", label), logger.Duration("elapsed", elapsed))
	return res, nil
}

// operationName returns the name of the single operation in document, or ""
// when it cannot be determined. The backend remains the judge of validity.
func operationName(document string) string {
	doc, err := parser.ParseQuery(&ast.Source{Input: document})
	if err != nil || len(doc.Operations) != 1 {
		return ""
	}
	return doc.Operations[0].Name
}
