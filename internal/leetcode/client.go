package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"statree-backend/internal/logger"
	"statree-backend/internal/observability"
)

const (
	DefaultEndpoint = "https://leetcode.com/graphql"

	defaultOrigin    = "https://leetcode.com"
	defaultReferer   = "https://leetcode.com/problemset/"
	defaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	maxResponseBytes = 16 << 20
)

type Options struct {
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
	Logger            *logger.Logger
}

// Client talks to a single GraphQL endpoint. It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	log      *logger.Logger
	tracer   trace.Tracer
}

func NewClient(opts Options) *Client {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		log:      log,
		tracer:   otel.Tracer("statree-backend/leetcode"),
	}
}

// Operation is one named query document plus its variables.
type Operation struct {
	Name      string
	Query     string
	Variables map[string]any

	// NotFoundField names a top-level data field whose absence means the
	// requested entity does not exist.
	NotFoundField string
	// PartialDataOK keeps non-null data even when errors are reported.
	PartialDataOK bool
}

type requestBody struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type validator interface {
	validate() error
}

// Execute sends op and decodes its data object into out. Failures are one of
// *TransportError, *GraphQLError, *NotFoundError or *DecodeError.
func (c *Client) Execute(ctx context.Context, op Operation, out any) error {
	ctx, span := c.tracer.Start(ctx, "graphql."+op.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("graphql.operation.name", op.Name)),
	)
	defer span.End()

	start := time.Now()
	err := c.execute(ctx, op, out)
	outcome := Classify(err)
	observability.ObserveQuery(op.Name, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			c.log.Error("graphql response did not match expected shape", "operation", op.Name, "error", err)
		} else {
			c.log.Debug("graphql operation failed", "operation", op.Name, "outcome", outcome, "error", err)
		}
		return err
	}
	return nil
}

func (c *Client) execute(ctx context.Context, op Operation, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}

	vars := op.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	payload, err := json.Marshal(requestBody{OperationName: op.Name, Query: op.Query, Variables: vars})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Origin", defaultOrigin)
	req.Header.Set("Referer", defaultReferer)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		if json.Unmarshal(body, &env) == nil && len(env.Errors) > 0 {
			return &GraphQLError{Op: op.Name, Message: env.Errors[0].Message, Count: len(env.Errors), StatusCode: resp.StatusCode}
		}
		return &TransportError{Op: op.Name, StatusCode: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &DecodeError{Op: op.Name, Err: err}
	}
	return decodeData(op, env, out)
}

func decodeData(op Operation, env envelope, out any) error {
	dataNull := len(env.Data) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null"))

	if op.NotFoundField != "" && !dataNull {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(env.Data, &fields); err != nil {
			return &DecodeError{Op: op.Name, Field: "data", Err: err}
		}
		raw, ok := fields[op.NotFoundField]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return &NotFoundError{Op: op.Name, Field: op.NotFoundField}
		}
	}

	if len(env.Errors) > 0 && (!op.PartialDataOK || dataNull) {
		return &GraphQLError{Op: op.Name, Message: env.Errors[0].Message, Count: len(env.Errors)}
	}
	if dataNull {
		if op.NotFoundField != "" {
			return &NotFoundError{Op: op.Name, Field: op.NotFoundField}
		}
		return &DecodeError{Op: op.Name, Field: "data", Err: errors.New("missing data object")}
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return &DecodeError{Op: op.Name, Field: "data", Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return &DecodeError{Op: op.Name, Err: err}
		}
	}
	return nil
}
