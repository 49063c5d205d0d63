package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukex/flowgate/pkg/metrics"
	"github.com/dukex/flowgate/pkg/models"
	"github.com/dukex/flowgate/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	apiKeyHeader = "X-N8N-API-KEY"
	apiPrefix    = "api/v1/"

	DefaultAdminTimeout  = 10 * time.Second
	DefaultUploadTimeout = 30 * time.Second

	maxCredentialPages = 50
	maxErrorBodyBytes  = 64 << 10
)

// Client is the subset of the remote REST API used by flowgate.
type Client interface {
	ListCredentials(ctx context.Context) ([]Credential, error)
	CreateCredential(ctx context.Context, req CreateCredentialRequest) (*Credential, error)
	CreateWorkflow(ctx context.Context, payload WorkflowPayload) (*Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, payload WorkflowPayload) (*Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*Workflow, error)
	ActivateWorkflow(ctx context.Context, id string) (*Workflow, error)
	DeactivateWorkflow(ctx context.Context, id string) (*Workflow, error)
}

// Options configures HTTP clients built by a Factory.
type Options struct {
	AdminTimeout  time.Duration
	UploadTimeout time.Duration
	HTTPClient    *http.Client
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	Tracer        trace.Tracer
}

// Factory builds a Client for one owner's remote account.
type Factory func(account *models.RemoteAccount) (Client, error)

// NewFactory returns a Factory producing HTTPClients with opts.
func NewFactory(opts Options) Factory {
	return func(account *models.RemoteAccount) (Client, error) {
		return NewHTTPClient(account, opts)
	}
}

// HTTPClient talks to the remote server over HTTP using an admin API key.
type HTTPClient struct {
	baseURL       string
	apiKey        string
	adminTimeout  time.Duration
	uploadTimeout time.Duration
	http          *http.Client
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

// NewHTTPClient returns ErrNotConfigured when the account lacks an address or key.
func NewHTTPClient(account *models.RemoteAccount, opts Options) (*HTTPClient, error) {
	if !account.IsConfigured() {
		return nil, ErrNotConfigured
	}

	if opts.AdminTimeout <= 0 {
		opts.AdminTimeout = DefaultAdminTimeout
	}

	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Tracer == nil {
		opts.Tracer = otelhelper.Tracer("flowgate/remote")
	}

	return &HTTPClient{
		baseURL:       strings.TrimRight(strings.TrimSpace(account.BaseURL), "/") + "/",
		apiKey:        account.APIKey,
		adminTimeout:  opts.AdminTimeout,
		uploadTimeout: opts.UploadTimeout,
		http:          opts.HTTPClient,
		logger:        opts.Logger.With("module", "remote_client"),
		metrics:       opts.Metrics,
		tracer:        opts.Tracer,
	}, nil
}

// ListCredentials returns every credential, following cursor pagination.
// Both the paginated {"data": [...]} shape and a bare array are accepted.
func (c *HTTPClient) ListCredentials(ctx context.Context) ([]Credential, error) {
	const op = "list_credentials"

	credentials := make([]Credential, 0)
	cursor := ""

	for page := 0; page < maxCredentialPages; page++ {
		path := "credentials"
		if cursor != "" {
			path += "?cursor=" + url.QueryEscape(cursor)
		}

		var raw json.RawMessage
		if err := c.do(ctx, op, http.MethodGet, path, nil, &raw, c.adminTimeout); err != nil {
			return nil, err
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var list []Credential
			if err := json.Unmarshal(trimmed, &list); err != nil {
				return nil, fmt.Errorf("%s: decode response: %w", op, err)
			}

			return append(credentials, list...), nil
		}

		var list credentialList
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%s: decode response: %w", op, err)
		}

		credentials = append(credentials, list.Data...)

		if list.NextCursor == nil || *list.NextCursor == "" {
			return credentials, nil
		}

		cursor = *list.NextCursor
	}

	return credentials, nil
}

func (c *HTTPClient) CreateCredential(ctx context.Context, req CreateCredentialRequest) (*Credential, error) {
	var credential Credential
	if err := c.do(ctx, "create_credential", http.MethodPost, "credentials", req, &credential, c.adminTimeout); err != nil {
		return nil, err
	}

	return &credential, nil
}

func (c *HTTPClient) CreateWorkflow(ctx context.Context, payload WorkflowPayload) (*Workflow, error) {
	var workflow Workflow
	if err := c.do(ctx, "create_workflow", http.MethodPost, "workflows", payload, &workflow, c.uploadTimeout); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *HTTPClient) UpdateWorkflow(ctx context.Context, id string, payload WorkflowPayload) (*Workflow, error) {
	var workflow Workflow

	path := "workflows/" + url.PathEscape(id)
	if err := c.do(ctx, "update_workflow", http.MethodPut, path, payload, &workflow, c.uploadTimeout); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *HTTPClient) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var workflow Workflow

	path := "workflows/" + url.PathEscape(id)
	if err := c.do(ctx, "get_workflow", http.MethodGet, path, nil, &workflow, c.adminTimeout); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *HTTPClient) ActivateWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var workflow Workflow

	path := "workflows/" + url.PathEscape(id) + "/activate"
	if err := c.do(ctx, "activate_workflow", http.MethodPost, path, nil, &workflow, c.adminTimeout); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *HTTPClient) DeactivateWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var workflow Workflow

	path := "workflows/" + url.PathEscape(id) + "/deactivate"
	if err := c.do(ctx, "deactivate_workflow", http.MethodPost, path, nil, &workflow, c.adminTimeout); err != nil {
		return nil, err
	}

	return &workflow, nil
}

func (c *HTTPClient) do(
	ctx context.Context,
	op, method, path string,
	body any,
	out any,
	timeout time.Duration,
) (err error) {
	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "remote."+op,
		attribute.String(otelhelper.RemoteOperationKey, op))
	defer span.End()

	defer func() {
		c.metrics.ObserveRemoteCall(op, err)

		if err != nil {
			otelhelper.SetError(span, err)
			c.logger.ErrorContext(ctx, "Remote call failed", "operation", op, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("%s: encode request: %w", op, marshalErr)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			c.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	span.SetAttributes(attribute.Int(otelhelper.HTTPStatusKey, resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		if ctx.Err() != nil {
			return &TransportError{Op: op, Err: ctx.Err()}
		}

		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	return nil
}

// errorMessage prefers the "message" field of a JSON error body, then the
// raw body, then the status text.
func errorMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}

		if parsed.Error != "" {
			return parsed.Error
		}
	}

	return strings.TrimSpace(string(body))
}
