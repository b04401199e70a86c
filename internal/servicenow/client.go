// Package servicenow reads location names from a ServiceNow table through
// the Table API.
package servicenow

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/locsync/internal/transport"
	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/logging"
)

// Authentication modes.
const (
	AuthModeBasic  = "basic"
	AuthModeAPIKey = "apikey"
)

// APIKeyHeader carries the token when AuthMode is AuthModeAPIKey.
const APIKeyHeader = "x-sn-apikey"

// Config describes where and how to read locations.
type Config struct {
	Endpoint string
	Username string
	Token    string
	AuthMode string

	Table string
	Query string
	Field string

	// Limit caps the number of records read in one run.
	Limit int
	// PageSize is the sysparm_limit sent with each request.
	PageSize int
}

// tableResponse is the Table API envelope.
type tableResponse struct {
	Result []map[string]any `json:"result"`
}

// Client implements the reconciler source for ServiceNow.
type Client struct {
	cfg       Config
	baseURL   string
	transport *transport.Client
}

// NewClient creates a ServiceNow client. httpCfg carries the shared HTTP
// settings (timeout, TLS, proxy, retries).
func NewClient(cfg Config, httpCfg transport.Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.NewValidationError("servicenow.endpoint", "", "endpoint is required")
	}
	if cfg.Table == "" {
		cfg.Table = constants.DefaultSourceTable
	}
	if cfg.Query == "" {
		cfg.Query = constants.DefaultSourceQuery
	}
	if cfg.Field == "" {
		cfg.Field = constants.DefaultSourceField
	}
	if cfg.Limit <= 0 {
		cfg.Limit = constants.DefaultRecordLimit
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = constants.DefaultPageSize
	}

	var auth transport.Authenticator
	switch cfg.AuthMode {
	case "", AuthModeBasic:
		auth = &transport.BasicAuth{Username: cfg.Username, Password: cfg.Token}
	case AuthModeAPIKey:
		auth = &transport.HeaderAuth{Header: APIKeyHeader, Value: cfg.Token}
	default:
		return nil, errors.NewValidationError("servicenow.auth_mode", cfg.AuthMode, "must be basic or apikey")
	}

	httpCfg.System = errors.SystemSource
	tc, err := transport.New(httpCfg, auth)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:       cfg,
		baseURL:   NormalizeEndpoint(cfg.Endpoint),
		transport: tc,
	}, nil
}

// NormalizeEndpoint prepends https:// when the instance URL has no scheme
// and drops trailing slashes.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	lower := strings.ToLower(endpoint)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}

// FetchLocations reads every location name selected by the configured query.
// Names are trimmed; empty names are skipped and duplicates collapse. A query
// that matches nothing yields an empty set, not an error.
func (c *Client) FetchLocations(ctx context.Context) (differ.Set, error) {
	ctx = logging.WithOperation(logging.WithSystem(ctx, string(errors.SystemSource)), "fetch_locations")
	logger := logging.FromContext(ctx)
	names := differ.NewSet()

	fetched := 0
	for fetched < c.cfg.Limit {
		pageSize := min(c.cfg.PageSize, c.cfg.Limit-fetched)

		records, total, err := c.fetchPage(ctx, fetched, pageSize)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			name, ok := record[c.cfg.Field].(string)
			if !ok {
				continue
			}
			if name = strings.TrimSpace(name); name != "" {
				names.Add(name)
			}
		}
		fetched += len(records)

		logger.Debug().
			Int("page_records", len(records)).
			Int("fetched", fetched).
			Int("total", total).
			Msg("Fetched ServiceNow page")

		if len(records) < pageSize || (total >= 0 && fetched >= total) {
			return names, nil
		}
	}

	logger.Warn().
		Int("limit", c.cfg.Limit).
		Msg("ServiceNow record limit reached; locations beyond the limit were not read")
	return names, nil
}

// fetchPage reads one page. total is -1 when the server sent no X-Total-Count.
func (c *Client) fetchPage(ctx context.Context, offset, limit int) ([]map[string]any, int, error) {
	params := url.Values{}
	params.Set("sysparm_query", c.cfg.Query)
	params.Set("sysparm_fields", c.cfg.Field)
	params.Set("sysparm_limit", strconv.Itoa(limit))
	params.Set("sysparm_offset", strconv.Itoa(offset))
	params.Set("sysparm_exclude_reference_link", "true")

	endpoint := c.baseURL + "/api/now/table/" + url.PathEscape(c.cfg.Table) + "?" + params.Encode()

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, 0, err
	}

	total := -1
	if v := resp.Header.Get("X-Total-Count"); v != "" {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			total = n
		}
	}

	var result tableResponse
	if err := transport.DecodeResponse(resp, errors.SystemSource, &result); err != nil {
		return nil, 0, c.classify(err)
	}
	return result.Result, total, nil
}

// classify maps a decoded failure onto the source error taxonomy.
func (c *Client) classify(err error) error {
	var apiErr *errors.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAuthenticationError(errors.SystemSource, c.transport.AuthMethod(), "credentials rejected", apiErr)
	default:
		return errors.NewUnavailableError(errors.SystemSource, "fetch locations", apiErr)
	}
}
