// Package infoblox reads and replaces the allowed values of an extensible
// attribute definition through the Infoblox WAPI.
package infoblox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/locsync/internal/transport"
	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/logging"
)

// Config describes the WAPI endpoint and credentials.
type Config struct {
	// Endpoint is the versioned WAPI base, e.g. https://gm.example.com/wapi/v2.12.
	Endpoint string
	Username string
	Password string
}

// AttributeDefinition is the part of an extensibleattributedef the sync needs.
type AttributeDefinition struct {
	// Ref is the opaque object reference used for updates.
	Ref    string
	Name   string
	Type   string
	Values differ.Set
}

type listValue struct {
	Value string `json:"value"`
}

type attributeDef struct {
	Ref        string      `json:"_ref"`
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	ListValues []listValue `json:"list_values"`
}

type updateRequest struct {
	ListValues []listValue `json:"list_values"`
}

// wapiError is the error body WAPI returns on rejected calls.
type wapiError struct {
	Error string `json:"Error"`
	Code  string `json:"code"`
	Text  string `json:"text"`
}

// Client implements the reconciler target for Infoblox.
type Client struct {
	baseURL   string
	transport *transport.Client
}

// NewClient creates an Infoblox client using basic authentication.
func NewClient(cfg Config, httpCfg transport.Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.NewValidationError("infoblox.endpoint", "", "endpoint is required")
	}

	httpCfg.System = errors.SystemTarget
	tc, err := transport.New(httpCfg, &transport.BasicAuth{Username: cfg.Username, Password: cfg.Password})
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		transport: tc,
	}, nil
}

// GetAttributeDefinition fetches the named attribute with its allowed values.
func (c *Client) GetAttributeDefinition(ctx context.Context, name string) (*AttributeDefinition, error) {
	ctx = logging.WithOperation(logging.WithSystem(ctx, string(errors.SystemTarget)), "read_attribute")

	params := url.Values{}
	params.Set("name", name)
	params.Set("_return_fields", "name,type,list_values")
	endpoint := c.baseURL + "/extensibleattributedef?" + params.Encode()

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var defs []attributeDef
	if err := transport.DecodeResponse(resp, errors.SystemTarget, &defs); err != nil {
		return nil, c.classifyRead(err)
	}
	if len(defs) == 0 || defs[0].Ref == "" {
		return nil, errors.NewNotFoundError(errors.ResourceAttribute, name)
	}

	def := defs[0]
	values := differ.NewSet()
	for _, lv := range def.ListValues {
		values.Add(lv.Value)
	}

	logging.FromContext(ctx).Debug().
		Str("attribute", def.Name).
		Str("type", def.Type).
		Int("values", values.Len()).
		Msg("Read attribute definition")

	return &AttributeDefinition{
		Ref:    def.Ref,
		Name:   def.Name,
		Type:   def.Type,
		Values: values,
	}, nil
}

// SetAllowedValues replaces the attribute's entire allowed-value list with
// values. Any value left out is removed from every object using it. The call
// is made once and never retried.
func (c *Client) SetAllowedValues(ctx context.Context, ref string, values differ.Set) error {
	ctx = logging.WithOperation(logging.WithSystem(ctx, string(errors.SystemTarget)), "replace_values")

	body := updateRequest{ListValues: make([]listValue, 0, values.Len())}
	for _, v := range values.Sorted() {
		body.ListValues = append(body.ListValues, listValue{Value: v})
	}

	resp, err := c.transport.PutJSON(ctx, c.baseURL+"/"+strings.TrimLeft(ref, "/"), body)
	if err != nil {
		return err
	}

	if err := transport.DecodeResponse(resp, errors.SystemTarget, nil); err != nil {
		return c.classifyWrite(err)
	}

	logging.FromContext(ctx).Debug().
		Str("ref", ref).
		Int("values", values.Len()).
		Msg("Replaced allowed values")
	return nil
}

func (c *Client) classifyRead(err error) error {
	var apiErr *errors.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAuthenticationError(errors.SystemTarget, c.transport.AuthMethod(), "credentials rejected", apiErr)
	default:
		return errors.NewUnavailableError(errors.SystemTarget, "read attribute", apiErr)
	}
}

func (c *Client) classifyWrite(err error) error {
	var apiErr *errors.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized:
		return errors.NewAuthenticationError(errors.SystemTarget, c.transport.AuthMethod(), "credentials rejected", apiErr)
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && !apiErr.Retryable():
		return errors.NewRejectedError(errors.SystemTarget, apiErr.StatusCode, wapiMessage(apiErr.Message), nil)
	default:
		return errors.NewUnavailableError(errors.SystemTarget, "update attribute", apiErr)
	}
}

// wapiMessage extracts the human-readable text from a WAPI error body.
func wapiMessage(body string) string {
	var we wapiError
	if err := json.Unmarshal([]byte(body), &we); err == nil {
		if we.Text != "" {
			return we.Text
		}
		if we.Error != "" {
			return we.Error
		}
	}
	return body
}
