package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/agentstation/locsync/pkg/constants"
	"github.com/agentstation/locsync/pkg/errors"
)

// DecodeResponse decodes a JSON response into the target structure.
// Non-2xx responses come back as *errors.APIError carrying a bounded
// excerpt of the body; a body that is not valid JSON makes the system
// unavailable for this run. A nil target only checks the status.
func DecodeResponse(resp *http.Response, system errors.System, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewUnavailableError(system, "read response", errors.WrapIO("read", "response body", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errors.NewAPIError(system, resp.StatusCode, excerpt(body))
		if resp.Request != nil {
			apiErr.Endpoint = redact(resp.Request.URL)
		}
		return apiErr
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewUnavailableError(system, "decode response", errors.WrapParse("json", "response", err))
	}
	return nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > constants.MaxErrorBodyLength {
		s = s[:constants.MaxErrorBodyLength] + "..."
	}
	if s == "" {
		return "empty response body"
	}
	return s
}
