package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request)
	// Method names the scheme for error messages ("basic", "apikey").
	Method() string
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request) {}

// Method implements the Authenticator interface for NoAuth.
func (a *NoAuth) Method() string { return "none" }

// BasicAuth implements HTTP basic authentication. ServiceNow takes a user
// name and API token here; Infoblox a user name and password.
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// Method implements the Authenticator interface for BasicAuth.
func (a *BasicAuth) Method() string { return "basic" }

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
	Value  string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request) {
	req.Header.Set(a.Header, a.Value)
}

// Method implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Method() string { return "apikey" }
