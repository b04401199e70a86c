package transport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNoAuth tests that NoAuth applies no authentication.
func TestNoAuth(t *testing.T) {
	auth := &NoAuth{}
	req := &http.Request{Header: make(http.Header)}

	auth.Apply(req)

	assert.Empty(t, req.Header)
	assert.Equal(t, "none", auth.Method())
}

// TestBasicAuth tests HTTP basic authentication.
func TestBasicAuth(t *testing.T) {
	auth := &BasicAuth{Username: "svc-sync", Password: "s3cret"}
	req := &http.Request{Header: make(http.Header)}

	auth.Apply(req)

	user, pass, ok := req.BasicAuth()
	assert.True(t, ok)
	assert.Equal(t, "svc-sync", user)
	assert.Equal(t, "s3cret", pass)
	assert.Equal(t, "basic", auth.Method())
}

// TestHeaderAuth tests custom header authentication.
func TestHeaderAuth(t *testing.T) {
	auth := &HeaderAuth{Header: "x-sn-apikey", Value: "token-123"}
	req := &http.Request{Header: make(http.Header)}

	auth.Apply(req)

	assert.Equal(t, "token-123", req.Header.Get("x-sn-apikey"))
	assert.Empty(t, req.Header.Get("Authorization"), "should not set Authorization")
	assert.Equal(t, "apikey", auth.Method())
}
