package servicenow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/locsync/internal/transport"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/logging"
)

func writeRecords(t *testing.T, w http.ResponseWriter, names ...string) {
	t.Helper()
	records := make([]map[string]any, 0, len(names))
	for _, n := range names {
		records = append(records, map[string]any{"name": n})
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"result": records}))
}

func newClient(t *testing.T, url string, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{Endpoint: url, Username: "sync", Token: "token"}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg, transport.Config{MaxRetries: 1})
	require.NoError(t, err)
	return c
}

func TestFetchLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/now/table/cmn_location", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "cmn_location_typeINcountry,city,campus", q.Get("sysparm_query"))
		assert.Equal(t, "name", q.Get("sysparm_fields"))
		assert.Equal(t, "0", q.Get("sysparm_offset"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sync", user)
		assert.Equal(t, "token", pass)

		writeRecords(t, w, "NYC", "  LON ", "", "   ", "NYC")
	}))
	defer server.Close()

	names, err := newClient(t, server.URL, nil).FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"LON", "NYC"}, names.Sorted())
}

func TestFetchLocations_SkipsMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":[{"name":"NYC"},{"sys_id":"abc"},{"name":null},{"name":42}]}`))
	}))
	defer server.Close()

	names, err := newClient(t, server.URL, nil).FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"NYC"}, names.Sorted())
}

func TestFetchLocations_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeRecords(t, w)
	}))
	defer server.Close()

	names, err := newClient(t, server.URL, nil).FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, names.Len())
}

func TestFetchLocations_Paging(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("sysparm_offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("sysparm_limit"))
		assert.Equal(t, 2, limit)

		all := []string{"A", "B", "C", "D", "E"}
		end := min(offset+limit, len(all))
		writeRecords(t, w, all[offset:end]...)
	}))
	defer server.Close()

	c := newClient(t, server.URL, func(cfg *Config) { cfg.PageSize = 2 })
	names, err := c.FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names.Sorted())
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchLocations_TotalCountStopsPaging(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("X-Total-Count", "2")
		writeRecords(t, w, "A", "B")
	}))
	defer server.Close()

	c := newClient(t, server.URL, func(cfg *Config) { cfg.PageSize = 2 })
	names, err := c.FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, names.Len())
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchLocations_RecordLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("sysparm_limit"))
		names := make([]string, 0, limit)
		for i := range limit {
			names = append(names, fmt.Sprintf("site-%d-%d", n, i))
		}
		writeRecords(t, w, names...)
	}))
	defer server.Close()

	c := newClient(t, server.URL, func(cfg *Config) {
		cfg.PageSize = 4
		cfg.Limit = 6
	})
	names, err := c.FetchLocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, names.Len())
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetchLocations_APIKeyAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token", r.Header.Get(APIKeyHeader))
		_, _, ok := r.BasicAuth()
		assert.False(t, ok)
		writeRecords(t, w, "NYC")
	}))
	defer server.Close()

	c := newClient(t, server.URL, func(cfg *Config) { cfg.AuthMode = AuthModeAPIKey })
	_, err := c.FetchLocations(context.Background())
	require.NoError(t, err)
}

func TestFetchLocations_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"User Not Authenticated"}}`, errors.ErrSourceAuth},
		{"forbidden", http.StatusForbidden, `{}`, errors.ErrSourceAuth},
		{"server error", http.StatusInternalServerError, `oops`, errors.ErrSourceUnavailable},
		{"rate limited", http.StatusTooManyRequests, ``, errors.ErrSourceUnavailable},
		{"bad request", http.StatusBadRequest, `{}`, errors.ErrSourceUnavailable},
		{"invalid json", http.StatusOK, `<html>maintenance</html>`, errors.ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(t, server.URL, nil).FetchLocations(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchLocations_AuthErrorIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newClient(t, server.URL, nil).FetchLocations(context.Background())

	var authErr *errors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, errors.SystemSource, authErr.System)
	assert.Equal(t, "basic", authErr.Method)
	assert.False(t, errors.Is(err, errors.ErrTargetAuth))
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "https://acme.service-now.com", NormalizeEndpoint("acme.service-now.com"))
	assert.Equal(t, "https://acme.service-now.com", NormalizeEndpoint("https://acme.service-now.com/"))
	assert.Equal(t, "http://localhost:8080", NormalizeEndpoint("http://localhost:8080"))
	assert.Equal(t, "HTTPS://acme", NormalizeEndpoint(" HTTPS://acme "))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{}, transport.Config{})
	assert.True(t, errors.IsConfig(err))

	_, err = NewClient(Config{Endpoint: "x", AuthMode: "oauth"}, transport.Config{})
	assert.True(t, errors.IsConfig(err))
}

func TestFetchLocations_LogsSystemAndOperation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeRecords(t, w, "NYC")
	}))
	defer server.Close()

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	_, err := newClient(t, server.URL, nil).FetchLocations(ctx)
	require.NoError(t, err)
	tl.AssertContains(t, `"system":"servicenow"`)
	tl.AssertContains(t, `"operation":"fetch_locations"`)
}
