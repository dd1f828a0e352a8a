package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-lite/internal/middleware"
	"github-lite/pkg/config"
)

func newTestServer(t *testing.T, upstreamBody string) *httptest.Server {
	t.Helper()
	github := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamBody))
	}))
	t.Cleanup(github.Close)

	cfg := &config.Config{}
	cfg.GitHub.ClientID = "Iv1.client"
	cfg.GitHub.ClientSecret = "router-secret"
	cfg.GitHub.TokenURL = github.URL
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := httptest.NewServer(newRouter(cfg, logger, prometheus.NewRegistry()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_ExchangeAtLoginAndRoot(t *testing.T) {
	srv := newTestServer(t, `{"access_token":"gho_router"}`)

	for _, path := range []string{"/login", "/"} {
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(`{"code":"abc"}`))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode, path)
		assert.JSONEq(t, `{"token":"gho_router"}`, string(body))
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	}
}

func TestRouter_MetricsCountExchanges(t *testing.T) {
	srv := newTestServer(t, `{"error":"bad_verification_code"}`)

	resp, err := http.Post(srv.URL+"/login", "application/json", strings.NewReader(`{"code":"abc"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Contains(t, string(body), `github_lite_token_exchanges_total{outcome="upstream_error"} 1`)
	assert.Contains(t, string(body), "github_lite_upstream_duration_seconds_count 1")
	assert.NotContains(t, string(body), "router-secret")
}

func TestRouter_UnknownPath(t *testing.T) {
	srv := newTestServer(t, `{}`)

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfigureLogger(t *testing.T) {
	logger := logrus.New()

	configureLogger(logger, config.LoggingConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	configureLogger(logger, config.LoggingConfig{Level: "bogus", Format: "text"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
