package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github-lite/internal/metrics"
	"github-lite/internal/upstream"
	"github-lite/internal/utils"
	"github-lite/pkg/config"
)

// maxRequestBytes bounds the inbound {"code": ...} body
const maxRequestBytes = 64 << 10

// CodeExchanger trades an authorization code for a token result
type CodeExchanger interface {
	Exchange(ctx context.Context, code string) (upstream.Result, error)
}

// ExchangeRecorder counts exchange outcomes
type ExchangeRecorder interface {
	RecordExchange(outcome string)
}

// LoginHandler is the browser-facing end of the GitHub OAuth flow. It holds the
// client secret so the single page app never has to.
type LoginHandler struct {
	Configuration *config.Config
	Log           *logrus.Logger
	Exchanger     CodeExchanger
	Metrics       ExchangeRecorder
	oauth2Config  *oauth2.Config
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(configuration *config.Config, log *logrus.Logger, exchanger CodeExchanger, recorder ExchangeRecorder) *LoginHandler {
	return &LoginHandler{
		Configuration: configuration,
		Log:           log,
		Exchanger:     exchanger,
		Metrics:       recorder,
		oauth2Config: &oauth2.Config{
			ClientID: configuration.GitHub.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:  configuration.GitHub.AuthorizeURL,
				TokenURL: configuration.GitHub.TokenURL,
			},
			Scopes: configuration.GitHub.Scopes,
		},
	}
}

// LoginRequest is the body the browser posts after GitHub redirects back to it
type LoginRequest struct {
	Code string `json:"code"`
}

// LoginResponse carries the access token back to the browser
type LoginResponse struct {
	Token string `json:"token"`
}

// ServeHTTP dispatches on method
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleExchange(w, r)
	case http.MethodGet, http.MethodHead:
		if r.URL.Query().Has("redirect") {
			h.handleDevRedirect(w, r)
			return
		}
		h.handleAuthorize(w, r)
	case http.MethodOptions:
		h.handlePreflight(w)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		utils.WriteTextResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleExchange performs the code -> token exchange
func (h *LoginHandler) handleExchange(w http.ResponseWriter, r *http.Request) {
	code, err := decodeLoginRequest(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	result, err := h.Exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.fail(w, err)
		return
	}

	switch res := result.(type) {
	case upstream.Token:
		h.Log.Infof("✅ [LOGIN] Code exchanged for access token (length: %d)", len(res.Value))
		h.record(metrics.OutcomeToken)
		utils.AllowAnyOrigin(w)
		utils.WriteJSONResponse(w, http.StatusCreated, LoginResponse{Token: res.Value}, h.Log)
	case upstream.UpstreamError:
		h.Log.Warnf("⚠️ [LOGIN] GitHub rejected code exchange: %s", res.Code)
		h.record(metrics.OutcomeUpstreamError)
		utils.AllowAnyOrigin(w)
		utils.WriteRawJSON(w, http.StatusUnauthorized, res.Payload)
	default:
		h.fail(w, fmt.Errorf("unexpected exchange result %T", result))
	}
}

// fail writes the internal failure response. Unlike the 201 and 401 paths it
// sets no CORS header.
func (h *LoginHandler) fail(w http.ResponseWriter, err error) {
	h.Log.Errorf("❌ [LOGIN] Code exchange failed: %v", err)
	h.record(metrics.OutcomeFailure)
	utils.WriteTextResponse(w, http.StatusInternalServerError, err.Error())
}

func (h *LoginHandler) record(outcome string) {
	if h.Metrics != nil {
		h.Metrics.RecordExchange(outcome)
	}
}

func decodeLoginRequest(w http.ResponseWriter, r *http.Request) (string, error) {
	var req LoginRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		return "", fmt.Errorf("invalid request body: %w", err)
	}
	// The body must be exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return "", errors.New("invalid request body: unexpected data after JSON object")
	}
	if req.Code == "" {
		return "", errors.New("invalid request body: code is required")
	}
	return req.Code, nil
}

// handleAuthorize sends the browser to GitHub's consent page
func (h *LoginHandler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	authURL := h.oauth2Config.AuthCodeURL("")
	h.Log.Debugf("🔄 [LOGIN] Redirecting to GitHub authorize page: %s", authURL)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleDevRedirect bounces a GitHub callback to a locally running app.
// Only loopback targets are accepted.
func (h *LoginHandler) handleDevRedirect(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("redirect")

	if !h.Configuration.DevRedirect.Enabled {
		h.Log.Warnf("⚠️ [LOGIN] Dev redirect requested while disabled")
		utils.WriteTextResponse(w, http.StatusBadRequest, "dev redirect is disabled")
		return
	}

	if !utils.IsLoopbackURL(target) {
		h.Log.Warnf("⚠️ [LOGIN] Rejected dev redirect to non-loopback target: %q", target)
		utils.WriteTextResponse(w, http.StatusBadRequest, "redirect must point to http://localhost")
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *LoginHandler) handlePreflight(w http.ResponseWriter) {
	utils.AllowAnyOrigin(w)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}
