package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github-lite/pkg/config"
)

// maxResponseBytes bounds how much of GitHub's token response is read
const maxResponseBytes = 1 << 20

var (
	// ErrMissingToken is returned when GitHub answers with neither a token nor an error
	ErrMissingToken = errors.New("upstream response has neither access_token nor error")
	// ErrBodyTooLarge is returned when the token response exceeds maxResponseBytes
	ErrBodyTooLarge = errors.New("upstream response too large")
)

// Observer receives the duration of each outbound token request
type Observer interface {
	ObserveUpstream(duration time.Duration)
}

// Exchanger performs the authorization code exchange against GitHub's token endpoint
type Exchanger struct {
	TokenURL     string
	ClientID     string
	clientSecret string
	UserAgent    string
	HTTPClient   *http.Client
	Log          *logrus.Logger
	Observer     Observer
}

// NewExchanger creates an exchanger from the GitHub section of the configuration
func NewExchanger(cfg config.GitHubConfig, log *logrus.Logger) *Exchanger {
	return &Exchanger{
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		UserAgent:    cfg.UserAgent,
		HTTPClient:   &http.Client{Timeout: cfg.Timeout()},
		Log:          log,
	}
}

type exchangeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

// Exchange trades code for an access token. It makes exactly one request and
// never retries: codes are single use, so a retry could only fail. A non-nil
// error means no usable answer was obtained from GitHub.
func (e *Exchanger) Exchange(ctx context.Context, code string) (Result, error) {
	body, err := json.Marshal(exchangeRequest{
		ClientID:     e.ClientID,
		ClientSecret: e.clientSecret,
		Code:         code,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.TokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", e.UserAgent)

	e.Log.Debugf("🔄 [EXCHANGE] POST %s (client_id: %s)", e.TokenURL, e.ClientID)

	start := time.Now()
	resp, err := e.HTTPClient.Do(req)
	if e.Observer != nil {
		e.Observer.ObserveUpstream(time.Since(start))
	}
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if len(respBody) > maxResponseBytes {
		return nil, ErrBodyTooLarge
	}

	e.Log.Debugf("🔄 [EXCHANGE] Upstream response status: %d", resp.StatusCode)

	return decodeResult(respBody)
}

// decodeResult classifies a token endpoint body by the presence of "error"
func decodeResult(body []byte) (Result, error) {
	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if isSet(parsed.Error) {
		return UpstreamError{
			Code:        rawText(parsed.Error),
			Description: rawText(parsed.ErrorDescription),
			Payload:     json.RawMessage(bytes.TrimSpace(body)),
		}, nil
	}

	if parsed.AccessToken == "" {
		return nil, ErrMissingToken
	}

	return Token{Value: parsed.AccessToken}, nil
}
