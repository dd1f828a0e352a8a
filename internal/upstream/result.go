package upstream

import (
	"encoding/json"
	"strconv"
)

// Result is the outcome of a code exchange that reached GitHub and got a
// well-formed answer. It is either a Token or an UpstreamError.
type Result interface {
	isResult()
}

// Token is an access token issued by GitHub
type Token struct {
	Value string
}

// UpstreamError is a rejection reported by GitHub's token endpoint,
// e.g. bad_verification_code or incorrect_client_credentials.
type UpstreamError struct {
	Code        string
	Description string
	// Payload is the JSON object GitHub returned, passed through unchanged.
	Payload json.RawMessage
}

func (Token) isResult() {}
func (UpstreamError) isResult() {}

// tokenResponse mirrors GitHub's access_token response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`

	// error and error_description are kept raw so a non-string value is
	// still classified as a rejection.
	Error            json.RawMessage `json:"error"`
	ErrorDescription json.RawMessage `json:"error_description"`
}

// isSet reports whether a raw JSON value is truthy: present and not
// null, false, 0 or "".
func isSet(raw json.RawMessage) bool {
	switch v := string(raw); v {
	case "", "null", "false", `""`:
		return false
	default:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f != 0
		}
		return true
	}
}

// rawText returns a JSON string's contents, or the raw JSON for any other value
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
