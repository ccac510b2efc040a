package glpi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

type sessionResponse struct {
	SessionToken string `json:"session_token"`
}

// InitSession mints a session token with the given credentials. Tokens are
// short-lived and upstream sessions are cheap, so each logical operation
// calls this once and shares the token across its calls; nothing is cached
// between requests.
func (c *Client) InitSession(login, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"login":    login,
		"password": password,
	})
	if err != nil {
		return "", &AuthError{Reason: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/initSession", bytes.NewReader(payload))
	if err != nil {
		return "", &AuthError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("App-Token", c.AppToken)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		observeUpstream(c.Tenant, "initSession", 0, time.Since(start))
		return "", &AuthError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	observeUpstream(c.Tenant, "initSession", resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Reason: "session init rejected", Body: string(body)}
	}

	var session sessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", &AuthError{Reason: "invalid session response", Body: string(body)}
	}
	if session.SessionToken == "" {
		return "", &AuthError{Reason: "no session token in response", Body: string(body)}
	}
	return session.SessionToken, nil
}
