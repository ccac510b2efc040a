package glpi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to one GLPI instance. Tenant-scoped clients are built from
// the tenant's stored credentials; the system-scoped client from config.
// Tickets and sessions are never cached: every logical operation mints its
// own session token and discards it.
type Client struct {
	BaseURL  string
	AppToken string

	// Tenant is the metric label for upstream calls ("system" for the
	// shared directory client).
	Tenant string

	HTTP *http.Client
}

func NewClient(baseURL, appToken, tenant string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		AppToken: appToken,
		Tenant:   tenant,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

// AuthError means the upstream session init was rejected or returned no
// session token. The upstream response body is kept for diagnostics.
type AuthError struct {
	Reason string
	Body   string
}

func (e *AuthError) Error() string {
	if e.Body != "" {
		return "glpi auth failed: " + e.Reason + ": " + e.Body
	}
	return "glpi auth failed: " + e.Reason
}

// UpstreamError is any non-2xx response or transport failure from GLPI
// outside of session init. Calls are single-attempt; the caller decides
// whether a human retries.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return "glpi request failed: " + e.Err.Error()
	}
	return fmt.Sprintf("glpi returned status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// do executes one upstream call and returns the response body. Non-2xx
// responses and transport errors (timeouts included) become UpstreamError.
func (c *Client) do(operation string, req *http.Request) ([]byte, error) {
	req.Header.Set("App-Token", c.AppToken)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		observeUpstream(c.Tenant, operation, 0, time.Since(start))
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	observeUpstream(c.Tenant, operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func (c *Client) get(operation, url, session string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Session-Token", session)
	return c.do(operation, req)
}

// write issues a POST or PUT with a JSON body wrapped in GLPI's "input"
// envelope. Writes are not idempotent and are never retried.
func (c *Client) write(operation, method, url, session string, input map[string]any) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Session-Token", session)
	req.Header.Set("Set-ID-Entity", "0")
	req.Header.Set("Is-Recursive", "true")
	return c.do(operation, req)
}

// RawRow is one search result row keyed by numeric column id. Values come
// back as strings, numbers or arrays depending on the column.
type RawRow map[string]any

func (r RawRow) str(field int) string {
	v, ok := r[strconv.Itoa(field)]
	if !ok {
		return ""
	}
	return anyToString(v)
}

func (r RawRow) intval(field int) int {
	v, ok := r[strconv.Itoa(field)]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	default:
		return 0
	}
}

func anyToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case []any:
		// Multi-valued columns (e.g. several assigned technicians) come
		// back as arrays; join them the way GLPI renders lists.
		parts := make([]string, 0, len(s))
		for _, item := range s {
			if p := anyToString(item); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", s)
	}
}
