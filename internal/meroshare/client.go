// Package meroshare implements the remote portal client and the per-account
// session lifecycle: login, issue discovery, application submission, status
// queries, portfolio reads, and logout.
package meroshare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production portal backend.
const DefaultBaseURL = "https://webbackend.cdsc.com.np"

// Client holds the HTTP plumbing shared by all account sessions.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a portal client with optional proxy support.
func NewClient(baseURL, proxyURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// do issues one JSON request. A non-2xx response becomes a *RemoteError
// carrying the body; an undecodable 2xx body becomes a *ParseError.
func (c *Client) do(op, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Body: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ParseError{Op: op, Err: err}
		}
	}
	return nil
}

type capitalEntry struct {
	Code string `json:"code"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// FetchCapitals downloads the full depository-participant list and returns
// the code → capital-id mapping. No session is required.
func (c *Client) FetchCapitals() (map[string]int, error) {
	var entries []capitalEntry
	if err := c.do("fetch capitals", http.MethodGet, "/api/meroShare/capital/", "", nil, &entries); err != nil {
		return nil, err
	}
	capitals := make(map[string]int, len(entries))
	for _, e := range entries {
		capitals[e.Code] = e.ID
	}
	return capitals, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
