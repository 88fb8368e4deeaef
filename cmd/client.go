package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/smazurov/blinkd/internal/version"
)

// Client talks to a running blinkd over its HTTP API.
type Client struct {
	baseURL  string
	username string
	password string
	http     *retryablehttp.Client
}

// problem is the RFC 9457 body Huma returns on errors.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// NewClient creates a client for the server at addr, e.g. "localhost:8090".
// Empty credentials send no Authorization header.
func NewClient(addr, username, password string, logger *slog.Logger) *Client {
	if !strings.Contains(addr, "://") {
		if strings.HasPrefix(addr, ":") {
			addr = "localhost" + addr
		}
		addr = "http://" + addr
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = logger

	return &Client{
		baseURL:  strings.TrimRight(addr, "/"),
		username: username,
		password: password,
		http:     rc,
	}
}

// Write sends one command and returns the bytes the device consumed.
func (c *Client) Write(ctx context.Context, command string) (int, error) {
	body, err := json.Marshal(map[string]string{"command": command})
	if err != nil {
		return 0, err
	}

	var out struct {
		Written int `json:"written"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/device/write", body, &out); err != nil {
		return 0, err
	}
	return out.Written, nil
}

// ReadStatus reads the whole status text in pages of pageSize bytes.
// Each page is a fresh snapshot, so a state change mid-read can mix states.
func (c *Client) ReadStatus(ctx context.Context, pageSize int) ([]byte, error) {
	var text []byte
	for {
		q := url.Values{}
		q.Set("offset", strconv.Itoa(len(text)))
		q.Set("length", strconv.Itoa(pageSize))

		resp, err := c.do(ctx, http.MethodGet, "/api/device/read?"+q.Encode(), nil)
		if err != nil {
			return nil, err
		}
		page, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read status page: %w", err)
		}
		if len(page) == 0 {
			return text, nil
		}
		text = append(text, page...)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// do sends the request and turns non-2xx responses into errors.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	var p problem
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil || p.Detail == "" {
		return nil, fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}
	return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, p.Detail)
}
