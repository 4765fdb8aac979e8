// Package client talks to a topology server over its JSON HTTP API.
//
// The Client covers the full server surface: topology persistence,
// simulation control, point-to-point messages, presets, runtime
// configuration, and user registration. Transient failures (network
// errors, 5xx, 429) are retried with exponential backoff; other HTTP
// failures surface as persistence errors.
//
// All methods are safe for concurrent use.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	qerrors "github.com/qforge/qtopo/pkg/errors"
	"github.com/qforge/qtopo/pkg/httputil"
	"github.com/qforge/qtopo/pkg/observability"
	"github.com/qforge/qtopo/pkg/snapshot"
	"github.com/qforge/qtopo/pkg/topology"
)

// Config is the server's runtime configuration (feature flags and the
// like). Keys are server-defined.
type Config map[string]any

// Client is a topology server API client.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	logger  *log.Logger

	// Presets and config rarely change; both are fetched once and kept
	// for the process lifetime.
	mu      sync.Mutex
	presets []topology.Preset
	config  Config
}

// New creates a Client for the server at baseURL. userID is sent as the
// bearer credential on every request; pass "" for anonymous access.
// A nil logger uses the default logger.
func New(baseURL, userID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// BaseURL returns the server base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// ChannelURL returns the WebSocket address of the server's live
// channel, derived from the base URL.
func (c *Client) ChannelURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", qerrors.Wrap(qerrors.ErrCodeInvalidAddress, err, "invalid server url")
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", qerrors.New(qerrors.ErrCodeInvalidAddress,
			"cannot derive channel address from scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

// SaveTopology upserts a snapshot. The server's persistence key and
// world id are written back into snap, so a later save updates the same
// record. Implements the autosave Saver contract.
func (c *Client) SaveTopology(ctx context.Context, snap *snapshot.Snapshot) error {
	path := "/topology/"
	if snap.PK != "" {
		path = "/topology/" + snap.PK
	}

	var resp struct {
		PK      string `json:"pk"`
		WorldID string `json:"world_id"`
	}
	if err := c.do(ctx, http.MethodPut, path, snap, nil, &resp); err != nil {
		return err
	}
	if resp.PK != "" {
		snap.PK = resp.PK
	}
	if resp.WorldID != "" {
		snap.WorldID = resp.WorldID
	}
	return nil
}

// FetchTopology retrieves a snapshot by id. A missing snapshot returns
// (nil, nil) rather than an error.
func (c *Client) FetchTopology(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	err := c.do(ctx, http.MethodGet, "/topology/"+id, nil, nil, &snap)
	if qerrors.GetCode(err) == qerrors.ErrCodeNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListTopologies lists the saved snapshots.
func (c *Client) ListTopologies(ctx context.Context) ([]snapshot.Summary, error) {
	var out []snapshot.Summary
	if err := c.do(ctx, http.MethodGet, "/topology/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Presets returns the server's connection preset catalog. The catalog
// is fetched once and cached for the process lifetime.
func (c *Client) Presets(ctx context.Context) ([]topology.Preset, error) {
	c.mu.Lock()
	if c.presets != nil {
		defer c.mu.Unlock()
		return c.presets, nil
	}
	c.mu.Unlock()

	var out []topology.Preset
	if err := c.do(ctx, http.MethodGet, "/topology/connection_config_presets", nil, nil, &out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.presets = out
	c.mu.Unlock()
	return out, nil
}

// StartSimulation starts a simulation against a saved snapshot and
// returns the new simulation id. Starting with an empty topology fails
// immediately, without a request. The server must answer 201.
func (c *Client) StartSimulation(ctx context.Context, snap *snapshot.Snapshot) (string, error) {
	if snap == nil || snap.Empty() {
		return "", qerrors.New(qerrors.ErrCodeEmptyTopology, "cannot simulate an empty topology")
	}
	if snap.PK == "" {
		return "", qerrors.New(qerrors.ErrCodePersistence, "topology was never saved")
	}

	var resp struct {
		PK string `json:"pk"`
	}
	if err := c.do(ctx, http.MethodPost, "/simulation/"+snap.PK, nil, []int{http.StatusCreated}, &resp); err != nil {
		return "", err
	}
	return resp.PK, nil
}

// StopSimulation stops the running simulation. The server must answer
// 200.
func (c *Client) StopSimulation(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/simulation/", nil, []int{http.StatusOK}, nil)
}

// SendMessage sends a point-to-point message between two nodes of the
// running simulation.
func (c *Client) SendMessage(ctx context.Context, from, to, message string) error {
	body := map[string]string{
		"from_node_name": from,
		"to_node_name":   to,
		"message":        message,
	}
	return c.do(ctx, http.MethodPost, "/simulation/message/", body, nil, nil)
}

// SimulationStatus reports whether the server has a simulation running.
func (c *Client) SimulationStatus(ctx context.Context) (bool, error) {
	var resp struct {
		IsRunning bool `json:"is_running"`
	}
	if err := c.do(ctx, http.MethodGet, "/simulation/status/", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsRunning, nil
}

// ServerConfig returns the server's runtime configuration, fetched once
// and cached for the process lifetime.
func (c *Client) ServerConfig(ctx context.Context) (Config, error) {
	c.mu.Lock()
	if c.config != nil {
		defer c.mu.Unlock()
		return c.config, nil
	}
	c.mu.Unlock()

	var out Config
	if err := c.do(ctx, http.MethodGet, "/config/", nil, nil, &out); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.config = out
	c.mu.Unlock()
	return out, nil
}

// RegisterUser upserts a user identity on the server.
func (c *Client) RegisterUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/user/"+id+"/", nil, nil, nil)
}

// do performs one request with retry. body is JSON-encoded when non-nil.
// want lists the acceptable status codes; nil means any 2xx. out is
// JSON-decoded from the response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, want []int, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return qerrors.Wrap(qerrors.ErrCodePersistence, err, "encode request body")
		}
	}

	return httputil.RetryWithBackoff(ctx, func() error {
		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return qerrors.Wrap(qerrors.ErrCodePersistence, err, "build request")
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.userID != "" {
			req.Header.Set("Authorization", "Bearer "+c.userID)
		}

		observability.HTTP().OnRequest(ctx, method, req.URL.Host, path)
		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, method, req.URL.Host, path, err)
			return &httputil.RetryableError{
				Err: qerrors.Wrap(qerrors.ErrCodeTransport, err, "%s %s", method, path),
			}
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, method, req.URL.Host, path, resp.StatusCode, time.Since(start))

		if err := checkStatus(resp.StatusCode, want, method, path); err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return qerrors.Wrap(qerrors.ErrCodePersistence, err, "decode response")
		}
		return nil
	})
}

func checkStatus(code int, want []int, method, path string) error {
	if len(want) > 0 {
		for _, w := range want {
			if code == w {
				return nil
			}
		}
	} else if code >= 200 && code < 300 {
		return nil
	}

	const format = "%s %s: unexpected status %d"
	switch {
	case code == http.StatusNotFound:
		return qerrors.New(qerrors.ErrCodeNotFound, format, method, path, code)
	case code >= 500 || code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: qerrors.New(qerrors.ErrCodePersistence, format, method, path, code)}
	default:
		return qerrors.New(qerrors.ErrCodePersistence, format, method, path, code)
	}
}
