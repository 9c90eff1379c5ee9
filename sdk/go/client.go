package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/display"
	"github.com/TheInsomnolent/slayer-boosting/engine"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the slayer boosting HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// StartSession reports login counters and returns the first evaluation.
func (c *Client) StartSession(ctx context.Context, player string, counters core.Counters) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := c.playerCall(ctx, http.MethodPost, player, "/session", counters, &snap)
	return snap, err
}

// EndSession reports logout.
func (c *Client) EndSession(ctx context.Context, player string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := c.playerCall(ctx, http.MethodDelete, player, "/session", nil, &snap)
	return snap, err
}

// UpdateCounters reports changed streak, points or remaining kills.
func (c *Client) UpdateCounters(ctx context.Context, player string, counters core.Counters) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := c.playerCall(ctx, http.MethodPost, player, "/counters", counters, &snap)
	return snap, err
}

// GetPlayer fetches the current snapshot.
func (c *Client) GetPlayer(ctx context.Context, player string) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := c.playerCall(ctx, http.MethodGet, player, "", nil, &snap)
	return snap, err
}

// Panel fetches the status panel. It returns nil while no session is active.
func (c *Client) Panel(ctx context.Context, player string) (*display.Panel, error) {
	var p display.Panel
	found := false
	err := c.playerCallFunc(ctx, http.MethodGet, player, "/panel", nil, func(resp *http.Response) error {
		if resp.StatusCode == http.StatusNoContent {
			return nil
		}
		found = true
		return decodeJSON(resp, &p)
	})
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

// GetSettings fetches the player's effective settings.
func (c *Client) GetSettings(ctx context.Context, player string) (core.Settings, error) {
	var s core.Settings
	err := c.playerCall(ctx, http.MethodGet, player, "/settings", nil, &s)
	return s, err
}

// PutSettings replaces the player's settings and returns the recomputed snapshot.
func (c *Client) PutSettings(ctx context.Context, player string, settings core.Settings) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := c.playerCall(ctx, http.MethodPut, player, "/settings", settings, &snap)
	return snap, err
}

// Highlight asks how an NPC should be highlighted for the player.
func (c *Client) Highlight(ctx context.Context, player, npc string) (core.HighlightDecision, error) {
	var d core.HighlightDecision
	err := c.playerCall(ctx, http.MethodGet, player, "/highlight?npc="+url.QueryEscape(npc), nil, &d)
	return d, err
}

// Masters lists the master catalog.
func (c *Client) Masters(ctx context.Context) ([]MasterInfo, error) {
	var out []MasterInfo
	err := c.call(ctx, http.MethodGet, c.baseURL+"/masters", nil, func(resp *http.Response) error {
		return decodeJSON(resp, &out)
	})
	return out, err
}

// Players lists players with stored settings.
func (c *Client) Players(ctx context.Context) ([]string, error) {
	var body struct {
		Players []string `json:"players"`
	}
	err := c.call(ctx, http.MethodGet, c.baseURL+"/players", nil, func(resp *http.Response) error {
		return decodeJSON(resp, &body)
	})
	return body.Players, err
}

// Health probes /healthz and returns status + storage check. An unhealthy
// server still yields its status body.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	err := c.call(ctx, http.MethodGet, c.baseURL+"/healthz", nil, func(resp *http.Response) error {
		if resp.StatusCode == http.StatusServiceUnavailable {
			return json.NewDecoder(resp.Body).Decode(&hs)
		}
		return decodeJSON(resp, &hs)
	})
	return hs, err
}

// SubscribeEvents connects to the WebSocket stream and emits core.Event values.
// A non-empty player limits the stream to that player.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context, player string) (<-chan core.Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	target := c.wsURL
	if player != "" {
		target += "?player=" + url.QueryEscape(player)
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, target, c.headers)
	if err != nil {
		return nil, err
	}

	// unblock the reader when ctx ends
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	out := make(chan core.Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var evt core.Event
			if err := conn.ReadJSON(&evt); err != nil {
				return
			}
			select {
			case out <- evt:
			default:
				// drop if consumer is slow
			}
		}
	}()
	return out, nil
}

func (c *Client) playerCall(ctx context.Context, method, player, suffix string, body, out any) error {
	return c.playerCallFunc(ctx, method, player, suffix, body, func(resp *http.Response) error {
		return decodeJSON(resp, out)
	})
}

func (c *Client) playerCallFunc(ctx context.Context, method, player, suffix string, body any, handle func(*http.Response) error) error {
	if strings.TrimSpace(player) == "" {
		return ErrEmptyPlayerID
	}
	return c.call(ctx, method, c.baseURL+"/players/"+url.PathEscape(player)+suffix, body, handle)
}

func (c *Client) call(ctx context.Context, method, target string, body any, handle func(*http.Response) error) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, target, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, target, nil)
	}
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return handle(resp)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
