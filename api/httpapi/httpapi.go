package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	wsadapter "github.com/TheInsomnolent/slayer-boosting/adapters/websocket"
	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/display"
	"github.com/TheInsomnolent/slayer-boosting/engine"
	"github.com/TheInsomnolent/slayer-boosting/realtime"
)

const maxBodyBytes = 1 << 20

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// APIKeys, if non-empty, enables static API key auth via Authorization: Bearer or X-API-Key.
	APIKeys []string
	// RateLimitEnabled toggles rate limiting.
	RateLimitEnabled bool
	// RateLimitRPM is the allowed requests per minute per client key.
	RateLimitRPM int
	// RateLimitBurst defines burst capacity.
	RateLimitBurst int
	// RateLimitCleanup is how often idle client buckets are dropped. Defaults to 5m.
	RateLimitCleanup time.Duration
	// Logger receives request failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// MasterInfo is one catalog entry as served by GET /masters.
type MasterInfo struct {
	ID     core.Master    `json:"id"`
	Name   string         `json:"name"`
	NPCs   []string       `json:"npcs"`
	Points map[string]int `json:"points"`
}

type api struct {
	svc *engine.BoostService
	log *slog.Logger
}

// NewMux builds an http.Handler exposing the boosting REST API and WebSocket stream.
// Routes:
//   - GET    {prefix}/healthz
//   - GET    {prefix}/masters
//   - GET    {prefix}/players
//   - GET    {prefix}/players/{id}
//   - GET    {prefix}/players/{id}/panel
//   - POST   {prefix}/players/{id}/session
//   - DELETE {prefix}/players/{id}/session
//   - POST   {prefix}/players/{id}/counters
//   - GET    {prefix}/players/{id}/settings
//   - PUT    {prefix}/players/{id}/settings
//   - GET    {prefix}/players/{id}/highlight?npc=Duradel
//   - WS     {prefix}/ws?player={id}
func NewMux(svc *engine.BoostService, hub *realtime.Hub, opts Options) http.Handler {
	a := &api{svc: svc, log: opts.Logger}
	if a.log == nil {
		a.log = slog.Default()
	}
	p := func(method, path string) string { return method + " " + withPrefix(opts.PathPrefix, path) }

	mux := http.NewServeMux()
	mux.HandleFunc(p(http.MethodGet, "/healthz"), a.healthCheck)
	mux.HandleFunc(p(http.MethodGet, "/masters"), a.masters)
	mux.HandleFunc(p(http.MethodGet, "/players"), a.players)
	mux.HandleFunc(p(http.MethodGet, "/players/{id}"), a.snapshot)
	mux.HandleFunc(p(http.MethodGet, "/players/{id}/panel"), a.panel)
	mux.HandleFunc(p(http.MethodPost, "/players/{id}/session"), a.startSession)
	mux.HandleFunc(p(http.MethodDelete, "/players/{id}/session"), a.endSession)
	mux.HandleFunc(p(http.MethodPost, "/players/{id}/counters"), a.updateCounters)
	mux.HandleFunc(p(http.MethodGet, "/players/{id}/settings"), a.getSettings)
	mux.HandleFunc(p(http.MethodPut, "/players/{id}/settings"), a.putSettings)
	mux.HandleFunc(p(http.MethodGet, "/players/{id}/highlight"), a.highlight)

	// WebSocket events
	if hub != nil {
		mux.Handle(p(http.MethodGet, "/ws"), wsadapter.Handler(hub))
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found", nil)
	})

	var handler http.Handler = mux
	if opts.RateLimitEnabled && opts.RateLimitRPM > 0 && opts.RateLimitBurst > 0 {
		handler = withRateLimit(handler, opts.RateLimitRPM, opts.RateLimitBurst, opts.RateLimitCleanup)
	}
	if len(opts.APIKeys) > 0 {
		handler = withAPIKeyAuth(handler, opts.APIKeys)
	}
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	return handler
}

// healthCheck verifies storage answers.
func (a *api) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}

	if err := a.svc.Ping(r.Context()); err != nil {
		a.log.Warn("health check failed", "error", err)
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["storage"] = "failed"
		writeJSONStatus(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, status)
}

func (a *api) masters(w http.ResponseWriter, r *http.Request) {
	out := make([]MasterInfo, 0, len(core.AllMasters()))
	for _, m := range core.AllMasters() {
		pts := make(map[string]int)
		for t := core.TierBase; t <= core.Tier1000th; t++ {
			label := t.Label()
			if label == "" {
				label = "base"
			}
			pts[label] = m.Points(t)
		}
		out = append(out, MasterInfo{ID: m, Name: m.DisplayName(), NPCs: m.NPCNames(), Points: pts})
	}
	writeJSON(w, out)
}

func (a *api) players(w http.ResponseWriter, r *http.Request) {
	players, err := a.svc.Players(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, map[string]any{"players": players})
}

func (a *api) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := a.svc.Snapshot(r.Context(), core.PlayerID(r.PathValue("id")))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, snap)
}

// panel answers 204 while there is nothing to draw.
func (a *api) panel(w http.ResponseWriter, r *http.Request) {
	snap, err := a.svc.Snapshot(r.Context(), core.PlayerID(r.PathValue("id")))
	if err != nil {
		a.fail(w, err)
		return
	}
	p := display.Build(snap)
	if p == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, p)
}

func (a *api) startSession(w http.ResponseWriter, r *http.Request) {
	var c core.Counters
	if !decodeBody(w, r, &c) {
		return
	}
	snap, err := a.svc.StartSession(r.Context(), core.PlayerID(r.PathValue("id")), c)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, snap)
}

func (a *api) endSession(w http.ResponseWriter, r *http.Request) {
	snap, err := a.svc.EndSession(r.Context(), core.PlayerID(r.PathValue("id")))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, snap)
}

func (a *api) updateCounters(w http.ResponseWriter, r *http.Request) {
	var c core.Counters
	if !decodeBody(w, r, &c) {
		return
	}
	snap, err := a.svc.UpdateCounters(r.Context(), core.PlayerID(r.PathValue("id")), c)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, snap)
}

func (a *api) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := a.svc.Settings(r.Context(), core.PlayerID(r.PathValue("id")))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, s)
}

func (a *api) putSettings(w http.ResponseWriter, r *http.Request) {
	var s core.Settings
	if !decodeBody(w, r, &s) {
		return
	}
	snap, err := a.svc.UpdateSettings(r.Context(), core.PlayerID(r.PathValue("id")), s)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, snap)
}

func (a *api) highlight(w http.ResponseWriter, r *http.Request) {
	npc := strings.TrimSpace(r.URL.Query().Get("npc"))
	if npc == "" {
		writeError(w, http.StatusBadRequest, "invalid_npc", "npc query parameter is required", nil)
		return
	}
	d, err := a.svc.Highlight(r.Context(), core.PlayerID(r.PathValue("id")), npc)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, d)
}

// fail maps domain errors onto the error envelope.
func (a *api) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyPlayerID):
		writeError(w, http.StatusBadRequest, "invalid_player", err.Error(), nil)
	case errors.Is(err, core.ErrNegativeCounter):
		writeError(w, http.StatusBadRequest, "invalid_counters", err.Error(), nil)
	case errors.Is(err, core.ErrUnknownMaster), errors.Is(err, core.ErrInvalidColor):
		writeError(w, http.StatusBadRequest, "invalid_settings", err.Error(), nil)
	default:
		a.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

// decodeBody reads a JSON body into v. Unknown masters or colours inside the
// body surface as invalid_settings.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		switch {
		case errors.Is(err, core.ErrUnknownMaster), errors.Is(err, core.ErrInvalidColor):
			writeError(w, http.StatusBadRequest, "invalid_settings", err.Error(), nil)
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "invalid_body", "request body is required", nil)
		default:
			writeError(w, http.StatusBadRequest, "invalid_body", err.Error(), nil)
		}
		return false
	}
	return true
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSONStatus(w, status, apiError{Code: code, Message: msg, Details: details})
}
