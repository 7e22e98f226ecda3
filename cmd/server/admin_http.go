package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"voxelkeep.ai/internal/auth"
	"voxelkeep.ai/internal/persistence/indexdb"
	"voxelkeep.ai/internal/sim/world"
)

// adminAPI serves /admin/v1/*. Requests run inside the world loop through
// RequestAdmin, so they never race the simulation.
type adminAPI struct {
	world     *world.World
	signer    *auth.Signer
	indexPath string
	log       *log.Logger
	timeout   time.Duration
}

func (a *adminAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("/admin/v1/state", a.guard(a.handleState))
	mux.HandleFunc("/admin/v1/snapshot", a.guard(a.handleSnapshot))
	mux.HandleFunc("/admin/v1/zones", a.guard(a.handleZones))
	mux.HandleFunc("/admin/v1/balance", a.guard(a.handleBalance))
	mux.HandleFunc("/admin/v1/config", a.guard(a.handleConfig))
	mux.HandleFunc("/admin/v1/leaderboard", a.guard(a.handleLeaderboard))
	mux.HandleFunc("/admin/v1/audits", a.guard(a.handleAudits))
}

// guard admits loopback callers, or anyone presenting a token with the
// admin claim when a signer is configured.
func (a *adminAPI) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if isLoopbackRemote(r.RemoteAddr) {
			next(rw, r)
			return
		}
		if a.signer != nil {
			if tok := auth.BearerToken(r.Header.Get("Authorization")); tok != "" {
				if c, err := a.signer.Validate(tok); err == nil && c.Admin {
					next(rw, r)
					return
				}
			}
		}
		if a.log != nil {
			a.log.Printf("admin forbidden: %s %s", r.RemoteAddr, r.URL.Path)
		}
		writeJSON(rw, http.StatusForbidden, map[string]any{"ok": false, "error": "forbidden"})
	}
}

func (a *adminAPI) request(r *http.Request, req world.AdminRequest) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	return a.world.RequestAdmin(ctx, req)
}

func (a *adminAPI) reply(rw http.ResponseWriter, data any, err error) {
	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			code = http.StatusServiceUnavailable
		}
		writeJSON(rw, code, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, data)
}

func (a *adminAPI) handleState(rw http.ResponseWriter, r *http.Request) {
	data, err := a.request(r, world.AdminRequest{Kind: world.AdminState})
	if err == nil {
		data = struct {
			State   any                `json:"state"`
			Metrics world.WorldMetrics `json:"metrics"`
		}{State: data, Metrics: a.world.Metrics()}
	}
	a.reply(rw, data, err)
}

func (a *adminAPI) handleSnapshot(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
	defer cancel()
	tick, err := a.world.RequestSnapshot(ctx)
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "tick": tick, "error": err.Error()})
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"ok": true, "tick": tick})
}

func (a *adminAPI) handleZones(rw http.ResponseWriter, r *http.Request) {
	data, err := a.request(r, world.AdminRequest{Kind: world.AdminZones})
	a.reply(rw, data, err)
}

func (a *adminAPI) handleLeaderboard(rw http.ResponseWriter, r *http.Request) {
	data, err := a.request(r, world.AdminRequest{Kind: world.AdminLeaderboard})
	a.reply(rw, data, err)
}

type balanceBody struct {
	Name   string `json:"name"`
	Op     string `json:"op"`
	Amount int64  `json:"amount"`
}

// GET ?name=X reads; POST {name, op, amount} adjusts.
func (a *adminAPI) handleBalance(rw http.ResponseWriter, r *http.Request) {
	req := world.AdminRequest{Kind: world.AdminBalance}
	switch r.Method {
	case http.MethodGet:
		req.Target = strings.TrimSpace(r.URL.Query().Get("name"))
	case http.MethodPost:
		var body balanceBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(rw, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json: " + err.Error()})
			return
		}
		req.Target = strings.TrimSpace(body.Name)
		req.Op = strings.ToLower(strings.TrimSpace(body.Op))
		req.Amount = body.Amount
		if req.Op == "" {
			writeJSON(rw, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing op"})
			return
		}
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if req.Target == "" {
		writeJSON(rw, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing name"})
		return
	}
	data, err := a.request(r, req)
	a.reply(rw, data, err)
}

type configBody struct {
	Key   string `json:"key"`
	Value *int64 `json:"value,omitempty"`
	Clear bool   `json:"clear,omitempty"`
}

// GET lists variables; POST {key, value} sets and {key, clear:true} removes.
func (a *adminAPI) handleConfig(rw http.ResponseWriter, r *http.Request) {
	req := world.AdminRequest{Kind: world.AdminConfig}
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var body configBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(rw, http.StatusBadRequest, map[string]any{"ok": false, "error": "bad json: " + err.Error()})
			return
		}
		if strings.TrimSpace(body.Key) == "" {
			writeJSON(rw, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing key"})
			return
		}
		req.Key = body.Key
		req.Value = body.Value
		req.Clear = body.Clear
	default:
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	data, err := a.request(r, req)
	a.reply(rw, data, err)
}

// handleAudits reads the sqlite index; it does not touch the world loop.
func (a *adminAPI) handleAudits(rw http.ResponseWriter, r *http.Request) {
	if a.indexPath == "" {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": "index disabled"})
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	from, _ := strconv.ParseUint(q.Get("from_tick"), 10, 64)
	rd, err := indexdb.OpenReader(a.indexPath)
	if err != nil {
		writeJSON(rw, http.StatusServiceUnavailable, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	defer rd.Close()
	rows, err := rd.Audits(r.Context(), indexdb.AuditQuery{
		Actor:    q.Get("actor"),
		Action:   q.Get("action"),
		FromTick: from,
		Limit:    limit,
	})
	if rows == nil {
		rows = []indexdb.AuditRow{}
	}
	a.reply(rw, rows, err)
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
