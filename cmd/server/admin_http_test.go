package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voxelkeep.ai/internal/auth"
	"voxelkeep.ai/internal/sim/tuning"
	"voxelkeep.ai/internal/sim/world"
	"voxelkeep.ai/internal/transport/ws"
)

func newRunningWorld(t *testing.T) *world.World {
	t.Helper()
	tun := tuning.Defaults()
	tun.TickRateHz = 50
	w, err := world.New(world.WorldConfig{ID: "test", Tuning: tun})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Run(ctx) }()
	return w
}

func newAdminMux(t *testing.T, w *world.World, signer *auth.Signer) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	api := &adminAPI{world: w, signer: signer, timeout: 5 * time.Second}
	api.register(mux)
	return mux
}

func call(t *testing.T, h http.Handler, method, path, body, remote, token string) (int, map[string]any) {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	r.RemoteAddr = remote
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

const loopback = "127.0.0.1:5555"

func TestAdminHTTP_GuardLoopbackOrAdminToken(t *testing.T) {
	w := newRunningWorld(t)
	signer, _ := auth.NewSigner("secret", time.Hour)
	mux := newAdminMux(t, w, signer)

	if code, _ := call(t, mux, http.MethodGet, "/admin/v1/state", "", "203.0.113.9:4000", ""); code != http.StatusForbidden {
		t.Fatalf("remote without token: %d", code)
	}
	player, _ := signer.Issue("Steve", false)
	if code, _ := call(t, mux, http.MethodGet, "/admin/v1/state", "", "203.0.113.9:4000", player); code != http.StatusForbidden {
		t.Fatalf("non-admin token: %d", code)
	}
	admin, _ := signer.Issue("Op", true)
	code, out := call(t, mux, http.MethodGet, "/admin/v1/state", "", "203.0.113.9:4000", admin)
	if code != http.StatusOK {
		t.Fatalf("admin token: %d %v", code, out)
	}
	state, _ := out["state"].(map[string]any)
	if state["world_id"] != "test" {
		t.Fatalf("state=%v", out)
	}
	if code, _ := call(t, mux, http.MethodGet, "/admin/v1/zones", "", loopback, ""); code != http.StatusOK {
		t.Fatalf("loopback: %d", code)
	}
}

func TestAdminHTTP_BalanceAndConfig(t *testing.T) {
	w := newRunningWorld(t)
	mux := newAdminMux(t, w, nil)

	resp := make(chan world.JoinResponse, 1)
	w.Join() <- world.JoinRequest{Name: "Steve", Out: make(chan []byte, 16), Resp: resp}
	select {
	case r := <-resp:
		if r.Err != "" {
			t.Fatalf("join: %s", r.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("join not served")
	}

	code, out := call(t, mux, http.MethodPost, "/admin/v1/balance", `{"name":"Steve","op":"add","amount":250}`, loopback, "")
	if code != http.StatusOK || out["balance"] != float64(250) {
		t.Fatalf("add: %d %v", code, out)
	}
	code, out = call(t, mux, http.MethodGet, "/admin/v1/balance?name=Steve", "", loopback, "")
	if code != http.StatusOK || out["balance"] != float64(250) {
		t.Fatalf("get: %d %v", code, out)
	}
	if code, _ = call(t, mux, http.MethodGet, "/admin/v1/balance?name=Nobody", "", loopback, ""); code != http.StatusBadRequest {
		t.Fatalf("unknown player: %d", code)
	}
	if code, _ = call(t, mux, http.MethodPost, "/admin/v1/balance", `{"name":"Steve","op":"steal","amount":1}`, loopback, ""); code != http.StatusBadRequest {
		t.Fatalf("bad op: %d", code)
	}

	code, out = call(t, mux, http.MethodPost, "/admin/v1/config", `{"key":"weekly_rent","value":2100}`, loopback, "")
	if code != http.StatusOK || out["weekly_rent"] != float64(2100) {
		t.Fatalf("set: %d %v", code, out)
	}
	code, out = call(t, mux, http.MethodGet, "/admin/v1/config", "", loopback, "")
	if code != http.StatusOK || out["weekly_rent"] != float64(2100) || out["claim_cost"] != float64(300) {
		t.Fatalf("list: %d %v", code, out)
	}
	if code, _ = call(t, mux, http.MethodPost, "/admin/v1/config", `{"key":"gravity","value":1}`, loopback, ""); code != http.StatusBadRequest {
		t.Fatalf("unknown key: %d", code)
	}
	code, out = call(t, mux, http.MethodPost, "/admin/v1/config", `{"key":"weekly_rent","clear":true}`, loopback, "")
	if code != http.StatusOK || out["weekly_rent"] != float64(1000) {
		t.Fatalf("clear: %d %v", code, out)
	}
}

func TestAdminHTTP_SnapshotNeedsSinkAndPost(t *testing.T) {
	w := newRunningWorld(t)
	mux := newAdminMux(t, w, nil)
	if code, _ := call(t, mux, http.MethodGet, "/admin/v1/snapshot", "", loopback, ""); code != http.StatusMethodNotAllowed {
		t.Fatalf("GET: %d", code)
	}
	if code, out := call(t, mux, http.MethodPost, "/admin/v1/snapshot", "", loopback, ""); code != http.StatusServiceUnavailable || out["ok"] != false {
		t.Fatalf("no sink: %d %v", code, out)
	}
}

func TestAdminHTTP_AuditsWithoutIndex(t *testing.T) {
	w := newRunningWorld(t)
	mux := newAdminMux(t, w, nil)
	if code, _ := call(t, mux, http.MethodGet, "/admin/v1/audits", "", loopback, ""); code != http.StatusServiceUnavailable {
		t.Fatalf("code=%d", code)
	}
}

func TestMetrics_Exposition(t *testing.T) {
	w := newRunningWorld(t)
	m := NewMetrics(w, ws.NewServer(w, nil, nil), nil, time.Now())
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"voxelkeep_world_tick", "voxelkeep_money_supply", "voxelkeep_commits_total", "voxelkeep_ws_connections"} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %s in:\n%s", want, body)
		}
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:80": true,
		"[::1]:80":     true,
		"10.0.0.1:80":  false,
		"not-an-ip":    false,
		"127.0.0.1":    true,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v", in, got)
		}
	}
}
