package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"voxelkeep.ai/internal/persistence/indexdb"
	plog "voxelkeep.ai/internal/persistence/log"
	"voxelkeep.ai/internal/sim/world"
)

// auditCmd queries the audit trail. With -url it asks a running server;
// otherwise it reads the world's sqlite index, or the raw audit logs when
// the index is missing.
func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (offline mode)")
	baseURL := fs.String("url", "", "server base url (online mode)")
	token := fs.String("token", "", "admin bearer token")
	actor := fs.String("actor", "", "filter by actor")
	action := fs.String("action", "", "filter by action, e.g. LAND_CLAIM")
	fromTick := fs.Uint64("from_tick", 0, "only entries at or after this tick")
	limit := fs.Int("limit", 100, "max rows")
	history := fs.String("balance_history", "", "print the balance history of a player instead")
	_ = fs.Parse(args)

	q := indexdb.AuditQuery{Actor: *actor, Action: *action, FromTick: *fromTick, Limit: *limit}

	if strings.TrimSpace(*baseURL) != "" {
		v := url.Values{}
		if q.Actor != "" {
			v.Set("actor", q.Actor)
		}
		if q.Action != "" {
			v.Set("action", q.Action)
		}
		if q.FromTick > 0 {
			v.Set("from_tick", strconv.FormatUint(q.FromTick, 10))
		}
		v.Set("limit", strconv.Itoa(q.Limit))
		emit(newAdminClient(*baseURL, *token, 10*time.Second).do(http.MethodGet, "/admin/v1/audits?"+v.Encode(), nil))
		return
	}

	if *worldID == "" {
		fail(2, "missing -world or -url")
	}
	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rd, err := indexdb.OpenReader(filepath.Join(worldDir, "index", "world.sqlite"))
	if err != nil {
		if *history != "" {
			fail(1, "balance history needs the index: %v", err)
		}
		rows, err := scanAuditLogs(worldDir, q)
		if err != nil {
			fail(1, "%v", err)
		}
		printJSON(rows)
		return
	}
	defer rd.Close()

	if *history != "" {
		pts, err := rd.BalanceHistory(ctx, *history)
		if err != nil {
			fail(1, "%v", err)
		}
		printJSON(pts)
		return
	}
	rows, err := rd.Audits(ctx, q)
	if err != nil {
		fail(1, "%v", err)
	}
	if rows == nil {
		rows = []indexdb.AuditRow{}
	}
	printJSON(rows)
}

// scanAuditLogs walks the hourly audit files newest first.
func scanAuditLogs(worldDir string, q indexdb.AuditQuery) ([]world.AuditEntry, error) {
	files, err := plog.LogFiles(worldDir, "audit")
	if err != nil {
		return nil, err
	}
	if q.Limit <= 0 {
		q.Limit = 100
	}
	out := []world.AuditEntry{}
	for i := len(files) - 1; i >= 0 && len(out) < q.Limit; i-- {
		var batch []world.AuditEntry
		err := plog.ReadJSONL(files[i], func(raw json.RawMessage) error {
			var e world.AuditEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			if matchAudit(e, q) {
				batch = append(batch, e)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", files[i], err)
		}
		for j := len(batch) - 1; j >= 0 && len(out) < q.Limit; j-- {
			out = append(out, batch[j])
		}
	}
	return out, nil
}

func matchAudit(e world.AuditEntry, q indexdb.AuditQuery) bool {
	if q.Actor != "" && e.Actor != q.Actor {
		return false
	}
	if q.Action != "" && e.Action != q.Action {
		return false
	}
	return e.Tick >= q.FromTick
}
