package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"voxelkeep.ai/internal/auth"
	"voxelkeep.ai/internal/persistence/boltstore"
	"voxelkeep.ai/internal/persistence/snapshot"
)

func main() {
	if len(os.Args) >= 2 {
		args := os.Args[2:]
		switch os.Args[1] {
		case "state":
			getCmd("state", "/admin/v1/state", args)
			return
		case "zones":
			getCmd("zones", "/admin/v1/zones", args)
			return
		case "leaderboard":
			getCmd("leaderboard", "/admin/v1/leaderboard", args)
			return
		case "snapshot":
			snapshotCmd(args)
			return
		case "balance":
			balanceCmd(args)
			return
		case "config":
			configCmd(args)
			return
		case "audit":
			auditCmd(args)
			return
		case "token":
			tokenCmd(args)
			return
		case "inspect":
			inspectCmd(args)
			return
		case "backup":
			backupCmd(args)
			return
		}
	}
	listCmd(os.Args[1:])
}

func fail(code int, format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(code)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail(1, "encode: %v", err)
	}
	fmt.Println(string(b))
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "worlds"))
	if err != nil {
		fail(1, "read: %v", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Println(e.Name())
		}
	}
}

// tokenCmd signs a host identity token, e.g. for a bridge or an operator.
func tokenCmd(args []string) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	secret := fs.String("secret", os.Getenv("VK_JWT_SECRET"), "HS256 secret shared with the server")
	player := fs.String("player", "", "player name")
	admin := fs.Bool("admin", false, "grant the admin claim")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	newSecret := fs.Bool("new_secret", false, "print a fresh random secret and exit")
	_ = fs.Parse(args)

	if *newSecret {
		fmt.Println(auth.GenerateSecret())
		return
	}
	signer, err := auth.NewSigner(*secret, *ttl)
	if err != nil {
		fail(2, "%v (set -secret or VK_JWT_SECRET)", err)
	}
	tok, err := signer.Issue(strings.TrimSpace(*player), *admin)
	if err != nil {
		fail(2, "%v", err)
	}
	fmt.Println(tok)
}

// inspectCmd summarizes a snapshot file without a running server.
func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (picks the latest snapshot)")
	snapPath := fs.String("snapshot", "", "snapshot path")
	full := fs.Bool("full", false, "print the whole snapshot as JSON")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*snapPath)
	if path == "" {
		if *worldID == "" {
			fail(2, "missing -snapshot or -world")
		}
		path = latestSnapshot(filepath.Join(*dataDir, "worlds", *worldID))
		if path == "" {
			fail(2, "no snapshot found for world %s", *worldID)
		}
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		fail(1, "read snapshot: %v", err)
	}
	if *full {
		printJSON(snap)
		return
	}
	printJSON(summarize(snap))
}

type snapshotSummary struct {
	WorldID    string           `json:"world_id"`
	Tick       uint64           `json:"tick"`
	Digest     string           `json:"digest"`
	Players    int              `json:"players"`
	Clans      []clanLine       `json:"clans"`
	Plots      int              `json:"plots"`
	Zones      []string         `json:"zones"`
	Warps      []string         `json:"warps,omitempty"`
	Pending    int              `json:"pending_sales"`
	Supply     int64            `json:"money_supply"`
	Richest    []balanceLine    `json:"richest"`
	Vars       map[string]int64 `json:"vars,omitempty"`
	GlobalMute bool             `json:"global_mute"`
}

type clanLine struct {
	Tag      string `json:"tag"`
	Level    int    `json:"level"`
	Members  int    `json:"members"`
	Treasury int64  `json:"treasury"`
}

type balanceLine struct {
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

func summarize(snap snapshot.SnapshotV1) snapshotSummary {
	s := snapshotSummary{
		WorldID:    snap.Header.WorldID,
		Tick:       snap.Header.Tick,
		Digest:     snap.Header.Digest,
		Players:    len(snap.Players),
		Plots:      len(snap.Plots),
		Pending:    len(snap.Sales),
		Vars:       snap.Vars,
		GlobalMute: snap.GlobalMute,
		Clans:      []clanLine{},
		Zones:      []string{},
	}
	for _, c := range snap.Clans {
		s.Clans = append(s.Clans, clanLine{Tag: c.Tag, Level: c.Level, Members: len(c.Members), Treasury: c.Treasury})
		s.Supply += c.Treasury
	}
	sort.Slice(s.Clans, func(i, j int) bool { return s.Clans[i].Level > s.Clans[j].Level })
	for _, z := range snap.Zones {
		s.Zones = append(s.Zones, z.ZoneID+" "+z.Name)
	}
	for _, wp := range snap.Warps {
		s.Warps = append(s.Warps, wp.Name)
	}
	for name, bal := range snap.Balances {
		s.Richest = append(s.Richest, balanceLine{Name: name, Balance: bal})
		s.Supply += bal
	}
	sort.Slice(s.Richest, func(i, j int) bool {
		if s.Richest[i].Balance != s.Richest[j].Balance {
			return s.Richest[i].Balance > s.Richest[j].Balance
		}
		return s.Richest[i].Name < s.Richest[j].Name
	})
	if len(s.Richest) > 10 {
		s.Richest = s.Richest[:10]
	}
	return s
}

// backupCmd copies the bolt store of a stopped world.
func backupCmd(args []string) {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id")
	out := fs.String("out", "", "backup file (default: <world>/backups/world-<unix>.bolt)")
	_ = fs.Parse(args)

	if *worldID == "" {
		fail(2, "missing -world")
	}
	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	dst := strings.TrimSpace(*out)
	if dst == "" {
		dst = filepath.Join(worldDir, "backups", fmt.Sprintf("world-%d.bolt", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		fail(1, "mkdir: %v", err)
	}
	src := filepath.Join(worldDir, "world.bolt")
	if _, err := os.Stat(src); err != nil {
		fail(1, "no store for world %s: %v", *worldID, err)
	}
	store, err := boltstore.Open(src)
	if err != nil {
		fail(1, "open store (is the server still running?): %v", err)
	}
	defer store.Close()
	if err := store.Backup(dst); err != nil {
		fail(1, "%v", err)
	}
	fmt.Println(dst)
}

func latestSnapshot(worldDir string) string {
	dir := filepath.Join(worldDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		tick, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick > bestTick {
			bestTick = tick
			best = filepath.Join(dir, name)
		}
	}
	return best
}
