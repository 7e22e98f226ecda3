package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
)

const Version = 1

var ErrDigestMismatch = errors.New("snapshot digest mismatch")

type Header struct {
	Version int    `json:"version"`
	WorldID string `json:"world_id"`
	Tick    uint64 `json:"tick"`
	NowMs   int64  `json:"now_ms"`
	// Digest is the blake3 hex digest of the gob payload that follows the header line.
	Digest string `json:"digest,omitempty"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	TickRate           int    `json:"tick_rate_hz"`
	SnapshotEveryTicks int    `json:"snapshot_every_ticks,omitempty"`
	TuningDigest       string `json:"tuning_digest,omitempty"`

	Players []PlayerV1   `json:"players"`
	Clans   []ClanV1     `json:"clans"`
	Plots   []PlotV1     `json:"plots"`
	Zones   []ZoneV1     `json:"zones"`
	Warps   []WaypointV1 `json:"warps,omitempty"`
	Sales   []SaleV1     `json:"sales,omitempty"`
	Invites []InviteV1   `json:"invites,omitempty"`

	// Balances mirrors player balances by name for offline rankings.
	Balances map[string]int64 `json:"balances"`
	// Vars holds admin overrides of tuning variables.
	Vars       map[string]int64 `json:"vars,omitempty"`
	GlobalMute bool             `json:"global_mute,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextPlot uint64 `json:"next_plot"`
	NextZone uint64 `json:"next_zone"`
	NextClan uint64 `json:"next_clan"`
	NextSale uint64 `json:"next_sale"`
}

type WaypointV1 struct {
	Name string `json:"name"`
	Pos  [3]int `json:"pos"`
	Dim  string `json:"dim"`
}

type PlayerV1 struct {
	Name              string          `json:"name"`
	Tags              []string        `json:"tags,omitempty"`
	Balance           int64           `json:"balance"`
	Pos               [3]int          `json:"pos"`
	Dim               string          `json:"dim"`
	Inventory         map[string]int  `json:"inventory,omitempty"`
	HUDMode           int             `json:"hud_mode"`
	HUDPausedUntil    int64           `json:"hud_paused_until,omitempty"`
	Waypoints         []WaypointV1    `json:"waypoints,omitempty"`
	EffectToggles     map[string]bool `json:"effect_toggles,omitempty"`
	KitClaimedAt      int64           `json:"kit_claimed_at,omitempty"`
	WarpCooldownUntil int64           `json:"warp_cooldown_until,omitempty"`
	MuteUntil         int64           `json:"mute_until,omitempty"`
	MutedPermanent    bool            `json:"muted_permanent,omitempty"`
	FirstSeen         int64           `json:"first_seen"`
}

type ClanV1 struct {
	ClanID              string   `json:"clan_id"`
	Name                string   `json:"name"`
	Tag                 string   `json:"tag"`
	Color               string   `json:"color"`
	Leader              string   `json:"leader"`
	CreatedAt           int64    `json:"created_at"`
	Members             []string `json:"members"`
	Level               int      `json:"level"`
	XP                  int64    `json:"xp"`
	Treasury            int64    `json:"treasury"`
	Base                [3]int   `json:"base"`
	UnlockedEffects     []string `json:"unlocked_effects,omitempty"`
	EffectRentExpiresAt int64    `json:"effect_rent_expires_at,omitempty"`
}

type PlotV1 struct {
	PlotID        string   `json:"plot_id"`
	Owner         string   `json:"owner"`
	Center        [3]int   `json:"center"`
	Radius        int      `json:"radius"`
	RentExpiresAt int64    `json:"rent_expires_at"`
	Guests        []string `json:"guests,omitempty"`
	CreatedAt     int64    `json:"created_at"`
}

type ZoneV1 struct {
	ZoneID    string          `json:"zone_id"`
	Name      string          `json:"name"`
	Min       [3]int          `json:"min"`
	Max       [3]int          `json:"max"`
	Flags     map[string]bool `json:"flags"`
	CreatedAt int64           `json:"created_at"`
}

type SaleV1 struct {
	SaleID    string `json:"sale_id"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	Item      string `json:"item"`
	Count     int    `json:"count"`
	Price     int64  `json:"price"`
	CreatedAt int64  `json:"created_at"`
}

type InviteV1 struct {
	Invitee   string `json:"invitee"`
	ClanID    string `json:"clan_id"`
	From      string `json:"from"`
	CreatedAt int64  `json:"created_at"`
}

// StateDigest is the blake3 hex digest of the canonical JSON encoding of
// snap without its header. Callers sort record slices first.
func StateDigest(snap SnapshotV1) (string, error) {
	snap.Header = Header{}
	b, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("state digest: %w", err)
	}
	return digestOf(b), nil
}

func encodePayload(snap SnapshotV1) ([]byte, error) {
	snap.Header.Digest = ""
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func digestOf(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	snap.Header.Version = Version
	payload, err := encodePayload(snap)
	if err != nil {
		return err
	}
	snap.Header.Digest = digestOf(payload)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	return nil
}

// ReadHeader returns only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}

	var payload bytes.Buffer
	if _, err := payload.ReadFrom(br); err != nil {
		return snap, fmt.Errorf("read payload: %w", err)
	}
	if h.Digest != "" && digestOf(payload.Bytes()) != h.Digest {
		return snap, ErrDigestMismatch
	}
	if err := gob.NewDecoder(&payload).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	snap.Header.Digest = h.Digest
	return snap, nil
}
