package boltstore

import (
	"context"
	"fmt"
	"os"
	"time"

	bbolt "go.etcd.io/bbolt"

	"voxelkeep.ai/internal/persistence/snapshot"
)

// Store is the durable record store of one world. It implements
// world.Repository: Load once at startup, Commit once per tick.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates the bbolt file and ensures every bucket exists.
// It fails after a short wait when another process holds the file.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if meta.Get(keySchema) == nil {
			return meta.Put(keySchema, u64Key(schemaVersion))
		}
		if v := keyU64(meta.Get(keySchema)); v != schemaVersion {
			return fmt.Errorf("unsupported schema %d", v)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: init %s: %w", path, err)
	}
	return &Store{bolt: db}, nil
}

func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

// HasData reports whether any player has ever been stored.
func (s *Store) HasData() bool {
	has := false
	_ = s.bolt.View(func(tx *bbolt.Tx) error {
		has = tx.Bucket(bucketPlayers).Stats().KeyN > 0
		return nil
	})
	return has
}

// Load reads every record into a snapshot. Record slices come back in key
// order; zones and warps keep their stored order.
func (s *Store) Load(ctx context.Context) (snapshot.SnapshotV1, error) {
	out := snapshot.SnapshotV1{
		Header:   snapshot.Header{Version: snapshot.Version},
		Players:  []snapshot.PlayerV1{},
		Clans:    []snapshot.ClanV1{},
		Plots:    []snapshot.PlotV1{},
		Zones:    []snapshot.ZoneV1{},
		Balances: map[string]int64{},
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		out.Header.Tick = keyU64(meta.Get(keyTick))
		out.Header.NowMs = keyI64(meta.Get(keyNowMs))
		if v := meta.Get(keyCounters); v != nil {
			if err := decode(v, &out.Counters); err != nil {
				return fmt.Errorf("counters: %w", err)
			}
		}
		if v := meta.Get(keyZones); v != nil {
			if err := decode(v, &out.Zones); err != nil {
				return fmt.Errorf("zones: %w", err)
			}
		}
		if v := meta.Get(keyWarps); v != nil {
			if err := decode(v, &out.Warps); err != nil {
				return fmt.Errorf("warps: %w", err)
			}
		}
		out.GlobalMute = keyU64(meta.Get(keyGlobalMute)) == 1

		if err := tx.Bucket(bucketPlayers).ForEach(func(k, v []byte) error {
			var p snapshot.PlayerV1
			if err := decode(v, &p); err != nil {
				return fmt.Errorf("player %q: %w", k, err)
			}
			out.Players = append(out.Players, p)
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketBalances).ForEach(func(k, v []byte) error {
			out.Balances[string(k)] = keyI64(v)
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketClans).ForEach(func(k, v []byte) error {
			var c snapshot.ClanV1
			if err := decode(v, &c); err != nil {
				return fmt.Errorf("clan %q: %w", k, err)
			}
			out.Clans = append(out.Clans, c)
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketPlots).ForEach(func(k, v []byte) error {
			var p snapshot.PlotV1
			if err := decode(v, &p); err != nil {
				return fmt.Errorf("plot %q: %w", k, err)
			}
			out.Plots = append(out.Plots, p)
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketSales).ForEach(func(k, v []byte) error {
			var sale snapshot.SaleV1
			if err := decode(v, &sale); err != nil {
				return fmt.Errorf("sale %q: %w", k, err)
			}
			out.Sales = append(out.Sales, sale)
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketInvites).ForEach(func(k, v []byte) error {
			var inv snapshot.InviteV1
			if err := decode(v, &inv); err != nil {
				return fmt.Errorf("invite %q: %w", k, err)
			}
			out.Invites = append(out.Invites, inv)
			return nil
		}); err != nil {
			return err
		}
		return tx.Bucket(bucketVars).ForEach(func(k, v []byte) error {
			if out.Vars == nil {
				out.Vars = map[string]int64{}
			}
			out.Vars[string(k)] = keyI64(v)
			return nil
		})
	})
	if err != nil {
		return out, fmt.Errorf("boltstore: load: %w", err)
	}
	return out, nil
}

// Commit applies one tick's changeset in a single transaction.
func (s *Store) Commit(ctx context.Context, cs snapshot.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		return applyChangeset(tx, cs)
	})
	if err != nil {
		return fmt.Errorf("boltstore: commit tick %d: %w", cs.Tick, err)
	}
	return nil
}

func applyChangeset(tx *bbolt.Tx, cs snapshot.Changeset) error {
	meta := tx.Bucket(bucketMeta)
	if err := meta.Put(keyTick, u64Key(cs.Tick)); err != nil {
		return err
	}
	if err := meta.Put(keyNowMs, i64Key(cs.NowMs)); err != nil {
		return err
	}

	for _, p := range cs.Players {
		if err := putRecord(tx.Bucket(bucketPlayers), p.Name, p); err != nil {
			return fmt.Errorf("player %q: %w", p.Name, err)
		}
	}
	for name, bal := range cs.Balances {
		if err := tx.Bucket(bucketBalances).Put([]byte(name), i64Key(bal)); err != nil {
			return err
		}
	}
	for _, c := range cs.Clans {
		if err := putRecord(tx.Bucket(bucketClans), c.ClanID, c); err != nil {
			return fmt.Errorf("clan %q: %w", c.ClanID, err)
		}
	}
	for _, p := range cs.Plots {
		if err := putRecord(tx.Bucket(bucketPlots), p.PlotID, p); err != nil {
			return fmt.Errorf("plot %q: %w", p.PlotID, err)
		}
	}
	for _, sale := range cs.Sales {
		if err := putRecord(tx.Bucket(bucketSales), sale.Buyer, sale); err != nil {
			return fmt.Errorf("sale %q: %w", sale.SaleID, err)
		}
	}
	for _, inv := range cs.Invites {
		if err := putRecord(tx.Bucket(bucketInvites), inv.Invitee, inv); err != nil {
			return fmt.Errorf("invite %q: %w", inv.Invitee, err)
		}
	}
	for k, v := range cs.Vars {
		if err := tx.Bucket(bucketVars).Put([]byte(k), i64Key(v)); err != nil {
			return err
		}
	}

	deletes := []struct {
		bucket []byte
		keys   []string
	}{
		{bucketClans, cs.DeletedClans},
		{bucketPlots, cs.DeletedPlots},
		{bucketSales, cs.DeletedSales},
		{bucketInvites, cs.DeletedInvites},
		{bucketVars, cs.DeletedVars},
	}
	for _, d := range deletes {
		b := tx.Bucket(d.bucket)
		for _, k := range d.keys {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
	}

	if cs.Zones != nil {
		if err := putMeta(meta, keyZones, cs.Zones); err != nil {
			return fmt.Errorf("zones: %w", err)
		}
	}
	if cs.Warps != nil {
		if err := putMeta(meta, keyWarps, cs.Warps); err != nil {
			return fmt.Errorf("warps: %w", err)
		}
	}
	if cs.GlobalMute != nil {
		var v uint64
		if *cs.GlobalMute {
			v = 1
		}
		if err := meta.Put(keyGlobalMute, u64Key(v)); err != nil {
			return err
		}
	}
	if cs.Counters != nil {
		if err := putMeta(meta, keyCounters, *cs.Counters); err != nil {
			return fmt.Errorf("counters: %w", err)
		}
	}
	return nil
}

func putRecord(b *bbolt.Bucket, key string, v any) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	data, err := encode(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func putMeta(meta *bbolt.Bucket, key []byte, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	return meta.Put(key, data)
}

// ImportSnapshot replaces every record with the snapshot contents. Used to
// seed an empty store from a snapshot file.
func (s *Store) ImportSnapshot(snap snapshot.SnapshotV1) error {
	cs := snapshot.Changeset{
		Tick:     snap.Header.Tick,
		NowMs:    snap.Header.NowMs,
		Players:  snap.Players,
		Clans:    snap.Clans,
		Plots:    snap.Plots,
		Sales:    snap.Sales,
		Invites:  snap.Invites,
		Zones:    snap.Zones,
		Warps:    snap.Warps,
		Balances: snap.Balances,
		Vars:     snap.Vars,
	}
	if cs.Zones == nil {
		cs.Zones = []snapshot.ZoneV1{}
	}
	if cs.Warps == nil {
		cs.Warps = []snapshot.WaypointV1{}
	}
	mute := snap.GlobalMute
	cs.GlobalMute = &mute
	counters := snap.Counters
	cs.Counters = &counters

	err := s.bolt.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if string(name) == string(bucketMeta) {
				continue
			}
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return applyChangeset(tx, cs)
	})
	if err != nil {
		return fmt.Errorf("boltstore: import snapshot tick %d: %w", snap.Header.Tick, err)
	}
	return nil
}

// Backup writes a consistent copy of the database to path.
func (s *Store) Backup(path string) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("boltstore: create backup %s: %w", path, err)
		}
		defer f.Close()
		if _, err := tx.WriteTo(f); err != nil {
			return fmt.Errorf("boltstore: write backup: %w", err)
		}
		return nil
	})
}
