package boltstore

import "encoding/binary"

var (
	bucketMeta     = []byte("meta")
	bucketPlayers  = []byte("players")
	bucketBalances = []byte("balances")
	bucketClans    = []byte("clans")
	bucketPlots    = []byte("plots")
	bucketSales    = []byte("sales") // keyed by buyer
	bucketInvites  = []byte("invites")
	bucketVars     = []byte("vars")

	allBuckets = [][]byte{bucketMeta, bucketPlayers, bucketBalances, bucketClans, bucketPlots, bucketSales, bucketInvites, bucketVars}
)

var (
	keySchema     = []byte("schema")
	keyTick       = []byte("tick")
	keyNowMs      = []byte("now_ms")
	keyCounters   = []byte("counters")
	keyZones      = []byte("zones")
	keyWarps      = []byte("warps")
	keyGlobalMute = []byte("global_mute")
)

const schemaVersion = 1

func u64Key(n uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, n)
	return buf
}

func keyU64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func i64Key(n int64) []byte { return u64Key(uint64(n)) }
func keyI64(b []byte) int64 { return int64(keyU64(b)) }
