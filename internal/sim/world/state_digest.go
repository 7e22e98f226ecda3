package world

import "voxelkeep.ai/internal/persistence/snapshot"

// stateDigest hashes the persistent state. Sessions and queued events are
// excluded, so a replay of the same inputs yields the same digest.
func (w *World) stateDigest(nowTick uint64) string {
	d, err := snapshot.StateDigest(w.exportSnapshot(nowTick))
	if err != nil {
		w.logf("state digest tick=%d: %v", nowTick, err)
		return ""
	}
	return d
}
