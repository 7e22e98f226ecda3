package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"voxelkeep.ai/internal/persistence/indexdb"
)

func indexPath(worldDir string) string {
	return filepath.Join(worldDir, "index", "world.sqlite")
}

// openRuntimeIndex opens the sqlite read model unless disabled by flag or
// VK_INDEX_BACKEND. A nil index is valid and disables indexing.
func openRuntimeIndex(worldDir string, disableDB bool) (*indexdb.SQLiteIndex, error) {
	if disableDB {
		return nil, nil
	}
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("VK_INDEX_BACKEND")))
	switch backend {
	case "", "sqlite":
		return indexdb.OpenSQLite(indexPath(worldDir))
	case "none", "off", "disabled":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported VK_INDEX_BACKEND: %s", backend)
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
