package boltstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// encode gob-encodes v and compresses the result with lz4.
func encode(v any) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	var out bytes.Buffer
	zw := lz4.NewWriter(&out)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		return nil, fmt.Errorf("lz4 write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 close: %w", err)
	}
	return out.Bytes(), nil
}

// decode reverses encode into v. data is only valid inside the bolt
// transaction, so it is fully consumed here.
func decode(data []byte, v any) error {
	raw, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("lz4 read: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}
	return nil
}
