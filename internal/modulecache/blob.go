package modulecache

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// blobSchemaVersion is a one-byte header ahead of every persisted cache
// entry. Per spec.md §9 Design Note (c), original_source's cache blob has
// no size cap and no versioning tag; we add one so a future incompatible
// on-disk format can be recognized and treated as a miss instead of
// panicking a decoder built for a newer schema.
const blobSchemaVersion = 1

type blobEnvelope struct {
	BytecodeBytes  []byte
	SourcePath     string
	CacheTimestamp int64
}

func encodeCachedModule(module *CachedModule) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(blobSchemaVersion)

	env := blobEnvelope{
		BytecodeBytes:  module.BytecodeBytes,
		SourcePath:     module.SourcePath,
		CacheTimestamp: module.CacheTimestamp,
	}
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeCachedModule(raw []byte) (*CachedModule, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("cache blob is empty")
	}
	version := raw[0]
	if version != blobSchemaVersion {
		return nil, fmt.Errorf("unsupported cache blob schema version %d", version)
	}

	var env blobEnvelope
	if err := gob.NewDecoder(bytes.NewReader(raw[1:])).Decode(&env); err != nil {
		return nil, err
	}
	return &CachedModule{
		BytecodeBytes:  env.BytecodeBytes,
		SourcePath:     env.SourcePath,
		CacheTimestamp: env.CacheTimestamp,
	}, nil
}
