package swappool

import (
	"hash/crc32"
	"hash/fnv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// HasherKind selects the hash function used to derive an entity's 64-bit
// uuid from its backing file path. The default and XXH3 options hash the
// path deterministically, so the same path always yields the same uuid
// (required for spawn-from-file adoption); the salted option trades that
// determinism for collision-resistance across repeated by-value spawns.
type HasherKind int

const (
	// HasherDefault uses the standard library's 64-bit FNV-1a: a fast,
	// unseeded, non-cryptographic hash, so the same path yields the same
	// uuid in every process.
	HasherDefault HasherKind = iota
	// HasherCRC32 uses the standard library's CRC32 (IEEE polynomial).
	HasherCRC32
	// HasherXXH3 uses github.com/cespare/xxhash, the fastest option for
	// large inputs — the intended use per spec.md §6.
	HasherXXH3
)

// uuidConfig bundles the hash backend and whether a random salt is mixed
// into path-derived ids, per spec.md §6's build-time feature flags
// (exposed here as Pool/Handle construction options instead — see
// DESIGN.md's Open Question resolution).
type uuidConfig struct {
	hasher HasherKind
	salted bool
}

// deriveUUID computes a stable 64-bit identity from path, per cfg.
func deriveUUID(path []byte, cfg uuidConfig) uint64 {
	if cfg.salted {
		salt := uuid.New()
		return hashBytes(append(append([]byte{}, path...), salt[:]...), cfg.hasher)
	}
	return hashBytes(path, cfg.hasher)
}

// hashBytes is the pure hash-selection function: same bytes in, same
// uint64 out, for a given HasherKind.
func hashBytes(data []byte, kind HasherKind) uint64 {
	switch kind {
	case HasherCRC32:
		return uint64(crc32.ChecksumIEEE(data))
	case HasherXXH3:
		return xxhash.Sum64(data)
	default:
		h := fnv.New64a()
		_, _ = h.Write(data)
		return h.Sum64()
	}
}

// spawnUUID derives the uuid used for Pool.Spawn's generated filename. It
// mixes the serialized value's bytes with the current timestamp so that
// repeated by-value spawns of equal values never collide on the same
// file, matching original_source/src/pool.rs's spawn() behavior.
func spawnUUID(serialized []byte, cfg uuidConfig) uint64 {
	stamped := make([]byte, 0, len(serialized)+8)
	stamped = append(stamped, serialized...)
	var tsBuf [8]byte
	ts := uint64(time.Now().UnixNano())
	for i := range tsBuf {
		tsBuf[i] = byte(ts >> (8 * i))
	}
	stamped = append(stamped, tsBuf[:]...)

	return deriveUUID(stamped, cfg)
}
