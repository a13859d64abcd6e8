package driver

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"sglint/internal/rule"
	"sglint/internal/version"
)

// Digest is a SHA-256 sum.
type Digest = [32]byte

// combineDigest: H(content || part1 || part2 ...). Parts must come in a
// deterministic order.
func combineDigest(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey identifies the lint output of one file content under one
// configuration and one build of the rules. The schema version invalidates
// entries written with an older CachedResult layout.
func cacheKey(content, config, tool Digest) Digest {
	var schema Digest
	binary.BigEndian.PutUint16(schema[:], cacheSchemaVersion)
	return combineDigest(content, config, tool, schema)
}

// toolDigest covers the CLI version and the descriptor of every registered
// rule, in registry order. A rebuilt binary with changed rules or options
// never replays results of another build.
func toolDigest(reg *rule.Registry) Digest {
	var buf bytes.Buffer
	buf.WriteString(version.Version)
	buf.WriteByte(0)
	enc := msgpack.NewEncoder(&buf)
	for _, r := range reg.Rules() {
		if err := enc.Encode(r.Descriptor()); err != nil {
			panic(fmt.Errorf("rule digest: %w", err))
		}
	}
	return sha256.Sum256(buf.Bytes())
}
