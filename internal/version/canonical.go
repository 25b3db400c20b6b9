// Package version implements the append-only Version Store and the
// field-wise Change Detector (§4.3).
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/daniyal-rahman/ncfd/internal/trial"
)

// Canonicalize produces a stable byte serialization of a raw record by
// recursively sorting object keys, so two semantically identical
// payloads with differently ordered keys hash the same (§4.3 step 1).
func Canonicalize(raw trial.Raw) []byte {
	b, _ := json.Marshal(canonicalValue(raw))
	return b
}

// ContentHash computes the sha256 content hash over the canonical
// serialization (§3, §4.3, §8: idempotent across runs with identical
// input).
func ContentHash(raw trial.Raw) string {
	sum := sha256.Sum256(Canonicalize(raw))
	return hex.EncodeToString(sum[:])
}

// canonicalValue recursively rebuilds string-keyed maps (including
// trial.Raw values) and slices as plain map[string]interface{} and
// []interface{} values. The deterministic key order of the output comes
// from encoding/json, which sorts map[string]interface{} keys on Marshal;
// other map types are passed through unchanged.
func canonicalValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]interface{}, len(val))
		for _, k := range keys {
			out[k] = canonicalValue(val[k])
		}
		return out
	case trial.Raw:
		return canonicalValue(map[string]interface{}(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = canonicalValue(e)
		}
		return out
	default:
		return val
	}
}
