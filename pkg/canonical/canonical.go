package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// HashPrefix is prepended to every hex digest produced by this package.
const HashPrefix = "sha256:"

// Marshal serializes v to RFC 8785 canonical JSON: sorted object keys, no
// insignificant whitespace, UTF-8. Two structurally equal values always
// produce identical bytes regardless of map iteration order or the key order
// of the original document.
func Marshal(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical: marshal: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonical: transform: %w", err)
	}
	return out, nil
}

// HashBytes computes the SHA-256 digest of data and returns it as a
// "sha256:<hex>" string.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return HashPrefix + hex.EncodeToString(sum[:])
}

// HashJSON canonicalizes v and hashes the canonical bytes.
func HashJSON(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}
