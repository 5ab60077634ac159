// the ECv2 protocol signs a canonical byte string built from an ordered
// list of UTF-8 strings: each segment is emitted as a 4-byte little-endian
// length prefix followed by the segment bytes, with no separators and no
// terminator. The verifier must reproduce these bytes exactly - a single
// byte of drift and every signature check fails.
package callbacksig

import (
	"encoding/binary"
	"fmt"
	"math"
)

// CanonicalSigningBytes serializes the segments into the exact byte
// sequence that was signed.
//
// The length prefix is always little-endian regardless of the host byte
// order - it is part of the signed bytes and must be identical on every
// platform. An empty segment encodes as four zero bytes.
//
// The only failure mode is a segment whose UTF-8 byte length exceeds the
// 32-bit range.
func CanonicalSigningBytes(segments ...string) ([]byte, error) {
	size := 0
	for i, s := range segments {
		if uint64(len(s)) > math.MaxUint32 {
			return nil, NewEncodingError(fmt.Sprintf("segment %d exceeds the 32-bit length range (%d bytes)", i, len(s)))
		}
		size += 4 + len(s)
	}

	buf := make([]byte, 0, size)
	for _, s := range segments {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
		buf = append(buf, s...)
	}
	return buf, nil
}
