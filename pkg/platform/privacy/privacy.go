// Package privacy keeps personal identifiers (emails, IPs) out of logs and audit
// sinks while still letting operators correlate events for the same subject.
package privacy

import (
	"encoding/hex"
	"net/netip"

	"golang.org/x/crypto/blake2b"
)

// AnonymizeIP keeps only the network part of an address: /24 for IPv4 and
// /48 for IPv6. Empty input yields "unknown" and unparseable input "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap().WithZone("")
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	return netip.PrefixFrom(addr, bits).Masked().Addr().String()
}

var fingerprintKey []byte

// SetFingerprintKey keys identity fingerprints so they cannot be matched by
// hashing a list of known emails. Call once at startup, before serving.
// Keys longer than 64 bytes are compressed; nil restores unkeyed fingerprints.
func SetFingerprintKey(key []byte) {
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	fingerprintKey = append([]byte(nil), key...)
}

// FingerprintIdentity returns a stable pseudonym for a normalized identity.
// The identity itself cannot be read back from it.
func FingerprintIdentity(identity string) string {
	if identity == "" {
		return "unknown"
	}
	h, err := blake2b.New256(fingerprintKey)
	if err != nil {
		// unreachable: SetFingerprintKey bounds the key length
		return "unknown"
	}
	_, _ = h.Write([]byte(identity))
	return "id_" + hex.EncodeToString(h.Sum(nil)[:8])
}
