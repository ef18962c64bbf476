// Package privacy holds the helpers that keep personal data out of logs and
// audit records. Raw identifiers (aadhaar numbers, full IPs) must pass through
// these before leaving the evaluation path.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashSubjectID returns a stable SHA-256 hex digest of a subject identifier.
// Audit records and decision rows store this hash, never the raw value.
func HashSubjectID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// AnonymizeIP reduces an IP address to a coarse prefix suitable for logs.
// IPv4 keeps the first two octets; IPv6 keeps the first two groups.
func AnonymizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	if strings.Contains(ip, ".") {
		parts := strings.Split(ip, ".")
		if len(parts) == 4 {
			return parts[0] + "." + parts[1] + ".x.x"
		}
		return "invalid"
	}
	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) >= 2 {
			return parts[0] + ":" + parts[1] + "::"
		}
	}
	return "invalid"
}
