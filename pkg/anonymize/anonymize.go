// Package anonymize provides deterministic, memoized redaction of host
// names and IPv4 addresses for display. The durable log always stores
// raw values; only the live view goes through this engine.
package anonymize

import (
	"crypto/sha256"
	"net"
	"strings"

	"github.com/projectdiscovery/gcache"
	"github.com/rs/xid"
	"github.com/wolfeidau/humanhash"
)

const (
	// RedactedOctet replaces every octet outside the preserved prefix.
	RedactedOctet = "XXX"
	// pseudonymSuffix tags every derived host pseudonym.
	pseudonymSuffix = "-LT"

	// The distinct names/IPs seen on one segment are bounded by the
	// operator session length, so the caches never need to evict in
	// practice.
	cacheSize = 8192
)

// privateClasses are the three disjoint private IPv4 address classes.
// Exactly one contains any address treated as private here.
var privateClasses = mustParseClasses(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
)

func mustParseClasses(cidrs ...string) []*net.IPNet {
	classes := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, class, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		classes = append(classes, class)
	}
	return classes
}

// Engine memoizes both transforms for the process lifetime. Pseudonyms
// are salted per run: stable within a session, unlinkable across
// sessions.
type Engine struct {
	salt  []byte
	names gcache.Cache[string, string]
	ips   gcache.Cache[string, string]
}

// New creates an engine with a fresh per-run salt.
func New() *Engine {
	e := &Engine{salt: xid.New().Bytes()}
	e.names = gcache.New[string, string](cacheSize).
		LRU().
		LoaderFunc(e.pseudonym).
		Build()
	e.ips = gcache.New[string, string](cacheSize).
		LRU().
		LoaderFunc(redactIP).
		Build()
	return e
}

// Name returns a stable, pronounceable pseudonym for a host name.
func (e *Engine) Name(name string) string {
	v, err := e.names.Get(name)
	if err != nil {
		// The loader cannot fail for a sha256 digest.
		return name
	}
	return v
}

// IP returns the redacted form of an IPv4 address string.
func (e *Engine) IP(ip string) string {
	v, err := e.ips.Get(ip)
	if err != nil {
		return ip
	}
	return v
}

// pseudonym derives a human-pronounceable word from the salted hash of
// the name and appends the suffix tag.
func (e *Engine) pseudonym(name string) (string, error) {
	sum := sha256.Sum256(append(append([]byte{}, e.salt...), name...))
	word, err := humanhash.Humanize(sum[:], 1)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(word) + pseudonymSuffix, nil
}

// redactIP keeps the octets common to the whole private class containing
// the address (prefix length in whole octets, rounded down) and replaces
// the rest. Public addresses are redacted entirely.
func redactIP(ip string) (string, error) {
	prefixOctets := 0
	if parsed := net.ParseIP(ip); parsed != nil && parsed.To4() != nil {
		for _, class := range privateClasses {
			if class.Contains(parsed) {
				ones, _ := class.Mask.Size()
				prefixOctets = ones / 8
				break
			}
		}
	}

	octets := strings.Split(ip, ".")
	for i := prefixOctets; i < len(octets); i++ {
		octets[i] = RedactedOctet
	}
	return strings.Join(octets, "."), nil
}
