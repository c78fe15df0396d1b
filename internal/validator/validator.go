// Package validator classifies candidate strings as syntactically valid URLs.
//
// Validation is a pure function of the candidate and the policy: no DNS
// lookups, no network access, no shared state. Checks run in a fixed order
// and the first failing check decides the reject reason.
package validator

import (
	"net/netip"
	"strconv"
	"strings"

	"golang.org/x/net/idna"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

const (
	maxHostLength  = 253
	maxLabelLength = 63
	localhost      = "localhost"
)

// defaultPorts maps schemes to the port stripped during normalisation.
var defaultPorts = map[string]int{
	"http":  80,
	"https": 443,
	"ws":    80,
	"wss":   443,
	"ftp":   21,
}

// Ensure Validator implements the interface.
var _ driven.URLValidator = (*Validator)(nil)

// Validator implements driven.URLValidator.
type Validator struct {
	profile *idna.Profile
}

// New creates a new URL validator.
func New() *Validator {
	return &Validator{profile: idna.Lookup}
}

// Validate classifies a candidate under policy.
func (v *Validator) Validate(c domain.Candidate, policy domain.ValidationPolicy) domain.ClassifiedRecord {
	// 1. Trim and reject empty input
	s := strings.TrimSpace(c.Raw)
	if s == "" {
		return domain.Invalid(c, domain.ReasonEmpty)
	}

	// 2. Split scheme from the rest
	sep := strings.Index(s, "://")
	if sep <= 0 || !isScheme(s[:sep]) {
		return domain.Invalid(c, domain.ReasonMissingScheme)
	}
	scheme := strings.ToLower(s[:sep])

	// 3. Scheme must be allowed
	if !policy.AllowsScheme(scheme) {
		return domain.Invalid(c, domain.ReasonDisallowedScheme)
	}

	// 4. Authority must be present
	rest := s[sep+3:]
	end := strings.IndexAny(rest, "/?#")
	if end < 0 {
		end = len(rest)
	}
	authority, remainder := rest[:end], rest[end:]
	userinfo, hostport := splitUserinfo(authority)
	if hostport == "" {
		return domain.Invalid(c, domain.ReasonEmptyAuthority)
	}

	// 5. Host must be well formed
	h, ok := v.parseHostPort(hostport)
	if !ok {
		return domain.Invalid(c, domain.ReasonMalformedHost)
	}
	if h.host == "" {
		return domain.Invalid(c, domain.ReasonEmptyAuthority)
	}

	// 6. Apply host policy
	if h.ip.IsValid() {
		if !policy.AllowIPLiterals {
			return domain.Invalid(c, domain.ReasonIPLiteralDisallowed)
		}
	} else if !strings.Contains(h.host, ".") {
		allowed := policy.AllowInternalDomains
		if h.host == localhost {
			allowed = policy.AllowLocalhost
		}
		if !allowed {
			return domain.Invalid(c, domain.ReasonInternalHostDisallowed)
		}
	}

	// 7. Re-serialise in canonical form
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(scheme)
	b.WriteString("://")
	if userinfo != "" {
		b.WriteString(userinfo)
		b.WriteByte('@')
	}
	b.WriteString(h.literal())
	if h.port >= 0 && h.port != defaultPorts[scheme] {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(h.port))
	}
	b.WriteString(remainder)

	return domain.Valid(c, b.String())
}

// hostPort is a parsed authority host.
type hostPort struct {
	host string
	ip   netip.Addr
	port int // -1 when absent
}

func (h hostPort) literal() string {
	switch {
	case h.ip.IsValid() && h.ip.Is6():
		return "[" + h.ip.String() + "]"
	case h.ip.IsValid():
		return h.ip.String()
	default:
		return h.host
	}
}

func (v *Validator) parseHostPort(hostport string) (hostPort, bool) {
	h := hostPort{port: -1}

	var portStr string
	if strings.HasPrefix(hostport, "[") {
		closing := strings.IndexByte(hostport, ']')
		if closing < 0 {
			return h, false
		}
		after := hostport[closing+1:]
		if after != "" {
			if after[0] != ':' {
				return h, false
			}
			portStr = after[1:]
		}
		addr, err := netip.ParseAddr(hostport[1:closing])
		if err != nil || !addr.Is6() {
			return h, false
		}
		h.ip = addr
		h.host = addr.String()
	} else {
		host := hostport
		if i := strings.LastIndexByte(hostport, ':'); i >= 0 {
			host, portStr = hostport[:i], hostport[i+1:]
		}
		if host == "" {
			return h, true
		}
		if addr, err := netip.ParseAddr(host); err == nil && addr.Is4() {
			h.ip = addr
			h.host = addr.String()
		} else {
			normalized, ok := v.normalizeHost(host)
			if !ok {
				return h, false
			}
			h.host = normalized
		}
	}

	if portStr != "" {
		port, ok := parsePort(portStr)
		if !ok {
			return h, false
		}
		h.port = port
	}
	return h, true
}

// normalizeHost lower-cases a registered name, converting IDNs to ASCII.
func (v *Validator) normalizeHost(host string) (string, bool) {
	if !isASCII(host) {
		ascii, err := v.profile.ToASCII(host)
		if err != nil {
			return "", false
		}
		host = ascii
	}
	host = strings.ToLower(host)
	if !validHostname(host) {
		return "", false
	}
	return host, true
}

// validHostname checks label structure: no empty labels (which rejects
// leading, trailing and doubled dots), bounded lengths, restricted
// characters, and a non-numeric final label.
func validHostname(host string) bool {
	if len(host) > maxHostLength {
		return false
	}
	labels := strings.Split(host, ".")
	for _, label := range labels {
		if label == "" || len(label) > maxLabelLength {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				return false
			}
		}
	}
	if len(labels) > 1 && isDigits(labels[len(labels)-1]) {
		return false
	}
	return true
}

func splitUserinfo(authority string) (userinfo, hostport string) {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		return authority[:i], authority[i+1:]
	}
	return "", authority
}

func parsePort(s string) (int, bool) {
	if !isDigits(s) || len(s) > 5 {
		return 0, false
	}
	port, err := strconv.Atoi(s)
	if err != nil || port > 65535 {
		return 0, false
	}
	return port, true
}

// isScheme checks RFC 3986 scheme syntax: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func isScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return s != ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
