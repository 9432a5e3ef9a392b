package geosite

import (
	"fmt"
	"strings"

	"siteblock/config"
	util "siteblock/internal"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// Policy configures which upstream kinds are accepted and how they render.
type Policy struct {
	Kinds           map[Kind]Shape
	PlainKind       Kind
	Dialect         Dialect
	ValidateDomains bool
}

// PolicyFromConfig builds a Policy out of the validated config.
func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	p := Policy{
		Kinds:           make(map[Kind]Shape, len(cfg.Kinds)),
		PlainKind:       Kind(cfg.PlainKind),
		ValidateDomains: cfg.ValidateDomains,
	}

	d, err := ParseDialect(cfg.Dialect)
	if err != nil {
		return Policy{}, err
	}
	p.Dialect = d

	for kind, shape := range cfg.Kinds {
		switch Kind(kind) {
		case KindInclude, KindRegexp:
			return Policy{}, fmt.Errorf("kind %q is never supported", kind)
		}
		switch shape {
		case config.ShapeSuffix:
			p.Kinds[Kind(kind)] = ShapeSuffix
		case config.ShapeExact:
			p.Kinds[Kind(kind)] = ShapeExact
		default:
			return Policy{}, fmt.Errorf("kind %q: unknown shape %q", kind, shape)
		}
	}

	return p, nil
}

// DefaultPolicy accepts domain: (and prefix-less) lines as suffix rules and
// full: lines as exact rules.
func DefaultPolicy(d Dialect) Policy {
	return Policy{
		Kinds: map[Kind]Shape{
			KindDomain: ShapeSuffix,
			KindFull:   ShapeExact,
		},
		PlainKind: KindDomain,
		Dialect:   d,
	}
}

// Normalizer converts raw upstream lines into tokens. It never follows
// include: directives and never returns an error: a line it cannot use is
// skipped with a reason.
type Normalizer struct {
	policy Policy
}

func NewNormalizer(p Policy) *Normalizer {
	return &Normalizer{policy: p}
}

// Result is the outcome of normalizing one upstream fragment.
type Result struct {
	Tokens  []string
	Skipped map[SkipReason]int
	Lines   int
}

// NormalizeLines runs Normalize over every line of a fragment.
func (n *Normalizer) NormalizeLines(lines []string) Result {
	res := Result{Skipped: make(map[SkipReason]int)}
	for _, line := range lines {
		res.Lines++
		token, reason := n.Normalize(line)
		if reason != SkipNone {
			res.Skipped[reason]++
			continue
		}
		res.Tokens = append(res.Tokens, token)
	}
	return res
}

// Normalize returns the token for one raw line, or the reason it was dropped.
func (n *Normalizer) Normalize(raw string) (string, SkipReason) {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '#'); i >= 0 {
		if i == 0 {
			return "", SkipComment
		}
		line = strings.TrimSpace(line[:i])
	}

	switch {
	case line == "":
		return "", SkipEmpty
	case strings.HasPrefix(line, string(KindInclude)+":"):
		return "", SkipInclude
	case strings.HasPrefix(line, string(KindRegexp)+":"):
		return "", SkipRegexp
	case strings.HasPrefix(line, "@"):
		return "", SkipAttribute
	}

	kind, value := n.policy.PlainKind, line
	if prefix, rest, ok := strings.Cut(line, ":"); ok {
		// 只取第一个与第二个冒号之间的部分："full:a.com:b" -> a.com
		value, _, _ = strings.Cut(rest, ":")
		kind = Kind(prefix)
	}
	shape, ok := n.policy.Kinds[kind]
	if !ok {
		return "", SkipUnsupported
	}

	// Attributes follow the domain: "example.com @ads @!cn".
	if at := strings.IndexByte(value, '@'); at >= 0 {
		value = value[:at]
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", SkipInvalid
	}

	host, err := normalizeHost(value)
	if err != nil {
		return "", SkipInvalid
	}
	// 在去掉末尾的点之后检查，"1.2.3.4." 同样是 IP 字面量
	if util.IsDottedQuad(host) {
		return "", SkipIP
	}
	if n.policy.ValidateDomains && !validHostname(host) {
		return "", SkipInvalid
	}

	return n.render(host, shape), SkipNone
}

func (n *Normalizer) render(host string, shape Shape) string {
	if n.policy.Dialect == DialectPlain {
		return host
	}
	if shape == ShapeExact {
		return "|" + host + "^"
	}
	return "||" + host + "^"
}

// normalizeHost lowercases the name and converts IDN labels to punycode.
func normalizeHost(value string) (string, error) {
	host := util.NormalizeDomain(value)
	if host == "" {
		return "", fmt.Errorf("empty host")
	}
	if util.IsASCII(host) {
		return host, nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return strings.ToLower(ascii), nil
}

func validHostname(host string) bool {
	if _, ok := dns.IsDomainName(host); !ok {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				return false
			}
		}
	}
	return true
}
