// Package geosite turns v2fly/domain-list-community data lines into
// blocklist tokens.
package geosite

import (
	"fmt"

	"siteblock/config"
)

// Kind is the type prefix of an upstream line ("domain:", "full:", ...).
type Kind string

const (
	KindDomain  Kind = "domain"
	KindFull    Kind = "full"
	KindKeyword Kind = "keyword"
	KindRegexp  Kind = "regexp"
	KindInclude Kind = "include"
)

// Shape decides how a kind is rendered in the rules dialect.
type Shape int

const (
	// ShapeSuffix renders ||domain^, blocking the domain and its subdomains.
	ShapeSuffix Shape = iota
	// ShapeExact renders |domain^, blocking only the domain itself.
	ShapeExact
)

// Dialect is the output format of the generated list.
type Dialect int

const (
	DialectPlain Dialect = iota // bare domains
	DialectRules                // |domain^ and ||domain^ network rules
)

func (d Dialect) String() string {
	if d == DialectRules {
		return "rules"
	}
	return "plain"
}

// ParseDialect maps a config dialect name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case config.DialectPlain:
		return DialectPlain, nil
	case config.DialectRules:
		return DialectRules, nil
	default:
		return DialectPlain, fmt.Errorf("unknown dialect %q", s)
	}
}

// SkipReason tells why a line produced no token.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipEmpty       SkipReason = "empty"
	SkipComment     SkipReason = "comment"
	SkipInclude     SkipReason = "include"
	SkipRegexp      SkipReason = "regexp"
	SkipAttribute   SkipReason = "attribute"
	SkipUnsupported SkipReason = "unsupported"
	SkipIP          SkipReason = "ip"
	SkipInvalid     SkipReason = "invalid"
)

// SkipReasons lists every reason in a stable order, for reports and metrics.
var SkipReasons = []SkipReason{
	SkipEmpty,
	SkipComment,
	SkipInclude,
	SkipRegexp,
	SkipAttribute,
	SkipUnsupported,
	SkipIP,
	SkipInvalid,
}
