package adblock

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"

	"siteblock/geosite"
	"siteblock/logger"
)

var log = logger.For("Check")

// 过滤引擎名称
const (
	EngineSimple    = "simple"
	EngineURLFilter = "urlfilter"
)

// EngineFor returns the engine name that matches a list written in dialect d.
func EngineFor(d geosite.Dialect) string {
	if d == geosite.DialectRules {
		return EngineURLFilter
	}
	return EngineSimple
}

// NewEngine creates an empty filter engine by name.
func NewEngine(name string) (FilterEngine, error) {
	switch strings.ToLower(name) {
	case EngineURLFilter:
		engine, err := NewURLFilterEngine()
		if err != nil {
			return nil, fmt.Errorf("error creating urlfilter engine: %w", err)
		}
		return engine, nil
	case EngineSimple:
		return NewSimpleFilter(), nil
	default:
		return nil, fmt.Errorf("unknown adblock engine: %s", name)
	}
}

// CheckResult is the outcome of checking one domain against a list file.
type CheckResult struct {
	Domain  string
	Blocked bool
	Rule    string
	Engine  string
	Rules   int
}

func (r CheckResult) String() string {
	if r.Blocked {
		return fmt.Sprintf("%s: blocked by %s", r.Domain, r.Rule)
	}
	return fmt.Sprintf("%s: not blocked", r.Domain)
}

// Checker loads a generated list file into an engine.
type Checker struct {
	engine FilterEngine
	name   string
}

// LoadFile reads a list file written in dialect d.
func LoadFile(path string, d geosite.Dialect) (*Checker, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	name := EngineFor(d)
	engine, err := NewEngine(name)
	if err != nil {
		return nil, err
	}
	if err := engine.LoadRules(lines); err != nil {
		return nil, fmt.Errorf("load rules from %s: %w", path, err)
	}

	log.Debugf("loaded %d rules from %s (%s)", engine.Count(), path, name)
	return &Checker{engine: engine, name: name}, nil
}

// Check reports whether domain is blocked by the loaded list.
func (c *Checker) Check(domain string) (CheckResult, error) {
	host, err := canonicalHost(domain)
	if err != nil {
		return CheckResult{}, err
	}

	blocked, rule := c.engine.CheckHost(host)
	return CheckResult{
		Domain:  host,
		Blocked: blocked,
		Rule:    rule,
		Engine:  c.name,
		Rules:   c.engine.Count(),
	}, nil
}

// canonicalHost 规范化待查询域名：punycode、小写、去掉末尾的点
func canonicalHost(domain string) (string, error) {
	host, err := idna.Lookup.ToASCII(strings.TrimSpace(domain))
	if err != nil {
		return "", fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	if _, ok := dns.IsDomainName(host); !ok || host == "" || strings.ContainsAny(host, " \t/") {
		return "", fmt.Errorf("invalid domain %q", domain)
	}
	return strings.TrimSuffix(dns.CanonicalName(host), "."), nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
