package adblock

import (
	"strings"

	"github.com/AdguardTeam/urlfilter"
	"github.com/AdguardTeam/urlfilter/filterlist"
	"github.com/AdguardTeam/urlfilter/rules"
)

const listID = 1

// URLFilterEngine matches hosts with AdGuard's own DNS engine, so a rules
// list is checked with the same semantics AdGuard Home applies.
type URLFilterEngine struct {
	engine    *urlfilter.DNSEngine
	ruleCount int
}

func NewURLFilterEngine() (*URLFilterEngine, error) {
	return &URLFilterEngine{}, nil
}

func (e *URLFilterEngine) LoadRules(lines []string) error {
	rulesStr := strings.Join(lines, "\n")

	stringList := filterlist.NewString(&filterlist.StringConfig{
		RulesText:      rulesStr,
		ID:             listID,
		IgnoreCosmetic: true,
	})

	storage, err := filterlist.NewRuleStorage([]filterlist.Interface{stringList})
	if err != nil {
		return err
	}

	e.engine = urlfilter.NewDNSEngine(storage)
	e.ruleCount = countRules(lines)
	return nil
}

// countRules 统计非空、非注释的行数
func countRules(lines []string) int {
	n := 0
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "!") || strings.HasPrefix(l, "#") {
			continue
		}
		n++
	}
	return n
}

func (e *URLFilterEngine) CheckHost(domain string) (bool, string) {
	if e.engine == nil {
		return false, ""
	}

	result, matched := e.engine.Match(strings.TrimSuffix(domain, "."))
	if !matched || result == nil || result.NetworkRule == nil {
		return false, ""
	}

	ruleText := result.NetworkRule.Text()
	// @@ 白名单规则命中时不拦截
	if strings.HasPrefix(ruleText, "@@") {
		return false, ruleText
	}
	return true, ruleText
}

func (e *URLFilterEngine) Count() int {
	if e.engine == nil {
		return 0
	}
	if e.engine.RulesCount > 0 {
		return e.engine.RulesCount
	}
	return e.ruleCount
}

// ValidateRule parses text as an AdGuard network rule and returns the
// parser error, if any.
func ValidateRule(text string) error {
	_, err := rules.NewNetworkRule(text, listID)
	return err
}
