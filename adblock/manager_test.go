package adblock

import (
	"os"
	"path/filepath"
	"testing"

	"siteblock/geosite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestSimpleFilterRules(t *testing.T) {
	f := NewSimpleFilter()
	require.NoError(t, f.LoadRules([]string{
		"! Title: test",
		"||tiktok.com^",
		"|www.bilibili.com^",
		"",
	}))
	assert.Equal(t, 2, f.Count())

	tests := []struct {
		domain  string
		blocked bool
		rule    string
	}{
		{"tiktok.com", true, "||tiktok.com^"},
		{"api.tiktok.com.", true, "||tiktok.com^"},
		{"www.bilibili.com", true, "|www.bilibili.com^"},
		{"bilibili.com", false, ""},
		{"a.www.bilibili.com", false, ""},
		{"nottiktok.com", false, ""},
	}
	for _, tt := range tests {
		blocked, rule := f.CheckHost(tt.domain)
		assert.Equal(t, tt.blocked, blocked, tt.domain)
		assert.Equal(t, tt.rule, rule, tt.domain)
	}
}

func TestSimpleFilterPlainList(t *testing.T) {
	f := NewSimpleFilter()
	require.NoError(t, f.LoadRules([]string{"# AdGuard Home Blocklist for: google", "", "google.com"}))

	blocked, rule := f.CheckHost("google.com")
	assert.True(t, blocked)
	assert.Equal(t, "google.com", rule)

	blocked, _ = f.CheckHost("www.google.com")
	assert.False(t, blocked)
}

func TestSimpleFilterReload(t *testing.T) {
	f := NewSimpleFilter()
	require.NoError(t, f.LoadRules([]string{"||a.com^"}))
	require.NoError(t, f.LoadRules([]string{"||b.com^"}))

	blocked, _ := f.CheckHost("a.com")
	assert.False(t, blocked)
	blocked, _ = f.CheckHost("b.com")
	assert.True(t, blocked)
}

func TestURLFilterEngine(t *testing.T) {
	e, err := NewURLFilterEngine()
	require.NoError(t, err)
	assert.Zero(t, e.Count())

	require.NoError(t, e.LoadRules([]string{"! comment", "||example.com^"}))

	blocked, rule := e.CheckHost("example.com")
	assert.True(t, blocked)
	assert.Equal(t, "||example.com^", rule)

	blocked, _ = e.CheckHost("sub.example.com")
	assert.True(t, blocked)

	blocked, _ = e.CheckHost("example.org")
	assert.False(t, blocked)
}

func TestValidateRule(t *testing.T) {
	assert.NoError(t, ValidateRule("||example.com^"))
	assert.NoError(t, ValidateRule("|www.example.com^"))
	assert.Error(t, ValidateRule("||example.com^$unknownmodifier"))
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine("URLFilter")
	require.NoError(t, err)
	assert.IsType(t, &URLFilterEngine{}, e)

	e, err = NewEngine(EngineSimple)
	require.NoError(t, err)
	assert.IsType(t, &SimpleFilter{}, e)

	_, err = NewEngine("nope")
	assert.Error(t, err)

	assert.Equal(t, EngineURLFilter, EngineFor(geosite.DialectRules))
	assert.Equal(t, EngineSimple, EngineFor(geosite.DialectPlain))
}

func TestCheckerPlain(t *testing.T) {
	path := writeList(t, "# AdGuard Home Blocklist for: bilibili\n\nbilibili.com\n")

	c, err := LoadFile(path, geosite.DialectPlain)
	require.NoError(t, err)

	res, err := c.Check("BiliBili.com.")
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, "bilibili.com", res.Domain)
	assert.Equal(t, "bilibili.com", res.Rule)
	assert.Equal(t, EngineSimple, res.Engine)
	assert.Equal(t, 1, res.Rules)
	assert.Equal(t, "bilibili.com: blocked by bilibili.com", res.String())

	res, err = c.Check("www.bilibili.com")
	require.NoError(t, err)
	assert.False(t, res.Blocked)
	assert.Equal(t, "www.bilibili.com: not blocked", res.String())
}

func TestCheckerRules(t *testing.T) {
	path := writeList(t, "! Title: T (x)\n! Count: 1\n||example.com^\n")

	c, err := LoadFile(path, geosite.DialectRules)
	require.NoError(t, err)

	res, err := c.Check("ads.example.com")
	require.NoError(t, err)
	assert.True(t, res.Blocked)
	assert.Equal(t, "||example.com^", res.Rule)
	assert.Equal(t, EngineURLFilter, res.Engine)
}

func TestCheckerErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.txt"), geosite.DialectPlain)
	assert.Error(t, err)

	c, err := LoadFile(writeList(t, "a.com\n"), geosite.DialectPlain)
	require.NoError(t, err)
	_, err = c.Check("bad domain")
	assert.Error(t, err)
}
