package blocklist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"siteblock/geosite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)

func TestSet(t *testing.T) {
	s := NewSet()
	assert.True(t, s.Add("b.com"))
	assert.False(t, s.Add("b.com"))
	assert.Equal(t, 2, s.AddAll([]string{"a.com", "b.com", "c.com", "a.com"}))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, s.Sorted())
}

func TestSetConcurrentAdd(t *testing.T) {
	s := NewSet()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddAll([]string{"x.com", "y.com", "z.com"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, s.Len())
}

func TestRenderPlain(t *testing.T) {
	w := NewWriter(geosite.DialectPlain)
	data, dropped := w.Render(Header{
		Keywords:  []string{"google", "bilibili"},
		Generated: fixedTime,
	}, []string{"bilibili.com", "google.com"})

	assert.Empty(t, dropped)
	assert.Equal(t, `# AdGuard Home Blocklist for: google, bilibili
# Source: v2fly/domain-list-community (Strict Keyword Matching)
# Last Updated: 2024-03-05 07:08:09 UTC

bilibili.com
google.com
`, string(data))
}

func TestRenderRules(t *testing.T) {
	w := NewWriter(geosite.DialectRules)
	data, _ := w.Render(Header{
		Keywords:  []string{"tiktok"},
		Title:     "AdGuard Home Blocklist",
		Generated: fixedTime.In(time.FixedZone("CST", 8*3600)),
	}, []string{"|www.tiktok.com^", "||tiktok.com^"})

	assert.Equal(t, `! Title: AdGuard Home Blocklist (tiktok)
! Description: Generated from v2fly/domain-list-community, include: directives not followed
! Count: 2
! Last modified: Tue Mar  5 07:08:09 UTC 2024
|www.tiktok.com^
||tiktok.com^
`, string(data))
}

func TestRenderValidateDrops(t *testing.T) {
	w := NewWriter(geosite.DialectRules)
	w.Validate = func(token string) error {
		if strings.Contains(token, "bad") {
			return errors.New("rejected")
		}
		return nil
	}

	data, dropped := w.Render(Header{Generated: fixedTime}, []string{"||bad^", "||good.com^"})
	assert.Equal(t, []string{"||bad^"}, dropped)
	assert.Contains(t, string(data), "! Count: 1\n")
	assert.NotContains(t, string(data), "||bad^")
}

func TestWriteFileEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "list.txt")
	n, err := NewWriter(geosite.DialectPlain).WriteFile(path, Header{Keywords: []string{"x"}, Generated: fixedTime}, NewSet())
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "UTC\n\n"))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

// 同一输入两次写出的文件应完全一致
func TestWriteFileReproducible(t *testing.T) {
	dir := t.TempDir()
	h := Header{Keywords: []string{"a", "b"}, Title: "T", Generated: fixedTime}

	write := func(name string, tokens []string) []byte {
		s := NewSet()
		s.AddAll(tokens)
		path := filepath.Join(dir, name)
		_, err := NewWriter(geosite.DialectRules).WriteFile(path, h, s)
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return data
	}

	first := write("one.txt", []string{"||b.com^", "|a.com^", "||c.com^"})
	second := write("two.txt", []string{"||c.com^", "||b.com^", "|a.com^", "||b.com^"})
	assert.Equal(t, first, second)
}
