package blocklist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"siteblock/geosite"
	"siteblock/logger"
)

var log = logger.For("Write")

const (
	plainTimeLayout = "2006-01-02 15:04:05 UTC"
	sourceName      = "v2fly/domain-list-community"
)

// Header describes the comment block written above the tokens.
type Header struct {
	Keywords  []string
	Title     string
	Generated time.Time
}

// Writer renders a token list in one dialect. Validate, when set, is called
// for every token; tokens it rejects are dropped.
type Writer struct {
	Dialect  geosite.Dialect
	Validate func(token string) error
}

func NewWriter(d geosite.Dialect) *Writer {
	return &Writer{Dialect: d}
}

// Render returns the file content for the sorted tokens and the tokens that
// were dropped by Validate.
func (w *Writer) Render(h Header, tokens []string) ([]byte, []string) {
	kept, dropped := w.filter(tokens)

	var buf bytes.Buffer
	switch w.Dialect {
	case geosite.DialectRules:
		writeRulesHeader(&buf, h, len(kept))
	default:
		writePlainHeader(&buf, h)
	}
	for _, t := range kept {
		buf.WriteString(t)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), dropped
}

func (w *Writer) filter(tokens []string) (kept, dropped []string) {
	if w.Validate == nil {
		return tokens, nil
	}
	kept = make([]string, 0, len(tokens))
	for _, t := range tokens {
		if err := w.Validate(t); err != nil {
			log.Warnf("dropping rule %q: %v", t, err)
			dropped = append(dropped, t)
			continue
		}
		kept = append(kept, t)
	}
	return kept, dropped
}

func writePlainHeader(buf *bytes.Buffer, h Header) {
	fmt.Fprintf(buf, "# AdGuard Home Blocklist for: %s\n", strings.Join(h.Keywords, ", "))
	fmt.Fprintf(buf, "# Source: %s (Strict Keyword Matching)\n", sourceName)
	fmt.Fprintf(buf, "# Last Updated: %s\n", h.Generated.UTC().Format(plainTimeLayout))
	buf.WriteByte('\n')
}

func writeRulesHeader(buf *bytes.Buffer, h Header, count int) {
	fmt.Fprintf(buf, "! Title: %s (%s)\n", h.Title, strings.Join(h.Keywords, ", "))
	fmt.Fprintf(buf, "! Description: Generated from %s, include: directives not followed\n", sourceName)
	fmt.Fprintf(buf, "! Count: %d\n", count)
	fmt.Fprintf(buf, "! Last modified: %s\n", h.Generated.UTC().Format(time.UnixDate))
}

// WriteFile renders the set and atomically replaces path with the result.
// It returns the number of tokens written.
func (w *Writer) WriteFile(path string, h Header, set *Set) (int, error) {
	tokens := set.Sorted()
	data, dropped := w.Render(h, tokens)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create output dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return 0, fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename %s: %w", tmp, err)
	}
	return len(tokens) - len(dropped), nil
}
