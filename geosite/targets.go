package geosite

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	util "siteblock/internal"
)

// ErrTargetsNotFound is returned when the keyword file does not exist.
var ErrTargetsNotFound = errors.New("target file not found")

// ReadTargets reads the keyword file: one keyword per line, lowercased.
// Blank lines and lines starting with '#' are ignored, duplicates collapse
// to their first occurrence.
func ReadTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTargetsNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	var keywords []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return util.Dedup(keywords), nil
}
