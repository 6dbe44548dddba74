package shared

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadPlaceIDs reads one place id per line. Blank lines and lines starting
// with # are skipped; duplicates keep their first position.
func ReadPlaceIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open place ids: %w", err)
	}
	defer f.Close()
	return parsePlaceIDs(f)
}

func parsePlaceIDs(r io.Reader) ([]string, error) {
	var ids []string
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan place ids: %w", err)
	}
	return ids, nil
}
