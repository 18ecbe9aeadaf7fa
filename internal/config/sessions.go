package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SessionExt — расширение файлов сессий.
const SessionExt = ".session"

// DiscoverSessions возвращает имена сессий (*.session без расширения)
// из dir в лексикографическом порядке.
func DiscoverSessions(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}

	var sessions []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != SessionExt {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(e.Name(), SessionExt))
	}
	sort.Strings(sessions)

	return sessions, nil
}
