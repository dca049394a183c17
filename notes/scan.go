package notes

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ExistingVideoIDs scans a vault directory for markdown notes and returns the
// set of youtube_id values found in their frontmatter. Unreadable or
// malformed files are skipped, not fatal: a broken note must not block a
// whole batch run.
func ExistingVideoIDs(dir string) map[string]struct{} {
	ids := make(map[string]struct{})
	log := logrus.StandardLogger()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("dir", dir).Warn("cannot scan vault directory")
		}
		return ids
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.WithError(err).WithField("file", entry.Name()).Warn("cannot read note")
			continue
		}

		if id := frontmatterVideoID(string(data)); id != "" {
			ids[id] = struct{}{}
		}
	}

	log.WithFields(logrus.Fields{"dir": dir, "existing": len(ids)}).Debug("scanned vault for existing notes")
	return ids
}

// frontmatterVideoID extracts youtube_id from a note's frontmatter block, or
// "" when the block is absent or malformed.
func frontmatterVideoID(content string) string {
	if !strings.HasPrefix(content, "---") {
		return ""
	}

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return ""
	}

	var meta struct {
		YoutubeID string `yaml:"youtube_id"`
	}
	if err := yaml.Unmarshal([]byte(parts[1]), &meta); err != nil {
		return ""
	}
	return meta.YoutubeID
}
