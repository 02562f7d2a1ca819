package skills

import (
	"os"
	"path/filepath"
)

// Discover finds all skills directly under dir, keyed by skill name.
// Directories without a parseable SKILL.md are skipped.
func Discover(dir string) (map[string]*Skill, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	found := make(map[string]*Skill)
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skill, err := Load(entryPath)
		if err != nil {
			continue
		}

		if _, exists := found[skill.Name]; !exists {
			found[skill.Name] = skill
		}
	}

	return found, nil
}
