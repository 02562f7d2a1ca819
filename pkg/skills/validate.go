package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxNameLength is the maximum allowed length of a skill name.
const MaxNameLength = 64

// MaxDescriptionLength is the maximum allowed length of a skill description.
const MaxDescriptionLength = 1024

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// allowedProperties are the only keys permitted in SKILL.md frontmatter.
var allowedProperties = map[string]bool{
	"name":          true,
	"description":   true,
	"license":       true,
	"allowed-tools": true,
	"metadata":      true,
}

func invalid(format string, args ...interface{}) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

// Validate checks that a skill directory contains a well-formed SKILL.md
// manifest. It is a content gate, not an error source: unreadable or
// malformed bundles yield a not-ok Result with the reason in Message.
func Validate(dir string) Result {
	path := filepath.Join(dir, SkillFileName)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return invalid("SKILL.md not found")
		}
		return invalid("Could not read SKILL.md: %v", err)
	}

	frontmatterText, ok := extractFrontmatterText(string(content))
	if !ok {
		return invalid("Invalid frontmatter format")
	}

	var frontmatter map[string]interface{}
	if err := yaml.Unmarshal([]byte(frontmatterText), &frontmatter); err != nil {
		return invalid("Invalid YAML in frontmatter: %v", err)
	}
	if frontmatter == nil {
		return invalid("Frontmatter must be a YAML dictionary")
	}

	var unexpected []string
	for key := range frontmatter {
		if !allowedProperties[key] {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		allowed := make([]string, 0, len(allowedProperties))
		for key := range allowedProperties {
			allowed = append(allowed, key)
		}
		sort.Strings(allowed)
		return invalid("Unexpected key(s) in SKILL.md frontmatter: %s. Allowed properties are: %s",
			strings.Join(unexpected, ", "), strings.Join(allowed, ", "))
	}

	rawName, ok := frontmatter["name"]
	if !ok {
		return invalid("Missing 'name' in frontmatter")
	}
	if _, ok := frontmatter["description"]; !ok {
		return invalid("Missing 'description' in frontmatter")
	}

	name, ok := rawName.(string)
	if !ok {
		return invalid("Name must be a string, got %T", rawName)
	}
	name = strings.TrimSpace(name)
	if name != "" {
		if !namePattern.MatchString(name) {
			return invalid("Name '%s' should be hyphen-case (lowercase letters, digits, and hyphens only)", name)
		}
		if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") || strings.Contains(name, "--") {
			return invalid("Name '%s' cannot start/end with hyphen or contain consecutive hyphens", name)
		}
		if len(name) > MaxNameLength {
			return invalid("Name is too long (%d characters). Maximum is %d characters.", len(name), MaxNameLength)
		}
	}

	rawDescription := frontmatter["description"]
	description, ok := rawDescription.(string)
	if !ok {
		return invalid("Description must be a string, got %T", rawDescription)
	}
	description = strings.TrimSpace(description)
	if description != "" {
		if strings.ContainsAny(description, "<>") {
			return invalid("Description cannot contain angle brackets (< or >)")
		}
		if len(description) > MaxDescriptionLength {
			return invalid("Description is too long (%d characters). Maximum is %d characters.", len(description), MaxDescriptionLength)
		}
	}

	return Result{OK: true, Message: "Skill is valid!"}
}

// extractFrontmatterText returns the raw YAML between the opening and
// closing --- markers. The opening marker must be the first line.
func extractFrontmatterText(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), true
		}
	}
	return "", false
}
