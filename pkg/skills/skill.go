// Package skills models a skill bundle: a directory containing a SKILL.md
// file whose YAML frontmatter describes the skill. It provides frontmatter
// loading and the validation gate that the packager consults before
// producing a distributable archive.
package skills

// Skill represents a loaded skill with its metadata
type Skill struct {
	Name        string // Unique name from frontmatter
	Description string // Brief description of what the skill does
	Directory   string // Full path to the skill directory
	Content     string // Full content of SKILL.md (body, not frontmatter)
}

// Metadata represents the YAML frontmatter in SKILL.md files
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Result is the outcome of validating a skill directory. OK reports whether
// the bundle is admissible; Message carries the human-readable reason.
type Result struct {
	OK      bool
	Message string
}
