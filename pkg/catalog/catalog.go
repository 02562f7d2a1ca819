// Package catalog generates production-ready skill directories from a
// skill catalog CSV. Each selected catalog row becomes a directory with a
// SKILL.md manifest whose frontmatter passes skill validation.
package catalog

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Row is one catalog entry describing a skill to generate.
type Row struct {
	SkillID             string
	DomainSlug          string
	DomainLabel         string
	SkillName           string
	Description         string
	BusinessRequirement string
	TriggerSignal       string
	PrimaryOutput       string
	SuccessMetric       string
	Capability          string
	PriorityTier        string
	AutomationLevel     string
	PromptSeed          string
}

// DefaultDomains is the domain selection used when none is specified.
var DefaultDomains = []string{
	"executive",
	"product-management",
	"engineering",
	"growth-marketing",
	"sales",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
var multiHyphen = regexp.MustCompile(`-{2,}`)

// NormalizeName converts a raw catalog skill name to a valid hyphen-case
// skill name.
func NormalizeName(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = nonAlnum.ReplaceAllString(value, "-")
	value = strings.Trim(multiHyphen.ReplaceAllString(value, "-"), "-")
	if value == "" {
		return "", errors.New("skill name is empty after normalization")
	}
	if len(value) > 64 {
		return "", errors.Errorf("skill name too long (%d): %s", len(value), value)
	}
	return value, nil
}

// TitleCase renders a hyphen-case skill name as a document title.
func TitleCase(skillName string) string {
	parts := strings.Split(skillName, "-")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Read loads the catalog CSV, sorted by skill_id for deterministic selection.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog header")
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read catalog row")
		}

		rows = append(rows, Row{
			SkillID:             field(record, "skill_id"),
			DomainSlug:          field(record, "domain_slug"),
			DomainLabel:         field(record, "domain_label"),
			SkillName:           field(record, "skill_name"),
			Description:         field(record, "description"),
			BusinessRequirement: field(record, "business_requirement"),
			TriggerSignal:       field(record, "trigger_signal"),
			PrimaryOutput:       field(record, "primary_output"),
			SuccessMetric:       field(record, "success_metric"),
			Capability:          field(record, "capability"),
			PriorityTier:        field(record, "priority_tier"),
			AutomationLevel:     field(record, "automation_level"),
			PromptSeed:          field(record, "prompt_seed"),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SkillID < rows[j].SkillID
	})
	return rows, nil
}
