package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/skillsmith/skillsmith/pkg/logger"
	"github.com/skillsmith/skillsmith/pkg/skills"
)

// GenerateOptions selects which catalog rows are materialized and where.
type GenerateOptions struct {
	Domains   []string // domain slugs to generate; DefaultDomains when empty
	PerDomain int      // number of skills per domain
	TargetDir string   // destination skills directory
	Force     bool     // overwrite existing SKILL.md files
}

// Stats reports what a generation run did.
type Stats struct {
	Requested      int
	Created        int
	Skipped        int
	MissingDomains []string
}

var bodyTemplate = template.Must(template.New("skill").Parse(`# {{.Title}}

## Mission

{{.Row.BusinessRequirement}}

## Trigger Signals

- {{.Row.TriggerSignal}}
- Stakeholder requests proactive ownership for this capability.
- KPI performance indicates execution risk.

## Operating Workflow

1. Confirm objective, owner, constraints, and deadline.
2. Gather required context and dependencies before execution.
3. Execute the workflow with deterministic, auditable steps.
4. Validate output quality against the KPI contract.
5. Return outputs in the exact output contract format.
6. Record optimization opportunities for the next iteration.

## Output Contract

- {{.Row.PrimaryOutput}}
- Concise status summary with owner, due date, and risk flags.
- Next best actions ranked by expected impact.

## KPI Contract

- {{.Row.SuccessMetric}}
- SLA adherence for task completion.
- Percent of deliverables accepted without rework.

## Operating Notes

- Domain: {{.Row.DomainLabel}}
- Capability: {{.Row.Capability}}
- Priority tier: {{.Row.PriorityTier}}
- Automation level target: {{.Row.AutomationLevel}}
- Prompt seed: {{.Row.PromptSeed}}

## Guardrails

- Ask for approval before irreversible actions, spend, or external outreach.
- Fail closed when required context, access, or policy boundaries are missing.
- Keep execution traceable and outputs decision-ready.
`))

// Render produces the full SKILL.md content for a catalog row.
func Render(row Row, skillName string) (string, error) {
	frontmatter, err := yaml.Marshal(skills.Metadata{
		Name: skillName,
		Description: row.Description + " Use when owners need reliable execution for " +
			row.DomainLabel + " priorities and measurable KPI outcomes.",
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode frontmatter")
	}

	var body bytes.Buffer
	data := struct {
		Title string
		Row   Row
	}{Title: TitleCase(skillName), Row: row}
	if err := bodyTemplate.Execute(&body, data); err != nil {
		return "", errors.Wrap(err, "failed to render skill body")
	}

	return "---\n" + string(frontmatter) + "---\n\n" + body.String(), nil
}

// Generate materializes the first PerDomain skills of each selected domain
// from the catalog at catalogPath into TargetDir.
func Generate(ctx context.Context, catalogPath string, opts GenerateOptions) (*Stats, error) {
	log := logger.G(ctx)

	if opts.PerDomain <= 0 {
		return nil, errors.New("per-domain must be > 0")
	}
	domains := opts.Domains
	if len(domains) == 0 {
		domains = DefaultDomains
	}

	rows, err := Read(catalogPath)
	if err != nil {
		return nil, err
	}

	byDomain := make(map[string][]Row)
	for _, row := range rows {
		byDomain[row.DomainSlug] = append(byDomain[row.DomainSlug], row)
	}

	if err := os.MkdirAll(opts.TargetDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create target directory")
	}

	stats := &Stats{Requested: len(domains) * opts.PerDomain}
	for _, domain := range domains {
		domainRows := byDomain[domain]
		if len(domainRows) == 0 {
			stats.MissingDomains = append(stats.MissingDomains, domain)
			continue
		}
		if len(domainRows) > opts.PerDomain {
			domainRows = domainRows[:opts.PerDomain]
		}

		for _, row := range domainRows {
			skillName, err := NormalizeName(row.SkillName)
			if err != nil {
				return nil, errors.Wrapf(err, "catalog entry %s", row.SkillID)
			}

			skillDir := filepath.Join(opts.TargetDir, skillName)
			skillMD := filepath.Join(skillDir, skills.SkillFileName)

			if _, err := os.Stat(skillMD); err == nil && !opts.Force {
				stats.Skipped++
				continue
			}

			content, err := Render(row, skillName)
			if err != nil {
				return nil, err
			}
			if err := os.MkdirAll(skillDir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "failed to create %s", skillDir)
			}
			if err := os.WriteFile(skillMD, []byte(content), 0o644); err != nil {
				return nil, errors.Wrapf(err, "failed to write %s", skillMD)
			}

			log.WithField("skill", skillName).WithField("domain", domain).Debug("generated skill")
			stats.Created++
		}
	}

	if len(stats.MissingDomains) > 0 {
		log.WithField("domains", strings.Join(stats.MissingDomains, ",")).Warn("catalog has no rows for some requested domains")
	}
	return stats, nil
}
