package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsmith/skillsmith/pkg/skills"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Weekly Board Update", "weekly-board-update"},
		{"  KPI   drift / audit  ", "kpi-drift-audit"},
		{"already-normal", "already-normal"},
		{"Trailing!!", "trailing"},
	}
	for _, tc := range cases {
		got, err := NormalizeName(tc.raw)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	t.Run("empty after normalization", func(t *testing.T) {
		_, err := NormalizeName("!!!")
		assert.Error(t, err)
	})

	t.Run("too long", func(t *testing.T) {
		_, err := NormalizeName(strings.Repeat("a", 70))
		assert.Error(t, err)
	})
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Weekly Board Update", TitleCase("weekly-board-update"))
	assert.Equal(t, "Kpi Drift Audit", TitleCase("kpi-drift-audit"))
}

const testCatalog = `skill_id,domain_slug,domain_label,skill_name,description,business_requirement,trigger_signal,primary_output,success_metric,capability,priority_tier,automation_level,prompt_seed
S002,engineering,Engineering,Incident Postmortem,Writes postmortems.,Ship postmortems within 48h.,Incident closed,Postmortem doc,48h SLA,writing,P1,assisted,seed-2
S001,engineering,Engineering,Code Review Triage,Triages review queues.,Keep review latency under a day.,Queue grows,Triage report,Latency under 24h,triage,P0,assisted,seed-1
S003,sales,Sales,Pipeline Forecast,Forecasts pipeline.,Weekly forecast for leadership.,Monday morning,Forecast sheet,Forecast accuracy,forecasting,P0,automated,seed-3
`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))
	return path
}

func TestReadSortsBySkillID(t *testing.T) {
	rows, err := Read(writeCatalog(t))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "S001", rows[0].SkillID)
	assert.Equal(t, "Code Review Triage", rows[0].SkillName)
	assert.Equal(t, "S003", rows[2].SkillID)
}

func TestRenderProducesValidSkill(t *testing.T) {
	rows, err := Read(writeCatalog(t))
	require.NoError(t, err)

	name, err := NormalizeName(rows[0].SkillName)
	require.NoError(t, err)
	content, err := Render(rows[0], name)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(content, "---\n"))
	assert.Contains(t, content, "name: code-review-triage")
	assert.Contains(t, content, "# Code Review Triage")
	assert.Contains(t, content, "## Mission")
	assert.Contains(t, content, "Keep review latency under a day.")
	assert.Contains(t, content, "## Guardrails")

	// The generated manifest must pass skill validation.
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, skills.SkillFileName), []byte(content), 0o644))
	result := skills.Validate(dir)
	assert.True(t, result.OK, result.Message)
}

func TestGenerate(t *testing.T) {
	catalogPath := writeCatalog(t)
	targetDir := filepath.Join(t.TempDir(), "skills")

	stats, err := Generate(context.Background(), catalogPath, GenerateOptions{
		Domains:   []string{"engineering", "sales", "finance"},
		PerDomain: 1,
		TargetDir: targetDir,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Requested)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, []string{"finance"}, stats.MissingDomains)

	// PerDomain=1 selects the lowest skill_id per domain.
	assert.FileExists(t, filepath.Join(targetDir, "code-review-triage", "SKILL.md"))
	assert.NoFileExists(t, filepath.Join(targetDir, "incident-postmortem", "SKILL.md"))
	assert.FileExists(t, filepath.Join(targetDir, "pipeline-forecast", "SKILL.md"))
}

func TestGenerateSkipsExistingUnlessForced(t *testing.T) {
	catalogPath := writeCatalog(t)
	targetDir := filepath.Join(t.TempDir(), "skills")

	opts := GenerateOptions{Domains: []string{"sales"}, PerDomain: 1, TargetDir: targetDir}

	_, err := Generate(context.Background(), catalogPath, opts)
	require.NoError(t, err)

	marker := filepath.Join(targetDir, "pipeline-forecast", "SKILL.md")
	require.NoError(t, os.WriteFile(marker, []byte("sentinel"), 0o644))

	stats, err := Generate(context.Background(), catalogPath, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "sentinel", string(data))

	opts.Force = true
	stats, err = Generate(context.Background(), catalogPath, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	data, err = os.ReadFile(marker)
	require.NoError(t, err)
	assert.NotEqual(t, "sentinel", string(data))
}

func TestGenerateRejectsNonPositivePerDomain(t *testing.T) {
	_, err := Generate(context.Background(), writeCatalog(t), GenerateOptions{PerDomain: 0, TargetDir: t.TempDir()})
	assert.Error(t, err)
}
