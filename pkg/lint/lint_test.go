package lint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAction(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanFileFlagsBlockScalar(t *testing.T) {
	root := t.TempDir()
	path := writeAction(t, root, "action.yml", `name: demo
runs:
  using: composite
  steps:
    - shell: bash
      run: |
        echo "start"

        echo "${{ inputs.title }}"
        echo "done"
`)

	violations, err := ScanFile(path)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, 9, violations[0].Line)
	assert.Contains(t, violations[0].Text, "inputs.title")
}

func TestScanFileFlagsInlineRun(t *testing.T) {
	root := t.TempDir()
	path := writeAction(t, root, "action.yml", `runs:
  using: composite
  steps:
    - shell: bash
      run: echo "${{ inputs.name }}"
`)

	violations, err := ScanFile(path)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, 5, violations[0].Line)
}

func TestScanFileAllowsEnvIndirection(t *testing.T) {
	root := t.TempDir()
	path := writeAction(t, root, "action.yml", `runs:
  using: composite
  steps:
    - shell: bash
      env:
        TITLE: ${{ inputs.title }}
      run: |
        echo "$TITLE"
`)

	violations, err := ScanFile(path)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestScanFileSkipsNonComposite(t *testing.T) {
	root := t.TempDir()
	path := writeAction(t, root, "action.yml", `runs:
  using: node20
  main: dist/index.js
# run: echo "${{ inputs.anything }}"
`)

	violations, err := ScanFile(path)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestScanFileBlockEndsAtDedent(t *testing.T) {
	root := t.TempDir()
	path := writeAction(t, root, "action.yml", `runs:
  using: composite
  steps:
    - shell: bash
      run: |
        echo "clean"
    - shell: bash
      env:
        SAFE: ${{ inputs.value }}
      run: echo "$SAFE"
`)

	violations, err := ScanFile(path)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestRunScansActionTrees(t *testing.T) {
	root := t.TempDir()
	bad := writeAction(t, root, "setup/action.yml", `runs:
  using: composite
  steps:
    - shell: bash
      run: echo "${{ inputs.version }}"
`)
	writeAction(t, root, "deploy/action.yaml", `runs:
  using: composite
  steps:
    - shell: bash
      run: echo "ok"
`)
	// Not an action file, must be ignored.
	writeAction(t, root, "setup/config.yml", `run: echo "${{ inputs.version }}"`)

	violations, err := Run(root)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, bad, violations[0].File)
}

func TestFormat(t *testing.T) {
	assert.Contains(t, Format(nil), "No direct inputs interpolation")

	out := Format([]Violation{{File: "a/action.yml", Line: 3, Text: `echo "${{ inputs.x }}"`}})
	assert.Contains(t, out, "a/action.yml:3:")
	assert.Contains(t, out, "Use env: and reference shell variables instead.")
}
