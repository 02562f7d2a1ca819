// Package lint scans composite GitHub action definitions for direct
// ${{ inputs.* }} interpolation inside run blocks, which allows shell
// injection through action inputs. Inputs must be passed through env:
// and referenced as shell variables instead.
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
)

// DefaultRoot is the directory scanned when no root is given.
const DefaultRoot = ".github/actions"

// Violation is one disallowed interpolation found in a run block.
type Violation struct {
	File string
	Line int
	Text string
}

var (
	inputInterpolation = regexp.MustCompile(`\$\{\{\s*inputs\.`)
	runLine            = regexp.MustCompile(`^(\s*)run:\s*(.*)$`)
	usingComposite     = regexp.MustCompile(`(?m)^\s*using:\s*composite\s*$`)
)

// ScanFile returns the violations in one action definition. Files that do
// not declare a composite action are skipped entirely.
func ScanFile(path string) ([]Violation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if !usingComposite.MatchString(text) {
		return nil, nil
	}

	var violations []Violation
	lines := strings.Split(text, "\n")

	for index := 0; index < len(lines); {
		line := lines[index]
		match := runLine.FindStringSubmatch(line)
		if match == nil {
			index++
			continue
		}

		runIndent := len(match[1])
		runValue := strings.TrimSpace(match[2])

		// Inline scalar: the whole script is on the run: line itself.
		if runValue != "" && runValue[0] != '|' && runValue[0] != '>' {
			if inputInterpolation.MatchString(runValue) {
				violations = append(violations, Violation{File: path, Line: index + 1, Text: strings.TrimSpace(line)})
			}
			index++
			continue
		}

		// Block scalar: scan lines indented deeper than run: until the
		// block ends. Blank lines do not terminate the block.
		index++
		for index < len(lines) {
			scriptLine := lines[index]
			if strings.TrimSpace(scriptLine) == "" {
				index++
				continue
			}
			if indentation(scriptLine) <= runIndent {
				break
			}
			if inputInterpolation.MatchString(scriptLine) {
				violations = append(violations, Violation{File: path, Line: index + 1, Text: strings.TrimSpace(scriptLine)})
			}
			index++
		}
	}

	return violations, nil
}

func indentation(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

// Run scans every action.yml/action.yaml under root. Unreadable files are
// collected into a single aggregated error; violations found in readable
// files are still returned.
func Run(root string) ([]Violation, error) {
	pattern := filepath.Join(root, "**", "action.{yml,yaml}")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var violations []Violation
	var errs *multierror.Error
	for _, path := range matches {
		found, err := ScanFile(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		violations = append(violations, found...)
	}

	return violations, errs.ErrorOrNil()
}

// Format renders the lint result the way CI expects it.
func Format(violations []Violation) string {
	if len(violations) == 0 {
		return "No direct inputs interpolation found in composite run blocks.\n"
	}

	var b strings.Builder
	b.WriteString("Disallowed direct inputs interpolation in composite run blocks:\n")
	for _, v := range violations {
		fmt.Fprintf(&b, "- %s:%d: %s\n", v.File, v.Line, v.Text)
	}
	b.WriteString("Use env: and reference shell variables instead.\n")
	return b.String()
}
