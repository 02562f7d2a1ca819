// Package packager turns a validated skill directory into a single
// distributable .skill archive (a zip container). It defends against
// directory-escape attacks and against including stale output of its own
// prior runs:
//
//   - symlinks are never followed and never included, so a link can neither
//     pull outside content into the archive nor cause a traversal cycle
//   - every real file and directory must resolve inside the bundle root;
//     a single escape rejects the whole operation
//   - when the archive is written into the bundle itself, the archive's own
//     filename is excluded from its contents
package packager

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/skillsmith/skillsmith/pkg/logger"
	"github.com/skillsmith/skillsmith/pkg/skills"
)

// ArchiveExt is the file extension of produced skill archives.
const ArchiveExt = ".skill"

var (
	// ErrAdmissionRejected indicates the bundle failed the validation gate.
	// The bundle content is invalid; the filesystem was not touched.
	ErrAdmissionRejected = errors.New("bundle rejected by validator")

	// ErrContainmentViolation indicates a non-symlink entry resolved outside
	// the bundle root. The whole operation is aborted; no archive is written.
	ErrContainmentViolation = errors.New("entry resolved outside bundle root")
)

// IsRejected reports whether err is a policy rejection (invalid or unsafe
// bundle) rather than an environment I/O failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrAdmissionRejected) || errors.Is(err, ErrContainmentViolation)
}

// ValidatorFunc is the admission gate consulted before any traversal.
type ValidatorFunc func(dir string) skills.Result

// Packager packages skill directories into archives.
type Packager struct {
	validate ValidatorFunc
}

// Option is a function that configures a Packager
type Option func(*Packager)

// WithValidator overrides the admission gate. The default is skills.Validate.
func WithValidator(fn ValidatorFunc) Option {
	return func(p *Packager) {
		p.validate = fn
	}
}

// New creates a new Packager
func New(opts ...Option) *Packager {
	p := &Packager{
		validate: skills.Validate,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// entry is one regular file that survived classification.
type entry struct {
	rel string // bundle-relative path, host separators
	abs string // absolute path on disk
}

// Package archives bundleDir into <outputDir>/<name>.skill, where name is the
// base name of bundleDir. Archive members are rooted at <name>/ with forward
// slashes. It returns the archive path, or an error satisfying IsRejected
// when the bundle is invalid or unsafe.
//
// On rejection no file is created or modified. On success the archive is
// written via a temporary file and renamed, so a partial archive is never
// left behind.
func (p *Packager) Package(ctx context.Context, bundleDir, outputDir string) (string, error) {
	log := logger.G(ctx).WithField("bundle", bundleDir)

	if result := p.validate(bundleDir); !result.OK {
		return "", errors.Wrap(ErrAdmissionRejected, result.Message)
	}

	absBundle, err := filepath.Abs(bundleDir)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve bundle directory")
	}
	root, err := filepath.EvalSymlinks(absBundle)
	if err != nil {
		return "", errors.Wrap(err, "failed to canonicalize bundle directory")
	}

	skillName := filepath.Base(root)
	archivePath := filepath.Join(outputDir, skillName+ArchiveExt)

	// Relative path of the output archive when it lands inside the bundle,
	// empty otherwise. Matching entries are excluded so the archive never
	// contains a stale or in-progress copy of itself.
	selfRel := selfOutputRel(root, outputDir, skillName+ArchiveExt)

	var files []entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			// Soft exclusion: never include, never follow. WalkDir does not
			// descend into symlinked directories, so the whole subtree behind
			// a link stays out of the archive.
			log.WithField("entry", rel).Debug("excluding symlink from archive")
			return nil
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", rel)
		}
		if !isWithin(resolved, root) {
			return errors.Wrapf(ErrContainmentViolation, "%s resolved to %s", rel, resolved)
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			log.WithField("entry", rel).Debug("excluding non-regular file from archive")
			return nil
		}
		if selfRel != "" && rel == selfRel {
			log.WithField("entry", rel).Debug("excluding output archive from its own contents")
			return nil
		}

		files = append(files, entry{rel: rel, abs: path})
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}
	if err := writeArchive(archivePath, skillName, files); err != nil {
		return "", err
	}

	log.WithField("archive", archivePath).WithField("files", len(files)).Info("packaged skill")
	return archivePath, nil
}

// isWithin reports whether path lies inside root (or equals it), comparing
// normalized path-component sequences. Both arguments must be absolute and
// symlink-free. Declared as a variable so tests can force a failure.
var isWithin = func(path, root string) bool {
	pathParts := splitComponents(path)
	rootParts := splitComponents(root)
	if len(pathParts) < len(rootParts) {
		return false
	}
	for i, part := range rootParts {
		if pathParts[i] != part {
			return false
		}
	}
	return true
}

func splitComponents(path string) []string {
	clean := filepath.Clean(path)
	parts := strings.Split(filepath.ToSlash(clean), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// selfOutputRel returns the bundle-relative path the output archive would
// occupy when outputDir lies inside (or equals) the bundle root.
func selfOutputRel(root, outputDir, archiveName string) string {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(absOut); err == nil {
		absOut = resolved
	}
	if !isWithin(absOut, root) {
		return ""
	}
	rel, err := filepath.Rel(root, filepath.Join(absOut, archiveName))
	if err != nil {
		return ""
	}
	return rel
}

// Archive member timestamps are pinned so that two runs over an unchanged
// bundle produce byte-identical output.
var archiveEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// writeArchive writes the zip to a temporary file in the target directory
// and renames it into place. Members arrive in deterministic walk order
// (lexicographic at each directory level).
func writeArchive(archivePath, skillName string, files []entry) (err error) {
	dir := filepath.Dir(archivePath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(archivePath)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary archive")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, f := range files {
		info, err := os.Stat(f.abs)
		if err != nil {
			return errors.Wrapf(err, "failed to stat %s", f.rel)
		}

		header := &zip.FileHeader{
			Name:     skillName + "/" + filepath.ToSlash(f.rel),
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}
		header.SetMode(normalizeMode(info.Mode()))

		w, err := zw.CreateHeader(header)
		if err != nil {
			return errors.Wrapf(err, "failed to add %s to archive", f.rel)
		}

		src, err := os.Open(f.abs)
		if err != nil {
			return errors.Wrapf(err, "failed to open %s", f.rel)
		}
		_, err = io.Copy(w, src)
		src.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to write %s to archive", f.rel)
		}
	}
	if err = zw.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize archive")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary archive")
	}

	if err = os.Rename(tmp.Name(), archivePath); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to move archive into place")
	}
	return nil
}

func normalizeMode(mode os.FileMode) os.FileMode {
	if mode&0o111 != 0 {
		return 0o755
	}
	return 0o644
}
