package site

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/frontmatter"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
)

// WriteStats summarizes one Write call.
type WriteStats struct {
	Written   int
	Unchanged int
	Removed   int
}

// Writer renders a file set below Root.
type Writer struct {
	Root string
	// Prune removes files below Root that are not part of the written set.
	Prune  bool
	Logger *slog.Logger
}

// Write renders every file as front matter plus contents. The front matter
// carries a content fingerprint; files whose fingerprint on disk already
// matches are left untouched.
func (w *Writer) Write(files Files) (WriteStats, error) {
	var stats WriteStats
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", w.Root).
			Build()
	}

	kept := make(map[string]bool, len(files))
	for _, name := range files.Names() {
		target, err := w.target(name)
		if err != nil {
			return stats, err
		}
		kept[target] = true

		fields := files[name].FrontMatter()
		fp, err := Fingerprint(fields, files[name].Contents)
		if err != nil {
			return stats, errors.WrapError(err, errors.CategoryBuild, "failed to fingerprint output").
				WithContext("file", name).
				Build()
		}
		if existingFingerprint(target) == fp {
			stats.Unchanged++
			continue
		}
		fields[mdfp.FingerprintField] = fp

		out, err := frontmatter.Render(fields, files[name].Contents, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return stats, errors.WrapError(err, errors.CategoryBuild, "failed to render output").
				WithContext("file", name).
				Build()
		}
		if err := writeFile(target, out); err != nil {
			return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
				WithContext("file", name).
				Build()
		}
		logger.Debug("Wrote output file", logfields.File(name))
		stats.Written++
	}

	if w.Prune {
		removed, err := w.prune(kept)
		stats.Removed = removed
		if err != nil {
			return stats, errors.WrapError(err, errors.CategoryFileSystem, "failed to prune output directory").
				WithContext("path", w.Root).
				Build()
		}
	}
	return stats, nil
}

// target maps a file name to a path below Root, rejecting names that would
// escape it.
func (w *Writer) target(name string) (string, error) {
	local := filepath.FromSlash(name)
	if name == "" || !filepath.IsLocal(local) {
		return "", errors.ValidationError("output file name escapes the output directory").
			WithContext("file", name).
			Build()
	}
	return filepath.Join(w.Root, local), nil
}

func (w *Writer) prune(kept map[string]bool) (int, error) {
	removed := 0
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || kept[path] {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	return removed, err
}

// Fingerprint hashes the front matter (without a previous fingerprint) and
// body of an output file.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != mdfp.FingerprintField {
			hashed[k] = v
		}
	}
	raw, err := frontmatter.SerializeYAML(hashed, frontmatter.Style{Newline: "\n"})
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(raw), "\n"), string(body)), nil
}

func existingFingerprint(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	raw, _, had, _, err := frontmatter.Split(content)
	if err != nil || !had {
		return ""
	}
	fields, err := frontmatter.ParseYAML(raw)
	if err != nil {
		return ""
	}
	fp, _ := fields[mdfp.FingerprintField].(string)
	return fp
}

func writeFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".contentbinder-*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

