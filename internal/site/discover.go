package site

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/frontmatter"
)

// Discover walks root and reads every file whose extension is listed. Front
// matter is split off; the block under key becomes the file's directive and
// the remaining fields its Meta. File names are slash separated and relative
// to root. Hidden directories are skipped.
func Discover(root, key string, extensions []string) (Files, error) {
	if len(extensions) == 0 {
		extensions = config.DefaultExtensions
	}
	files := Files{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		f, err := readFile(path, name, key)
		if err != nil {
			return err
		}
		files[name] = f
		return nil
	})
	if err != nil {
		if _, ok := errors.AsClassified(err); ok {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to discover source files").
			WithContext("root", root).
			Build()
	}
	return files, nil
}

func readFile(path, name, key string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := frontmatter.Parse(content)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid front matter").
			WithContext("file", name).
			Build()
	}

	f := &File{FileName: name, Contents: doc.Body, Meta: doc.Fields}

	if raw, ok := doc.Fields[key]; ok {
		directive, err := config.DecodeDirective(raw)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryValidation, fmt.Sprintf("invalid %s block", key)).
				WithContext("file", name).
				Build()
		}
		f.Directive = directive
		delete(f.Meta, key)
	}
	return f, nil
}
