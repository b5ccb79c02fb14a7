package generator

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/iconforge/model"
)

// iconFile is one source icon found by a scan.
type iconFile struct {
	Type model.IconType
	// Path is the absolute file path.
	Path string
	// Source is the slash-separated path relative to the icons root.
	Source string
}

// scan lists the icons of type t matching the include patterns minus the
// exclude patterns, sorted by source path. A missing directory holds zero
// icons; when create is set it is created.
func (g *Generator) scan(t model.IconType, create bool) ([]iconFile, error) {
	dir := g.cfg.TypeDir(t)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if create {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create icon directory: %w", err)
			}
			g.logger.Info("Created icon directory", "path", dir)
		}
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("stat icon directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("icon path is not a directory: %s", dir)
	}

	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var files []iconFile
	for _, pattern := range g.cfg.Icons.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("include pattern %q: %w", pattern, err)
		}
		for _, rel := range matches {
			if seen[rel] {
				continue
			}
			seen[rel] = true

			excluded, err := g.excluded(rel)
			if err != nil {
				return nil, err
			}
			if excluded {
				continue
			}
			files = append(files, iconFile{
				Type:   t,
				Path:   filepath.Join(dir, filepath.FromSlash(rel)),
				Source: path.Join(g.cfg.TypeDirName(t), rel),
			})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Source < files[j].Source
	})
	return files, nil
}

func (g *Generator) excluded(rel string) (bool, error) {
	for _, pattern := range g.cfg.Icons.Exclude {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Matches reports whether a path relative to a type directory is selected
// by the include and exclude patterns.
func (g *Generator) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range g.cfg.Icons.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			excluded, err := g.excluded(rel)
			return err == nil && !excluded
		}
	}
	return false
}
