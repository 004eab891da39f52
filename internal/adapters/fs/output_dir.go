// Package fs writes rendered codes to a directory.
package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/qrship/internal/app"
)

const manifestFileName = "manifest.json"

// Manifest lists what an OutputDir wrote, in render order.
type Manifest struct {
	Files []ManifestFile `json:"files"`
}

// ManifestFile describes one rendered source file.
type ManifestFile struct {
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	ContainerSize     int            `json:"container_size"`
	ContainerChecksum string         `json:"container_checksum"`
	Codes             []ManifestCode `json:"codes"`
}

// ManifestCode points at one SVG relative to the output directory.
type ManifestCode struct {
	Sequence int    `json:"sequence"`
	Total    int    `json:"total"`
	Path     string `json:"path"`
}

// OutputDir writes each file's codes into its own subdirectory plus a
// manifest.json at the root.
type OutputDir struct {
	dir string
}

// NewOutputDir creates an OutputDir rooted at dir.
func NewOutputDir(dir string) *OutputDir {
	return &OutputDir{dir: dir}
}

// Path returns the root directory.
func (o *OutputDir) Path() string { return o.dir }

// ManifestPath returns the full path to the manifest.
func (o *OutputDir) ManifestPath() string {
	return filepath.Join(o.dir, manifestFileName)
}

// Write stores files and returns the manifest it wrote. Each file is
// written to a temp path and renamed into place. Codes listed by the
// previous manifest but not by the new one are removed afterwards.
func (o *OutputDir) Write(files []app.RenderedFile) (Manifest, error) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return Manifest{}, err
	}
	prev, err := o.LoadManifest()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// unreadable manifest: nothing known to prune
		prev = Manifest{}
	}

	m := Manifest{Files: make([]ManifestFile, 0, len(files))}
	used := map[string]int{}
	for _, f := range files {
		sub := uniqueName(SafeName(f.Name), used)
		if err := os.MkdirAll(filepath.Join(o.dir, sub), 0o755); err != nil {
			return Manifest{}, err
		}

		mf := ManifestFile{
			Name:              f.Name,
			Description:       f.Description,
			ContainerSize:     f.ContainerSize,
			ContainerChecksum: f.ContainerChecksum,
			Codes:             make([]ManifestCode, 0, len(f.Codes)),
		}
		for _, c := range f.Codes {
			rel := filepath.Join(sub, fmt.Sprintf("%03d-of-%03d.svg", c.Sequence, c.Total))
			if err := writeAtomic(filepath.Join(o.dir, rel), []byte(c.SVG)); err != nil {
				return Manifest{}, fmt.Errorf("write %s: %w", rel, err)
			}
			mf.Codes = append(mf.Codes, ManifestCode{Sequence: c.Sequence, Total: c.Total, Path: filepath.ToSlash(rel)})
		}
		m.Files = append(m.Files, mf)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Manifest{}, err
	}
	if err := writeAtomic(o.ManifestPath(), data); err != nil {
		return Manifest{}, err
	}
	if err := o.prune(prev, m); err != nil {
		return m, fmt.Errorf("remove stale codes: %w", err)
	}
	return m, nil
}

// prune deletes codes from prev that next no longer lists, then any
// subdirectory left empty.
func (o *OutputDir) prune(prev, next Manifest) error {
	keep := map[string]bool{}
	for _, f := range next.Files {
		for _, c := range f.Codes {
			keep[c.Path] = true
		}
	}

	dirs := map[string]bool{}
	for _, f := range prev.Files {
		for _, c := range f.Codes {
			rel := filepath.FromSlash(c.Path)
			if keep[c.Path] || !filepath.IsLocal(rel) {
				continue
			}
			if err := os.Remove(filepath.Join(o.dir, rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			dirs[filepath.Dir(rel)] = true
		}
	}
	for d := range dirs {
		if d == "." {
			continue
		}
		// fails while the directory still holds codes
		_ = os.Remove(filepath.Join(o.dir, d))
	}
	return nil
}

// LoadManifest reads a manifest previously written by Write.
func (o *OutputDir) LoadManifest() (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(o.ManifestPath())
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, err
	}
	return m, nil
}

// SafeName maps a display name to a directory name. Characters outside
// [A-Za-z0-9._-] become '_'.
func SafeName(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	s = strings.Trim(s, ".")
	if s == "" {
		return "file"
	}
	return s
}

func uniqueName(name string, used map[string]int) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
