// Package catalog finds chapter screenshots on disk.
//
// Directory names are compared in NFC form because macOS hands back
// decomposed (NFD) Hangul, which would otherwise never match an exclusion
// marker typed on the keyboard.
package catalog

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"homework/internal/logging"
)

// DefaultExtensions lists the image extensions recognized when none are configured.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg"}

// Enumerator walks folder trees looking for images.
type Enumerator struct {
	extensions map[string]struct{}
	marker     string
	logger     *slog.Logger
}

// NewEnumerator builds an Enumerator. Extensions are matched case-insensitively;
// an empty excludeMarker disables subtree exclusion.
func NewEnumerator(extensions []string, excludeMarker string, logger *slog.Logger) *Enumerator {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Enumerator{
		extensions: exts,
		marker:     norm.NFC.String(strings.TrimSpace(excludeMarker)),
		logger:     logging.NewComponentLogger(logger, "catalog"),
	}
}

// IsImage reports whether name carries a recognized image extension.
func (e *Enumerator) IsImage(name string) bool {
	_, ok := e.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Excluded reports whether a directory name contains the exclusion marker.
func (e *Enumerator) Excluded(dirName string) bool {
	if e.marker == "" {
		return false
	}
	return strings.Contains(norm.NFC.String(dirName), e.marker)
}

// Images returns every image path under root, sorted. A missing or unreadable
// root yields no images; unreadable subdirectories are skipped.
func (e *Enumerator) Images(root string) []string {
	var images []string
	e.walk(root, func(path string) {
		images = append(images, path)
	})
	sort.Strings(images)
	return images
}

// Chapters returns the directories under root, relative to root, that
// directly contain at least one image. The root itself is reported as ".".
func (e *Enumerator) Chapters(root string) []string {
	seen := make(map[string]struct{})
	var chapters []string
	e.walk(root, func(path string) {
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return
		}
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		chapters = append(chapters, rel)
	})
	sort.Strings(chapters)
	return chapters
}

// walk hands every image below root to visit, pruning marked and unreadable
// directories. Paths are reported under root even when root is a symlink.
func (e *Enumerator) walk(root string, visit func(path string)) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		e.logger.Debug("image root unavailable",
			logging.String(logging.FieldFolder, root),
			logging.Any("error", err))
		return
	}
	if e.Excluded(filepath.Base(root)) {
		return
	}
	walkRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		walkRoot = resolved
	}

	_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Debug("skipping unreadable path",
				logging.String(logging.FieldFolder, path),
				logging.Error(err))
			if d != nil && d.IsDir() && path != walkRoot {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != walkRoot && e.Excluded(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !e.IsImage(d.Name()) {
			return nil
		}
		if walkRoot != root {
			rel, relErr := filepath.Rel(walkRoot, path)
			if relErr != nil {
				return nil
			}
			path = filepath.Join(root, rel)
		}
		visit(path)
		return nil
	})
}

// ChapterLabel returns the name of the folder that holds an image.
func ChapterLabel(path string) string {
	return norm.NFC.String(filepath.Base(filepath.Dir(path)))
}
