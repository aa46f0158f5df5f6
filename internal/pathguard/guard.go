package pathguard

import (
	"os"
	"path/filepath"
	"strings"
)

const webpExt = ".webp"

// Guard decides whether a candidate file may be converted at all. Every rule
// fails closed: a path we cannot resolve is a path we do not touch.
type Guard struct {
	root       string
	uploadsDir string
	reserved   []string
}

func New(root, uploadsDir string, reservedDirs []string) *Guard {
	return &Guard{
		root:       root,
		uploadsDir: uploadsDir,
		reserved:   reservedDirs,
	}
}

// IsConvertible reports whether path is a readable regular file strictly
// inside the asset root, outside reserved subtrees, and not already WebP.
// The check is re-validated at conversion time; the window between check and
// use is accepted.
func (g *Guard) IsConvertible(path string) bool {
	root, err := canonicalize(g.root)
	if err != nil {
		return false
	}

	p, err := canonicalize(path)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	// Strict descendant: not the root itself and no escape via "..".
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	top := topSegment(rel)
	for _, r := range g.reserved {
		if top == r && r != g.uploadsDir {
			return false
		}
	}

	if strings.EqualFold(filepath.Ext(p), webpExt) {
		return false
	}

	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	f, err := os.Open(p)
	if err != nil {
		return false
	}
	f.Close()

	return true
}

// canonicalize resolves relative segments and symlinks. Missing files make
// EvalSymlinks fail, which rejects the path.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

func topSegment(rel string) string {
	if i := strings.IndexRune(rel, filepath.Separator); i >= 0 {
		return rel[:i]
	}
	return rel
}
