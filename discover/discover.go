// Package discover walks the configured test paths for files carrying a
// supported extension and computes each one's display-relative path, per
// spec.md §6.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flanksource/lit/model"
)

// Find walks every configured test path (file or directory) and returns the
// matching test files in deterministic (lexical) order. A root that is
// itself a file is included regardless of extension, matching the common
// lit convention that an explicit path always counts.
func Find(roots []string, extensions []string) ([]model.TestFilePath, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allowed[normalizeExt(e)] = true
	}

	var found []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			found = append(found, root)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(root), "**/*")
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			full := filepath.Join(root, m)
			fi, err := os.Stat(full)
			if err != nil || fi.IsDir() {
				continue
			}
			if len(allowed) == 0 || allowed[normalizeExt(filepath.Ext(full))] {
				found = append(found, full)
			}
		}
	}

	sort.Strings(found)

	out := make([]model.TestFilePath, 0, len(found))
	for _, f := range found {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TestFilePath{
			Absolute: abs,
			Relative: RelativeDisplayPath(abs, roots),
		})
	}
	return out, nil
}

func normalizeExt(e string) string {
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// RelativeDisplayPath implements spec.md §6's priority order: (1) the
// least-specific configured search path that is an ancestor of absPath, (2)
// otherwise the deepest common ancestor of all configured test paths, (3)
// otherwise the absolute path unchanged (caller's choice, left undefined).
func RelativeDisplayPath(absPath string, roots []string) string {
	if best, ok := leastSpecificAncestor(absPath, roots); ok {
		if rel, err := filepath.Rel(best, absPath); err == nil {
			return rel
		}
	}

	if ancestor, ok := deepestCommonAncestor(roots); ok {
		if rel, err := filepath.Rel(ancestor, absPath); err == nil {
			return rel
		}
	}

	return absPath
}

// leastSpecificAncestor finds whichever configured root is an ancestor of
// absPath and has the shortest (least-specific) path, i.e. sits highest in
// the tree.
func leastSpecificAncestor(absPath string, roots []string) (string, bool) {
	var best string
	found := false

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		fi, err := os.Stat(absRoot)
		if err == nil && !fi.IsDir() {
			absRoot = filepath.Dir(absRoot)
		}
		if !isAncestor(absRoot, absPath) {
			continue
		}
		if !found || len(absRoot) < len(best) {
			best = absRoot
			found = true
		}
	}
	return best, found
}

func isAncestor(ancestor, path string) bool {
	rel, err := filepath.Rel(ancestor, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// deepestCommonAncestor finds the deepest directory common to every
// configured root. Roots on different Windows drives (different volume
// names) have no common ancestor.
func deepestCommonAncestor(roots []string) (string, bool) {
	if len(roots) == 0 {
		return "", false
	}

	var segmentsList [][]string
	vol := ""
	for i, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", false
		}
		if i == 0 {
			vol = filepath.VolumeName(abs)
		} else if filepath.VolumeName(abs) != vol {
			return "", false
		}
		segmentsList = append(segmentsList, strings.Split(filepath.ToSlash(abs), "/"))
	}

	common := segmentsList[0]
	for _, segs := range segmentsList[1:] {
		common = commonPrefix(common, segs)
	}
	if len(common) == 0 {
		return "", false
	}

	joined := strings.Join(common, string(filepath.Separator))
	if joined == "" {
		joined = string(filepath.Separator)
	}
	return joined, true
}

func commonPrefix(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
