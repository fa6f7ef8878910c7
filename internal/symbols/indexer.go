// Package symbols builds the per-snapshot symbol table: a mapping from
// language-specific symbol keys to the repository-relative path that
// defines them, per spec.md §4.3. The map is rebuilt from scratch for every
// snapshot and discarded at the end of it — no cross-snapshot sharing.
package symbols

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

var packageRe = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)`)

// Build walks every regular file beneath root (skipping any path with a
// ".git" path segment) and returns the resulting symbol map. Files that
// cannot be decoded as UTF-8 are silently skipped. Last writer wins on key
// collisions; traversal order is otherwise irrelevant for correctness.
func Build(root string) (model.SymbolMap, error) {
	symbolMap := make(model.SymbolMap)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if hasGitSegment(p, root) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		relPosix := filepath.ToSlash(rel)

		indexFile(symbolMap, p, relPosix)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return symbolMap, nil
}

// hasGitSegment reports whether any path component between root and p is
// literally ".git".
func hasGitSegment(p, root string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == ".git" {
			return true
		}
	}
	return false
}

func indexFile(symbolMap model.SymbolMap, absPath, relPosix string) {
	ext := strings.ToLower(path.Ext(relPosix))
	stem := strings.TrimSuffix(path.Base(relPosix), path.Ext(relPosix))

	switch ext {
	case ".kt", ".java":
		content, ok := readUTF8(absPath)
		if !ok {
			return
		}
		if m := packageRe.FindStringSubmatch(content); m != nil {
			symbolMap[m[1]+"."+stem] = relPosix
		}

	case ".py":
		modulePath := pythonModulePath(relPosix, stem)
		symbolMap[modulePath] = relPosix

	case ".xml":
		if hasPathComponent(relPosix, "layout") {
			symbolMap["@layout/"+stem] = relPosix
		}

	case ".h", ".hpp", ".c", ".cpp", ".cc":
		symbolMap[path.Base(relPosix)] = relPosix

	case ".js", ".jsx", ".ts", ".tsx", ".vue":
		symbolMap[relPosix] = relPosix
		withoutExt := strings.TrimSuffix(relPosix, path.Ext(relPosix))
		symbolMap[withoutExt] = relPosix
		if stem == "index" {
			dir := path.Dir(relPosix)
			if dir != "." {
				symbolMap[dir] = relPosix
			}
		}

	case ".json":
		symbolMap[relPosix] = relPosix
	}
}

// pythonModulePath converts a repo-relative path to its dotted module path:
// "pkg/sub/mod.py" -> "pkg.sub.mod"; "pkg/sub/__init__.py" -> "pkg.sub".
func pythonModulePath(relPosix, stem string) string {
	if stem == "__init__" {
		trimmed := strings.TrimSuffix(relPosix, "/__init__.py")
		return strings.ReplaceAll(trimmed, "/", ".")
	}
	trimmed := strings.TrimSuffix(relPosix, ".py")
	return strings.ReplaceAll(trimmed, "/", ".")
}

func hasPathComponent(relPosix, component string) bool {
	for _, part := range strings.Split(relPosix, "/") {
		if part == component {
			return true
		}
	}
	return false
}

// readUTF8 reads a file and returns its contents if they are valid UTF-8.
// Any read or decode failure is treated as "skip this file".
func readUTF8(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}
