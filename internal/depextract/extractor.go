// Package depextract resolves inter-file dependencies for one FileRecord by
// applying language-specific pattern rules against the symbol index, per
// spec.md §4.4. Every emitted OutboundDep's target is a value obtained from
// the symbol map, never a raw symbol string.
package depextract

import (
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

var (
	ktJavaImportRe = regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`)
	pyImportRe     = regexp.MustCompile(`(?m)^(?:from\s+([\w.]+)\s+import|import\s+([\w.]+))`)
	xmlLayoutRe    = regexp.MustCompile(`@layout/(\w+)`)
	xmlTagRe       = regexp.MustCompile(`<\s*([\w.]+)`)
	gradleIncludeRe = regexp.MustCompile(`include\s*\(?["']:(.+?)["']\)?`)
	cIncludeRe     = regexp.MustCompile(`#include\s*["<](.+?)[">]`)
	jsImportRe     = regexp.MustCompile(`(?:from|require\s*\()\s*["']([./@][^"']+)["']`)

	jsResolutionPrefixes = []string{"src/", "app/", "apps/web/src/"}
)

// Extract returns the outbound dependency edges for one file. root is the
// absolute workspace path (needed only by the gradle rule, which probes the
// filesystem for candidate build files); relPosixPath is the file's
// repo-relative posix path; content is its decoded text; symbolMap is the
// current snapshot's symbol table.
func Extract(root, relPosixPath, content string, symbolMap model.SymbolMap) []model.OutboundDep {
	ext := strings.ToLower(path.Ext(relPosixPath))

	switch ext {
	case ".kt", ".java":
		return extractImportStyle(content, symbolMap, ktJavaImportRe, model.EdgeFileDependency)
	case ".py":
		return extractPython(content, symbolMap)
	case ".xml":
		return extractXML(content, symbolMap)
	case ".gradle", ".kts":
		return extractGradle(root, content)
	case ".c", ".cpp", ".h", ".hpp", ".cc":
		return extractCInclude(content, symbolMap)
	case ".js", ".jsx", ".ts", ".tsx", ".vue":
		return extractJS(relPosixPath, content, symbolMap)
	default:
		return nil
	}
}

func extractImportStyle(content string, symbolMap model.SymbolMap, re *regexp.Regexp, edgeType model.EdgeType) []model.OutboundDep {
	var deps []model.OutboundDep
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if target, ok := symbolMap[name]; ok {
			deps = append(deps, model.OutboundDep{Target: target, Type: edgeType})
		}
	}
	return deps
}

func extractPython(content string, symbolMap model.SymbolMap) []model.OutboundDep {
	var deps []model.OutboundDep
	for _, m := range pyImportRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if name == "" {
			continue
		}
		if target, ok := symbolMap[name]; ok {
			deps = append(deps, model.OutboundDep{Target: target, Type: model.EdgeFileDependency})
		}
	}
	return deps
}

func extractXML(content string, symbolMap model.SymbolMap) []model.OutboundDep {
	var deps []model.OutboundDep

	for _, m := range xmlLayoutRe.FindAllStringSubmatch(content, -1) {
		key := "@layout/" + m[1]
		if target, ok := symbolMap[key]; ok {
			deps = append(deps, model.OutboundDep{Target: target, Type: model.EdgeLayoutInclude})
		}
	}

	for _, m := range xmlTagRe.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if !strings.Contains(name, ".") {
			continue
		}
		if target, ok := symbolMap[name]; ok {
			deps = append(deps, model.OutboundDep{Target: target, Type: model.EdgeClassReference})
		}
	}

	return deps
}

// extractGradle resolves `include(":module:sub")`-style declarations by
// testing for the corresponding build.gradle(.kts) file on disk, since
// gradle module coordinates have no entry in the symbol map.
func extractGradle(root, content string) []model.OutboundDep {
	var deps []model.OutboundDep
	for _, m := range gradleIncludeRe.FindAllStringSubmatch(content, -1) {
		coord := strings.ReplaceAll(m[1], ":", "/")
		for _, candidate := range []string{coord + "/build.gradle", coord + "/build.gradle.kts"} {
			if _, err := os.Stat(path.Join(root, candidate)); err == nil {
				deps = append(deps, model.OutboundDep{Target: candidate, Type: model.EdgeModuleInclude})
				break
			}
		}
	}
	return deps
}

func extractCInclude(content string, symbolMap model.SymbolMap) []model.OutboundDep {
	var deps []model.OutboundDep
	for _, m := range cIncludeRe.FindAllStringSubmatch(content, -1) {
		basename := path.Base(m[1])
		if target, ok := symbolMap[basename]; ok {
			deps = append(deps, model.OutboundDep{Target: target, Type: model.EdgeInclude})
		}
	}
	return deps
}

func extractJS(relPosixPath, content string, symbolMap model.SymbolMap) []model.OutboundDep {
	var deps []model.OutboundDep
	currentDir := path.Dir(relPosixPath)
	if currentDir == "." {
		currentDir = ""
	}

	for _, m := range jsImportRe.FindAllStringSubmatch(content, -1) {
		specifier := m[1]

		var hint string
		if strings.HasPrefix(specifier, "@/") {
			hint = strings.TrimPrefix(specifier, "@/")
		} else {
			hint = path.Join(currentDir, specifier)
		}
		hint = path.Clean(hint)
		hint = strings.TrimPrefix(hint, "/")

		if target, ok := resolveJSHint(symbolMap, hint); ok {
			deps = append(deps, model.OutboundDep{Target: target, Type: model.EdgeImport})
		}
	}

	return deps
}

// resolveJSHint tries, in order: the exact hint; the hint prefixed with each
// of src/, app/, apps/web/src/; then any symbol-map key that contains a
// slash and ends with "/<hint>". Ties in the last step are broken by
// preferring the shortest matching key (an explicit, documented tie-break
// for the source's order-sensitive "ends-with" fallback).
func resolveJSHint(symbolMap model.SymbolMap, hint string) (string, bool) {
	if target, ok := symbolMap[hint]; ok {
		return target, true
	}

	for _, prefix := range jsResolutionPrefixes {
		if target, ok := symbolMap[prefix+hint]; ok {
			return target, true
		}
	}

	suffix := "/" + hint
	var bestKey, bestTarget string
	found := false
	for key, target := range symbolMap {
		if !strings.Contains(key, "/") || !strings.HasSuffix(key, suffix) {
			continue
		}
		if !found || len(key) < len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestKey, bestTarget, found = key, target, true
		}
	}
	return bestTarget, found
}
