// Package langclass maps a file's extension to the language tag stored on
// its FileRecord, per spec.md §4.5. It is the Go-native analogue of the
// teacher's internal/git/language.go extension table, specialized to the
// ten languages the dependency extractor understands.
package langclass

import (
	"path/filepath"
	"strings"
)

// Classify returns the language tag for path, or "" if the file does not
// become a FileRecord. Every .xml file, layout or not, is tagged "xml".
func Classify(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".kt":
		return "kotlin"
	case ".java":
		return "java"
	case ".py":
		return "python"
	case ".xml":
		return "xml"
	case ".gradle":
		return "gradle"
	case ".kts":
		if strings.Contains(strings.ToLower(filepath.Base(path)), "gradle") {
			return "gradle"
		}
		return "kotlin"
	case ".js", ".jsx":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".vue":
		return "vue"
	case ".c", ".h":
		return "c"
	case ".cpp", ".hpp", ".cc":
		return "cpp"
	case ".json":
		return "json"
	default:
		return ""
	}
}

// HasFileRecord reports whether Classify would assign a language tag to
// path — i.e. whether this file becomes a FileRecord at all.
func HasFileRecord(path string) bool {
	return Classify(path) != ""
}
