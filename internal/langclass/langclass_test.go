package langclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"Foo.kt":                 "kotlin",
		"Bar.java":               "java",
		"mod.py":                 "python",
		"res/layout/activity.xml": "xml",
		"build.gradle":           "gradle",
		"build.gradle.kts":       "gradle",
		"settings.gradle.kts":    "gradle",
		"myScript.kts":           "kotlin",
		"x.js":                   "javascript",
		"x.jsx":                  "javascript",
		"x.ts":                   "typescript",
		"x.tsx":                  "typescript",
		"x.vue":                  "vue",
		"foo.c":                  "c",
		"foo.h":                  "c",
		"foo.cpp":                "cpp",
		"foo.hpp":                "cpp",
		"foo.cc":                 "cpp",
		"data.json":              "json",
		"README.md":              "",
	}

	for path, want := range cases {
		assert.Equal(t, want, Classify(path), path)
	}
}

func TestHasFileRecord(t *testing.T) {
	assert.True(t, HasFileRecord("a.py"))
	assert.False(t, HasFileRecord("a.md"))
}
