package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	f := NewFilter(nil)
	assert.Equal(t, DefaultExtensions, f.Extensions())

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"pkg/app.py", true},
		{"web/index.ts", true},
		{"web/index.js", true},
		{"Main.java", true},
		{"engine.cpp", true},
		{"Program.cs", true},
		{"README.md", false},
		{"Makefile", false},
		{"component.tsx", false},
		{"MAIN.GO", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Match(tt.path), "path %s", tt.path)
	}
}

func TestFilter_Custom(t *testing.T) {
	f := NewFilter([]string{"rs", " .rb ", ""})
	assert.Equal(t, []string{".rs", ".rb"}, f.Extensions())
	assert.True(t, f.Match("lib.rs"))
	assert.True(t, f.Match("app.rb"))
	assert.False(t, f.Match("main.go"))
}

func TestHunks(t *testing.T) {
	unified := "diff --git a/a.py b/a.py\nindex 1..2 100644\n--- a/a.py\n+++ b/a.py\n@@ -1 +1 @@\n-x = 1\n+x = 2\n"
	assert.Equal(t, "@@ -1 +1 @@\n-x = 1\n+x = 2", hunks(unified))
	assert.Equal(t, "@@ -0,0 +1 @@\n+a", hunks("@@ -0,0 +1 @@\n+a\n"))
	assert.Equal(t, "", hunks("diff --git a/x b/x\nBinary files differ\n"))
	assert.Equal(t, "", hunks(""))
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, lineCount(""))
	assert.Equal(t, 1, lineCount("a"))
	assert.Equal(t, 1, lineCount("a\n"))
	assert.Equal(t, 2, lineCount("a\nb"))
	assert.Equal(t, 2, lineCount("a\nb\n"))
}
