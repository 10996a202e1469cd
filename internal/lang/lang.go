// Package lang maps source files to tree-sitter grammars.
package lang

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language pairs a canonical language name with its grammar.
type Language struct {
	Name    string
	Grammar *sitter.Language
}

// extToName maps file extensions to canonical language names.
var extToName = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".py":   "python",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".hpp":  "cpp",
	".java": "java",
	".php":  "php",
	".rb":   "ruby",
}

// Grammars are lazily initialized; loading a tree-sitter grammar touches cgo
// and only the languages actually used should pay for it.
var (
	grammars     map[string]*sitter.Language
	grammarsOnce sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		grammars = map[string]*sitter.Language{
			"go":         golang.GetLanguage(),
			"typescript": ts.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"python":     python.GetLanguage(),
			"rust":       rust.GetLanguage(),
			"c":          c.GetLanguage(),
			"cpp":        cpp.GetLanguage(),
			"java":       java.GetLanguage(),
			"php":        php.GetLanguage(),
			"ruby":       ruby.GetLanguage(),
		}
	})
}

// ForFile returns the Language for a file path based on its extension.
func ForFile(path string) (Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	name, ok := extToName[ext]
	if !ok {
		return Language{}, false
	}
	return ByName(name)
}

// ByName returns the Language for a canonical language name.
func ByName(name string) (Language, bool) {
	initGrammars()
	g, ok := grammars[name]
	if !ok {
		return Language{}, false
	}
	return Language{Name: name, Grammar: g}, true
}

// Names returns the supported canonical language names, sorted.
func Names() []string {
	initGrammars()
	names := make([]string, 0, len(grammars))
	for name := range grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
