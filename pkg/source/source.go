package source

import (
	"os"
	"path/filepath"
	"strings"
)

// SourceFile represents one declaration file (or synthetic input) with its content
type SourceFile struct {
	Name    string   // Display name (e.g., "lib.brook", "<repl>", "<inline>")
	Path    string   // Full file path (empty for REPL/inline input)
	Content string   // The source text
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewReplSource creates a source file for one REPL input line
func NewReplSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<repl>",
		Path:    "",
		Content: content,
	}
}

// NewInlineSource creates a source file for -e style inline input
func NewInlineSource(content string) *SourceFile {
	return &SourceFile{
		Name:    "<inline>",
		Path:    "",
		Content: content,
	}
}

// FromFile creates a SourceFile from a file path and its content
func FromFile(filePath, content string) *SourceFile {
	name := filepath.Base(filePath)
	return NewSourceFile(name, filePath, content)
}

// ReadFile loads a declaration file from disk
func ReadFile(filePath string) (*SourceFile, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromFile(filePath, string(content)), nil
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line `n`, or "" when out of range
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file on disk
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}
