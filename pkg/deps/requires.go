// Package deps tracks the requires-relationships between declaration files
// and runs the parallel elaboration pool over them. Files name the files
// they depend on with `@requires` comment directives; the graph answers the
// reverse question rechecking cares about: given a set of changed files,
// which files have to be elaborated again.
package deps

import (
	"strings"

	"brook/pkg/lexer"
)

// ScanRequires extracts `@requires` directives from a file's comments. A
// directive names one file the annotated file depends on:
//
//	// @requires "./core"
//
// Quotes are optional and a block comment may carry several directives, one
// per line. Paths come back in source order with duplicates removed.
func ScanRequires(comments []lexer.Comment) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range comments {
		for _, line := range strings.Split(c.Text, "\n") {
			fields := strings.Fields(line)
			for i, f := range fields {
				if f != "@requires" || i+1 >= len(fields) {
					continue
				}
				path := strings.Trim(fields[i+1], `"'`)
				if path == "" || seen[path] {
					continue
				}
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	return out
}
