package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// resolvePaths expands args into a flat list of file paths: a plain file
// argument passes through unchanged, a directory argument is expanded to
// the files directly inside it whose name matches pattern.
func resolvePaths(args []string, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// Non-existent paths are passed through: follow mode is
			// allowed to wait for a file that doesn't exist yet.
			out = append(out, arg)
			continue
		}
		if !info.IsDir() {
			out = append(out, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("reading directory %q: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() || !g.Match(e.Name()) {
				continue
			}
			out = append(out, filepath.Join(arg, e.Name()))
		}
	}
	return out, nil
}
