// Package source resolves which trace file a run should analyze.
package source

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolve returns the trace file for the given argument. A literal path
// to an existing file is used as-is; otherwise the argument is treated
// as a glob and the newest match by modification time wins.
func Resolve(arg string) (string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}

	matches, err := filepath.Glob(arg)
	if err != nil {
		return "", fmt.Errorf("source: bad pattern %q: %w", arg, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("source: no trace file matches %q", arg)
	}

	newest := ""
	var newestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = m
			newestMod = mod
		}
	}
	if newest == "" {
		return "", fmt.Errorf("source: no readable trace file matches %q", arg)
	}
	return newest, nil
}
