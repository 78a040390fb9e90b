package config

import (
	"os"
	"path/filepath"
)

// FileName is the configuration file looked for when none is given.
const FileName = "folio.toml"

// SearchPaths returns candidate config files, first match wins.
// Paths next to the binary come before the working directory.
func SearchPaths() []string {
	candidates := []string{
		FileName,
		filepath.Join("config", FileName),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "folio", FileName))
	}

	exe, err := os.Executable()
	if err != nil {
		return candidates
	}
	binDir := filepath.Dir(exe)

	paths := []string{
		filepath.Join(binDir, FileName),
		filepath.Join(binDir, "config", FileName),
	}
	paths = append(paths, candidates...)

	seen := make(map[string]bool, len(paths))
	deduped := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			continue
		}
		seen[abs] = true
		deduped = append(deduped, p)
	}
	return deduped
}

// FindConfigFile returns the first existing file from SearchPaths, or "".
func FindConfigFile() string {
	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
