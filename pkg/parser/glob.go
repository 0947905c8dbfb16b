package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ExpandGlobs expands bulletin paths and glob patterns into a deduplicated,
// sorted list of paths. Patterns that match nothing are kept as literal
// paths so that opening them later reports a useful error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		result = append(result, path)
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, match := range matches {
			add(match)
		}
	}

	// Bulletin names sort by year, then zero-padded week.
	slices.Sort(result)

	return result, nil
}

// ReadFileList reads one filename per line from a plain-text list. Blank
// lines and lines starting with '#' are skipped. Relative entries are
// joined to baseDir when it is set.
func ReadFileList(listPath, baseDir string) ([]string, error) {
	f, err := os.Open(listPath) // #nosec G304 -- user-provided list path is expected
	if err != nil {
		return nil, fmt.Errorf("opening file list: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading file list %s: %w", listPath, err)
	}

	var result []string
	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if baseDir != "" && !filepath.IsAbs(name) {
			name = filepath.Join(baseDir, name)
		}
		result = append(result, name)
	}
	return result, nil
}

// FilterContaining keeps the paths whose content contains needle, ignoring
// case. An empty needle keeps every path.
func FilterContaining(paths []string, needle string) ([]string, error) {
	if needle == "" {
		return paths, nil
	}

	lower := strings.ToLower(needle)
	var result []string
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if strings.Contains(strings.ToLower(string(data)), lower) {
			result = append(result, path)
		}
	}
	return result, nil
}
