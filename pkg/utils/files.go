package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ExpandInputs resolves command line inputs to absolute file paths. A
// directory stands for the files directly inside it whose extension is one
// of exts, in name order.
func ExpandInputs(args []string, exts ...string) ([]string, error) {
	var out []string
	for _, arg := range args {
		fullPath, _, err := GetPathInfo(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", arg, err)
		}
		info, err := os.Stat(fullPath)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, fullPath)
			continue
		}

		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !HasExt(e.Name(), exts...) {
				continue
			}
			found = append(found, filepath.Join(fullPath, e.Name()))
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no %s files in %s", strings.Join(exts, "/"), fullPath)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}

// HasExt reports whether name ends in one of exts, ignoring case.
func HasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
