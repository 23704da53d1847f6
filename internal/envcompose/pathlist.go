// SPDX-License-Identifier: MPL-2.0

package envcompose

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// prependList prepends the entries missing from the list variable name,
// keeping their relative order. Entries already present stay where they are.
func prependList(base map[string]string, name string, entries []string) (string, error) {
	existing, err := splitList(name, base[name])
	if err != nil {
		return "", err
	}

	var fresh []string
	for _, entry := range entries {
		if entry == "" || containsPath(existing, entry) || containsPath(fresh, entry) {
			continue
		}
		fresh = append(fresh, entry)
	}
	if len(fresh) == 0 {
		return base[name], nil
	}
	if base[name] == "" {
		return joinList(fresh), nil
	}
	return joinList(fresh) + string(os.PathListSeparator) + base[name], nil
}

// splitList splits a path list, dropping empty entries. A NUL byte cannot be
// part of any path and marks the value as corrupt.
func splitList(name, value string) ([]string, error) {
	if strings.IndexByte(value, 0) >= 0 {
		return nil, &CompositionError{Var: name, Value: value, Reason: "contains a NUL byte"}
	}
	if value == "" {
		return nil, nil
	}
	parts := filepath.SplitList(value)
	return slices.DeleteFunc(parts, func(s string) bool { return s == "" }), nil
}

func joinList(entries []string) string {
	return strings.Join(entries, string(os.PathListSeparator))
}

func appendUnique(list []string, entries ...string) []string {
	for _, entry := range entries {
		if entry != "" && !containsPath(list, entry) {
			list = append(list, entry)
		}
	}
	return list
}

// containsPath compares cleaned paths, so "/a/b/" matches "/a/b".
func containsPath(list []string, entry string) bool {
	clean := filepath.Clean(entry)
	return slices.ContainsFunc(list, func(s string) bool { return filepath.Clean(s) == clean })
}
