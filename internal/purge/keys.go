package purge

import (
	"sort"
	"strings"
)

// DeriveKeys returns the unique object keys for an attachment: the primary
// file first, then its variants ordered by variant name. basePrefix is
// prepended verbatim, so callers supply any trailing separator themselves.
func DeriveKeys(record FileRecord, basePrefix string) ([]string, error) {
	if strings.TrimSpace(record.PrimaryPath) == "" {
		return nil, missingMetadata("primary file path is empty")
	}

	primary := basePrefix + record.PrimaryPath
	keys := []string{primary}
	seen := map[string]struct{}{primary: {}}

	dir := dirOf(record.PrimaryPath)

	names := make([]string, 0, len(record.Variants))
	for name := range record.Variants {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		file := fileOf(record.Variants[name].Path)
		if file == "" {
			continue
		}
		key := basePrefix + dir + file
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys, nil
}

// dirOf returns the directory part of p including its trailing slash, or ""
// when p has no directory component.
func dirOf(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i+1]
}

// fileOf returns the last path element of p without cleaning it. Paths that
// name no file ("", "2023/05/", ".", "..") yield "".
func fileOf(p string) string {
	name := p[strings.LastIndex(p, "/")+1:]
	switch name {
	case ".", "..":
		return ""
	}
	return name
}
