package scraper

import (
	"fmt"
	"strings"
)

const (
	Reed      = "reed"
	TotalJobs = "totaljobs"
	CWJobs    = "cwjobs"
	IndeedUK  = "indeed-uk"
	IndeedUS  = "indeed-us"
	CVLibrary = "cvlibrary"
	JobServe  = "jobserve"
)

// Registry returns every built-in source.
func Registry() []Source {
	return []Source{
		NewReed(),
		NewTotalJobs(),
		NewCWJobs(),
		NewIndeedUK(),
		NewIndeedUS(),
		NewCVLibrary(),
		NewJobServe(),
	}
}

func Names() []string {
	sources := Registry()
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}

// Lookup returns the named sources in the order given. An empty list
// selects the whole registry.
func Lookup(names []string) ([]Source, error) {
	all := Registry()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Source, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]Source, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		src, ok := byName[key]
		if !ok {
			return nil, fmt.Errorf("unknown source %q (known: %s)", name, strings.Join(Names(), ", "))
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, src)
	}
	return out, nil
}
