package modelstore

import (
	"strings"

	"golang.org/x/mod/semver"
)

// ResolveVersion picks the version to load for a request: the exact version
// when available, otherwise the highest patch of the same major.minor,
// otherwise the highest version available. An empty request selects the
// highest version.
func ResolveVersion(available []string, requested string) (string, bool) {
	var best, bestSameMinor string
	want := canonical(requested)
	wantMinor := semver.MajorMinor(want)

	for _, v := range available {
		cv := canonical(v)
		if !semver.IsValid(cv) {
			continue
		}
		if requested != "" && cv == want {
			return v, true
		}
		if best == "" || semver.Compare(cv, canonical(best)) > 0 {
			best = v
		}
		if wantMinor != "" && semver.MajorMinor(cv) == wantMinor {
			if bestSameMinor == "" || semver.Compare(cv, canonical(bestSameMinor)) > 0 {
				bestSameMinor = v
			}
		}
	}

	if bestSameMinor != "" {
		return bestSameMinor, true
	}
	return best, best != ""
}

// canonical turns a framework version ("1.71.49") into semver form ("v1.71.49").
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}
