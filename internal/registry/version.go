package registry

import (
	"strconv"
	"strings"
)

// Version is a major.minor.patch triple
type Version [3]int

// ParseVersion reads a dot-separated version. Missing components are 0, a
// leading "v" is ignored, and each component uses only its leading digits, so
// "2.3" is 2.3.0 and "1.4.0-beta" is 1.4.0. Anything unreadable counts as 0.
func ParseVersion(s string) Version {
	var v Version
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "v"), "V")
	for i, part := range strings.SplitN(s, ".", len(v)+1) {
		if i >= len(v) {
			break
		}
		end := 0
		for end < len(part) && part[end] >= '0' && part[end] <= '9' {
			end++
		}
		if n, err := strconv.Atoi(part[:end]); err == nil {
			v[i] = n
		}
	}
	return v
}

// Compare returns -1, 0 or 1 as v sorts before, equal to or after other.
func (v Version) Compare(other Version) int {
	for i := range v {
		switch {
		case v[i] < other[i]:
			return -1
		case v[i] > other[i]:
			return 1
		}
	}
	return 0
}

// CompareVersions compares two version strings numerically.
func CompareVersions(a, b string) int {
	return ParseVersion(a).Compare(ParseVersion(b))
}
