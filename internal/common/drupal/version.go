package drupal

import (
	"regexp"
	"strconv"
	"strings"
)

// Release suffix priorities (lower = earlier in release cycle)
var suffixPriority = map[string]int{
	"dev":      -6,
	"unstable": -5,
	"alpha":    -4,
	"beta":     -3,
	"rc":       -1,
	"":         0, // stable release
}

// apiPrefixRegex matches the core compatibility prefix of contrib versions (7.x-, 8.x-)
var apiPrefixRegex = regexp.MustCompile(`^\d+\.x-`)

// versionSuffixRegex matches suffixes like -rc1, -beta2, -unstable3, -dev
var versionSuffixRegex = regexp.MustCompile(`-(dev|unstable|alpha|beta|rc)(\d*)$`)

// gitOffsetRegex matches the commit offset of a git checkout: 7.x-3.20+5-dev
var gitOffsetRegex = regexp.MustCompile(`\+(\d+)-dev$`)

// releaseVersion is a version broken into comparable components
type releaseVersion struct {
	nums      []int
	suffix    string
	suffixNum int
	offset    int // commits past the tagged release, for git checkouts
}

// parseVersion breaks a release version into components for comparison.
// A checkout N commits past a release ranks above that release and below the next one.
func parseVersion(v string) releaseVersion {
	v = strings.TrimSpace(v)
	v = apiPrefixRegex.ReplaceAllString(v, "")

	var rv releaseVersion
	if matches := gitOffsetRegex.FindStringSubmatch(v); matches != nil {
		rv.offset, _ = strconv.Atoi(matches[1])
		v = gitOffsetRegex.ReplaceAllString(v, "")
	}

	if matches := versionSuffixRegex.FindStringSubmatch(v); matches != nil {
		rv.suffix = matches[1]
		if matches[2] != "" {
			rv.suffixNum, _ = strconv.Atoi(matches[2])
		}
		v = versionSuffixRegex.ReplaceAllString(v, "")
	}

	// 3.20 -> [3, 20]; a branch placeholder like 2.x counts as 0
	parts := strings.Split(v, ".")
	rv.nums = make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		rv.nums[i] = n
	}

	return rv
}

// compareIntSlices compares two slices of integers
func compareIntSlices(a, b []int) int {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	for i := 0; i < maxLen; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}

		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// CompareVersions compares two drupal.org release versions ("7.59", "7.x-3.20", "7.x-3.0-rc1").
// The core compatibility prefix is ignored.
// Returns: -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) int {
	a := parseVersion(v1)
	b := parseVersion(v2)

	if cmp := compareIntSlices(a.nums, b.nums); cmp != 0 {
		return cmp
	}

	// dev < unstable < alpha < beta < rc < release
	if cmp := compareInt(suffixPriority[a.suffix], suffixPriority[b.suffix]); cmp != 0 {
		return cmp
	}
	if cmp := compareInt(a.suffixNum, b.suffixNum); cmp != 0 {
		return cmp
	}
	return compareInt(a.offset, b.offset)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// IsDevVersion reports whether v names a development snapshot (7.x-2.x-dev).
func IsDevVersion(v string) bool {
	return strings.HasSuffix(strings.TrimSpace(v), "-dev")
}
