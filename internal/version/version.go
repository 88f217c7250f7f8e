// Package version parses the loosely formatted version strings found in
// download links, such as "2.3.1", "v1.0", "7.1.2.4" or "3.0.0-beta.2".
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// versionRe accepts 1 to 4 numeric components with an optional
// pre-release suffix and optional build metadata.
var versionRe = regexp.MustCompile(`^[vV]?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z.-]+))?(?:\+[0-9A-Za-z.-]+)?$`)

// Version is a comparable version value. Components that were not present
// in the parsed string are zero.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Revision   int
	Prerelease string

	// parts is the number of numeric components that were present.
	parts int
}

// New creates a version from its numeric components.
func New(components ...int) Version {
	var v Version
	fields := []*int{&v.Major, &v.Minor, &v.Patch, &v.Revision}
	for i, c := range components {
		if i >= len(fields) {
			break
		}
		*fields[i] = c
	}
	v.parts = min(max(len(components), 1), len(fields))
	return v
}

// Parse parses raw into a Version. It reports false instead of failing when
// raw is empty or not version-like.
func Parse(raw string) (Version, bool) {
	m := versionRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Version{}, false
	}

	var v Version
	fields := []*int{&v.Major, &v.Minor, &v.Patch, &v.Revision}
	for i, field := range fields {
		s := m[i+1]
		if s == "" {
			break
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			// Overflowing components are not usable versions.
			return Version{}, false
		}
		*field = n
		v.parts++
	}

	if pre := m[5]; pre != "" {
		if !semver.IsValid("v0.0.0-" + pre) {
			return Version{}, false
		}
		v.Prerelease = pre
	}

	return v, true
}

// Equal reports whether v and o denote the same version. Missing trailing
// components compare equal to zero, so "1.2" equals "1.2.0".
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to
// or after o.
func (v Version) Compare(o Version) int {
	if c := semver.Compare(v.core(), o.core()); c != 0 {
		return c
	}
	if c := compareInt(v.Revision, o.Revision); c != 0 {
		return c
	}
	return semver.Compare(v.release(), o.release())
}

// String returns the version with as many numeric components as were parsed.
func (v Version) String() string {
	parts := []int{v.Major, v.Minor, v.Patch, v.Revision}
	n := max(v.parts, 1)

	strs := make([]string, n)
	for i := 0; i < n; i++ {
		strs[i] = strconv.Itoa(parts[i])
	}
	s := strings.Join(strs, ".")
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

func (v Version) core() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// release maps the pre-release onto a fixed semver core so that semver's
// pre-release ordering can be reused after the numeric components tie.
func (v Version) release() string {
	if v.Prerelease == "" {
		return "v0.0.0"
	}
	return "v0.0.0-" + v.Prerelease
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
